package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(itemCount int, noun, filterLabel string, unauthenticated bool, hints string, width int) string {
	left := fmt.Sprintf(" %d %s", itemCount, noun)
	if filterLabel != "" {
		left += " · " + filterLabel
	}
	if unauthenticated {
		left += " · " + lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("not signed in")
	}

	right := " " + hints + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}

func renderNotice(err error, width int) string {
	text := "! " + err.Error()
	hint := " esc dismiss "
	text = truncateStr(text, width-lipgloss.Width(hint)-2)
	gap := width - lipgloss.Width(text) - lipgloss.Width(hint) - 2
	if gap < 0 {
		gap = 0
	}
	return noticeStyle.Width(width).Render(text + fmt.Sprintf("%*s", gap, "") + hint)
}

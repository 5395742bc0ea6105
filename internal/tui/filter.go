package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/samsriram712/alex/internal/model"
)

// filterBar is a single-select domain picker. Index 0 is "All Domains".
type filterBar struct {
	domains []model.Domain
	cursor  int
}

func newFilterBar(domains []model.Domain) filterBar {
	return filterBar{domains: domains}
}

func (f *filterBar) selected() model.Domain {
	if f.cursor == 0 || f.cursor > len(f.domains) {
		return ""
	}
	return f.domains[f.cursor-1]
}

// shift moves the selection by delta, wrapping around "All Domains".
func (f *filterBar) shift(delta int) {
	n := len(f.domains) + 1
	f.cursor = ((f.cursor+delta)%n + n) % n
}

func (f *filterBar) selectDomain(d model.Domain) {
	f.cursor = 0
	for i, k := range f.domains {
		if k == d {
			f.cursor = i + 1
		}
	}
}

func (f *filterBar) render(width int, extra string) string {
	sep := tabSeparatorStyle.Render(" · ")

	labels := []string{model.Domain("").Label()}
	for _, d := range f.domains {
		labels = append(labels, d.Label())
	}

	var row string
	for i, label := range labels {
		style := tabInactiveStyle
		if i == f.cursor {
			style = tabActiveStyle
		}
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += style.Render(label)
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}
	if extra != "" && lipgloss.Width(row)+lipgloss.Width(extra)+2 <= width {
		row += "  " + extra
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}

func dismissedToggle(on bool) string {
	box := "[ ]"
	if on {
		box = "[x]"
	}
	return cardMetaStyle.Render(box + " show dismissed (D)")
}

func symbolTag(symbol string) string {
	if symbol == "" {
		return ""
	}
	return badgeStyle.Render("$"+symbol) + cardMetaStyle.Render(" (/ to change)")
}

// joinExtras drops empty parts so the filter bar never renders stray gaps.
func joinExtras(parts ...string) string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "  ")
}

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/samsriram712/alex/internal/model"
	"github.com/samsriram712/alex/internal/remotelist"
)

const timestampLayout = "Jan 2, 15:04"

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	local := t.Local()
	return local.Format(timestampLayout) + " · " + relativeTime(local)
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if lipgloss.Width(line)+1+lipgloss.Width(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func lipglossCenter(s string, width, height int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}

func renderActions(actions []model.Action) string {
	parts := make([]string, 0, len(actions))
	for _, act := range actions {
		parts = append(parts, actionKeyStyle.Render("["+act.Key+"]")+" "+actionLabelStyle.Render(act.Label))
	}
	return strings.Join(parts, "  ")
}

func cardFrame(selected bool, width int) lipgloss.Style {
	if selected {
		return cardSelectedStyle.Width(width)
	}
	return cardStyle.Width(width)
}

func renderAlertCard(al model.Alert, selected bool, width int) string {
	inner := width - 2
	if inner < 20 {
		inner = 20
	}

	tag := severityStyle(al.Severity.Rank()).Render(strings.ToUpper(string(al.Severity)))
	head := domainPillStyle.Render(string(al.Domain)) + " " + tag
	if al.Status == model.AlertDismissed {
		head += " " + cardMetaStyle.Render("(dismissed)")
	}

	lines := []string{
		head,
		cardTitleStyle.Render(truncateStr(al.Title, inner)),
	}
	if al.Message != "" {
		lines = append(lines, cardBodyStyle.Render(wrapText(al.Message, inner)))
	}
	if al.Rationale != "" {
		lines = append(lines, cardRationaleStyle.Render(wrapText(al.Rationale, inner)))
	}
	lines = append(lines, cardMetaStyle.Render(metaLine(al.CreatedAt.Time, al.Category, al.Symbol)))
	if hints := renderActions(al.Actions()); hints != "" {
		lines = append(lines, hints)
	}
	return cardFrame(selected, width).Render(strings.Join(lines, "\n"))
}

func renderTodoCard(td model.Todo, selected bool, width int) string {
	inner := width - 2
	if inner < 20 {
		inner = 20
	}

	tag := severityStyle(td.Priority.Rank()).Render(strings.ToUpper(string(td.Priority)))
	head := domainPillStyle.Render(string(td.Domain)) + " " + tag
	if td.InProgress() {
		head += " " + progressStyle.Render("● In progress")
	}

	lines := []string{
		head,
		cardTitleStyle.Render(truncateStr(td.Title, inner)),
	}
	if td.Description != "" {
		lines = append(lines, cardBodyStyle.Render(wrapText(td.Description, inner)))
	}
	if td.Rationale != "" {
		lines = append(lines, cardRationaleStyle.Render(wrapText(td.Rationale, inner)))
	}
	meta := metaLine(td.CreatedAt.Time, td.Category, td.Symbol)
	if td.DueAt != nil {
		meta += " · due " + td.DueAt.Local().Format(timestampLayout)
	}
	lines = append(lines, cardMetaStyle.Render(meta))
	if hints := renderActions(td.Actions()); hints != "" {
		lines = append(lines, hints)
	}
	return cardFrame(selected, width).Render(strings.Join(lines, "\n"))
}

func metaLine(created time.Time, category, symbol string) string {
	parts := []string{}
	if ts := formatTimestamp(created); ts != "" {
		parts = append(parts, ts)
	}
	if category != "" {
		parts = append(parts, category)
	}
	if symbol != "" {
		parts = append(parts, symbol)
	}
	return strings.Join(parts, " · ")
}

// renderAlerts maps a list snapshot to exactly one of the loading, empty and
// card states.
func renderAlerts(s remotelist.State[model.Alert, model.AlertFilter], cursor int, spin string, width, height int) string {
	switch s.Phase() {
	case remotelist.PhaseLoading:
		return lipglossCenter(spin+"Loading alerts...", width, height)
	case remotelist.PhaseEmpty:
		return lipglossCenter(placeholderStyle.Render("No alerts"), width, height)
	}
	cards := make([]string, len(s.Items))
	for i, al := range s.Items {
		cards[i] = renderAlertCard(al, i == cursor, width)
	}
	return windowCards(cards, cursor, height)
}

func renderTodos(s remotelist.State[model.Todo, model.TodoFilter], cursor int, spin string, width, height int) string {
	switch s.Phase() {
	case remotelist.PhaseLoading:
		return lipglossCenter(spin+"Loading tasks...", width, height)
	case remotelist.PhaseEmpty:
		return lipglossCenter(placeholderStyle.Render("No tasks"), width, height)
	}
	cards := make([]string, len(s.Items))
	for i, td := range s.Items {
		cards[i] = renderTodoCard(td, i == cursor, width)
	}
	return windowCards(cards, cursor, height)
}

// windowCards joins rendered cards and scrolls so the card at cursor is fully
// visible inside height lines.
func windowCards(cards []string, cursor, height int) string {
	if height < 1 {
		height = 1
	}
	var lines []string
	selStart, selEnd := 0, 0
	for i, c := range cards {
		if i == cursor {
			selStart = len(lines)
		}
		lines = append(lines, strings.Split(c, "\n")...)
		if i == cursor {
			selEnd = len(lines)
		}
	}

	start := 0
	if selEnd > height {
		start = selEnd - height
	}
	if selStart < start {
		start = selStart
	}
	end := start + height
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	NextTab   key.Binding
	Alerts    key.Binding
	Todos     key.Binding
	PrevDom   key.Binding
	NextDom   key.Binding
	Dismissed key.Binding
	Symbol    key.Binding
	MarkRead  key.Binding
	Dismiss   key.Binding
	Start     key.Binding
	Done      key.Binding
	Reload    key.Binding
	Open      key.Binding
	Clear     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		NextTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch view")),
		Alerts:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "alerts")),
		Todos:     key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "tasks")),
		PrevDom:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "prev domain")),
		NextDom:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "next domain")),
		Dismissed: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "show dismissed")),
		Symbol:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter by symbol")),
		MarkRead:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mark as read")),
		Dismiss:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
		Start:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Done:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "done")),
		Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Open:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in browser")),
		Clear:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear notice")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.NextDom, k.Reload, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.Alerts, k.Todos},
		{k.PrevDom, k.NextDom, k.Dismissed, k.Symbol, k.Reload, k.Open},
		{k.MarkRead, k.Dismiss, k.Start, k.Done},
		{k.Clear, k.Help, k.Quit},
	}
}

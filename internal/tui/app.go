package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/samsriram712/alex/internal/browser"
	"github.com/samsriram712/alex/internal/counts"
	"github.com/samsriram712/alex/internal/model"
	"github.com/samsriram712/alex/internal/remotelist"
)

type tab int

const (
	tabAlerts tab = iota
	tabTodos
)

func (t tab) String() string {
	if t == tabTodos {
		return "todos"
	}
	return "alerts"
}

type App struct {
	alerts   *remotelist.List[model.Alert, model.AlertFilter]
	todos    *remotelist.List[model.Todo, model.TodoFilter]
	counts   *counts.Cache
	log      *zap.Logger
	webURL   string
	timeout  time.Duration
	openPage func(base, page string) error

	tab         tab
	alertCursor int
	todoCursor  int
	alertBar    filterBar
	todoBar     filterBar

	alertCount  int
	todoCount   int
	countsKnown bool

	// notice is the last failed action; it stays until esc or the next failure.
	notice   error
	showHelp bool

	symbolInput   textinput.Model
	editingSymbol bool

	width  int
	height int

	spinner spinner.Model
	help    help.Model
	keys    keyMap

	pending []tea.Cmd
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Alerts       *remotelist.List[model.Alert, model.AlertFilter]
	Todos        *remotelist.List[model.Todo, model.TodoFilter]
	Counts       *counts.Cache
	AlertDomains []model.Domain
	TodoDomains  []model.Domain
	WebURL       string
	Timeout      time.Duration
	Logger       *zap.Logger
	// OpenPage defaults to browser.OpenPage.
	OpenPage func(base, page string) error
	// StartOnTodos opens the tasks view first.
	StartOnTodos bool
}

func NewApp(opts RunOpts) *App {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	open := opts.OpenPage
	if open == nil {
		open = browser.OpenPage
	}

	ti := textinput.New()
	ti.Placeholder = "Ticker symbol, empty for all..."
	ti.Prompt = symbolPromptStyle.Render("/ ")
	ti.CharLimit = 12
	ti.Cursor.SetMode(cursor.CursorStatic)

	a := &App{
		alerts:   opts.Alerts,
		todos:    opts.Todos,
		counts:   opts.Counts,
		log:      log.Named("tui"),
		webURL:   opts.WebURL,
		timeout:  timeout,
		openPage: open,
		alertBar: newFilterBar(opts.AlertDomains),
		todoBar:  newFilterBar(opts.TodoDomains),
		spinner:  sp,
		help:     help.New(),
		keys:     defaultKeys(),

		symbolInput: ti,
	}
	if opts.StartOnTodos {
		a.tab = tabTodos
	}
	a.alertBar.selectDomain(a.alerts.Filter().Domain)
	a.todoBar.selectDomain(a.todos.Filter().Domain)

	// Tickets are issued here so the very first frame already renders the loading state.
	a.pending = []tea.Cmd{
		a.fetchAlertsCmd(a.alerts.Begin()),
		a.fetchTodosCmd(a.todos.Begin()),
	}
	return a
}

func (a *App) Init() tea.Cmd {
	cmds := append(a.pending, a.countsCmd(), a.spinner.Tick)
	a.pending = nil
	return tea.Batch(cmds...)
}

// fetchAlertsCmd captures the ticket into the closure; the result is applied in Update.
func (a *App) fetchAlertsCmd(t remotelist.Ticket[model.AlertFilter]) tea.Cmd {
	list, timeout := a.alerts, a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		items, err := list.Fetch(ctx, t)
		return alertsLoadedMsg{ticket: t, items: items, err: err}
	}
}

func (a *App) fetchTodosCmd(t remotelist.Ticket[model.TodoFilter]) tea.Cmd {
	list, timeout := a.todos, a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		items, err := list.Fetch(ctx, t)
		return todosLoadedMsg{ticket: t, items: items, err: err}
	}
}

func (a *App) reload(t tab) tea.Cmd {
	if t == tabTodos {
		return tea.Batch(a.fetchTodosCmd(a.todos.Begin()), a.spinner.Tick)
	}
	return tea.Batch(a.fetchAlertsCmd(a.alerts.Begin()), a.spinner.Tick)
}

func (a *App) countsCmd() tea.Cmd {
	c, timeout := a.counts, a.timeout
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var msg countsMsg
		var g errgroup.Group
		g.Go(func() error {
			msg.alerts = counts.AlertsUnread(ctx, c)
			return nil
		})
		g.Go(func() error {
			msg.todos = counts.TodosOpen(ctx, c)
			return nil
		})
		_ = g.Wait()
		return msg
	}
}

func (a *App) transitionCmd(t tab, id string, act model.Action) tea.Cmd {
	var fn remotelist.TransitionFunc
	if t == tabTodos {
		fn = a.todos.Transition
	} else {
		fn = a.alerts.Transition
	}
	timeout := a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := fn(ctx, id, act.Target)
		return transitionDoneMsg{tab: t, id: id, action: act, err: err}
	}
}

func (a *App) openPageCmd() tea.Cmd {
	page := "/alerts"
	if a.tab == tabTodos {
		page = "/todos"
	}
	base, open := a.webURL, a.openPage
	return func() tea.Msg {
		if err := open(base, page); err != nil {
			return noticeMsg{err: fmt.Errorf("opening %s: %w", page, err)}
		}
		return nil
	}
}

func (a *App) loading() bool {
	return a.alerts.Snapshot().Loading || a.todos.Snapshot().Loading
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case alertsLoadedMsg:
		// Errors are logged by the list; the view falls back to its empty state.
		if applied, _ := a.alerts.Apply(msg.ticket, msg.items, msg.err); applied {
			a.alertCursor = clamp(a.alertCursor, len(a.alerts.Snapshot().Items))
		}
		return a, nil

	case todosLoadedMsg:
		if applied, _ := a.todos.Apply(msg.ticket, msg.items, msg.err); applied {
			a.todoCursor = clamp(a.todoCursor, len(a.todos.Snapshot().Items))
		}
		return a, nil

	case transitionDoneMsg:
		// Exactly one reload follows every transition, accepted or not.
		cmds := []tea.Cmd{a.reload(msg.tab)}
		if msg.err != nil {
			a.notice = fmt.Errorf("%s failed for %s: %w", strings.ToLower(msg.action.Label), msg.id, msg.err)
		} else {
			a.log.Debug("transition applied", zap.Stringer("view", msg.tab), zap.String("id", msg.id), zap.String("status", msg.action.Target))
			cmds = append(cmds, a.countsCmd())
		}
		return a, tea.Batch(cmds...)

	case countsMsg:
		a.alertCount = msg.alerts
		a.todoCount = msg.todos
		a.countsKnown = true
		return a, nil

	case noticeMsg:
		a.notice = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.loading() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if a.editingSymbol {
		return a.handleSymbolKey(msg)
	}

	if a.showHelp {
		if key.Matches(msg, a.keys.Help, a.keys.Clear, a.keys.Quit) {
			a.showHelp = false
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
	case key.Matches(msg, a.keys.Clear):
		a.notice = nil
	case key.Matches(msg, a.keys.NextTab):
		if a.tab == tabAlerts {
			a.tab = tabTodos
		} else {
			a.tab = tabAlerts
		}
	case key.Matches(msg, a.keys.Alerts):
		a.tab = tabAlerts
	case key.Matches(msg, a.keys.Todos):
		a.tab = tabTodos
	case key.Matches(msg, a.keys.Down):
		a.moveCursor(1)
	case key.Matches(msg, a.keys.Up):
		a.moveCursor(-1)
	case key.Matches(msg, a.keys.NextDom):
		return a, a.shiftDomain(1)
	case key.Matches(msg, a.keys.PrevDom):
		return a, a.shiftDomain(-1)
	case key.Matches(msg, a.keys.Dismissed):
		return a, a.toggleDismissed()
	case key.Matches(msg, a.keys.Symbol):
		a.editingSymbol = true
		a.symbolInput.SetValue(a.currentSymbol())
		a.symbolInput.CursorEnd()
		a.symbolInput.Focus()
	case key.Matches(msg, a.keys.Reload):
		return a, a.reload(a.tab)
	case key.Matches(msg, a.keys.Open):
		return a, a.openPageCmd()
	case key.Matches(msg, a.keys.MarkRead, a.keys.Dismiss, a.keys.Start, a.keys.Done):
		return a, a.act(msg.String())
	}
	return a, nil
}

func (a *App) moveCursor(delta int) {
	if a.tab == tabTodos {
		a.todoCursor = clamp(a.todoCursor+delta, len(a.todos.Snapshot().Items))
		return
	}
	a.alertCursor = clamp(a.alertCursor+delta, len(a.alerts.Snapshot().Items))
}

func (a *App) shiftDomain(delta int) tea.Cmd {
	if a.tab == tabTodos {
		a.todoBar.shift(delta)
		f := a.todos.Filter()
		f.Domain = a.todoBar.selected()
		if a.todos.SetFilter(f) {
			a.todoCursor = 0
			return a.reload(tabTodos)
		}
		return nil
	}
	a.alertBar.shift(delta)
	f := a.alerts.Filter()
	f.Domain = a.alertBar.selected()
	if a.alerts.SetFilter(f) {
		a.alertCursor = 0
		return a.reload(tabAlerts)
	}
	return nil
}

// handleSymbolKey edits the symbol filter of the active view. enter applies
// the typed symbol, esc clears it.
func (a *App) handleSymbolKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.editingSymbol = false
		a.symbolInput.SetValue("")
		a.symbolInput.Blur()
		return a, a.setSymbol("")
	case tea.KeyEnter:
		a.editingSymbol = false
		a.symbolInput.Blur()
		return a, a.setSymbol(a.symbolInput.Value())
	}

	var cmd tea.Cmd
	a.symbolInput, cmd = a.symbolInput.Update(msg)
	return a, cmd
}

func (a *App) currentSymbol() string {
	if a.tab == tabTodos {
		return a.todos.Filter().Symbol
	}
	return a.alerts.Filter().Symbol
}

func (a *App) setSymbol(raw string) tea.Cmd {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if a.tab == tabTodos {
		f := a.todos.Filter()
		f.Symbol = symbol
		if a.todos.SetFilter(f) {
			a.todoCursor = 0
			return a.reload(tabTodos)
		}
		return nil
	}
	f := a.alerts.Filter()
	f.Symbol = symbol
	if a.alerts.SetFilter(f) {
		a.alertCursor = 0
		return a.reload(tabAlerts)
	}
	return nil
}

func (a *App) toggleDismissed() tea.Cmd {
	if a.tab != tabAlerts {
		return nil
	}
	f := a.alerts.Filter()
	f.IncludeDismissed = !f.IncludeDismissed
	if a.alerts.SetFilter(f) {
		a.alertCursor = 0
		return a.reload(tabAlerts)
	}
	return nil
}

// act requests the transition bound to k for the selected card, if the card
// currently offers it.
func (a *App) act(k string) tea.Cmd {
	if a.tab == tabTodos {
		s := a.todos.Snapshot()
		if s.Phase() != remotelist.PhaseItems || a.todoCursor >= len(s.Items) {
			return nil
		}
		item := s.Items[a.todoCursor]
		if act, ok := findAction(item.Actions(), k); ok {
			return a.transitionCmd(tabTodos, item.ID, act)
		}
		return nil
	}

	s := a.alerts.Snapshot()
	if s.Phase() != remotelist.PhaseItems || a.alertCursor >= len(s.Items) {
		return nil
	}
	item := s.Items[a.alertCursor]
	if act, ok := findAction(item.Actions(), k); ok {
		return a.transitionCmd(tabAlerts, item.ID, act)
	}
	return nil
}

func findAction(actions []model.Action, k string) (model.Action, bool) {
	for _, act := range actions {
		if act.Key == k {
			return act, true
		}
	}
	return model.Action{}, false
}

func clamp(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  alex")
	}

	if a.showHelp {
		return a.renderHelp()
	}

	header := a.renderHeader()

	var filter, content, status string
	contentHeight := a.height - 3
	if a.notice != nil {
		contentHeight--
	}
	if contentHeight < 3 {
		contentHeight = 3
	}
	spin := a.spinner.View() + " "

	if a.tab == tabTodos {
		s := a.todos.Snapshot()
		filter = a.todoBar.render(a.width, symbolTag(s.Filter.Symbol))
		content = renderTodos(s, a.todoCursor, spin, a.width-1, contentHeight)
		status = renderStatusBar(len(s.Items), "tasks", filterLabel(s.Filter.Domain, false), s.Unauthenticated,
			a.help.ShortHelpView([]key.Binding{a.keys.Start, a.keys.Done, a.keys.NextDom, a.keys.Help}), a.width)
	} else {
		s := a.alerts.Snapshot()
		filter = a.alertBar.render(a.width, joinExtras(symbolTag(s.Filter.Symbol), dismissedToggle(s.Filter.IncludeDismissed)))
		content = renderAlerts(s, a.alertCursor, spin, a.width-1, contentHeight)
		status = renderStatusBar(len(s.Items), "alerts", filterLabel(s.Filter.Domain, s.Filter.IncludeDismissed), s.Unauthenticated,
			a.help.ShortHelpView([]key.Binding{a.keys.MarkRead, a.keys.Dismiss, a.keys.NextDom, a.keys.Help}), a.width)
	}

	// The symbol prompt replaces the filter bar while editing.
	if a.editingSymbol {
		filter = lipgloss.NewStyle().Width(a.width).PaddingLeft(1).Render(a.symbolInput.View())
	}

	body := lipgloss.NewStyle().Height(contentHeight).MaxHeight(contentHeight).Render(content)

	parts := []string{header, filter, body}
	if a.notice != nil {
		parts = append(parts, renderNotice(a.notice, a.width))
	}
	parts = append(parts, status)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) renderHeader() string {
	alertsTab := "Alerts"
	todosTab := "Tasks"
	if a.countsKnown {
		alertsTab += " " + badgeStyle.Render(strconv.Itoa(a.alertCount))
		todosTab += " " + badgeStyle.Render(strconv.Itoa(a.todoCount))
	}
	var tabs string
	if a.tab == tabAlerts {
		tabs = tabActiveStyle.Render(alertsTab) + " " + tabInactiveStyle.Render(todosTab)
	} else {
		tabs = tabInactiveStyle.Render(alertsTab) + " " + tabActiveStyle.Render(todosTab)
	}

	left := headerStyle.Render("alex") + "  " + tabs
	right := headerDateStyle.Render(time.Now().Format("Jan 2"))
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left + fmt.Sprintf("%*s", gap, "") + right
}

func filterLabel(d model.Domain, includeDismissed bool) string {
	var parts []string
	if d != "" {
		parts = append(parts, d.Label())
	}
	if includeDismissed {
		parts = append(parts, "incl. dismissed")
	}
	return strings.Join(parts, ", ")
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("alex")
	h := a.help
	h.ShowAll = true
	body := title + cardMetaStyle.Render("  keyboard shortcuts") + "\n\n" + h.View(a.keys)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, helpCardStyle.Render(body))
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

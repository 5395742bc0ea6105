package tui

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/oauth2"

	"github.com/samsriram712/alex/internal/api"
	"github.com/samsriram712/alex/internal/browser"
	"github.com/samsriram712/alex/internal/dashboard"
	"github.com/samsriram712/alex/internal/model"
)

// fakeBackend is an in-memory alerts/todos server that records every request.
type fakeBackend struct {
	mu          sync.Mutex
	alerts      []model.Alert
	todos       []model.Todo
	requests    []string
	listCode    int
	patchCode   int
	summaryCode int
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, r.Method+" "+r.URL.RequestURI())
	q := r.URL.Query()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/alerts/summary":
		if b.summaryCode != 0 {
			w.WriteHeader(b.summaryCode)
			return
		}
		unread := 0
		for _, al := range b.alerts {
			if al.Status == model.AlertNew {
				unread++
			}
		}
		json.NewEncoder(w).Encode(model.AlertSummary{UnreadCount: unread})

	case r.Method == http.MethodGet && r.URL.Path == "/api/alerts":
		if b.listCode != 0 {
			w.WriteHeader(b.listCode)
			return
		}
		out := []model.Alert{}
		for _, al := range b.alerts {
			if d := q.Get("domain"); d != "" && string(al.Domain) != d {
				continue
			}
			if al.Status == model.AlertDismissed && q.Get("include_dismissed") != "true" {
				continue
			}
			if sym := q.Get("symbol"); sym != "" && al.Symbol != sym {
				continue
			}
			out = append(out, al)
		}
		json.NewEncoder(w).Encode(out)

	case r.Method == http.MethodGet && r.URL.Path == "/api/todos":
		out := []model.Todo{}
		for _, td := range b.todos {
			if s := q.Get("status"); s != "" && string(td.Status) != s {
				continue
			}
			if d := q.Get("domain"); d != "" && string(td.Domain) != d {
				continue
			}
			if sym := q.Get("symbol"); sym != "" && td.Symbol != sym {
				continue
			}
			out = append(out, td)
		}
		json.NewEncoder(w).Encode(out)

	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/api/alerts/"):
		if b.patchCode != 0 {
			w.WriteHeader(b.patchCode)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/api/alerts/")
		for i := range b.alerts {
			if b.alerts[i].ID == id {
				b.alerts[i].Status = model.AlertStatus(q.Get("status"))
			}
		}
		w.Write([]byte(`{"ok":true}`))

	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/api/todos/"):
		if b.patchCode != 0 {
			w.WriteHeader(b.patchCode)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/api/todos/")
		for i := range b.todos {
			if b.todos[i].ID == id {
				b.todos[i].Status = model.TodoStatus(q.Get("status"))
			}
		}
		w.Write([]byte(`{"ok":true}`))

	default:
		http.NotFound(w, r)
	}
}

func (b *fakeBackend) takeRequests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.requests
	b.requests = nil
	return out
}

type testHarness struct {
	app    *App
	opened []string
	openFn func(base, page string) error
}

func newTestApp(t *testing.T, b *fakeBackend) *testHarness {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	client := api.New(srv.URL, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}))
	d := dashboard.New(dashboard.Options{Client: client})

	h := &testHarness{}
	h.openFn = func(base, page string) error {
		h.opened = append(h.opened, page)
		return nil
	}
	h.app = NewApp(RunOpts{
		Alerts:       d.Alerts,
		Todos:        d.Todos,
		Counts:       d.Counts,
		AlertDomains: []model.Domain{model.DomainPortfolio, model.DomainRetirement},
		TodoDomains:  model.AllDomains(),
		WebURL:       "http://dash.local",
		Timeout:      5 * time.Second,
		OpenPage: func(base, page string) error {
			return h.openFn(base, page)
		},
	})
	h.app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

// pump runs cmd and feeds every resulting message back into the app until
// no work is left. Spinner ticks are skipped so nothing sleeps.
func pump(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			pump(t, a, c)
		}
	case spinner.TickMsg:
	default:
		_, next := a.Update(msg)
		pump(t, a, next)
	}
}

func press(a *App, k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := a.Update(msg)
	return cmd
}

func sampleBackend() *fakeBackend {
	now := time.Now().Add(-time.Hour)
	return &fakeBackend{
		alerts: []model.Alert{
			{ID: "a1", Domain: model.DomainPortfolio, Severity: model.SeverityCritical, Title: "Drawdown limit hit", Message: "Down 12% from peak.", Status: model.AlertNew, Symbol: "SPY", CreatedAt: model.At(now)},
			{ID: "a2", Domain: model.DomainRetirement, Severity: model.SeverityInfo, Title: "Contribution posted", Message: "IRA deposit cleared.", Status: model.AlertRead, CreatedAt: model.At(now)},
		},
		todos: []model.Todo{
			{ID: "t1", Domain: model.DomainResearch, Priority: model.PriorityMedium, Title: "Review earnings notes", Status: model.TodoOpen, CreatedAt: model.At(now)},
		},
	}
}

func TestFirstFrameShowsLoading(t *testing.T) {
	h := newTestApp(t, sampleBackend())

	view := h.app.View()
	if !strings.Contains(view, "Loading alerts...") {
		t.Errorf("expected loading state before any response:\n%s", view)
	}
	if !h.app.todos.Snapshot().Loading {
		t.Error("todos should be loading before Init runs")
	}
}

func TestInitLoadsListsAndBadges(t *testing.T) {
	h := newTestApp(t, sampleBackend())
	pump(t, h.app, h.app.Init())

	view := h.app.View()
	for _, want := range []string{"Drawdown limit hit", "Contribution posted", "Mark as read", "Alerts 1", "Tasks 1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	press(h.app, "2")
	view = h.app.View()
	if !strings.Contains(view, "Review earnings notes") || !strings.Contains(view, "Start") {
		t.Errorf("expected tasks view:\n%s", view)
	}
}

func TestMarkAsReadPatchesThenReloadsOnce(t *testing.T) {
	b := sampleBackend()
	h := newTestApp(t, b)
	pump(t, h.app, h.app.Init())
	b.takeRequests()

	cmd := press(h.app, "m")
	if cmd == nil {
		t.Fatal("expected a transition command for a new alert")
	}
	pump(t, h.app, cmd)

	want := []string{
		"PATCH /api/alerts/a1?status=read",
		"GET /api/alerts",
		"GET /api/alerts/summary",
	}
	if diff := cmp.Diff(want, b.takeRequests()); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}

	s := h.app.alerts.Snapshot()
	if s.Loading || s.Items[0].Status != model.AlertRead {
		t.Errorf("expected reloaded read alert, got %+v", s)
	}
	view := h.app.View()
	if strings.Contains(view, "Mark as read") {
		t.Errorf("read alert should not offer Mark as read:\n%s", view)
	}
	if !strings.Contains(view, "Alerts 0") {
		t.Errorf("badge should refresh after transition:\n%s", view)
	}
}

func TestRejectedTransitionShowsNotice(t *testing.T) {
	b := sampleBackend()
	b.patchCode = http.StatusInternalServerError
	h := newTestApp(t, b)
	pump(t, h.app, h.app.Init())
	b.takeRequests()

	pump(t, h.app, press(h.app, "x"))

	want := []string{
		"PATCH /api/alerts/a1?status=dismissed",
		"GET /api/alerts",
	}
	if diff := cmp.Diff(want, b.takeRequests()); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}

	var se *api.StatusError
	if !errors.As(h.app.notice, &se) || se.Code != http.StatusInternalServerError {
		t.Fatalf("expected status error notice, got %v", h.app.notice)
	}
	if view := h.app.View(); !strings.Contains(view, "dismiss failed for a1") {
		t.Errorf("notice not rendered:\n%s", view)
	}

	press(h.app, "esc")
	if h.app.notice != nil {
		t.Error("esc should clear the notice")
	}
}

func TestActionNotOfferedIsIgnored(t *testing.T) {
	b := sampleBackend()
	h := newTestApp(t, b)
	pump(t, h.app, h.app.Init())

	press(h.app, "j")
	if cmd := press(h.app, "m"); cmd != nil {
		t.Error("a read alert must not be marked read again")
	}
	press(h.app, "2")
	if cmd := press(h.app, "x"); cmd != nil {
		t.Error("todos have no dismiss action")
	}
}

func TestFilterChangesReloadWithQuery(t *testing.T) {
	b := sampleBackend()
	h := newTestApp(t, b)
	pump(t, h.app, h.app.Init())
	b.takeRequests()

	pump(t, h.app, press(h.app, "l"))
	pump(t, h.app, press(h.app, "D"))
	pump(t, h.app, press(h.app, "2"))
	pump(t, h.app, press(h.app, "h"))

	want := []string{
		"GET /api/alerts?domain=portfolio",
		"GET /api/alerts?domain=portfolio&include_dismissed=true",
		"GET /api/todos?domain=system",
	}
	if diff := cmp.Diff(want, b.takeRequests()); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
	if got := h.app.alerts.Snapshot().Items; len(got) != 1 || got[0].ID != "a1" {
		t.Errorf("expected only the portfolio alert, got %+v", got)
	}
}

func TestStaleLoadIsDropped(t *testing.T) {
	h := newTestApp(t, sampleBackend())

	older := h.app.alerts.Begin()
	newer := h.app.alerts.Begin()
	h.app.Update(alertsLoadedMsg{ticket: newer, items: []model.Alert{{ID: "fresh"}}})
	h.app.Update(alertsLoadedMsg{ticket: older, items: []model.Alert{{ID: "stale"}}})

	s := h.app.alerts.Snapshot()
	if s.Loading {
		t.Error("loading should end with the newest ticket")
	}
	if len(s.Items) != 1 || s.Items[0].ID != "fresh" {
		t.Errorf("stale response overwrote state: %+v", s.Items)
	}
}

func TestEmptyTodosShowsNoTasks(t *testing.T) {
	b := sampleBackend()
	b.todos = nil
	h := newTestApp(t, b)
	pump(t, h.app, h.app.Init())

	press(h.app, "tab")
	view := h.app.View()
	if !strings.Contains(view, "No tasks") || strings.Contains(view, "Loading tasks...") {
		t.Errorf("expected empty tasks state:\n%s", view)
	}
	if !strings.Contains(view, "Tasks 0") {
		t.Errorf("expected zero open count:\n%s", view)
	}
}

func TestUnauthorizedShowsEmptyStateWithoutNotice(t *testing.T) {
	b := sampleBackend()
	b.listCode = http.StatusUnauthorized
	h := newTestApp(t, b)
	pump(t, h.app, h.app.Init())

	view := h.app.View()
	if !strings.Contains(view, "No alerts") || !strings.Contains(view, "not signed in") {
		t.Errorf("expected signed-out empty state:\n%s", view)
	}
	if h.app.notice != nil {
		t.Errorf("unauthenticated loads must not raise a notice, got %v", h.app.notice)
	}
}

func TestSummaryFailureReadsZero(t *testing.T) {
	b := sampleBackend()
	b.summaryCode = http.StatusBadGateway
	h := newTestApp(t, b)
	pump(t, h.app, h.app.Init())

	if view := h.app.View(); !strings.Contains(view, "Alerts 0") {
		t.Errorf("failed summary should show zero:\n%s", view)
	}
}

func TestOpenPage(t *testing.T) {
	h := newTestApp(t, sampleBackend())

	pump(t, h.app, press(h.app, "o"))
	press(h.app, "2")
	pump(t, h.app, press(h.app, "o"))
	if diff := cmp.Diff([]string{"/alerts", "/todos"}, h.opened); diff != "" {
		t.Errorf("opened pages mismatch (-want +got):\n%s", diff)
	}

	h.openFn = func(base, page string) error { return browser.ErrNoWebURL }
	pump(t, h.app, press(h.app, "o"))
	if !errors.Is(h.app.notice, browser.ErrNoWebURL) {
		t.Errorf("expected notice for missing web_url, got %v", h.app.notice)
	}
}

func TestHelpToggle(t *testing.T) {
	h := newTestApp(t, sampleBackend())

	press(h.app, "?")
	if !strings.Contains(h.app.View(), "keyboard shortcuts") {
		t.Error("expected help view")
	}
	if cmd := press(h.app, "q"); cmd != nil {
		t.Error("q in help should close help, not quit")
	}
	if strings.Contains(h.app.View(), "keyboard shortcuts") {
		t.Error("help should be closed")
	}
}

func TestSymbolFilterReloadsWithQuery(t *testing.T) {
	b := sampleBackend()
	h := newTestApp(t, b)
	pump(t, h.app, h.app.Init())
	b.takeRequests()

	press(h.app, "/")
	if !h.app.editingSymbol {
		t.Fatal("/ should open the symbol prompt")
	}
	// Keys go to the prompt while it is open.
	if cmd := press(h.app, "spy"); cmd != nil {
		pump(t, h.app, cmd)
	}
	if len(b.takeRequests()) != 0 {
		t.Error("typing must not reload before enter")
	}
	pump(t, h.app, press(h.app, "enter"))

	if got := h.app.alerts.Snapshot(); got.Filter.Symbol != "SPY" || len(got.Items) != 1 || got.Items[0].ID != "a1" {
		t.Errorf("unexpected state after symbol filter: %+v", got)
	}
	if view := h.app.View(); !strings.Contains(view, "$SPY") {
		t.Errorf("filter bar should show the symbol:\n%s", view)
	}

	press(h.app, "/")
	pump(t, h.app, press(h.app, "esc"))
	if h.app.editingSymbol || h.app.alerts.Filter().Symbol != "" {
		t.Error("esc should close the prompt and clear the symbol")
	}

	want := []string{"GET /api/alerts?symbol=SPY", "GET /api/alerts"}
	if diff := cmp.Diff(want, b.takeRequests()); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
}

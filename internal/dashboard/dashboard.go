// Package dashboard wires the API client into the alerts and todos lists and
// the shared badge counts.
package dashboard

import (
	"context"

	"go.uber.org/zap"

	"github.com/samsriram712/alex/internal/api"
	"github.com/samsriram712/alex/internal/counts"
	"github.com/samsriram712/alex/internal/journal"
	"github.com/samsriram712/alex/internal/model"
	"github.com/samsriram712/alex/internal/remotelist"
)

type (
	AlertList = remotelist.List[model.Alert, model.AlertFilter]
	TodoList  = remotelist.List[model.Todo, model.TodoFilter]
)

type Dashboard struct {
	Alerts *AlertList
	Todos  *TodoList
	Counts *counts.Cache
}

type Options struct {
	Client *api.Client
	// Journal is optional. When set every transition is recorded.
	Journal     *journal.Journal
	Logger      *zap.Logger
	AlertFilter model.AlertFilter
	TodoFilter  model.TodoFilter
}

func New(opts Options) *Dashboard {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	c := opts.Client

	d := &Dashboard{}
	d.Counts = counts.New(map[counts.Kind]counts.Loader{
		counts.Alerts: func(ctx context.Context) (int, error) {
			s, err := c.AlertSummary(ctx)
			if err != nil {
				return 0, err
			}
			return s.UnreadCount, nil
		},
		counts.Todos: c.OpenTodoCount,
	}, log.Named("counts"))

	setAlert := func(ctx context.Context, id, status string) error {
		return c.SetAlertStatus(ctx, id, model.AlertStatus(status))
	}
	setTodo := func(ctx context.Context, id, status string) error {
		return c.SetTodoStatus(ctx, id, model.TodoStatus(status))
	}
	if opts.Journal != nil {
		onErr := func(err error) { log.Warn("journal write failed", zap.Error(err)) }
		setAlert = opts.Journal.Track(string(counts.Alerts), setAlert, onErr)
		setTodo = opts.Journal.Track(string(counts.Todos), setTodo, onErr)
	}

	d.Alerts = remotelist.New(opts.AlertFilter, remotelist.Options[model.Alert, model.AlertFilter]{
		Name:       "alerts",
		Fetch:      c.ListAlerts,
		Transition: setAlert,
		OnTransition: func(id, status string) {
			d.Counts.Invalidate(counts.Alerts)
		},
		Logger: log,
	})
	d.Todos = remotelist.New(opts.TodoFilter, remotelist.Options[model.Todo, model.TodoFilter]{
		Name:       "todos",
		Fetch:      c.ListTodos,
		Transition: setTodo,
		OnTransition: func(id, status string) {
			d.Counts.Invalidate(counts.Todos)
		},
		Logger: log,
	})
	return d
}

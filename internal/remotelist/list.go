// Package remotelist keeps an in-memory view of a server-owned collection in
// sync with its filter selections and with status transitions requested by
// the user.
//
// The list is never patched locally. Every filter change and every transition
// is followed by a full reload, and only the most recently issued load may
// change the visible state.
package remotelist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/samsriram712/alex/internal/api"
)

// ErrReload marks a reload that failed after the server accepted a transition.
var ErrReload = errors.New("transition applied, reload failed")

// FetchFunc loads the collection for a filter.
type FetchFunc[T any, F any] func(ctx context.Context, filter F) ([]T, error)

// TransitionFunc asks the server to move item id to status.
type TransitionFunc func(ctx context.Context, id, status string) error

// Phase is what a renderer should show. The three phases are mutually exclusive.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseEmpty
	PhaseItems
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseEmpty:
		return "empty"
	case PhaseItems:
		return "items"
	}
	return "unknown"
}

// State is an immutable snapshot of a list.
type State[T any, F any] struct {
	Items   []T
	Loading bool
	Filter  F
	// Unauthenticated is set when the last applied load was rejected with 401/403.
	Unauthenticated bool
}

func (s State[T, F]) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseLoading
	case len(s.Items) == 0:
		return PhaseEmpty
	default:
		return PhaseItems
	}
}

// Ticket identifies one issued load. Only the newest ticket's result is applied.
type Ticket[F any] struct {
	Seq    uint64
	Filter F
}

type Options[T any, F any] struct {
	Name       string
	Fetch      FetchFunc[T, F]
	Transition TransitionFunc
	// OnTransition runs after every transition the server accepted, before the reload.
	OnTransition func(id, status string)
	Logger       *zap.Logger
}

type List[T any, F comparable] struct {
	name         string
	fetch        FetchFunc[T, F]
	transition   TransitionFunc
	onTransition func(id, status string)
	log          *zap.Logger

	mu      sync.Mutex
	filter  F
	items   []T
	loading bool
	unauth  bool
	issued  uint64
}

func New[T any, F comparable](initial F, opts Options[T, F]) *List[T, F] {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &List[T, F]{
		name:         opts.Name,
		fetch:        opts.Fetch,
		transition:   opts.Transition,
		onTransition: opts.OnTransition,
		log:          log.With(zap.String("list", opts.Name)),
		filter:       initial,
	}
}

func (l *List[T, F]) Snapshot() State[T, F] {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]T, len(l.items))
	copy(items, l.items)
	return State[T, F]{Items: items, Loading: l.loading, Filter: l.filter, Unauthenticated: l.unauth}
}

func (l *List[T, F]) Filter() F {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

// SetFilter stores f and reports whether it differs from the current filter.
// Callers reload when it returns true.
func (l *List[T, F]) SetFilter(f F) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.filter == f {
		return false
	}
	l.filter = f
	return true
}

// Begin issues a new ticket for the current filter and marks the list as loading.
// Any ticket issued earlier becomes stale.
func (l *List[T, F]) Begin() Ticket[F] {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.issued++
	l.loading = true
	return Ticket[F]{Seq: l.issued, Filter: l.filter}
}

// Fetch runs the fetcher for a ticket. It touches no state and is safe to call
// from a background goroutine.
func (l *List[T, F]) Fetch(ctx context.Context, t Ticket[F]) ([]T, error) {
	return l.fetch(ctx, t.Filter)
}

// Apply installs the result of a ticket. Results of stale tickets are dropped
// and reported with applied == false. Errors never leave stale data behind:
// unauthenticated and malformed responses clear the list and are absorbed,
// other errors clear the list and are returned to the caller.
func (l *List[T, F]) Apply(t Ticket[F], items []T, fetchErr error) (applied bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if t.Seq != l.issued {
		l.log.Debug("dropping stale response", zap.Uint64("seq", t.Seq), zap.Uint64("latest", l.issued))
		return false, nil
	}
	l.loading = false
	l.unauth = false

	switch {
	case fetchErr == nil:
		if items == nil {
			items = []T{}
		}
		l.items = items
		return true, nil
	case api.IsUnauthorized(fetchErr):
		l.log.Warn("not authenticated", zap.Error(fetchErr))
		l.items = []T{}
		l.unauth = true
		return true, nil
	case errors.Is(fetchErr, api.ErrMalformed):
		l.log.Error("unexpected response", zap.Error(fetchErr))
		l.items = []T{}
		return true, nil
	default:
		l.log.Error("load failed", zap.Error(fetchErr))
		l.items = []T{}
		return true, fetchErr
	}
}

// Load is Begin, Fetch and Apply in one blocking call.
func (l *List[T, F]) Load(ctx context.Context) (bool, error) {
	t := l.Begin()
	items, err := l.Fetch(ctx, t)
	return l.Apply(t, items, err)
}

// Transition requests a status change without reloading. The caller must
// follow up with exactly one reload whatever the outcome.
func (l *List[T, F]) Transition(ctx context.Context, id, status string) error {
	if l.transition == nil {
		return errors.New(l.name + ": list is read-only")
	}
	if err := l.transition(ctx, id, status); err != nil {
		l.log.Warn("transition failed", zap.String("id", id), zap.String("status", status), zap.Error(err))
		return err
	}
	l.log.Info("transition accepted", zap.String("id", id), zap.String("status", status))
	if l.onTransition != nil {
		l.onTransition(id, status)
	}
	return nil
}

// Mutate requests a transition and then reloads once. The transition error,
// if any, takes precedence over a reload error so the user learns that the
// change did not take effect. A reload failure after an accepted transition
// wraps ErrReload.
func (l *List[T, F]) Mutate(ctx context.Context, id, status string) error {
	terr := l.Transition(ctx, id, status)
	_, lerr := l.Load(ctx)
	if terr != nil {
		return terr
	}
	if lerr != nil {
		return fmt.Errorf("%w: %w", ErrReload, lerr)
	}
	return nil
}

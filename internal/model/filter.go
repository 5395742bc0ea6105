package model

import (
	"net/url"
	"strconv"
)

// MaxLimit is the largest page size the backend accepts.
const MaxLimit = 100

// AlertFilter holds the selections that drive GET /api/alerts.
// Zero values mean "not filtered" and are never sent.
type AlertFilter struct {
	Domain           Domain
	IncludeDismissed bool
	Status           AlertStatus
	Symbol           string
	Limit            int
}

// Query encodes exactly the active filters.
func (f AlertFilter) Query() url.Values {
	q := url.Values{}
	if f.Domain != "" {
		q.Set("domain", string(f.Domain))
	}
	if f.IncludeDismissed {
		q.Set("include_dismissed", "true")
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Symbol != "" {
		q.Set("symbol", f.Symbol)
	}
	setLimit(q, f.Limit)
	return q
}

// TodoFilter holds the selections that drive GET /api/todos.
type TodoFilter struct {
	Domain Domain
	Status TodoStatus
	Symbol string
	Limit  int
}

func (f TodoFilter) Query() url.Values {
	q := url.Values{}
	if f.Domain != "" {
		q.Set("domain", string(f.Domain))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Symbol != "" {
		q.Set("symbol", f.Symbol)
	}
	setLimit(q, f.Limit)
	return q
}

func setLimit(q url.Values, limit int) {
	if limit <= 0 {
		return
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	q.Set("limit", strconv.Itoa(limit))
}

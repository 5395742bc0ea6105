package api

import (
	"context"

	"github.com/samsriram712/alex/internal/model"
)

// ListAlerts calls GET /api/alerts with exactly the active filters.
func (c *Client) ListAlerts(ctx context.Context, f model.AlertFilter) ([]model.Alert, error) {
	return getList[model.Alert](ctx, c, "/api/alerts", f.Query())
}

// AlertSummary calls GET /api/alerts/summary.
func (c *Client) AlertSummary(ctx context.Context) (model.AlertSummary, error) {
	return getObject[model.AlertSummary](ctx, c, "/api/alerts/summary", nil)
}

// SetAlertStatus calls PATCH /api/alerts/{id}?status=.
func (c *Client) SetAlertStatus(ctx context.Context, id string, status model.AlertStatus) error {
	return c.patchStatus(ctx, "alerts", id, string(status))
}

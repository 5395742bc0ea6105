package api

import (
	"context"

	"github.com/samsriram712/alex/internal/model"
)

func (c *Client) ListTodos(ctx context.Context, f model.TodoFilter) ([]model.Todo, error) {
	return getList[model.Todo](ctx, c, "/api/todos", f.Query())
}

// OpenTodoCount counts the rows of GET /api/todos?status=open.
func (c *Client) OpenTodoCount(ctx context.Context) (int, error) {
	todos, err := c.ListTodos(ctx, model.TodoFilter{Status: model.TodoOpen})
	if err != nil {
		return 0, err
	}
	return len(todos), nil
}

func (c *Client) SetTodoStatus(ctx context.Context, id string, status model.TodoStatus) error {
	return c.patchStatus(ctx, "todos", id, string(status))
}

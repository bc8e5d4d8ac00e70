package xano

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"todoctl/pkg/logger"
)

type Todo struct {
	ID          int    `json:"id"`
	CreatedAt   int64  `json:"created_at"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// TodoPatch is a partial update; nil fields are left untouched remotely.
type TodoPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

func (c *Client) ListTodos(ctx context.Context) ([]*Todo, error) {
	resp, err := c.todos.R().SetContext(ctx).Get("/todo")
	if err != nil {
		logger.Log(ctx).Errorf("xano: todo list request failed: %v", err)
		return nil, fmt.Errorf("xano: todo list request failed, %w", err)
	}
	if resp.IsError() {
		apiErr := parseError(resp.StatusCode(), resp.Body())
		logger.Log(ctx).Errorf("xano: todo list rejected: %v", apiErr)
		return nil, apiErr
	}

	var todos []*Todo
	if err := json.Unmarshal(resp.Body(), &todos); err != nil {
		logger.Log(ctx).Errorf("xano: can't parse todo list: %v", err)
		return nil, fmt.Errorf("xano: can't parse todo list, %w", err)
	}
	return todos, nil
}

func (c *Client) CreateTodo(ctx context.Context, title, description string) (*Todo, error) {
	body := map[string]string{"title": title}
	if description != `` {
		body["description"] = description
	}

	resp, err := c.todos.R().SetContext(ctx).SetBody(body).Post("/todo")
	if err != nil {
		logger.Log(ctx).Errorf("xano: todo create request failed: %v", err)
		return nil, fmt.Errorf("xano: todo create request failed, %w", err)
	}
	if resp.IsError() {
		apiErr := parseError(resp.StatusCode(), resp.Body())
		logger.Log(ctx).Errorf("xano: todo create rejected: %v", apiErr)
		return nil, apiErr
	}

	return parseTodo(ctx, resp.Body())
}

func (c *Client) UpdateTodo(ctx context.Context, id int, patch TodoPatch) (*Todo, error) {
	resp, err := c.todos.R().SetContext(ctx).SetBody(patch).Patch("/todo/" + strconv.Itoa(id))
	if err != nil {
		logger.Log(ctx).Errorf("xano: todo update request failed: %v", err)
		return nil, fmt.Errorf("xano: todo update request failed, %w", err)
	}
	if resp.IsError() {
		apiErr := parseError(resp.StatusCode(), resp.Body())
		logger.Log(ctx).Errorf("xano: todo update rejected: %v", apiErr)
		return nil, apiErr
	}

	return parseTodo(ctx, resp.Body())
}

func (c *Client) DeleteTodo(ctx context.Context, id int) error {
	resp, err := c.todos.R().SetContext(ctx).Delete("/todo/" + strconv.Itoa(id))
	if err != nil {
		logger.Log(ctx).Errorf("xano: todo delete request failed: %v", err)
		return fmt.Errorf("xano: todo delete request failed, %w", err)
	}
	if resp.IsError() {
		apiErr := parseError(resp.StatusCode(), resp.Body())
		logger.Log(ctx).Errorf("xano: todo delete rejected: %v", apiErr)
		return apiErr
	}
	return nil
}

func parseTodo(ctx context.Context, body []byte) (*Todo, error) {
	t := new(Todo)
	if err := json.Unmarshal(body, t); err != nil {
		logger.Log(ctx).Errorf("xano: can't parse todo record: %v", err)
		return nil, fmt.Errorf("xano: can't parse todo record, %w", err)
	}
	return t, nil
}

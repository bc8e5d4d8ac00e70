package todo

import (
	"context"
	"strings"

	"todoctl/pkg/logger"
	"todoctl/pkg/xano"
)

type ITodoClient interface {
	ListTodos(ctx context.Context) ([]*xano.Todo, error)
	CreateTodo(ctx context.Context, title, description string) (*xano.Todo, error)
	UpdateTodo(ctx context.Context, id int, patch xano.TodoPatch) (*xano.Todo, error)
	DeleteTodo(ctx context.Context, id int) error
}

// Service is a thin layer over the remote todo resource: input validation
// here, everything else is the backend's business logic.
type Service struct {
	client ITodoClient
}

func NewService(c ITodoClient) *Service {
	return &Service{client: c}
}

func (s *Service) List(ctx context.Context) ([]*xano.Todo, error) {
	return s.client.ListTodos(ctx)
}

func (s *Service) Add(ctx context.Context, title, description string) (*xano.Todo, error) {
	title = strings.TrimSpace(title)
	if title == `` {
		return nil, ErrEmptyTitle
	}
	return s.client.CreateTodo(ctx, title, strings.TrimSpace(description))
}

func (s *Service) SetCompleted(ctx context.Context, id int, completed bool) (*xano.Todo, error) {
	if id <= 0 {
		return nil, ErrBadID
	}
	return s.client.UpdateTodo(ctx, id, xano.TodoPatch{Completed: &completed})
}

// Edit updates title and/or description; empty arguments leave the remote
// field untouched.
func (s *Service) Edit(ctx context.Context, id int, title, description string) (*xano.Todo, error) {
	if id <= 0 {
		return nil, ErrBadID
	}

	var patch xano.TodoPatch
	if t := strings.TrimSpace(title); t != `` {
		patch.Title = &t
	}
	if d := strings.TrimSpace(description); d != `` {
		patch.Description = &d
	}
	if patch.Title == nil && patch.Description == nil {
		logger.Log(ctx).Warnf("todo: edit of %d carries no changes", id)
		return nil, ErrNoChanges
	}
	return s.client.UpdateTodo(ctx, id, patch)
}

func (s *Service) Remove(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrBadID
	}
	return s.client.DeleteTodo(ctx, id)
}

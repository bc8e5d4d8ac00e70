package todo

import "errors"

var (
	ErrEmptyTitle = errors.New("todo: title must not be empty")
	ErrBadID      = errors.New("todo: id must be a positive number")
	ErrNoChanges  = errors.New("todo: nothing to update")
)

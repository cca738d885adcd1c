package tasks

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Session lookups when no row has the given id.
var ErrNotFound = errors.New("not found")

// Store is the process-wide persistence gateway. It is opened once at
// startup, shared by every request and closed at shutdown.
type Store interface {
	// Begin starts a unit of work. The caller must end it with exactly one
	// Commit or Rollback.
	Begin(ctx context.Context) (Session, error)
	Ping(ctx context.Context) error
	Close() error
}

// Session is a single unit of work. Everything done through one Session is
// committed together or discarded together. A Session belongs to one
// request and must not be shared.
type Session interface {
	InsertTask(ctx context.Context, t *Task) error
	GetTask(ctx context.Context, id int64) (Task, error)
	ListTasks(ctx context.Context) ([]Task, error)
	UpdateTask(ctx context.Context, t Task) error
	DeleteTask(ctx context.Context, id int64) error

	InsertComment(ctx context.Context, c *Comment) error
	GetComment(ctx context.Context, id int64) (Comment, error)
	ListCommentsByTask(ctx context.Context, taskID int64) ([]Comment, error)
	UpdateComment(ctx context.Context, c Comment) error
	DeleteComment(ctx context.Context, id int64) error

	Commit() error
	Rollback() error
}

// withSession runs fn inside a fresh session. The session is committed when
// fn returns nil and rolled back on any other exit, including panics.
func withSession(ctx context.Context, store Store, fn func(Session) error) (err error) {
	s, err := store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.Rollback()
		}
	}()

	if err := fn(s); err != nil {
		return err
	}
	if err := s.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	committed = true
	return nil
}

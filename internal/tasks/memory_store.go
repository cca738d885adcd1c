package tasks

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
)

var errSessionDone = errors.New("session already finished")

// InMemoryStore keeps tasks and comments in maps. A session holds the store
// lock from Begin until Commit or Rollback and works on a private copy, so
// sessions are serialized and a rollback simply drops the copy.
type InMemoryStore struct {
	mu         sync.Mutex
	taskSeq    int64
	commentSeq int64
	tasks      map[int64]Task
	comments   map[int64]Comment
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		tasks:    make(map[int64]Task),
		comments: make(map[int64]Comment),
	}
}

func (s *InMemoryStore) Begin(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &memorySession{
		store:      s,
		taskSeq:    s.taskSeq,
		commentSeq: s.commentSeq,
		tasks:      maps.Clone(s.tasks),
		comments:   maps.Clone(s.comments),
	}, nil
}

func (s *InMemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *InMemoryStore) Close() error { return nil }

type memorySession struct {
	store      *InMemoryStore
	done       bool
	taskSeq    int64
	commentSeq int64
	tasks      map[int64]Task
	comments   map[int64]Comment
}

func (m *memorySession) InsertTask(_ context.Context, t *Task) error {
	if m.done {
		return errSessionDone
	}
	m.taskSeq++
	t.ID = m.taskSeq
	m.tasks[t.ID] = *t
	return nil
}

func (m *memorySession) GetTask(_ context.Context, id int64) (Task, error) {
	if m.done {
		return Task{}, errSessionDone
	}
	t, ok := m.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	return t, nil
}

func (m *memorySession) ListTasks(_ context.Context) ([]Task, error) {
	if m.done {
		return nil, errSessionDone
	}
	out := make([]Task, 0, len(m.tasks))
	for _, id := range slices.Sorted(maps.Keys(m.tasks)) {
		out = append(out, m.tasks[id])
	}
	return out, nil
}

func (m *memorySession) UpdateTask(_ context.Context, t Task) error {
	if m.done {
		return errSessionDone
	}
	if _, ok := m.tasks[t.ID]; !ok {
		return ErrNotFound
	}
	m.tasks[t.ID] = t
	return nil
}

func (m *memorySession) DeleteTask(_ context.Context, id int64) error {
	if m.done {
		return errSessionDone
	}
	if _, ok := m.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *memorySession) InsertComment(_ context.Context, c *Comment) error {
	if m.done {
		return errSessionDone
	}
	m.commentSeq++
	c.ID = m.commentSeq
	m.comments[c.ID] = *c
	return nil
}

func (m *memorySession) GetComment(_ context.Context, id int64) (Comment, error) {
	if m.done {
		return Comment{}, errSessionDone
	}
	c, ok := m.comments[id]
	if !ok {
		return Comment{}, ErrNotFound
	}
	return c, nil
}

func (m *memorySession) ListCommentsByTask(_ context.Context, taskID int64) ([]Comment, error) {
	if m.done {
		return nil, errSessionDone
	}
	out := []Comment{}
	for _, id := range slices.Sorted(maps.Keys(m.comments)) {
		if c := m.comments[id]; c.TaskID == taskID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memorySession) UpdateComment(_ context.Context, c Comment) error {
	if m.done {
		return errSessionDone
	}
	if _, ok := m.comments[c.ID]; !ok {
		return ErrNotFound
	}
	m.comments[c.ID] = c
	return nil
}

func (m *memorySession) DeleteComment(_ context.Context, id int64) error {
	if m.done {
		return errSessionDone
	}
	if _, ok := m.comments[id]; !ok {
		return ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *memorySession) Commit() error {
	if m.done {
		return errSessionDone
	}
	m.done = true
	s := m.store
	s.taskSeq, s.commentSeq = m.taskSeq, m.commentSeq
	s.tasks, s.comments = m.tasks, m.comments
	s.mu.Unlock()
	return nil
}

func (m *memorySession) Rollback() error {
	if m.done {
		return nil
	}
	m.done = true
	m.store.mu.Unlock()
	return nil
}

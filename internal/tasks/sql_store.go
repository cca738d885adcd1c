package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/s1natex/tasks-comments-api/internal/db"
)

var storeSessionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "store_sessions_total",
		Help: "Store sessions by how they ended",
	},
	[]string{"dialect", "outcome"},
)

func init() {
	prometheus.MustRegister(storeSessionsTotal)
}

// SQLStore is the database/sql implementation of Store. Each Session is one
// database transaction.
type SQLStore struct {
	db *db.DB
}

func NewSQLStore(d *db.DB) *SQLStore {
	return &SQLStore{db: d}
}

func (s *SQLStore) Begin(ctx context.Context) (Session, error) {
	ctx, span := otel.Tracer("store").Start(ctx, "store.session",
		trace.WithAttributes(attribute.String("db.system", string(s.db.Dialect))))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "begin failed")
		span.End()
		storeSessionsTotal.WithLabelValues(string(s.db.Dialect), "begin_error").Inc()
		return nil, err
	}
	return &sqlSession{tx: tx, dialect: s.db.Dialect, span: span}, nil
}

func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLStore) Close() error { return s.db.Close() }

type sqlSession struct {
	tx      *sql.Tx
	dialect db.Dialect
	span    trace.Span
}

func (s *sqlSession) q(query string) string { return db.Rebind(s.dialect, query) }

func (s *sqlSession) InsertTask(ctx context.Context, t *Task) error {
	err := s.tx.QueryRowContext(ctx,
		s.q(`INSERT INTO task (title) VALUES (?) RETURNING id`), t.Title,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (s *sqlSession) GetTask(ctx context.Context, id int64) (Task, error) {
	var t Task
	err := s.tx.QueryRowContext(ctx,
		s.q(`SELECT id, title FROM task WHERE id = ?`), id,
	).Scan(&t.ID, &t.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("reading task %d: %w", id, err)
	}
	return t, nil
}

// ListTasks returns every task ordered by id.
func (s *sqlSession) ListTasks(ctx context.Context) ([]Task, error) {
	rows, err := s.tx.QueryContext(ctx, `SELECT id, title FROM task ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	out := []Task{}
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *sqlSession) UpdateTask(ctx context.Context, t Task) error {
	res, err := s.tx.ExecContext(ctx,
		s.q(`UPDATE task SET title = ? WHERE id = ?`), t.Title, t.ID)
	if err != nil {
		return fmt.Errorf("updating task %d: %w", t.ID, err)
	}
	return requireRow(res)
}

func (s *sqlSession) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.tx.ExecContext(ctx, s.q(`DELETE FROM task WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	return requireRow(res)
}

func (s *sqlSession) InsertComment(ctx context.Context, c *Comment) error {
	err := s.tx.QueryRowContext(ctx,
		s.q(`INSERT INTO comment (task_id, author, content) VALUES (?, ?, ?) RETURNING id`),
		c.TaskID, c.Author, c.Content,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	return nil
}

func (s *sqlSession) GetComment(ctx context.Context, id int64) (Comment, error) {
	var c Comment
	err := s.tx.QueryRowContext(ctx,
		s.q(`SELECT id, task_id, author, content FROM comment WHERE id = ?`), id,
	).Scan(&c.ID, &c.TaskID, &c.Author, &c.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return Comment{}, ErrNotFound
	}
	if err != nil {
		return Comment{}, fmt.Errorf("reading comment %d: %w", id, err)
	}
	return c, nil
}

func (s *sqlSession) ListCommentsByTask(ctx context.Context, taskID int64) ([]Comment, error) {
	rows, err := s.tx.QueryContext(ctx,
		s.q(`SELECT id, task_id, author, content FROM comment WHERE task_id = ? ORDER BY id ASC`), taskID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.Author, &c.Content); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *sqlSession) UpdateComment(ctx context.Context, c Comment) error {
	res, err := s.tx.ExecContext(ctx,
		s.q(`UPDATE comment SET author = ?, content = ? WHERE id = ?`), c.Author, c.Content, c.ID)
	if err != nil {
		return fmt.Errorf("updating comment %d: %w", c.ID, err)
	}
	return requireRow(res)
}

func (s *sqlSession) DeleteComment(ctx context.Context, id int64) error {
	res, err := s.tx.ExecContext(ctx, s.q(`DELETE FROM comment WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting comment %d: %w", id, err)
	}
	return requireRow(res)
}

func (s *sqlSession) Commit() error {
	err := s.tx.Commit()
	s.finish("commit", err)
	return err
}

func (s *sqlSession) Rollback() error {
	err := s.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	s.finish("rollback", err)
	return err
}

func (s *sqlSession) finish(outcome string, err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, outcome+" failed")
		outcome += "_error"
	}
	s.span.SetAttributes(attribute.String("store.outcome", outcome))
	s.span.End()
	storeSessionsTotal.WithLabelValues(string(s.dialect), outcome).Inc()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

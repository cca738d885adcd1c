package db

import (
	"context"
	"fmt"
)

var migrations = map[Dialect][]string{
	SQLite: {
		`CREATE TABLE IF NOT EXISTS task (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT    NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS comment (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id INTEGER NOT NULL REFERENCES task(id),
			author  TEXT    NOT NULL,
			content TEXT    NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comment_task_id ON comment(task_id)`,
	},
	// No FK constraint here: Postgres always enforces it, and a task delete
	// must not fail or cascade because comments still point at it.
	Postgres: {
		`CREATE TABLE IF NOT EXISTS task (
			id    BIGSERIAL PRIMARY KEY,
			title TEXT      NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS comment (
			id      BIGSERIAL PRIMARY KEY,
			task_id BIGINT    NOT NULL,
			author  TEXT      NOT NULL,
			content TEXT      NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comment_task_id ON comment(task_id)`,
	},
}

// Migrate creates the task and comment tables if they do not exist.
// All statements run in one transaction.
func (d *DB) Migrate(ctx context.Context) error {
	stmts, ok := migrations[d.Dialect]
	if !ok {
		return fmt.Errorf("no migrations for dialect %q", d.Dialect)
	}

	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, m := range stmts {
		if _, err := tx.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migrations: %w", err)
	}
	return nil
}

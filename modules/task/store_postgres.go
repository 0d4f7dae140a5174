package task

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/example/taskboard/domain/task"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          BIGINT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	priority    TEXT NOT NULL,
	due_date    TIMESTAMPTZ NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_filter ON tasks (status, priority, due_date, created_at);
CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks (due_date);
CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_tasks_search ON tasks
	USING GIN (to_tsvector('simple', title || ' ' || description));
`

const taskColumns = `id, title, description, status, priority, due_date, created_at, updated_at`

// PostgresStore persists tasks in PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var (
	_ Store  = (*PostgresStore)(nil)
	_ Pinger = (*PostgresStore)(nil)
	_ Closer = (*PostgresStore)(nil)
)

// OpenPostgresStore connects to dsn and creates the schema if missing.
func OpenPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return NewPostgresStore(pool), nil
}

// NewPostgresStore wraps an existing pool. The schema must already exist.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func scanTask(row pgx.Row) (domain.Task, error) {
	var (
		t                domain.Task
		status, priority string
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	t.Status = domain.Status(status)
	t.Priority = domain.Priority(priority)
	return t, err
}

func (s *PostgresStore) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (domain.Task, error) {
	t, err := scanTask(s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, domain.ErrNotFound
		}
		return domain.Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) Insert(ctx context.Context, t domain.Task) (domain.Task, error) {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		// Readers are not blocked; concurrent inserts wait for the max id.
		if _, err := tx.Exec(ctx, `LOCK TABLE tasks IN EXCLUSIVE MODE`); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			INSERT INTO tasks (`+taskColumns+`)
			SELECT COALESCE(MAX(id), 0) + 1, $1::text, $2::text, $3::text, $4::text,
				$5::timestamptz, $6::timestamptz, $7::timestamptz
			FROM tasks
			RETURNING id`,
			t.Title, t.Description, string(t.Status), string(t.Priority), t.DueDate, t.CreatedAt, t.UpdatedAt,
		).Scan(&t.ID)
	})
	if err != nil {
		return domain.Task{}, fmt.Errorf("failed to insert task: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) Update(ctx context.Context, id int64, mutate func(*domain.Task) error) (domain.Task, error) {
	var (
		updated   domain.Task
		rejectErr error
	)
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		t, err := scanTask(tx.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				rejectErr = domain.ErrNotFound
			}
			return err
		}

		if err := mutate(&t); err != nil {
			rejectErr = err
			return err
		}
		t.ID = id
		updated = t

		_, err = tx.Exec(ctx, `
			UPDATE tasks SET title = $2, description = $3, status = $4, priority = $5,
				due_date = $6, created_at = $7, updated_at = $8
			WHERE id = $1`,
			t.ID, t.Title, t.Description, string(t.Status), string(t.Priority), t.DueDate, t.CreatedAt, t.UpdatedAt,
		)
		return err
	})
	if rejectErr != nil {
		return domain.Task{}, rejectErr
	}
	if err != nil {
		return domain.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

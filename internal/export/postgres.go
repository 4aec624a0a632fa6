// Package export mirrors the task store into PostgreSQL for ad hoc
// querying. The JSON file stays the source of truth; the mirror is
// overwritten row by row on every export and never read back.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/pmagent/internal/log"
	"github.com/felixgeelhaar/pmagent/internal/task"
)

// TableName is the mirror table
const TableName = "pmagent_tasks"

// Connect opens a pool for dsn and checks that the server answers
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Mirror writes tasks into TableName.
type Mirror struct {
	pool   *pgxpool.Pool
	logger *log.Logger
	clock  func() time.Time
}

// NewMirror creates a Mirror. logger may be nil.
func NewMirror(pool *pgxpool.Pool, logger *log.Logger) *Mirror {
	if logger == nil {
		logger = log.Nop()
	}
	return &Mirror{pool: pool, logger: logger, clock: time.Now}
}

// EnsureTable creates the mirror table if it doesn't exist.
func (m *Mirror) EnsureTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+TableName+` (
			id              TEXT PRIMARY KEY,
			title           TEXT NOT NULL,
			description     TEXT NOT NULL DEFAULT '',
			priority        TEXT NOT NULL,
			status          TEXT NOT NULL,
			platform        TEXT NOT NULL,
			estimated_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
			assigned_to     TEXT,
			due_date        TIMESTAMPTZ,
			dependencies    TEXT[] NOT NULL DEFAULT '{}',
			tags            TEXT[] NOT NULL DEFAULT '{}',
			created_at      TIMESTAMPTZ NOT NULL,
			updated_at      TIMESTAMPTZ NOT NULL,
			exported_at     TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create %s: %w", TableName, err)
	}
	_, err = m.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_pmagent_tasks_status ON `+TableName+`(status)`)
	return err
}

const upsertSQL = `
	INSERT INTO ` + TableName + ` (id, title, description, priority, status, platform, estimated_hours,
		assigned_to, due_date, dependencies, tags, created_at, updated_at, exported_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		priority = EXCLUDED.priority,
		status = EXCLUDED.status,
		platform = EXCLUDED.platform,
		estimated_hours = EXCLUDED.estimated_hours,
		assigned_to = EXCLUDED.assigned_to,
		due_date = EXCLUDED.due_date,
		dependencies = EXCLUDED.dependencies,
		tags = EXCLUDED.tags,
		created_at = EXCLUDED.created_at,
		updated_at = EXCLUDED.updated_at,
		exported_at = EXCLUDED.exported_at`

// Export upserts every task in one transaction and returns the row count.
func (m *Mirror) Export(ctx context.Context, tasks []*task.Task) (int, error) {
	if err := m.EnsureTable(ctx); err != nil {
		return 0, err
	}

	exportedAt := m.clock().Truncate(time.Microsecond)
	err := pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, t := range tasks {
			batch.Queue(upsertSQL, rowArgs(t, exportedAt)...)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return 0, fmt.Errorf("export tasks: %w", err)
	}

	m.logger.Info("tasks exported", "table", TableName, "rows", len(tasks))
	return len(tasks), nil
}

// Count returns the number of mirrored rows
func (m *Mirror) Count(ctx context.Context) (int, error) {
	var n int
	if err := m.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+TableName).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", TableName, err)
	}
	return n, nil
}

// rowArgs returns the upsert arguments for t in column order
func rowArgs(t *task.Task, exportedAt time.Time) []any {
	deps := make([]string, len(t.Dependencies))
	for i, d := range t.Dependencies {
		deps[i] = string(d)
	}
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return []any{
		string(t.ID),
		t.Title,
		t.Description,
		string(t.Priority),
		string(t.Status),
		string(t.Platform),
		t.EstimatedHours,
		t.AssignedTo,
		t.DueDate,
		deps,
		tags,
		t.CreatedAt,
		t.UpdatedAt,
		exportedAt,
	}
}

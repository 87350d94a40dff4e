package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// RunSchema creates the table that records ingest runs.
const RunSchema = `
CREATE TABLE IF NOT EXISTS ingest_runs (
	id              TEXT PRIMARY KEY,
	origin          TEXT NOT NULL,
	status          TEXT NOT NULL,
	total_files     INTEGER NOT NULL DEFAULT 0,
	processed_files INTEGER NOT NULL DEFAULT 0,
	total_rows      INTEGER NOT NULL DEFAULT 0,
	snapshots       INTEGER NOT NULL DEFAULT 0,
	started_at      TIMESTAMPTZ NOT NULL,
	completed_at    TIMESTAMPTZ,
	error_message   TEXT NOT NULL DEFAULT ''
)`

// DefaultRunLimit bounds ListRuns when no positive limit is given.
const DefaultRunLimit = 20

// Repository handles database operations for ingest run tracking
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new run repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// SaveRun inserts or updates a run record
func (r *Repository) SaveRun(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO ingest_runs (
			id, origin, status, total_files, processed_files,
			total_rows, snapshots, started_at, completed_at, error_message
		) VALUES (
			:id, :origin, :status, :total_files, :processed_files,
			:total_rows, :snapshots, :started_at, :completed_at, :error_message
		)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			processed_files = EXCLUDED.processed_files,
			total_rows = EXCLUDED.total_rows,
			snapshots = EXCLUDED.snapshots,
			completed_at = EXCLUDED.completed_at,
			error_message = EXCLUDED.error_message
	`

	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("failed to save ingest run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun retrieves a run by ID. A missing run returns nil without error.
func (r *Repository) GetRun(ctx context.Context, id string) (*Run, error) {
	query := `
		SELECT id, origin, status, total_files, processed_files,
		       total_rows, snapshots, started_at, completed_at, error_message
		FROM ingest_runs
		WHERE id = $1
	`

	run := &Run{}
	err := r.db.GetContext(ctx, run, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ingest run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultRunLimit
	}
	query := `
		SELECT id, origin, status, total_files, processed_files,
		       total_rows, snapshots, started_at, completed_at, error_message
		FROM ingest_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	var runs []Run
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list ingest runs: %w", err)
	}
	return runs, nil
}

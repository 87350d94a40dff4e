package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
	"github.com/andresuchdata/fba-cockpit/internal/repository"
)

type snapshotRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Records   types.JSONText `db:"records"`
	Stats     types.JSONText `db:"stats"`
	CreatedAt time.Time      `db:"created_at"`
}

func (row snapshotRow) toDomain() (domain.Snapshot, error) {
	s := domain.Snapshot{ID: row.ID, Name: row.Name, Timestamp: row.CreatedAt}
	if len(row.Records) > 0 {
		if err := json.Unmarshal(row.Records, &s.Data); err != nil {
			return s, fmt.Errorf("error decoding records of %s: %w", row.Name, err)
		}
	}
	if len(row.Stats) > 0 {
		if err := json.Unmarshal(row.Stats, &s.Stats); err != nil {
			return s, fmt.Errorf("error decoding stats of %s: %w", row.Name, err)
		}
	}
	return s, nil
}

func newSnapshotRow(s *domain.Snapshot) (snapshotRow, error) {
	data := s.Data
	if data == nil {
		data = []domain.ProductRecord{}
	}
	records, err := json.Marshal(data)
	if err != nil {
		return snapshotRow{}, fmt.Errorf("error encoding records: %w", err)
	}
	stats, err := json.Marshal(s.Stats)
	if err != nil {
		return snapshotRow{}, fmt.Errorf("error encoding stats: %w", err)
	}
	return snapshotRow{
		ID:        s.ID,
		Name:      s.Name,
		Records:   records,
		Stats:     stats,
		CreatedAt: s.Timestamp,
	}, nil
}

type snapshotRepository struct {
	db *DB
}

func NewSnapshotRepository(db *DB) *snapshotRepository {
	return &snapshotRepository{db: db}
}

var _ repository.SnapshotRepository = (*snapshotRepository)(nil)

const upsertSnapshotQuery = `
	INSERT INTO inventory_snapshots (id, name, records, stats, created_at)
	VALUES (:id, :name, :records, :stats, :created_at)
	ON CONFLICT (name)
	DO UPDATE SET id = EXCLUDED.id, records = EXCLUDED.records,
		stats = EXCLUDED.stats, created_at = EXCLUDED.created_at
`

func (r *snapshotRepository) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	return r.SaveAll(ctx, []domain.Snapshot{*snapshot})
}

// SaveAll upserts the batch in one transaction.
func (r *snapshotRepository) SaveAll(ctx context.Context, snapshots []domain.Snapshot) error {
	if err := repository.ValidateBatch(snapshots); err != nil {
		return err
	}

	rows := make([]snapshotRow, 0, len(snapshots))
	for i := range snapshots {
		row, err := newSnapshotRow(&snapshots[i])
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, row := range rows {
			if _, err := tx.NamedExecContext(ctx, upsertSnapshotQuery, row); err != nil {
				return fmt.Errorf("error saving snapshot %s: %w", row.Name, err)
			}
		}
		return nil
	})
}

func (r *snapshotRepository) Get(ctx context.Context, name string) (*domain.Snapshot, error) {
	var row snapshotRow
	query := `SELECT id, name, records, stats, created_at FROM inventory_snapshots WHERE name = $1`
	if err := r.db.GetContext(ctx, &row, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSnapshotNotFound, name)
		}
		return nil, fmt.Errorf("error getting snapshot %s: %w", name, err)
	}

	s, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *snapshotRepository) GetMany(ctx context.Context, names []string) ([]domain.Snapshot, error) {
	var rows []snapshotRow
	query := `SELECT id, name, records, stats, created_at FROM inventory_snapshots WHERE name = ANY($1)`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(names)); err != nil {
		return nil, fmt.Errorf("error getting snapshots: %w", err)
	}
	return orderByNames(rows, names)
}

// orderByNames returns the snapshots in the requested order and fails on the
// first name with no row.
func orderByNames(rows []snapshotRow, names []string) ([]domain.Snapshot, error) {
	byName := make(map[string]snapshotRow, len(rows))
	for _, row := range rows {
		byName[row.Name] = row
	}

	out := make([]domain.Snapshot, 0, len(names))
	for _, name := range names {
		row, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrSnapshotNotFound, name)
		}
		s, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *snapshotRepository) List(ctx context.Context) ([]repository.SnapshotSummary, error) {
	var rows []snapshotRow
	query := `SELECT id, name, stats, created_at FROM inventory_snapshots ORDER BY created_at, name`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("error listing snapshots: %w", err)
	}

	out := make([]repository.SnapshotSummary, 0, len(rows))
	for _, row := range rows {
		s, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, repository.Summarize(&s))
	}
	return out, nil
}

func (r *snapshotRepository) Delete(ctx context.Context, name string) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM inventory_snapshots WHERE name = $1`, name)
		if err != nil {
			return fmt.Errorf("error deleting snapshot %s: %w", name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("error deleting snapshot %s: %w", name, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", domain.ErrSnapshotNotFound, name)
		}
		return nil
	})
}

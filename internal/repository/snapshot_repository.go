package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
)

// SnapshotSummary is a snapshot without its records.
type SnapshotSummary struct {
	ID        string       `json:"id" db:"id"`
	Name      string       `json:"name" db:"name"`
	Stats     domain.Stats `json:"stats" db:"-"`
	Timestamp time.Time    `json:"timestamp" db:"created_at"`
}

// SnapshotRepository stores snapshots by unique name. Saving a snapshot under
// an existing name replaces it. SaveAll stores a batch atomically: either
// every snapshot is saved or none is.
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot *domain.Snapshot) error
	SaveAll(ctx context.Context, snapshots []domain.Snapshot) error
	Get(ctx context.Context, name string) (*domain.Snapshot, error)
	GetMany(ctx context.Context, names []string) ([]domain.Snapshot, error)
	List(ctx context.Context) ([]SnapshotSummary, error)
	Delete(ctx context.Context, name string) error
}

// ValidateBatch rejects a batch holding a snapshot that cannot be stored, so
// implementations can fail before writing anything.
func ValidateBatch(snapshots []domain.Snapshot) error {
	for i := range snapshots {
		if snapshots[i].Name == "" {
			return fmt.Errorf("%w: snapshot %d has no name", domain.ErrInvalidRequest, i)
		}
	}
	return nil
}

// Summarize drops the records of a snapshot.
func Summarize(s *domain.Snapshot) SnapshotSummary {
	return SnapshotSummary{ID: s.ID, Name: s.Name, Stats: s.Stats, Timestamp: s.Timestamp}
}

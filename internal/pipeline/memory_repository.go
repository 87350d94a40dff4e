package pipeline

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// MemoryRepository keeps run records in process. It backs run history when
// no database is configured.
type MemoryRepository struct {
	mu   sync.RWMutex
	runs map[string]Run
}

// NewMemoryRepository creates an empty in-memory run repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{runs: make(map[string]Run)}
}

// SaveRun inserts or replaces a run record.
func (r *MemoryRepository) SaveRun(_ context.Context, run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = *run
	return nil
}

// GetRun retrieves a run by ID. A missing run returns nil without error.
func (r *MemoryRepository) GetRun(_ context.Context, id string) (*Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, nil
	}
	return &run, nil
}

// ListRuns returns the most recent runs first.
func (r *MemoryRepository) ListRuns(_ context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultRunLimit
	}

	r.mu.RLock()
	runs := make([]Run, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, run)
	}
	r.mu.RUnlock()

	slices.SortFunc(runs, func(a, b Run) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
)

type memorySnapshotRepository struct {
	mu        sync.RWMutex
	order     []string
	snapshots map[string]domain.Snapshot
}

// NewMemorySnapshotRepository keeps snapshots in process memory, listed in
// the order they were first saved.
func NewMemorySnapshotRepository() SnapshotRepository {
	return &memorySnapshotRepository{snapshots: make(map[string]domain.Snapshot)}
}

func (r *memorySnapshotRepository) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	return r.SaveAll(ctx, []domain.Snapshot{*snapshot})
}

func (r *memorySnapshotRepository) SaveAll(_ context.Context, snapshots []domain.Snapshot) error {
	if err := ValidateBatch(snapshots); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, snapshot := range snapshots {
		if _, ok := r.snapshots[snapshot.Name]; !ok {
			r.order = append(r.order, snapshot.Name)
		}
		snapshot.Data = slices.Clone(snapshot.Data)
		r.snapshots[snapshot.Name] = snapshot
	}
	return nil
}

func (r *memorySnapshotRepository) Get(_ context.Context, name string) (*domain.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.snapshots[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSnapshotNotFound, name)
	}
	s.Data = slices.Clone(s.Data)
	return &s, nil
}

func (r *memorySnapshotRepository) GetMany(ctx context.Context, names []string) ([]domain.Snapshot, error) {
	out := make([]domain.Snapshot, 0, len(names))
	for _, name := range names {
		s, err := r.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *memorySnapshotRepository) List(_ context.Context) ([]SnapshotSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SnapshotSummary, 0, len(r.order))
	for _, name := range r.order {
		s := r.snapshots[name]
		out = append(out, Summarize(&s))
	}
	return out, nil
}

func (r *memorySnapshotRepository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.snapshots[name]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrSnapshotNotFound, name)
	}
	delete(r.snapshots, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
	return nil
}

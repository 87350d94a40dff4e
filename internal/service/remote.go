package service

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
	"github.com/andresuchdata/fba-cockpit/internal/pipeline"
)

// RemoteSource lists the reports at a location and fetches them by name.
type RemoteSource interface {
	Reports(ctx context.Context, location string) ([]string, pipeline.FetchFunc, error)
}

// RemoteIngester pulls report batches from named remote sources and ingests them.
type RemoteIngester struct {
	snapshots *SnapshotService
	sources   map[string]RemoteSource
	config    pipeline.Config
}

func NewRemoteIngester(snapshots *SnapshotService, config pipeline.Config) *RemoteIngester {
	return &RemoteIngester{
		snapshots: snapshots,
		sources:   make(map[string]RemoteSource),
		config:    config,
	}
}

// Register adds a source under a name such as "drive" or "storage".
func (r *RemoteIngester) Register(name string, src RemoteSource) {
	r.sources[name] = src
}

// Sources returns the registered source names, sorted.
func (r *RemoteIngester) Sources() []string {
	return slices.Sorted(maps.Keys(r.sources))
}

// Ingest downloads every report at location from the named source and
// ingests the batch.
func (r *RemoteIngester) Ingest(ctx context.Context, source, location string) (*pipeline.Result, error) {
	src, ok := r.sources[source]
	if !ok {
		return nil, fmt.Errorf("%w: unknown source %q", domain.ErrInvalidRequest, source)
	}

	names, fetch, err := src.Reports(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s reports: %w", source, err)
	}
	if len(names) == 0 {
		return nil, domain.ErrNoSnapshotData
	}

	log.Info().Str("source", source).Str("location", location).Int("files", len(names)).Msg("fetching remote reports")
	sources, err := pipeline.NewFetcher(r.config, fetch).FetchAll(ctx, names)
	if err != nil {
		return nil, err
	}

	return r.snapshots.Ingest(ctx, source+":"+location, sources)
}

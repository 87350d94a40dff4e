package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/fba-cockpit/internal/analytics"
	"github.com/andresuchdata/fba-cockpit/internal/domain"
	"github.com/andresuchdata/fba-cockpit/internal/pipeline"
	"github.com/andresuchdata/fba-cockpit/internal/repository"
	"github.com/andresuchdata/fba-cockpit/internal/service"
)

// loadFiles ingests local report files into an in-memory snapshot service.
func loadFiles(ctx context.Context, paths []string, forecast domain.ForecastSettings) (*service.SnapshotService, *pipeline.Result, error) {
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("at least one report file is required")
	}

	sources := make([]pipeline.Source, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open %s: %w", p, err)
		}
		defer f.Close()
		sources = append(sources, pipeline.Source{Name: filepath.Base(p), Body: f})
	}

	svc := service.NewSnapshotService(repository.NewMemorySnapshotRepository(), nil, service.Settings{Forecast: forecast})
	res, err := svc.Ingest(ctx, "cli", sources)
	if err != nil {
		return nil, nil, err
	}
	return svc, res, nil
}

// pickSnapshot returns name when set, otherwise the first ingested snapshot.
func pickSnapshot(res *pipeline.Result, name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return res.Snapshots[0].Name
}

// viewFromFlags builds a view request from the shared filter, sort and
// forecast flags.
func viewFromFlags(sort, category, search, stockStatus string, limit int, forecast domain.ForecastSettings) (analytics.ViewRequest, error) {
	req := analytics.ViewRequest{
		Filters: domain.FilterState{
			Category:    category,
			Search:      search,
			StockStatus: stockStatus,
		},
		Sort:     domain.ParseSortParam(sort),
		Forecast: forecast,
		Page:     1,
		PageSize: limit,
	}
	if err := analytics.ValidateSortState(req.Sort); err != nil {
		return req, err
	}
	return req, nil
}

// objectKey joins an upload prefix and a file name into a slash separated
// object key without leading or doubled slashes.
func objectKey(prefix, name string) string {
	prefix = strings.Trim(filepath.ToSlash(strings.TrimSpace(prefix)), "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

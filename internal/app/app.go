// Package app wires configuration into the snapshot service graph shared by
// the server and the CLI.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fba-cockpit/internal/cache"
	"github.com/andresuchdata/fba-cockpit/internal/config"
	"github.com/andresuchdata/fba-cockpit/internal/domain"
	"github.com/andresuchdata/fba-cockpit/internal/drive"
	"github.com/andresuchdata/fba-cockpit/internal/pipeline"
	"github.com/andresuchdata/fba-cockpit/internal/repository"
	"github.com/andresuchdata/fba-cockpit/internal/repository/postgres"
	"github.com/andresuchdata/fba-cockpit/internal/service"
	"github.com/andresuchdata/fba-cockpit/internal/storage"
)

type App struct {
	Snapshots *service.SnapshotService
	Ingester  *service.RemoteIngester
	Storage   storage.ObjectStorage

	db *postgres.DB
}

// Forecast converts configured forecast defaults.
func Forecast(cfg config.ForecastConfig) domain.ForecastSettings {
	return domain.ForecastSettings{
		LeadTimeDays:          cfg.LeadTimeDays,
		SafetyStockDays:       cfg.SafetyStockDays,
		DemandForecastPercent: cfg.DemandForecastPercent,
	}
}

// Build connects every enabled backend. Postgres stores snapshots when
// enabled, otherwise they live in memory. A failing cache is logged and
// replaced by the noop cache.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	var repo repository.SnapshotRepository = repository.NewMemorySnapshotRepository()
	var runs service.RunStore
	if cfg.Database.Enabled {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		a.db = db
		repo = postgres.NewSnapshotRepository(db)
		runs = pipeline.NewRepository(db.DB)
	}

	snapshotCache, err := cache.NewSnapshotCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot cache unavailable, continuing without it")
		snapshotCache = cache.NewNoopSnapshotCache()
	}

	a.Snapshots = service.NewSnapshotService(repo, snapshotCache, service.Settings{
		DefaultPageSize: cfg.App.DefaultPageSize,
		Forecast:        Forecast(cfg.Forecast),
	})
	a.Snapshots.WithRunStore(runs)

	a.Ingester = service.NewRemoteIngester(a.Snapshots, pipeline.DefaultConfig())

	if cfg.Storage.Enabled {
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Storage = client
		a.Ingester.Register("storage", storage.ReportSource{Store: client})
	}

	if cfg.Drive.CredentialsFile != "" {
		downloader, err := NewDriveDownloader(ctx, cfg.Drive)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Ingester.Register("drive", downloader)
	}

	return a, nil
}

// NewDriveDownloader reads the service account key and builds a Drive downloader.
func NewDriveDownloader(ctx context.Context, cfg config.DriveConfig) (*drive.Downloader, error) {
	credentials, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read drive credentials: %w", err)
	}
	svc, err := drive.NewService(ctx, credentials)
	if err != nil {
		return nil, err
	}
	return drive.NewDownloader(svc), nil
}

func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}
}

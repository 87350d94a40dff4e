package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fba-cockpit/internal/analytics"
	"github.com/andresuchdata/fba-cockpit/internal/domain"
	"github.com/andresuchdata/fba-cockpit/internal/pipeline/fba"
)

// Orchestrator turns a batch of uploaded reports into snapshots.
type Orchestrator struct {
	now   func() time.Time
	newID func() string
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// SnapshotName derives a snapshot name from a file name by dropping the
// directory and extension.
func SnapshotName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type pendingSnapshot struct {
	name   string
	report int
	rows   []fba.RawRow
}

// NewRun starts a pending run for a batch of total files.
func (o *Orchestrator) NewRun(origin string, total int) Run {
	return Run{
		ID:         o.newID(),
		Origin:     origin,
		Status:     StatusPending,
		TotalFiles: total,
		StartedAt:  o.now(),
	}
}

// Ingest starts a run and processes sources in it.
func (o *Orchestrator) Ingest(ctx context.Context, origin string, sources []Source) (*Result, error) {
	run := o.NewRun(origin, len(sources))
	return o.Process(ctx, &run, sources)
}

// Process parses every source, then builds snapshots. Logistics and financial
// reports are merged into the join indexes first, so a snapshot report is
// enriched by every secondary report in the batch regardless of upload order.
// Sources are handled one at a time in input order. run is updated in place
// and is marked failed with the error when processing fails.
func (o *Orchestrator) Process(ctx context.Context, run *Run, sources []Source) (*Result, error) {
	run.Status = StatusProcessing
	logger := log.With().Str("run_id", run.ID).Str("origin", run.Origin).Logger()
	fail := func(err error) error {
		run.Fail(o.now(), err)
		logger.Error().Err(err).Int("processed", run.ProcessedFiles).Msg("ingest failed")
		return err
	}

	lookups := fba.Lookups{
		Logistics:  map[string]fba.LogisticsRecord{},
		Financials: map[string]fba.FinancialRecord{},
	}
	reports := make([]FileReport, 0, len(sources))
	var pending []pendingSnapshot

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, fail(err)
		}

		table, err := fba.ReadFile(src.Name, src.Body)
		if err != nil {
			return nil, fail(err)
		}

		report := FileReport{Name: src.Name, Rows: len(table.Rows)}
		kind, ok := fba.ClassifyHeaders(table.Headers)
		if !ok {
			report.Skipped = true
			report.Reason = "no sku column"
			reports = append(reports, report)
			logger.Warn().Str("file", src.Name).Msg("skipping file without sku column")
			continue
		}
		report.Kind = kind

		switch kind {
		case domain.FileKindLogistics:
			fba.MergeLogistics(lookups.Logistics, table.Rows)
		case domain.FileKindFinancial:
			fba.MergeFinancials(lookups.Financials, table.Rows)
		default:
			pending = append(pending, pendingSnapshot{
				name:   SnapshotName(src.Name),
				report: len(reports),
				rows:   table.Rows,
			})
		}
		reports = append(reports, report)
		run.ProcessedFiles++
		run.TotalRows += len(table.Rows)

		logger.Info().
			Str("file", src.Name).
			Str("kind", string(kind)).
			Int("rows", len(table.Rows)).
			Msg("classified file")
	}

	if len(pending) == 0 {
		return nil, fail(domain.ErrNoSnapshotData)
	}

	timestamp := o.now()
	snapshots := make([]domain.Snapshot, 0, len(pending))
	for _, p := range pending {
		records, built := fba.BuildRecords(p.rows, lookups)
		reports[p.report].Dropped = built.Dropped
		reports[p.report].Duplicates = built.Duplicates
		if built.Dropped > 0 || built.Duplicates > 0 {
			logger.Debug().
				Str("snapshot", p.name).
				Int("dropped", built.Dropped).
				Int("duplicates", built.Duplicates).
				Msg("rows without sku dropped or merged")
		}

		snapshots = append(snapshots, domain.Snapshot{
			ID:        o.newID(),
			Name:      p.name,
			Data:      records,
			Stats:     analytics.CalculateStats(records),
			Timestamp: timestamp,
		})
	}

	completed := o.now()
	run.Snapshots = len(snapshots)
	run.Complete(completed)

	logger.Info().
		Int("files", run.ProcessedFiles).
		Int("rows", run.TotalRows).
		Int("snapshots", run.Snapshots).
		Dur("took", completed.Sub(run.StartedAt)).
		Msg("ingest completed")

	return &Result{Run: *run, Snapshots: snapshots, Files: reports}, nil
}

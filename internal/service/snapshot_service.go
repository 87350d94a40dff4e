package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fba-cockpit/internal/analytics"
	"github.com/andresuchdata/fba-cockpit/internal/cache"
	"github.com/andresuchdata/fba-cockpit/internal/domain"
	"github.com/andresuchdata/fba-cockpit/internal/pipeline"
	"github.com/andresuchdata/fba-cockpit/internal/repository"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const maxPageSize = 500

// RunStore persists ingest run metadata.
type RunStore interface {
	SaveRun(ctx context.Context, run *pipeline.Run) error
	GetRun(ctx context.Context, id string) (*pipeline.Run, error)
	ListRuns(ctx context.Context, limit int) ([]pipeline.Run, error)
}

// Settings are the service defaults taken from configuration.
type Settings struct {
	DefaultPageSize int
	Forecast        domain.ForecastSettings
}

type SnapshotService struct {
	repo         repository.SnapshotRepository
	cache        cache.SnapshotCache
	orchestrator *pipeline.Orchestrator
	runs         RunStore
	validate     *validator.Validate
	settings     Settings
}

func NewSnapshotService(repo repository.SnapshotRepository, cacheImpl cache.SnapshotCache, settings Settings) *SnapshotService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopSnapshotCache()
	}
	if settings.DefaultPageSize <= 0 {
		settings.DefaultPageSize = analytics.DefaultPageSize
	}
	return &SnapshotService{
		repo:         repo,
		cache:        cacheImpl,
		orchestrator: pipeline.NewOrchestrator(),
		runs:         pipeline.NewMemoryRepository(),
		validate:     validator.New(),
		settings:     settings,
	}
}

// WithRunStore replaces the in-memory run history.
func (s *SnapshotService) WithRunStore(runs RunStore) *SnapshotService {
	if runs != nil {
		s.runs = runs
	}
	return s
}

// DefaultForecast returns the configured forecast settings.
func (s *SnapshotService) DefaultForecast() domain.ForecastSettings {
	return s.settings.Forecast
}

// Ingest parses a batch of reports and stores one snapshot per inventory
// report, replacing snapshots with the same name. The batch is saved
// atomically. Every ingest leaves a run record, failed ones included.
func (s *SnapshotService) Ingest(ctx context.Context, origin string, sources []pipeline.Source) (*pipeline.Result, error) {
	run := s.orchestrator.NewRun(origin, len(sources))
	s.recordRun(ctx, &run)

	result, err := s.orchestrator.Process(ctx, &run, sources)
	if err != nil {
		s.recordRun(ctx, &run)
		return nil, err
	}

	if err := s.repo.SaveAll(ctx, result.Snapshots); err != nil {
		err = fmt.Errorf("failed to save snapshots: %w", err)
		run.Fail(time.Now().UTC(), err)
		s.recordRun(ctx, &run)
		return nil, err
	}
	for i := range result.Snapshots {
		s.invalidate(ctx, result.Snapshots[i].Name)
	}

	s.recordRun(ctx, &run)
	result.Run = run
	return result, nil
}

// recordRun survives caller cancellation so failed runs are still recorded.
func (s *SnapshotService) recordRun(ctx context.Context, run *pipeline.Run) {
	if err := s.runs.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		log.Warn().Err(err).Str("run_id", run.ID).Str("status", string(run.Status)).Msg("snapshots: failed to record ingest run")
	}
}

// Runs returns the most recent ingest runs first.
func (s *SnapshotService) Runs(ctx context.Context, limit int) ([]pipeline.Run, error) {
	runs, err := s.runs.ListRuns(ctx, limit)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []pipeline.Run{}
	}
	return runs, nil
}

// Run returns one ingest run.
func (s *SnapshotService) Run(ctx context.Context, id string) (*pipeline.Run, error) {
	run, err := s.runs.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, id)
	}
	return run, nil
}

func (s *SnapshotService) List(ctx context.Context) ([]repository.SnapshotSummary, error) {
	return s.repo.List(ctx)
}

func (s *SnapshotService) Get(ctx context.Context, name string) (*domain.Snapshot, error) {
	return s.repo.Get(ctx, name)
}

func (s *SnapshotService) Delete(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		return err
	}
	s.invalidate(ctx, name)
	return nil
}

// Items returns one page of the forecast, filtered and sorted snapshot.
func (s *SnapshotService) Items(ctx context.Context, name string, req analytics.ViewRequest) (analytics.Page, error) {
	req, err := s.normalizeView(req)
	if err != nil {
		return analytics.Page{}, err
	}

	var page analytics.Page
	if s.cacheGet(ctx, name, cache.KindItems, req, &page) {
		return page, nil
	}

	snapshot, err := s.repo.Get(ctx, name)
	if err != nil {
		return analytics.Page{}, err
	}

	page = analytics.BuildView(snapshot.Data, req)
	s.cacheSet(ctx, name, cache.KindItems, req, page)
	return page, nil
}

// CompareResult is a delta view of a newer snapshot against an older base.
type CompareResult struct {
	Base         string            `json:"base"`
	Compare      string            `json:"compare"`
	Page         analytics.Page    `json:"page"`
	Discontinued []string          `json:"discontinued"`
	Alerts       []analytics.Alert `json:"alerts"`
	Stats        domain.Stats      `json:"stats"`
}

type pairKey struct {
	Base    string                `json:"base"`
	Compare string                `json:"compare"`
	View    analytics.ViewRequest `json:"view"`
}

// Compare diffs the compare snapshot against the older base snapshot and
// returns one page of the delta collection.
func (s *SnapshotService) Compare(ctx context.Context, base, compare string, req analytics.ViewRequest) (*CompareResult, error) {
	req, err := s.normalizeView(req)
	if err != nil {
		return nil, err
	}

	var result CompareResult
	key := pairKey{Base: base, Compare: compare, View: req}
	if s.cacheGet(ctx, cache.PairScope, cache.KindCompare, key, &result) {
		return &result, nil
	}

	newer, older, err := s.pair(ctx, base, compare)
	if err != nil {
		return nil, err
	}

	records := analytics.CompareSnapshots(*newer, *older)
	result = CompareResult{
		Base:         base,
		Compare:      compare,
		Page:         analytics.BuildView(records, req),
		Discontinued: analytics.DiscontinuedSKUs(*newer, *older),
		Alerts:       analytics.BuildAlerts(records, true),
		Stats:        newer.Stats,
	}
	if result.Discontinued == nil {
		result.Discontinued = []string{}
	}

	s.cacheSet(ctx, cache.PairScope, cache.KindCompare, key, result)
	return &result, nil
}

func (s *SnapshotService) pair(ctx context.Context, base, compare string) (newer, older *domain.Snapshot, err error) {
	base, compare = strings.TrimSpace(base), strings.TrimSpace(compare)
	if base == "" || compare == "" || base == compare {
		return nil, nil, domain.ErrInsufficientSnapshots
	}

	snapshots, err := s.repo.GetMany(ctx, []string{compare, base})
	if err != nil {
		return nil, nil, err
	}
	return &snapshots[0], &snapshots[1], nil
}

// ExportRequest selects the snapshot, optional comparison base and the view
// shaping applied before export. Pagination is ignored.
type ExportRequest struct {
	Name    string
	Against string
	Format  string
	View    analytics.ViewRequest
}

// Export is a rendered file.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (s *SnapshotService) Export(ctx context.Context, req ExportRequest) (*Export, error) {
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return nil, fmt.Errorf("%w: unsupported export format %q", domain.ErrInvalidRequest, req.Format)
	}

	view, err := s.normalizeView(req.View)
	if err != nil {
		return nil, err
	}

	records, err := s.records(ctx, req.Name, req.Against)
	if err != nil {
		return nil, err
	}
	records = analytics.Prepare(records, view.Filters, view.Sort, view.Forecast)

	var buf bytes.Buffer
	out := &Export{Filename: exportFilename(req.Name, req.Against, format)}
	switch format {
	case FormatXLSX:
		out.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = analytics.WriteXLSX(&buf, records)
	default:
		out.ContentType = "text/csv; charset=utf-8"
		err = analytics.WriteCSV(&buf, records)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to export %s: %w", req.Name, err)
	}
	out.Data = buf.Bytes()
	return out, nil
}

func exportFilename(name, against, format string) string {
	if against != "" {
		return fmt.Sprintf("%s_vs_%s.%s", name, against, format)
	}
	return fmt.Sprintf("%s.%s", name, format)
}

// records returns the snapshot's records, or its deltas against another
// snapshot when against is set.
func (s *SnapshotService) records(ctx context.Context, name, against string) ([]domain.ProductRecord, error) {
	if strings.TrimSpace(against) == "" {
		snapshot, err := s.repo.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		return snapshot.Data, nil
	}

	newer, older, err := s.pair(ctx, against, name)
	if err != nil {
		return nil, err
	}
	return analytics.CompareSnapshots(*newer, *older), nil
}

// Summary returns the plain-text data summary used as AI prompt context.
func (s *SnapshotService) Summary(ctx context.Context, name string) (string, error) {
	var summary string
	if s.cacheGet(ctx, name, cache.KindSummary, nil, &summary) {
		return summary, nil
	}

	snapshot, err := s.repo.Get(ctx, name)
	if err != nil {
		return "", err
	}

	summary = analytics.SummarizeForPrompt(snapshot.Data)
	s.cacheSet(ctx, name, cache.KindSummary, nil, summary)
	return summary, nil
}

// Alerts scans a snapshot, or its deltas against another snapshot when
// against is set, for proactive warnings.
func (s *SnapshotService) Alerts(ctx context.Context, name, against string) ([]analytics.Alert, error) {
	scope, key := name, any(nil)
	if against != "" {
		scope, key = cache.PairScope, pairKey{Base: against, Compare: name}
	}

	alerts := []analytics.Alert{}
	if s.cacheGet(ctx, scope, cache.KindAlerts, key, &alerts) {
		return alerts, nil
	}

	records, err := s.records(ctx, name, against)
	if err != nil {
		return nil, err
	}

	if built := analytics.BuildAlerts(records, against != ""); built != nil {
		alerts = built
	}
	s.cacheSet(ctx, scope, cache.KindAlerts, key, alerts)
	return alerts, nil
}

// KPI evaluates a mission goal over each named snapshot in order.
func (s *SnapshotService) KPI(ctx context.Context, goal string, names ...string) ([]analytics.KPIPoint, error) {
	if strings.TrimSpace(goal) == "" {
		return nil, fmt.Errorf("%w: goal is required", domain.ErrInvalidRequest)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one snapshot is required", domain.ErrInvalidRequest)
	}

	snapshots, err := s.repo.GetMany(ctx, names)
	if err != nil {
		return nil, err
	}
	return analytics.TrackKPI(goal, snapshots), nil
}

type pageBounds struct {
	Page     int `validate:"gte=0"`
	PageSize int `validate:"gte=0,lte=500"`
}

// normalizeView validates a view request and fills in defaults.
func (s *SnapshotService) normalizeView(req analytics.ViewRequest) (analytics.ViewRequest, error) {
	if err := s.validate.Struct(req.Forecast); err != nil {
		return req, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, validationMessage(err))
	}
	if err := s.validate.Struct(pageBounds{Page: req.Page, PageSize: req.PageSize}); err != nil {
		return req, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, validationMessage(err))
	}
	if err := analytics.ValidateSortState(req.Sort); err != nil {
		return req, err
	}

	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = min(s.settings.DefaultPageSize, maxPageSize)
	}
	return req, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
	}
	return strings.Join(parts, "; ")
}

func (s *SnapshotService) cacheGet(ctx context.Context, name, kind string, params, dst any) bool {
	ok, err := s.cache.Get(ctx, name, kind, params, dst)
	if err != nil {
		log.Warn().Err(err).Str("snapshot", name).Str("kind", kind).Msg("snapshots: cache get failed")
		return false
	}
	return ok
}

func (s *SnapshotService) cacheSet(ctx context.Context, name, kind string, params, value any) {
	if err := s.cache.Set(ctx, name, kind, params, value); err != nil {
		log.Warn().Err(err).Str("snapshot", name).Str("kind", kind).Msg("snapshots: cache set failed")
	}
}

// invalidate drops cached results of the snapshot and every cached pair view,
// since any of them may involve it.
func (s *SnapshotService) invalidate(ctx context.Context, name string) {
	for _, scope := range []string{name, cache.PairScope} {
		if err := s.cache.InvalidateSnapshot(ctx, scope); err != nil {
			log.Warn().Err(err).Str("snapshot", scope).Msg("snapshots: cache invalidate failed")
		}
	}
}

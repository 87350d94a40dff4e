package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fba-cockpit/internal/analytics"
	"github.com/andresuchdata/fba-cockpit/internal/domain"
	"github.com/andresuchdata/fba-cockpit/internal/pipeline"
	"github.com/andresuchdata/fba-cockpit/internal/repository"
	"github.com/andresuchdata/fba-cockpit/internal/service"
)

type SnapshotHandler struct {
	service        *service.SnapshotService
	ingester       *service.RemoteIngester
	maxUploadBytes int64
}

func NewSnapshotHandler(svc *service.SnapshotService, ingester *service.RemoteIngester, maxUploadMB int64) *SnapshotHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 50
	}
	return &SnapshotHandler{service: svc, ingester: ingester, maxUploadBytes: maxUploadMB << 20}
}

type ingestResponse struct {
	Run       pipeline.Run                 `json:"run"`
	Files     []pipeline.FileReport        `json:"files"`
	Snapshots []repository.SnapshotSummary `json:"snapshots"`
}

func newIngestResponse(res *pipeline.Result) ingestResponse {
	out := ingestResponse{Run: res.Run, Files: res.Files, Snapshots: make([]repository.SnapshotSummary, 0, len(res.Snapshots))}
	for i := range res.Snapshots {
		out.Snapshots = append(out.Snapshots, repository.Summarize(&res.Snapshots[i]))
	}
	return out
}

// Upload ingests the multipart "files" field. Inventory, logistics and
// financial reports are told apart by their headers.
func (h *SnapshotHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		if tooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large", "limit_bytes": h.maxUploadBytes})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data", "details": err.Error()})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	sources := make([]pipeline.Source, 0, len(files))
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			log.Error().Err(err).Str("filename", fh.Filename).Msg("failed to open uploaded file")
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file", "details": fh.Filename})
			return
		}
		opened = append(opened, f)
		sources = append(sources, pipeline.Source{Name: fh.Filename, Body: f})
	}

	res, err := h.service.Ingest(c.Request.Context(), "upload", sources)
	if err != nil {
		respondError(c, "failed to ingest files", err)
		return
	}

	c.JSON(http.StatusCreated, newIngestResponse(res))
}

type remoteIngestRequest struct {
	Source   string `json:"source" binding:"required"`
	Location string `json:"location"`
}

// IngestRemote pulls a batch of reports from Drive or object storage.
func (h *SnapshotHandler) IngestRemote(c *gin.Context) {
	if h.ingester == nil || len(h.ingester.Sources()) == 0 {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "no remote sources configured"})
		return
	}

	var req remoteIngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	res, err := h.ingester.Ingest(c.Request.Context(), req.Source, req.Location)
	if err != nil {
		respondError(c, "failed to ingest remote reports", err)
		return
	}

	c.JSON(http.StatusCreated, newIngestResponse(res))
}

func (h *SnapshotHandler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, "failed to list snapshots", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// Get returns a snapshot's stats without its records.
func (h *SnapshotHandler) Get(c *gin.Context) {
	snapshot, err := h.service.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, "failed to get snapshot", err)
		return
	}
	c.JSON(http.StatusOK, repository.Summarize(snapshot))
}

func (h *SnapshotHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("name")); err != nil {
		respondError(c, "failed to delete snapshot", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SnapshotHandler) Items(c *gin.Context) {
	req, err := h.parseView(c)
	if err != nil {
		respondError(c, "invalid query", err)
		return
	}

	page, err := h.service.Items(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		respondError(c, "failed to get items", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Compare diffs ?compare= against the older ?base= snapshot.
func (h *SnapshotHandler) Compare(c *gin.Context) {
	req, err := h.parseView(c)
	if err != nil {
		respondError(c, "invalid query", err)
		return
	}

	res, err := h.service.Compare(c.Request.Context(), c.Query("base"), c.Query("compare"), req)
	if err != nil {
		respondError(c, "failed to compare snapshots", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *SnapshotHandler) Export(c *gin.Context) {
	req, err := h.parseView(c)
	if err != nil {
		respondError(c, "invalid query", err)
		return
	}

	out, err := h.service.Export(c.Request.Context(), service.ExportRequest{
		Name:    c.Param("name"),
		Against: c.Query("against"),
		Format:  c.DefaultQuery("format", service.FormatCSV),
		View:    req,
	})
	if err != nil {
		respondError(c, "failed to export snapshot", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	c.Data(http.StatusOK, out.ContentType, out.Data)
}

func (h *SnapshotHandler) Summary(c *gin.Context) {
	name := c.Param("name")
	summary, err := h.service.Summary(c.Request.Context(), name)
	if err != nil {
		respondError(c, "failed to summarize snapshot", err)
		return
	}

	if strings.EqualFold(c.Query("format"), "text") {
		c.String(http.StatusOK, summary)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshot": name, "summary": summary})
}

func (h *SnapshotHandler) Alerts(c *gin.Context) {
	alerts, err := h.service.Alerts(c.Request.Context(), c.Param("name"), c.Query("against"))
	if err != nil {
		respondError(c, "failed to build alerts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": alerts})
}

// KPI evaluates ?goal= over the snapshot and any extra snapshots named in
// ?with=, in that order.
func (h *SnapshotHandler) KPI(c *gin.Context) {
	names := []string{c.Param("name")}
	for _, n := range strings.Split(c.Query("with"), ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}

	points, err := h.service.KPI(c.Request.Context(), c.Query("goal"), names...)
	if err != nil {
		respondError(c, "failed to calculate kpi", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": points})
}

func (h *SnapshotHandler) SortKeys(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": analytics.SortKeys()})
}

type sortStateRequest struct {
	Sort     json.RawMessage `json:"sort"`
	Key      string          `json:"key" binding:"required"`
	Additive bool            `json:"additive"`
}

// UpdateSortState applies a column-header click to a sort state and returns
// the next state in both the JSON and the compact query form.
func (h *SnapshotHandler) UpdateSortState(c *gin.Context) {
	var req sortStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	state, err := domain.ParseSortState(req.Sort)
	if err != nil {
		respondError(c, "invalid sort state", err)
		return
	}
	next := analytics.UpdateSort(state, strings.TrimSpace(req.Key), req.Additive)
	if err := analytics.ValidateSortState(next); err != nil {
		respondError(c, "invalid sort state", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sort": next, "param": next.Param()})
}

// parseView reads filters, sort, forecast settings and paging from the query.
// The sort parameter is either the compact "key:dir,key:dir" form or a JSON
// array or object.
func (h *SnapshotHandler) parseView(c *gin.Context) (analytics.ViewRequest, error) {
	req := analytics.ViewRequest{Forecast: h.service.DefaultForecast()}

	if err := c.ShouldBindQuery(&req.Filters); err != nil {
		return req, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	if err := c.ShouldBindQuery(&req.Forecast); err != nil {
		return req, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	sortParam := strings.TrimSpace(c.Query("sort"))
	if strings.HasPrefix(sortParam, "[") || strings.HasPrefix(sortParam, "{") {
		state, err := domain.ParseSortState([]byte(sortParam))
		if err != nil {
			return req, err
		}
		req.Sort = state
	} else {
		req.Sort = domain.ParseSortParam(sortParam)
	}

	var err error
	if req.Page, err = queryInt(c, "page"); err != nil {
		return req, err
	}
	if req.PageSize, err = queryInt(c, "page_size"); err != nil {
		return req, err
	}
	return req, nil
}

// tooLarge reports whether a body read hit the MaxBytesReader limit. The
// multipart reader does not always wrap the limit error, so its message is
// matched as well.
func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidRequest, key)
	}
	return v, nil
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/fba-cockpit/internal/analytics"
	"github.com/andresuchdata/fba-cockpit/internal/app"
	"github.com/andresuchdata/fba-cockpit/internal/config"
	"github.com/andresuchdata/fba-cockpit/internal/domain"
	"github.com/andresuchdata/fba-cockpit/internal/pipeline"
	"github.com/andresuchdata/fba-cockpit/internal/repository"
	"github.com/andresuchdata/fba-cockpit/internal/service"
)

const reportHeader = "sku,asin,product-name,condition,available,pending-removal-quantity,inv-age-0-to-90-days,inv-age-91-to-180-days,inv-age-181-to-270-days,inv-age-271-to-365-days,inv-age-365-plus-days,units-shipped-t30,recommended-action,category\n"

const janCSV = reportHeader +
	"A-1,B001,Widget,New,100,0,100,0,0,0,0,30,No Action,Home\n" +
	"B-2,B002,Gadget,New,50,0,0,0,0,0,50,0,Create Removal Order,Toys\n" +
	"C-3,B003,Gizmo,New,10,0,10,0,0,0,0,10,No Action,Home\n"

const febCSV = reportHeader +
	"A-1,B001,Widget,New,80,0,80,0,0,0,0,60,No Action,Home\n" +
	"D-4,B004,Doohickey,New,5,0,5,0,0,0,0,5,No Action,Garden\n"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter() *gin.Engine {
	svc := service.NewSnapshotService(repository.NewMemorySnapshotRepository(), nil, service.Settings{
		Forecast: analytics.DefaultForecastSettings(),
	})
	return NewRouter(&Services{Snapshots: svc, MaxUploadMB: 1}, nil)
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range []string{"jan.csv", "feb.csv", "notes.txt"} {
		content, ok := files[name]
		if !ok {
			continue
		}
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func upload(t *testing.T, router *gin.Engine, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, files)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/snapshots/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func seededRouter(t *testing.T) *gin.Engine {
	t.Helper()
	router := newTestRouter()
	rec := upload(t, router, map[string]string{"jan.csv": janCSV, "feb.csv": febCSV})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return router
}

func TestHealth(t *testing.T) {
	rec := get(newTestRouter(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUpload(t *testing.T) {
	router := newTestRouter()

	t.Run("creates snapshots", func(t *testing.T) {
		rec := upload(t, router, map[string]string{"jan.csv": janCSV})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var body struct {
			Snapshots []repository.SnapshotSummary `json:"snapshots"`
		}
		decode(t, rec, &body)
		require.Len(t, body.Snapshots, 1)
		assert.Equal(t, "jan", body.Snapshots[0].Name)
		assert.Equal(t, 3, body.Snapshots[0].Stats.TotalProducts)
	})

	t.Run("txt reports are read as csv", func(t *testing.T) {
		rec := upload(t, router, map[string]string{"notes.txt": "sku\nA\n", "jan.csv": janCSV})
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("empty form", func(t *testing.T) {
		rec := upload(t, router, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("only secondary reports", func(t *testing.T) {
		rec := upload(t, router, map[string]string{"jan.csv": "sku,cogs,price\nA-1,2,8\n"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("over the size limit", func(t *testing.T) {
		row := "A-1,B001,Widget,New,100,0,100,0,0,0,0,30,No Action,Home\n"
		big := reportHeader + strings.Repeat(row, (1<<20)/len(row)+100)
		rec := upload(t, router, map[string]string{"jan.csv": big})
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	})
}

func TestSnapshotRoutes(t *testing.T) {
	router := seededRouter(t)

	t.Run("list", func(t *testing.T) {
		rec := get(router, "/api/v1/snapshots")
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Data []repository.SnapshotSummary `json:"data"`
		}
		decode(t, rec, &body)
		require.Len(t, body.Data, 2)
		assert.Equal(t, "jan", body.Data[0].Name)
	})

	t.Run("stats", func(t *testing.T) {
		rec := get(router, "/api/v1/snapshots/feb")
		require.Equal(t, http.StatusOK, rec.Code)
		var body repository.SnapshotSummary
		decode(t, rec, &body)
		assert.Equal(t, 2, body.Stats.TotalProducts)
		assert.Equal(t, 85.0, body.Stats.TotalAvailable)
	})

	t.Run("not found", func(t *testing.T) {
		rec := get(router, "/api/v1/snapshots/mar")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "details")
	})

	t.Run("items", func(t *testing.T) {
		rec := get(router, "/api/v1/snapshots/jan/items?sort=sku:desc&page_size=2&category=Home")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var page analytics.Page
		decode(t, rec, &page)
		assert.Equal(t, 2, page.Total)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "C-3", page.Items[0].SKU)
	})

	t.Run("items with legacy sort object", func(t *testing.T) {
		q := url.Values{"sort": {`{"key":"available","direction":"asc"}`}}
		rec := get(router, "/api/v1/snapshots/jan/items?"+q.Encode())
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var page analytics.Page
		decode(t, rec, &page)
		require.Len(t, page.Items, 3)
		assert.Equal(t, "C-3", page.Items[0].SKU)
	})

	badQueries := []struct {
		name  string
		query string
	}{
		{"unknown sort key", "sort=bogus:asc"},
		{"bad page", "page=two"},
		{"bad lead time", "lead_time=soon"},
		{"negative lead time", "lead_time=-5"},
		{"broken sort json", "sort=" + url.QueryEscape("[{")},
	}
	for _, tt := range badQueries {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(router, "/api/v1/snapshots/jan/items?"+tt.query)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	t.Run("compare", func(t *testing.T) {
		rec := get(router, "/api/v1/snapshots/compare?base=jan&compare=feb&sort=sku:asc")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res service.CompareResult
		decode(t, rec, &res)
		assert.ElementsMatch(t, []string{"B-2", "C-3"}, res.Discontinued)
		require.Len(t, res.Page.Items, 2)
		require.NotNil(t, res.Page.Items[0].Comparison)
		assert.Equal(t, -20.0, res.Page.Items[0].InventoryChange)

		rec = get(router, "/api/v1/snapshots/compare?base=jan")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("export", func(t *testing.T) {
		rec := get(router, "/api/v1/snapshots/feb/export?against=jan")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "feb_vs_jan.csv")
		assert.True(t, strings.HasPrefix(rec.Body.String(), "SKU,"))
		assert.Contains(t, rec.Body.String(), "Velocity Trend (%)")

		rec = get(router, "/api/v1/snapshots/feb/export?format=pdf")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("summary", func(t *testing.T) {
		rec := get(router, "/api/v1/snapshots/jan/summary?format=text")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Body.String(), "FBA Inventory Analysis Report:"))
	})

	t.Run("alerts", func(t *testing.T) {
		rec := get(router, "/api/v1/snapshots/jan/alerts")
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Data []analytics.Alert `json:"data"`
		}
		decode(t, rec, &body)
		require.NotEmpty(t, body.Data)
		assert.Equal(t, analytics.AlertStorageFees, body.Data[len(body.Data)-1].ID)
	})

	t.Run("kpi", func(t *testing.T) {
		rec := get(router, "/api/v1/snapshots/jan/kpi?goal=improve+sell-through&with=feb")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var body struct {
			Data []analytics.KPIPoint `json:"data"`
		}
		decode(t, rec, &body)
		require.Len(t, body.Data, 2)
		assert.Equal(t, "feb", body.Data[1].Snapshot)

		rec = get(router, "/api/v1/snapshots/jan/kpi")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("sort keys", func(t *testing.T) {
		rec := get(router, "/api/v1/snapshots/sort-keys")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "riskScore")
	})

	t.Run("delete", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/snapshots/jan", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, http.StatusNotFound, get(router, "/api/v1/snapshots/jan").Code)
	})

	t.Run("remote ingest not configured", func(t *testing.T) {
		rec := postJSON(router, "/api/v1/snapshots/ingest", `{"source":"drive"}`)
		assert.Equal(t, http.StatusNotImplemented, rec.Code)
	})
}

func TestRemoteIngestWithoutSources(t *testing.T) {
	a, err := app.Build(context.Background(), &config.Config{})
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.Ingester)

	router := NewRouter(&Services{Snapshots: a.Snapshots, Ingester: a.Ingester}, nil)
	rec := postJSON(router, "/api/v1/snapshots/ingest", `{"source":"drive"}`)
	assert.Equal(t, http.StatusNotImplemented, rec.Code, rec.Body.String())
}

func TestSortStateRoute(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantParam string
	}{
		{"plain click on default", `{"key":"sku"}`, http.StatusOK, "sku:asc"},
		{"plain click flips sole key", `{"sort":[{"key":"sku","direction":"asc"}],"key":"sku"}`, http.StatusOK, "sku:desc"},
		{"additive click appends", `{"sort":[{"key":"riskScore","direction":"desc"}],"key":"sku","additive":true}`, http.StatusOK, "riskScore:desc,sku:asc"},
		{"legacy single object", `{"sort":{"key":"sku","direction":"desc"},"key":"available","additive":true}`, http.StatusOK, "sku:desc,available:asc"},
		{"unknown key", `{"key":"nope"}`, http.StatusBadRequest, ""},
		{"missing key", `{"sort":[]}`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(router, "/api/v1/snapshots/sort-state", tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode != http.StatusOK {
				return
			}
			var body struct {
				Sort  domain.SortState `json:"sort"`
				Param string           `json:"param"`
			}
			decode(t, rec, &body)
			assert.Equal(t, tt.wantParam, body.Param)
			assert.Equal(t, domain.ParseSortParam(tt.wantParam), body.Sort)
		})
	}
}

func TestRunRoutes(t *testing.T) {
	router := seededRouter(t)
	upload(t, router, map[string]string{"jan.csv": "sku,cogs,price\nA-1,2,8\n"})

	rec := get(router, "/api/v1/runs?limit=10")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Data []pipeline.Run `json:"data"`
	}
	decode(t, rec, &body)
	require.Len(t, body.Data, 2)

	statuses := map[pipeline.RunStatus]pipeline.Run{}
	for _, run := range body.Data {
		statuses[run.Status] = run
	}
	require.Contains(t, statuses, pipeline.StatusCompleted)
	require.Contains(t, statuses, pipeline.StatusFailed)
	assert.NotEmpty(t, statuses[pipeline.StatusFailed].ErrorMessage)

	rec = get(router, "/api/v1/runs/"+statuses[pipeline.StatusCompleted].ID)
	require.Equal(t, http.StatusOK, rec.Code)
	var run pipeline.Run
	decode(t, rec, &run)
	assert.Equal(t, 2, run.Snapshots)

	assert.Equal(t, http.StatusNotFound, get(router, "/api/v1/runs/missing").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/api/v1/runs?limit=x").Code)
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{"https://a.example, https://b.example", " "})
	assert.False(t, all)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, origins)

	_, all = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, all)
}

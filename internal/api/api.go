package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/fba-cockpit/internal/api/handlers"
	"github.com/andresuchdata/fba-cockpit/internal/api/middleware"
	"github.com/andresuchdata/fba-cockpit/internal/service"
)

type Services struct {
	Snapshots   *service.SnapshotService
	Ingester    *service.RemoteIngester
	MaxUploadMB int64
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil && services.Snapshots != nil {
		h := handlers.NewSnapshotHandler(services.Snapshots, services.Ingester, services.MaxUploadMB)
		snapshots := apiGroup.Group("/snapshots")
		{
			snapshots.POST("/upload", h.Upload)
			snapshots.POST("/ingest", h.IngestRemote)
			snapshots.GET("", h.List)
			snapshots.GET("/compare", h.Compare)
			snapshots.GET("/sort-keys", h.SortKeys)
			snapshots.POST("/sort-state", h.UpdateSortState)
			snapshots.GET("/:name", h.Get)
			snapshots.DELETE("/:name", h.Delete)
			snapshots.GET("/:name/items", h.Items)
			snapshots.GET("/:name/export", h.Export)
			snapshots.GET("/:name/summary", h.Summary)
			snapshots.GET("/:name/alerts", h.Alerts)
			snapshots.GET("/:name/kpi", h.KPI)
		}

		runHandler := handlers.NewRunHandler(services.Snapshots)
		runs := apiGroup.Group("/runs")
		{
			runs.GET("", runHandler.List)
			runs.GET("/:id", runHandler.Get)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}

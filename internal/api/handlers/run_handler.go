package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/fba-cockpit/internal/service"
)

// RunHandler serves ingest run history.
type RunHandler struct {
	service *service.SnapshotService
}

func NewRunHandler(svc *service.SnapshotService) *RunHandler {
	return &RunHandler{service: svc}
}

// List returns the most recent runs first, ?limit= of them.
func (h *RunHandler) List(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondError(c, "invalid query", err)
		return
	}

	runs, err := h.service.Runs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, "failed to list ingest runs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": runs})
}

func (h *RunHandler) Get(c *gin.Context) {
	run, err := h.service.Run(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "failed to get ingest run", err)
		return
	}
	c.JSON(http.StatusOK, run)
}

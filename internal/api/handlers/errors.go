package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fba-cockpit/internal/domain"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound),
		errors.Is(err, domain.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoSnapshotData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInsufficientSnapshots),
		errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrUnknownSortKey),
		errors.Is(err, domain.ErrInvalidSortState),
		errors.Is(err, domain.ErrUnsupportedFile):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps domain errors to a status code. Internal errors are
// logged and their details withheld.
func respondError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
		c.JSON(status, gin.H{"error": message})
		return
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}

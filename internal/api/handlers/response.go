package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Hafiizherdian/dashboard2y2/internal/pipeline/sales"
	"github.com/Hafiizherdian/dashboard2y2/internal/repository"
	"github.com/Hafiizherdian/dashboard2y2/internal/service"
)

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// respondServiceError maps service errors onto HTTP statuses. Unexpected
// errors are logged and reported with the fallback message only.
func respondServiceError(c *gin.Context, err error, fallback string) {
	var decodeErr *sales.DecodeError
	switch {
	case errors.Is(err, sales.ErrUnsupportedFileType):
		respondError(c, http.StatusBadRequest, "Invalid file type. Only CSV and Excel files are allowed.")
	case errors.Is(err, sales.ErrNoValidRows),
		errors.Is(err, service.ErrUnknownArea),
		errors.Is(err, service.ErrInvalidRecord),
		errors.Is(err, service.ErrInvalidArea),
		errors.Is(err, repository.ErrAreaExists):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		respondError(c, http.StatusNotFound, "Not found")
	case errors.As(err, &decodeErr):
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Failed to decode uploaded file")
		respondError(c, http.StatusInternalServerError, "Failed to read file: "+decodeErr.Err.Error())
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(fallback)
		respondError(c, http.StatusInternalServerError, fallback)
	}
}

func parsePositiveIntWithDefault(value string, fallback int) int {
	if fallback <= 0 {
		fallback = 50
	}
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func parseNonNegativeInt(value string) int {
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v >= 0 {
		return v
	}
	return 0
}

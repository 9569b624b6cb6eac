package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"site-builder-backend/internal/models"
	"site-builder-backend/internal/service"
	"site-builder-backend/pkg/logger"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, models.ErrUnknownSectionType),
		errors.Is(err, models.ErrUnsupportedFormat),
		errors.Is(err, models.ErrInvalidPageConfig),
		errors.Is(err, models.ErrInvalidPageData),
		errors.Is(err, models.ErrInvalidTemplate):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrSessionNotFound),
		errors.Is(err, models.ErrTemplateNotFound),
		errors.Is(err, models.ErrPageNotFound),
		errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNoPage),
		errors.Is(err, service.ErrJobPending):
		return http.StatusConflict
	case errors.Is(err, service.ErrTooManySessions):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError answers with the mapped status. Server errors are logged and
// their details hidden from the client.
func respondError(c *gin.Context, err error, msg string, fields map[string]interface{}) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		if fields == nil {
			fields = map[string]interface{}{}
		}
		fields[logger.RequestIDKey] = c.GetString(logger.RequestIDKey)
		logger.Error(err, msg, fields)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	body := gin.H{"error": err.Error()}
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) && validationErr.Field != "" {
		body["field"] = validationErr.Field
	}
	c.JSON(status, body)
}

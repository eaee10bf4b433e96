package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/bloodbridge/procurement/internal/domain/errors"
	"github.com/bloodbridge/procurement/internal/domain/model"
	"github.com/bloodbridge/procurement/internal/server/http/middleware"
)

// CurrentPrincipal extracts the resolved principal from context.
func CurrentPrincipal(c *gin.Context) model.Principal {
	val, ok := c.Get(middleware.PrincipalContextKey)
	if !ok {
		return model.Principal{}
	}
	principal, _ := val.(model.Principal)
	return principal
}

// respondError maps domain errors onto HTTP statuses with a stable
// machine-readable kind.
func respondError(c *gin.Context, err error) {
	var verr *domainErrors.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "fields": verr.Fields})
		return
	}

	switch {
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
	case errors.Is(err, domainErrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, domainErrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, domainErrors.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid_transition"})
	case errors.Is(err, domainErrors.ErrConflict), errors.Is(err, domainErrors.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	case errors.Is(err, domainErrors.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}

// parseFilters reads optional listing filters from the query string.
func parseFilters(c *gin.Context) (model.RequestedFilters, error) {
	var filters model.RequestedFilters

	if v := c.Query("status"); v != "" {
		status := model.Status(v)
		if !status.IsValid() {
			return filters, &domainErrors.ValidationError{Fields: []domainErrors.FieldError{
				{Field: "status", Message: "unknown status"},
			}}
		}
		filters.Status = &status
	}
	if v := c.Query("blood_type"); v != "" {
		bloodType := model.BloodType(v)
		if !bloodType.IsValid() {
			return filters, &domainErrors.ValidationError{Fields: []domainErrors.FieldError{
				{Field: "blood_type", Message: "unknown blood group"},
			}}
		}
		filters.BloodType = &bloodType
	}
	if v := c.Query("urgency"); v != "" {
		urgency := model.Urgency(v)
		if !urgency.IsValid() {
			return filters, &domainErrors.ValidationError{Fields: []domainErrors.FieldError{
				{Field: "urgency", Message: "unknown urgency"},
			}}
		}
		filters.Urgency = &urgency
	}
	if v := c.Query("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filters, &domainErrors.ValidationError{Fields: []domainErrors.FieldError{
				{Field: "from", Message: "must be RFC 3339"},
			}}
		}
		filters.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filters, &domainErrors.ValidationError{Fields: []domainErrors.FieldError{
				{Field: "to", Message: "must be RFC 3339"},
			}}
		}
		filters.To = &to
	}

	return filters, nil
}

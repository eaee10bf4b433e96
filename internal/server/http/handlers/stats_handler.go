package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bloodbridge/procurement/internal/server/http/dto"
)

// StatsHandler serves scoped dashboard aggregates.
type StatsHandler struct {
	facade StatsFacade
}

// NewStatsHandler constructs StatsHandler.
func NewStatsHandler(facade StatsFacade) *StatsHandler {
	return &StatsHandler{facade: facade}
}

// Summary handles GET /api/orders/stats.
func (h *StatsHandler) Summary(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.facade.Stats(c.Request.Context(), filters, CurrentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStats(summary))
}

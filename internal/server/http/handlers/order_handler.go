package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bloodbridge/procurement/internal/domain/model"
	"github.com/bloodbridge/procurement/internal/server/http/dto"
)

// OrderHandler manages order lifecycle endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), req.Draft(), CurrentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromOrder(order))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		respondError(c, err)
		return
	}

	orders, err := h.facade.Orders(c.Request.Context(), filters, CurrentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		response = append(response, dto.FromOrder(&orders[i]))
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), c.Param("id"), CurrentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromOrder(order))
}

// Transition handles PATCH /api/orders/:id/status.
func (h *OrderHandler) Transition(c *gin.Context) {
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	extra := model.TransitionExtra{AdminNotes: req.AdminNotes, PickupDetails: req.PickupDetails}
	order, err := h.facade.TransitionOrder(c.Request.Context(), c.Param("id"), model.Status(req.Status), CurrentPrincipal(c), req.Note, extra)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromOrder(order))
}

// Cancel handles POST /api/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	var req dto.CancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
	}

	order, err := h.facade.CancelOrder(c.Request.Context(), c.Param("id"), CurrentPrincipal(c), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromOrder(order))
}

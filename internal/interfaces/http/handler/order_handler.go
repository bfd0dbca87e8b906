package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appfulfillment "github.com/minimart/backend/internal/application/fulfillment"
)

// OrderHandler exposes the fulfillment view of orders
type OrderHandler struct {
	BaseHandler
	orders *appfulfillment.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *appfulfillment.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create handles POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req appfulfillment.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Shipments handles GET /api/v1/orders/:id/shipments
func (h *OrderHandler) Shipments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orders.GetOrderShipments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

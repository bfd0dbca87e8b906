package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appfulfillment "github.com/minimart/backend/internal/application/fulfillment"
)

// ShipmentHandler exposes shipment lifecycle operations
type ShipmentHandler struct {
	BaseHandler
	shipments *appfulfillment.ShipmentService
}

// NewShipmentHandler creates a new ShipmentHandler
func NewShipmentHandler(shipments *appfulfillment.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{shipments: shipments}
}

func shipmentNoParam(c *gin.Context) (int64, bool) {
	no, err := strconv.ParseInt(c.Param("no"), 10, 64)
	if err != nil || no <= 0 {
		return 0, false
	}
	return no, true
}

// Create handles POST /api/v1/shipments
func (h *ShipmentHandler) Create(c *gin.Context) {
	var req appfulfillment.CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.shipments.CreateShipment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /api/v1/shipments/:no
func (h *ShipmentHandler) Get(c *gin.Context) {
	no, ok := shipmentNoParam(c)
	if !ok {
		h.BadRequest(c, "Invalid shipment number")
		return
	}

	resp, err := h.shipments.GetShipment(c.Request.Context(), no)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateDestination handles PUT /api/v1/shipments/:no/destination
func (h *ShipmentHandler) UpdateDestination(c *gin.Context) {
	no, ok := shipmentNoParam(c)
	if !ok {
		h.BadRequest(c, "Invalid shipment number")
		return
	}

	var req appfulfillment.UpdateDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.shipments.UpdateDestination(c.Request.Context(), no, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Status handles GET /api/v1/shipments/:no/status. The answer comes live from
// the world simulator, not from the local database.
func (h *ShipmentHandler) Status(c *gin.Context) {
	no, ok := shipmentNoParam(c)
	if !ok {
		h.BadRequest(c, "Invalid shipment number")
		return
	}

	status, err := h.shipments.QueryPackageStatus(c.Request.Context(), no)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"shipment_no": no, "status": status})
}

// PurchaseStock handles POST /api/v1/stock/purchases
func (h *ShipmentHandler) PurchaseStock(c *gin.Context) {
	var req appfulfillment.PurchaseStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	seq, err := h.shipments.PurchaseStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, gin.H{"seq": seq})
}

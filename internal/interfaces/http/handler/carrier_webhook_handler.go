package handler

import (
	"github.com/gin-gonic/gin"

	appfulfillment "github.com/minimart/backend/internal/application/fulfillment"
	"github.com/minimart/backend/internal/interfaces/http/dto"
)

// The carrier's webhook bodies use camelCase field names; shipmentId is the
// shipment number this system assigned when the package was announced.

// truckArrivedRequest is the carrier's notification that a truck reached the
// warehouse of a package. The warehouse id is informational; the shipment
// already knows its warehouse.
type truckArrivedRequest struct {
	Seq         int64 `json:"seqnum"`
	TruckID     int64 `json:"truckId" binding:"required"`
	WarehouseID int64 `json:"warehouseId"`
	ShipmentID  int64 `json:"shipmentId" binding:"required"`
}

// trackingNumberRequest carries the tracking number the carrier assigned
type trackingNumberRequest struct {
	Seq        int64  `json:"seqnum"`
	ShipmentID int64  `json:"shipmentId" binding:"required"`
	TrackingID string `json:"trackingId" binding:"required"`
}

// statusUpdateRequest is a carrier transport status change
type statusUpdateRequest struct {
	Seq        int64  `json:"seqnum"`
	ShipmentID int64  `json:"shipmentId" binding:"required"`
	Status     string `json:"status" binding:"required"`
}

// packageDeliveredRequest is the carrier's final delivery notification
type packageDeliveredRequest struct {
	Seq        int64 `json:"seqnum"`
	ShipmentID int64 `json:"shipmentId" binding:"required"`
}

// CarrierWebhookHandler receives the carrier service's webhook callbacks.
// The carrier delivers at least once, so every handler is idempotent and the
// reply acknowledges the request's sequence number once it is processed.
type CarrierWebhookHandler struct {
	BaseHandler
	shipments *appfulfillment.ShipmentService
}

// NewCarrierWebhookHandler creates a new CarrierWebhookHandler
func NewCarrierWebhookHandler(shipments *appfulfillment.ShipmentService) *CarrierWebhookHandler {
	return &CarrierWebhookHandler{shipments: shipments}
}

func (h *CarrierWebhookHandler) ack(c *gin.Context, seq int64) {
	resp := dto.AckResponse{Acks: []int64{}}
	if seq > 0 {
		resp.Acks = append(resp.Acks, seq)
	}
	h.Success(c, resp)
}

// TruckArrived handles POST /api/v1/carrier/truck-arrived
func (h *CarrierWebhookHandler) TruckArrived(c *gin.Context) {
	var req truckArrivedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.shipments.HandleTruckArrived(c.Request.Context(), req.ShipmentID, req.TruckID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.ack(c, req.Seq)
}

// TrackingNumber handles POST /api/v1/carrier/tracking-number
func (h *CarrierWebhookHandler) TrackingNumber(c *gin.Context) {
	var req trackingNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.shipments.HandleTrackingAssigned(c.Request.Context(), req.ShipmentID, req.TrackingID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.ack(c, req.Seq)
}

// StatusUpdate handles POST /api/v1/carrier/status-update
func (h *CarrierWebhookHandler) StatusUpdate(c *gin.Context) {
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.shipments.HandleStatusUpdate(c.Request.Context(), req.ShipmentID, req.Status); err != nil {
		h.HandleError(c, err)
		return
	}
	h.ack(c, req.Seq)
}

// PackageDelivered handles POST /api/v1/carrier/package-delivered
func (h *CarrierWebhookHandler) PackageDelivered(c *gin.Context) {
	var req packageDeliveredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.shipments.HandleDelivered(c.Request.Context(), req.ShipmentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.ack(c, req.Seq)
}

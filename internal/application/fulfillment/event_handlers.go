package fulfillment

import (
	"context"

	"go.uber.org/zap"

	"github.com/minimart/backend/internal/domain/fulfillment"
	"github.com/minimart/backend/internal/domain/shared"
)

// ShipmentAuditHandler writes every shipment lifecycle transition to the
// structured log, giving operators a per-shipment history without querying
// the database
type ShipmentAuditHandler struct {
	logger *zap.Logger
}

// NewShipmentAuditHandler creates a new ShipmentAuditHandler
func NewShipmentAuditHandler(logger *zap.Logger) *ShipmentAuditHandler {
	return &ShipmentAuditHandler{logger: logger.Named("shipment-audit")}
}

// EventTypes returns the lifecycle events this handler observes
func (h *ShipmentAuditHandler) EventTypes() []string {
	return []string{
		fulfillment.EventShipmentCreated,
		fulfillment.EventShipmentPacked,
		fulfillment.EventShipmentLoading,
		fulfillment.EventShipmentLoaded,
		fulfillment.EventShipmentDelivering,
		fulfillment.EventShipmentDelivered,
		fulfillment.EventOrderFulfilled,
	}
}

// Handle logs the transition with whatever detail the concrete event carries
func (h *ShipmentAuditHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_id", event.AggregateID().String()),
	}

	switch e := event.(type) {
	case *fulfillment.ShipmentCreatedEvent:
		fields = append(fields,
			zap.Int64("shipment_no", e.ShipmentNo),
			zap.Int64("warehouse_id", e.WarehouseID),
			zap.Int64("dest_x", e.DestX),
			zap.Int64("dest_y", e.DestY))
	case *fulfillment.ShipmentPackedEvent:
		fields = append(fields, zap.Int64("shipment_no", e.ShipmentNo))
	case *fulfillment.ShipmentLoadingEvent:
		fields = append(fields,
			zap.Int64("shipment_no", e.ShipmentNo),
			zap.Int64("truck_id", e.TruckID))
	case *fulfillment.ShipmentLoadedEvent:
		fields = append(fields, zap.Int64("shipment_no", e.ShipmentNo))
	case *fulfillment.ShipmentDeliveringEvent:
		fields = append(fields, zap.Int64("shipment_no", e.ShipmentNo))
	case *fulfillment.ShipmentDeliveredEvent:
		fields = append(fields, zap.Int64("shipment_no", e.ShipmentNo))
	}

	h.logger.Info("shipment lifecycle event", fields...)
	return nil
}

var _ shared.EventHandler = (*ShipmentAuditHandler)(nil)

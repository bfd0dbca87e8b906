package fulfillment

import (
	"github.com/minimart/backend/internal/domain/shared"
)

// Event types for the shipment aggregate
const (
	EventShipmentCreated    = "fulfillment.shipment.created"
	EventShipmentPacked     = "fulfillment.shipment.packed"
	EventShipmentLoading    = "fulfillment.shipment.loading"
	EventShipmentLoaded     = "fulfillment.shipment.loaded"
	EventShipmentDelivering = "fulfillment.shipment.delivering"
	EventShipmentDelivered  = "fulfillment.shipment.delivered"
	EventOrderFulfilled     = "fulfillment.order.fulfilled"
)

const shipmentAggregateType = "Shipment"

// ShipmentCreatedEvent is emitted when a shipment is created at checkout
type ShipmentCreatedEvent struct {
	shared.BaseDomainEvent
	ShipmentNo  int64 `json:"shipment_no"`
	WarehouseID int64 `json:"warehouse_id"`
	DestX       int64 `json:"dest_x"`
	DestY       int64 `json:"dest_y"`
}

// NewShipmentCreatedEvent creates a new ShipmentCreatedEvent
func NewShipmentCreatedEvent(s *Shipment) *ShipmentCreatedEvent {
	return &ShipmentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventShipmentCreated, shipmentAggregateType, s.ID),
		ShipmentNo:      s.ShipmentNo,
		WarehouseID:     s.WarehouseID,
		DestX:           s.DestX,
		DestY:           s.DestY,
	}
}

// ShipmentPackedEvent is emitted when the warehouse finished packing
type ShipmentPackedEvent struct {
	shared.BaseDomainEvent
	ShipmentNo int64 `json:"shipment_no"`
}

// NewShipmentPackedEvent creates a new ShipmentPackedEvent
func NewShipmentPackedEvent(s *Shipment) *ShipmentPackedEvent {
	return &ShipmentPackedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventShipmentPacked, shipmentAggregateType, s.ID),
		ShipmentNo:      s.ShipmentNo,
	}
}

// ShipmentLoadingEvent is emitted when a truck is assigned and loading begins
type ShipmentLoadingEvent struct {
	shared.BaseDomainEvent
	ShipmentNo int64 `json:"shipment_no"`
	TruckID    int64 `json:"truck_id"`
}

// NewShipmentLoadingEvent creates a new ShipmentLoadingEvent
func NewShipmentLoadingEvent(s *Shipment, truckID int64) *ShipmentLoadingEvent {
	return &ShipmentLoadingEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventShipmentLoading, shipmentAggregateType, s.ID),
		ShipmentNo:      s.ShipmentNo,
		TruckID:         truckID,
	}
}

// ShipmentLoadedEvent is emitted when the package is on the truck
type ShipmentLoadedEvent struct {
	shared.BaseDomainEvent
	ShipmentNo int64 `json:"shipment_no"`
}

// NewShipmentLoadedEvent creates a new ShipmentLoadedEvent
func NewShipmentLoadedEvent(s *Shipment) *ShipmentLoadedEvent {
	return &ShipmentLoadedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventShipmentLoaded, shipmentAggregateType, s.ID),
		ShipmentNo:      s.ShipmentNo,
	}
}

// ShipmentDeliveringEvent is emitted when the carrier reports the package en route
type ShipmentDeliveringEvent struct {
	shared.BaseDomainEvent
	ShipmentNo int64 `json:"shipment_no"`
}

// NewShipmentDeliveringEvent creates a new ShipmentDeliveringEvent
func NewShipmentDeliveringEvent(s *Shipment) *ShipmentDeliveringEvent {
	return &ShipmentDeliveringEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventShipmentDelivering, shipmentAggregateType, s.ID),
		ShipmentNo:      s.ShipmentNo,
	}
}

// ShipmentDeliveredEvent is emitted on final delivery
type ShipmentDeliveredEvent struct {
	shared.BaseDomainEvent
	ShipmentNo int64 `json:"shipment_no"`
}

// NewShipmentDeliveredEvent creates a new ShipmentDeliveredEvent
func NewShipmentDeliveredEvent(s *Shipment) *ShipmentDeliveredEvent {
	return &ShipmentDeliveredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventShipmentDelivered, shipmentAggregateType, s.ID),
		ShipmentNo:      s.ShipmentNo,
	}
}

// OrderFulfilledEvent is emitted when every shipment of an order is delivered
type OrderFulfilledEvent struct {
	shared.BaseDomainEvent
}

// NewOrderFulfilledEvent creates a new OrderFulfilledEvent
func NewOrderFulfilledEvent(o *Order) *OrderFulfilledEvent {
	return &OrderFulfilledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderFulfilled, "Order", o.ID),
	}
}

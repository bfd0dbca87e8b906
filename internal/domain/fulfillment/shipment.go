package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/minimart/backend/internal/domain/shared"
)

// ShipmentStatus represents the fulfillment status of a shipment
type ShipmentStatus string

const (
	ShipmentStatusPacking    ShipmentStatus = "packing"
	ShipmentStatusPacked     ShipmentStatus = "packed"
	ShipmentStatusLoading    ShipmentStatus = "loading"
	ShipmentStatusLoaded     ShipmentStatus = "loaded"
	ShipmentStatusDelivering ShipmentStatus = "delivering"
	ShipmentStatusDelivered  ShipmentStatus = "delivered"
)

// IsValid checks if the status is a valid ShipmentStatus
func (s ShipmentStatus) IsValid() bool {
	switch s {
	case ShipmentStatusPacking, ShipmentStatusPacked, ShipmentStatusLoading,
		ShipmentStatusLoaded, ShipmentStatusDelivering, ShipmentStatusDelivered:
		return true
	}
	return false
}

// String returns the string representation of ShipmentStatus
func (s ShipmentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// The only non-adjacent move allowed is packing→loading, taken when a truck
// arrived before packing finished.
func (s ShipmentStatus) CanTransitionTo(target ShipmentStatus) bool {
	switch s {
	case ShipmentStatusPacking:
		return target == ShipmentStatusPacked || target == ShipmentStatusLoading
	case ShipmentStatusPacked:
		return target == ShipmentStatusLoading
	case ShipmentStatusLoading:
		return target == ShipmentStatusLoaded
	case ShipmentStatusLoaded:
		return target == ShipmentStatusDelivering || target == ShipmentStatusDelivered
	case ShipmentStatusDelivering:
		return target == ShipmentStatusDelivered
	case ShipmentStatusDelivered:
		return false // Terminal state
	}
	return false
}

// addressChangeable reports whether the destination may still be edited.
func (s ShipmentStatus) addressChangeable() bool {
	switch s {
	case ShipmentStatusPacking, ShipmentStatusPacked, ShipmentStatusLoading, ShipmentStatusLoaded:
		return true
	}
	return false
}

// ShipmentItem represents one product line of a shipment.
// The item set is copied from the order at creation time and never changes.
type ShipmentItem struct {
	ID          uuid.UUID
	ShipmentID  uuid.UUID
	ProductID   int64
	Description string
	Quantity    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewShipmentItem creates a new shipment item
func NewShipmentItem(shipmentID uuid.UUID, productID int64, description string, quantity int64) (*ShipmentItem, error) {
	if productID <= 0 {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID must be positive")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	now := time.Now()
	return &ShipmentItem{
		ID:          uuid.New(),
		ShipmentID:  shipmentID,
		ProductID:   productID,
		Description: description,
		Quantity:    quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Shipment represents one physical package for one order. It is the
// aggregate root mutated by the fulfillment state machine; ShipmentNo is the
// identity the world simulator and the carrier see.
type Shipment struct {
	shared.BaseAggregateRoot
	ShipmentNo     int64
	OrderID        uuid.UUID
	WarehouseID    int64
	DestX          int64
	DestY          int64
	CarrierAccount *string
	TrackingID     *string
	TruckID        *int64
	Status         ShipmentStatus
	Items          []ShipmentItem
}

// ItemInput is one product line requested for a new shipment
type ItemInput struct {
	ProductID   int64
	Description string
	Quantity    int64
}

// NewShipment creates a new shipment in packing status with a fixed item set
func NewShipment(shipmentNo int64, orderID uuid.UUID, warehouseID, destX, destY int64, carrierAccount *string, items []ItemInput) (*Shipment, error) {
	if shipmentNo <= 0 {
		return nil, shared.NewDomainError("INVALID_SHIPMENT_NO", "Shipment number must be positive")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if warehouseID <= 0 {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID must be positive")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "Shipment must contain at least one item")
	}

	shipment := &Shipment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ShipmentNo:        shipmentNo,
		OrderID:           orderID,
		WarehouseID:       warehouseID,
		DestX:             destX,
		DestY:             destY,
		CarrierAccount:    carrierAccount,
		Status:            ShipmentStatusPacking,
		Items:             make([]ShipmentItem, 0, len(items)),
	}

	seen := make(map[int64]bool, len(items))
	for _, in := range items {
		if seen[in.ProductID] {
			return nil, shared.NewDomainError("DUPLICATE_ITEM", "Duplicate product in shipment")
		}
		seen[in.ProductID] = true
		item, err := NewShipmentItem(shipment.ID, in.ProductID, in.Description, in.Quantity)
		if err != nil {
			return nil, err
		}
		shipment.Items = append(shipment.Items, *item)
	}

	shipment.AddDomainEvent(NewShipmentCreatedEvent(shipment))
	return shipment, nil
}

// transition moves the shipment to the target status or fails with a domain error
func (s *Shipment) transition(target ShipmentStatus) error {
	if !s.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			"Cannot transition shipment from "+s.Status.String()+" to "+target.String())
	}
	s.Status = target
	s.UpdatedAt = time.Now()
	return nil
}

// MarkPacked records that the warehouse finished packing the shipment
func (s *Shipment) MarkPacked() error {
	if err := s.transition(ShipmentStatusPacked); err != nil {
		return err
	}
	s.AddDomainEvent(NewShipmentPackedEvent(s))
	return nil
}

// StartLoading assigns the truck and moves the shipment to loading.
// Valid from packed, and from packing when the truck arrived first.
func (s *Shipment) StartLoading(truckID int64) error {
	if truckID <= 0 {
		return shared.NewDomainError("INVALID_TRUCK", "Truck ID must be positive")
	}
	if err := s.transition(ShipmentStatusLoading); err != nil {
		return err
	}
	s.TruckID = &truckID
	s.AddDomainEvent(NewShipmentLoadingEvent(s, truckID))
	return nil
}

// MarkLoaded records that the package is on the truck
func (s *Shipment) MarkLoaded(truckID int64) error {
	if s.TruckID == nil || *s.TruckID != truckID {
		return shared.NewDomainError("TRUCK_MISMATCH", "Loaded notification names a different truck")
	}
	if err := s.transition(ShipmentStatusLoaded); err != nil {
		return err
	}
	s.AddDomainEvent(NewShipmentLoadedEvent(s))
	return nil
}

// StartDelivering records the carrier picking the package up
func (s *Shipment) StartDelivering() error {
	if err := s.transition(ShipmentStatusDelivering); err != nil {
		return err
	}
	s.AddDomainEvent(NewShipmentDeliveringEvent(s))
	return nil
}

// MarkDelivered records final delivery. Accepted from loaded as well as
// delivering, since the carrier's delivering update may be lost or reordered.
func (s *Shipment) MarkDelivered() error {
	if err := s.transition(ShipmentStatusDelivered); err != nil {
		return err
	}
	s.AddDomainEvent(NewShipmentDeliveredEvent(s))
	return nil
}

// AssignTracking stores the tracking number the carrier assigned
func (s *Shipment) AssignTracking(trackingID string) error {
	if trackingID == "" {
		return shared.NewDomainError("INVALID_TRACKING", "Tracking ID cannot be empty")
	}
	s.TrackingID = &trackingID
	s.UpdatedAt = time.Now()
	return nil
}

// UpdateDestination changes the destination coordinates. Permitted until the
// package leaves with the carrier.
func (s *Shipment) UpdateDestination(x, y int64) error {
	if !s.Status.addressChangeable() {
		return shared.NewDomainError("ADDRESS_LOCKED",
			"Destination can no longer be changed in status "+s.Status.String())
	}
	s.DestX = x
	s.DestY = y
	s.UpdatedAt = time.Now()
	return nil
}

// IsDelivered returns true once the shipment reached its terminal state
func (s *Shipment) IsDelivered() bool {
	return s.Status == ShipmentStatusDelivered
}

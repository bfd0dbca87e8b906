package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/minimart/backend/internal/domain/shared"
)

// OrderStatus represents the fulfillment status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusFulfilled OrderStatus = "FULFILLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	return s == OrderStatusPending || s == OrderStatusFulfilled
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// OrderItem represents a line item of an order as seen by fulfillment
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   int64
	Description string
	Quantity    int64
	FulfilledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Order is the fulfillment view of a customer order: its line items, the
// destination the checkout captured, and whether every shipment arrived.
type Order struct {
	shared.BaseAggregateRoot
	Status         OrderStatus
	DestX          int64
	DestY          int64
	CarrierAccount *string
	Items          []OrderItem
}

// NewOrder creates a pending order with the given line items
func NewOrder(destX, destY int64, carrierAccount *string, items []ItemInput) (*Order, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "Order must contain at least one item")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            OrderStatusPending,
		DestX:             destX,
		DestY:             destY,
		CarrierAccount:    carrierAccount,
		Items:             make([]OrderItem, 0, len(items)),
	}

	now := time.Now()
	for _, in := range items {
		if in.ProductID <= 0 {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID must be positive")
		}
		if in.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		order.Items = append(order.Items, OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   in.ProductID,
			Description: in.Description,
			Quantity:    in.Quantity,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	return order, nil
}

// MarkFulfilled transitions the order and every line item to fulfilled,
// stamping the fulfillment time. Idempotent.
func (o *Order) MarkFulfilled() {
	if o.Status == OrderStatusFulfilled {
		return
	}
	now := time.Now()
	o.Status = OrderStatusFulfilled
	for i := range o.Items {
		o.Items[i].FulfilledAt = &now
		o.Items[i].UpdatedAt = now
	}
	o.UpdatedAt = now
	o.AddDomainEvent(NewOrderFulfilledEvent(o))
}

// IsFulfilled returns true once the order reached its terminal state
func (o *Order) IsFulfilled() bool {
	return o.Status == OrderStatusFulfilled
}

// ItemInputs returns the order's line items in shipment-creation form
func (o *Order) ItemInputs() []ItemInput {
	inputs := make([]ItemInput, 0, len(o.Items))
	for _, it := range o.Items {
		inputs = append(inputs, ItemInput{
			ProductID:   it.ProductID,
			Description: it.Description,
			Quantity:    it.Quantity,
		})
	}
	return inputs
}

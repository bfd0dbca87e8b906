package fulfillment

import (
	"time"

	"github.com/google/uuid"

	"github.com/minimart/backend/internal/domain/fulfillment"
)

// OrderItemRequest represents one product line of a new order
type OrderItemRequest struct {
	ProductID   int64  `json:"product_id" binding:"required"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest represents a request to register an order for fulfillment
type CreateOrderRequest struct {
	DestX          int64              `json:"dest_x"`
	DestY          int64              `json:"dest_y"`
	CarrierAccount *string            `json:"carrier_account"`
	Items          []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateShipmentRequest represents a request to start fulfilling an order
type CreateShipmentRequest struct {
	OrderID     uuid.UUID `json:"order_id" binding:"required"`
	WarehouseID int64     `json:"warehouse_id" binding:"required"`
}

// PurchaseStockRequest represents a request to replenish warehouse stock
type PurchaseStockRequest struct {
	WarehouseID int64  `json:"warehouse_id" binding:"required"`
	ProductID   int64  `json:"product_id" binding:"required"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity" binding:"required,min=1"`
}

// UpdateDestinationRequest represents a destination change for a shipment
type UpdateDestinationRequest struct {
	DestX int64 `json:"dest_x"`
	DestY int64 `json:"dest_y"`
}

// OrderItemResponse represents an order line item in API responses
type OrderItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   int64      `json:"product_id"`
	Description string     `json:"description"`
	Quantity    int64      `json:"quantity"`
	FulfilledAt *time.Time `json:"fulfilled_at,omitempty"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	Status         string              `json:"status"`
	DestX          int64               `json:"dest_x"`
	DestY          int64               `json:"dest_y"`
	CarrierAccount *string             `json:"carrier_account,omitempty"`
	Items          []OrderItemResponse `json:"items"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// ShipmentItemResponse represents a shipment line item in API responses
type ShipmentItemResponse struct {
	ProductID   int64  `json:"product_id"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
}

// ShipmentResponse represents a shipment in API responses
type ShipmentResponse struct {
	ShipmentNo  int64                  `json:"shipment_no"`
	OrderID     uuid.UUID              `json:"order_id"`
	WarehouseID int64                  `json:"warehouse_id"`
	Status      string                 `json:"status"`
	DestX       int64                  `json:"dest_x"`
	DestY       int64                  `json:"dest_y"`
	TruckID     *int64                 `json:"truck_id,omitempty"`
	TrackingID  *string                `json:"tracking_id,omitempty"`
	Items       []ShipmentItemResponse `json:"items"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// ToOrderResponse converts an order aggregate to its API representation
func ToOrderResponse(order *fulfillment.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, OrderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			Description: it.Description,
			Quantity:    it.Quantity,
			FulfilledAt: it.FulfilledAt,
		})
	}
	return OrderResponse{
		ID:             order.ID,
		Status:         order.Status.String(),
		DestX:          order.DestX,
		DestY:          order.DestY,
		CarrierAccount: order.CarrierAccount,
		Items:          items,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}

// ToShipmentResponse converts a shipment aggregate to its API representation
func ToShipmentResponse(shipment *fulfillment.Shipment) ShipmentResponse {
	items := make([]ShipmentItemResponse, 0, len(shipment.Items))
	for _, it := range shipment.Items {
		items = append(items, ShipmentItemResponse{
			ProductID:   it.ProductID,
			Description: it.Description,
			Quantity:    it.Quantity,
		})
	}
	return ShipmentResponse{
		ShipmentNo:  shipment.ShipmentNo,
		OrderID:     shipment.OrderID,
		WarehouseID: shipment.WarehouseID,
		Status:      shipment.Status.String(),
		DestX:       shipment.DestX,
		DestY:       shipment.DestY,
		TruckID:     shipment.TruckID,
		TrackingID:  shipment.TrackingID,
		Items:       items,
		CreatedAt:   shipment.CreatedAt,
		UpdatedAt:   shipment.UpdatedAt,
	}
}

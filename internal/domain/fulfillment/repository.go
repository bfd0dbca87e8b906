package fulfillment

import (
	"context"

	"github.com/google/uuid"
)

// ShipmentRepository defines persistence for the Shipment aggregate
type ShipmentRepository interface {
	// Save persists a new shipment with its items
	Save(ctx context.Context, shipment *Shipment) error
	// Update persists changes to an existing shipment
	Update(ctx context.Context, shipment *Shipment) error
	// FindByNo finds a shipment by its externally visible number
	FindByNo(ctx context.Context, shipmentNo int64) (*Shipment, error)
	// FindByOrderID finds all shipments belonging to an order
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*Shipment, error)
	// NextShipmentNo allocates the next externally visible shipment number
	NextShipmentNo(ctx context.Context) (int64, error)
}

// OrderRepository defines persistence for the fulfillment view of orders
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	Update(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
}

// WarehouseRepository defines persistence for warehouses and their stock
type WarehouseRepository interface {
	// ReplaceAll swaps the known warehouse set for the simulator's
	// authoritative set returned by the connect handshake
	ReplaceAll(ctx context.Context, warehouses []Warehouse) error
	// Clear removes all warehouses tied to the current connection
	Clear(ctx context.Context) error
	FindByID(ctx context.Context, id int64) (*Warehouse, error)
	List(ctx context.Context) ([]Warehouse, error)
	// AddStock increments on-hand quantity for a product at a warehouse
	AddStock(ctx context.Context, warehouseID, productID int64, description string, quantity int64) error
}

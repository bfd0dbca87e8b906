package fulfillment

import "github.com/minimart/backend/internal/domain/shared"

// Warehouse is an origin location inside the world simulation. Its identity
// is assigned by the simulator; the connect handshake makes the simulator's
// view authoritative.
type Warehouse struct {
	ID int64
	X  int64
	Y  int64
}

// NewWarehouse creates a new warehouse
func NewWarehouse(id, x, y int64) (*Warehouse, error) {
	if id <= 0 {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID must be positive")
	}
	return &Warehouse{ID: id, X: x, Y: y}, nil
}

// Stock is the on-hand quantity of one product at one warehouse, replenished
// when the simulator reports purchased goods arriving.
type Stock struct {
	WarehouseID int64
	ProductID   int64
	Description string
	Quantity    int64
}

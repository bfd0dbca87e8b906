package fulfillment

import (
	"context"

	"github.com/minimart/backend/internal/domain/fulfillment"
)

// TransactionScope runs shipment and order mutations atomically. The
// delivered handler writes both aggregates; committing one without the
// other would let a redelivered webhook be acked while the order is stuck
// pending.
type TransactionScope interface {
	// Execute runs fn inside a database transaction. An error from fn rolls
	// everything back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the fulfillment repositories scoped to
// the current transaction.
type TransactionalRepositories interface {
	ShipmentRepo() fulfillment.ShipmentRepository
	OrderRepo() fulfillment.OrderRepository
}

// NoOpTransactionScope hands back the wrapped repositories without a real
// transaction. Used in tests, where the in-memory repositories have no
// transaction support.
type NoOpTransactionScope struct {
	shipments fulfillment.ShipmentRepository
	orders    fulfillment.OrderRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given
// repositories.
func NewNoOpTransactionScope(shipments fulfillment.ShipmentRepository, orders fulfillment.OrderRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{shipments: shipments, orders: orders}
}

// Execute runs fn directly.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ShipmentRepo returns the wrapped shipment repository.
func (s *NoOpTransactionScope) ShipmentRepo() fulfillment.ShipmentRepository {
	return s.shipments
}

// OrderRepo returns the wrapped order repository.
func (s *NoOpTransactionScope) OrderRepo() fulfillment.OrderRepository {
	return s.orders
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)

package persistence

import (
	"context"

	"gorm.io/gorm"

	appfulfillment "github.com/minimart/backend/internal/application/fulfillment"
	"github.com/minimart/backend/internal/domain/fulfillment"
)

// GormTransactionScope implements the fulfillment TransactionScope on top of
// GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside a database transaction. An error from fn rolls the
// transaction back; otherwise it is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appfulfillment.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ShipmentRepo returns the shipment repository scoped to the transaction.
func (r *gormTransactionalRepositories) ShipmentRepo() fulfillment.ShipmentRepository {
	return NewGormShipmentRepository(r.tx)
}

// OrderRepo returns the order repository scoped to the transaction.
func (r *gormTransactionalRepositories) OrderRepo() fulfillment.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

var _ appfulfillment.TransactionScope = (*GormTransactionScope)(nil)
var _ appfulfillment.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

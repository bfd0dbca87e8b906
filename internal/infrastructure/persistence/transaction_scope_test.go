package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appfulfillment "github.com/minimart/backend/internal/application/fulfillment"
	"github.com/minimart/backend/internal/domain/fulfillment"
)

func TestGormTransactionScope_CommitsBothAggregates(t *testing.T) {
	db := setupTestDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()

	order, err := fulfillment.NewOrder(10, 20, nil, testShipmentItems())
	require.NoError(t, err)
	require.NoError(t, NewGormOrderRepository(db).Save(ctx, order))

	shipment, err := fulfillment.NewShipment(100, order.ID, 1, 10, 20, nil, testShipmentItems())
	require.NoError(t, err)
	require.NoError(t, NewGormShipmentRepository(db).Save(ctx, shipment))

	err = scope.Execute(ctx, func(repos appfulfillment.TransactionalRepositories) error {
		s, err := repos.ShipmentRepo().FindByNo(ctx, 100)
		if err != nil {
			return err
		}
		if err := s.MarkPacked(); err != nil {
			return err
		}
		if err := repos.ShipmentRepo().Update(ctx, s); err != nil {
			return err
		}

		o, err := repos.OrderRepo().FindByID(ctx, order.ID)
		if err != nil {
			return err
		}
		o.MarkFulfilled()
		return repos.OrderRepo().Update(ctx, o)
	})
	require.NoError(t, err)

	found, err := NewGormShipmentRepository(db).FindByNo(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.ShipmentStatusPacked, found.Status)

	foundOrder, err := NewGormOrderRepository(db).FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, foundOrder.IsFulfilled())
}

func TestGormTransactionScope_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()

	order, err := fulfillment.NewOrder(10, 20, nil, testShipmentItems())
	require.NoError(t, err)
	require.NoError(t, NewGormOrderRepository(db).Save(ctx, order))

	shipment, err := fulfillment.NewShipment(100, order.ID, 1, 10, 20, nil, testShipmentItems())
	require.NoError(t, err)
	require.NoError(t, NewGormShipmentRepository(db).Save(ctx, shipment))

	boom := errors.New("order write refused")
	err = scope.Execute(ctx, func(repos appfulfillment.TransactionalRepositories) error {
		s, err := repos.ShipmentRepo().FindByNo(ctx, 100)
		if err != nil {
			return err
		}
		if err := s.MarkPacked(); err != nil {
			return err
		}
		if err := repos.ShipmentRepo().Update(ctx, s); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The shipment write inside the failed transaction must not be visible
	found, err := NewGormShipmentRepository(db).FindByNo(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.ShipmentStatusPacking, found.Status)
}

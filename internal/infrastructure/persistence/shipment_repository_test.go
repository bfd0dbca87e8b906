package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimart/backend/internal/domain/fulfillment"
	"github.com/minimart/backend/internal/domain/shared"
)

func testShipmentItems() []fulfillment.ItemInput {
	return []fulfillment.ItemInput{
		{ProductID: 7, Description: "garden gnome", Quantity: 2},
	}
}

func TestGormShipmentRepository_SaveAndFindByNo(t *testing.T) {
	repo := NewGormShipmentRepository(setupTestDB(t))
	ctx := context.Background()

	shipment, err := fulfillment.NewShipment(100, uuid.New(), 1, 30, 40, nil, testShipmentItems())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, shipment))

	found, err := repo.FindByNo(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, shipment.ID, found.ID)
	assert.Equal(t, int64(100), found.ShipmentNo)
	assert.Equal(t, fulfillment.ShipmentStatusPacking, found.Status)
	require.Len(t, found.Items, 1)
	assert.Equal(t, int64(7), found.Items[0].ProductID)
}

func TestGormShipmentRepository_FindByNoNotFound(t *testing.T) {
	repo := NewGormShipmentRepository(setupTestDB(t))

	_, err := repo.FindByNo(context.Background(), 404)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormShipmentRepository_Update(t *testing.T) {
	repo := NewGormShipmentRepository(setupTestDB(t))
	ctx := context.Background()

	shipment, err := fulfillment.NewShipment(100, uuid.New(), 1, 30, 40, nil, testShipmentItems())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, shipment))

	require.NoError(t, shipment.MarkPacked())
	require.NoError(t, shipment.StartLoading(5))
	require.NoError(t, shipment.AssignTracking("TRK-9"))
	require.NoError(t, repo.Update(ctx, shipment))

	found, err := repo.FindByNo(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.ShipmentStatusLoading, found.Status)
	require.NotNil(t, found.TruckID)
	assert.Equal(t, int64(5), *found.TruckID)
	require.NotNil(t, found.TrackingID)
	assert.Equal(t, "TRK-9", *found.TrackingID)
}

func TestGormShipmentRepository_UpdateMissing(t *testing.T) {
	repo := NewGormShipmentRepository(setupTestDB(t))

	shipment, err := fulfillment.NewShipment(100, uuid.New(), 1, 30, 40, nil, testShipmentItems())
	require.NoError(t, err)

	err = repo.Update(context.Background(), shipment)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormShipmentRepository_FindByOrderID(t *testing.T) {
	repo := NewGormShipmentRepository(setupTestDB(t))
	ctx := context.Background()
	orderID := uuid.New()

	first, err := fulfillment.NewShipment(1, orderID, 1, 0, 0, nil, testShipmentItems())
	require.NoError(t, err)
	second, err := fulfillment.NewShipment(2, orderID, 1, 0, 0, nil, testShipmentItems())
	require.NoError(t, err)
	other, err := fulfillment.NewShipment(3, uuid.New(), 1, 0, 0, nil, testShipmentItems())
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))
	require.NoError(t, repo.Save(ctx, other))

	found, err := repo.FindByOrderID(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, int64(1), found[0].ShipmentNo)
	assert.Equal(t, int64(2), found[1].ShipmentNo)
}

func TestGormShipmentRepository_NextShipmentNo(t *testing.T) {
	repo := NewGormShipmentRepository(setupTestDB(t))
	ctx := context.Background()

	no, err := repo.NextShipmentNo(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), no)

	shipment, err := fulfillment.NewShipment(41, uuid.New(), 1, 0, 0, nil, testShipmentItems())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, shipment))

	no, err = repo.NextShipmentNo(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), no)
}

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

func TestGormOrderRepository_SaveAndFindByID(t *testing.T) {
	repo := NewGormOrderRepository(setupTestDB(t))
	ctx := context.Background()

	order, err := fulfillment.NewOrder(10, 20, nil, []fulfillment.ItemInput{
		{ProductID: 3, Description: "desk lamp", Quantity: 1},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.OrderStatusPending, found.Status)
	require.Len(t, found.Items, 1)
	assert.Nil(t, found.Items[0].FulfilledAt)
}

func TestGormOrderRepository_FindByIDNotFound(t *testing.T) {
	repo := NewGormOrderRepository(setupTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_UpdateFulfilled(t *testing.T) {
	repo := NewGormOrderRepository(setupTestDB(t))
	ctx := context.Background()

	order, err := fulfillment.NewOrder(10, 20, nil, []fulfillment.ItemInput{
		{ProductID: 3, Description: "desk lamp", Quantity: 1},
		{ProductID: 4, Description: "bookshelf", Quantity: 2},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, order))

	order.MarkFulfilled()
	require.NoError(t, repo.Update(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, found.IsFulfilled())
	for _, item := range found.Items {
		assert.NotNil(t, item.FulfilledAt)
	}
}

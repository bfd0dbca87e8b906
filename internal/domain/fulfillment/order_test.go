package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/minimart/backend/internal/domain/shared"
)

func TestNewOrder(t *testing.T) {
	tests := []struct {
		name    string
		items   []ItemInput
		wantErr bool
		errCode string
	}{
		{
			name: "valid order",
			items: []ItemInput{
				{ProductID: 3, Description: "desk lamp", Quantity: 1},
			},
			wantErr: false,
		},
		{
			name:    "no items",
			items:   nil,
			wantErr: true,
			errCode: "INVALID_ITEMS",
		},
		{
			name: "invalid product id",
			items: []ItemInput{
				{ProductID: -1, Description: "desk lamp", Quantity: 1},
			},
			wantErr: true,
			errCode: "INVALID_PRODUCT",
		},
		{
			name: "invalid quantity",
			items: []ItemInput{
				{ProductID: 3, Description: "desk lamp", Quantity: 0},
			},
			wantErr: true,
			errCode: "INVALID_QUANTITY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := NewOrder(10, 20, nil, tt.items)
			if tt.wantErr {
				require.Error(t, err)
				var domainErr *shared.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, tt.errCode, domainErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, OrderStatusPending, o.Status)
			assert.Len(t, o.Items, len(tt.items))
			assert.False(t, o.IsFulfilled())
		})
	}
}

func TestOrder_MarkFulfilled(t *testing.T) {
	o, err := NewOrder(10, 20, nil, []ItemInput{
		{ProductID: 3, Description: "desk lamp", Quantity: 1},
		{ProductID: 4, Description: "bookshelf", Quantity: 2},
	})
	require.NoError(t, err)

	o.MarkFulfilled()
	assert.True(t, o.IsFulfilled())
	for _, item := range o.Items {
		require.NotNil(t, item.FulfilledAt)
	}
	require.Len(t, o.GetDomainEvents(), 1)
	assert.Equal(t, EventOrderFulfilled, o.GetDomainEvents()[0].EventType())

	// Second call must not emit again
	o.MarkFulfilled()
	assert.Len(t, o.GetDomainEvents(), 1)
}

func TestOrder_ItemInputs(t *testing.T) {
	o, err := NewOrder(10, 20, nil, []ItemInput{
		{ProductID: 3, Description: "desk lamp", Quantity: 1},
	})
	require.NoError(t, err)

	inputs := o.ItemInputs()
	require.Len(t, inputs, 1)
	assert.Equal(t, int64(3), inputs[0].ProductID)
	assert.Equal(t, "desk lamp", inputs[0].Description)
	assert.Equal(t, int64(1), inputs[0].Quantity)
}

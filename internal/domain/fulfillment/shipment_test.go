package fulfillment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/minimart/backend/internal/domain/shared"
)

func testItems() []ItemInput {
	return []ItemInput{
		{ProductID: 7, Description: "garden gnome", Quantity: 2},
		{ProductID: 12, Description: "watering can", Quantity: 1},
	}
}

func newTestShipment(t *testing.T) *Shipment {
	t.Helper()
	s, err := NewShipment(100, uuid.New(), 1, 30, 40, nil, testItems())
	require.NoError(t, err)
	return s
}

func TestNewShipment(t *testing.T) {
	tests := []struct {
		name        string
		shipmentNo  int64
		orderID     uuid.UUID
		warehouseID int64
		items       []ItemInput
		wantErr     bool
		errCode     string
	}{
		{
			name:        "valid shipment",
			shipmentNo:  1,
			orderID:     uuid.New(),
			warehouseID: 1,
			items:       testItems(),
			wantErr:     false,
		},
		{
			name:        "invalid shipment number",
			shipmentNo:  0,
			orderID:     uuid.New(),
			warehouseID: 1,
			items:       testItems(),
			wantErr:     true,
			errCode:     "INVALID_SHIPMENT_NO",
		},
		{
			name:        "empty order id",
			shipmentNo:  1,
			orderID:     uuid.Nil,
			warehouseID: 1,
			items:       testItems(),
			wantErr:     true,
			errCode:     "INVALID_ORDER",
		},
		{
			name:        "invalid warehouse",
			shipmentNo:  1,
			orderID:     uuid.New(),
			warehouseID: 0,
			items:       testItems(),
			wantErr:     true,
			errCode:     "INVALID_WAREHOUSE",
		},
		{
			name:        "no items",
			shipmentNo:  1,
			orderID:     uuid.New(),
			warehouseID: 1,
			items:       nil,
			wantErr:     true,
			errCode:     "INVALID_ITEMS",
		},
		{
			name:        "duplicate product",
			shipmentNo:  1,
			orderID:     uuid.New(),
			warehouseID: 1,
			items: []ItemInput{
				{ProductID: 7, Description: "garden gnome", Quantity: 1},
				{ProductID: 7, Description: "garden gnome", Quantity: 3},
			},
			wantErr: true,
			errCode: "DUPLICATE_ITEM",
		},
		{
			name:        "zero quantity item",
			shipmentNo:  1,
			orderID:     uuid.New(),
			warehouseID: 1,
			items: []ItemInput{
				{ProductID: 7, Description: "garden gnome", Quantity: 0},
			},
			wantErr: true,
			errCode: "INVALID_QUANTITY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewShipment(tt.shipmentNo, tt.orderID, tt.warehouseID, 30, 40, nil, tt.items)
			if tt.wantErr {
				require.Error(t, err)
				var domainErr *shared.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, tt.errCode, domainErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ShipmentStatusPacking, s.Status)
			assert.Len(t, s.Items, len(tt.items))
			assert.Len(t, s.GetDomainEvents(), 1)
			assert.Equal(t, EventShipmentCreated, s.GetDomainEvents()[0].EventType())
		})
	}
}

func TestShipmentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name   string
		from   ShipmentStatus
		to     ShipmentStatus
		expect bool
	}{
		{"packing to packed", ShipmentStatusPacking, ShipmentStatusPacked, true},
		{"packing to loading when truck waits", ShipmentStatusPacking, ShipmentStatusLoading, true},
		{"packing to loaded", ShipmentStatusPacking, ShipmentStatusLoaded, false},
		{"packed to loading", ShipmentStatusPacked, ShipmentStatusLoading, true},
		{"packed to delivered", ShipmentStatusPacked, ShipmentStatusDelivered, false},
		{"loading to loaded", ShipmentStatusLoading, ShipmentStatusLoaded, true},
		{"loaded to delivering", ShipmentStatusLoaded, ShipmentStatusDelivering, true},
		{"loaded to delivered skips delivering", ShipmentStatusLoaded, ShipmentStatusDelivered, true},
		{"delivering to delivered", ShipmentStatusDelivering, ShipmentStatusDelivered, true},
		{"delivered is terminal", ShipmentStatusDelivered, ShipmentStatusDelivering, false},
		{"no backwards move", ShipmentStatusLoaded, ShipmentStatusPacking, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestShipment_FullLifecycle(t *testing.T) {
	s := newTestShipment(t)

	require.NoError(t, s.MarkPacked())
	assert.Equal(t, ShipmentStatusPacked, s.Status)

	require.NoError(t, s.StartLoading(5))
	assert.Equal(t, ShipmentStatusLoading, s.Status)
	require.NotNil(t, s.TruckID)
	assert.Equal(t, int64(5), *s.TruckID)

	require.NoError(t, s.MarkLoaded(5))
	assert.Equal(t, ShipmentStatusLoaded, s.Status)

	require.NoError(t, s.StartDelivering())
	require.NoError(t, s.MarkDelivered())
	assert.True(t, s.IsDelivered())

	types := make([]string, 0)
	for _, ev := range s.GetDomainEvents() {
		types = append(types, ev.EventType())
	}
	assert.Equal(t, []string{
		EventShipmentCreated,
		EventShipmentPacked,
		EventShipmentLoading,
		EventShipmentLoaded,
		EventShipmentDelivering,
		EventShipmentDelivered,
	}, types)
}

func TestShipment_TruckBeforePacked(t *testing.T) {
	s := newTestShipment(t)

	// Truck arrived while the warehouse is still packing
	require.NoError(t, s.StartLoading(9))
	assert.Equal(t, ShipmentStatusLoading, s.Status)
	require.NoError(t, s.MarkLoaded(9))
	assert.Equal(t, ShipmentStatusLoaded, s.Status)
}

func TestShipment_MarkLoadedWrongTruck(t *testing.T) {
	s := newTestShipment(t)
	require.NoError(t, s.MarkPacked())
	require.NoError(t, s.StartLoading(5))

	err := s.MarkLoaded(6)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "TRUCK_MISMATCH", domainErr.Code)
	assert.Equal(t, ShipmentStatusLoading, s.Status)
}

func TestShipment_DeliveredFromLoaded(t *testing.T) {
	s := newTestShipment(t)
	require.NoError(t, s.MarkPacked())
	require.NoError(t, s.StartLoading(2))
	require.NoError(t, s.MarkLoaded(2))

	// Delivered may arrive without a preceding delivering update
	require.NoError(t, s.MarkDelivered())
	assert.True(t, s.IsDelivered())
}

func TestShipment_InvalidTransition(t *testing.T) {
	s := newTestShipment(t)

	err := s.MarkDelivered()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
	assert.Equal(t, ShipmentStatusPacking, s.Status)
}

func TestShipment_UpdateDestination(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, s *Shipment)
		wantErr bool
	}{
		{
			name:    "while packing",
			prepare: func(t *testing.T, s *Shipment) {},
			wantErr: false,
		},
		{
			name: "while loaded",
			prepare: func(t *testing.T, s *Shipment) {
				require.NoError(t, s.MarkPacked())
				require.NoError(t, s.StartLoading(1))
				require.NoError(t, s.MarkLoaded(1))
			},
			wantErr: false,
		},
		{
			name: "while delivering",
			prepare: func(t *testing.T, s *Shipment) {
				require.NoError(t, s.MarkPacked())
				require.NoError(t, s.StartLoading(1))
				require.NoError(t, s.MarkLoaded(1))
				require.NoError(t, s.StartDelivering())
			},
			wantErr: true,
		},
		{
			name: "after delivery",
			prepare: func(t *testing.T, s *Shipment) {
				require.NoError(t, s.MarkPacked())
				require.NoError(t, s.StartLoading(1))
				require.NoError(t, s.MarkLoaded(1))
				require.NoError(t, s.MarkDelivered())
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestShipment(t)
			tt.prepare(t, s)

			err := s.UpdateDestination(-5, 77)
			if tt.wantErr {
				require.Error(t, err)
				var domainErr *shared.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, "ADDRESS_LOCKED", domainErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(-5), s.DestX)
			assert.Equal(t, int64(77), s.DestY)
		})
	}
}

func TestShipment_AssignTracking(t *testing.T) {
	s := newTestShipment(t)

	err := s.AssignTracking("")
	require.Error(t, err)

	require.NoError(t, s.AssignTracking("TRK-001"))
	require.NotNil(t, s.TrackingID)
	assert.Equal(t, "TRK-001", *s.TrackingID)
}

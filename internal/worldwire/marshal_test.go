package worldwire

import (
	"bytes"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestConnectRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  Connect
	}{
		{
			name: "fresh world with warehouses",
			msg: Connect{
				IsRequester: true,
				InitialWarehouses: []Warehouse{
					{ID: 1, X: 10, Y: 20},
					{ID: 2, X: 30, Y: 40},
				},
			},
		},
		{
			name: "reattach to existing world",
			msg: Connect{
				IsRequester: true,
				TargetID:    int64Ptr(42),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Connect
			require.NoError(t, got.Unmarshal(tt.msg.Marshal()))
			assert.Equal(t, tt.msg, got)
		})
	}
}

func TestConnectReplyRoundTrip(t *testing.T) {
	msg := ConnectReply{TargetID: 7, Result: ConnectedResult}

	var got ConnectReply
	require.NoError(t, got.Unmarshal(msg.Marshal()))
	assert.Equal(t, msg, got)
}

func TestCommandBatchRoundTrip(t *testing.T) {
	speed := uint32(500)
	msg := CommandBatch{
		Buys: []BuyCmd{
			{WarehouseID: 1, ProductID: 9, Description: "garden gnome", Quantity: 4, Seq: 11},
		},
		Packs: []PackCmd{
			{
				WarehouseID: 1,
				Items: []Item{
					{ID: 9, Description: "garden gnome", Count: 4},
					{ID: 10, Description: "watering can", Count: 1},
				},
				ShipmentID: 555,
				Seq:        12,
			},
		},
		Loads: []LoadCmd{
			{WarehouseID: 1, TruckID: 3, ShipmentID: 555, Seq: 13},
		},
		Queries: []QueryCmd{
			{PackageID: 555, Seq: 14},
		},
		SimSpeed: &speed,
		Acks:     []int64{101, 102, 103},
	}

	var got CommandBatch
	require.NoError(t, got.Unmarshal(msg.Marshal()))
	assert.Equal(t, msg, got)
}

func TestCommandBatchDisconnect(t *testing.T) {
	msg := CommandBatch{Disconnect: true}

	var got CommandBatch
	require.NoError(t, got.Unmarshal(msg.Marshal()))
	assert.True(t, got.Disconnect)
	assert.Empty(t, got.Buys)
}

func TestResponseBatchRoundTrip(t *testing.T) {
	msg := ResponseBatch{
		Acks: []int64{11, 12},
		Arrived: []ArrivedEvent{
			{
				WarehouseID: 1,
				Items:       []Item{{ID: 9, Description: "garden gnome", Count: 4}},
				Seq:         201,
			},
		},
		Ready:         []ReadyEvent{{ShipmentID: 555, Seq: 202}},
		Loaded:        []LoadedEvent{{ShipmentID: 555, Seq: 203}},
		PackageStatus: []PackageStatus{{PackageID: 555, Status: "delivering", Seq: 204}},
		Errors:        []ErrorEvent{{OriginSeq: 12, Message: "no such warehouse", Seq: 205}},
	}

	var got ResponseBatch
	require.NoError(t, got.Unmarshal(msg.Marshal()))
	assert.Equal(t, msg, got)
}

func TestNegativeCoordinatesSurviveRoundTrip(t *testing.T) {
	msg := Connect{
		IsRequester:       true,
		InitialWarehouses: []Warehouse{{ID: 1, X: -15, Y: -3}},
	}

	var got Connect
	require.NoError(t, got.Unmarshal(msg.Marshal()))
	assert.Equal(t, msg, got)
}

// Framed batch fed back through a one-byte-at-a-time reader must decode to
// the same structure.
func TestFramedBatchThroughStream(t *testing.T) {
	msg := ResponseBatch{
		Acks:  []int64{1, 2, 3},
		Ready: []ReadyEvent{{ShipmentID: 7, Seq: 99}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, msg.Marshal()))

	payload, err := ReadFrame(iotest.OneByteReader(&buf))
	require.NoError(t, err)

	var got ResponseBatch
	require.NoError(t, got.Unmarshal(payload))
	assert.Equal(t, msg, got)
}

func TestUnmarshal_UnknownFieldsSkipped(t *testing.T) {
	// A reply with an extra unknown field appended must still decode
	msg := ConnectReply{TargetID: 7, Result: ConnectedResult}
	b := msg.Marshal()
	b = appendStringField(b, 99, "future extension")

	var got ConnectReply
	require.NoError(t, got.Unmarshal(b))
	assert.Equal(t, msg, got)
}

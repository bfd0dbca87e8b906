// Package worldwire implements the binary wire protocol spoken by the world
// simulator: protobuf-encoded messages framed by a varint32 length prefix.
// Field numbers are fixed by the simulator's protocol definition and must not
// be reordered.
package worldwire

// Warehouse describes one warehouse location announced during the handshake.
type Warehouse struct {
	ID int64
	X  int64
	Y  int64
}

// Connect is the handshake request sent immediately after dialing.
// TargetID is set when reattaching to an existing simulator world.
type Connect struct {
	IsRequester       bool
	TargetID          *int64
	InitialWarehouses []Warehouse
}

// ConnectReply is the simulator's answer to Connect. Result is the literal
// string "connected!" on success, a failure description otherwise.
type ConnectReply struct {
	TargetID int64
	Result   string
}

// ConnectedResult is the exact success sentinel in ConnectReply.Result.
const ConnectedResult = "connected!"

// Item is one product line inside buy, pack and arrived messages.
type Item struct {
	ID          int64
	Description string
	Count       int64
}

// BuyCmd asks the simulator to replenish stock at a warehouse.
type BuyCmd struct {
	WarehouseID int64
	ProductID   int64
	Description string
	Quantity    int64
	Seq         int64
}

// PackCmd asks the warehouse to pack a shipment's items.
type PackCmd struct {
	WarehouseID int64
	Items       []Item
	ShipmentID  int64
	Seq         int64
}

// LoadCmd asks the warehouse to load a packed shipment onto a truck.
type LoadCmd struct {
	WarehouseID int64
	TruckID     int64
	ShipmentID  int64
	Seq         int64
}

// QueryCmd asks for the current status of a package.
type QueryCmd struct {
	PackageID int64
	Seq       int64
}

// CommandBatch is one outbound frame. Any combination of fields may be set.
type CommandBatch struct {
	Buys       []BuyCmd
	Packs      []PackCmd
	Loads      []LoadCmd
	Queries    []QueryCmd
	SimSpeed   *uint32
	Disconnect bool
	Acks       []int64
}

// ArrivedEvent reports purchased goods arriving at a warehouse.
type ArrivedEvent struct {
	WarehouseID int64
	Items       []Item
	Seq         int64
}

// ReadyEvent reports a shipment packed and ready to load.
type ReadyEvent struct {
	ShipmentID int64
	Seq        int64
}

// LoadedEvent reports a shipment loaded onto its truck.
type LoadedEvent struct {
	ShipmentID int64
	Seq        int64
}

// PackageStatus answers a QueryCmd with the package's current status.
type PackageStatus struct {
	PackageID int64
	Status    string
	Seq       int64
}

// ErrorEvent reports a command the simulator rejected. OriginSeq names the
// offending command's sequence number.
type ErrorEvent struct {
	OriginSeq int64
	Message   string
	Seq       int64
}

// ResponseBatch is one inbound frame. Any combination of fields may be set.
type ResponseBatch struct {
	Acks          []int64
	Arrived       []ArrivedEvent
	Ready         []ReadyEvent
	Loaded        []LoadedEvent
	PackageStatus []PackageStatus
	Errors        []ErrorEvent
}

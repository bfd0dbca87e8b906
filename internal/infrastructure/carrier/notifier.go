package carrier

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/minimart/backend/internal/domain/fulfillment"
	"github.com/minimart/backend/internal/outbound"
)

// Event kinds, used both as the outbound record kind and as the HTTP path
// segment the event is posted to.
const (
	KindPackageCreated = "package-created"
	KindPackagePacked  = "package-packed"
	KindPackageLoaded  = "package-loaded"
)

// Event bodies follow the carrier's camelCase JSON contract; shipmentId is
// the shipment number used on both directions of the webhook exchange.

type packageItem struct {
	ProductID   int64  `json:"productId"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
}

// packageCreatedEvent announces a new package to the carrier so a truck can
// be scheduled while the warehouse is still packing.
type packageCreatedEvent struct {
	Seq            int64         `json:"seqnum"`
	ShipmentID     int64         `json:"shipmentId"`
	OrderID        string        `json:"orderId"`
	WarehouseID    int64         `json:"warehouseId"`
	DestX          int64         `json:"destX"`
	DestY          int64         `json:"destY"`
	CarrierAccount *string       `json:"carrierAccount,omitempty"`
	Items          []packageItem `json:"items"`
}

type packagePackedEvent struct {
	Seq        int64 `json:"seqnum"`
	ShipmentID int64 `json:"shipmentId"`
}

type packageLoadedEvent struct {
	Seq        int64 `json:"seqnum"`
	ShipmentID int64 `json:"shipmentId"`
	TruckID    int64 `json:"truckId"`
}

// Notifier publishes shipment lifecycle events to the carrier through the
// reliable channel. The carrier sequence space is independent from the world
// channel's and survives restarts via the persisted outbound records.
type Notifier struct {
	channel *outbound.Channel
	logger  *zap.Logger
}

// NewNotifier creates a notifier bound to the carrier channel
func NewNotifier(channel *outbound.Channel, logger *zap.Logger) *Notifier {
	return &Notifier{
		channel: channel,
		logger:  logger.Named("carrier"),
	}
}

// PackageCreated tells the carrier a new package exists and where it must go
func (n *Notifier) PackageCreated(ctx context.Context, shipment *fulfillment.Shipment) error {
	items := make([]packageItem, 0, len(shipment.Items))
	for _, item := range shipment.Items {
		items = append(items, packageItem{
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
		})
	}

	seq := n.channel.NextSeq()
	return n.publish(ctx, seq, KindPackageCreated, packageCreatedEvent{
		Seq:            seq,
		ShipmentID:     shipment.ShipmentNo,
		OrderID:        shipment.OrderID.String(),
		WarehouseID:    shipment.WarehouseID,
		DestX:          shipment.DestX,
		DestY:          shipment.DestY,
		CarrierAccount: shipment.CarrierAccount,
		Items:          items,
	})
}

// PackagePacked tells the carrier the package is ready for pickup
func (n *Notifier) PackagePacked(ctx context.Context, shipmentNo int64) error {
	seq := n.channel.NextSeq()
	return n.publish(ctx, seq, KindPackagePacked, packagePackedEvent{
		Seq:        seq,
		ShipmentID: shipmentNo,
	})
}

// PackageLoaded tells the carrier its truck may depart
func (n *Notifier) PackageLoaded(ctx context.Context, shipmentNo, truckID int64) error {
	seq := n.channel.NextSeq()
	return n.publish(ctx, seq, KindPackageLoaded, packageLoadedEvent{
		Seq:        seq,
		ShipmentID: shipmentNo,
		TruckID:    truckID,
	})
}

func (n *Notifier) publish(ctx context.Context, seq int64, kind string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := n.channel.SendSeq(ctx, seq, kind, payload); err != nil {
		return err
	}
	n.logger.Debug("carrier event queued",
		zap.String("kind", kind),
		zap.Int64("seq", seq))
	return nil
}

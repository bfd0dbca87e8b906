package world

import (
	"context"

	"go.uber.org/zap"

	"github.com/minimart/backend/internal/domain/shared"
	"github.com/minimart/backend/internal/outbound"
	"github.com/minimart/backend/internal/worldwire"
)

// EventHandler receives the typed domain events demultiplexed from inbound
// batches. Handlers run on the receive goroutine, which owns database access.
type EventHandler interface {
	HandleGoodsArrived(ctx context.Context, warehouseID int64, items []worldwire.Item) error
	HandlePackageReady(ctx context.Context, shipmentID int64) error
	HandlePackageLoaded(ctx context.Context, shipmentID int64) error
}

// AckSender queues outbound acknowledgments
type AckSender interface {
	EnqueueAcks(acks []int64) error
}

// Dispatcher demultiplexes inbound response batches. Within a batch,
// acknowledgments are processed first, then events in type order. Every
// event gets its own eager acknowledgment queued immediately: a few extra
// small messages in exchange for per-event delivery reasoning.
type Dispatcher struct {
	channel *outbound.Channel
	acker   AckSender
	handler EventHandler
	logger  *zap.Logger
}

// NewDispatcher creates a dispatcher bound to the world channel
func NewDispatcher(channel *outbound.Channel, acker AckSender, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		channel: channel,
		acker:   acker,
		logger:  logger.Named("dispatch"),
	}
}

// SetHandler wires the domain event handler. A setter breaks the
// construction cycle between the dispatcher and the application service.
func (d *Dispatcher) SetHandler(h EventHandler) {
	d.handler = h
}

// Dispatch processes one inbound batch
func (d *Dispatcher) Dispatch(ctx context.Context, batch *worldwire.ResponseBatch) {
	for _, seq := range batch.Acks {
		d.channel.Ack(ctx, seq)
	}

	for _, e := range batch.Arrived {
		d.ackEvent(e.Seq)
		if d.handler == nil {
			continue
		}
		if err := d.handler.HandleGoodsArrived(ctx, e.WarehouseID, e.Items); err != nil {
			d.logger.Error("goods arrived handler failed",
				zap.Int64("warehouse_id", e.WarehouseID),
				zap.Error(err))
		}
	}

	for _, e := range batch.Ready {
		d.ackEvent(e.Seq)
		// The ready seq echoes the pack command's seq; release its caller
		d.channel.Resolve(e.Seq, true, nil)
		if d.handler == nil {
			continue
		}
		if err := d.handler.HandlePackageReady(ctx, e.ShipmentID); err != nil {
			d.logger.Error("package ready handler failed",
				zap.Int64("shipment_id", e.ShipmentID),
				zap.Error(err))
		}
	}

	for _, e := range batch.Loaded {
		d.ackEvent(e.Seq)
		d.channel.Resolve(e.Seq, true, nil)
		if d.handler == nil {
			continue
		}
		if err := d.handler.HandlePackageLoaded(ctx, e.ShipmentID); err != nil {
			d.logger.Error("package loaded handler failed",
				zap.Int64("shipment_id", e.ShipmentID),
				zap.Error(err))
		}
	}

	for _, p := range batch.PackageStatus {
		d.ackEvent(p.Seq)
		if !d.channel.Resolve(p.Seq, p.Status, nil) {
			d.logger.Debug("package status with no waiter",
				zap.Int64("package_id", p.PackageID),
				zap.String("status", p.Status))
		}
	}

	for _, e := range batch.Errors {
		d.ackEvent(e.Seq)
		// The offending command was received; stop retrying it
		d.channel.Ack(ctx, e.OriginSeq)
		resolved := d.channel.Resolve(e.OriginSeq, nil, shared.NewDomainError("WORLD_ERROR", e.Message))
		if !resolved {
			d.logger.Error("world rejected command",
				zap.Int64("origin_seq", e.OriginSeq),
				zap.String("message", e.Message))
		}
	}
}

func (d *Dispatcher) ackEvent(seq int64) {
	if err := d.acker.EnqueueAcks([]int64{seq}); err != nil {
		d.logger.Warn("failed to queue event ack", zap.Int64("seq", seq), zap.Error(err))
	}
}

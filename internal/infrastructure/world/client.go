// Package world manages the persistent socket connection to the world
// simulator: the connect handshake, the send and receive loops, and the
// dispatch of inbound response batches.
package world

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/minimart/backend/internal/domain/fulfillment"
	"github.com/minimart/backend/internal/domain/shared"
	"github.com/minimart/backend/internal/infrastructure/config"
	"github.com/minimart/backend/internal/outbound"
	"github.com/minimart/backend/internal/worldwire"
)

// State of the simulator connection
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// maxDescriptionLen is the longest product description the simulator accepts
const maxDescriptionLen = 50

// disconnectJoinTimeout bounds how long Disconnect waits for the loops
const disconnectJoinTimeout = 5 * time.Second

var errNotConnected = errors.New("world connection is not established")

// BatchDispatcher consumes decoded inbound response batches
type BatchDispatcher interface {
	Dispatch(ctx context.Context, batch *worldwire.ResponseBatch)
}

// Client owns the simulator connection. All outbound commands flow through
// the reliable channel into an unbounded queue drained by the send loop; the
// receive loop decodes frames and hands them to the dispatcher.
type Client struct {
	cfg        config.WorldConfig
	channel    *outbound.Channel
	warehouses fulfillment.WarehouseRepository
	logger     *zap.Logger

	mu       sync.Mutex
	state    State
	conn     net.Conn
	queue    *sendQueue
	targetID int64
	stop     context.CancelFunc
	wg       sync.WaitGroup

	dispatcher BatchDispatcher
}

// NewClient creates a world client in disconnected state
func NewClient(cfg config.WorldConfig, warehouses fulfillment.WarehouseRepository, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		warehouses: warehouses,
		logger:     logger.Named("world"),
		state:      StateDisconnected,
	}
}

// SetChannel wires the reliable channel whose transport is this client.
// Must be called before Connect; a setter breaks the construction cycle
// between client and channel.
func (c *Client) SetChannel(channel *outbound.Channel) {
	c.channel = channel
}

// SetDispatcher wires the inbound dispatcher. Must be called before Connect.
func (c *Client) SetDispatcher(d BatchDispatcher) {
	c.dispatcher = d
}

// State reports the current connection state
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// TargetID reports the world the client is attached to. Only meaningful
// while connected.
func (c *Client) TargetID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.targetID
}

// Transport adapts the client into the reliable channel's delivery function.
// Delivery is an enqueue; acknowledgments arrive asynchronously through the
// receive loop.
func (c *Client) Transport() outbound.Transport {
	return func(ctx context.Context, rec *outbound.Record) ([]int64, error) {
		if !c.enqueue(rec.Payload) {
			return nil, errNotConnected
		}
		return nil, nil
	}
}

// Connect dials the simulator and performs the handshake. A nil targetID
// requests a fresh world; a non-nil one reattaches to an existing world.
// Success requires the simulator's verbatim "connected!" reply; any other
// reply text is surfaced as the failure reason. On success the simulator's
// warehouse set replaces the stored one and both loops start.
func (c *Client) Connect(ctx context.Context, targetID *int64, warehouses []worldwire.Warehouse) (int64, error) {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return 0, shared.NewDomainError("ALREADY_CONNECTED", "World connection already established")
	}
	c.state = StateConnecting
	c.mu.Unlock()

	dialer := net.Dialer{Timeout: c.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.cfg.Address())
	if err != nil {
		c.setDisconnected()
		return 0, fmt.Errorf("dial world simulator at %s: %w", c.cfg.Address(), err)
	}

	reply, err := c.handshake(conn, targetID, warehouses)
	if err != nil {
		conn.Close()
		c.setDisconnected()
		return 0, err
	}

	stored := make([]fulfillment.Warehouse, 0, len(warehouses))
	for _, w := range warehouses {
		stored = append(stored, fulfillment.Warehouse{ID: w.ID, X: w.X, Y: w.Y})
	}
	if err := c.warehouses.ReplaceAll(ctx, stored); err != nil {
		conn.Close()
		c.setDisconnected()
		return 0, fmt.Errorf("persist warehouses: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.conn = conn
	c.queue = newSendQueue()
	c.targetID = reply.TargetID
	c.state = StateConnected
	c.stop = cancel
	c.wg.Add(2)
	go c.sendLoop(loopCtx, conn, c.queue)
	go c.receiveLoop(loopCtx, conn)
	c.mu.Unlock()

	c.logger.Info("connected to world simulator",
		zap.Int64("target_id", reply.TargetID),
		zap.Int("warehouses", len(warehouses)))
	return reply.TargetID, nil
}

func (c *Client) handshake(conn net.Conn, targetID *int64, warehouses []worldwire.Warehouse) (*worldwire.ConnectReply, error) {
	hello := worldwire.Connect{
		IsRequester:       true,
		TargetID:          targetID,
		InitialWarehouses: warehouses,
	}
	if err := worldwire.WriteFrame(conn, hello.Marshal()); err != nil {
		return nil, fmt.Errorf("send handshake: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(c.cfg.DialTimeout)); err != nil {
		return nil, err
	}
	payload, err := worldwire.ReadFrame(conn)
	if err != nil {
		return nil, fmt.Errorf("read handshake reply: %w", err)
	}
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		return nil, err
	}

	var reply worldwire.ConnectReply
	if err := reply.Unmarshal(payload); err != nil {
		return nil, fmt.Errorf("decode handshake reply: %w", err)
	}
	if reply.Result != worldwire.ConnectedResult {
		return nil, shared.NewDomainError("CONNECT_REJECTED", reply.Result)
	}
	return &reply, nil
}

// ConnectWithBackoff retries Connect with exponential backoff up to the
// configured attempt count. Reconnection is always explicit; a dropped
// connection is never silently redialed.
func (c *Client) ConnectWithBackoff(ctx context.Context, targetID *int64, warehouses []worldwire.Warehouse) (int64, error) {
	var worldID int64
	operation := func() error {
		id, err := c.Connect(ctx, targetID, warehouses)
		if err != nil {
			c.logger.Warn("world connect attempt failed", zap.Error(err))
			return err
		}
		worldID = id
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.cfg.ReconnectTries)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return 0, err
	}
	return worldID, nil
}

// Disconnect sends the disconnect command, drains and stops both loops with
// a bounded join, closes the socket, and clears the stored warehouses.
// Calling it while already disconnected is a no-op.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return nil
	}
	conn := c.conn
	queue := c.queue
	stop := c.stop
	c.state = StateDisconnected
	c.mu.Unlock()

	bye := worldwire.CommandBatch{Disconnect: true}
	queue.push(bye.Marshal())
	queue.close()

	// The send loop drains the queue before exiting; the receive loop is
	// released by the socket close below.
	joined := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(joined)
	}()

	stop()
	time.AfterFunc(100*time.Millisecond, func() { conn.Close() })

	select {
	case <-joined:
	case <-time.After(disconnectJoinTimeout):
		c.logger.Warn("timed out waiting for connection loops to stop")
	}
	conn.Close()

	if err := c.warehouses.Clear(ctx); err != nil {
		return fmt.Errorf("clear warehouses: %w", err)
	}
	c.logger.Info("disconnected from world simulator")
	return nil
}

// RequestPurchase asks the simulator to restock a product. Fire-and-forget:
// the goods arrive later as an asynchronous event, modeling real stocking
// delay, so callers must not assume immediate availability.
func (c *Client) RequestPurchase(ctx context.Context, warehouseID, productID int64, description string, quantity int64) (int64, error) {
	if err := c.ensureConnected(); err != nil {
		return 0, err
	}
	if warehouseID <= 0 || productID <= 0 {
		return 0, shared.NewDomainError("INVALID_INPUT", "Warehouse and product IDs must be positive")
	}
	if quantity <= 0 {
		return 0, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	if len(description) > maxDescriptionLen {
		truncated := description[:maxDescriptionLen]
		c.logger.Warn("product description exceeds protocol limit, truncating",
			zap.String("original", description),
			zap.String("truncated", truncated))
		description = truncated
	}

	seq := c.channel.NextSeq()
	batch := worldwire.CommandBatch{
		Buys: []worldwire.BuyCmd{{
			WarehouseID: warehouseID,
			ProductID:   productID,
			Description: description,
			Quantity:    quantity,
			Seq:         seq,
		}},
	}
	if err := c.channel.SendSeq(ctx, seq, "buy", batch.Marshal()); err != nil {
		return 0, err
	}
	return seq, nil
}

// RequestPack asks the warehouse to pack a shipment and blocks until the
// matching ready response or the call timeout.
func (c *Client) RequestPack(ctx context.Context, warehouseID, shipmentID int64, items []worldwire.Item) error {
	if err := c.ensureConnected(); err != nil {
		return err
	}
	if warehouseID <= 0 || shipmentID <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "Warehouse and shipment IDs must be positive")
	}
	if len(items) == 0 {
		return shared.NewDomainError("INVALID_ITEMS", "Pack request must contain at least one item")
	}

	seq := c.channel.NextSeq()
	batch := worldwire.CommandBatch{
		Packs: []worldwire.PackCmd{{
			WarehouseID: warehouseID,
			Items:       items,
			ShipmentID:  shipmentID,
			Seq:         seq,
		}},
	}
	_, err := c.channel.Call(ctx, seq, "pack", batch.Marshal())
	return err
}

// RequestLoad asks the warehouse to load a shipment onto a truck and blocks
// until the matching loaded response or the call timeout.
func (c *Client) RequestLoad(ctx context.Context, warehouseID, truckID, shipmentID int64) error {
	if err := c.ensureConnected(); err != nil {
		return err
	}
	if warehouseID <= 0 || truckID <= 0 || shipmentID <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "Warehouse, truck and shipment IDs must be positive")
	}

	seq := c.channel.NextSeq()
	batch := worldwire.CommandBatch{
		Loads: []worldwire.LoadCmd{{
			WarehouseID: warehouseID,
			TruckID:     truckID,
			ShipmentID:  shipmentID,
			Seq:         seq,
		}},
	}
	_, err := c.channel.Call(ctx, seq, "load", batch.Marshal())
	return err
}

// QueryPackage asks the simulator for a package's current status and blocks
// until the status response or the call timeout.
func (c *Client) QueryPackage(ctx context.Context, packageID int64) (string, error) {
	if err := c.ensureConnected(); err != nil {
		return "", err
	}
	if packageID <= 0 {
		return "", shared.NewDomainError("INVALID_INPUT", "Package ID must be positive")
	}

	seq := c.channel.NextSeq()
	batch := worldwire.CommandBatch{
		Queries: []worldwire.QueryCmd{{PackageID: packageID, Seq: seq}},
	}
	value, err := c.channel.Call(ctx, seq, "query", batch.Marshal())
	if err != nil {
		return "", err
	}
	status, _ := value.(string)
	return status, nil
}

// SetSimSpeed adjusts the simulator's speed. Untracked: the simulator sends
// no acknowledgment for speed changes.
func (c *Client) SetSimSpeed(speed uint32) error {
	if err := c.ensureConnected(); err != nil {
		return err
	}
	batch := worldwire.CommandBatch{SimSpeed: &speed}
	if !c.enqueue(batch.Marshal()) {
		return errNotConnected
	}
	return nil
}

// EnqueueAcks queues acknowledgments for inbound events. Acks are untracked;
// the peer retries its event if an ack is lost.
func (c *Client) EnqueueAcks(acks []int64) error {
	if len(acks) == 0 {
		return nil
	}
	batch := worldwire.CommandBatch{Acks: acks}
	if !c.enqueue(batch.Marshal()) {
		return errNotConnected
	}
	return nil
}

func (c *Client) ensureConnected() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConnected {
		return shared.NewDomainError("NOT_CONNECTED", "World connection is not established")
	}
	return nil
}

func (c *Client) enqueue(payload []byte) bool {
	c.mu.Lock()
	queue := c.queue
	connected := c.state == StateConnected
	c.mu.Unlock()
	if !connected || queue == nil {
		return false
	}
	return queue.push(payload)
}

func (c *Client) setDisconnected() {
	c.mu.Lock()
	c.state = StateDisconnected
	c.mu.Unlock()
}

// sendLoop is the sole writer on the socket. One frame per queued payload,
// FIFO, a single Write call each so frames never interleave.
func (c *Client) sendLoop(ctx context.Context, conn net.Conn, queue *sendQueue) {
	defer c.wg.Done()

	for {
		payload, ok := queue.pop(ctx)
		if !ok {
			return
		}
		if err := worldwire.WriteFrame(conn, payload); err != nil {
			c.logger.Error("send loop terminating", zap.Error(err))
			return
		}
	}
}

// receiveLoop blocks on framed reads and dispatches each decoded batch.
// Transient read timeouts are retried; a peer close ends the loop and leaves
// reconnection to an explicit Connect.
func (c *Client) receiveLoop(ctx context.Context, conn net.Conn) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout)); err != nil {
			return
		}
		payload, err := worldwire.ReadFrame(conn)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if ctx.Err() == nil {
				c.logger.Warn("world connection closed by peer", zap.Error(err))
				c.markPeerClosed(conn)
			}
			return
		}

		var batch worldwire.ResponseBatch
		if err := batch.Unmarshal(payload); err != nil {
			// Protocol error: discard the batch, keep the loop alive
			c.logger.Error("discarding malformed response batch", zap.Error(err))
			continue
		}

		if c.dispatcher != nil {
			c.dispatcher.Dispatch(ctx, &batch)
		}
	}
}

// markPeerClosed flips to disconnected after a remote close so that callers
// see NOT_CONNECTED instead of writing into a dead socket.
func (c *Client) markPeerClosed(conn net.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateConnected && c.conn == conn {
		c.state = StateDisconnected
		c.queue.close()
		conn.Close()
	}
}

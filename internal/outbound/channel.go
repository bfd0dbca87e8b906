package outbound

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/minimart/backend/internal/domain/shared"
)

// Config tunes a channel's retry behavior
type Config struct {
	// RetryInterval is the sweeper tick
	RetryInterval time.Duration
	// RetryBackoff is the minimum age of a record before it is resent
	RetryBackoff time.Duration
	// MaxAttempts is the total delivery attempts before a record fails
	MaxAttempts int
	// CallTimeout bounds how long Call waits for a typed response
	CallTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.RetryInterval <= 0 {
		c.RetryInterval = time.Second
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 10 * time.Second
	}
}

type pendingEntry struct {
	rec      *Record
	attempts int
	lastSent time.Time
}

type callResult struct {
	value any
	err   error
}

// Channel assigns sequence numbers, persists every outbound record, and
// retries until the peer acknowledges. One Channel instance per peer; the
// world socket and the carrier HTTP endpoint have independent sequence spaces.
type Channel struct {
	name      string
	store     Store
	transport Transport
	cfg       Config
	logger    *zap.Logger

	mu      sync.Mutex
	seq     int64
	pending map[int64]*pendingEntry

	waitMu  sync.Mutex
	waiters map[int64]chan callResult

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewChannel creates a channel whose next sequence number is seed+1.
// Seeding from the highest persisted sequence keeps the counter strictly
// increasing across restarts.
func NewChannel(name string, seed int64, store Store, transport Transport, cfg Config, logger *zap.Logger) *Channel {
	cfg.applyDefaults()
	return &Channel{
		name:      name,
		store:     store,
		transport: transport,
		cfg:       cfg,
		logger:    logger.With(zap.String("channel", name)),
		seq:       seed,
		pending:   make(map[int64]*pendingEntry),
		waiters:   make(map[int64]chan callResult),
	}
}

// Start launches the retry sweeper
func (c *Channel) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.sweepLoop(ctx)
	c.logger.Info("outbound channel started",
		zap.Duration("retry_interval", c.cfg.RetryInterval),
		zap.Int("max_attempts", c.cfg.MaxAttempts))
}

// Stop halts the retry sweeper. Pending records stay persisted.
func (c *Channel) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	c.logger.Info("outbound channel stopped")
}

// NextSeq allocates the next sequence number. Never reused within a process
// lifetime.
func (c *Channel) NextSeq() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Send persists and delivers a fire-and-forget command, returning its
// sequence number. Delivery failures are retried in the background; the
// caller only sees persistence errors.
func (c *Channel) Send(ctx context.Context, kind string, payload []byte) (int64, error) {
	seq := c.NextSeq()
	return seq, c.sendWithSeq(ctx, seq, kind, payload)
}

// SendSeq delivers a command whose sequence number was allocated up front
// with NextSeq, for payloads that embed their own seq on the wire.
func (c *Channel) SendSeq(ctx context.Context, seq int64, kind string, payload []byte) error {
	return c.sendWithSeq(ctx, seq, kind, payload)
}

func (c *Channel) sendWithSeq(ctx context.Context, seq int64, kind string, payload []byte) error {
	rec := &Record{
		Channel:   c.name,
		Seq:       seq,
		Kind:      kind,
		Payload:   payload,
		Status:    StatusSent,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := c.store.Save(ctx, rec); err != nil {
		return err
	}

	c.mu.Lock()
	c.pending[rec.Seq] = &pendingEntry{rec: rec, attempts: 1, lastSent: time.Now()}
	c.mu.Unlock()

	c.deliver(ctx, rec)
	return nil
}

// Call delivers a command under a pre-allocated sequence number and blocks
// until a typed response resolves that number or the timeout passes. Timeout
// yields ErrNoResponse, distinct from an explicit error response relayed
// through Resolve.
func (c *Channel) Call(ctx context.Context, seq int64, kind string, payload []byte) (any, error) {
	ch := make(chan callResult, 1)

	// Register the waiter before the send so a fast response cannot slip past
	c.waitMu.Lock()
	c.waiters[seq] = ch
	c.waitMu.Unlock()

	if err := c.sendWithSeq(ctx, seq, kind, payload); err != nil {
		c.dropWaiter(seq)
		return nil, err
	}

	timer := time.NewTimer(c.cfg.CallTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.value, res.err
	case <-timer.C:
		c.dropWaiter(seq)
		return nil, shared.ErrNoResponse
	case <-ctx.Done():
		c.dropWaiter(seq)
		return nil, ctx.Err()
	}
}

// Ack marks a sequence number delivered. Idempotent; unknown sequence
// numbers are tolerated because the peer may re-acknowledge after a restart.
func (c *Channel) Ack(ctx context.Context, seq int64) {
	c.mu.Lock()
	delete(c.pending, seq)
	c.mu.Unlock()

	if err := c.store.MarkAcked(ctx, c.name, seq); err != nil {
		c.logger.Error("failed to persist ack", zap.Int64("seq", seq), zap.Error(err))
	}
}

// Resolve releases the caller blocked on seq, if any. Returns whether a
// waiter was found.
func (c *Channel) Resolve(seq int64, value any, err error) bool {
	c.waitMu.Lock()
	ch, ok := c.waiters[seq]
	if ok {
		delete(c.waiters, seq)
	}
	c.waitMu.Unlock()

	if ok {
		ch <- callResult{value: value, err: err}
	}
	return ok
}

// Reset clears the pending set and reseeds the counter. Used when the world
// connection is rebuilt against a fresh simulator instance and the old
// sequence space no longer means anything.
func (c *Channel) Reset(seed int64) {
	c.mu.Lock()
	c.seq = seed
	c.pending = make(map[int64]*pendingEntry)
	c.mu.Unlock()
}

// PendingCount reports how many records await acknowledgment
func (c *Channel) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Channel) dropWaiter(seq int64) {
	c.waitMu.Lock()
	delete(c.waiters, seq)
	c.waitMu.Unlock()
}

func (c *Channel) deliver(ctx context.Context, rec *Record) {
	acks, err := c.transport(ctx, rec)
	if err != nil {
		c.logger.Warn("delivery attempt failed",
			zap.Int64("seq", rec.Seq),
			zap.String("kind", rec.Kind),
			zap.Error(err))
		return
	}
	for _, seq := range acks {
		c.Ack(ctx, seq)
	}
}

func (c *Channel) sweepLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.RetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

// sweep resends stale pending records and fails those out of attempts
func (c *Channel) sweep(ctx context.Context) {
	now := time.Now()

	c.mu.Lock()
	var resend []*pendingEntry
	var exhausted []*pendingEntry
	for seq, entry := range c.pending {
		if now.Sub(entry.lastSent) < c.cfg.RetryBackoff {
			continue
		}
		if entry.attempts >= c.cfg.MaxAttempts {
			exhausted = append(exhausted, entry)
			delete(c.pending, seq)
			continue
		}
		entry.attempts++
		entry.lastSent = now
		resend = append(resend, entry)
	}
	c.mu.Unlock()

	for _, entry := range exhausted {
		c.logger.Error("delivery permanently failed",
			zap.Int64("seq", entry.rec.Seq),
			zap.String("kind", entry.rec.Kind),
			zap.Int("attempts", entry.attempts))
		if err := c.store.MarkFailed(ctx, c.name, entry.rec.Seq, "retry budget exhausted"); err != nil {
			c.logger.Error("failed to persist failure", zap.Int64("seq", entry.rec.Seq), zap.Error(err))
		}
		c.Resolve(entry.rec.Seq, nil, shared.NewDomainError("DELIVERY_FAILED", "Command could not be delivered"))
	}

	for _, entry := range resend {
		if err := c.store.MarkRetried(ctx, c.name, entry.rec.Seq, entry.attempts-1); err != nil {
			c.logger.Error("failed to persist retry", zap.Int64("seq", entry.rec.Seq), zap.Error(err))
		}
		c.logger.Debug("resending unacked record",
			zap.Int64("seq", entry.rec.Seq),
			zap.String("kind", entry.rec.Kind),
			zap.Int("attempt", entry.attempts))
		c.deliver(ctx, entry.rec)
	}
}

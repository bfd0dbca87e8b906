package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/minimart/backend/internal/infrastructure/world"
	"github.com/minimart/backend/internal/outbound"
	"github.com/minimart/backend/internal/worldwire"
)

// OutboxStore reads and maintains the persisted outbound message records
type OutboxStore interface {
	FindFailed(ctx context.Context, channel string) ([]*outbound.Record, error)
	Wipe(ctx context.Context, channel string) error
}

// worldChannelName is the world channel's name in the outbound message store
const worldChannelName = "world"

type connectRequest struct {
	TargetID   *int64             `json:"target_id"`
	SimSpeed   *uint32            `json:"sim_speed"`
	Warehouses []warehouseRequest `json:"warehouses"`
}

type warehouseRequest struct {
	ID int64 `json:"id" binding:"required"`
	X  int64 `json:"x"`
	Y  int64 `json:"y"`
}

type speedRequest struct {
	Speed uint32 `json:"speed" binding:"required"`
}

// deadLetterResponse describes one permanently failed outbound record
type deadLetterResponse struct {
	Channel    string    `json:"channel"`
	Seq        int64     `json:"seq"`
	Kind       string    `json:"kind"`
	RetryCount int       `json:"retry_count"`
	LastError  string    `json:"last_error"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// WorldHandler exposes administration of the world simulator connection
type WorldHandler struct {
	BaseHandler
	client  *world.Client
	channel *outbound.Channel
	store   OutboxStore
	logger  *zap.Logger
}

// NewWorldHandler creates a new WorldHandler
func NewWorldHandler(client *world.Client, channel *outbound.Channel, store OutboxStore, logger *zap.Logger) *WorldHandler {
	return &WorldHandler{
		client:  client,
		channel: channel,
		store:   store,
		logger:  logger.Named("world-admin"),
	}
}

// Connect handles POST /api/v1/world/connect. Without a target ID a fresh
// world is created and the world channel's sequence space starts over; with
// one the client reattaches and sequences continue where they left off.
func (h *WorldHandler) Connect(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	if req.TargetID == nil {
		if err := h.store.Wipe(ctx, worldChannelName); err != nil {
			h.HandleError(c, err)
			return
		}
		h.channel.Reset(0)
	}

	warehouses := make([]worldwire.Warehouse, 0, len(req.Warehouses))
	for _, w := range req.Warehouses {
		warehouses = append(warehouses, worldwire.Warehouse{ID: w.ID, X: w.X, Y: w.Y})
	}

	worldID, err := h.client.ConnectWithBackoff(ctx, req.TargetID, warehouses)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if req.SimSpeed != nil {
		if err := h.client.SetSimSpeed(*req.SimSpeed); err != nil {
			h.logger.Warn("failed to set simulation speed", zap.Error(err))
		}
	}

	h.Success(c, gin.H{
		"world_id": worldID,
		"state":    h.client.State(),
	})
}

// Disconnect handles POST /api/v1/world/disconnect
func (h *WorldHandler) Disconnect(c *gin.Context) {
	if err := h.client.Disconnect(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Status handles GET /api/v1/world/status
func (h *WorldHandler) Status(c *gin.Context) {
	state := h.client.State()
	resp := gin.H{
		"state":   state,
		"pending": h.channel.PendingCount(),
	}
	if state == world.StateConnected {
		resp["world_id"] = h.client.TargetID()
	}
	h.Success(c, resp)
}

// SetSpeed handles PUT /api/v1/world/speed
func (h *WorldHandler) SetSpeed(c *gin.Context) {
	var req speedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.client.SetSimSpeed(req.Speed); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DeadLetters handles GET /api/v1/outbox/:channel/dead, listing commands that
// exhausted their retry budget
func (h *WorldHandler) DeadLetters(c *gin.Context) {
	records, err := h.store.FindFailed(c.Request.Context(), c.Param("channel"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]deadLetterResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, deadLetterResponse{
			Channel:    rec.Channel,
			Seq:        rec.Seq,
			Kind:       rec.Kind,
			RetryCount: rec.RetryCount,
			LastError:  rec.LastError,
			CreatedAt:  rec.CreatedAt,
			UpdatedAt:  rec.UpdatedAt,
		})
	}
	h.Success(c, out)
}

// Package carrier delivers fulfillment events to the carrier service over
// HTTP. Delivery runs through the shared reliable channel, so every event is
// persisted, sequence numbered and retried until the carrier acknowledges it.
package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/minimart/backend/internal/infrastructure/config"
	"github.com/minimart/backend/internal/outbound"
)

// ackResponse is the carrier's reply body. Acks name the sequence numbers the
// carrier has durably accepted, which may include earlier events.
type ackResponse struct {
	Acks []int64 `json:"acks"`
}

// NewTransport builds the channel delivery function for the carrier endpoint.
// Each record is POSTed to {base}/{kind}; a circuit breaker sheds requests
// while the carrier is down so retries do not pile onto a dead peer.
func NewTransport(cfg config.CarrierConfig, logger *zap.Logger) outbound.Transport {
	logger = logger.Named("carrier")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "carrier",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFails
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			logger.Warn("carrier circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	client := &http.Client{Timeout: cfg.RequestTimeout}
	base := strings.TrimRight(cfg.BaseURL, "/")

	return func(ctx context.Context, rec *outbound.Record) ([]int64, error) {
		result, err := breaker.Execute(func() (interface{}, error) {
			return postEvent(ctx, client, base, rec)
		})
		if err != nil {
			return nil, err
		}
		return result.([]int64), nil
	}
}

func postEvent(ctx context.Context, client *http.Client, base string, rec *outbound.Record) ([]int64, error) {
	url := fmt.Sprintf("%s/%s", base, rec.Kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(rec.Payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("carrier rejected %s event: %s", rec.Kind, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read carrier ack response: %w", err)
	}
	// The acks array is optional; an empty 2xx body acknowledges nothing
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var ack ackResponse
	if err := json.Unmarshal(body, &ack); err != nil {
		return nil, fmt.Errorf("decode carrier ack response: %w", err)
	}
	return ack.Acks, nil
}

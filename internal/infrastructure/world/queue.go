package world

import (
	"context"
	"sync"
)

// sendQueue is the unbounded FIFO feeding the send loop. Producers never
// block; the send loop is the sole consumer.
type sendQueue struct {
	mu     sync.Mutex
	items  [][]byte
	ready  chan struct{}
	closed bool
}

func newSendQueue() *sendQueue {
	return &sendQueue{ready: make(chan struct{}, 1)}
}

// push appends a frame payload. Returns false if the queue is closed.
func (q *sendQueue) push(payload []byte) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, payload)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

// pop blocks until a payload is available, the queue closes, or ctx is done
func (q *sendQueue) pop(ctx context.Context) ([]byte, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			payload := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return payload, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return nil, false
		}

		select {
		case <-q.ready:
		case <-ctx.Done():
			// Drain anything already queued before giving up
			q.mu.Lock()
			empty := len(q.items) == 0
			q.mu.Unlock()
			if empty {
				return nil, false
			}
		}
	}
}

// close wakes the consumer and rejects further pushes. Queued payloads are
// still drained by pop.
func (q *sendQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Package outbound implements the reliable at-least-once delivery channel
// shared by the world socket and the carrier HTTP integration: a persisted
// message record per command, a strictly increasing sequence counter, and a
// background sweeper that retries unacknowledged records.
package outbound

import (
	"context"
	"time"
)

// Status of an outbound message record
type Status string

const (
	StatusSent   Status = "sent"
	StatusAcked  Status = "acked"
	StatusFailed Status = "failed"
)

// Record is the durable trace of one outbound command. Records are never
// deleted; they form the audit trail of everything sent to a peer.
type Record struct {
	Channel    string
	Seq        int64
	Kind       string
	Payload    []byte
	Status     Status
	RetryCount int
	LastError  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Store persists outbound message records
type Store interface {
	// Save inserts a new record in sent status
	Save(ctx context.Context, rec *Record) error
	// MarkAcked marks a record acked exactly once. An unknown sequence
	// number synthesizes an acked record instead of failing.
	MarkAcked(ctx context.Context, channel string, seq int64) error
	// MarkRetried bumps the retry counter after a resend
	MarkRetried(ctx context.Context, channel string, seq int64, retryCount int) error
	// MarkFailed marks a record permanently failed
	MarkFailed(ctx context.Context, channel string, seq int64, reason string) error
}

// Transport delivers one record to the peer. It may return sequence numbers
// the peer acknowledged in the same exchange (the carrier piggybacks acks on
// its HTTP responses).
type Transport func(ctx context.Context, rec *Record) (acks []int64, err error)

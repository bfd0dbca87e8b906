package models

import (
	"time"

	"github.com/minimart/backend/internal/outbound"
)

// OutboundMessageModel is the audit record of one command sent to a peer.
// Channel plus sequence number form the key; each channel owns an
// independent sequence space.
type OutboundMessageModel struct {
	Channel    string `gorm:"primary_key"`
	Seq        int64  `gorm:"primary_key;autoIncrement:false"`
	Kind       string `gorm:"not null"`
	Payload    []byte
	Status     string `gorm:"not null;index"`
	RetryCount int    `gorm:"not null;default:0"`
	LastError  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the table name for OutboundMessageModel
func (OutboundMessageModel) TableName() string {
	return "outbound_messages"
}

// OutboundMessageModelFromRecord converts an outbound record to its persistence model
func OutboundMessageModelFromRecord(rec *outbound.Record) *OutboundMessageModel {
	return &OutboundMessageModel{
		Channel:    rec.Channel,
		Seq:        rec.Seq,
		Kind:       rec.Kind,
		Payload:    rec.Payload,
		Status:     string(rec.Status),
		RetryCount: rec.RetryCount,
		LastError:  rec.LastError,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}

// ToRecord converts the persistence model to an outbound record
func (m *OutboundMessageModel) ToRecord() *outbound.Record {
	return &outbound.Record{
		Channel:    m.Channel,
		Seq:        m.Seq,
		Kind:       m.Kind,
		Payload:    m.Payload,
		Status:     outbound.Status(m.Status),
		RetryCount: m.RetryCount,
		LastError:  m.LastError,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

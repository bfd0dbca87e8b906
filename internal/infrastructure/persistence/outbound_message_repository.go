package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/minimart/backend/internal/infrastructure/persistence/models"
	"github.com/minimart/backend/internal/outbound"
)

// GormOutboundMessageRepository implements outbound.Store using GORM.
// One table backs every channel; records are never deleted except by Wipe.
type GormOutboundMessageRepository struct {
	db *gorm.DB
}

// NewGormOutboundMessageRepository creates a new GormOutboundMessageRepository
func NewGormOutboundMessageRepository(db *gorm.DB) *GormOutboundMessageRepository {
	return &GormOutboundMessageRepository{db: db}
}

// Save inserts a new record in sent status
func (r *GormOutboundMessageRepository) Save(ctx context.Context, rec *outbound.Record) error {
	model := models.OutboundMessageModelFromRecord(rec)
	return r.db.WithContext(ctx).Create(model).Error
}

// MarkAcked marks a record acked exactly once. A sequence number with no
// record, as after a process restart, gets a synthesized acked record.
func (r *GormOutboundMessageRepository) MarkAcked(ctx context.Context, channel string, seq int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.OutboundMessageModel
		err := tx.Where("channel = ? AND seq = ?", channel, seq).First(&model).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			now := time.Now()
			return tx.Create(&models.OutboundMessageModel{
				Channel:   channel,
				Seq:       seq,
				Kind:      "unknown",
				Status:    string(outbound.StatusAcked),
				CreatedAt: now,
				UpdatedAt: now,
			}).Error
		}
		if err != nil {
			return err
		}
		if model.Status == string(outbound.StatusAcked) {
			return nil
		}
		return tx.Model(&models.OutboundMessageModel{}).
			Where("channel = ? AND seq = ? AND status <> ?", channel, seq, string(outbound.StatusAcked)).
			Updates(map[string]any{
				"status":     string(outbound.StatusAcked),
				"updated_at": time.Now(),
			}).Error
	})
}

// MarkRetried bumps the retry counter after a resend
func (r *GormOutboundMessageRepository) MarkRetried(ctx context.Context, channel string, seq int64, retryCount int) error {
	return r.db.WithContext(ctx).Model(&models.OutboundMessageModel{}).
		Where("channel = ? AND seq = ?", channel, seq).
		Updates(map[string]any{
			"retry_count": retryCount,
			"updated_at":  time.Now(),
		}).Error
}

// MarkFailed marks a record permanently failed
func (r *GormOutboundMessageRepository) MarkFailed(ctx context.Context, channel string, seq int64, reason string) error {
	return r.db.WithContext(ctx).Model(&models.OutboundMessageModel{}).
		Where("channel = ? AND seq = ?", channel, seq).
		Updates(map[string]any{
			"status":     string(outbound.StatusFailed),
			"last_error": reason,
			"updated_at": time.Now(),
		}).Error
}

// MaxSeq returns the highest persisted sequence number for a channel, used
// to seed the channel's counter after a restart
func (r *GormOutboundMessageRepository) MaxSeq(ctx context.Context, channel string) (int64, error) {
	var maxSeq int64
	if err := r.db.WithContext(ctx).
		Model(&models.OutboundMessageModel{}).
		Where("channel = ?", channel).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&maxSeq).Error; err != nil {
		return 0, err
	}
	return maxSeq, nil
}

// FindFailed lists permanently failed records for a channel, newest first
func (r *GormOutboundMessageRepository) FindFailed(ctx context.Context, channel string) ([]*outbound.Record, error) {
	var modelList []models.OutboundMessageModel
	if err := r.db.WithContext(ctx).
		Where("channel = ? AND status = ?", channel, string(outbound.StatusFailed)).
		Order("seq DESC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}

	records := make([]*outbound.Record, 0, len(modelList))
	for i := range modelList {
		records = append(records, modelList[i].ToRecord())
	}
	return records, nil
}

// Wipe deletes every record for a channel. Only used when reconnecting to a
// fresh simulator instance whose sequence space starts over.
func (r *GormOutboundMessageRepository) Wipe(ctx context.Context, channel string) error {
	return r.db.WithContext(ctx).
		Where("channel = ?", channel).
		Delete(&models.OutboundMessageModel{}).Error
}

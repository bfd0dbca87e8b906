package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minimart/backend/internal/domain/fulfillment"
	"github.com/minimart/backend/internal/domain/shared"
	"github.com/minimart/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements fulfillment.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: tx}
}

// Save persists a new order with its line items
func (r *GormOrderRepository) Save(ctx context.Context, order *fulfillment.Order) error {
	model := models.OrderModelFromDomain(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
}

// Update persists changes to an existing order and its line items
func (r *GormOrderRepository) Update(ctx context.Context, order *fulfillment.Order) error {
	model := models.OrderModelFromDomain(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.OrderModel{}).
			Where("id = ?", model.ID).
			Updates(map[string]any{
				"status":     model.Status,
				"dest_x":     model.DestX,
				"dest_y":     model.DestY,
				"updated_at": model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		for _, item := range model.Items {
			if err := tx.Model(&models.OrderItemModel{}).
				Where("id = ?", item.ID).
				Updates(map[string]any{
					"fulfilled_at": item.FulfilledAt,
					"updated_at":   item.UpdatedAt,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID finds an order by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

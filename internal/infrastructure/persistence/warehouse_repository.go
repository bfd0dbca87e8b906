package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/minimart/backend/internal/domain/fulfillment"
	"github.com/minimart/backend/internal/domain/shared"
	"github.com/minimart/backend/internal/infrastructure/persistence/models"
)

// GormWarehouseRepository implements fulfillment.WarehouseRepository using GORM
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormWarehouseRepository) WithTx(tx *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: tx}
}

// ReplaceAll swaps the stored warehouse set for the authoritative set from
// the connect handshake. Stock tied to the previous world is dropped too.
func (r *GormWarehouseRepository) ReplaceAll(ctx context.Context, warehouses []fulfillment.Warehouse) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.WarehouseModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.WarehouseStockModel{}).Error; err != nil {
			return err
		}
		now := time.Now()
		for _, w := range warehouses {
			model := models.WarehouseModel{
				ID:        w.ID,
				X:         w.X,
				Y:         w.Y,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Create(&model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear removes all warehouses and stock tied to the current connection
func (r *GormWarehouseRepository) Clear(ctx context.Context) error {
	return r.ReplaceAll(ctx, nil)
}

// FindByID finds a warehouse by its simulator-assigned ID
func (r *GormWarehouseRepository) FindByID(ctx context.Context, id int64) (*fulfillment.Warehouse, error) {
	var model models.WarehouseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &fulfillment.Warehouse{ID: model.ID, X: model.X, Y: model.Y}, nil
}

// List returns all known warehouses
func (r *GormWarehouseRepository) List(ctx context.Context) ([]fulfillment.Warehouse, error) {
	var modelList []models.WarehouseModel
	if err := r.db.WithContext(ctx).Order("id").Find(&modelList).Error; err != nil {
		return nil, err
	}

	warehouses := make([]fulfillment.Warehouse, 0, len(modelList))
	for _, m := range modelList {
		warehouses = append(warehouses, fulfillment.Warehouse{ID: m.ID, X: m.X, Y: m.Y})
	}
	return warehouses, nil
}

// AddStock increments on-hand quantity for a product at a warehouse
func (r *GormWarehouseRepository) AddStock(ctx context.Context, warehouseID, productID int64, description string, quantity int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stock models.WarehouseStockModel
		err := tx.Where("warehouse_id = ? AND product_id = ?", warehouseID, productID).
			First(&stock).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			now := time.Now()
			return tx.Create(&models.WarehouseStockModel{
				WarehouseID: warehouseID,
				ProductID:   productID,
				Description: description,
				Quantity:    quantity,
				CreatedAt:   now,
				UpdatedAt:   now,
			}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&models.WarehouseStockModel{}).
			Where("warehouse_id = ? AND product_id = ?", warehouseID, productID).
			Updates(map[string]any{
				"quantity":   gorm.Expr("quantity + ?", quantity),
				"updated_at": time.Now(),
			}).Error
	})
}

// StockOf reports the on-hand quantity for a product at a warehouse
func (r *GormWarehouseRepository) StockOf(ctx context.Context, warehouseID, productID int64) (int64, error) {
	var stock models.WarehouseStockModel
	err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND product_id = ?", warehouseID, productID).
		First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return stock.Quantity, nil
}

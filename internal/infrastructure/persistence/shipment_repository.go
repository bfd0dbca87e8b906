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

// GormShipmentRepository implements fulfillment.ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormShipmentRepository) WithTx(tx *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: tx}
}

// Save persists a new shipment with its items
func (r *GormShipmentRepository) Save(ctx context.Context, shipment *fulfillment.Shipment) error {
	model := models.ShipmentModelFromDomain(shipment)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
}

// Update persists changes to an existing shipment. Items are immutable and
// not rewritten.
func (r *GormShipmentRepository) Update(ctx context.Context, shipment *fulfillment.Shipment) error {
	model := models.ShipmentModelFromDomain(shipment)
	result := r.db.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Where("id = ?", model.ID).
		Select("status", "tracking_id", "truck_id", "dest_x", "dest_y", "updated_at").
		Updates(map[string]any{
			"status":      model.Status,
			"tracking_id": model.TrackingID,
			"truck_id":    model.TruckID,
			"dest_x":      model.DestX,
			"dest_y":      model.DestY,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByNo finds a shipment by its externally visible number
func (r *GormShipmentRepository) FindByNo(ctx context.Context, shipmentNo int64) (*fulfillment.Shipment, error) {
	var model models.ShipmentModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "shipment_no = ?", shipmentNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderID finds all shipments belonging to an order
func (r *GormShipmentRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]*fulfillment.Shipment, error) {
	var modelList []models.ShipmentModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_id = ?", orderID).
		Order("shipment_no").
		Find(&modelList).Error; err != nil {
		return nil, err
	}

	shipments := make([]*fulfillment.Shipment, 0, len(modelList))
	for i := range modelList {
		shipments = append(shipments, modelList[i].ToDomain())
	}
	return shipments, nil
}

// NextShipmentNo allocates the next externally visible shipment number
func (r *GormShipmentRepository) NextShipmentNo(ctx context.Context) (int64, error) {
	var maxNo int64
	if err := r.db.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Select("COALESCE(MAX(shipment_no), 0)").
		Scan(&maxNo).Error; err != nil {
		return 0, err
	}
	return maxNo + 1, nil
}

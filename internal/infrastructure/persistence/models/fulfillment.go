package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/minimart/backend/internal/domain/fulfillment"
)

// ShipmentModel is the persistence model for fulfillment.Shipment
type ShipmentModel struct {
	AggregateModel
	ShipmentNo     int64   `gorm:"column:shipment_no;uniqueIndex;not null"`
	OrderID        uuid.UUID `gorm:"type:uuid;index;not null"`
	WarehouseID    int64   `gorm:"not null"`
	DestX          int64   `gorm:"column:dest_x;not null"`
	DestY          int64   `gorm:"column:dest_y;not null"`
	CarrierAccount *string
	TrackingID     *string `gorm:"column:tracking_id"`
	TruckID        *int64  `gorm:"column:truck_id"`
	Status         string  `gorm:"not null;index"`

	Items []ShipmentItemModel `gorm:"foreignKey:ShipmentID"`
}

// TableName specifies the table name for ShipmentModel
func (ShipmentModel) TableName() string {
	return "shipments"
}

// ShipmentItemModel is the persistence model for fulfillment.ShipmentItem
type ShipmentItemModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	ShipmentID  uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductID   int64     `gorm:"not null"`
	Description string
	Quantity    int64 `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for ShipmentItemModel
func (ShipmentItemModel) TableName() string {
	return "shipment_items"
}

// ShipmentModelFromDomain converts a domain shipment to its persistence model
func ShipmentModelFromDomain(s *fulfillment.Shipment) *ShipmentModel {
	m := &ShipmentModel{
		ShipmentNo:     s.ShipmentNo,
		OrderID:        s.OrderID,
		WarehouseID:    s.WarehouseID,
		DestX:          s.DestX,
		DestY:          s.DestY,
		CarrierAccount: s.CarrierAccount,
		TrackingID:     s.TrackingID,
		TruckID:        s.TruckID,
		Status:         s.Status.String(),
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	for _, item := range s.Items {
		m.Items = append(m.Items, ShipmentItemModel{
			ID:          item.ID,
			ShipmentID:  item.ShipmentID,
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			CreatedAt:   item.CreatedAt,
			UpdatedAt:   item.UpdatedAt,
		})
	}
	return m
}

// ToDomain converts the persistence model to a domain shipment
func (m *ShipmentModel) ToDomain() *fulfillment.Shipment {
	s := &fulfillment.Shipment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ShipmentNo:        m.ShipmentNo,
		OrderID:           m.OrderID,
		WarehouseID:       m.WarehouseID,
		DestX:             m.DestX,
		DestY:             m.DestY,
		CarrierAccount:    m.CarrierAccount,
		TrackingID:        m.TrackingID,
		TruckID:           m.TruckID,
		Status:            fulfillment.ShipmentStatus(m.Status),
	}
	for _, item := range m.Items {
		s.Items = append(s.Items, fulfillment.ShipmentItem{
			ID:          item.ID,
			ShipmentID:  item.ShipmentID,
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			CreatedAt:   item.CreatedAt,
			UpdatedAt:   item.UpdatedAt,
		})
	}
	return s
}

// OrderModel is the persistence model for fulfillment.Order
type OrderModel struct {
	AggregateModel
	Status         string `gorm:"not null;index"`
	DestX          int64  `gorm:"column:dest_x;not null"`
	DestY          int64  `gorm:"column:dest_y;not null"`
	CarrierAccount *string

	Items []OrderItemModel `gorm:"foreignKey:OrderID"`
}

// TableName specifies the table name for OrderModel
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the persistence model for fulfillment.OrderItem
type OrderItemModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductID   int64     `gorm:"not null"`
	Description string
	Quantity    int64 `gorm:"not null"`
	FulfilledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for OrderItemModel
func (OrderItemModel) TableName() string {
	return "order_items"
}

// OrderModelFromDomain converts a domain order to its persistence model
func OrderModelFromDomain(o *fulfillment.Order) *OrderModel {
	m := &OrderModel{
		Status:         o.Status.String(),
		DestX:          o.DestX,
		DestY:          o.DestY,
		CarrierAccount: o.CarrierAccount,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	for _, item := range o.Items {
		m.Items = append(m.Items, OrderItemModel{
			ID:          item.ID,
			OrderID:     item.OrderID,
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			FulfilledAt: item.FulfilledAt,
			CreatedAt:   item.CreatedAt,
			UpdatedAt:   item.UpdatedAt,
		})
	}
	return m
}

// ToDomain converts the persistence model to a domain order
func (m *OrderModel) ToDomain() *fulfillment.Order {
	o := &fulfillment.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Status:            fulfillment.OrderStatus(m.Status),
		DestX:             m.DestX,
		DestY:             m.DestY,
		CarrierAccount:    m.CarrierAccount,
	}
	for _, item := range m.Items {
		o.Items = append(o.Items, fulfillment.OrderItem{
			ID:          item.ID,
			OrderID:     item.OrderID,
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			FulfilledAt: item.FulfilledAt,
			CreatedAt:   item.CreatedAt,
			UpdatedAt:   item.UpdatedAt,
		})
	}
	return o
}

// WarehouseModel is the persistence model for fulfillment.Warehouse.
// The primary key is assigned by the world simulator, never generated.
type WarehouseModel struct {
	ID        int64 `gorm:"primary_key;autoIncrement:false"`
	X         int64 `gorm:"not null"`
	Y         int64 `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for WarehouseModel
func (WarehouseModel) TableName() string {
	return "warehouses"
}

// WarehouseStockModel tracks on-hand quantity per warehouse and product
type WarehouseStockModel struct {
	WarehouseID int64 `gorm:"primary_key;autoIncrement:false"`
	ProductID   int64 `gorm:"primary_key;autoIncrement:false"`
	Description string
	Quantity    int64 `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for WarehouseStockModel
func (WarehouseStockModel) TableName() string {
	return "warehouse_stocks"
}

package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minimart/backend/internal/infrastructure/persistence/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.ShipmentModel{},
		&models.ShipmentItemModel{},
		&models.OrderModel{},
		&models.OrderItemModel{},
		&models.WarehouseModel{},
		&models.WarehouseStockModel{},
		&models.OutboundMessageModel{},
	)
	require.NoError(t, err)

	return db
}

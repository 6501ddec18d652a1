package persistence

import (
	"github.com/comercio/backend/internal/domain/catalog"
	"github.com/comercio/backend/internal/domain/commerce"
	"github.com/comercio/backend/internal/domain/partner"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema for all aggregates
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&catalog.Product{},
		&partner.Supplier{},
		&partner.Customer{},
		&commerce.PurchaseOrder{},
		&commerce.PurchaseOrderItem{},
		&commerce.SalesOrder{},
		&commerce.SalesOrderItem{},
		&commerce.SettledSale{},
	)
}

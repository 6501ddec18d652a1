package catalog

import (
	"context"

	"github.com/comercio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Product represents a sellable product with tracked stock.
// Stock is a single quantity per product; multi-location stock is out of scope.
type Product struct {
	shared.BaseAggregateRoot
	Code          string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name          string `gorm:"type:varchar(200);not null"`
	SalePrice     int64  `gorm:"not null;default:0"` // minor currency units
	StockQuantity int64  `gorm:"not null;default:0"`
	MinStock      int64  `gorm:"not null;default:0"`
	Active        bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(code, name string, salePrice, minStock int64) (*Product, error) {
	if code == "" {
		return nil, shared.NewValidationError("code", code, "REQUIRED")
	}
	if name == "" {
		return nil, shared.NewValidationError("name", name, "REQUIRED")
	}
	if salePrice < 0 {
		return nil, shared.NewValidationError("sale_price", salePrice, "AMOUNT_RANGE")
	}
	if minStock < 0 {
		return nil, shared.NewValidationError("min_stock", minStock, "AMOUNT_RANGE")
	}
	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		SalePrice:         salePrice,
		MinStock:          minStock,
		Active:            true,
	}, nil
}

// IncreaseStock adds quantity to the product stock
func (p *Product) IncreaseStock(quantity int64) error {
	if quantity <= 0 {
		return shared.NewValidationError("quantity", quantity, "QUANTITY_POSITIVE")
	}
	p.StockQuantity += quantity
	p.IncrementVersion()
	return nil
}

// DecreaseStock subtracts quantity from the product stock, flooring at zero.
// The returned flag reports whether flooring occurred, which signals that
// recorded stock had already drifted below the quantity being reversed.
func (p *Product) DecreaseStock(quantity int64) (floored bool, err error) {
	if quantity <= 0 {
		return false, shared.NewValidationError("quantity", quantity, "QUANTITY_POSITIVE")
	}
	if quantity > p.StockQuantity {
		p.StockQuantity = 0
		p.IncrementVersion()
		return true, nil
	}
	p.StockQuantity -= quantity
	p.IncrementVersion()
	return false, nil
}

// IsBelowMinStock reports whether stock is at or below the minimum threshold
func (p *Product) IsBelowMinStock() bool {
	return p.StockQuantity <= p.MinStock
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds products by a set of IDs; missing ids are simply absent
	// from the result
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindByCode finds a product by its unique code
	FindByCode(ctx context.Context, code string) (*Product, error)

	// FindAll finds products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Delete removes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

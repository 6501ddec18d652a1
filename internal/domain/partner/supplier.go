package partner

import (
	"context"

	"github.com/comercio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Supplier represents a goods supplier referenced by purchase orders
type Supplier struct {
	shared.BaseAggregateRoot
	Name         string `gorm:"type:varchar(200);not null"`
	DocumentCode string `gorm:"type:varchar(50);uniqueIndex"` // fiscal registration code
	Email        string `gorm:"type:varchar(200)"`
	Phone        string `gorm:"type:varchar(30)"`
	Active       bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new supplier
func NewSupplier(name, documentCode string) (*Supplier, error) {
	if name == "" {
		return nil, shared.NewValidationError("name", name, "REQUIRED")
	}
	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		DocumentCode:      documentCode,
		Active:            true,
	}, nil
}

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Supplier, error)
	Save(ctx context.Context, supplier *Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

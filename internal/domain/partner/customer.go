package partner

import (
	"context"

	"github.com/comercio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Customer represents a buyer referenced by sales orders
type Customer struct {
	shared.BaseAggregateRoot
	Name         string `gorm:"type:varchar(200);not null"`
	DocumentCode string `gorm:"type:varchar(50);index"`
	Email        string `gorm:"type:varchar(200)"`
	Phone        string `gorm:"type:varchar(30)"`
	Address      string `gorm:"type:varchar(500)"`
	Active       bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer
func NewCustomer(name, documentCode string) (*Customer, error) {
	if name == "" {
		return nil, shared.NewValidationError("name", name, "REQUIRED")
	}
	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		DocumentCode:      documentCode,
		Active:            true,
	}, nil
}

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)
	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

package commerce

import (
	"context"
	"time"

	"github.com/comercio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PurchaseOrderRepository persists purchase order aggregates
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindByNumber(ctx context.Context, documentNumber string) (*PurchaseOrder, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[PurchaseOrder], error)
	FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) (*shared.Paginated[PurchaseOrder], error)
	FindByStatus(ctx context.Context, status PurchaseOrderStatus, filter shared.Filter) (*shared.Paginated[PurchaseOrder], error)
	FindByDateRange(ctx context.Context, from, to time.Time, filter shared.Filter) (*shared.Paginated[PurchaseOrder], error)
	Save(ctx context.Context, order *PurchaseOrder) error
	// SaveWithLock persists the aggregate only if its version still matches
	// the stored row, bumping the version on success.
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[PurchaseOrderStatus]int64, error)
	// SumRealizedTotal sums Total over orders in realized statuses.
	SumRealizedTotal(ctx context.Context, from, to *time.Time) (int64, error)
	ExistsByDocumentNumber(ctx context.Context, documentNumber string) (bool, error)
	GenerateDocumentNumber(ctx context.Context) (string, error)
}

// SalesOrderRepository persists sales order aggregates
type SalesOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrder, error)
	FindByNumber(ctx context.Context, documentNumber string) (*SalesOrder, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[SalesOrder], error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (*shared.Paginated[SalesOrder], error)
	FindByStatus(ctx context.Context, status SalesOrderStatus, filter shared.Filter) (*shared.Paginated[SalesOrder], error)
	FindByDateRange(ctx context.Context, from, to time.Time, filter shared.Filter) (*shared.Paginated[SalesOrder], error)
	Save(ctx context.Context, order *SalesOrder) error
	SaveWithLock(ctx context.Context, order *SalesOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[SalesOrderStatus]int64, error)
	SumRealizedTotal(ctx context.Context, from, to *time.Time) (int64, error)
	ExistsByDocumentNumber(ctx context.Context, documentNumber string) (bool, error)
	GenerateDocumentNumber(ctx context.Context) (string, error)
}

// SettledSaleRepository persists settlement records
type SettledSaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SettledSale, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*SettledSale, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[SettledSale], error)
	FindByDateRange(ctx context.Context, from, to time.Time, filter shared.Filter) (*shared.Paginated[SettledSale], error)
	Save(ctx context.Context, sale *SettledSale) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByOrderID(ctx context.Context, orderID uuid.UUID) (bool, error)
	SumTotal(ctx context.Context, from, to *time.Time) (int64, error)
	Count(ctx context.Context, from, to *time.Time) (int64, error)
}

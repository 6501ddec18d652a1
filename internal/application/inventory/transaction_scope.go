package inventory

import (
	"context"

	"github.com/comercio/backend/internal/domain/catalog"
	"github.com/comercio/backend/internal/domain/commerce"
)

// TransactionScope provides transactional access to the repositories touched
// by document lifecycle operations. A status change and the stock mutations it
// triggers commit or roll back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repository access within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	Products() catalog.ProductRepository
	PurchaseOrders() commerce.PurchaseOrderRepository
	SalesOrders() commerce.SalesOrderRepository
	SettledSales() commerce.SettledSaleRepository
}

// NoOpTransactionScope runs the function against the given repositories
// without a real transaction. Used in tests.
type NoOpTransactionScope struct {
	productRepo       catalog.ProductRepository
	purchaseOrderRepo commerce.PurchaseOrderRepository
	salesOrderRepo    commerce.SalesOrderRepository
	settledSaleRepo   commerce.SettledSaleRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	productRepo catalog.ProductRepository,
	purchaseOrderRepo commerce.PurchaseOrderRepository,
	salesOrderRepo commerce.SalesOrderRepository,
	settledSaleRepo commerce.SettledSaleRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo:       productRepo,
		purchaseOrderRepo: purchaseOrderRepo,
		salesOrderRepo:    salesOrderRepo,
		settledSaleRepo:   settledSaleRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Products returns the product repository
func (s *NoOpTransactionScope) Products() catalog.ProductRepository {
	return s.productRepo
}

// PurchaseOrders returns the purchase order repository
func (s *NoOpTransactionScope) PurchaseOrders() commerce.PurchaseOrderRepository {
	return s.purchaseOrderRepo
}

// SalesOrders returns the sales order repository
func (s *NoOpTransactionScope) SalesOrders() commerce.SalesOrderRepository {
	return s.salesOrderRepo
}

// SettledSales returns the settled sale repository
func (s *NoOpTransactionScope) SettledSales() commerce.SettledSaleRepository {
	return s.settledSaleRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)

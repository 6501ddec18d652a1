package persistence

import (
	"context"

	appinv "github.com/comercio/backend/internal/application/inventory"
	"github.com/comercio/backend/internal/domain/catalog"
	"github.com/comercio/backend/internal/domain/commerce"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Products returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// PurchaseOrders returns the purchase order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PurchaseOrders() commerce.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

// SalesOrders returns the sales order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SalesOrders() commerce.SalesOrderRepository {
	return NewGormSalesOrderRepository(r.tx)
}

// SettledSales returns the settled sale repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SettledSales() commerce.SettledSaleRepository {
	return NewGormSettledSaleRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appinv.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)

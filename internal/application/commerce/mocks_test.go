package commerce

import (
	"context"
	"time"

	"github.com/comercio/backend/internal/domain/catalog"
	"github.com/comercio/backend/internal/domain/commerce"
	"github.com/comercio/backend/internal/domain/partner"
	"github.com/comercio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockPurchaseOrderRepository is a mock implementation of commerce.PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*commerce.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByNumber(ctx context.Context, documentNumber string) (*commerce.PurchaseOrder, error) {
	args := m.Called(ctx, documentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[commerce.PurchaseOrder], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[commerce.PurchaseOrder]), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) (*shared.Paginated[commerce.PurchaseOrder], error) {
	args := m.Called(ctx, supplierID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[commerce.PurchaseOrder]), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByStatus(ctx context.Context, status commerce.PurchaseOrderStatus, filter shared.Filter) (*shared.Paginated[commerce.PurchaseOrder], error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[commerce.PurchaseOrder]), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByDateRange(ctx context.Context, from, to time.Time, filter shared.Filter) (*shared.Paginated[commerce.PurchaseOrder], error) {
	args := m.Called(ctx, from, to, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[commerce.PurchaseOrder]), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, order *commerce.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *commerce.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) CountByStatus(ctx context.Context) (map[commerce.PurchaseOrderStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[commerce.PurchaseOrderStatus]int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) SumRealizedTotal(ctx context.Context, from, to *time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) ExistsByDocumentNumber(ctx context.Context, documentNumber string) (bool, error) {
	args := m.Called(ctx, documentNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockPurchaseOrderRepository) GenerateDocumentNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockSalesOrderRepository is a mock implementation of commerce.SalesOrderRepository
type MockSalesOrderRepository struct {
	mock.Mock
}

func (m *MockSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*commerce.SalesOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindByNumber(ctx context.Context, documentNumber string) (*commerce.SalesOrder, error) {
	args := m.Called(ctx, documentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[commerce.SalesOrder], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[commerce.SalesOrder]), args.Error(1)
}

func (m *MockSalesOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (*shared.Paginated[commerce.SalesOrder], error) {
	args := m.Called(ctx, customerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[commerce.SalesOrder]), args.Error(1)
}

func (m *MockSalesOrderRepository) FindByStatus(ctx context.Context, status commerce.SalesOrderStatus, filter shared.Filter) (*shared.Paginated[commerce.SalesOrder], error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[commerce.SalesOrder]), args.Error(1)
}

func (m *MockSalesOrderRepository) FindByDateRange(ctx context.Context, from, to time.Time, filter shared.Filter) (*shared.Paginated[commerce.SalesOrder], error) {
	args := m.Called(ctx, from, to, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[commerce.SalesOrder]), args.Error(1)
}

func (m *MockSalesOrderRepository) Save(ctx context.Context, order *commerce.SalesOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockSalesOrderRepository) SaveWithLock(ctx context.Context, order *commerce.SalesOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockSalesOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSalesOrderRepository) CountByStatus(ctx context.Context) (map[commerce.SalesOrderStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[commerce.SalesOrderStatus]int64), args.Error(1)
}

func (m *MockSalesOrderRepository) SumRealizedTotal(ctx context.Context, from, to *time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSalesOrderRepository) ExistsByDocumentNumber(ctx context.Context, documentNumber string) (bool, error) {
	args := m.Called(ctx, documentNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockSalesOrderRepository) GenerateDocumentNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockSettledSaleRepository is a mock implementation of commerce.SettledSaleRepository
type MockSettledSaleRepository struct {
	mock.Mock
}

func (m *MockSettledSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*commerce.SettledSale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.SettledSale), args.Error(1)
}

func (m *MockSettledSaleRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*commerce.SettledSale, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.SettledSale), args.Error(1)
}

func (m *MockSettledSaleRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[commerce.SettledSale], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[commerce.SettledSale]), args.Error(1)
}

func (m *MockSettledSaleRepository) FindByDateRange(ctx context.Context, from, to time.Time, filter shared.Filter) (*shared.Paginated[commerce.SettledSale], error) {
	args := m.Called(ctx, from, to, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[commerce.SettledSale]), args.Error(1)
}

func (m *MockSettledSaleRepository) Save(ctx context.Context, sale *commerce.SettledSale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSettledSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSettledSaleRepository) ExistsByOrderID(ctx context.Context, orderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettledSaleRepository) SumTotal(ctx context.Context, from, to *time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSettledSaleRepository) Count(ctx context.Context, from, to *time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockSupplierRepository is a mock implementation of partner.SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSupplierRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

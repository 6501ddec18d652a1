package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comercio/backend/internal/domain/catalog"
	"github.com/comercio/backend/internal/domain/commerce"
	"github.com/comercio/backend/internal/domain/shared"
	"github.com/comercio/backend/internal/interfaces/http/dto"
)

func settlementBody(amountPaid int64) map[string]interface{} {
	return map[string]interface{}{
		"payment_method": "CASH",
		"amount_paid":    amountPaid,
	}
}

func TestSalesOrderHandler_ProcessSettlement(t *testing.T) {
	f := newHandlerFixture(t)
	order := deliveredSalesOrder(t)

	product, err := catalog.NewProduct("GAD-001", "Gadget", 1500, 1)
	require.NoError(t, err)
	require.NoError(t, product.IncreaseStock(5))
	order.Items[0].ProductID = product.ID

	f.settledSales.On("ExistsByOrderID", mock.Anything, order.ID).Return(false, nil)
	f.salesOrders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	f.settledSales.On("Save", mock.Anything, mock.AnythingOfType("*commerce.SettledSale")).Return(nil)
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.products.On("Save", mock.Anything, product).Return(nil)
	f.salesOrders.On("SaveWithLock", mock.Anything, order).Return(nil)

	w := f.do(t, http.MethodPost, "/api/v1/sales-orders/"+order.ID.String()+"/settlement",
		settlementBody(order.Total+500))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "cash_change")
	// 5 on hand minus the delivered quantity of 2.
	assert.Equal(t, int64(3), product.StockQuantity)
	assert.True(t, order.StockApplied)
	f.settledSales.AssertExpectations(t)
}

func TestSalesOrderHandler_ProcessSettlement_AlreadySettled(t *testing.T) {
	f := newHandlerFixture(t)
	orderID := uuid.New()

	f.settledSales.On("ExistsByOrderID", mock.Anything, orderID).Return(true, nil)

	w := f.do(t, http.MethodPost, "/api/v1/sales-orders/"+orderID.String()+"/settlement",
		settlementBody(5000))

	assertErrorCode(t, w, http.StatusConflict, dto.ErrCodeConflict)
	f.settledSales.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSalesOrderHandler_ProcessSettlement_OrderNotDelivered(t *testing.T) {
	f := newHandlerFixture(t)
	order, err := commerce.NewSalesOrder("VD-2026-00011", uuid.New(), "Jane Doe", commerce.PaymentMethodPix, uuid.New().String())
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), "Gadget", 1, 2500)
	require.NoError(t, err)

	f.settledSales.On("ExistsByOrderID", mock.Anything, order.ID).Return(false, nil)
	f.salesOrders.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	w := f.do(t, http.MethodPost, "/api/v1/sales-orders/"+order.ID.String()+"/settlement",
		settlementBody(5000))

	assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeBusinessRule)
}

func TestSalesOrderHandler_ProcessSettlement_InvalidBody(t *testing.T) {
	f := newHandlerFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/sales-orders/"+uuid.New().String()+"/settlement",
		map[string]interface{}{"payment_method": "CASH"})

	assertErrorCode(t, w, http.StatusUnprocessableEntity, dto.ErrCodeValidation)
	assert.Contains(t, w.Body.String(), "amount_paid")
}

func newStoredSettlement(t *testing.T, settledAt time.Time) *commerce.SettledSale {
	t.Helper()
	order := deliveredSalesOrder(t)
	sale, err := commerce.NewSettledSale(order, commerce.PaymentMethodCash, order.Total+500, uuid.New().String())
	require.NoError(t, err)
	sale.SettledAt = settledAt
	return sale
}

func TestSettledSaleHandler_GetByID(t *testing.T) {
	f := newHandlerFixture(t)
	sale := newStoredSettlement(t, time.Now())

	f.settledSales.On("FindByID", mock.Anything, sale.ID).Return(sale, nil)

	w := f.do(t, http.MethodGet, "/api/v1/settled-sales/"+sale.ID.String(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), sale.DocumentNumber)
}

func TestSalesOrderHandler_GetSettlement(t *testing.T) {
	f := newHandlerFixture(t)
	sale := newStoredSettlement(t, time.Now())

	f.settledSales.On("FindByOrderID", mock.Anything, sale.OrderID).Return(sale, nil)

	w := f.do(t, http.MethodGet, "/api/v1/sales-orders/"+sale.OrderID.String()+"/settlement", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), sale.ID.String())
}

func TestSettledSaleHandler_List(t *testing.T) {
	f := newHandlerFixture(t)
	sale := newStoredSettlement(t, time.Now())
	page := shared.NewPaginated([]commerce.SettledSale{*sale}, 1, 1, 20)

	f.settledSales.On("FindAll", mock.Anything, mock.AnythingOfType("shared.Filter")).Return(&page, nil)

	w := f.do(t, http.MethodGet, "/api/v1/settled-sales", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestSettledSaleHandler_List_ByDateRange(t *testing.T) {
	f := newHandlerFixture(t)
	sale := newStoredSettlement(t, time.Now())
	page := shared.NewPaginated([]commerce.SettledSale{*sale}, 1, 1, 20)

	f.settledSales.On("FindByDateRange", mock.Anything,
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"),
		mock.AnythingOfType("shared.Filter")).Return(&page, nil)

	w := f.do(t, http.MethodGet, "/api/v1/settled-sales?from=2026-08-01&to=2026-08-28", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	f.settledSales.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

func TestSettledSaleHandler_Delete_SameDay(t *testing.T) {
	f := newHandlerFixture(t)
	sale := newStoredSettlement(t, time.Now())
	order := deliveredSalesOrder(t)
	order.ID = sale.OrderID
	order.MarkStockApplied()

	product, err := catalog.NewProduct("GAD-002", "Gadget", 1500, 1)
	require.NoError(t, err)
	require.NoError(t, product.IncreaseStock(1))
	order.Items[0].ProductID = product.ID

	f.settledSales.On("FindByID", mock.Anything, sale.ID).Return(sale, nil)
	f.salesOrders.On("FindByID", mock.Anything, sale.OrderID).Return(order, nil)
	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.products.On("Save", mock.Anything, product).Return(nil)
	f.salesOrders.On("SaveWithLock", mock.Anything, order).Return(nil)
	f.settledSales.On("Delete", mock.Anything, sale.ID).Return(nil)

	w := f.do(t, http.MethodDelete, "/api/v1/settled-sales/"+sale.ID.String(), nil)

	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	// 1 on hand plus the restored quantity of 2.
	assert.Equal(t, int64(3), product.StockQuantity)
	assert.False(t, order.StockApplied)
	f.settledSales.AssertExpectations(t)
}

func TestSettledSaleHandler_Delete_PriorDayRejected(t *testing.T) {
	f := newHandlerFixture(t)
	sale := newStoredSettlement(t, time.Now().Add(-48*time.Hour))

	f.settledSales.On("FindByID", mock.Anything, sale.ID).Return(sale, nil)

	w := f.do(t, http.MethodDelete, "/api/v1/settled-sales/"+sale.ID.String(), nil)

	assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeBusinessRule)
	f.settledSales.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSettledSaleHandler_Statistics(t *testing.T) {
	f := newHandlerFixture(t)

	f.settledSales.On("Count", mock.Anything, (*time.Time)(nil), (*time.Time)(nil)).Return(int64(2), nil)
	f.settledSales.On("SumTotal", mock.Anything, (*time.Time)(nil), (*time.Time)(nil)).Return(int64(5000), nil)

	w := f.do(t, http.MethodGet, "/api/v1/settled-sales/statistics", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "5000")
}

package commerce

import (
	"testing"
	"time"

	"github.com/comercio/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createDeliveredSalesOrder(t *testing.T) *SalesOrder {
	t.Helper()
	order := createTestSalesOrder(t)
	addTestSalesItem(t, order, 2, 2500) // total 5000
	actor := testActorID()
	_, err := order.Transition(SalesOrderStatusConfirmed, actor)
	require.NoError(t, err)
	_, err = order.Transition(SalesOrderStatusDelivered, actor)
	require.NoError(t, err)
	return order
}

func TestNewSettledSale(t *testing.T) {
	order := createDeliveredSalesOrder(t)
	actor := testActorID()

	sale, err := NewSettledSale(order, PaymentMethodCash, 6000, actor)
	require.NoError(t, err)

	assert.Equal(t, order.ID, sale.OrderID)
	assert.Equal(t, order.DocumentNumber, sale.DocumentNumber)
	assert.Equal(t, order.CustomerID, sale.CustomerID)
	assert.Equal(t, int64(5000), sale.FinalTotal)
	assert.Equal(t, int64(6000), sale.AmountPaid)
	assert.Equal(t, int64(1000), sale.CashChange)
	assert.Equal(t, actor, sale.CreatedBy)
	assert.WithinDuration(t, time.Now(), sale.SettledAt, time.Second)
}

func TestNewSettledSale_ExactPayment(t *testing.T) {
	order := createDeliveredSalesOrder(t)

	sale, err := NewSettledSale(order, PaymentMethodPix, 5000, testActorID())
	require.NoError(t, err)
	assert.Equal(t, int64(0), sale.CashChange)
}

func TestNewSettledSale_OrderNotDelivered(t *testing.T) {
	order := createTestSalesOrder(t)
	addTestSalesItem(t, order, 1, 1000)

	_, err := NewSettledSale(order, PaymentMethodCash, 1000, testActorID())
	require.Error(t, err)
	assert.True(t, shared.IsBusinessRule(err))
}

func TestNewSettledSale_Underpayment(t *testing.T) {
	order := createDeliveredSalesOrder(t)

	_, err := NewSettledSale(order, PaymentMethodCash, 4999, testActorID())
	assert.True(t, shared.IsValidation(err))
}

func TestNewSettledSale_NilOrder(t *testing.T) {
	_, err := NewSettledSale(nil, PaymentMethodCash, 100, testActorID())
	assert.True(t, shared.IsValidation(err))
}

func TestSettledSale_CanDelete(t *testing.T) {
	order := createDeliveredSalesOrder(t)
	sale, err := NewSettledSale(order, PaymentMethodCash, 5000, testActorID())
	require.NoError(t, err)

	assert.NoError(t, sale.CanDelete(sale.SettledAt))
	assert.NoError(t, sale.CanDelete(sale.SettledAt.Add(time.Minute)))

	nextDay := time.Date(2026, 8, 30, 0, 0, 1, 0, sale.SettledAt.Location())
	sale.SettledAt = time.Date(2026, 8, 29, 23, 59, 0, 0, sale.SettledAt.Location())
	err = sale.CanDelete(nextDay)
	assert.True(t, shared.IsBusinessRule(err))
}

package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appcommerce "github.com/comercio/backend/internal/application/commerce"
	appinventory "github.com/comercio/backend/internal/application/inventory"
	"github.com/comercio/backend/internal/domain/commerce"
	"github.com/comercio/backend/internal/interfaces/http/dto"
	"github.com/comercio/backend/internal/interfaces/http/middleware"
)

var validatorOnce sync.Once

// testActorID is the actor the fake auth middleware injects
var testActorID = uuid.New().String()

type handlerFixture struct {
	purchaseOrders *MockPurchaseOrderRepository
	salesOrders    *MockSalesOrderRepository
	settledSales   *MockSettledSaleRepository
	products       *MockProductRepository
	suppliers      *MockSupplierRepository
	customers      *MockCustomerRepository
	router         *gin.Engine
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validatorOnce.Do(func() {
		require.NoError(t, middleware.SetupValidator())
	})

	f := &handlerFixture{
		purchaseOrders: new(MockPurchaseOrderRepository),
		salesOrders:    new(MockSalesOrderRepository),
		settledSales:   new(MockSettledSaleRepository),
		products:       new(MockProductRepository),
		suppliers:      new(MockSupplierRepository),
		customers:      new(MockCustomerRepository),
	}

	scope := appinventory.NewNoOpTransactionScope(f.products, f.purchaseOrders, f.salesOrders, f.settledSales)
	reconciler := appinventory.NewStockReconciler(zap.NewNop())
	nop := zap.NewNop()

	purchaseService := appcommerce.NewPurchaseOrderService(f.purchaseOrders, f.suppliers, f.products, scope, reconciler, nop)
	salesService := appcommerce.NewSalesOrderService(f.salesOrders, f.customers, f.products, scope, nop)
	settledService := appcommerce.NewSettledSaleService(f.settledSales, f.salesOrders, scope, reconciler, nop)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(func(c *gin.Context) {
		c.Set("actor_id", testActorID)
		c.Next()
	})

	api := r.Group("/api/v1")
	NewPurchaseOrderHandler(purchaseService).RegisterRoutes(api)
	NewSalesOrderHandler(salesService, settledService).RegisterRoutes(api)
	NewSettledSaleHandler(settledService).RegisterRoutes(api)

	f.router = r
	return f
}

func (f *handlerFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func deliveredSalesOrder(t *testing.T) *commerce.SalesOrder {
	t.Helper()
	order, err := commerce.NewSalesOrder("VD-2026-00010", uuid.New(), "Jane Doe", commerce.PaymentMethodPix, uuid.New().String())
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), "Gadget", 2, 1500)
	require.NoError(t, err)
	for _, status := range []commerce.SalesOrderStatus{commerce.SalesOrderStatusConfirmed, commerce.SalesOrderStatusDelivered} {
		_, err = order.Transition(status, uuid.New().String())
		require.NoError(t, err)
	}
	return order
}

func pendingPurchaseOrder(t *testing.T) *commerce.PurchaseOrder {
	t.Helper()
	issue := time.Now().Add(-time.Hour)
	order, err := commerce.NewPurchaseOrder("PC-2026-00010", uuid.New(), "Acme Supplies", issue, issue.Add(30*24*time.Hour), commerce.PaymentMethodBankTransfer, uuid.New().String())
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), "Widget", 2, 1500)
	require.NoError(t, err)
	return order
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantCode string) {
	t.Helper()
	require.Equal(t, wantStatus, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	require.Equal(t, wantCode, resp.Error.Code)
	require.NotEmpty(t, resp.Error.RequestID)
}

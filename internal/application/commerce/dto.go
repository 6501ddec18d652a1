package commerce

import (
	"time"

	"github.com/comercio/backend/internal/domain/commerce"
	"github.com/comercio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ==================== Purchase Order DTOs ====================

// LineItemRequest represents one line item in a document creation request
type LineItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,gt=0"`
	UnitPrice int64     `json:"unit_price" binding:"gte=0"`
}

// CreatePurchaseOrderRequest represents a request to create a purchase order.
// Monetary fields are minor currency units. DocumentNumber is optional; one
// is generated when absent.
type CreatePurchaseOrderRequest struct {
	DocumentNumber string            `json:"document_number" binding:"omitempty,document_number"`
	SupplierID     uuid.UUID         `json:"supplier_id" binding:"required"`
	IssueDate      time.Time         `json:"issue_date" binding:"required"`
	DueDate        time.Time         `json:"due_date" binding:"required"`
	Total          int64             `json:"total" binding:"required,gt=0"`
	Discount       int64             `json:"discount" binding:"gte=0"`
	Freight        int64             `json:"freight" binding:"gte=0"`
	Taxes          int64             `json:"taxes" binding:"gte=0"`
	PaymentMethod  string            `json:"payment_method" binding:"required,payment_method"`
	Items          []LineItemRequest `json:"items" binding:"dive"`
}

// UpdatePurchaseOrderRequest represents a partial update; nil means untouched
type UpdatePurchaseOrderRequest struct {
	DocumentNumber *string    `json:"document_number"`
	IssueDate      *time.Time `json:"issue_date"`
	DueDate        *time.Time `json:"due_date"`
	Total          *int64     `json:"total"`
	Discount       *int64     `json:"discount"`
	Freight        *int64     `json:"freight"`
	Taxes          *int64     `json:"taxes"`
	PaymentMethod  *string    `json:"payment_method"`
	Status         *string    `json:"status"`
}

// TransitionRequest represents a status change request
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListRequest represents pagination, ordering and search options
type ListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search"`
}

// ToFilter converts the request into a repository filter with defaults applied
func (r ListRequest) ToFilter() shared.Filter {
	filter := shared.DefaultFilter()
	if r.Page > 0 {
		filter.Page = r.Page
	}
	if r.PageSize > 0 {
		filter.PageSize = r.PageSize
	}
	if r.OrderBy != "" {
		filter.OrderBy = r.OrderBy
	}
	if r.OrderDir != "" {
		filter.OrderDir = r.OrderDir
	}
	filter.Search = r.Search
	return filter
}

// LineItemResponse represents a line item in API responses
type LineItemResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int64     `json:"quantity"`
	UnitPrice   int64     `json:"unit_price"`
	Amount      int64     `json:"amount"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID             uuid.UUID          `json:"id"`
	DocumentNumber string             `json:"document_number"`
	SupplierID     uuid.UUID          `json:"supplier_id"`
	SupplierName   string             `json:"supplier_name"`
	IssueDate      time.Time          `json:"issue_date"`
	DueDate        time.Time          `json:"due_date"`
	Items          []LineItemResponse `json:"items"`
	Subtotal       int64              `json:"subtotal"`
	Total          int64              `json:"total"`
	Discount       int64              `json:"discount"`
	Freight        int64              `json:"freight"`
	Taxes          int64              `json:"taxes"`
	PaymentMethod  string             `json:"payment_method"`
	Status         string             `json:"status"`
	StockApplied   bool               `json:"stock_applied"`
	ConfirmedAt    *time.Time         `json:"confirmed_at,omitempty"`
	ReceivedAt     *time.Time         `json:"received_at,omitempty"`
	CancelledAt    *time.Time         `json:"cancelled_at,omitempty"`
	CreatedBy      string             `json:"created_by"`
	UpdatedBy      string             `json:"updated_by"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Version        int                `json:"version"`
}

// ToPurchaseOrderResponse converts a domain purchase order to a response DTO
func ToPurchaseOrderResponse(order *commerce.PurchaseOrder) PurchaseOrderResponse {
	items := make([]LineItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, LineItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		})
	}
	return PurchaseOrderResponse{
		ID:             order.ID,
		DocumentNumber: order.DocumentNumber,
		SupplierID:     order.SupplierID,
		SupplierName:   order.SupplierName,
		IssueDate:      order.IssueDate,
		DueDate:        order.DueDate,
		Items:          items,
		Subtotal:       order.Subtotal(),
		Total:          order.Total,
		Discount:       order.Discount,
		Freight:        order.Freight,
		Taxes:          order.Taxes,
		PaymentMethod:  order.PaymentMethod.String(),
		Status:         order.Status.String(),
		StockApplied:   order.StockApplied,
		ConfirmedAt:    order.ConfirmedAt,
		ReceivedAt:     order.ReceivedAt,
		CancelledAt:    order.CancelledAt,
		CreatedBy:      order.CreatedBy,
		UpdatedBy:      order.UpdatedBy,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
		Version:        order.Version,
	}
}

// ToPurchaseOrderListResponse converts a paginated domain result
func ToPurchaseOrderListResponse(page *shared.Paginated[commerce.PurchaseOrder]) *shared.Paginated[PurchaseOrderResponse] {
	items := make([]PurchaseOrderResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, ToPurchaseOrderResponse(&page.Items[i]))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result
}

// ==================== Sales Order DTOs ====================

// CreateSalesOrderRequest represents a request to create a sales order
type CreateSalesOrderRequest struct {
	DocumentNumber  string            `json:"document_number" binding:"omitempty,document_number"`
	CustomerID      uuid.UUID         `json:"customer_id" binding:"required"`
	Total           int64             `json:"total" binding:"required,gt=0"`
	Discount        int64             `json:"discount" binding:"gte=0"`
	DeliveryFee     int64             `json:"delivery_fee" binding:"gte=0"`
	PaymentMethod   string            `json:"payment_method" binding:"required,payment_method"`
	DeliveryAddress string            `json:"delivery_address" binding:"max=500"`
	Items           []LineItemRequest `json:"items" binding:"dive"`
}

// UpdateSalesOrderRequest represents a partial update; nil means untouched
type UpdateSalesOrderRequest struct {
	DocumentNumber  *string `json:"document_number"`
	Total           *int64  `json:"total"`
	Discount        *int64  `json:"discount"`
	DeliveryFee     *int64  `json:"delivery_fee"`
	PaymentMethod   *string `json:"payment_method"`
	Status          *string `json:"status"`
	DeliveryAddress *string `json:"delivery_address"`
}

// SalesOrderResponse represents a sales order in API responses
type SalesOrderResponse struct {
	ID              uuid.UUID          `json:"id"`
	DocumentNumber  string             `json:"document_number"`
	CustomerID      uuid.UUID          `json:"customer_id"`
	CustomerName    string             `json:"customer_name"`
	Items           []LineItemResponse `json:"items"`
	Subtotal        int64              `json:"subtotal"`
	Total           int64              `json:"total"`
	Discount        int64              `json:"discount"`
	DeliveryFee     int64              `json:"delivery_fee"`
	PaymentMethod   string             `json:"payment_method"`
	Status          string             `json:"status"`
	DeliveryAddress string             `json:"delivery_address,omitempty"`
	StockApplied    bool               `json:"stock_applied"`
	ConfirmedAt     *time.Time         `json:"confirmed_at,omitempty"`
	DeliveredAt     *time.Time         `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time         `json:"cancelled_at,omitempty"`
	CreatedBy       string             `json:"created_by"`
	UpdatedBy       string             `json:"updated_by"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	Version         int                `json:"version"`
}

// ToSalesOrderResponse converts a domain sales order to a response DTO
func ToSalesOrderResponse(order *commerce.SalesOrder) SalesOrderResponse {
	items := make([]LineItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, LineItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		})
	}
	return SalesOrderResponse{
		ID:              order.ID,
		DocumentNumber:  order.DocumentNumber,
		CustomerID:      order.CustomerID,
		CustomerName:    order.CustomerName,
		Items:           items,
		Subtotal:        order.Subtotal(),
		Total:           order.Total,
		Discount:        order.Discount,
		DeliveryFee:     order.DeliveryFee,
		PaymentMethod:   order.PaymentMethod.String(),
		Status:          order.Status.String(),
		DeliveryAddress: order.DeliveryAddress,
		StockApplied:    order.StockApplied,
		ConfirmedAt:     order.ConfirmedAt,
		DeliveredAt:     order.DeliveredAt,
		CancelledAt:     order.CancelledAt,
		CreatedBy:       order.CreatedBy,
		UpdatedBy:       order.UpdatedBy,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		Version:         order.Version,
	}
}

// ToSalesOrderListResponse converts a paginated domain result
func ToSalesOrderListResponse(page *shared.Paginated[commerce.SalesOrder]) *shared.Paginated[SalesOrderResponse] {
	items := make([]SalesOrderResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, ToSalesOrderResponse(&page.Items[i]))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result
}

// ==================== Settled Sale DTOs ====================

// ProcessSettlementRequest settles a delivered sales order
type ProcessSettlementRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required,payment_method"`
	AmountPaid    int64  `json:"amount_paid" binding:"required,gt=0"`
}

// SettledSaleResponse represents a settlement in API responses
type SettledSaleResponse struct {
	ID             uuid.UUID `json:"id"`
	OrderID        uuid.UUID `json:"order_id"`
	DocumentNumber string    `json:"document_number"`
	CustomerID     uuid.UUID `json:"customer_id"`
	CustomerName   string    `json:"customer_name"`
	FinalTotal     int64     `json:"final_total"`
	PaymentMethod  string    `json:"payment_method"`
	AmountPaid     int64     `json:"amount_paid"`
	CashChange     int64     `json:"cash_change"`
	SettledAt      time.Time `json:"settled_at"`
	CreatedBy      string    `json:"created_by"`
}

// ToSettledSaleResponse converts a domain settlement to a response DTO
func ToSettledSaleResponse(sale *commerce.SettledSale) SettledSaleResponse {
	return SettledSaleResponse{
		ID:             sale.ID,
		OrderID:        sale.OrderID,
		DocumentNumber: sale.DocumentNumber,
		CustomerID:     sale.CustomerID,
		CustomerName:   sale.CustomerName,
		FinalTotal:     sale.FinalTotal,
		PaymentMethod:  sale.PaymentMethod.String(),
		AmountPaid:     sale.AmountPaid,
		CashChange:     sale.CashChange,
		SettledAt:      sale.SettledAt,
		CreatedBy:      sale.CreatedBy,
	}
}

// ToSettledSaleListResponse converts a paginated domain result
func ToSettledSaleListResponse(page *shared.Paginated[commerce.SettledSale]) *shared.Paginated[SettledSaleResponse] {
	items := make([]SettledSaleResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, ToSettledSaleResponse(&page.Items[i]))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result
}

// ==================== Statistics DTOs ====================

// DocumentStatisticsResponse is the rollup returned by order statistics
// endpoints. RealizedAverage is a major-unit decimal string.
type DocumentStatisticsResponse struct {
	ByStatus        map[string]int64 `json:"by_status"`
	TotalDocuments  int64            `json:"total_documents"`
	RealizedCount   int64            `json:"realized_count"`
	RealizedTotal   int64            `json:"realized_total"`
	RealizedAverage string           `json:"realized_average"`
}

// SettlementStatisticsResponse is the rollup for settled sales
type SettlementStatisticsResponse struct {
	Count        int64  `json:"count"`
	Total        int64  `json:"total"`
	AverageTotal string `json:"average_total"`
}

package commerce

import (
	"time"

	"github.com/comercio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SalesOrderItem represents a line item in a sales order
type SalesOrderItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null"`
	ProductName string    `gorm:"type:varchar(200);not null"`
	Quantity    int64     `gorm:"not null"`
	UnitPrice   int64     `gorm:"not null"` // minor currency units
	Amount      int64     `gorm:"not null"` // Quantity * UnitPrice
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalesOrderItem) TableName() string {
	return "sales_order_items"
}

// NewSalesOrderItem creates a new sales order item
func NewSalesOrderItem(orderID, productID uuid.UUID, productName string, quantity, unitPrice int64) (*SalesOrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("product_id", productID.String(), RuleRequired)
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("quantity", quantity, RuleQuantityPositive)
	}
	if unitPrice < 0 || unitPrice > MaxMonetaryAmount {
		return nil, shared.NewValidationError("unit_price", unitPrice, RuleAmountRange)
	}

	now := time.Now()
	return &SalesOrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      quantity * unitPrice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SalesOrder represents a customer order aggregate root
type SalesOrder struct {
	shared.AuditedAggregateRoot
	DocumentNumber  string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	CustomerName    string           `gorm:"type:varchar(200);not null"`
	Items           []SalesOrderItem `gorm:"foreignKey:OrderID;references:ID"`
	Total           int64            `gorm:"not null;default:0"` // minor currency units
	Discount        int64            `gorm:"not null;default:0"`
	DeliveryFee     int64            `gorm:"not null;default:0"`
	PaymentMethod   PaymentMethod    `gorm:"type:varchar(20);not null"`
	Status          SalesOrderStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	DeliveryAddress string           `gorm:"type:varchar(500)"`
	// StockApplied tracks whether delivery reconciliation ran for this order,
	// so receipt and reversal each run at most once.
	StockApplied bool `gorm:"not null;default:false"`
	ConfirmedAt  *time.Time
	DeliveredAt  *time.Time
	CancelledAt  *time.Time
}

// TableName returns the table name for GORM
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// NewSalesOrder creates a new sales order in PENDING status
func NewSalesOrder(documentNumber string, customerID uuid.UUID, customerName string, paymentMethod PaymentMethod, actorID string) (*SalesOrder, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer_id", customerID.String(), RuleRequired)
	}
	if !paymentMethod.IsValid() {
		return nil, shared.NewValidationError("payment_method", paymentMethod.String(), RuleEnumValue)
	}
	if !shared.IsActorID(actorID) {
		return nil, shared.NewValidationError("actor_id", actorID, RuleActorID)
	}

	return &SalesOrder{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(actorID),
		DocumentNumber:       documentNumber,
		CustomerID:           customerID,
		CustomerName:         customerName,
		PaymentMethod:        paymentMethod,
		Status:               SalesOrderStatusPending,
		Items:                make([]SalesOrderItem, 0),
	}, nil
}

// AddItem adds a new line item and recalculates the total
func (o *SalesOrder) AddItem(productID uuid.UUID, productName string, quantity, unitPrice int64) (*SalesOrderItem, error) {
	if o.Status != SalesOrderStatusPending {
		return nil, shared.NewBusinessRuleError("DOCUMENT_NOT_EDITABLE", map[string]interface{}{
			"status": o.Status.String(),
		})
	}
	item, err := NewSalesOrderItem(o.ID, productID, productName, quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.UpdatedAt = time.Now()
	return item, nil
}

// SetCharges updates discount and delivery fee, recalculating the total
func (o *SalesOrder) SetCharges(discount, deliveryFee int64) error {
	for field, v := range map[string]int64{"discount": discount, "delivery_fee": deliveryFee} {
		if v < 0 || v > MaxMonetaryAmount {
			return shared.NewValidationError(field, v, RuleAmountRange)
		}
	}
	if discount > o.Subtotal() {
		return shared.NewValidationError("discount", discount, RuleDiscountExceedsSubtotal)
	}
	o.Discount = discount
	o.DeliveryFee = deliveryFee
	o.recalculateTotal()
	o.UpdatedAt = time.Now()
	return nil
}

// SetDeliveryAddress sets the optional delivery address
func (o *SalesOrder) SetDeliveryAddress(address string) {
	o.DeliveryAddress = address
	o.UpdatedAt = time.Now()
}

// Subtotal returns the pre-discount sum of all line items
func (o *SalesOrder) Subtotal() int64 {
	var sum int64
	for _, item := range o.Items {
		sum += item.Amount
	}
	return sum
}

// Transition applies a validated status change. Same-status requests on a
// non-terminal document succeed without mutating anything.
func (o *SalesOrder) Transition(requested SalesOrderStatus, actorID string) (TransitionDecision, error) {
	decision, err := ValidateSalesTransition(o.Status, requested)
	if err != nil {
		return 0, err
	}
	if decision == TransitionNoOp {
		return TransitionNoOp, nil
	}

	now := time.Now()
	o.Status = requested
	switch requested {
	case SalesOrderStatusConfirmed:
		o.ConfirmedAt = &now
	case SalesOrderStatusDelivered:
		o.DeliveredAt = &now
	case SalesOrderStatusCancelled:
		o.CancelledAt = &now
	}
	o.SetUpdatedBy(actorID)
	o.UpdatedAt = now
	return TransitionProceed, nil
}

// MarkStockApplied records that delivery reconciliation ran for this order
func (o *SalesOrder) MarkStockApplied() {
	o.StockApplied = true
}

// MarkStockReversed records that the applied delivery has been undone
func (o *SalesOrder) MarkStockReversed() {
	o.StockApplied = false
}

// IsTerminal reports whether the order is in a terminal status
func (o *SalesOrder) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// ItemCount returns the number of line items
func (o *SalesOrder) ItemCount() int {
	return len(o.Items)
}

// CanDelete reports whether the order may be hard-deleted. Delivered orders
// are never deletable; cancellation is reported separately because the
// remediation differs.
func (o *SalesOrder) CanDelete() error {
	switch o.Status {
	case SalesOrderStatusDelivered:
		return shared.NewConflictError("status", o.Status.String(), "already delivered")
	case SalesOrderStatusCancelled:
		return shared.NewBusinessRuleError("DOCUMENT_CANCELLED", map[string]interface{}{
			"status": o.Status.String(),
		})
	}
	return nil
}

// recalculateTotal recalculates the document total from items and charges
func (o *SalesOrder) recalculateTotal() {
	o.Total = o.Subtotal() - o.Discount + o.DeliveryFee
	if o.Total < 0 {
		o.Total = 0
	}
}

package commerce

import (
	"time"

	"github.com/comercio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PurchaseOrderItem represents a line item in a purchase order
type PurchaseOrderItem struct {
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
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// NewPurchaseOrderItem creates a new purchase order item
func NewPurchaseOrderItem(orderID, productID uuid.UUID, productName string, quantity, unitPrice int64) (*PurchaseOrderItem, error) {
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
	return &PurchaseOrderItem{
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

// PurchaseOrder represents a supplier order aggregate root.
// It is created in PENDING and mutated only through validated transitions.
type PurchaseOrder struct {
	shared.AuditedAggregateRoot
	DocumentNumber string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	SupplierName   string              `gorm:"type:varchar(200);not null"`
	IssueDate      time.Time           `gorm:"not null;index"`
	DueDate        time.Time           `gorm:"not null"`
	Items          []PurchaseOrderItem `gorm:"foreignKey:OrderID;references:ID"`
	Total          int64               `gorm:"not null;default:0"` // minor currency units
	Discount       int64               `gorm:"not null;default:0"`
	Freight        int64               `gorm:"not null;default:0"`
	Taxes          int64               `gorm:"not null;default:0"`
	PaymentMethod  PaymentMethod       `gorm:"type:varchar(20);not null"`
	Status         PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	// StockApplied tracks whether the receipt reconciliation for this order
	// has been applied, so receipt and reversal each run at most once.
	StockApplied bool `gorm:"not null;default:false"`
	ConfirmedAt  *time.Time
	ReceivedAt   *time.Time
	CancelledAt  *time.Time
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new purchase order in PENDING status.
// Full input validation happens in ValidatePurchaseOrderCreate; this
// constructor guards only the invariants the aggregate cannot exist without.
func NewPurchaseOrder(documentNumber string, supplierID uuid.UUID, supplierName string, issueDate, dueDate time.Time, paymentMethod PaymentMethod, actorID string) (*PurchaseOrder, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewValidationError("supplier_id", supplierID.String(), RuleRequired)
	}
	if !paymentMethod.IsValid() {
		return nil, shared.NewValidationError("payment_method", paymentMethod.String(), RuleEnumValue)
	}
	if !shared.IsActorID(actorID) {
		return nil, shared.NewValidationError("actor_id", actorID, RuleActorID)
	}

	return &PurchaseOrder{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(actorID),
		DocumentNumber:       documentNumber,
		SupplierID:           supplierID,
		SupplierName:         supplierName,
		IssueDate:            issueDate,
		DueDate:              dueDate,
		PaymentMethod:        paymentMethod,
		Status:               PurchaseOrderStatusPending,
		Items:                make([]PurchaseOrderItem, 0),
	}, nil
}

// AddItem adds a new line item and recalculates the total
func (o *PurchaseOrder) AddItem(productID uuid.UUID, productName string, quantity, unitPrice int64) (*PurchaseOrderItem, error) {
	if o.Status != PurchaseOrderStatusPending {
		return nil, shared.NewBusinessRuleError("DOCUMENT_NOT_EDITABLE", map[string]interface{}{
			"status": o.Status.String(),
		})
	}
	item, err := NewPurchaseOrderItem(o.ID, productID, productName, quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.UpdatedAt = time.Now()
	return item, nil
}

// RemoveItem removes a line item and recalculates the total
func (o *PurchaseOrder) RemoveItem(itemID uuid.UUID) error {
	if o.Status != PurchaseOrderStatusPending {
		return shared.NewBusinessRuleError("DOCUMENT_NOT_EDITABLE", map[string]interface{}{
			"status": o.Status.String(),
		})
	}
	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotal()
			o.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewNotFoundError("purchase order item", itemID.String())
}

// SetCharges updates discount, freight and taxes, recalculating the total.
// Discount must not exceed the pre-discount subtotal.
func (o *PurchaseOrder) SetCharges(discount, freight, taxes int64) error {
	for field, v := range map[string]int64{"discount": discount, "freight": freight, "taxes": taxes} {
		if v < 0 || v > MaxMonetaryAmount {
			return shared.NewValidationError(field, v, RuleAmountRange)
		}
	}
	if discount > o.Subtotal() {
		return shared.NewValidationError("discount", discount, RuleDiscountExceedsSubtotal)
	}
	o.Discount = discount
	o.Freight = freight
	o.Taxes = taxes
	o.recalculateTotal()
	o.UpdatedAt = time.Now()
	return nil
}

// SetSchedule applies the date fields present in a partial update. The merged
// issue/due pair is validated as a whole, so moving one date cannot leave the
// stored pair with due before issue or past the five-year window.
func (o *PurchaseOrder) SetSchedule(issue, due *time.Time) error {
	newIssue, newDue := o.IssueDate, o.DueDate
	if issue != nil {
		newIssue = *issue
	}
	if due != nil {
		newDue = *due
	}
	if err := validateDueDate(newIssue, newDue); err != nil {
		return err
	}
	o.IssueDate = newIssue
	o.DueDate = newDue
	o.UpdatedAt = time.Now()
	return nil
}

// Subtotal returns the pre-discount sum of all line items
func (o *PurchaseOrder) Subtotal() int64 {
	var sum int64
	for _, item := range o.Items {
		sum += item.Amount
	}
	return sum
}

// Transition applies a validated status change. Same-status requests on a
// non-terminal document succeed without mutating anything.
func (o *PurchaseOrder) Transition(requested PurchaseOrderStatus, actorID string) (TransitionDecision, error) {
	decision, err := ValidatePurchaseTransition(o.Status, requested)
	if err != nil {
		return 0, err
	}
	if decision == TransitionNoOp {
		return TransitionNoOp, nil
	}

	now := time.Now()
	o.Status = requested
	switch requested {
	case PurchaseOrderStatusConfirmed:
		o.ConfirmedAt = &now
	case PurchaseOrderStatusReceived:
		o.ReceivedAt = &now
	case PurchaseOrderStatusCancelled:
		o.CancelledAt = &now
	}
	o.SetUpdatedBy(actorID)
	o.UpdatedAt = now
	return TransitionProceed, nil
}

// MarkStockApplied records that receipt reconciliation ran for this order
func (o *PurchaseOrder) MarkStockApplied() {
	o.StockApplied = true
}

// MarkStockReversed records that the applied receipt has been undone
func (o *PurchaseOrder) MarkStockReversed() {
	o.StockApplied = false
}

// IsTerminal reports whether the order is in a terminal status
func (o *PurchaseOrder) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// ItemCount returns the number of line items
func (o *PurchaseOrder) ItemCount() int {
	return len(o.Items)
}

// CanDelete reports whether the order may be hard-deleted: never once
// received, and only while it carries no line items.
func (o *PurchaseOrder) CanDelete() error {
	if o.Status == PurchaseOrderStatusReceived {
		return shared.NewConflictError("status", o.Status.String(), "already received")
	}
	if o.Status == PurchaseOrderStatusCancelled {
		return shared.NewBusinessRuleError("DOCUMENT_CANCELLED", map[string]interface{}{
			"status": o.Status.String(),
		})
	}
	if len(o.Items) > 0 {
		return shared.NewConflictError("items", len(o.Items), "purchase order has line items")
	}
	return nil
}

// recalculateTotal recalculates the document total from items and charges
func (o *PurchaseOrder) recalculateTotal() {
	o.Total = o.Subtotal() - o.Discount + o.Freight + o.Taxes
	if o.Total < 0 {
		o.Total = 0
	}
}

package commerce

import (
	"time"

	"github.com/comercio/backend/internal/domain/shared"
	"github.com/comercio/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// SettledSale is the financial settlement derived from exactly one DELIVERED
// sales order. It is immutable after creation and deletable only on the same
// calendar day it was settled.
type SettledSale struct {
	shared.BaseAggregateRoot
	OrderID        uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex"`
	DocumentNumber string        `gorm:"type:varchar(50);not null"`
	CustomerID     uuid.UUID     `gorm:"type:uuid;not null;index"`
	CustomerName   string        `gorm:"type:varchar(200);not null"`
	FinalTotal     int64         `gorm:"not null"` // minor currency units
	PaymentMethod  PaymentMethod `gorm:"type:varchar(20);not null"`
	AmountPaid     int64         `gorm:"not null"`
	CashChange     int64         `gorm:"not null;default:0"`
	SettledAt      time.Time     `gorm:"not null;index"`
	CreatedBy      string        `gorm:"type:varchar(36);not null"`
}

// TableName returns the table name for GORM
func (SettledSale) TableName() string {
	return "settled_sales"
}

// NewSettledSale settles a delivered sales order. The order must be DELIVERED;
// amountPaid must cover the order total, and the difference becomes CashChange.
func NewSettledSale(order *SalesOrder, paymentMethod PaymentMethod, amountPaid int64, actorID string) (*SettledSale, error) {
	if order == nil {
		return nil, shared.NewValidationError("order", nil, RuleRequired)
	}
	if order.Status != SalesOrderStatusDelivered {
		return nil, shared.NewBusinessRuleError("ORDER_NOT_DELIVERED", map[string]interface{}{
			"order_id": order.ID.String(),
			"status":   order.Status.String(),
		})
	}
	if !paymentMethod.IsValid() {
		return nil, shared.NewValidationError("payment_method", paymentMethod.String(), RuleEnumValue)
	}
	paid, err := valueobject.NewMoney(amountPaid)
	if err != nil {
		return nil, shared.NewValidationError("amount_paid", amountPaid, RuleAmountRange)
	}
	total, err := valueobject.NewMoney(order.Total)
	if err != nil {
		return nil, shared.NewValidationError("total", order.Total, RuleAmountRange)
	}
	if total.GreaterThan(paid) {
		return nil, shared.NewValidationError("amount_paid", amountPaid, RuleAmountRange)
	}
	if !shared.IsActorID(actorID) {
		return nil, shared.NewValidationError("actor_id", actorID, RuleActorID)
	}

	return &SettledSale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           order.ID,
		DocumentNumber:    order.DocumentNumber,
		CustomerID:        order.CustomerID,
		CustomerName:      order.CustomerName,
		FinalTotal:        order.Total,
		PaymentMethod:     paymentMethod,
		AmountPaid:        amountPaid,
		CashChange:        paid.Sub(total).Amount(),
		SettledAt:         time.Now(),
		CreatedBy:         actorID,
	}, nil
}

// CanDelete reports whether the settlement may still be deleted. Only
// same-day deletion is allowed; after that the record is permanent.
func (s *SettledSale) CanDelete(now time.Time) error {
	sy, sm, sd := s.SettledAt.Date()
	ny, nm, nd := now.Date()
	if sy != ny || sm != nm || sd != nd {
		return shared.NewBusinessRuleError("SETTLEMENT_DELETE_WINDOW_CLOSED", map[string]interface{}{
			"settled_at": s.SettledAt.Format("2006-01-02"),
		})
	}
	return nil
}

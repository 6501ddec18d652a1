package commerce

import (
	"time"

	"github.com/comercio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CreatePurchaseOrderInput carries the fields accepted when creating a
// purchase order. DocumentNumber may be empty; one is generated.
type CreatePurchaseOrderInput struct {
	DocumentNumber string
	SupplierID     uuid.UUID
	IssueDate      time.Time
	DueDate        time.Time
	Total          int64
	Discount       int64
	Freight        int64
	Taxes          int64
	PaymentMethod  string
	Items          []LineItemInput
	ActorID        string
}

// UpdatePurchaseOrderInput carries a partial update; nil means untouched
type UpdatePurchaseOrderInput struct {
	DocumentNumber *string
	IssueDate      *time.Time
	DueDate        *time.Time
	Total          *int64
	Discount       *int64
	Freight        *int64
	Taxes          *int64
	PaymentMethod  *string
	Status         *string
	ActorID        string
}

// HasChanges reports whether at least one updatable field is present
func (in UpdatePurchaseOrderInput) HasChanges() bool {
	return in.DocumentNumber != nil || in.IssueDate != nil || in.DueDate != nil ||
		in.Total != nil || in.Discount != nil || in.Freight != nil ||
		in.Taxes != nil || in.PaymentMethod != nil || in.Status != nil
}

// ValidatePurchaseOrderCreate runs the full field and cross-field checks for
// purchase order creation. Pure: no repository access, no side effects.
func ValidatePurchaseOrderCreate(in CreatePurchaseOrderInput, now time.Time) error {
	if in.SupplierID == uuid.Nil {
		return shared.NewValidationError("supplier_id", in.SupplierID.String(), RuleRequired)
	}
	if err := validateDocumentNumber(in.DocumentNumber); err != nil {
		return err
	}
	if err := validateIssueDate(in.IssueDate, now); err != nil {
		return err
	}
	if err := validateDueDate(in.IssueDate, in.DueDate); err != nil {
		return err
	}
	if err := validateRequiredAmount("total", in.Total); err != nil {
		return err
	}
	for field, v := range map[string]int64{"discount": in.Discount, "freight": in.Freight, "taxes": in.Taxes} {
		if err := validateOptionalAmount(field, v); err != nil {
			return err
		}
	}
	if !PaymentMethod(in.PaymentMethod).IsValid() {
		return shared.NewValidationError("payment_method", in.PaymentMethod, RuleEnumValue)
	}
	if err := validateLineItems(in.Items); err != nil {
		return err
	}
	if err := validateActorID(in.ActorID); err != nil {
		return err
	}

	subtotal := itemsSubtotal(in.Items)
	if in.Discount > subtotal {
		return shared.NewValidationError("discount", in.Discount, RuleDiscountExceedsSubtotal)
	}
	if len(in.Items) > 0 {
		if err := validateTotalConsistency(in.Total, subtotal, in.Discount, in.Freight+in.Taxes); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePurchaseOrderUpdate checks a partial update. Cross-field rules that
// need persisted state (discount against the stored total, status legality)
// are re-checked by the service against the loaded document.
func ValidatePurchaseOrderUpdate(in UpdatePurchaseOrderInput, now time.Time) error {
	if !in.HasChanges() {
		return shared.NewValidationError("input", nil, RuleNoFieldsChanged)
	}
	if err := validateActorID(in.ActorID); err != nil {
		return err
	}
	if in.DocumentNumber != nil {
		if *in.DocumentNumber == "" {
			return shared.NewValidationError("document_number", *in.DocumentNumber, RuleRequired)
		}
		if err := validateDocumentNumber(*in.DocumentNumber); err != nil {
			return err
		}
	}
	if in.IssueDate != nil {
		if err := validateIssueDate(*in.IssueDate, now); err != nil {
			return err
		}
	}
	if in.IssueDate != nil && in.DueDate != nil {
		if err := validateDueDate(*in.IssueDate, *in.DueDate); err != nil {
			return err
		}
	}
	if in.Total != nil {
		if err := validateRequiredAmount("total", *in.Total); err != nil {
			return err
		}
	}
	if in.Discount != nil {
		if err := validateOptionalAmount("discount", *in.Discount); err != nil {
			return err
		}
	}
	if in.Freight != nil {
		if err := validateOptionalAmount("freight", *in.Freight); err != nil {
			return err
		}
	}
	if in.Taxes != nil {
		if err := validateOptionalAmount("taxes", *in.Taxes); err != nil {
			return err
		}
	}
	if in.PaymentMethod != nil && !PaymentMethod(*in.PaymentMethod).IsValid() {
		return shared.NewValidationError("payment_method", *in.PaymentMethod, RuleEnumValue)
	}
	if in.Status != nil && !PurchaseOrderStatus(*in.Status).IsValid() {
		return shared.NewValidationError("status", *in.Status, RuleEnumValue)
	}
	return nil
}

package commerce

import (
	"github.com/comercio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CreateSalesOrderInput carries the fields accepted when creating a sales
// order. DocumentNumber may be empty; one is generated.
type CreateSalesOrderInput struct {
	DocumentNumber  string
	CustomerID      uuid.UUID
	Total           int64
	Discount        int64
	DeliveryFee     int64
	PaymentMethod   string
	DeliveryAddress string
	Items           []LineItemInput
	ActorID         string
}

// UpdateSalesOrderInput carries a partial update; nil means untouched
type UpdateSalesOrderInput struct {
	DocumentNumber  *string
	Total           *int64
	Discount        *int64
	DeliveryFee     *int64
	PaymentMethod   *string
	Status          *string
	DeliveryAddress *string
	ActorID         string
}

// HasChanges reports whether at least one updatable field is present
func (in UpdateSalesOrderInput) HasChanges() bool {
	return in.DocumentNumber != nil || in.Total != nil || in.Discount != nil ||
		in.DeliveryFee != nil || in.PaymentMethod != nil || in.Status != nil ||
		in.DeliveryAddress != nil
}

// ValidateSalesOrderCreate runs the full field and cross-field checks for
// sales order creation. Pure: no repository access, no side effects.
func ValidateSalesOrderCreate(in CreateSalesOrderInput) error {
	if in.CustomerID == uuid.Nil {
		return shared.NewValidationError("customer_id", in.CustomerID.String(), RuleRequired)
	}
	if err := validateDocumentNumber(in.DocumentNumber); err != nil {
		return err
	}
	if err := validateRequiredAmount("total", in.Total); err != nil {
		return err
	}
	for field, v := range map[string]int64{"discount": in.Discount, "delivery_fee": in.DeliveryFee} {
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
		if err := validateTotalConsistency(in.Total, subtotal, in.Discount, in.DeliveryFee); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSalesOrderUpdate checks a partial update. Discount against the
// stored total and status legality are re-checked by the service.
func ValidateSalesOrderUpdate(in UpdateSalesOrderInput) error {
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
	if in.DeliveryFee != nil {
		if err := validateOptionalAmount("delivery_fee", *in.DeliveryFee); err != nil {
			return err
		}
	}
	if in.PaymentMethod != nil && !PaymentMethod(*in.PaymentMethod).IsValid() {
		return shared.NewValidationError("payment_method", *in.PaymentMethod, RuleEnumValue)
	}
	if in.Status != nil && !SalesOrderStatus(*in.Status).IsValid() {
		return shared.NewValidationError("status", *in.Status, RuleEnumValue)
	}
	return nil
}

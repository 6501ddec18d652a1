package commerce

import (
	"regexp"
	"time"

	"github.com/comercio/backend/internal/domain/shared"
	"github.com/comercio/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// MaxMonetaryAmount is the largest accepted monetary value, in minor units
const MaxMonetaryAmount = valueobject.MaxAmount

// TotalRoundingTolerance is the permitted difference, in minor units, between
// a caller-supplied total and the total recomputed from line items.
const TotalRoundingTolerance int64 = 1

// Symbolic validation rule codes. Every validation failure carries one of
// these so callers never have to parse message text.
const (
	RuleRequired                = "REQUIRED"
	RuleAmountRange             = "AMOUNT_RANGE"
	RuleQuantityPositive        = "QUANTITY_POSITIVE"
	RuleInvalidDate             = "INVALID_DATE"
	RuleIssueDateInFuture       = "ISSUE_DATE_IN_FUTURE"
	RuleIssueDateTooOld         = "ISSUE_DATE_TOO_OLD"
	RuleDueDateBeforeIssue      = "DUE_DATE_BEFORE_ISSUE"
	RuleDueDateTooFar           = "DUE_DATE_TOO_FAR"
	RuleDocumentNumberFormat    = "DOCUMENT_NUMBER_FORMAT"
	RuleEnumValue               = "ENUM_VALUE"
	RuleDiscountExceedsSubtotal = "DISCOUNT_EXCEEDS_SUBTOTAL"
	RuleTotalMismatch           = "TOTAL_MISMATCH"
	RuleNoFieldsChanged         = "NO_FIELDS_CHANGED"
	RuleActorID                 = "ACTOR_ID_FORMAT"
)

const (
	maxIssueDateAge  = 10 * 365 * 24 * time.Hour
	maxDueDateOffset = 5 * 365 * 24 * time.Hour
)

var documentNumberPattern = regexp.MustCompile(`^[A-Za-z0-9/-]{1,50}$`)

// IsValidDocumentNumber reports whether s matches the accepted document
// number shape. Used by the HTTP layer to register a binding validation.
func IsValidDocumentNumber(s string) bool {
	return documentNumberPattern.MatchString(s)
}

// LineItemInput is one line item of a document creation request
type LineItemInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
}

// validateRequiredAmount checks a monetary field that must carry a positive
// value, in minor units.
func validateRequiredAmount(field string, v int64) error {
	if v < 1 || v > MaxMonetaryAmount {
		return shared.NewValidationError(field, v, RuleAmountRange)
	}
	return nil
}

// validateOptionalAmount checks a monetary field that may be zero
func validateOptionalAmount(field string, v int64) error {
	if v < 0 || v > MaxMonetaryAmount {
		return shared.NewValidationError(field, v, RuleAmountRange)
	}
	return nil
}

// validateDocumentNumber checks the document number format when present
func validateDocumentNumber(number string) error {
	if number == "" {
		return nil
	}
	if !documentNumberPattern.MatchString(number) {
		return shared.NewValidationError("document_number", number, RuleDocumentNumberFormat)
	}
	return nil
}

// validateIssueDate checks that the issue date is a real date, not in the
// future, and not older than ten years.
func validateIssueDate(issue time.Time, now time.Time) error {
	if issue.IsZero() {
		return shared.NewValidationError("issue_date", issue, RuleRequired)
	}
	if issue.After(now) {
		return shared.NewValidationError("issue_date", issue.Format("2006-01-02"), RuleIssueDateInFuture)
	}
	if issue.Before(now.Add(-maxIssueDateAge)) {
		return shared.NewValidationError("issue_date", issue.Format("2006-01-02"), RuleIssueDateTooOld)
	}
	return nil
}

// validateDueDate checks the due date against the issue date: due on or after
// issue, and no more than five years later.
func validateDueDate(issue, due time.Time) error {
	if due.IsZero() {
		return shared.NewValidationError("due_date", due, RuleRequired)
	}
	if due.Before(issue) {
		return shared.NewValidationError("due_date", due.Format("2006-01-02"), RuleDueDateBeforeIssue)
	}
	if due.After(issue.Add(maxDueDateOffset)) {
		return shared.NewValidationError("due_date", due.Format("2006-01-02"), RuleDueDateTooFar)
	}
	return nil
}

// validateLineItems checks the per-item quantity and price rules
func validateLineItems(items []LineItemInput) error {
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return shared.NewValidationError("items.product_id", item.ProductID.String(), RuleRequired)
		}
		if item.Quantity <= 0 {
			return shared.NewValidationError("items.quantity", item.Quantity, RuleQuantityPositive)
		}
		if item.UnitPrice < 0 || item.UnitPrice > MaxMonetaryAmount {
			return shared.NewValidationError("items.unit_price", item.UnitPrice, RuleAmountRange)
		}
	}
	return nil
}

// itemsSubtotal returns the pre-discount sum of the given line items
func itemsSubtotal(items []LineItemInput) int64 {
	var sum int64
	for _, item := range items {
		sum += item.Quantity * item.UnitPrice
	}
	return sum
}

// validateTotalConsistency checks total = subtotal - discount + extras within
// the ±1 minor-unit rounding tolerance.
func validateTotalConsistency(total, subtotal, discount, extras int64) error {
	expected := subtotal - discount + extras
	diff := total - expected
	if diff < -TotalRoundingTolerance || diff > TotalRoundingTolerance {
		return shared.NewValidationError("total", total, RuleTotalMismatch)
	}
	return nil
}

// validateActorID checks the opaque actor id shape
func validateActorID(actorID string) error {
	if !shared.IsActorID(actorID) {
		return shared.NewValidationError("actor_id", actorID, RuleActorID)
	}
	return nil
}

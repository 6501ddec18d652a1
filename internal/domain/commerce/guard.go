package commerce

import (
	"github.com/comercio/backend/internal/domain/shared"
)

// TransitionDecision is the outcome of a successful guard check
type TransitionDecision int

const (
	// TransitionProceed means the requested status differs from the current
	// one and the edge is legal; the caller must apply it.
	TransitionProceed TransitionDecision = iota
	// TransitionNoOp means the request repeats the current non-terminal
	// status; the caller must treat it as an idempotent success and change
	// nothing.
	TransitionNoOp
)

// Guard error codes
const (
	CodeStatusTerminal    = "STATUS_TERMINAL"
	CodeIllegalTransition = "ILLEGAL_STATUS_TRANSITION"
	CodeUnknownStatus     = "UNKNOWN_STATUS"
)

// ValidatePurchaseTransition enforces the purchase order status graph.
//
// Terminal documents are fully immutable: any request from RECEIVED or
// CANCELLED fails, including a request for the current status itself. For a
// non-terminal current status, requesting the same status is a no-op success.
func ValidatePurchaseTransition(current, requested PurchaseOrderStatus) (TransitionDecision, error) {
	if !current.IsValid() {
		return 0, shared.NewBusinessRuleError(CodeUnknownStatus, map[string]interface{}{"status": current.String()})
	}
	if !requested.IsValid() {
		return 0, shared.NewBusinessRuleError(CodeUnknownStatus, map[string]interface{}{"status": requested.String()})
	}
	if current.IsTerminal() {
		return 0, shared.NewBusinessRuleError(CodeStatusTerminal, map[string]interface{}{
			"from": current.String(),
			"to":   requested.String(),
		})
	}
	if current == requested {
		return TransitionNoOp, nil
	}
	if !current.CanTransitionTo(requested) {
		return 0, shared.NewBusinessRuleError(CodeIllegalTransition, map[string]interface{}{
			"from": current.String(),
			"to":   requested.String(),
		})
	}
	return TransitionProceed, nil
}

// ValidateSalesTransition enforces the sales order status graph with the same
// terminal-immutability and same-state semantics as purchases.
func ValidateSalesTransition(current, requested SalesOrderStatus) (TransitionDecision, error) {
	if !current.IsValid() {
		return 0, shared.NewBusinessRuleError(CodeUnknownStatus, map[string]interface{}{"status": current.String()})
	}
	if !requested.IsValid() {
		return 0, shared.NewBusinessRuleError(CodeUnknownStatus, map[string]interface{}{"status": requested.String()})
	}
	if current.IsTerminal() {
		return 0, shared.NewBusinessRuleError(CodeStatusTerminal, map[string]interface{}{
			"from": current.String(),
			"to":   requested.String(),
		})
	}
	if current == requested {
		return TransitionNoOp, nil
	}
	if !current.CanTransitionTo(requested) {
		return 0, shared.NewBusinessRuleError(CodeIllegalTransition, map[string]interface{}{
			"from": current.String(),
			"to":   requested.String(),
		})
	}
	return TransitionProceed, nil
}

package shared

import (
	"errors"
	"fmt"
)

// ValidationError reports a caller-correctable input defect. Rule carries the
// symbolic rule code so callers never have to parse free text.
type ValidationError struct {
	Field string      `json:"field"`
	Value interface{} `json:"value"`
	Rule  string      `json:"rule"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s (rule %s): rejected value %v", e.Field, e.Rule, e.Value)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, rule string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Rule: rule}
}

// NotFoundError reports a missing entity by type and identifier.
type NotFoundError struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NewNotFoundError creates a new not-found error
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports a uniqueness violation or a deletion blocked by
// dependent records.
type ConflictError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Message string      `json:"message"`
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("conflict on %s=%v: %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("conflict on %s=%v", e.Field, e.Value)
}

// NewConflictError creates a new conflict error
func NewConflictError(field string, value interface{}, message string) *ConflictError {
	return &ConflictError{Field: field, Value: value, Message: message}
}

// BusinessRuleError reports an illegal domain operation such as a forbidden
// status transition. Context gives callers the facts needed for remediation.
type BusinessRuleError struct {
	Code    string                 `json:"code"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *BusinessRuleError) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("business rule violated: %s", e.Code)
	}
	return fmt.Sprintf("business rule violated: %s %v", e.Code, e.Context)
}

// NewBusinessRuleError creates a new business rule error
func NewBusinessRuleError(code string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{Code: code, Context: context}
}

// OperationError attaches the name of the service operation that failed while
// preserving the wrapped error kind for errors.As matching.
type OperationError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the wrapped error
func (e *OperationError) Unwrap() error {
	return e.Err
}

// WrapOp wraps err with the operation name, passing nil through unchanged.
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Op: op, Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsConflict reports whether err is (or wraps) a ConflictError
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsBusinessRule reports whether err is (or wraps) a BusinessRuleError
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

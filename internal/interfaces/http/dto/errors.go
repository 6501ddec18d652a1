package dto

import "net/http"

// API error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeValidation is used when request content fails domain validation
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeUnauthorized is used when authentication is required but missing or invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for resource conflicts, including optimistic lock failures
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeBusinessRule is used for business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// statusByCode maps API error codes to HTTP status codes
var statusByCode = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusUnprocessableEntity,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeBusinessRule: http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an API error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

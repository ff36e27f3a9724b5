package shared

import (
	"sort"
	"strings"
)

// FieldError describes a single invalid or missing input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DomainError represents a domain-level error
type DomainError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped sentinel comparisons work
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error carrying field-level details
func NewValidationError(message string, details ...FieldError) *DomainError {
	return &DomainError{
		Code:    CodeValidation,
		Message: message,
		Details: details,
	}
}

// MissingFieldsError builds a validation error listing every missing field.
// Field names are sorted so the message is stable.
func MissingFieldsError(prefix string, fields []string) *DomainError {
	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)
	details := make([]FieldError, len(sorted))
	for i, f := range sorted {
		details[i] = FieldError{Field: f, Message: "This field is required."}
	}
	return NewValidationError(prefix+": "+strings.Join(sorted, ", "), details...)
}

// Error codes used across the affiliate domain
const (
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInvalidState        = "INVALID_STATE"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodePaymentProcessing   = "PAYMENT_PROCESSING_ERROR"
	CodeUnsupportedMethod   = "UNSUPPORTED_PAYMENT_METHOD"
	CodeDuplicateRequest    = "DUPLICATE_REQUEST"
	CodeNoEligibleEarnings  = "NO_ELIGIBLE_EARNINGS"
	CodeBelowMinimumPayout  = "BELOW_MINIMUM_PAYOUT"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrForbidden           = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrDuplicateRequest    = NewDomainError(CodeDuplicateRequest, "Request with this idempotency key was already processed")
)

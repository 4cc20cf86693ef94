package shared

import "errors"

// ErrorKind classifies a domain error for propagation policy purposes.
// Validation and not-found errors are returned to the caller untouched,
// conflict errors are retryable with a fresh snapshot, and integrity
// errors indicate corrupted ledger data that must never be auto-corrected.
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION"
	KindConflict   ErrorKind = "CONFLICT"
	KindIntegrity  ErrorKind = "INTEGRITY"
	KindNotFound   ErrorKind = "NOT_FOUND"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewValidationError creates a caller-correctable validation error
func NewValidationError(code, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: message}
}

// NewConflictError creates a transient, retryable concurrency error
func NewConflictError(code, message string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: code, Message: message}
}

// NewIntegrityError creates a fatal data-integrity error.
// Integrity errors abort the transaction and are surfaced distinctly from
// validation errors; the engine never repairs the underlying data itself.
func NewIntegrityError(code, message string) *DomainError {
	return &DomainError{Kind: KindIntegrity, Code: code, Message: message}
}

// NewNotFoundError creates a not-found error for an unknown entity id
func NewNotFoundError(code, message string) *DomainError {
	return &DomainError{Kind: KindNotFound, Code: code, Message: message}
}

// Common domain errors
var (
	ErrNotFound            = NewNotFoundError("NOT_FOUND", "Resource not found")
	ErrConcurrencyConflict = NewConflictError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidInput        = NewValidationError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState        = NewValidationError("INVALID_STATE", "Operation not allowed in current state")
)

// kindOf extracts the ErrorKind from an error chain, or "" if it is not a DomainError
func kindOf(err error) ErrorKind {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return ""
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return kindOf(err) == KindValidation
}

// IsConflict reports whether err is a retryable concurrency conflict
func IsConflict(err error) bool {
	return kindOf(err) == KindConflict
}

// IsIntegrity reports whether err is a fatal data-integrity error
func IsIntegrity(err error) bool {
	return kindOf(err) == KindIntegrity
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool {
	return kindOf(err) == KindNotFound
}

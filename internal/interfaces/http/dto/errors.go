package dto

import (
	"net/http"
	"strings"

	"github.com/tiffin/backend/internal/domain/shared"
)

// General error codes used by the HTTP layer itself
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes absent from the map fall back to their error kind.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeNotFound:   http.StatusNotFound,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeInternal:   http.StatusInternalServerError,

	// Optimistic locking
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Billing state machine
	"IMMUTABLE_BILLING": http.StatusUnprocessableEntity,
	"INVALID_STATE":     http.StatusUnprocessableEntity,

	// Allocation rules
	"OVER_ALLOCATION":     http.StatusUnprocessableEntity,
	"EXCEEDS_BALANCE_DUE": http.StatusUnprocessableEntity,
	"INSUFFICIENT_CREDIT": http.StatusUnprocessableEntity,

	// Ledger integrity
	"CREDIT_ALREADY_CONSUMED": http.StatusConflict,

	// Input errors
	"INVALID_INPUT": http.StatusBadRequest,
}

// kindHTTPStatus maps an error kind to its default HTTP status
var kindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation: http.StatusBadRequest,
	shared.KindConflict:   http.StatusConflict,
	shared.KindIntegrity:  http.StatusConflict,
	shared.KindNotFound:   http.StatusNotFound,
}

// HTTPStatusFor returns the HTTP status code for a domain error:
// explicit code mapping first, then code-family prefix, then error kind.
func HTTPStatusFor(err *shared.DomainError) int {
	if status, ok := errorCodeHTTPStatus[err.Code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(err.Code, "VALIDATION_"):
		return http.StatusBadRequest
	case strings.HasPrefix(err.Code, "INTEGRITY_"):
		return http.StatusConflict
	}
	if status, ok := kindHTTPStatus[err.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tiffin/backend/internal/domain/shared"
)

func TestHTTPStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  *shared.DomainError
		want int
	}{
		{
			name: "not found",
			err:  shared.NewNotFoundError("NOT_FOUND", "payment not found"),
			want: http.StatusNotFound,
		},
		{
			name: "concurrency conflict",
			err:  shared.NewConflictError("CONCURRENCY_CONFLICT", "modified by another process"),
			want: http.StatusConflict,
		},
		{
			name: "over allocation is unprocessable",
			err:  shared.NewValidationError("OVER_ALLOCATION", "allocations exceed payment"),
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "immutable billing is unprocessable",
			err:  shared.NewValidationError("IMMUTABLE_BILLING", "billing is finalized"),
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "validation family is bad request",
			err:  shared.NewValidationError("VALIDATION_CUSTOMER_REQUIRED", "customer required"),
			want: http.StatusBadRequest,
		},
		{
			name: "integrity family is conflict",
			err:  shared.NewIntegrityError("INTEGRITY_APPLICABLE_DAYS", "day counts disagree"),
			want: http.StatusConflict,
		},
		{
			name: "consumed credit is conflict",
			err:  shared.NewIntegrityError("CREDIT_ALREADY_CONSUMED", "credit partially used"),
			want: http.StatusConflict,
		},
		{
			name: "unknown validation code falls back to kind",
			err:  shared.NewValidationError("SOMETHING_ELSE", "nope"),
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFor(tt.err))
		})
	}
}

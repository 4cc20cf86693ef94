package middleware

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	require.NotNil(t, v)
}

func TestBillingMonthValidation(t *testing.T) {
	SetupValidator()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	type request struct {
		BillingMonth string `validate:"billing_month"`
	}

	assert.NoError(t, v.Struct(request{BillingMonth: "2025-01"}))
	assert.Error(t, v.Struct(request{BillingMonth: "2025-13"}))
	assert.Error(t, v.Struct(request{BillingMonth: "January 2025"}))
	assert.Error(t, v.Struct(request{BillingMonth: "2025-1"}))
}

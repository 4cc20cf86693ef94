package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiffin/backend/internal/domain/shared"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
)

func testBreakdown(total float64) *BillingBreakdown {
	return &BillingBreakdown{
		DeliveredCount: 20,
		AbsentCount:    2,
		ExtraCount:     1,
		ApplicableDays: 23,
		TotalDays:      30,
		PerTiffinPrice: valueobject.NewMoneyCADFromFloat(10),
		BaseAmount:     valueobject.NewMoneyCADFromFloat(total - 10),
		ExtraAmount:    valueobject.NewMoneyCADFromFloat(10),
		TotalAmount:    valueobject.NewMoneyCADFromFloat(total),
	}
}

func TestNewOrderBilling(t *testing.T) {
	month := mustMonth(t, "2025-06")

	t.Run("valid", func(t *testing.T) {
		ob, err := NewOrderBilling(uuid.New(), uuid.New(), month)
		require.NoError(t, err)
		assert.Equal(t, BillingStatusCalculating, ob.Status)
		assert.Equal(t, 1, ob.GetVersion())
		assert.True(t, ob.TotalAmount.IsZero())
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := NewOrderBilling(uuid.Nil, uuid.New(), month)
		assert.Error(t, err)
	})

	t.Run("missing month", func(t *testing.T) {
		_, err := NewOrderBilling(uuid.New(), uuid.New(), valueobject.BillingMonth{})
		assert.Error(t, err)
	})
}

func TestOrderBilling_ApplyBreakdown(t *testing.T) {
	month := mustMonth(t, "2025-06")

	t.Run("overwrites while calculating", func(t *testing.T) {
		ob, err := NewOrderBilling(uuid.New(), uuid.New(), month)
		require.NoError(t, err)

		require.NoError(t, ob.ApplyBreakdown(testBreakdown(210)))
		assert.Equal(t, "210.00", ob.TotalAmount.StringFixed(2))

		require.NoError(t, ob.ApplyBreakdown(testBreakdown(230)))
		assert.Equal(t, "230.00", ob.TotalAmount.StringFixed(2))
		assert.Len(t, ob.GetDomainEvents(), 2)
	})

	t.Run("rejected once finalized", func(t *testing.T) {
		ob, err := NewOrderBilling(uuid.New(), uuid.New(), month)
		require.NoError(t, err)
		require.NoError(t, ob.ApplyBreakdown(testBreakdown(210)))
		require.NoError(t, ob.Finalize())

		err = ob.ApplyBreakdown(testBreakdown(999))
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
		assert.Equal(t, "210.00", ob.TotalAmount.StringFixed(2))
	})
}

func TestOrderBilling_StateMachine(t *testing.T) {
	month := mustMonth(t, "2025-06")

	newBilling := func(t *testing.T) *OrderBilling {
		ob, err := NewOrderBilling(uuid.New(), uuid.New(), month)
		require.NoError(t, err)
		require.NoError(t, ob.ApplyBreakdown(testBreakdown(210)))
		return ob
	}

	t.Run("finalize then reopen", func(t *testing.T) {
		ob := newBilling(t)
		require.NoError(t, ob.Finalize())
		assert.Equal(t, BillingStatusFinalized, ob.Status)

		require.NoError(t, ob.Reopen())
		assert.Equal(t, BillingStatusCalculating, ob.Status)
		assert.True(t, ob.IsMutable())
	})

	t.Run("full approval path", func(t *testing.T) {
		ob := newBilling(t)
		require.NoError(t, ob.Finalize())
		require.NoError(t, ob.Approve())
		require.NoError(t, ob.MarkInvoiced())
		assert.Equal(t, BillingStatusInvoiced, ob.Status)
	})

	t.Run("cannot finalize twice", func(t *testing.T) {
		ob := newBilling(t)
		require.NoError(t, ob.Finalize())
		assert.Error(t, ob.Finalize())
	})

	t.Run("cannot reopen approved billing", func(t *testing.T) {
		ob := newBilling(t)
		require.NoError(t, ob.Finalize())
		require.NoError(t, ob.Approve())
		assert.Error(t, ob.Reopen())
	})

	t.Run("cannot approve calculating billing", func(t *testing.T) {
		ob := newBilling(t)
		assert.Error(t, ob.Approve())
	})

	t.Run("cannot invoice unapproved billing", func(t *testing.T) {
		ob := newBilling(t)
		require.NoError(t, ob.Finalize())
		assert.Error(t, ob.MarkInvoiced())
	})
}

package payment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiffin/backend/internal/domain/shared"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
)

func cad(amount float64) valueobject.Money {
	return valueobject.NewMoneyCADFromFloat(amount)
}

func testPayment(t *testing.T, amount float64) *PaymentRecord {
	t.Helper()
	p, err := NewPaymentRecord(uuid.New(), cad(amount), time.Now(), PaymentSourceInterac, "e-transfer ref")
	require.NoError(t, err)
	return p
}

func TestNewPaymentRecord(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		source  PaymentSource
		wantErr bool
	}{
		{name: "valid interac", amount: 200, source: PaymentSourceInterac},
		{name: "valid cash", amount: 50, source: PaymentSourceCash},
		{name: "zero amount for credit-only settlement", amount: 0, source: PaymentSourceCash},
		{name: "negative amount", amount: -10, source: PaymentSourceCash, wantErr: true},
		{name: "bad source", amount: 10, source: "cheque", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPaymentRecord(uuid.New(), cad(tt.amount), time.Now(), tt.source, "")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, AllocationStatusUnallocated, p.Status)
			assert.False(t, p.IsAllocated())
		})
	}
}

func TestPaymentRecord_RecordAllocations(t *testing.T) {
	t.Run("conservation holds exactly", func(t *testing.T) {
		p := testPayment(t, 300)
		a1, err := NewPaymentAllocation(p.ID, uuid.New(), cad(150), valueobject.ZeroCAD())
		require.NoError(t, err)
		a2, err := NewPaymentAllocation(p.ID, uuid.New(), cad(100), valueobject.ZeroCAD())
		require.NoError(t, err)

		require.NoError(t, p.RecordAllocations([]*PaymentAllocation{a1, a2}, false))

		assert.Equal(t, "250.00", p.TotalAllocated.StringFixed(2))
		assert.Equal(t, "50.00", p.ExcessAmount.StringFixed(2))
		assert.True(t, p.TotalAllocated.MustAdd(p.ExcessAmount).Equals(p.Amount))
		assert.Equal(t, AllocationStatusHasExcess, p.Status)
		assert.Equal(t, 0, a1.Sequence)
		assert.Equal(t, 1, a2.Sequence)
	})

	t.Run("partial when a target still has balance", func(t *testing.T) {
		p := testPayment(t, 200)
		a1, err := NewPaymentAllocation(p.ID, uuid.New(), cad(150), valueobject.ZeroCAD())
		require.NoError(t, err)
		a2, err := NewPaymentAllocation(p.ID, uuid.New(), cad(50), valueobject.ZeroCAD())
		require.NoError(t, err)

		require.NoError(t, p.RecordAllocations([]*PaymentAllocation{a1, a2}, true))

		assert.Equal(t, AllocationStatusPartial, p.Status)
		assert.True(t, p.ExcessAmount.IsZero())
	})

	t.Run("fully allocated when every target is paid", func(t *testing.T) {
		p := testPayment(t, 250)
		a1, err := NewPaymentAllocation(p.ID, uuid.New(), cad(150), valueobject.ZeroCAD())
		require.NoError(t, err)
		a2, err := NewPaymentAllocation(p.ID, uuid.New(), cad(100), valueobject.ZeroCAD())
		require.NoError(t, err)

		require.NoError(t, p.RecordAllocations([]*PaymentAllocation{a1, a2}, false))
		assert.Equal(t, AllocationStatusFullyAllocated, p.Status)
	})

	t.Run("over-allocation rejected", func(t *testing.T) {
		p := testPayment(t, 100)
		a, err := NewPaymentAllocation(p.ID, uuid.New(), cad(150), valueobject.ZeroCAD())
		require.NoError(t, err)

		err = p.RecordAllocations([]*PaymentAllocation{a}, false)
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
		assert.False(t, p.IsAllocated())
	})

	t.Run("double allocation rejected", func(t *testing.T) {
		p := testPayment(t, 100)
		a, err := NewPaymentAllocation(p.ID, uuid.New(), cad(100), valueobject.ZeroCAD())
		require.NoError(t, err)
		require.NoError(t, p.RecordAllocations([]*PaymentAllocation{a}, false))

		b, err := NewPaymentAllocation(p.ID, uuid.New(), cad(50), valueobject.ZeroCAD())
		require.NoError(t, err)
		assert.Error(t, p.RecordAllocations([]*PaymentAllocation{b}, false))
	})

	t.Run("foreign allocation rejected", func(t *testing.T) {
		p := testPayment(t, 100)
		a, err := NewPaymentAllocation(uuid.New(), uuid.New(), cad(50), valueobject.ZeroCAD())
		require.NoError(t, err)
		assert.Error(t, p.RecordAllocations([]*PaymentAllocation{a}, false))
	})

	t.Run("credit applied is summed across allocations", func(t *testing.T) {
		p := testPayment(t, 100)
		a1, err := NewPaymentAllocation(p.ID, uuid.New(), cad(60), cad(10))
		require.NoError(t, err)
		a2, err := NewPaymentAllocation(p.ID, uuid.New(), cad(40), cad(15))
		require.NoError(t, err)

		require.NoError(t, p.RecordAllocations([]*PaymentAllocation{a1, a2}, false))
		assert.Equal(t, "25.00", p.CreditApplied().StringFixed(2))
	})
}

func TestNewPaymentAllocation(t *testing.T) {
	t.Run("credit-only allocation allowed", func(t *testing.T) {
		a, err := NewPaymentAllocation(uuid.New(), uuid.New(), valueobject.ZeroCAD(), cad(40))
		require.NoError(t, err)
		assert.True(t, a.AllocatedAmount.IsZero())
		assert.Equal(t, "40.00", a.CreditAmountUsed.StringFixed(2))
	})

	t.Run("zero allocation rejected", func(t *testing.T) {
		_, err := NewPaymentAllocation(uuid.New(), uuid.New(), valueobject.ZeroCAD(), valueobject.ZeroCAD())
		assert.Error(t, err)
	})

	t.Run("negative amount rejected", func(t *testing.T) {
		_, err := NewPaymentAllocation(uuid.New(), uuid.New(), cad(-5), valueobject.ZeroCAD())
		assert.Error(t, err)
	})
}

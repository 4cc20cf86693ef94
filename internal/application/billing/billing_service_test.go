package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tiffin/backend/internal/domain/billing"
	"github.com/tiffin/backend/internal/domain/shared"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
)

type billingFixture struct {
	service     *Service
	orders      *memoryOrderRepo
	calendar    *memoryCalendarRepo
	billings    *memoryOrderBillingRepo
	invoices    *memoryCombinedInvoiceRepo
	customerID  uuid.UUID
	order       *billing.Order
	billingJune string
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()

	orders := newMemoryOrderRepo()
	calendar := &memoryCalendarRepo{}
	billings := newMemoryOrderBillingRepo()
	invoices := newMemoryCombinedInvoiceRepo()

	scope := &NoOpTransactionScope{Repos: TransactionRepositories{
		OrderBillingRepo:    billings,
		CombinedInvoiceRepo: invoices,
	}}
	service := NewService(orders, calendar, scope, zap.NewNop())

	customerID := uuid.New()
	order, err := billing.NewOrder(customerID, "Monthly Plan",
		valueobject.NewMoneyCADFromFloat(300), false,
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, orders.Save(context.Background(), order))

	return &billingFixture{
		service:     service,
		orders:      orders,
		calendar:    calendar,
		billings:    billings,
		invoices:    invoices,
		customerID:  customerID,
		order:       order,
		billingJune: "2025-06",
	}
}

func (f *billingFixture) addEntries(t *testing.T, order *billing.Order, monthStr string, delivered, absent, extra int) {
	t.Helper()
	month, err := valueobject.ParseBillingMonth(monthStr)
	require.NoError(t, err)
	day := month.Start()
	add := func(n int, status billing.DeliveryStatus) {
		for i := 0; i < n; i++ {
			e, err := billing.NewCalendarEntry(order.ID, day, status)
			require.NoError(t, err)
			f.calendar.entries = append(f.calendar.entries, e)
			day = day.AddDate(0, 0, 1)
		}
	}
	add(delivered, billing.DeliveryStatusDelivered)
	add(absent, billing.DeliveryStatusAbsent)
	add(extra, billing.DeliveryStatusExtra)
}

func TestService_ComputeOrderBilling(t *testing.T) {
	ctx := context.Background()

	t.Run("computes and creates snapshot", func(t *testing.T) {
		f := newBillingFixture(t)
		f.addEntries(t, f.order, f.billingJune, 25, 3, 2)

		result, err := f.service.ComputeOrderBilling(ctx, ComputeOrderBillingRequest{
			OrderID:      f.order.ID,
			BillingMonth: f.billingJune,
		})
		require.NoError(t, err)

		// $300 over 30 days: 25 - 3 + 2 tiffins at $10
		assert.Equal(t, "240.00", result.TotalAmount)
		assert.Equal(t, billing.BillingStatusCalculating, result.Status)
		assert.Equal(t, 30, result.ApplicableDays)
	})

	t.Run("recompute is idempotent", func(t *testing.T) {
		f := newBillingFixture(t)
		f.addEntries(t, f.order, f.billingJune, 25, 3, 2)
		req := ComputeOrderBillingRequest{OrderID: f.order.ID, BillingMonth: f.billingJune}

		first, err := f.service.ComputeOrderBilling(ctx, req)
		require.NoError(t, err)
		second, err := f.service.ComputeOrderBilling(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.TotalAmount, second.TotalAmount)
		assert.Len(t, f.billings.billings, 1)
	})

	t.Run("recompute after finalize rejected", func(t *testing.T) {
		f := newBillingFixture(t)
		f.addEntries(t, f.order, f.billingJune, 25, 3, 2)
		req := ComputeOrderBillingRequest{OrderID: f.order.ID, BillingMonth: f.billingJune}

		result, err := f.service.ComputeOrderBilling(ctx, req)
		require.NoError(t, err)
		_, err = f.service.FinalizeBilling(ctx, result.ID)
		require.NoError(t, err)

		_, err = f.service.ComputeOrderBilling(ctx, req)
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("invalid month rejected", func(t *testing.T) {
		f := newBillingFixture(t)
		_, err := f.service.ComputeOrderBilling(ctx, ComputeOrderBillingRequest{
			OrderID:      f.order.ID,
			BillingMonth: "June 2025",
		})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("unknown order not found", func(t *testing.T) {
		f := newBillingFixture(t)
		_, err := f.service.ComputeOrderBilling(ctx, ComputeOrderBillingRequest{
			OrderID:      uuid.New(),
			BillingMonth: f.billingJune,
		})
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("combined invoice tracks constituents", func(t *testing.T) {
		f := newBillingFixture(t)
		f.addEntries(t, f.order, f.billingJune, 10, 0, 0)

		_, err := f.service.ComputeOrderBilling(ctx, ComputeOrderBillingRequest{
			OrderID:      f.order.ID,
			BillingMonth: f.billingJune,
		})
		require.NoError(t, err)

		month, _ := valueobject.ParseBillingMonth(f.billingJune)
		ci, err := f.invoices.FindByCustomerAndMonth(ctx, f.customerID, month)
		require.NoError(t, err)
		assert.Equal(t, "100.00", ci.TotalAmount.StringFixed(2))
		assert.False(t, ci.CanApprove)
	})
}

func TestService_FinalizeAndReopen(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*billingFixture, *OrderBillingResult) {
		f := newBillingFixture(t)
		f.addEntries(t, f.order, f.billingJune, 25, 3, 2)
		result, err := f.service.ComputeOrderBilling(ctx, ComputeOrderBillingRequest{
			OrderID:      f.order.ID,
			BillingMonth: f.billingJune,
		})
		require.NoError(t, err)
		return f, result
	}

	t.Run("finalize freezes and enables approval", func(t *testing.T) {
		f, result := setup(t)

		finalized, err := f.service.FinalizeBilling(ctx, result.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.BillingStatusFinalized, finalized.Status)

		month, _ := valueobject.ParseBillingMonth(f.billingJune)
		ci, err := f.invoices.FindByCustomerAndMonth(ctx, f.customerID, month)
		require.NoError(t, err)
		assert.True(t, ci.CanApprove)
	})

	t.Run("reopen reverts to calculating", func(t *testing.T) {
		f, result := setup(t)
		_, err := f.service.FinalizeBilling(ctx, result.ID)
		require.NoError(t, err)

		reopened, err := f.service.ReopenBilling(ctx, result.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.BillingStatusCalculating, reopened.Status)
	})

	t.Run("reopen blocked once combined invoice finalized", func(t *testing.T) {
		f, result := setup(t)
		_, err := f.service.FinalizeBilling(ctx, result.ID)
		require.NoError(t, err)

		ciResult, err := f.service.ComputeCombinedInvoice(ctx, ComputeCombinedInvoiceRequest{
			CustomerID:   f.customerID,
			BillingMonth: f.billingJune,
		})
		require.NoError(t, err)
		_, err = f.service.FinalizeCombinedInvoice(ctx, ciResult.ID)
		require.NoError(t, err)

		_, err = f.service.ReopenBilling(ctx, result.ID)
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})
}

func TestService_CombinedInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates multiple orders", func(t *testing.T) {
		f := newBillingFixture(t)
		second, err := billing.NewOrder(f.customerID, "Second Plan",
			valueobject.NewMoneyCADFromFloat(150), false,
			time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.NoError(t, f.orders.Save(ctx, second))

		f.addEntries(t, f.order, f.billingJune, 30, 0, 0) // $300
		f.addEntries(t, second, f.billingJune, 30, 0, 0)  // $150

		for _, orderID := range []uuid.UUID{f.order.ID, second.ID} {
			result, err := f.service.ComputeOrderBilling(ctx, ComputeOrderBillingRequest{
				OrderID:      orderID,
				BillingMonth: f.billingJune,
			})
			require.NoError(t, err)
			_, err = f.service.FinalizeBilling(ctx, result.ID)
			require.NoError(t, err)
		}

		ciResult, err := f.service.ComputeCombinedInvoice(ctx, ComputeCombinedInvoiceRequest{
			CustomerID:   f.customerID,
			BillingMonth: f.billingJune,
		})
		require.NoError(t, err)
		assert.Equal(t, "450.00", ciResult.TotalAmount)
		assert.True(t, ciResult.CanApprove)
		assert.Len(t, ciResult.OrderBillingIDs, 2)
	})

	t.Run("finalize moves constituents to invoiced", func(t *testing.T) {
		f := newBillingFixture(t)
		f.addEntries(t, f.order, f.billingJune, 30, 0, 0)

		obResult, err := f.service.ComputeOrderBilling(ctx, ComputeOrderBillingRequest{
			OrderID:      f.order.ID,
			BillingMonth: f.billingJune,
		})
		require.NoError(t, err)
		_, err = f.service.FinalizeBilling(ctx, obResult.ID)
		require.NoError(t, err)

		ciResult, err := f.service.ComputeCombinedInvoice(ctx, ComputeCombinedInvoiceRequest{
			CustomerID:   f.customerID,
			BillingMonth: f.billingJune,
		})
		require.NoError(t, err)

		finalized, err := f.service.FinalizeCombinedInvoice(ctx, ciResult.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusFinalized, finalized.Status)

		ob, err := f.billings.FindByID(ctx, obResult.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.BillingStatusInvoiced, ob.Status)
	})

	t.Run("finalize blocked while constituents are calculating", func(t *testing.T) {
		f := newBillingFixture(t)
		f.addEntries(t, f.order, f.billingJune, 30, 0, 0)

		_, err := f.service.ComputeOrderBilling(ctx, ComputeOrderBillingRequest{
			OrderID:      f.order.ID,
			BillingMonth: f.billingJune,
		})
		require.NoError(t, err)

		ciResult, err := f.service.ComputeCombinedInvoice(ctx, ComputeCombinedInvoiceRequest{
			CustomerID:   f.customerID,
			BillingMonth: f.billingJune,
		})
		require.NoError(t, err)
		assert.False(t, ciResult.CanApprove)

		_, err = f.service.FinalizeCombinedInvoice(ctx, ciResult.ID)
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("unpaid list ordered oldest month first", func(t *testing.T) {
		f := newBillingFixture(t)
		for _, monthStr := range []string{"2025-02", "2025-01"} {
			f.addEntries(t, f.order, monthStr, 10, 0, 0)
			obResult, err := f.service.ComputeOrderBilling(ctx, ComputeOrderBillingRequest{
				OrderID:      f.order.ID,
				BillingMonth: monthStr,
			})
			require.NoError(t, err)
			_, err = f.service.FinalizeBilling(ctx, obResult.ID)
			require.NoError(t, err)

			ciResult, err := f.service.ComputeCombinedInvoice(ctx, ComputeCombinedInvoiceRequest{
				CustomerID:   f.customerID,
				BillingMonth: monthStr,
			})
			require.NoError(t, err)
			_, err = f.service.FinalizeCombinedInvoice(ctx, ciResult.ID)
			require.NoError(t, err)
		}

		unpaid, err := f.service.ListUnpaidInvoices(ctx, f.customerID)
		require.NoError(t, err)
		require.Len(t, unpaid, 2)
		assert.Equal(t, "2025-01", unpaid[0].BillingMonth)
		assert.Equal(t, "2025-02", unpaid[1].BillingMonth)
	})
}

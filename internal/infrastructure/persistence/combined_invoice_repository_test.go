package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tiffin/backend/internal/domain/billing"
	"github.com/tiffin/backend/internal/domain/shared"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
	"github.com/tiffin/backend/internal/infrastructure/persistence/models"
)

func setupInvoiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CombinedInvoiceModel{}))
	return db
}

func cadAmount(s string) valueobject.Money {
	return valueobject.NewMoneyCAD(decimal.RequireFromString(s))
}

func month(t *testing.T, s string) valueobject.BillingMonth {
	t.Helper()
	m, err := valueobject.ParseBillingMonth(s)
	require.NoError(t, err)
	return m
}

// payableInvoice builds a finalized invoice row with the given total
func payableInvoice(t *testing.T, customerID uuid.UUID, m valueobject.BillingMonth, total string) *billing.CombinedInvoice {
	t.Helper()
	ci, err := billing.NewCombinedInvoice(customerID, m)
	require.NoError(t, err)
	ci.OrderBillingIDs = []uuid.UUID{uuid.New()}
	ci.TotalAmount = cadAmount(total)
	ci.CanApprove = true
	ci.Status = billing.InvoiceStatusFinalized
	return ci
}

func TestGormCombinedInvoiceRepository_SaveAndFind(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormCombinedInvoiceRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	jan := month(t, "2025-01")
	ci := payableInvoice(t, customerID, jan, "240")
	require.NoError(t, repo.Save(ctx, ci))

	t.Run("round trips by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, ci.ID)
		require.NoError(t, err)
		assert.Equal(t, ci.ID, found.ID)
		assert.Equal(t, jan, found.BillingMonth)
		assert.Equal(t, ci.OrderBillingIDs, found.OrderBillingIDs)
		assert.Equal(t, "240.00", found.TotalAmount.StringFixed(2))
		assert.Equal(t, billing.InvoiceStatusFinalized, found.Status)
	})

	t.Run("finds by customer and month", func(t *testing.T) {
		found, err := repo.FindByCustomerAndMonth(ctx, customerID, jan)
		require.NoError(t, err)
		assert.Equal(t, ci.ID, found.ID)
	})

	t.Run("not found for unknown customer", func(t *testing.T) {
		_, err := repo.FindByCustomerAndMonth(ctx, uuid.New(), jan)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestGormCombinedInvoiceRepository_ListUnpaidByCustomer(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormCombinedInvoiceRepository(db)
	ctx := context.Background()

	customerID := uuid.New()

	feb := payableInvoice(t, customerID, month(t, "2025-02"), "150")
	jan := payableInvoice(t, customerID, month(t, "2025-01"), "200")
	require.NoError(t, repo.Save(ctx, feb))
	require.NoError(t, repo.Save(ctx, jan))

	// Settled invoice must not appear
	paid := payableInvoice(t, customerID, month(t, "2024-12"), "100")
	paid.AmountPaid = cadAmount("100")
	paid.Status = billing.InvoiceStatusPaid
	require.NoError(t, repo.Save(ctx, paid))

	// Pending invoice must not appear
	pending := payableInvoice(t, customerID, month(t, "2025-03"), "50")
	pending.Status = billing.InvoiceStatusPending
	require.NoError(t, repo.Save(ctx, pending))

	// Other customers must not appear
	require.NoError(t, repo.Save(ctx, payableInvoice(t, uuid.New(), month(t, "2025-01"), "75")))

	unpaid, err := repo.ListUnpaidByCustomer(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, unpaid, 2)
	assert.Equal(t, jan.ID, unpaid[0].ID)
	assert.Equal(t, feb.ID, unpaid[1].ID)
}

func TestGormCombinedInvoiceRepository_SaveWithLock(t *testing.T) {
	db := setupInvoiceTestDB(t)
	repo := NewGormCombinedInvoiceRepository(db)
	ctx := context.Background()

	ci := payableInvoice(t, uuid.New(), month(t, "2025-01"), "200")
	require.NoError(t, repo.Save(ctx, ci))

	t.Run("bumps version on success", func(t *testing.T) {
		before := ci.Version
		ci.AmountPaid = cadAmount("50")
		require.NoError(t, repo.SaveWithLock(ctx, ci, before))
		assert.Equal(t, before+1, ci.Version)

		found, err := repo.FindByID(ctx, ci.ID)
		require.NoError(t, err)
		assert.Equal(t, before+1, found.Version)
		assert.Equal(t, "50.00", found.AmountPaid.StringFixed(2))
	})

	t.Run("rejects stale version", func(t *testing.T) {
		err := repo.SaveWithLock(ctx, ci, ci.Version-1)
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
	})
}

package persistence

import (
	"context"

	"gorm.io/gorm"

	appbilling "github.com/tiffin/backend/internal/application/billing"
)

// GormBillingTransactionScope implements the billing TransactionScope using
// GORM transactions.
type GormBillingTransactionScope struct {
	db *gorm.DB
}

// NewGormBillingTransactionScope creates a new GormBillingTransactionScope
func NewGormBillingTransactionScope(db *gorm.DB) *GormBillingTransactionScope {
	return &GormBillingTransactionScope{db: db}
}

// Execute runs fn within a database transaction against repositories bound
// to that transaction.
func (s *GormBillingTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(appbilling.TransactionRepositories{
			OrderBillingRepo:    NewGormOrderBillingRepository(tx),
			CombinedInvoiceRepo: NewGormCombinedInvoiceRepository(tx),
		})
	})
}

// Ensure GormBillingTransactionScope implements TransactionScope
var _ appbilling.TransactionScope = (*GormBillingTransactionScope)(nil)

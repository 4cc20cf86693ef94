package persistence

import (
	"context"

	"gorm.io/gorm"

	apppayment "github.com/tiffin/backend/internal/application/payment"
)

// GormPaymentTransactionScope implements the payment TransactionScope using
// GORM transactions. Allocation commits, payment deletions and refund
// approvals run all-or-nothing inside one database transaction.
type GormPaymentTransactionScope struct {
	db *gorm.DB
}

// NewGormPaymentTransactionScope creates a new GormPaymentTransactionScope
func NewGormPaymentTransactionScope(db *gorm.DB) *GormPaymentTransactionScope {
	return &GormPaymentTransactionScope{db: db}
}

// Execute runs fn within a database transaction against repositories bound
// to that transaction.
func (s *GormPaymentTransactionScope) Execute(ctx context.Context, fn func(repos apppayment.TransactionRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(apppayment.TransactionRepositories{
			InvoiceRepo:     NewGormCombinedInvoiceRepository(tx),
			PaymentRepo:     NewGormPaymentRecordRepository(tx),
			CreditRepo:      NewGormCustomerCreditRepository(tx),
			CreditUsageRepo: NewGormCreditUsageRepository(tx),
			RefundRepo:      NewGormRefundRequestRepository(tx),
		})
	})
}

// Ensure GormPaymentTransactionScope implements TransactionScope
var _ apppayment.TransactionScope = (*GormPaymentTransactionScope)(nil)

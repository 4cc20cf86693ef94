package payment

import (
	"context"

	"github.com/tiffin/backend/internal/domain/billing"
	"github.com/tiffin/backend/internal/domain/payment"
)

// TransactionRepositories bundles the repositories that participate in
// one allocation or refund transaction
type TransactionRepositories struct {
	InvoiceRepo     billing.CombinedInvoiceRepository
	PaymentRepo     payment.PaymentRecordRepository
	CreditRepo      payment.CustomerCreditRepository
	CreditUsageRepo payment.CreditUsageRepository
	RefundRepo      payment.RefundRequestRepository
}

// TransactionScope executes ledger mutations atomically. Allocation
// commits, payment deletions and refund approvals are all-or-nothing:
// returning an error rolls back every row touched inside fn.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionRepositories) error) error
}

// NoOpTransactionScope executes the function without transaction
// semantics, for tests and single-statement paths.
type NoOpTransactionScope struct {
	Repos TransactionRepositories
}

// Execute runs fn against the configured repositories
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionRepositories) error) error {
	return fn(s.Repos)
}

package billing

import (
	"context"

	"github.com/tiffin/backend/internal/domain/billing"
)

// TransactionRepositories bundles the repositories that participate in
// one billing transaction
type TransactionRepositories struct {
	OrderBillingRepo    billing.OrderBillingRepository
	CombinedInvoiceRepo billing.CombinedInvoiceRepository
}

// TransactionScope executes billing mutations atomically. The function
// receives repositories bound to the transaction; returning an error
// rolls everything back.
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

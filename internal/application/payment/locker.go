package payment

import (
	"context"

	"github.com/google/uuid"
)

// CustomerLocker serializes ledger commits per customer. Two concurrent
// allocation requests for the same customer must not both observe the
// same balance-due and available-credit snapshot; the lock brackets the
// whole compute-validate-commit sequence. Optimistic version checks on
// the aggregates remain as the second line of defense.
type CustomerLocker interface {
	// Lock acquires the customer's lock and returns the release func.
	Lock(ctx context.Context, customerID uuid.UUID) (func(), error)
}

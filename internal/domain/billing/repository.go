package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/tiffin/backend/internal/domain/shared/valueobject"
)

// OrderRepository provides access to orders
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListActiveByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Order, error)
	Save(ctx context.Context, order *Order) error
}

// CalendarEntryRepository provides read access to the delivery calendar.
// The calendar is written by delivery-tracking workflows; billing only reads.
type CalendarEntryRepository interface {
	ListByOrderAndMonth(ctx context.Context, orderID uuid.UUID, month valueobject.BillingMonth) ([]*CalendarEntry, error)
}

// OrderBillingRepository provides access to per-order billing snapshots
type OrderBillingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OrderBilling, error)
	FindByOrderAndMonth(ctx context.Context, orderID uuid.UUID, month valueobject.BillingMonth) (*OrderBilling, error)
	ListByCustomerAndMonth(ctx context.Context, customerID uuid.UUID, month valueobject.BillingMonth) ([]*OrderBilling, error)
	Save(ctx context.Context, ob *OrderBilling) error
	// SaveWithLock persists with an optimistic version check and returns
	// a conflict error when the stored version has moved on.
	SaveWithLock(ctx context.Context, ob *OrderBilling, expectedVersion int) error
}

// CombinedInvoiceRepository provides access to customer-level invoices
type CombinedInvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CombinedInvoice, error)
	FindByCustomerAndMonth(ctx context.Context, customerID uuid.UUID, month valueobject.BillingMonth) (*CombinedInvoice, error)
	// ListUnpaidByCustomer returns finalized invoices with a positive
	// balance due, ordered oldest billing month first, tie-broken by
	// invoice id ascending. The payment allocator's auto-select depends
	// on this ordering.
	ListUnpaidByCustomer(ctx context.Context, customerID uuid.UUID) ([]*CombinedInvoice, error)
	Save(ctx context.Context, ci *CombinedInvoice) error
	SaveWithLock(ctx context.Context, ci *CombinedInvoice, expectedVersion int) error
}

package billing

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/tiffin/backend/internal/domain/billing"
	"github.com/tiffin/backend/internal/domain/shared"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
)

// In-memory repositories backing the service tests.

type memoryOrderRepo struct {
	orders map[uuid.UUID]*billing.Order
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{orders: make(map[uuid.UUID]*billing.Order)}
}

func (r *memoryOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Order, error) {
	if o, ok := r.orders[id]; ok {
		return o, nil
	}
	return nil, shared.NewNotFoundError("NOT_FOUND", "order not found")
}

func (r *memoryOrderRepo) ListActiveByCustomer(_ context.Context, customerID uuid.UUID) ([]*billing.Order, error) {
	var out []*billing.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID && o.Active {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memoryOrderRepo) Save(_ context.Context, o *billing.Order) error {
	r.orders[o.ID] = o
	return nil
}

type memoryCalendarRepo struct {
	entries []*billing.CalendarEntry
}

func (r *memoryCalendarRepo) ListByOrderAndMonth(_ context.Context, orderID uuid.UUID, month valueobject.BillingMonth) ([]*billing.CalendarEntry, error) {
	var out []*billing.CalendarEntry
	for _, e := range r.entries {
		if e.OrderID == orderID && month.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out, nil
}

type memoryOrderBillingRepo struct {
	billings map[uuid.UUID]*billing.OrderBilling
}

func newMemoryOrderBillingRepo() *memoryOrderBillingRepo {
	return &memoryOrderBillingRepo{billings: make(map[uuid.UUID]*billing.OrderBilling)}
}

func (r *memoryOrderBillingRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.OrderBilling, error) {
	if ob, ok := r.billings[id]; ok {
		return ob, nil
	}
	return nil, shared.NewNotFoundError("NOT_FOUND", "order billing not found")
}

func (r *memoryOrderBillingRepo) FindByOrderAndMonth(_ context.Context, orderID uuid.UUID, month valueobject.BillingMonth) (*billing.OrderBilling, error) {
	for _, ob := range r.billings {
		if ob.OrderID == orderID && ob.BillingMonth == month {
			return ob, nil
		}
	}
	return nil, shared.NewNotFoundError("NOT_FOUND", "order billing not found")
}

func (r *memoryOrderBillingRepo) ListByCustomerAndMonth(_ context.Context, customerID uuid.UUID, month valueobject.BillingMonth) ([]*billing.OrderBilling, error) {
	var out []*billing.OrderBilling
	for _, ob := range r.billings {
		if ob.CustomerID == customerID && ob.BillingMonth == month {
			out = append(out, ob)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *memoryOrderBillingRepo) Save(_ context.Context, ob *billing.OrderBilling) error {
	r.billings[ob.ID] = ob
	return nil
}

func (r *memoryOrderBillingRepo) SaveWithLock(_ context.Context, ob *billing.OrderBilling, expectedVersion int) error {
	stored, ok := r.billings[ob.ID]
	if !ok {
		return shared.NewNotFoundError("NOT_FOUND", "order billing not found")
	}
	if stored.Version != expectedVersion {
		return shared.ErrConcurrencyConflict
	}
	ob.IncrementVersion()
	r.billings[ob.ID] = ob
	return nil
}

type memoryCombinedInvoiceRepo struct {
	invoices map[uuid.UUID]*billing.CombinedInvoice
}

func newMemoryCombinedInvoiceRepo() *memoryCombinedInvoiceRepo {
	return &memoryCombinedInvoiceRepo{invoices: make(map[uuid.UUID]*billing.CombinedInvoice)}
}

func (r *memoryCombinedInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.CombinedInvoice, error) {
	if ci, ok := r.invoices[id]; ok {
		return ci, nil
	}
	return nil, shared.NewNotFoundError("NOT_FOUND", "combined invoice not found")
}

func (r *memoryCombinedInvoiceRepo) FindByCustomerAndMonth(_ context.Context, customerID uuid.UUID, month valueobject.BillingMonth) (*billing.CombinedInvoice, error) {
	for _, ci := range r.invoices {
		if ci.CustomerID == customerID && ci.BillingMonth == month {
			return ci, nil
		}
	}
	return nil, shared.NewNotFoundError("NOT_FOUND", "combined invoice not found")
}

func (r *memoryCombinedInvoiceRepo) ListUnpaidByCustomer(_ context.Context, customerID uuid.UUID) ([]*billing.CombinedInvoice, error) {
	var out []*billing.CombinedInvoice
	for _, ci := range r.invoices {
		if ci.CustomerID == customerID && ci.Status == billing.InvoiceStatusFinalized && ci.BalanceDue().IsPositive() {
			out = append(out, ci)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BillingMonth != out[j].BillingMonth {
			return out[i].BillingMonth.Before(out[j].BillingMonth)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *memoryCombinedInvoiceRepo) Save(_ context.Context, ci *billing.CombinedInvoice) error {
	r.invoices[ci.ID] = ci
	return nil
}

func (r *memoryCombinedInvoiceRepo) SaveWithLock(_ context.Context, ci *billing.CombinedInvoice, expectedVersion int) error {
	stored, ok := r.invoices[ci.ID]
	if !ok {
		return shared.NewNotFoundError("NOT_FOUND", "combined invoice not found")
	}
	if stored.Version != expectedVersion {
		return shared.ErrConcurrencyConflict
	}
	ci.IncrementVersion()
	r.invoices[ci.ID] = ci
	return nil
}

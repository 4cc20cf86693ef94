package payment

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/tiffin/backend/internal/domain/billing"
	"github.com/tiffin/backend/internal/domain/payment"
	"github.com/tiffin/backend/internal/domain/shared"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
)

// In-memory repositories and locker backing the service tests.

type noopLocker struct{}

func (noopLocker) Lock(context.Context, uuid.UUID) (func(), error) {
	return func() {}, nil
}

type memoryInvoiceRepo struct {
	invoices map[uuid.UUID]*billing.CombinedInvoice
}

func newMemoryInvoiceRepo() *memoryInvoiceRepo {
	return &memoryInvoiceRepo{invoices: make(map[uuid.UUID]*billing.CombinedInvoice)}
}

func (r *memoryInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.CombinedInvoice, error) {
	if ci, ok := r.invoices[id]; ok {
		return ci, nil
	}
	return nil, shared.NewNotFoundError("NOT_FOUND", "combined invoice not found")
}

func (r *memoryInvoiceRepo) FindByCustomerAndMonth(_ context.Context, customerID uuid.UUID, month valueobject.BillingMonth) (*billing.CombinedInvoice, error) {
	for _, ci := range r.invoices {
		if ci.CustomerID == customerID && ci.BillingMonth == month {
			return ci, nil
		}
	}
	return nil, shared.NewNotFoundError("NOT_FOUND", "combined invoice not found")
}

func (r *memoryInvoiceRepo) ListUnpaidByCustomer(_ context.Context, customerID uuid.UUID) ([]*billing.CombinedInvoice, error) {
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

func (r *memoryInvoiceRepo) Save(_ context.Context, ci *billing.CombinedInvoice) error {
	r.invoices[ci.ID] = ci
	return nil
}

func (r *memoryInvoiceRepo) SaveWithLock(_ context.Context, ci *billing.CombinedInvoice, expectedVersion int) error {
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

type memoryPaymentRepo struct {
	payments       map[uuid.UUID]*payment.PaymentRecord
	deletedReasons map[uuid.UUID]string
}

func newMemoryPaymentRepo() *memoryPaymentRepo {
	return &memoryPaymentRepo{
		payments:       make(map[uuid.UUID]*payment.PaymentRecord),
		deletedReasons: make(map[uuid.UUID]string),
	}
}

func (r *memoryPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*payment.PaymentRecord, error) {
	if p, ok := r.payments[id]; ok {
		return p, nil
	}
	return nil, shared.NewNotFoundError("NOT_FOUND", "payment not found")
}

func (r *memoryPaymentRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]*payment.PaymentRecord, error) {
	var out []*payment.PaymentRecord
	for _, p := range r.payments {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryPaymentRepo) Save(_ context.Context, p *payment.PaymentRecord) error {
	r.payments[p.ID] = p
	return nil
}

func (r *memoryPaymentRepo) SaveWithLock(_ context.Context, p *payment.PaymentRecord, expectedVersion int) error {
	stored, ok := r.payments[p.ID]
	if !ok {
		return shared.NewNotFoundError("NOT_FOUND", "payment not found")
	}
	if stored.Version != expectedVersion {
		return shared.ErrConcurrencyConflict
	}
	p.IncrementVersion()
	r.payments[p.ID] = p
	return nil
}

func (r *memoryPaymentRepo) Delete(_ context.Context, p *payment.PaymentRecord, reason string) error {
	if _, ok := r.payments[p.ID]; !ok {
		return shared.NewNotFoundError("NOT_FOUND", "payment not found")
	}
	delete(r.payments, p.ID)
	r.deletedReasons[p.ID] = reason
	return nil
}

type memoryCreditRepo struct {
	credits map[uuid.UUID]*payment.CustomerCredit
}

func newMemoryCreditRepo() *memoryCreditRepo {
	return &memoryCreditRepo{credits: make(map[uuid.UUID]*payment.CustomerCredit)}
}

func (r *memoryCreditRepo) FindByID(_ context.Context, id uuid.UUID) (*payment.CustomerCredit, error) {
	if c, ok := r.credits[id]; ok {
		return c, nil
	}
	return nil, shared.NewNotFoundError("NOT_FOUND", "credit not found")
}

func (r *memoryCreditRepo) sortedByAge() []*payment.CustomerCredit {
	out := make([]*payment.CustomerCredit, 0, len(r.credits))
	for _, c := range r.credits {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (r *memoryCreditRepo) ListAvailableByCustomer(_ context.Context, customerID uuid.UUID) ([]*payment.CustomerCredit, error) {
	var out []*payment.CustomerCredit
	for _, c := range r.sortedByAge() {
		if c.CustomerID == customerID && c.IsAvailable() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryCreditRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]*payment.CustomerCredit, error) {
	var out []*payment.CustomerCredit
	for _, c := range r.sortedByAge() {
		if c.CustomerID == customerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryCreditRepo) FindBySourcePayment(_ context.Context, paymentID uuid.UUID) (*payment.CustomerCredit, error) {
	for _, c := range r.credits {
		if c.SourcePaymentID != nil && *c.SourcePaymentID == paymentID {
			return c, nil
		}
	}
	return nil, shared.NewNotFoundError("NOT_FOUND", "credit not found")
}

func (r *memoryCreditRepo) Save(_ context.Context, c *payment.CustomerCredit) error {
	r.credits[c.ID] = c
	return nil
}

func (r *memoryCreditRepo) SaveWithLock(_ context.Context, c *payment.CustomerCredit, expectedVersion int) error {
	stored, ok := r.credits[c.ID]
	if !ok {
		return shared.NewNotFoundError("NOT_FOUND", "credit not found")
	}
	if stored.Version != expectedVersion {
		return shared.ErrConcurrencyConflict
	}
	c.IncrementVersion()
	r.credits[c.ID] = c
	return nil
}

func (r *memoryCreditRepo) Delete(_ context.Context, c *payment.CustomerCredit) error {
	delete(r.credits, c.ID)
	return nil
}

type memoryCreditUsageRepo struct {
	usages []*payment.CreditUsage
}

func (r *memoryCreditUsageRepo) ListByCredit(_ context.Context, creditID uuid.UUID) ([]*payment.CreditUsage, error) {
	var out []*payment.CreditUsage
	for _, u := range r.usages {
		if u.CreditID == creditID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memoryCreditUsageRepo) ListByPayment(_ context.Context, paymentID uuid.UUID) ([]*payment.CreditUsage, error) {
	var out []*payment.CreditUsage
	for _, u := range r.usages {
		if u.PaymentID == paymentID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memoryCreditUsageRepo) Save(_ context.Context, u *payment.CreditUsage) error {
	r.usages = append(r.usages, u)
	return nil
}

func (r *memoryCreditUsageRepo) DeleteByPayment(_ context.Context, paymentID uuid.UUID) error {
	kept := r.usages[:0]
	for _, u := range r.usages {
		if u.PaymentID != paymentID {
			kept = append(kept, u)
		}
	}
	r.usages = kept
	return nil
}

type memoryRefundRepo struct {
	refunds map[uuid.UUID]*payment.RefundRequest
}

func newMemoryRefundRepo() *memoryRefundRepo {
	return &memoryRefundRepo{refunds: make(map[uuid.UUID]*payment.RefundRequest)}
}

func (r *memoryRefundRepo) FindByID(_ context.Context, id uuid.UUID) (*payment.RefundRequest, error) {
	if rr, ok := r.refunds[id]; ok {
		return rr, nil
	}
	return nil, shared.NewNotFoundError("NOT_FOUND", "refund request not found")
}

func (r *memoryRefundRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]*payment.RefundRequest, error) {
	var out []*payment.RefundRequest
	for _, rr := range r.refunds {
		if rr.CustomerID == customerID {
			out = append(out, rr)
		}
	}
	return out, nil
}

func (r *memoryRefundRepo) Save(_ context.Context, rr *payment.RefundRequest) error {
	r.refunds[rr.ID] = rr
	return nil
}

func (r *memoryRefundRepo) SaveWithLock(_ context.Context, rr *payment.RefundRequest, expectedVersion int) error {
	stored, ok := r.refunds[rr.ID]
	if !ok {
		return shared.NewNotFoundError("NOT_FOUND", "refund request not found")
	}
	if stored.Version != expectedVersion {
		return shared.ErrConcurrencyConflict
	}
	rr.IncrementVersion()
	r.refunds[rr.ID] = rr
	return nil
}

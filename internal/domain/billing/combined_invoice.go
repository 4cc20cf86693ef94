package billing

import (
	"github.com/google/uuid"

	"github.com/tiffin/backend/internal/domain/shared"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
)

// InvoiceStatus is the lifecycle state of a customer-level combined invoice
type InvoiceStatus string

const (
	// InvoiceStatusCalculating - constituents still being assembled
	InvoiceStatusCalculating InvoiceStatus = "calculating"
	// InvoiceStatusPending - totals computed, awaiting finalization
	InvoiceStatusPending InvoiceStatus = "pending"
	// InvoiceStatusFinalized - payable; the allocator's target state
	InvoiceStatusFinalized InvoiceStatus = "finalized"
	// InvoiceStatusPaid - balance due reached zero
	InvoiceStatusPaid InvoiceStatus = "paid"
)

// IsValid checks if the invoice status is valid
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusCalculating, InvoiceStatusPending, InvoiceStatusFinalized, InvoiceStatusPaid:
		return true
	}
	return false
}

// CombinedInvoice aggregates all of one customer's order billings for a
// month into a single payable total. Payments allocate against combined
// invoices, never against individual order billings.
type CombinedInvoice struct {
	shared.BaseAggregateRoot
	CustomerID   uuid.UUID
	BillingMonth valueobject.BillingMonth
	// OrderBillingIDs are the constituent per-order billing snapshots
	OrderBillingIDs []uuid.UUID
	TotalAmount     valueobject.Money
	AmountPaid      valueobject.Money
	CreditApplied   valueobject.Money
	// CanApprove is true only while every constituent billing is finalized
	CanApprove bool
	Status     InvoiceStatus
}

// NewCombinedInvoice creates a combined invoice in calculating state
func NewCombinedInvoice(customerID uuid.UUID, month valueobject.BillingMonth) (*CombinedInvoice, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("VALIDATION_CUSTOMER_REQUIRED", "Customer ID is required")
	}
	if month.IsZero() {
		return nil, shared.NewValidationError("VALIDATION_MONTH_REQUIRED", "Billing month is required")
	}

	return &CombinedInvoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		BillingMonth:      month,
		OrderBillingIDs:   make([]uuid.UUID, 0),
		TotalAmount:       valueobject.ZeroCAD(),
		AmountPaid:        valueobject.ZeroCAD(),
		CreditApplied:     valueobject.ZeroCAD(),
		Status:            InvoiceStatusCalculating,
	}, nil
}

// BalanceDue returns total_amount - amount_paid - credit_applied
func (ci *CombinedInvoice) BalanceDue() valueobject.Money {
	return ci.TotalAmount.MustSubtract(ci.AmountPaid).MustSubtract(ci.CreditApplied)
}

// IsPayable reports whether the allocator may apply money to this invoice
func (ci *CombinedInvoice) IsPayable() bool {
	return ci.Status == InvoiceStatusFinalized && ci.BalanceDue().IsPositive()
}

// Recalculate replaces the constituent set and total from the current
// order billings for the customer/month. Allowed while the invoice is
// still calculating or pending.
func (ci *CombinedInvoice) Recalculate(constituents []*OrderBilling) error {
	if ci.Status != InvoiceStatusCalculating && ci.Status != InvoiceStatusPending {
		return shared.NewValidationError("IMMUTABLE_BILLING",
			"Combined invoice is "+string(ci.Status)+" and cannot be recalculated")
	}

	total := valueobject.ZeroCAD()
	ids := make([]uuid.UUID, 0, len(constituents))
	canApprove := len(constituents) > 0
	for _, ob := range constituents {
		if ob.CustomerID != ci.CustomerID || ob.BillingMonth != ci.BillingMonth {
			return shared.NewValidationError("VALIDATION_CONSTITUENT_MISMATCH",
				"Order billing "+ob.ID.String()+" does not belong to this customer and month")
		}
		var err error
		total, err = total.Add(ob.TotalAmount)
		if err != nil {
			return err
		}
		ids = append(ids, ob.ID)
		if ob.Status == BillingStatusCalculating {
			canApprove = false
		}
	}

	ci.OrderBillingIDs = ids
	ci.TotalAmount = total
	ci.CanApprove = canApprove
	ci.Status = InvoiceStatusPending
	return nil
}

// Finalize freezes the combined total and makes the invoice payable.
// Gated on every constituent billing being finalized.
func (ci *CombinedInvoice) Finalize() error {
	if ci.Status != InvoiceStatusPending {
		return shared.NewValidationError("INVALID_STATE",
			"Only pending combined invoices can be finalized, current status: "+string(ci.Status))
	}
	if !ci.CanApprove {
		return shared.NewValidationError("VALIDATION_UNFINALIZED_CONSTITUENTS",
			"All order billings must be finalized before the combined invoice can be finalized")
	}
	ci.Status = InvoiceStatusFinalized
	ci.AddDomainEvent(NewCombinedInvoiceFinalizedEvent(ci.ID, ci.CustomerID, ci.BillingMonth, ci.TotalAmount))
	return nil
}

// ApplyPayment records an allocation against this invoice and transitions
// it to paid when the balance due reaches zero. Allocations against an
// invoice that is not finalized are rejected outright.
func (ci *CombinedInvoice) ApplyPayment(amount, creditAmount valueobject.Money) error {
	if ci.Status != InvoiceStatusFinalized && ci.Status != InvoiceStatusPaid {
		return shared.NewValidationError("VALIDATION_INVOICE_NOT_PAYABLE",
			"Invoice must be finalized before payments can be allocated, current status: "+string(ci.Status))
	}
	if amount.IsNegative() || creditAmount.IsNegative() {
		return shared.NewValidationError("INVALID_INPUT", "Allocation amounts cannot be negative")
	}

	applied := amount.MustAdd(creditAmount)
	balance := ci.BalanceDue()
	if exceeds, err := applied.GreaterThan(balance); err != nil {
		return err
	} else if exceeds {
		return shared.NewValidationError("EXCEEDS_BALANCE_DUE",
			"Allocation of "+applied.String()+" exceeds balance due of "+balance.String())
	}

	ci.AmountPaid = ci.AmountPaid.MustAdd(amount)
	ci.CreditApplied = ci.CreditApplied.MustAdd(creditAmount)
	if ci.BalanceDue().IsZero() {
		ci.Status = InvoiceStatusPaid
		ci.AddDomainEvent(NewCombinedInvoicePaidEvent(ci.ID, ci.CustomerID, ci.BillingMonth))
	}
	return nil
}

// RevertPayment unwinds a previously applied allocation during payment
// deletion, moving the invoice back out of paid if it had reached it.
func (ci *CombinedInvoice) RevertPayment(amount, creditAmount valueobject.Money) error {
	if amount.IsNegative() || creditAmount.IsNegative() {
		return shared.NewValidationError("INVALID_INPUT", "Reversal amounts cannot be negative")
	}

	newPaid := ci.AmountPaid.MustSubtract(amount)
	newCredit := ci.CreditApplied.MustSubtract(creditAmount)
	if newPaid.IsNegative() || newCredit.IsNegative() {
		return shared.NewIntegrityError("INTEGRITY_OVERDRAWN_REVERSAL",
			"Reversal would drive invoice "+ci.ID.String()+" paid totals negative")
	}

	ci.AmountPaid = newPaid
	ci.CreditApplied = newCredit
	if ci.Status == InvoiceStatusPaid && ci.BalanceDue().IsPositive() {
		ci.Status = InvoiceStatusFinalized
	}
	return nil
}

package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/tiffin/backend/internal/domain/shared"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
)

// PaymentSource identifies how the money arrived
type PaymentSource string

const (
	// PaymentSourceCash - cash handed over on delivery
	PaymentSourceCash PaymentSource = "cash"
	// PaymentSourceInterac - Interac e-transfer
	PaymentSourceInterac PaymentSource = "interac"
)

// IsValid checks if the payment source is valid
func (s PaymentSource) IsValid() bool {
	return s == PaymentSourceCash || s == PaymentSourceInterac
}

// AllocationStatus describes how much of a payment has been allocated
type AllocationStatus string

const (
	// AllocationStatusUnallocated - no allocations recorded yet
	AllocationStatusUnallocated AllocationStatus = "unallocated"
	// AllocationStatusPartial - allocated without excess, targeted invoices still carry balance
	AllocationStatusPartial AllocationStatus = "partial"
	// AllocationStatusFullyAllocated - allocated without excess, all targeted invoices paid
	AllocationStatusFullyAllocated AllocationStatus = "fully_allocated"
	// AllocationStatusHasExcess - leftover amount was converted to customer credit
	AllocationStatusHasExcess AllocationStatus = "has_excess"
)

// PaymentAllocation records one payment-to-invoice split. At most one
// allocation exists per (payment, invoice) pair; Sequence preserves the
// caller-supplied application order.
type PaymentAllocation struct {
	shared.BaseEntity
	PaymentRecordID  uuid.UUID
	InvoiceID        uuid.UUID
	AllocatedAmount  valueobject.Money
	CreditAmountUsed valueobject.Money
	Sequence         int
	// ResultingStatus is the invoice status after this allocation applied
	ResultingStatus string
}

// PaymentRecord is an incoming customer payment. The amount is immutable
// once created; reversal happens only through delete-with-reason, which
// unwinds the allocations and any credit the payment produced.
type PaymentRecord struct {
	shared.BaseAggregateRoot
	CustomerID     uuid.UUID
	Amount         valueobject.Money
	PaymentDate    time.Time
	Source         PaymentSource
	Reference      string
	Status         AllocationStatus
	TotalAllocated valueobject.Money
	ExcessAmount   valueobject.Money
	Allocations    []*PaymentAllocation
}

// NewPaymentRecord creates an unallocated payment
func NewPaymentRecord(customerID uuid.UUID, amount valueobject.Money, paymentDate time.Time, source PaymentSource, reference string) (*PaymentRecord, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("VALIDATION_CUSTOMER_REQUIRED", "Customer ID is required")
	}
	// Zero is allowed: a credit-only settlement rides on a zero-amount
	// payment whose allocations apply credit alone.
	if amount.IsNegative() {
		return nil, shared.NewValidationError("VALIDATION_INVALID_AMOUNT", "Payment amount cannot be negative")
	}
	if !source.IsValid() {
		return nil, shared.NewValidationError("VALIDATION_INVALID_SOURCE", "Invalid payment source: "+string(source))
	}

	p := &PaymentRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Amount:            amount,
		PaymentDate:       paymentDate,
		Source:            source,
		Reference:         reference,
		Status:            AllocationStatusUnallocated,
		TotalAllocated:    valueobject.ZeroCAD(),
		ExcessAmount:      valueobject.ZeroCAD(),
		Allocations:       make([]*PaymentAllocation, 0),
	}
	p.AddDomainEvent(NewPaymentCreatedEvent(p.ID, customerID, amount, source))
	return p, nil
}

// IsAllocated reports whether allocations have been committed against
// this payment
func (p *PaymentRecord) IsAllocated() bool {
	return p.Status != AllocationStatusUnallocated
}

// RecordAllocations commits the allocation split onto the payment.
// anyTargetOpen indicates whether any targeted invoice still carries a
// balance after the split, which distinguishes partial from fully
// allocated. Conservation is enforced here: allocated plus excess must
// equal the payment amount exactly.
func (p *PaymentRecord) RecordAllocations(allocations []*PaymentAllocation, anyTargetOpen bool) error {
	if p.IsAllocated() {
		return shared.NewValidationError("VALIDATION_ALREADY_ALLOCATED",
			"Payment has already been allocated; delete and recreate it to change the split")
	}

	total := valueobject.ZeroCAD()
	for i, a := range allocations {
		if a.PaymentRecordID != p.ID {
			return shared.NewValidationError("INVALID_INPUT", "Allocation does not belong to this payment")
		}
		a.Sequence = i
		var err error
		if total, err = total.Add(a.AllocatedAmount); err != nil {
			return err
		}
	}

	if exceeds, err := total.GreaterThan(p.Amount); err != nil {
		return err
	} else if exceeds {
		return shared.NewValidationError("OVER_ALLOCATION",
			"Total allocated "+total.String()+" exceeds payment amount "+p.Amount.String())
	}

	p.Allocations = allocations
	p.TotalAllocated = total
	p.ExcessAmount = p.Amount.MustSubtract(total)

	switch {
	case len(allocations) == 0 && p.ExcessAmount.IsZero():
		p.Status = AllocationStatusUnallocated
	case p.ExcessAmount.IsPositive():
		p.Status = AllocationStatusHasExcess
	case anyTargetOpen:
		p.Status = AllocationStatusPartial
	default:
		p.Status = AllocationStatusFullyAllocated
	}

	p.AddDomainEvent(NewPaymentAllocatedEvent(p.ID, p.CustomerID, p.TotalAllocated, p.ExcessAmount, p.Status))
	return nil
}

// CreditApplied returns the total credit consumed across all allocations
func (p *PaymentRecord) CreditApplied() valueobject.Money {
	total := valueobject.ZeroCAD()
	for _, a := range p.Allocations {
		total = total.MustAdd(a.CreditAmountUsed)
	}
	return total
}

// NewPaymentAllocation creates an allocation entry for a payment
func NewPaymentAllocation(paymentID, invoiceID uuid.UUID, amount, creditAmount valueobject.Money) (*PaymentAllocation, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewValidationError("VALIDATION_INVOICE_REQUIRED", "Invoice ID is required")
	}
	if amount.IsNegative() || creditAmount.IsNegative() {
		return nil, shared.NewValidationError("INVALID_INPUT", "Allocation amounts cannot be negative")
	}
	if amount.IsZero() && creditAmount.IsZero() {
		return nil, shared.NewValidationError("INVALID_INPUT", "Allocation must apply a positive amount or credit")
	}
	return &PaymentAllocation{
		BaseEntity:       shared.NewBaseEntity(),
		PaymentRecordID:  paymentID,
		InvoiceID:        invoiceID,
		AllocatedAmount:  amount,
		CreditAmountUsed: creditAmount,
	}, nil
}

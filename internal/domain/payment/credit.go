package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/tiffin/backend/internal/domain/shared"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
)

// CreditStatus is the lifecycle state of a customer credit
type CreditStatus string

const (
	// CreditStatusAvailable - balance can be applied to invoices or refunded
	CreditStatusAvailable CreditStatus = "available"
	// CreditStatusUsed - balance reached zero through usage against invoices
	CreditStatusUsed CreditStatus = "used"
	// CreditStatusRefunded - balance reached zero through a completed refund
	CreditStatusRefunded CreditStatus = "refunded"
	// CreditStatusExpired - administratively written off
	CreditStatusExpired CreditStatus = "expired"
)

// CustomerCredit is an overpayment converted into spendable balance.
// The balance only decreases, through allocator usage or completed
// refunds, except when a payment deletion rolls a usage back. Which
// operation zeroed the balance decides the terminal status: usage
// yields used, refund yields refunded.
type CustomerCredit struct {
	shared.BaseAggregateRoot
	CustomerID      uuid.UUID
	SourcePaymentID *uuid.UUID
	OriginalAmount  valueobject.Money
	CurrentBalance  valueobject.Money
	Status          CreditStatus
}

// NewCustomerCredit creates an available credit from a payment's excess
func NewCustomerCredit(customerID uuid.UUID, sourcePaymentID *uuid.UUID, amount valueobject.Money) (*CustomerCredit, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("VALIDATION_CUSTOMER_REQUIRED", "Customer ID is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("VALIDATION_INVALID_AMOUNT", "Credit amount must be positive")
	}

	c := &CustomerCredit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		SourcePaymentID:   sourcePaymentID,
		OriginalAmount:    amount,
		CurrentBalance:    amount,
		Status:            CreditStatusAvailable,
	}
	c.AddDomainEvent(NewCreditCreatedEvent(c.ID, customerID, amount))
	return c, nil
}

// IsAvailable reports whether the credit still has spendable balance
func (c *CustomerCredit) IsAvailable() bool {
	return c.Status == CreditStatusAvailable && c.CurrentBalance.IsPositive()
}

// Consume decrements the balance through allocator usage. The allocator
// validates requested credit against the available total before commit,
// so an insufficient balance here means the ledger itself is off.
func (c *CustomerCredit) Consume(amount valueobject.Money) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("VALIDATION_INVALID_AMOUNT", "Credit usage must be positive")
	}
	if c.Status != CreditStatusAvailable {
		return shared.NewIntegrityError("INTEGRITY_CREDIT_NOT_AVAILABLE",
			"Credit "+c.ID.String()+" is "+string(c.Status)+" and cannot be consumed")
	}
	if exceeds, err := amount.GreaterThan(c.CurrentBalance); err != nil {
		return err
	} else if exceeds {
		return shared.NewIntegrityError("INTEGRITY_INSUFFICIENT_CREDIT",
			"Credit usage "+amount.String()+" exceeds remaining balance "+c.CurrentBalance.String()+" on credit "+c.ID.String())
	}

	c.CurrentBalance = c.CurrentBalance.MustSubtract(amount)
	if c.CurrentBalance.IsZero() {
		c.Status = CreditStatusUsed
	}
	return nil
}

// Restore reverses an earlier usage during payment deletion
func (c *CustomerCredit) Restore(amount valueobject.Money) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("VALIDATION_INVALID_AMOUNT", "Restore amount must be positive")
	}
	if c.Status == CreditStatusRefunded || c.Status == CreditStatusExpired {
		return shared.NewIntegrityError("CREDIT_ALREADY_CONSUMED",
			"Credit "+c.ID.String()+" was "+string(c.Status)+" and cannot be restored")
	}

	restored := c.CurrentBalance.MustAdd(amount)
	if exceeds, err := restored.GreaterThan(c.OriginalAmount); err != nil {
		return err
	} else if exceeds {
		return shared.NewIntegrityError("INTEGRITY_RESTORE_EXCEEDS_ORIGINAL",
			"Restoring "+amount.String()+" would push credit "+c.ID.String()+" above its original amount")
	}

	c.CurrentBalance = restored
	c.Status = CreditStatusAvailable
	return nil
}

// ApplyRefund decrements the balance through a completed refund
func (c *CustomerCredit) ApplyRefund(amount valueobject.Money) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("VALIDATION_INVALID_AMOUNT", "Refund amount must be positive")
	}
	if c.Status != CreditStatusAvailable {
		return shared.NewValidationError("INVALID_STATE",
			"Credit is "+string(c.Status)+" and cannot be refunded")
	}
	if exceeds, err := amount.GreaterThan(c.CurrentBalance); err != nil {
		return err
	} else if exceeds {
		return shared.NewValidationError("INSUFFICIENT_CREDIT",
			"Refund amount "+amount.String()+" exceeds credit balance "+c.CurrentBalance.String())
	}

	c.CurrentBalance = c.CurrentBalance.MustSubtract(amount)
	if c.CurrentBalance.IsZero() {
		c.Status = CreditStatusRefunded
	}
	return nil
}

// CreditUsage is the audit record of one credit draw against an invoice.
// PaymentID ties the usage to the payment whose allocation consumed it,
// so deleting that payment can restore exactly what it drew.
type CreditUsage struct {
	shared.BaseEntity
	CreditID   uuid.UUID
	InvoiceID  uuid.UUID
	PaymentID  uuid.UUID
	AmountUsed valueobject.Money
	UsedAt     time.Time
}

// NewCreditUsage creates a usage record for a credit draw
func NewCreditUsage(creditID, invoiceID, paymentID uuid.UUID, amount valueobject.Money) (*CreditUsage, error) {
	if creditID == uuid.Nil || invoiceID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_INPUT", "Credit and invoice IDs are required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("VALIDATION_INVALID_AMOUNT", "Usage amount must be positive")
	}
	return &CreditUsage{
		BaseEntity: shared.NewBaseEntity(),
		CreditID:   creditID,
		InvoiceID:  invoiceID,
		PaymentID:  paymentID,
		AmountUsed: amount,
		UsedAt:     time.Now(),
	}, nil
}

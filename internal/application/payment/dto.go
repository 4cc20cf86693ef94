package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/tiffin/backend/internal/domain/payment"
)

// CreatePaymentRequest records an incoming payment
type CreatePaymentRequest struct {
	CustomerID  uuid.UUID             `json:"customer_id" binding:"required"`
	Amount      string                `json:"amount" binding:"required"`
	PaymentDate time.Time             `json:"payment_date" binding:"required"`
	Source      payment.PaymentSource `json:"source" binding:"required"`
	Reference   string                `json:"reference"`
}

// AllocationEntry is one caller-supplied payment-to-invoice split.
// CreditAmount draws from the customer's available credit on top of the
// payment amount; entries apply in the order given.
type AllocationEntry struct {
	InvoiceID    uuid.UUID `json:"invoice_id" binding:"required"`
	Amount       string    `json:"amount" binding:"required"`
	CreditAmount string    `json:"credit_amount"`
}

// AllocatePaymentRequest commits a payment's allocation split. An empty
// Allocations list selects invoices automatically, oldest first.
type AllocatePaymentRequest struct {
	PaymentID   uuid.UUID         `json:"payment_id" binding:"required"`
	Allocations []AllocationEntry `json:"allocations"`
}

// AutoSelectRequest previews the oldest-first allocation for an amount
type AutoSelectRequest struct {
	CustomerID uuid.UUID `json:"customer_id" binding:"required"`
	Amount     string    `json:"amount" binding:"required"`
}

// SelectedInvoice is one invoice chosen by auto-select with the amount
// that would be applied to it
type SelectedInvoice struct {
	InvoiceID    uuid.UUID `json:"invoice_id"`
	BillingMonth string    `json:"billing_month"`
	BalanceDue   string    `json:"balance_due"`
	Amount       string    `json:"amount"`
}

// AutoSelectResult is the auto-select preview
type AutoSelectResult struct {
	SelectedInvoices []SelectedInvoice `json:"selected_invoices"`
	RemainingAmount  string            `json:"remaining_amount"`
}

// PaymentResult is the service-level view of a payment record
type PaymentResult struct {
	ID             uuid.UUID                `json:"id"`
	CustomerID     uuid.UUID                `json:"customer_id"`
	Amount         string                   `json:"amount"`
	PaymentDate    time.Time                `json:"payment_date"`
	Source         payment.PaymentSource    `json:"source"`
	Reference      string                   `json:"reference"`
	Status         payment.AllocationStatus `json:"status"`
	TotalAllocated string                   `json:"total_allocated"`
	ExcessAmount   string                   `json:"excess_amount"`
}

// AllocationResult summarizes a committed allocation
type AllocationResult struct {
	PaymentID        uuid.UUID                `json:"payment_id"`
	AllocationStatus payment.AllocationStatus `json:"allocation_status"`
	TotalAllocated   string                   `json:"total_allocated"`
	ExcessAmount     string                   `json:"excess_amount"`
	CreditApplied    string                   `json:"credit_applied"`
}

// CreditResult is the service-level view of one customer credit
type CreditResult struct {
	ID              uuid.UUID            `json:"id"`
	CustomerID      uuid.UUID            `json:"customer_id"`
	SourcePaymentID *uuid.UUID           `json:"source_payment_id,omitempty"`
	OriginalAmount  string               `json:"original_amount"`
	CurrentBalance  string               `json:"current_balance"`
	Status          payment.CreditStatus `json:"status"`
}

// AvailableCreditResult is the customer's spendable credit position
type AvailableCreditResult struct {
	CustomerID     uuid.UUID       `json:"customer_id"`
	TotalAvailable string          `json:"total_available"`
	Credits        []*CreditResult `json:"credits"`
}

// RequestRefundRequest creates a pending refund
type RequestRefundRequest struct {
	Source     payment.RefundSource `json:"source" binding:"required"`
	SourceID   uuid.UUID            `json:"source_id" binding:"required"`
	CustomerID uuid.UUID            `json:"customer_id" binding:"required"`
	Amount     string               `json:"amount" binding:"required"`
	Method     string               `json:"method" binding:"required"`
	Reason     string               `json:"reason"`
}

// ApproveRefundRequest approves a pending refund
type ApproveRefundRequest struct {
	ApprovedBy string `json:"approved_by" binding:"required"`
	Reference  string `json:"reference"`
}

// RefundResult is the service-level view of a refund request
type RefundResult struct {
	ID           uuid.UUID            `json:"id"`
	Source       payment.RefundSource `json:"source"`
	SourceID     uuid.UUID            `json:"source_id"`
	CustomerID   uuid.UUID            `json:"customer_id"`
	RefundAmount string               `json:"refund_amount"`
	Method       string               `json:"method"`
	Reason       string               `json:"reason"`
	Status       payment.RefundStatus `json:"status"`
	ApprovedBy   string               `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time           `json:"approved_at,omitempty"`
	Reference    string               `json:"reference,omitempty"`
}

func toPaymentResult(p *payment.PaymentRecord) *PaymentResult {
	return &PaymentResult{
		ID:             p.ID,
		CustomerID:     p.CustomerID,
		Amount:         p.Amount.StringFixed(2),
		PaymentDate:    p.PaymentDate,
		Source:         p.Source,
		Reference:      p.Reference,
		Status:         p.Status,
		TotalAllocated: p.TotalAllocated.StringFixed(2),
		ExcessAmount:   p.ExcessAmount.StringFixed(2),
	}
}

func toCreditResult(c *payment.CustomerCredit) *CreditResult {
	return &CreditResult{
		ID:              c.ID,
		CustomerID:      c.CustomerID,
		SourcePaymentID: c.SourcePaymentID,
		OriginalAmount:  c.OriginalAmount.StringFixed(2),
		CurrentBalance:  c.CurrentBalance.StringFixed(2),
		Status:          c.Status,
	}
}

func toRefundResult(r *payment.RefundRequest) *RefundResult {
	return &RefundResult{
		ID:           r.ID,
		Source:       r.Source,
		SourceID:     r.SourceID,
		CustomerID:   r.CustomerID,
		RefundAmount: r.RefundAmount.StringFixed(2),
		Method:       r.Method,
		Reason:       r.Reason,
		Status:       r.Status,
		ApprovedBy:   r.ApprovedBy,
		ApprovedAt:   r.ApprovedAt,
		Reference:    r.Reference,
	}
}

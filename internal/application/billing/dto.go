package billing

import (
	"github.com/google/uuid"

	"github.com/tiffin/backend/internal/domain/billing"
)

// ComputeOrderBillingRequest asks for a recompute-or-fetch of one order's
// billing for a month
type ComputeOrderBillingRequest struct {
	OrderID      uuid.UUID `json:"order_id" binding:"required"`
	BillingMonth string    `json:"billing_month" binding:"required,billing_month"`
}

// ComputeCombinedInvoiceRequest asks for the customer-level aggregate
type ComputeCombinedInvoiceRequest struct {
	CustomerID   uuid.UUID `json:"customer_id" binding:"required"`
	BillingMonth string    `json:"billing_month" binding:"required,billing_month"`
}

// OrderBillingResult is the service-level view of a billing snapshot
type OrderBillingResult struct {
	ID             uuid.UUID             `json:"id"`
	OrderID        uuid.UUID             `json:"order_id"`
	CustomerID     uuid.UUID             `json:"customer_id"`
	BillingMonth   string                `json:"billing_month"`
	DeliveredCount int                   `json:"delivered_count"`
	AbsentCount    int                   `json:"absent_count"`
	ExtraCount     int                   `json:"extra_count"`
	ApplicableDays int                   `json:"applicable_days"`
	TotalDays      int                   `json:"total_days"`
	PerTiffinPrice string                `json:"per_tiffin_price"`
	BaseAmount     string                `json:"base_amount"`
	ExtraAmount    string                `json:"extra_amount"`
	TotalAmount    string                `json:"total_amount"`
	Status         billing.BillingStatus `json:"status"`
}

// CombinedInvoiceResult is the service-level view of a combined invoice
type CombinedInvoiceResult struct {
	ID              uuid.UUID             `json:"id"`
	CustomerID      uuid.UUID             `json:"customer_id"`
	BillingMonth    string                `json:"billing_month"`
	OrderBillingIDs []uuid.UUID           `json:"order_billing_ids"`
	TotalAmount     string                `json:"total_amount"`
	AmountPaid      string                `json:"amount_paid"`
	CreditApplied   string                `json:"credit_applied"`
	BalanceDue      string                `json:"balance_due"`
	CanApprove      bool                  `json:"can_approve"`
	Status          billing.InvoiceStatus `json:"status"`
}

func toOrderBillingResult(ob *billing.OrderBilling) *OrderBillingResult {
	return &OrderBillingResult{
		ID:             ob.ID,
		OrderID:        ob.OrderID,
		CustomerID:     ob.CustomerID,
		BillingMonth:   ob.BillingMonth.String(),
		DeliveredCount: ob.DeliveredCount,
		AbsentCount:    ob.AbsentCount,
		ExtraCount:     ob.ExtraCount,
		ApplicableDays: ob.ApplicableDays,
		TotalDays:      ob.TotalDays,
		PerTiffinPrice: ob.PerTiffinPrice.RoundMinorUnit().StringFixed(2),
		BaseAmount:     ob.BaseAmount.StringFixed(2),
		ExtraAmount:    ob.ExtraAmount.StringFixed(2),
		TotalAmount:    ob.TotalAmount.StringFixed(2),
		Status:         ob.Status,
	}
}

func toCombinedInvoiceResult(ci *billing.CombinedInvoice) *CombinedInvoiceResult {
	return &CombinedInvoiceResult{
		ID:              ci.ID,
		CustomerID:      ci.CustomerID,
		BillingMonth:    ci.BillingMonth.String(),
		OrderBillingIDs: ci.OrderBillingIDs,
		TotalAmount:     ci.TotalAmount.StringFixed(2),
		AmountPaid:      ci.AmountPaid.StringFixed(2),
		CreditApplied:   ci.CreditApplied.StringFixed(2),
		BalanceDue:      ci.BalanceDue().StringFixed(2),
		CanApprove:      ci.CanApprove,
		Status:          ci.Status,
	}
}

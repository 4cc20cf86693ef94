package billing

import (
	"github.com/google/uuid"

	"github.com/tiffin/backend/internal/domain/shared"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
)

// BillingStatus is the lifecycle state of a per-order billing snapshot
type BillingStatus string

const (
	// BillingStatusCalculating - amounts are recomputable from the calendar
	BillingStatusCalculating BillingStatus = "calculating"
	// BillingStatusFinalized - amounts are frozen; calendar edits need a reopen
	BillingStatusFinalized BillingStatus = "finalized"
	// BillingStatusApproved - accepted into a combined invoice
	BillingStatusApproved BillingStatus = "approved"
	// BillingStatusInvoiced - the combined invoice was issued
	BillingStatusInvoiced BillingStatus = "invoiced"
)

// IsValid checks if the billing status is valid
func (s BillingStatus) IsValid() bool {
	switch s {
	case BillingStatusCalculating, BillingStatusFinalized, BillingStatusApproved, BillingStatusInvoiced:
		return true
	}
	return false
}

// OrderBilling is the per-order, per-month billing snapshot. One row exists
// per (order, month); it is recomputed from the calendar until finalized.
type OrderBilling struct {
	shared.BaseAggregateRoot
	OrderID        uuid.UUID
	CustomerID     uuid.UUID
	BillingMonth   valueobject.BillingMonth
	DeliveredCount int
	AbsentCount    int
	ExtraCount     int
	ApplicableDays int
	TotalDays      int
	PerTiffinPrice valueobject.Money
	BaseAmount     valueobject.Money
	ExtraAmount    valueobject.Money
	TotalAmount    valueobject.Money
	Status         BillingStatus
}

// NewOrderBilling creates a billing snapshot in calculating state
func NewOrderBilling(orderID, customerID uuid.UUID, month valueobject.BillingMonth) (*OrderBilling, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewValidationError("VALIDATION_ORDER_REQUIRED", "Order ID is required")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("VALIDATION_CUSTOMER_REQUIRED", "Customer ID is required")
	}
	if month.IsZero() {
		return nil, shared.NewValidationError("VALIDATION_MONTH_REQUIRED", "Billing month is required")
	}

	ob := &OrderBilling{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		CustomerID:        customerID,
		BillingMonth:      month,
		PerTiffinPrice:    valueobject.ZeroCAD(),
		BaseAmount:        valueobject.ZeroCAD(),
		ExtraAmount:       valueobject.ZeroCAD(),
		TotalAmount:       valueobject.ZeroCAD(),
		Status:            BillingStatusCalculating,
	}
	return ob, nil
}

// IsMutable reports whether the snapshot can still be recomputed
func (ob *OrderBilling) IsMutable() bool {
	return ob.Status == BillingStatusCalculating
}

// ApplyBreakdown overwrites all computed fields from a fresh calculation.
// Rejected once the billing has been finalized.
func (ob *OrderBilling) ApplyBreakdown(b *BillingBreakdown) error {
	if !ob.IsMutable() {
		return shared.NewValidationError("IMMUTABLE_BILLING",
			"Billing is "+string(ob.Status)+" and cannot be recomputed; reopen it first")
	}

	ob.DeliveredCount = b.DeliveredCount
	ob.AbsentCount = b.AbsentCount
	ob.ExtraCount = b.ExtraCount
	ob.ApplicableDays = b.ApplicableDays
	ob.TotalDays = b.TotalDays
	ob.PerTiffinPrice = b.PerTiffinPrice
	ob.BaseAmount = b.BaseAmount
	ob.ExtraAmount = b.ExtraAmount
	ob.TotalAmount = b.TotalAmount

	ob.AddDomainEvent(NewOrderBillingComputedEvent(ob.ID, ob.OrderID, ob.BillingMonth, ob.TotalAmount))
	return nil
}

// Finalize freezes the computed amounts
func (ob *OrderBilling) Finalize() error {
	if ob.Status != BillingStatusCalculating {
		return shared.NewValidationError("INVALID_STATE",
			"Only calculating billings can be finalized, current status: "+string(ob.Status))
	}
	ob.Status = BillingStatusFinalized
	ob.AddDomainEvent(NewOrderBillingFinalizedEvent(ob.ID, ob.OrderID, ob.BillingMonth, ob.TotalAmount))
	return nil
}

// Reopen reverts a finalized billing back to calculating so the calendar
// can be re-applied. Approved and invoiced billings cannot be reopened.
func (ob *OrderBilling) Reopen() error {
	if ob.Status != BillingStatusFinalized {
		return shared.NewValidationError("INVALID_STATE",
			"Only finalized billings can be reopened, current status: "+string(ob.Status))
	}
	ob.Status = BillingStatusCalculating
	ob.AddDomainEvent(NewOrderBillingReopenedEvent(ob.ID, ob.OrderID, ob.BillingMonth))
	return nil
}

// Approve marks a finalized billing as accepted into its combined invoice
func (ob *OrderBilling) Approve() error {
	if ob.Status != BillingStatusFinalized {
		return shared.NewValidationError("INVALID_STATE",
			"Only finalized billings can be approved, current status: "+string(ob.Status))
	}
	ob.Status = BillingStatusApproved
	return nil
}

// MarkInvoiced records that the combined invoice covering this billing
// has been issued
func (ob *OrderBilling) MarkInvoiced() error {
	if ob.Status != BillingStatusApproved {
		return shared.NewValidationError("INVALID_STATE",
			"Only approved billings can be invoiced, current status: "+string(ob.Status))
	}
	ob.Status = BillingStatusInvoiced
	return nil
}

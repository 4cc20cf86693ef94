package billing

import (
	"github.com/google/uuid"

	"github.com/tiffin/backend/internal/domain/shared"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
)

// Event types for the billing domain
const (
	EventTypeOrderBillingComputed     = "billing.order_billing.computed"
	EventTypeOrderBillingFinalized    = "billing.order_billing.finalized"
	EventTypeOrderBillingReopened     = "billing.order_billing.reopened"
	EventTypeCombinedInvoiceFinalized = "billing.combined_invoice.finalized"
	EventTypeCombinedInvoicePaid      = "billing.combined_invoice.paid"
)

// OrderBillingComputedEvent is raised when a billing snapshot is (re)computed
type OrderBillingComputedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID                `json:"order_id"`
	BillingMonth valueobject.BillingMonth `json:"billing_month"`
	TotalAmount  valueobject.Money        `json:"total_amount"`
}

// NewOrderBillingComputedEvent creates an OrderBillingComputedEvent
func NewOrderBillingComputedEvent(billingID, orderID uuid.UUID, month valueobject.BillingMonth, total valueobject.Money) *OrderBillingComputedEvent {
	return &OrderBillingComputedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderBillingComputed, "OrderBilling", billingID),
		OrderID:         orderID,
		BillingMonth:    month,
		TotalAmount:     total,
	}
}

// OrderBillingFinalizedEvent is raised when a billing snapshot is frozen
type OrderBillingFinalizedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID                `json:"order_id"`
	BillingMonth valueobject.BillingMonth `json:"billing_month"`
	TotalAmount  valueobject.Money        `json:"total_amount"`
}

// NewOrderBillingFinalizedEvent creates an OrderBillingFinalizedEvent
func NewOrderBillingFinalizedEvent(billingID, orderID uuid.UUID, month valueobject.BillingMonth, total valueobject.Money) *OrderBillingFinalizedEvent {
	return &OrderBillingFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderBillingFinalized, "OrderBilling", billingID),
		OrderID:         orderID,
		BillingMonth:    month,
		TotalAmount:     total,
	}
}

// OrderBillingReopenedEvent is raised when a finalized billing is reopened
type OrderBillingReopenedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID                `json:"order_id"`
	BillingMonth valueobject.BillingMonth `json:"billing_month"`
}

// NewOrderBillingReopenedEvent creates an OrderBillingReopenedEvent
func NewOrderBillingReopenedEvent(billingID, orderID uuid.UUID, month valueobject.BillingMonth) *OrderBillingReopenedEvent {
	return &OrderBillingReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderBillingReopened, "OrderBilling", billingID),
		OrderID:         orderID,
		BillingMonth:    month,
	}
}

// CombinedInvoiceFinalizedEvent is raised when a combined invoice becomes payable
type CombinedInvoiceFinalizedEvent struct {
	shared.BaseDomainEvent
	CustomerID   uuid.UUID                `json:"customer_id"`
	BillingMonth valueobject.BillingMonth `json:"billing_month"`
	TotalAmount  valueobject.Money        `json:"total_amount"`
}

// NewCombinedInvoiceFinalizedEvent creates a CombinedInvoiceFinalizedEvent
func NewCombinedInvoiceFinalizedEvent(invoiceID, customerID uuid.UUID, month valueobject.BillingMonth, total valueobject.Money) *CombinedInvoiceFinalizedEvent {
	return &CombinedInvoiceFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCombinedInvoiceFinalized, "CombinedInvoice", invoiceID),
		CustomerID:      customerID,
		BillingMonth:    month,
		TotalAmount:     total,
	}
}

// CombinedInvoicePaidEvent is raised when an invoice's balance due reaches zero
type CombinedInvoicePaidEvent struct {
	shared.BaseDomainEvent
	CustomerID   uuid.UUID                `json:"customer_id"`
	BillingMonth valueobject.BillingMonth `json:"billing_month"`
}

// NewCombinedInvoicePaidEvent creates a CombinedInvoicePaidEvent
func NewCombinedInvoicePaidEvent(invoiceID, customerID uuid.UUID, month valueobject.BillingMonth) *CombinedInvoicePaidEvent {
	return &CombinedInvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCombinedInvoicePaid, "CombinedInvoice", invoiceID),
		CustomerID:      customerID,
		BillingMonth:    month,
	}
}

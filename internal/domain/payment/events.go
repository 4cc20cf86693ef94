package payment

import (
	"github.com/google/uuid"

	"github.com/tiffin/backend/internal/domain/shared"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
)

// Event types for the payment domain
const (
	EventTypePaymentCreated   = "payment.payment_record.created"
	EventTypePaymentAllocated = "payment.payment_record.allocated"
	EventTypePaymentDeleted   = "payment.payment_record.deleted"
	EventTypeCreditCreated    = "payment.customer_credit.created"
	EventTypeRefundRequested  = "payment.refund_request.requested"
	EventTypeRefundCompleted  = "payment.refund_request.completed"
)

// PaymentCreatedEvent is raised when a payment is recorded
type PaymentCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID         `json:"customer_id"`
	Amount     valueobject.Money `json:"amount"`
	Source     PaymentSource     `json:"source"`
}

// NewPaymentCreatedEvent creates a PaymentCreatedEvent
func NewPaymentCreatedEvent(paymentID, customerID uuid.UUID, amount valueobject.Money, source PaymentSource) *PaymentCreatedEvent {
	return &PaymentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCreated, "PaymentRecord", paymentID),
		CustomerID:      customerID,
		Amount:          amount,
		Source:          source,
	}
}

// PaymentAllocatedEvent is raised when a payment's allocation split commits
type PaymentAllocatedEvent struct {
	shared.BaseDomainEvent
	CustomerID     uuid.UUID         `json:"customer_id"`
	TotalAllocated valueobject.Money `json:"total_allocated"`
	ExcessAmount   valueobject.Money `json:"excess_amount"`
	Status         AllocationStatus  `json:"status"`
}

// NewPaymentAllocatedEvent creates a PaymentAllocatedEvent
func NewPaymentAllocatedEvent(paymentID, customerID uuid.UUID, allocated, excess valueobject.Money, status AllocationStatus) *PaymentAllocatedEvent {
	return &PaymentAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentAllocated, "PaymentRecord", paymentID),
		CustomerID:      customerID,
		TotalAllocated:  allocated,
		ExcessAmount:    excess,
		Status:          status,
	}
}

// PaymentDeletedEvent is raised when a payment is deleted and unwound
type PaymentDeletedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Reason     string    `json:"reason"`
}

// NewPaymentDeletedEvent creates a PaymentDeletedEvent
func NewPaymentDeletedEvent(paymentID, customerID uuid.UUID, reason string) *PaymentDeletedEvent {
	return &PaymentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentDeleted, "PaymentRecord", paymentID),
		CustomerID:      customerID,
		Reason:          reason,
	}
}

// CreditCreatedEvent is raised when excess payment becomes customer credit
type CreditCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID         `json:"customer_id"`
	Amount     valueobject.Money `json:"amount"`
}

// NewCreditCreatedEvent creates a CreditCreatedEvent
func NewCreditCreatedEvent(creditID, customerID uuid.UUID, amount valueobject.Money) *CreditCreatedEvent {
	return &CreditCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditCreated, "CustomerCredit", creditID),
		CustomerID:      customerID,
		Amount:          amount,
	}
}

// RefundRequestedEvent is raised when a refund request is created
type RefundRequestedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID         `json:"customer_id"`
	Amount     valueobject.Money `json:"amount"`
}

// NewRefundRequestedEvent creates a RefundRequestedEvent
func NewRefundRequestedEvent(refundID, customerID uuid.UUID, amount valueobject.Money) *RefundRequestedEvent {
	return &RefundRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefundRequested, "RefundRequest", refundID),
		CustomerID:      customerID,
		Amount:          amount,
	}
}

// RefundCompletedEvent is raised when a refund is approved
type RefundCompletedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID         `json:"customer_id"`
	Amount     valueobject.Money `json:"amount"`
}

// NewRefundCompletedEvent creates a RefundCompletedEvent
func NewRefundCompletedEvent(refundID, customerID uuid.UUID, amount valueobject.Money) *RefundCompletedEvent {
	return &RefundCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefundCompleted, "RefundRequest", refundID),
		CustomerID:      customerID,
		Amount:          amount,
	}
}

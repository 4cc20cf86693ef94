package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/tiffin/backend/internal/domain/shared"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
)

// RefundSource identifies what a refund draws from
type RefundSource string

const (
	// RefundSourceCredit - refund against a customer credit balance
	RefundSourceCredit RefundSource = "credit"
	// RefundSourcePayment - refund against a payment; resolved through the
	// credit that payment produced
	RefundSourcePayment RefundSource = "payment"
)

// IsValid checks if the refund source is valid
func (s RefundSource) IsValid() bool {
	return s == RefundSourceCredit || s == RefundSourcePayment
}

// RefundStatus is the lifecycle state of a refund request
type RefundStatus string

const (
	// RefundStatusPending - requested, ledger untouched
	RefundStatusPending RefundStatus = "pending"
	// RefundStatusCompleted - approved; the credit balance was decremented
	RefundStatusCompleted RefundStatus = "completed"
	// RefundStatusCancelled - withdrawn before approval; ledger untouched
	RefundStatusCancelled RefundStatus = "cancelled"
)

// RefundRequest asks for money back out of a credit or payment. The
// ledger is only touched at approval; a pending request holds nothing,
// so cancelling is a pure status change. Completed refunds are final
// and have no automated undo.
type RefundRequest struct {
	shared.BaseAggregateRoot
	Source       RefundSource
	SourceID     uuid.UUID
	CustomerID   uuid.UUID
	RefundAmount valueobject.Money
	Method       string
	Reason       string
	Status       RefundStatus
	ApprovedBy   string
	ApprovedAt   *time.Time
	Reference    string
}

// NewRefundRequest creates a pending refund request
func NewRefundRequest(source RefundSource, sourceID, customerID uuid.UUID, amount valueobject.Money, method, reason string) (*RefundRequest, error) {
	if !source.IsValid() {
		return nil, shared.NewValidationError("VALIDATION_INVALID_SOURCE", "Invalid refund source: "+string(source))
	}
	if sourceID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_INPUT", "Refund source ID is required")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("VALIDATION_CUSTOMER_REQUIRED", "Customer ID is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("VALIDATION_INVALID_AMOUNT", "Refund amount must be positive")
	}

	r := &RefundRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Source:            source,
		SourceID:          sourceID,
		CustomerID:        customerID,
		RefundAmount:      amount,
		Method:            method,
		Reason:            reason,
		Status:            RefundStatusPending,
	}
	r.AddDomainEvent(NewRefundRequestedEvent(r.ID, customerID, amount))
	return r, nil
}

// Approve completes the refund request. The caller is responsible for
// decrementing the source credit in the same transaction.
func (r *RefundRequest) Approve(approvedBy, reference string) error {
	if r.Status != RefundStatusPending {
		return shared.NewValidationError("INVALID_STATE",
			"Only pending refunds can be approved, current status: "+string(r.Status))
	}
	if approvedBy == "" {
		return shared.NewValidationError("INVALID_INPUT", "Approver is required")
	}

	now := time.Now()
	r.Status = RefundStatusCompleted
	r.ApprovedBy = approvedBy
	r.ApprovedAt = &now
	r.Reference = reference
	r.AddDomainEvent(NewRefundCompletedEvent(r.ID, r.CustomerID, r.RefundAmount))
	return nil
}

// Cancel withdraws a pending refund request without any ledger mutation
func (r *RefundRequest) Cancel() error {
	if r.Status != RefundStatusPending {
		return shared.NewValidationError("INVALID_STATE",
			"Only pending refunds can be cancelled, current status: "+string(r.Status))
	}
	r.Status = RefundStatusCancelled
	return nil
}

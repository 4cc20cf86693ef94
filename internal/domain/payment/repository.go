package payment

import (
	"context"

	"github.com/google/uuid"
)

// PaymentRecordRepository provides access to payments and their allocations.
// A payment and its allocation rows are loaded and saved as one aggregate.
type PaymentRecordRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentRecord, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*PaymentRecord, error)
	Save(ctx context.Context, p *PaymentRecord) error
	SaveWithLock(ctx context.Context, p *PaymentRecord, expectedVersion int) error
	// Delete removes the payment and its allocation rows, recording the
	// deletion reason on the soft-deleted row for audit.
	Delete(ctx context.Context, p *PaymentRecord, reason string) error
}

// CustomerCreditRepository provides access to customer credits
type CustomerCreditRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CustomerCredit, error)
	// ListAvailableByCustomer returns available credits oldest first, the
	// order in which the allocator draws them down.
	ListAvailableByCustomer(ctx context.Context, customerID uuid.UUID) ([]*CustomerCredit, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*CustomerCredit, error)
	FindBySourcePayment(ctx context.Context, paymentID uuid.UUID) (*CustomerCredit, error)
	Save(ctx context.Context, c *CustomerCredit) error
	SaveWithLock(ctx context.Context, c *CustomerCredit, expectedVersion int) error
	Delete(ctx context.Context, c *CustomerCredit) error
}

// CreditUsageRepository provides access to credit usage audit records
type CreditUsageRepository interface {
	ListByCredit(ctx context.Context, creditID uuid.UUID) ([]*CreditUsage, error)
	ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]*CreditUsage, error)
	Save(ctx context.Context, u *CreditUsage) error
	DeleteByPayment(ctx context.Context, paymentID uuid.UUID) error
}

// RefundRequestRepository provides access to refund requests
type RefundRequestRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RefundRequest, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*RefundRequest, error)
	Save(ctx context.Context, r *RefundRequest) error
	SaveWithLock(ctx context.Context, r *RefundRequest, expectedVersion int) error
}

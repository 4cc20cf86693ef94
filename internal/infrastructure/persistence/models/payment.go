package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tiffin/backend/internal/domain/payment"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
)

// PaymentRecordModel is the persistence model for the PaymentRecord aggregate root.
// Deletion is soft so reversed payments stay auditable; DeleteReason records why.
type PaymentRecordModel struct {
	AggregateModel
	CustomerID     uuid.UUID                `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal          `gorm:"type:decimal(12,4);not null"`
	PaymentDate    time.Time                `gorm:"type:date;not null;index"`
	Source         payment.PaymentSource    `gorm:"type:varchar(20);not null"`
	Reference      string                   `gorm:"type:varchar(200)"`
	Status         payment.AllocationStatus `gorm:"type:varchar(20);not null;index"`
	TotalAllocated decimal.Decimal          `gorm:"type:decimal(12,4);not null"`
	ExcessAmount   decimal.Decimal          `gorm:"type:decimal(12,4);not null"`
	DeleteReason   string                   `gorm:"type:varchar(500)"`
	DeletedAt      gorm.DeletedAt           `gorm:"index"`

	Allocations []PaymentAllocationModel `gorm:"foreignKey:PaymentRecordID"`
}

// TableName returns the table name for GORM
func (PaymentRecordModel) TableName() string {
	return "payment_records"
}

// ToDomain converts the persistence model to a domain PaymentRecord
func (m *PaymentRecordModel) ToDomain() *payment.PaymentRecord {
	p := &payment.PaymentRecord{
		CustomerID:     m.CustomerID,
		Amount:         valueobject.NewMoneyCAD(m.Amount),
		PaymentDate:    m.PaymentDate,
		Source:         m.Source,
		Reference:      m.Reference,
		Status:         m.Status,
		TotalAllocated: valueobject.NewMoneyCAD(m.TotalAllocated),
		ExcessAmount:   valueobject.NewMoneyCAD(m.ExcessAmount),
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	p.Allocations = make([]*payment.PaymentAllocation, len(m.Allocations))
	for i := range m.Allocations {
		p.Allocations[i] = m.Allocations[i].ToDomain()
	}
	return p
}

// FromDomain populates the persistence model from a domain PaymentRecord
func (m *PaymentRecordModel) FromDomain(p *payment.PaymentRecord) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.CustomerID = p.CustomerID
	m.Amount = p.Amount.Amount()
	m.PaymentDate = p.PaymentDate
	m.Source = p.Source
	m.Reference = p.Reference
	m.Status = p.Status
	m.TotalAllocated = p.TotalAllocated.Amount()
	m.ExcessAmount = p.ExcessAmount.Amount()
	m.Allocations = make([]PaymentAllocationModel, len(p.Allocations))
	for i, a := range p.Allocations {
		m.Allocations[i].FromDomain(a)
	}
}

// PaymentAllocationModel is the persistence model for payment allocation rows.
type PaymentAllocationModel struct {
	BaseModel
	PaymentRecordID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	AllocatedAmount  decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	CreditAmountUsed decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Sequence         int             `gorm:"not null;default:0"`
	ResultingStatus  string          `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (PaymentAllocationModel) TableName() string {
	return "payment_allocations"
}

// ToDomain converts the persistence model to a domain PaymentAllocation
func (m *PaymentAllocationModel) ToDomain() *payment.PaymentAllocation {
	return &payment.PaymentAllocation{
		BaseEntity:       m.BaseModel.ToDomain(),
		PaymentRecordID:  m.PaymentRecordID,
		InvoiceID:        m.InvoiceID,
		AllocatedAmount:  valueobject.NewMoneyCAD(m.AllocatedAmount),
		CreditAmountUsed: valueobject.NewMoneyCAD(m.CreditAmountUsed),
		Sequence:         m.Sequence,
		ResultingStatus:  m.ResultingStatus,
	}
}

// FromDomain populates the persistence model from a domain PaymentAllocation
func (m *PaymentAllocationModel) FromDomain(a *payment.PaymentAllocation) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.PaymentRecordID = a.PaymentRecordID
	m.InvoiceID = a.InvoiceID
	m.AllocatedAmount = a.AllocatedAmount.Amount()
	m.CreditAmountUsed = a.CreditAmountUsed.Amount()
	m.Sequence = a.Sequence
	m.ResultingStatus = a.ResultingStatus
}

// CustomerCreditModel is the persistence model for the CustomerCredit aggregate root.
type CustomerCreditModel struct {
	AggregateModel
	CustomerID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	SourcePaymentID *uuid.UUID           `gorm:"type:uuid;index"`
	OriginalAmount  decimal.Decimal      `gorm:"type:decimal(12,4);not null"`
	CurrentBalance  decimal.Decimal      `gorm:"type:decimal(12,4);not null"`
	Status          payment.CreditStatus `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (CustomerCreditModel) TableName() string {
	return "customer_credits"
}

// ToDomain converts the persistence model to a domain CustomerCredit
func (m *CustomerCreditModel) ToDomain() *payment.CustomerCredit {
	c := &payment.CustomerCredit{
		CustomerID:      m.CustomerID,
		SourcePaymentID: m.SourcePaymentID,
		OriginalAmount:  valueobject.NewMoneyCAD(m.OriginalAmount),
		CurrentBalance:  valueobject.NewMoneyCAD(m.CurrentBalance),
		Status:          m.Status,
	}
	m.PopulateAggregateRoot(&c.BaseAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain CustomerCredit
func (m *CustomerCreditModel) FromDomain(c *payment.CustomerCredit) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.CustomerID = c.CustomerID
	m.SourcePaymentID = c.SourcePaymentID
	m.OriginalAmount = c.OriginalAmount.Amount()
	m.CurrentBalance = c.CurrentBalance.Amount()
	m.Status = c.Status
}

// CreditUsageModel is the persistence model for credit usage audit rows.
type CreditUsageModel struct {
	BaseModel
	CreditID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	AmountUsed decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	UsedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CreditUsageModel) TableName() string {
	return "credit_usages"
}

// ToDomain converts the persistence model to a domain CreditUsage
func (m *CreditUsageModel) ToDomain() *payment.CreditUsage {
	return &payment.CreditUsage{
		BaseEntity: m.BaseModel.ToDomain(),
		CreditID:   m.CreditID,
		InvoiceID:  m.InvoiceID,
		PaymentID:  m.PaymentID,
		AmountUsed: valueobject.NewMoneyCAD(m.AmountUsed),
		UsedAt:     m.UsedAt,
	}
}

// FromDomain populates the persistence model from a domain CreditUsage
func (m *CreditUsageModel) FromDomain(u *payment.CreditUsage) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.CreditID = u.CreditID
	m.InvoiceID = u.InvoiceID
	m.PaymentID = u.PaymentID
	m.AmountUsed = u.AmountUsed.Amount()
	m.UsedAt = u.UsedAt
}

// RefundRequestModel is the persistence model for the RefundRequest aggregate root.
type RefundRequestModel struct {
	AggregateModel
	Source       payment.RefundSource `gorm:"type:varchar(20);not null"`
	SourceID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	CustomerID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	RefundAmount decimal.Decimal      `gorm:"type:decimal(12,4);not null"`
	Method       string               `gorm:"type:varchar(50);not null"`
	Reason       string               `gorm:"type:varchar(500)"`
	Status       payment.RefundStatus `gorm:"type:varchar(20);not null;index"`
	ApprovedBy   string               `gorm:"type:varchar(200)"`
	ApprovedAt   *time.Time
	Reference    string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (RefundRequestModel) TableName() string {
	return "refund_requests"
}

// ToDomain converts the persistence model to a domain RefundRequest
func (m *RefundRequestModel) ToDomain() *payment.RefundRequest {
	r := &payment.RefundRequest{
		Source:       m.Source,
		SourceID:     m.SourceID,
		CustomerID:   m.CustomerID,
		RefundAmount: valueobject.NewMoneyCAD(m.RefundAmount),
		Method:       m.Method,
		Reason:       m.Reason,
		Status:       m.Status,
		ApprovedBy:   m.ApprovedBy,
		ApprovedAt:   m.ApprovedAt,
		Reference:    m.Reference,
	}
	m.PopulateAggregateRoot(&r.BaseAggregateRoot)
	return r
}

// FromDomain populates the persistence model from a domain RefundRequest
func (m *RefundRequestModel) FromDomain(r *payment.RefundRequest) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.Source = r.Source
	m.SourceID = r.SourceID
	m.CustomerID = r.CustomerID
	m.RefundAmount = r.RefundAmount.Amount()
	m.Method = r.Method
	m.Reason = r.Reason
	m.Status = r.Status
	m.ApprovedBy = r.ApprovedBy
	m.ApprovedAt = r.ApprovedAt
	m.Reference = r.Reference
}

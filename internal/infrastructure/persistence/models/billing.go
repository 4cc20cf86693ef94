package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiffin/backend/internal/domain/billing"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
)

// OrderModel is the persistence model for tiffin orders.
type OrderModel struct {
	BaseModel
	CustomerID   uuid.UUID            `gorm:"type:uuid;not null;index"`
	Name         string               `gorm:"type:varchar(200);not null"`
	Price        decimal.Decimal      `gorm:"type:decimal(12,4);not null"`
	ExtraPrice   *decimal.Decimal     `gorm:"type:decimal(12,4)"`
	WeekdaysOnly bool                 `gorm:"not null;default:false"`
	StartDate    time.Time            `gorm:"type:date;not null"`
	EndDate      *time.Time           `gorm:"type:date"`
	Active       bool                 `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *billing.Order {
	var extra *valueobject.Money
	if m.ExtraPrice != nil {
		e := valueobject.NewMoneyCAD(*m.ExtraPrice)
		extra = &e
	}
	return &billing.Order{
		BaseEntity:   m.BaseModel.ToDomain(),
		CustomerID:   m.CustomerID,
		Name:         m.Name,
		Price:        valueobject.NewMoneyCAD(m.Price),
		ExtraPrice:   extra,
		WeekdaysOnly: m.WeekdaysOnly,
		StartDate:    m.StartDate,
		EndDate:      m.EndDate,
		Active:       m.Active,
	}
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *billing.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.CustomerID = o.CustomerID
	m.Name = o.Name
	m.Price = o.Price.Amount()
	m.ExtraPrice = nil
	if o.ExtraPrice != nil {
		amount := o.ExtraPrice.Amount()
		m.ExtraPrice = &amount
	}
	m.WeekdaysOnly = o.WeekdaysOnly
	m.StartDate = o.StartDate
	m.EndDate = o.EndDate
	m.Active = o.Active
}

// CalendarEntryModel is the persistence model for delivery calendar entries.
// One row per order per day; billing reads these, delivery tracking writes them.
type CalendarEntryModel struct {
	BaseModel
	OrderID uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_calendar_order_date,priority:1"`
	Date    time.Time              `gorm:"type:date;not null;uniqueIndex:idx_calendar_order_date,priority:2"`
	Status  billing.DeliveryStatus `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (CalendarEntryModel) TableName() string {
	return "calendar_entries"
}

// ToDomain converts the persistence model to a domain CalendarEntry
func (m *CalendarEntryModel) ToDomain() *billing.CalendarEntry {
	return &billing.CalendarEntry{
		BaseEntity: m.BaseModel.ToDomain(),
		OrderID:    m.OrderID,
		Date:       m.Date,
		Status:     m.Status,
	}
}

// FromDomain populates the persistence model from a domain CalendarEntry
func (m *CalendarEntryModel) FromDomain(e *billing.CalendarEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.OrderID = e.OrderID
	m.Date = e.Date
	m.Status = e.Status
}

// OrderBillingModel is the persistence model for the OrderBilling aggregate root.
type OrderBillingModel struct {
	AggregateModel
	OrderID        uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_order_billing_order_month,priority:1"`
	CustomerID     uuid.UUID                `gorm:"type:uuid;not null;index"`
	BillingMonth   valueobject.BillingMonth `gorm:"type:varchar(7);not null;uniqueIndex:idx_order_billing_order_month,priority:2"`
	DeliveredCount int                      `gorm:"not null;default:0"`
	AbsentCount    int                      `gorm:"not null;default:0"`
	ExtraCount     int                      `gorm:"not null;default:0"`
	ApplicableDays int                      `gorm:"not null;default:0"`
	TotalDays      int                      `gorm:"not null;default:0"`
	PerTiffinPrice decimal.Decimal          `gorm:"type:decimal(12,6);not null"`
	BaseAmount     decimal.Decimal          `gorm:"type:decimal(12,4);not null"`
	ExtraAmount    decimal.Decimal          `gorm:"type:decimal(12,4);not null"`
	TotalAmount    decimal.Decimal          `gorm:"type:decimal(12,4);not null"`
	Status         billing.BillingStatus    `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (OrderBillingModel) TableName() string {
	return "order_billings"
}

// ToDomain converts the persistence model to a domain OrderBilling
func (m *OrderBillingModel) ToDomain() *billing.OrderBilling {
	ob := &billing.OrderBilling{
		OrderID:        m.OrderID,
		CustomerID:     m.CustomerID,
		BillingMonth:   m.BillingMonth,
		DeliveredCount: m.DeliveredCount,
		AbsentCount:    m.AbsentCount,
		ExtraCount:     m.ExtraCount,
		ApplicableDays: m.ApplicableDays,
		TotalDays:      m.TotalDays,
		PerTiffinPrice: valueobject.NewMoneyCAD(m.PerTiffinPrice),
		BaseAmount:     valueobject.NewMoneyCAD(m.BaseAmount),
		ExtraAmount:    valueobject.NewMoneyCAD(m.ExtraAmount),
		TotalAmount:    valueobject.NewMoneyCAD(m.TotalAmount),
		Status:         m.Status,
	}
	m.PopulateAggregateRoot(&ob.BaseAggregateRoot)
	return ob
}

// FromDomain populates the persistence model from a domain OrderBilling
func (m *OrderBillingModel) FromDomain(ob *billing.OrderBilling) {
	m.FromDomainAggregateRoot(ob.BaseAggregateRoot)
	m.OrderID = ob.OrderID
	m.CustomerID = ob.CustomerID
	m.BillingMonth = ob.BillingMonth
	m.DeliveredCount = ob.DeliveredCount
	m.AbsentCount = ob.AbsentCount
	m.ExtraCount = ob.ExtraCount
	m.ApplicableDays = ob.ApplicableDays
	m.TotalDays = ob.TotalDays
	m.PerTiffinPrice = ob.PerTiffinPrice.Amount()
	m.BaseAmount = ob.BaseAmount.Amount()
	m.ExtraAmount = ob.ExtraAmount.Amount()
	m.TotalAmount = ob.TotalAmount.Amount()
	m.Status = ob.Status
}

// CombinedInvoiceModel is the persistence model for the CombinedInvoice aggregate root.
type CombinedInvoiceModel struct {
	AggregateModel
	CustomerID      uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_customer_month,priority:1"`
	BillingMonth    valueobject.BillingMonth `gorm:"type:varchar(7);not null;uniqueIndex:idx_invoice_customer_month,priority:2"`
	OrderBillingIDs UUIDArray                `gorm:"type:jsonb;not null;default:'[]'"`
	TotalAmount     decimal.Decimal          `gorm:"type:decimal(12,4);not null"`
	AmountPaid      decimal.Decimal          `gorm:"type:decimal(12,4);not null"`
	CreditApplied   decimal.Decimal          `gorm:"type:decimal(12,4);not null"`
	CanApprove      bool                     `gorm:"not null;default:false"`
	Status          billing.InvoiceStatus    `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (CombinedInvoiceModel) TableName() string {
	return "combined_invoices"
}

// ToDomain converts the persistence model to a domain CombinedInvoice
func (m *CombinedInvoiceModel) ToDomain() *billing.CombinedInvoice {
	ci := &billing.CombinedInvoice{
		CustomerID:      m.CustomerID,
		BillingMonth:    m.BillingMonth,
		OrderBillingIDs: append([]uuid.UUID(nil), m.OrderBillingIDs...),
		TotalAmount:     valueobject.NewMoneyCAD(m.TotalAmount),
		AmountPaid:      valueobject.NewMoneyCAD(m.AmountPaid),
		CreditApplied:   valueobject.NewMoneyCAD(m.CreditApplied),
		CanApprove:      m.CanApprove,
		Status:          m.Status,
	}
	m.PopulateAggregateRoot(&ci.BaseAggregateRoot)
	return ci
}

// FromDomain populates the persistence model from a domain CombinedInvoice
func (m *CombinedInvoiceModel) FromDomain(ci *billing.CombinedInvoice) {
	m.FromDomainAggregateRoot(ci.BaseAggregateRoot)
	m.CustomerID = ci.CustomerID
	m.BillingMonth = ci.BillingMonth
	m.OrderBillingIDs = UUIDArray(ci.OrderBillingIDs)
	m.TotalAmount = ci.TotalAmount.Amount()
	m.AmountPaid = ci.AmountPaid.Amount()
	m.CreditApplied = ci.CreditApplied.Amount()
	m.CanApprove = ci.CanApprove
	m.Status = ci.Status
}

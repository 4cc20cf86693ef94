package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/tiffin/backend/internal/domain/shared"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
)

// Order is a meal-subscription order. Orders are maintained by the order
// management workflows; the billing engine treats them as read-mostly input
// and only ever reads price, schedule and date-range fields.
type Order struct {
	shared.BaseEntity
	CustomerID uuid.UUID
	Name       string
	// Price is the full monthly meal-plan price.
	Price valueobject.Money
	// ExtraPrice, when set, overrides the per-tiffin price for extra
	// deliveries. When nil, extras are billed at the derived per-tiffin price.
	ExtraPrice   *valueobject.Money
	WeekdaysOnly bool
	StartDate    time.Time
	// EndDate is nil for open-ended orders.
	EndDate *time.Time
	Active  bool
}

// NewOrder creates an order with the given pricing and schedule
func NewOrder(customerID uuid.UUID, name string, price valueobject.Money, weekdaysOnly bool, startDate time.Time) (*Order, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("VALIDATION_CUSTOMER_REQUIRED", "Customer ID is required")
	}
	if price.IsNegative() {
		return nil, shared.NewValidationError("VALIDATION_NEGATIVE_PRICE", "Order price cannot be negative")
	}
	return &Order{
		BaseEntity:   shared.NewBaseEntity(),
		CustomerID:   customerID,
		Name:         name,
		Price:        price,
		WeekdaysOnly: weekdaysOnly,
		StartDate:    startDate,
		Active:       true,
	}, nil
}

// ActiveOn reports whether the order covers the given date
func (o *Order) ActiveOn(date time.Time) bool {
	day := date.Truncate(24 * time.Hour)
	start := o.StartDate.Truncate(24 * time.Hour)
	if day.Before(start) {
		return false
	}
	if o.EndDate != nil && day.After(o.EndDate.Truncate(24*time.Hour)) {
		return false
	}
	return true
}

// ExtraUnitPrice returns the price charged per extra tiffin: the order's
// override when present, otherwise the supplied derived per-tiffin price.
func (o *Order) ExtraUnitPrice(perTiffin valueobject.Money) valueobject.Money {
	if o.ExtraPrice != nil {
		return *o.ExtraPrice
	}
	return perTiffin
}

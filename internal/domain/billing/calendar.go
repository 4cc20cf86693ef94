package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/tiffin/backend/internal/domain/shared"
)

// DeliveryStatus is the per-day delivery outcome recorded on the calendar
type DeliveryStatus string

const (
	// DeliveryStatusDelivered - the scheduled tiffin was delivered
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	// DeliveryStatusAbsent - the customer skipped the day; deducted from billing
	DeliveryStatusAbsent DeliveryStatus = "absent"
	// DeliveryStatusExtra - an additional tiffin beyond the scheduled one
	DeliveryStatusExtra DeliveryStatus = "extra"
)

// IsValid checks if the delivery status is valid
func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryStatusDelivered, DeliveryStatusAbsent, DeliveryStatusExtra:
		return true
	}
	return false
}

// CalendarEntry is one order-day on the delivery calendar. Entries are
// written by the delivery-tracking workflows and are strictly read-only
// input to billing. A day with no entry contributes nothing to billing.
// Unique per (order, date).
type CalendarEntry struct {
	shared.BaseEntity
	OrderID uuid.UUID
	Date    time.Time
	Status  DeliveryStatus
}

// NewCalendarEntry creates a calendar entry for an order-day
func NewCalendarEntry(orderID uuid.UUID, date time.Time, status DeliveryStatus) (*CalendarEntry, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewValidationError("VALIDATION_ORDER_REQUIRED", "Order ID is required")
	}
	if !status.IsValid() {
		return nil, shared.NewValidationError("VALIDATION_INVALID_STATUS", "Invalid delivery status: "+string(status))
	}
	return &CalendarEntry{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		Date:       date.Truncate(24 * time.Hour),
		Status:     status,
	}, nil
}

package billing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tiffin/backend/internal/domain/shared"
	"github.com/tiffin/backend/internal/domain/shared/valueobject"
)

// BillingBreakdown is the result of prorating one order's calendar month.
// Amount fields are rounded to the currency minor unit; the rounding is
// applied once, on the aggregated amounts, never per entry.
type BillingBreakdown struct {
	DeliveredCount int
	AbsentCount    int
	ExtraCount     int
	// ApplicableDays is the number of distinct calendar days in the month
	// that carry an entry and fall inside the order's active range.
	ApplicableDays int
	// TotalDays is the proration divisor: weekday count for weekdays-only
	// orders, full day count otherwise.
	TotalDays       int
	PerTiffinPrice  valueobject.Money
	BaseAmount      valueobject.Money
	ExtraAmount     valueobject.Money
	AbsentDeduction valueobject.Money
	TotalAmount     valueobject.Money
}

// Calculator turns an order's calendar entries for one billing month into
// a monetary breakdown. It is a pure computation over its inputs and holds
// no state of its own.
type Calculator struct{}

// NewCalculator creates a billing calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Compute prorates the order's monthly price over the billing month and
// applies the delivered/absent/extra adjustments from the calendar entries.
//
// Entries outside the billing month or outside the order's active date
// range are ignored. Duplicate entries for the same day violate the
// calendar's uniqueness contract and surface as an integrity error via
// the applicable-days audit.
func (c *Calculator) Compute(order *Order, month valueobject.BillingMonth, entries []*CalendarEntry) (*BillingBreakdown, error) {
	if order == nil {
		return nil, shared.NewValidationError("VALIDATION_ORDER_REQUIRED", "Order is required")
	}
	if month.IsZero() {
		return nil, shared.NewValidationError("VALIDATION_MONTH_REQUIRED", "Billing month is required")
	}

	totalDays := month.TotalDays(order.WeekdaysOnly)
	if totalDays == 0 {
		return nil, shared.NewValidationError("VALIDATION_EMPTY_MONTH", "Billing month has no billable days")
	}

	perTiffin, err := order.Price.Divide(decimal.NewFromInt(int64(totalDays)))
	if err != nil {
		return nil, err
	}

	var delivered, absent, extra int
	seenDays := make(map[string]struct{})
	for _, entry := range entries {
		if entry.OrderID != order.ID {
			continue
		}
		if !month.Contains(entry.Date) || !order.ActiveOn(entry.Date) {
			continue
		}
		seenDays[entry.Date.Format("2006-01-02")] = struct{}{}
		switch entry.Status {
		case DeliveryStatusDelivered:
			delivered++
		case DeliveryStatusAbsent:
			absent++
		case DeliveryStatusExtra:
			extra++
		}
	}

	applicableDays := len(seenDays)
	if applicableDays != delivered+absent+extra {
		return nil, shared.NewIntegrityError("INTEGRITY_APPLICABLE_DAYS",
			fmt.Sprintf("applicable days %d does not equal delivered %d + absent %d + extra %d for order %s month %s",
				applicableDays, delivered, absent, extra, order.ID, month))
	}

	deliveredAmount := perTiffin.MultiplyByInt(int64(delivered))
	absentDeduction := perTiffin.MultiplyByInt(int64(absent))
	extraAmount := order.ExtraUnitPrice(perTiffin).MultiplyByInt(int64(extra))

	// Single rounding point: the total is rounded from the full-precision
	// sum, then clamped to zero. Component amounts are rounded for
	// presentation; the total is authoritative.
	total := deliveredAmount.MustSubtract(absentDeduction).MustAdd(extraAmount).
		RoundMinorUnit().
		ClampNonNegative()

	return &BillingBreakdown{
		DeliveredCount:  delivered,
		AbsentCount:     absent,
		ExtraCount:      extra,
		ApplicableDays:  applicableDays,
		TotalDays:       totalDays,
		PerTiffinPrice:  perTiffin,
		BaseAmount:      deliveredAmount.MustSubtract(absentDeduction).RoundMinorUnit(),
		ExtraAmount:     extraAmount.RoundMinorUnit(),
		AbsentDeduction: absentDeduction.RoundMinorUnit(),
		TotalAmount:     total,
	}, nil
}

package valueobject

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// BillingMonth is a value object identifying the calendar month an invoice
// covers, in YYYY-MM form.
type BillingMonth struct {
	year  int
	month time.Month
}

// ParseBillingMonth parses a YYYY-MM string into a BillingMonth
func ParseBillingMonth(s string) (BillingMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return BillingMonth{}, fmt.Errorf("invalid billing month %q: %w", s, err)
	}
	return BillingMonth{year: t.Year(), month: t.Month()}, nil
}

// NewBillingMonth creates a BillingMonth from a year and month
func NewBillingMonth(year int, month time.Month) BillingMonth {
	return BillingMonth{year: year, month: month}
}

// BillingMonthOf returns the BillingMonth containing the given date
func BillingMonthOf(t time.Time) BillingMonth {
	return BillingMonth{year: t.Year(), month: t.Month()}
}

// Year returns the calendar year
func (bm BillingMonth) Year() int {
	return bm.year
}

// Month returns the calendar month
func (bm BillingMonth) Month() time.Month {
	return bm.month
}

// IsZero reports whether the BillingMonth is the zero value
func (bm BillingMonth) IsZero() bool {
	return bm.year == 0
}

// String returns the YYYY-MM representation
func (bm BillingMonth) String() string {
	return fmt.Sprintf("%04d-%02d", bm.year, int(bm.month))
}

// Start returns midnight on the first day of the month (UTC)
func (bm BillingMonth) Start() time.Time {
	return time.Date(bm.year, bm.month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns midnight on the first day of the following month (UTC).
// The month covers [Start, End).
func (bm BillingMonth) End() time.Time {
	return bm.Start().AddDate(0, 1, 0)
}

// DayCount returns the number of calendar days in the month
func (bm BillingMonth) DayCount() int {
	return int(bm.End().Sub(bm.Start()).Hours() / 24)
}

// WeekdayCount returns the number of Monday-Friday days in the month
func (bm BillingMonth) WeekdayCount() int {
	count := 0
	for d := bm.Start(); d.Before(bm.End()); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

// TotalDays returns the day count used as the per-tiffin price divisor:
// weekday count when the order delivers weekdays only, else all days.
func (bm BillingMonth) TotalDays(weekdaysOnly bool) int {
	if weekdaysOnly {
		return bm.WeekdayCount()
	}
	return bm.DayCount()
}

// Contains reports whether the given date falls within the month
func (bm BillingMonth) Contains(t time.Time) bool {
	return t.Year() == bm.year && t.Month() == bm.month
}

// Before reports whether bm is strictly earlier than other.
// This ordering is load-bearing: the payment allocator's auto-select
// walks unpaid invoices oldest billing month first.
func (bm BillingMonth) Before(other BillingMonth) bool {
	if bm.year != other.year {
		return bm.year < other.year
	}
	return bm.month < other.month
}

// Value implements driver.Valuer for database storage as YYYY-MM
func (bm BillingMonth) Value() (driver.Value, error) {
	return bm.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (bm *BillingMonth) Scan(value any) error {
	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	default:
		return fmt.Errorf("cannot scan %T into BillingMonth", value)
	}
	parsed, err := ParseBillingMonth(strVal)
	if err != nil {
		return err
	}
	*bm = parsed
	return nil
}

// MarshalJSON implements json.Marshaler
func (bm BillingMonth) MarshalJSON() ([]byte, error) {
	return []byte(`"` + bm.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (bm *BillingMonth) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid billing month JSON: %s", s)
	}
	parsed, err := ParseBillingMonth(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*bm = parsed
	return nil
}

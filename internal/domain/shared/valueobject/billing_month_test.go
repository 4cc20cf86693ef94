package valueobject

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBillingMonth(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "valid month", input: "2025-06", want: "2025-06"},
		{name: "january", input: "2025-01", want: "2025-01"},
		{name: "invalid month number", input: "2025-13", wantErr: true},
		{name: "missing month", input: "2025", wantErr: true},
		{name: "full date rejected", input: "2025-06-15", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bm, err := ParseBillingMonth(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, bm.String())
		})
	}
}

func TestBillingMonth_DayCounts(t *testing.T) {
	tests := []struct {
		name         string
		month        string
		dayCount     int
		weekdayCount int
	}{
		{name: "june 2025", month: "2025-06", dayCount: 30, weekdayCount: 21},
		{name: "july 2025", month: "2025-07", dayCount: 31, weekdayCount: 23},
		{name: "february 2024 leap", month: "2024-02", dayCount: 29, weekdayCount: 21},
		{name: "february 2025", month: "2025-02", dayCount: 28, weekdayCount: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bm, err := ParseBillingMonth(tt.month)
			require.NoError(t, err)
			assert.Equal(t, tt.dayCount, bm.DayCount())
			assert.Equal(t, tt.weekdayCount, bm.WeekdayCount())
			assert.Equal(t, tt.dayCount, bm.TotalDays(false))
			assert.Equal(t, tt.weekdayCount, bm.TotalDays(true))
		})
	}
}

func TestBillingMonth_Range(t *testing.T) {
	bm, err := ParseBillingMonth("2025-06")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), bm.Start())
	assert.Equal(t, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), bm.End())

	assert.True(t, bm.Contains(time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)))
	assert.True(t, bm.Contains(time.Date(2025, time.June, 30, 23, 59, 0, 0, time.UTC)))
	assert.False(t, bm.Contains(time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, bm.Contains(time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC)))
}

func TestBillingMonth_Before(t *testing.T) {
	jan, _ := ParseBillingMonth("2025-01")
	jun, _ := ParseBillingMonth("2025-06")
	prevDec, _ := ParseBillingMonth("2024-12")

	assert.True(t, jan.Before(jun))
	assert.False(t, jun.Before(jan))
	assert.True(t, prevDec.Before(jan))
	assert.False(t, jan.Before(jan))
}

func TestBillingMonth_ScanRoundTrip(t *testing.T) {
	bm, err := ParseBillingMonth("2025-09")
	require.NoError(t, err)

	v, err := bm.Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-09", v)

	var scanned BillingMonth
	require.NoError(t, scanned.Scan("2025-09"))
	assert.Equal(t, bm, scanned)

	var fromJSON BillingMonth
	require.NoError(t, fromJSON.UnmarshalJSON([]byte(`"2025-09"`)))
	assert.Equal(t, bm, fromJSON)
}

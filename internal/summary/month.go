// Package summary computes the monthly view over ledger records: the month's date range,
// the filtered and sorted record list, and the income, expense and remaining totals.
package summary

import (
	"time"

	"famledger/internal/core"
)

// MonthRange returns the half-open range [first day of month, first day of next month).
// December rolls over into January of the next year.
func MonthRange(year int, month time.Month) core.DateRange {
	start := core.NewDate(year, month, 1)
	return core.DateRange{Start: start, End: start.AddMonths(1)}
}

// ShiftMonth moves (year, month) by delta months in either direction.
func ShiftMonth(year int, month time.Month, delta int) (int, time.Month) {
	d := core.NewDate(year, month, 1).AddMonths(delta)
	return d.Year(), d.Month()
}

// ValidMonth reports whether the pair names a real calendar month.
func ValidMonth(year int, month time.Month) bool {
	return year >= 1 && year <= 9999 && month >= time.January && month <= time.December
}

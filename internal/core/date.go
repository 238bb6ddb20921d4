package core

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date layout used everywhere a date crosses a boundary.
const DateLayout = "2006-01-02"

type (
	// Date is a civil calendar date. The wrapped time is always midnight UTC so that
	// no timezone offset ever shifts the day.
	Date struct {
		time.Time
	}

	// DateRange is the half-open interval [Start, End).
	DateRange struct {
		Start Date `json:"start"`
		End   Date `json:"end"`
	}
)

// NewDate creates a new Date from year, month, day. Out of range days normalize the
// way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock and location of t, keeping its wall-clock calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// String returns the zero-padded ISO form.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year(), int(d.Month()), d.Day())
}

// MonthStart returns the first day of d's month.
func (d Date) MonthStart() Date {
	return NewDate(d.Year(), d.Month(), 1)
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool { return d.Time.After(o.Time) }

// Equal reports whether d and o are the same calendar date.
func (d Date) Equal(o Date) bool { return d.Time.Equal(o.Time) }

// Compare returns -1, 0 or +1 as d is before, equal to or after o.
func (d Date) Compare(o Date) int { return d.Time.Compare(o.Time) }

// DaysUntil returns the signed number of whole days from d to o.
func (d Date) DaysUntil(o Date) int {
	return int(o.Time.Sub(d.Time).Hours() / 24)
}

// AddMonths advances d by n calendar months (n may be negative). The day of month is
// clamped to the length of the target month, so Jan 31 + 1 is the last day of February.
func (d Date) AddMonths(n int) Date {
	idx := int(d.Month()) - 1 + n
	year := d.Year() + floorDiv(idx, 12)
	month := time.Month(positiveMod(idx, 12) + 1)

	day := d.Day()
	if dim := DaysInMonth(year, month); day > dim {
		day = dim
	}
	return NewDate(year, month, day)
}

// Contains reports whether d falls inside the half-open range.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && d.Before(r.End)
}

// DaysInMonth returns the number of days of the given month, using day 0 of the
// following month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddCalendarMonths adds n calendar months to an ISO date string.
//
//	AddCalendarMonths("2024-01-31", 1)  -> "2024-02-29"
//	AddCalendarMonths("2024-11-15", 2)  -> "2025-01-15"
func AddCalendarMonths(isoDate string, n int) (string, error) {
	d, err := ParseDate(isoDate)
	if err != nil {
		return "", err
	}
	return d.AddMonths(n).String(), nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON encodes the date as an ISO string, or null when zero.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts an ISO string or null.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("date must be a JSON string, got %s", s)
	}
	return d.UnmarshalText([]byte(s[1 : len(s)-1]))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func positiveMod(a, b int) int {
	return ((a % b) + b) % b
}

// Package core provides money parsing and handling utilities.
//
// This file contains the conversion between decimal currency amounts and integer
// minor units (cents). Every split and every sum is done in cents; decimals only
// appear at the boundaries (parsing, storage columns, JSON).
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor units. Stored record amounts are always positive;
// aggregates such as a remaining balance may be negative.
type Money struct {
	Cents int64
}

// MaxMinorUnits bounds a single amount: 100 billion in major units. Sums over any
// realistic number of records stay far inside int64.
const MaxMinorUnits int64 = 1e13

var maxMinorUnits = decimal.NewFromInt(MaxMinorUnits)

// ExceedsMaxAmount reports whether amount, rounded to cents, is above MaxMinorUnits in
// absolute value. Such amounts cannot be converted to cents without overflow.
func ExceedsMaxAmount(amount decimal.Decimal) bool {
	return amount.Shift(2).Round(0).Abs().GreaterThan(maxMinorUnits)
}

// ToMinorUnits converts a decimal amount to cents, rounding half away from zero on
// the third decimal place.
//
//	ToMinorUnits(12.345) -> 1235
//	ToMinorUnits(12.344) -> 1234
//
// The amount must not exceed MaxMinorUnits; callers check with ExceedsMaxAmount.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// FromMinorUnits converts cents back to an exact two-place decimal.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// MoneyFromDecimal rounds a decimal amount to the nearest cent.
func MoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Cents: ToMinorUnits(amount)}
}

// ParseAmount parses a positive decimal amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs, empty
// strings, values that round to zero cents and values above MaxMinorUnits are rejected
// with ErrInvalidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if ExceedsMaxAmount(d) || ToMinorUnits(d) <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Decimal returns the exact two-place decimal value.
func (m Money) Decimal() decimal.Decimal {
	return FromMinorUnits(m.Cents)
}

// String formats the amount with exactly two decimals, e.g. "33.34".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Add returns m + o.
func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

// Sub returns m - o.
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// Abs returns the absolute value.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool { return m.Cents > 0 }

// MarshalJSON encodes the amount as a fixed two-place decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON number or a decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	if ExceedsMaxAmount(d) {
		return ErrInvalidAmount
	}
	*m = MoneyFromDecimal(d)
	return nil
}

package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.004", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"100000000000", 10000000000000, true},
		{"100000000000.01", 0, false},
		{"184467440737095516.17", 0, false}, // wraps to 1 cent in int64
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || ToMinorUnits(got) != tc.out {
				t.Fatalf("%q expected %d, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMinorUnitsRoundTrip(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"100", 10000},
		{"33.33", 3333},
		{"0.125", 13},
		{"0.124", 12},
		{"19.999", 2000},
	}
	for _, tc := range cases {
		got := ToMinorUnits(decimal.RequireFromString(tc.in))
		if got != tc.want {
			t.Fatalf("%s expected %d, got %d", tc.in, tc.want, got)
		}
		if !FromMinorUnits(got).Equal(decimal.New(tc.want, -2)) {
			t.Fatalf("%d did not convert back exactly", got)
		}
	}
}

func TestMoneyString(t *testing.T) {
	if s := (Money{Cents: 3334}).String(); s != "33.34" {
		t.Fatalf("expected 33.34, got %s", s)
	}
	if s := (Money{Cents: 5}).String(); s != "0.05" {
		t.Fatalf("expected 0.05, got %s", s)
	}
	if s := (Money{Cents: -1250}).String(); s != "-12.50" {
		t.Fatalf("expected -12.50, got %s", s)
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(Money{Cents: 5000})
	if err != nil || string(b) != `"50.00"` {
		t.Fatalf("unexpected json %s (err=%v)", b, err)
	}
	var m Money
	if err := json.Unmarshal([]byte(`12.5`), &m); err != nil || m.Cents != 1250 {
		t.Fatalf("number: got %d (err=%v)", m.Cents, err)
	}
	if err := json.Unmarshal([]byte(`"7.01"`), &m); err != nil || m.Cents != 701 {
		t.Fatalf("string: got %d (err=%v)", m.Cents, err)
	}
}

func TestExceedsMaxAmount(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"100000000000", false},
		{"100000000000.004", false},
		{"100000000000.005", true},
		{"-100000000000.01", true},
		{"184467440737095516.17", true},
		{"1e30", true},
	}
	for _, tc := range cases {
		if got := ExceedsMaxAmount(decimal.RequireFromString(tc.in)); got != tc.want {
			t.Fatalf("%s expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestMoneyJSONRejectsOverflow(t *testing.T) {
	var m Money
	if err := json.Unmarshal([]byte(`"184467440737095516.17"`), &m); err == nil {
		t.Fatalf("expected error, got %d cents", m.Cents)
	}
}

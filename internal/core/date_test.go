package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAddCalendarMonths(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"2024-01-31", 1, "2024-02-29"}, // leap year
		{"2023-01-31", 1, "2023-02-28"},
		{"2024-11-15", 2, "2025-01-15"}, // year rollover
		{"2024-05-10", 0, "2024-05-10"},
		{"2024-03-31", 1, "2024-04-30"},
		{"2024-12-31", 1, "2025-01-31"},
		{"2024-01-31", 13, "2025-02-28"},
		{"2024-03-31", -1, "2024-02-29"},
		{"2024-01-15", -1, "2023-12-15"},
		{"2024-01-15", -25, "2021-12-15"},
	}
	for _, tc := range cases {
		got, err := AddCalendarMonths(tc.in, tc.n)
		if err != nil {
			t.Fatalf("%s %+d: unexpected error %v", tc.in, tc.n, err)
		}
		if got != tc.want {
			t.Fatalf("%s %+d: expected %s, got %s", tc.in, tc.n, tc.want, got)
		}
	}
}

func TestAddCalendarMonthsRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "2024-13-01", "2024/01/01", "31-01-2024"} {
		if _, err := AddCalendarMonths(in, 1); err == nil {
			t.Fatalf("%q expected error", in)
		}
	}
}

func TestAddMonthsRoundTripKeepsClampedDay(t *testing.T) {
	start := NewDate(2024, time.January, 31)
	// Clamping is not reversible: going forward then back keeps the shorter day.
	back := start.AddMonths(1).AddMonths(-1)
	if back.String() != "2024-01-29" {
		t.Fatalf("expected 2024-01-29, got %s", back)
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{1900, time.February, 28},
		{2000, time.February, 29},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.year, tc.month); got != tc.want {
			t.Fatalf("%d-%02d expected %d, got %d", tc.year, tc.month, tc.want, got)
		}
	}
}

func TestDaysUntil(t *testing.T) {
	today := NewDate(2024, time.March, 1)
	if got := today.DaysUntil(NewDate(2024, time.February, 27)); got != -3 {
		t.Fatalf("expected -3, got %d", got)
	}
	if got := today.DaysUntil(NewDate(2024, time.March, 11)); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
	if got := today.DaysUntil(today); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestDateRangeContains(t *testing.T) {
	r := DateRange{Start: NewDate(2024, time.December, 1), End: NewDate(2025, time.January, 1)}
	if !r.Contains(NewDate(2024, time.December, 1)) {
		t.Fatal("start must be included")
	}
	if !r.Contains(NewDate(2024, time.December, 31)) {
		t.Fatal("last day must be included")
	}
	if r.Contains(NewDate(2025, time.January, 1)) {
		t.Fatal("end must be excluded")
	}
}

func TestDateOfIgnoresLocation(t *testing.T) {
	loc := time.FixedZone("UTC+14", 14*3600)
	late := time.Date(2024, time.June, 30, 23, 30, 0, 0, loc)
	if got := DateOf(late).String(); got != "2024-06-30" {
		t.Fatalf("expected 2024-06-30, got %s", got)
	}
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		D Date `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"d":"2024-02-29"}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.D.String() != "2024-02-29" {
		t.Fatalf("unexpected date %s", payload.D)
	}
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"d":"2024-02-29"}` {
		t.Fatalf("unexpected json %s", b)
	}
	if err := json.Unmarshal([]byte(`{"d":20240229}`), &payload); err == nil {
		t.Fatal("expected error for numeric date")
	}
}

package summary

import (
	"famledger/internal/core"
)

// Status tells whether the month ends with money left.
type Status string

const (
	Surplus   Status = "surplus"
	Overspend Status = "overspend"
)

// Totals are the sums of a set of records. Income and Expense are never negative;
// Remaining is Income - Expense.
type Totals struct {
	Income    core.Money `json:"income"`
	Expense   core.Money `json:"expense"`
	Remaining core.Money `json:"remaining"`
}

// Sum adds up records by kind. The stored amount's sign is ignored.
func Sum(records []core.LedgerRecord) Totals {
	var t Totals
	for _, r := range records {
		switch r.Kind {
		case core.Income:
			t.Income = t.Income.Add(r.Amount.Abs())
		case core.Expense:
			t.Expense = t.Expense.Add(r.Amount.Abs())
		}
	}
	t.Remaining = t.Income.Sub(t.Expense)
	return t
}

// Status returns Surplus when nothing is overspent.
func (t Totals) Status() Status {
	if t.Remaining.Cents < 0 {
		return Overspend
	}
	return Surplus
}

// SpentRatio returns expense/income clamped to [0, 1]. With no income it is 1 as soon
// as anything was spent.
func (t Totals) SpentRatio() float64 {
	if t.Income.Cents <= 0 {
		if t.Expense.Cents > 0 {
			return 1
		}
		return 0
	}
	r := float64(t.Expense.Cents) / float64(t.Income.Cents)
	if r > 1 {
		return 1
	}
	return r
}

// MonthSummary is the computed month screen.
type MonthSummary struct {
	View  ViewState      `json:"view"`
	Range core.DateRange `json:"range"`

	// Records are the in-range records that pass the view's filters, in view order.
	Records []core.LedgerRecord `json:"records"`

	// Totals cover Records. MonthTotals cover every record in the month regardless
	// of filters.
	Totals      Totals `json:"totals"`
	MonthTotals Totals `json:"monthTotals"`

	SpentRatio float64 `json:"spentRatio"`
	Status     Status  `json:"status"`
}

// Build computes the month summary for a view. Records outside the view's month are
// ignored. The input slice is not modified.
func Build(view ViewState, records []core.LedgerRecord, today core.Date) MonthSummary {
	rng := view.Range()

	inMonth := make([]core.LedgerRecord, 0, len(records))
	for _, r := range records {
		if rng.Contains(r.TxDate) {
			inMonth = append(inMonth, r)
		}
	}

	filtered := make([]core.LedgerRecord, 0, len(inMonth))
	for _, r := range inMonth {
		if view.Matches(r) {
			filtered = append(filtered, r)
		}
	}
	SortRecords(filtered, view.Sort, today)

	month := Sum(inMonth)
	return MonthSummary{
		View:        view,
		Range:       rng,
		Records:     filtered,
		Totals:      Sum(filtered),
		MonthTotals: month,
		SpentRatio:  month.SpentRatio(),
		Status:      month.Status(),
	}
}

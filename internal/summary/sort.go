package summary

import (
	"slices"

	"famledger/internal/core"
)

// SortMode selects the order of records in a month view.
type SortMode string

const (
	// SortNear orders by absolute day distance from today, nearest first.
	SortNear SortMode = "near"
	SortDesc SortMode = "desc"
	SortAsc  SortMode = "asc"
)

// ParseSortMode reads a sort mode. The empty string selects SortNear.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case "":
		return SortNear, nil
	case SortNear, SortDesc, SortAsc:
		return SortMode(s), nil
	default:
		return "", core.Invalid("sort", "must be near, desc or asc")
	}
}

// Next returns the mode the sort toggle moves to: near, desc, asc, desc, asc...
func (m SortMode) Next() SortMode {
	switch m {
	case SortDesc:
		return SortAsc
	default:
		return SortDesc
	}
}

// SortRecords orders records in place. The sort is stable, so records on the same date
// keep their input order.
func SortRecords(records []core.LedgerRecord, mode SortMode, today core.Date) {
	switch mode {
	case SortAsc:
		slices.SortStableFunc(records, func(a, b core.LedgerRecord) int {
			return a.TxDate.Compare(b.TxDate)
		})
	case SortDesc:
		slices.SortStableFunc(records, func(a, b core.LedgerRecord) int {
			return b.TxDate.Compare(a.TxDate)
		})
	default:
		slices.SortStableFunc(records, func(a, b core.LedgerRecord) int {
			da, db := abs(a.TxDate.DaysUntil(today)), abs(b.TxDate.DaysUntil(today))
			if da != db {
				return da - db
			}
			return a.TxDate.Compare(b.TxDate)
		})
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

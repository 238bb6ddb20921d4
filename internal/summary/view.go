package summary

import (
	"slices"
	"time"

	"famledger/internal/core"
)

// ViewState is the user's current month screen: which month, which filters, which sort.
// It is a value; the With methods return modified copies.
type ViewState struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`

	// CategoryID filters by exact category id. Empty means all categories.
	CategoryID string `json:"categoryId,omitempty"`

	// Modes restricts expense records to these modes. Income records always pass.
	// Empty means all modes.
	Modes []core.Mode `json:"modes,omitempty"`

	Sort SortMode `json:"sort"`
}

// NewViewState returns an unfiltered view of the given month sorted by SortNear.
func NewViewState(year int, month time.Month) ViewState {
	return ViewState{Year: year, Month: month, Sort: SortNear}
}

// Validate checks the month and the sort mode.
func (v ViewState) Validate() error {
	if !ValidMonth(v.Year, v.Month) {
		return core.Invalid(core.FieldDate, "unknown month")
	}
	if _, err := ParseSortMode(string(v.Sort)); err != nil {
		return err
	}
	for _, m := range v.Modes {
		if !m.IsValid() {
			return core.Invalid(core.FieldMode, "unknown mode "+string(m))
		}
	}
	return nil
}

// Range returns the view's half-open month range.
func (v ViewState) Range() core.DateRange {
	return MonthRange(v.Year, v.Month)
}

func (v ViewState) WithCategory(id string) ViewState {
	v.CategoryID = id
	return v
}

func (v ViewState) WithModes(modes ...core.Mode) ViewState {
	v.Modes = slices.Clone(modes)
	return v
}

func (v ViewState) WithSort(m SortMode) ViewState {
	v.Sort = m
	return v
}

// NextSort advances the sort toggle.
func (v ViewState) NextSort() ViewState {
	return v.WithSort(v.Sort.Next())
}

// ShiftMonth moves the view by delta months, keeping filters and sort.
func (v ViewState) ShiftMonth(delta int) ViewState {
	v.Year, v.Month = ShiftMonth(v.Year, v.Month, delta)
	return v
}

// Matches reports whether a record passes the category and mode filters.
func (v ViewState) Matches(r core.LedgerRecord) bool {
	if v.CategoryID != "" && r.CategoryID != v.CategoryID {
		return false
	}
	if len(v.Modes) > 0 && r.Kind == core.Expense && !slices.Contains(v.Modes, r.Mode) {
		return false
	}
	return true
}

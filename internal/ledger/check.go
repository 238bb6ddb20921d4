package ledger

import (
	"fmt"

	"famledger/internal/core"
)

// CheckDraft applies the constraints every store enforces on a stored record:
// known kind and mode, a category, a date and a positive amount.
func CheckDraft(d core.RecordDraft) error {
	switch {
	case !d.Kind.IsValid():
		return fmt.Errorf("unknown kind %q", d.Kind)
	case !d.Mode.IsValid():
		return fmt.Errorf("unknown mode %q", d.Mode)
	case d.CategoryID == "":
		return fmt.Errorf("missing category")
	case d.TxDate.IsZero():
		return fmt.Errorf("missing date")
	case !d.Amount.IsPositive():
		return fmt.Errorf("amount must be positive")
	}
	return nil
}

// CheckDrafts checks a whole batch before anything is written.
func CheckDrafts(drafts []core.RecordDraft) error {
	for i, d := range drafts {
		if err := CheckDraft(d); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

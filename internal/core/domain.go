package core

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"

	OneTime      Mode = "one_time"
	Installments Mode = "installments"
	Recurring    Mode = "recurring"
)

// MaxNoteLength bounds the free-text note of a record.
const MaxNoteLength = 200

type (
	// Kind decides the sign of a record's effect on totals.
	Kind string

	// Mode tells how an intent expands into records.
	Mode string

	// TransactionIntent is what the user asked for, before expansion into records.
	// Only the amount fields of the chosen Mode are read.
	TransactionIntent struct {
		Kind       Kind   `json:"kind"`
		Mode       Mode   `json:"mode"`
		CategoryID string `json:"categoryId"`
		Date       Date   `json:"date"`
		Note       string `json:"note,omitempty"`

		// one_time
		Amount decimal.Decimal `json:"amount"`

		// installments
		TotalAmount      decimal.Decimal `json:"totalAmount"`
		InstallmentCount int             `json:"installmentCount"`

		// recurring
		PerMonthAmount decimal.Decimal `json:"perMonthAmount"`
		MonthCount     int             `json:"monthCount"`
	}

	// RecordDraft is a ledger record that the store has not assigned an id to yet.
	RecordDraft struct {
		Kind              Kind   `json:"kind"`
		Mode              Mode   `json:"mode"`
		CategoryID        string `json:"categoryId"`
		Amount            Money  `json:"amount"`
		TxDate            Date   `json:"txDate"`
		Note              string `json:"note,omitempty"`
		SeriesID          string `json:"seriesId,omitempty"`
		InstallmentNumber int    `json:"installmentNumber,omitempty"`
		InstallmentTotal  int    `json:"installmentTotal,omitempty"`
		OriginalAmount    *Money `json:"originalAmount,omitempty"`
	}

	// LedgerRecord is a persisted record.
	LedgerRecord struct {
		ID string `json:"id"`
		RecordDraft
	}

	// RecordPatch carries the fields a direct edit may change. Nil leaves a field as is.
	RecordPatch struct {
		Amount     *Money  `json:"amount,omitempty"`
		TxDate     *Date   `json:"txDate,omitempty"`
		CategoryID *string `json:"categoryId,omitempty"`
		Note       *string `json:"note,omitempty"`
	}
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case Income, Expense:
		return true
	default:
		return false
	}
}

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	switch m {
	case OneTime, Installments, Recurring:
		return true
	default:
		return false
	}
}

// Modes returns every known mode.
func Modes() []Mode {
	return []Mode{OneTime, Installments, Recurring}
}

// ParseModes reads a comma-separated list of modes. Empty input returns nil.
func ParseModes(s string) ([]Mode, error) {
	var out []Mode
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m := Mode(part)
		if !m.IsValid() {
			return nil, Invalid(FieldMode, "unknown mode "+part)
		}
		out = append(out, m)
	}
	return out, nil
}

// InSeries reports whether the record belongs to a multi-record series.
func (r RecordDraft) InSeries() bool {
	return r.SeriesID != ""
}

// Apply returns a copy of r with the patch applied. Series fields never change.
func (r LedgerRecord) Apply(p RecordPatch) LedgerRecord {
	if p.Amount != nil {
		r.Amount = *p.Amount
	}
	if p.TxDate != nil {
		r.TxDate = *p.TxDate
	}
	if p.CategoryID != nil {
		r.CategoryID = *p.CategoryID
	}
	if p.Note != nil {
		r.Note = *p.Note
	}
	return r
}

// IsEmpty reports whether the patch changes nothing.
func (p RecordPatch) IsEmpty() bool {
	return p.Amount == nil && p.TxDate == nil && p.CategoryID == nil && p.Note == nil
}

// Validate checks the fields the patch sets.
func (p RecordPatch) Validate() error {
	if p.Amount != nil && !p.Amount.IsPositive() {
		return Invalid(FieldAmount, "must be greater than zero")
	}
	if p.Amount != nil && p.Amount.Cents > MaxMinorUnits {
		return Invalid(FieldAmount, "is too large")
	}
	if p.TxDate != nil && p.TxDate.IsZero() {
		return Invalid(FieldDate, "is required")
	}
	if p.CategoryID != nil && strings.TrimSpace(*p.CategoryID) == "" {
		return Invalid(FieldCategoryID, "is required")
	}
	if p.Note != nil && utf8.RuneCountInString(*p.Note) > MaxNoteLength {
		return Invalid(FieldNote, "too long (max 200 characters)")
	}
	return nil
}

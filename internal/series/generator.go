// Package series expands a transaction intent into the ledger records it stands for.
//
// The expansion is a pure function: no store access happens here, and a failed
// validation yields no records at all.
package series

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"famledger/internal/core"
)

// MaxCount bounds installment and month counts (30 years of monthly records).
const MaxCount = 360

// Generator turns intents into record drafts.
type Generator struct {
	// NewID returns a fresh series identifier.
	NewID func() string
}

// NewGenerator returns a Generator that draws series ids from uuid v4.
func NewGenerator() *Generator {
	return &Generator{NewID: uuid.NewString}
}

// Generate validates the intent and returns its records in date order.
func (g *Generator) Generate(in core.TransactionIntent) ([]core.RecordDraft, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	base := core.RecordDraft{
		Kind:       in.Kind,
		Mode:       in.Mode,
		CategoryID: strings.TrimSpace(in.CategoryID),
		Note:       strings.TrimSpace(in.Note),
	}

	switch in.Mode {
	case core.Installments:
		return g.installments(base, in), nil
	case core.Recurring:
		return g.recurring(base, in), nil
	default:
		rec := base
		rec.Amount = core.MoneyFromDecimal(in.Amount)
		rec.TxDate = in.Date
		return []core.RecordDraft{rec}, nil
	}
}

// installments splits the total in cents. Every record gets floor(T/n) and the last one
// also takes the remainder, so the amounts always add back up to the total.
func (g *Generator) installments(base core.RecordDraft, in core.TransactionIntent) []core.RecordDraft {
	n := in.InstallmentCount
	total := core.ToMinorUnits(in.TotalAmount)
	each := total / int64(n)
	remainder := total - each*int64(n)
	original := core.Money{Cents: total}
	seriesID := g.newID()

	out := make([]core.RecordDraft, n)
	for i := 0; i < n; i++ {
		cents := each
		if i == n-1 {
			cents += remainder
		}
		rec := base
		rec.Amount = core.Money{Cents: cents}
		rec.TxDate = in.Date.AddMonths(i)
		rec.SeriesID = seriesID
		rec.InstallmentNumber = i + 1
		rec.InstallmentTotal = n
		rec.OriginalAmount = moneyPtr(original)
		out[i] = rec
	}
	return out
}

// recurring repeats the same amount once per month. Records carry the series id and
// the base amount but no installment position.
func (g *Generator) recurring(base core.RecordDraft, in core.TransactionIntent) []core.RecordDraft {
	n := in.MonthCount
	amount := core.MoneyFromDecimal(in.PerMonthAmount)
	seriesID := g.newID()

	out := make([]core.RecordDraft, n)
	for i := 0; i < n; i++ {
		rec := base
		rec.Amount = amount
		rec.TxDate = in.Date.AddMonths(i)
		rec.SeriesID = seriesID
		rec.OriginalAmount = moneyPtr(amount)
		out[i] = rec
	}
	return out
}

func moneyPtr(m core.Money) *core.Money { return &m }

func (g *Generator) newID() string {
	if g.NewID == nil {
		return uuid.NewString()
	}
	return g.NewID()
}

// Validate checks an intent and returns a *core.ValidationError naming the first
// offending field.
func Validate(in core.TransactionIntent) error {
	if !in.Kind.IsValid() {
		return core.Invalid(core.FieldKind, "must be income or expense")
	}
	if !in.Mode.IsValid() {
		return core.Invalid(core.FieldMode, "must be one_time, installments or recurring")
	}
	if strings.TrimSpace(in.CategoryID) == "" {
		return core.Invalid(core.FieldCategoryID, "is required")
	}
	if in.Date.IsZero() {
		return core.Invalid(core.FieldDate, "is required")
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Note)) > core.MaxNoteLength {
		return core.Invalid(core.FieldNote, "too long (max 200 characters)")
	}

	switch in.Mode {
	case core.OneTime:
		return positive(core.FieldAmount, in.Amount)
	case core.Installments:
		if err := positive(core.FieldTotalAmount, in.TotalAmount); err != nil {
			return err
		}
		if err := count(core.FieldInstallmentCount, in.InstallmentCount); err != nil {
			return err
		}
		if core.ToMinorUnits(in.TotalAmount) < int64(in.InstallmentCount) {
			return core.Invalid(core.FieldInstallmentCount, "must not exceed the total in cents")
		}
		return nil
	case core.Recurring:
		if err := positive(core.FieldPerMonthAmount, in.PerMonthAmount); err != nil {
			return err
		}
		return count(core.FieldMonthCount, in.MonthCount)
	}
	return nil
}

func positive(field string, d decimal.Decimal) error {
	if core.ExceedsMaxAmount(d) {
		return core.Invalid(field, "is too large")
	}
	if core.ToMinorUnits(d) <= 0 {
		return core.Invalid(field, "must be greater than zero")
	}
	return nil
}

func count(field string, n int) error {
	if n < 1 {
		return core.Invalid(field, "must be at least 1")
	}
	if n > MaxCount {
		return core.Invalid(field, "must be at most 360")
	}
	return nil
}

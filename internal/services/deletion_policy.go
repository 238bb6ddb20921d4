// Package services orchestrates the ledger: it expands intents into series, builds the
// month view and applies the series mutation rules to edits and deletes.
//
// This file holds the per-mode deletion strategies. Each mode decides which records a
// delete of one of its records takes with it.
package services

import (
	"context"
	"fmt"

	"famledger/internal/core"
	"famledger/internal/ledger"
)

// DeleteScope names how far a delete reaches.
type DeleteScope string

const (
	ScopeRecord     DeleteScope = "record"
	ScopeSeries     DeleteScope = "series"
	ScopeSeriesFrom DeleteScope = "series_from"
)

// DeletionPolicy is the strategy for deleting a record of one mode.
type DeletionPolicy interface {
	Scope() DeleteScope
	// From is the first date removed for ScopeSeriesFrom, zero otherwise.
	From(target core.LedgerRecord) core.Date
	// Affected filters the target's series siblings down to the records the delete removes.
	Affected(target core.LedgerRecord, siblings []core.LedgerRecord) []core.LedgerRecord
	// Apply performs the delete.
	Apply(ctx context.Context, store ledger.RecordDeleter, target core.LedgerRecord) error
}

// SingleRecordPolicy removes only the target.
type SingleRecordPolicy struct{}

func (SingleRecordPolicy) Scope() DeleteScope { return ScopeRecord }
func (SingleRecordPolicy) From(core.LedgerRecord) core.Date { return core.Date{} }

func (SingleRecordPolicy) Affected(target core.LedgerRecord, _ []core.LedgerRecord) []core.LedgerRecord {
	return []core.LedgerRecord{target}
}

func (SingleRecordPolicy) Apply(ctx context.Context, store ledger.RecordDeleter, target core.LedgerRecord) error {
	return store.DeleteRecordByID(ctx, target.ID)
}

// WholeSeriesPolicy removes every record of the target's series, past and future.
type WholeSeriesPolicy struct{}

func (WholeSeriesPolicy) Scope() DeleteScope { return ScopeSeries }
func (WholeSeriesPolicy) From(core.LedgerRecord) core.Date { return core.Date{} }

func (WholeSeriesPolicy) Affected(target core.LedgerRecord, siblings []core.LedgerRecord) []core.LedgerRecord {
	if !target.InSeries() {
		return []core.LedgerRecord{target}
	}
	return siblings
}

func (WholeSeriesPolicy) Apply(ctx context.Context, store ledger.RecordDeleter, target core.LedgerRecord) error {
	if !target.InSeries() {
		return store.DeleteRecordByID(ctx, target.ID)
	}
	return store.DeleteRecordsBySeriesID(ctx, target.SeriesID)
}

// FromMonthPolicy removes the target's series from the first day of the target's month
// onwards, keeping earlier history.
type FromMonthPolicy struct{}

func (FromMonthPolicy) Scope() DeleteScope { return ScopeSeriesFrom }

func (FromMonthPolicy) From(target core.LedgerRecord) core.Date {
	return target.TxDate.MonthStart()
}

func (p FromMonthPolicy) Affected(target core.LedgerRecord, siblings []core.LedgerRecord) []core.LedgerRecord {
	if !target.InSeries() {
		return []core.LedgerRecord{target}
	}
	from := p.From(target)
	out := make([]core.LedgerRecord, 0, len(siblings))
	for _, r := range siblings {
		if !r.TxDate.Before(from) {
			out = append(out, r)
		}
	}
	return out
}

func (p FromMonthPolicy) Apply(ctx context.Context, store ledger.RecordDeleter, target core.LedgerRecord) error {
	if !target.InSeries() {
		return store.DeleteRecordByID(ctx, target.ID)
	}
	return store.DeleteRecordsBySeriesIDFrom(ctx, target.SeriesID, p.From(target))
}

var deletionPolicies = map[core.Mode]DeletionPolicy{
	core.OneTime:      SingleRecordPolicy{},
	core.Installments: WholeSeriesPolicy{},
	core.Recurring:    FromMonthPolicy{},
}

// GetDeletionPolicy returns the policy registered for mode.
func GetDeletionPolicy(mode core.Mode) (DeletionPolicy, error) {
	p, ok := deletionPolicies[mode]
	if !ok {
		return nil, fmt.Errorf("no deletion policy for mode %q", mode)
	}
	return p, nil
}

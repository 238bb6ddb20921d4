// Package ledgertest holds the behaviour every ledger.Store implementation must share.
package ledgertest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"famledger/internal/core"
	"famledger/internal/ledger"
)

// Draft returns a valid one-time expense draft.
func Draft(cat string, cents int64, date core.Date) core.RecordDraft {
	return core.RecordDraft{
		Kind:       core.Expense,
		Mode:       core.OneTime,
		CategoryID: cat,
		Amount:     core.Money{Cents: cents},
		TxDate:     date,
	}
}

// Series returns n monthly drafts sharing seriesID, starting at start.
func Series(seriesID string, mode core.Mode, cents int64, start core.Date, n int) []core.RecordDraft {
	out := make([]core.RecordDraft, n)
	orig := core.Money{Cents: cents * int64(n)}
	for i := range out {
		d := Draft("home", cents, start.AddMonths(i))
		d.Mode = mode
		d.SeriesID = seriesID
		d.InstallmentNumber = i + 1
		d.InstallmentTotal = n
		d.OriginalAmount = &orig
		out[i] = d
	}
	return out
}

func ids(recs []core.LedgerRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func dates(recs []core.LedgerRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.TxDate.String()
	}
	return out
}

// Run exercises a store. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) ledger.Store) {
	ctx := context.Background()
	may := func(d int) core.Date { return core.NewDate(2024, time.May, d) }

	t.Run("insert assigns ids and keeps fields", func(t *testing.T) {
		s := newStore(t)
		drafts := Series("s-1", core.Installments, 3333, core.NewDate(2024, time.January, 31), 3)
		drafts[0].Note = "tv"

		recs, err := s.InsertRecords(ctx, drafts)
		require.NoError(t, err)
		require.Len(t, recs, 3)

		seen := map[string]bool{}
		for i, r := range recs {
			assert.NotEmpty(t, r.ID)
			assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
			seen[r.ID] = true
			assert.Equal(t, drafts[i].TxDate, r.TxDate)
			assert.Equal(t, "s-1", r.SeriesID)
			assert.Equal(t, i+1, r.InstallmentNumber)
			assert.Equal(t, 3, r.InstallmentTotal)
			require.NotNil(t, r.OriginalAmount)
			assert.Equal(t, int64(9999), r.OriginalAmount.Cents)
		}

		got, err := s.GetRecord(ctx, recs[0].ID)
		require.NoError(t, err)
		assert.Equal(t, recs[0], got)
		assert.Equal(t, "tv", got.Note)
		assert.Equal(t, "2024-01-31", got.TxDate.String())
	})

	t.Run("insert is all or nothing", func(t *testing.T) {
		s := newStore(t)
		drafts := []core.RecordDraft{Draft("food", 100, may(1)), Draft("food", 0, may(2))}

		recs, err := s.InsertRecords(ctx, drafts)
		assert.Nil(t, recs)
		var se *core.StoreError
		require.True(t, errors.As(err, &se), "expected StoreError, got %v", err)

		all, err := s.SelectRecordsInRange(ctx, core.DateRange{Start: may(1), End: may(31)})
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("empty batch inserts nothing", func(t *testing.T) {
		s := newStore(t)
		recs, err := s.InsertRecords(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("range is half open", func(t *testing.T) {
		s := newStore(t)
		_, err := s.InsertRecords(ctx, []core.RecordDraft{
			Draft("food", 100, core.NewDate(2024, time.November, 30)),
			Draft("food", 200, core.NewDate(2024, time.December, 1)),
			Draft("food", 300, core.NewDate(2024, time.December, 31)),
			Draft("food", 400, core.NewDate(2025, time.January, 1)),
		})
		require.NoError(t, err)

		got, err := s.SelectRecordsInRange(ctx, core.DateRange{
			Start: core.NewDate(2024, time.December, 1),
			End:   core.NewDate(2025, time.January, 1),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-12-01", "2024-12-31"}, dates(got))
	})

	t.Run("get unknown is not found", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetRecord(ctx, "12345")
		assert.ErrorIs(t, err, core.ErrNotFound)
		_, err = s.UpdateRecord(ctx, "12345", core.RecordPatch{})
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("update changes one record only", func(t *testing.T) {
		s := newStore(t)
		recs, err := s.InsertRecords(ctx, Series("s-2", core.Installments, 1000, may(10), 3))
		require.NoError(t, err)

		amount := core.Money{Cents: 1500}
		date := core.NewDate(2024, time.June, 20)
		note := "renegotiated"
		cat := "bills"
		updated, err := s.UpdateRecord(ctx, recs[1].ID, core.RecordPatch{
			Amount: &amount, TxDate: &date, Note: &note, CategoryID: &cat,
		})
		require.NoError(t, err)
		assert.Equal(t, amount, updated.Amount)
		assert.Equal(t, date, updated.TxDate)
		assert.Equal(t, note, updated.Note)
		assert.Equal(t, cat, updated.CategoryID)
		assert.Equal(t, "s-2", updated.SeriesID)
		assert.Equal(t, 2, updated.InstallmentNumber)

		series, err := s.SelectRecordsBySeries(ctx, "s-2")
		require.NoError(t, err)
		require.Len(t, series, 3)
		for _, r := range series {
			if r.ID != recs[1].ID {
				assert.Equal(t, int64(1000), r.Amount.Cents)
			}
		}
	})

	t.Run("delete by id", func(t *testing.T) {
		s := newStore(t)
		recs, err := s.InsertRecords(ctx, []core.RecordDraft{Draft("food", 100, may(1)), Draft("food", 200, may(2))})
		require.NoError(t, err)

		require.NoError(t, s.DeleteRecordByID(ctx, recs[0].ID))
		require.NoError(t, s.DeleteRecordByID(ctx, recs[0].ID))

		_, err = s.GetRecord(ctx, recs[0].ID)
		assert.ErrorIs(t, err, core.ErrNotFound)
		_, err = s.GetRecord(ctx, recs[1].ID)
		assert.NoError(t, err)
	})

	t.Run("delete whole series", func(t *testing.T) {
		s := newStore(t)
		a, err := s.InsertRecords(ctx, Series("s-a", core.Installments, 100, may(1), 4))
		require.NoError(t, err)
		b, err := s.InsertRecords(ctx, Series("s-b", core.Installments, 100, may(1), 2))
		require.NoError(t, err)

		require.NoError(t, s.DeleteRecordsBySeriesID(ctx, "s-a"))

		left, err := s.SelectRecordsBySeries(ctx, "s-a")
		require.NoError(t, err)
		assert.Empty(t, left)
		other, err := s.SelectRecordsBySeries(ctx, "s-b")
		require.NoError(t, err)
		assert.Equal(t, ids(b), ids(other))
		assert.Len(t, a, 4)
	})

	t.Run("delete series from date", func(t *testing.T) {
		s := newStore(t)
		_, err := s.InsertRecords(ctx, Series("s-r", core.Recurring, 5000, core.NewDate(2024, time.January, 15), 6))
		require.NoError(t, err)

		require.NoError(t, s.DeleteRecordsBySeriesIDFrom(ctx, "s-r", core.NewDate(2024, time.March, 1)))

		left, err := s.SelectRecordsBySeries(ctx, "s-r")
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-01-15", "2024-02-15"}, dates(left))
	})
}

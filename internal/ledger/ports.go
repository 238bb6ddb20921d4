// Package ledger defines the Ledger Store ports the services depend on.
//
// Implementations live in ledger/memory, storage (SQLite) and storage/postgres. All of
// them return *core.StoreError for failures and core.ErrNotFound (possibly wrapped) for
// unknown ids.
package ledger

import (
	"context"

	"famledger/internal/catalog"
	"famledger/internal/core"
)

type (
	// RecordWriter persists a generated series.
	RecordWriter interface {
		// InsertRecords stores the batch atomically: either every draft is persisted
		// or none is. Returned records carry store-assigned ids, in input order.
		InsertRecords(ctx context.Context, drafts []core.RecordDraft) ([]core.LedgerRecord, error)
	}

	// RecordReader reads records by date range, id or series.
	RecordReader interface {
		// SelectRecordsInRange returns records with start <= txDate < end, by date.
		SelectRecordsInRange(ctx context.Context, r core.DateRange) ([]core.LedgerRecord, error)
		GetRecord(ctx context.Context, id string) (core.LedgerRecord, error)
		// SelectRecordsBySeries returns every record of a series, by date.
		SelectRecordsBySeries(ctx context.Context, seriesID string) ([]core.LedgerRecord, error)
	}

	// RecordEditor changes one record.
	RecordEditor interface {
		UpdateRecord(ctx context.Context, id string, patch core.RecordPatch) (core.LedgerRecord, error)
	}

	// RecordDeleter removes records. Deleting ids or series that do not exist is not
	// an error.
	RecordDeleter interface {
		DeleteRecordByID(ctx context.Context, id string) error
		DeleteRecordsBySeriesID(ctx context.Context, seriesID string) error
		// DeleteRecordsBySeriesIDFrom removes series records with txDate >= from.
		DeleteRecordsBySeriesIDFrom(ctx context.Context, seriesID string, from core.Date) error
	}

	// Store is the full Ledger Store.
	Store interface {
		RecordWriter
		RecordReader
		RecordEditor
		RecordDeleter
	}

	// Backend is a Store that also serves the Category Catalog.
	Backend interface {
		Store
		catalog.Reader
	}
)

// Package storage is the SQLite Ledger Store. It also serves the Category Catalog and
// keeps the audit log written by the worker.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"famledger/internal/catalog"
	"famledger/internal/core"
	"famledger/internal/ledger"

	_ "modernc.org/sqlite"
)

var _ ledger.Backend = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and migrates it.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// InsertRecords writes the batch inside one transaction.
func (r *SQLiteRepository) InsertRecords(ctx context.Context, drafts []core.RecordDraft) ([]core.LedgerRecord, error) {
	const op = "insert records"
	if err := ledger.CheckDrafts(drafts); err != nil {
		return nil, core.WrapStore(op, err)
	}
	if len(drafts) == 0 {
		return []core.LedgerRecord{}, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, core.WrapStore(op, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertRecordSQL)
	if err != nil {
		return nil, core.WrapStore(op, err)
	}
	defer stmt.Close()

	out := make([]core.LedgerRecord, len(drafts))
	for i, d := range drafts {
		res, err := stmt.ExecContext(ctx,
			string(d.Kind), string(d.Mode), d.CategoryID, d.Amount.Cents, d.TxDate.String(), d.Note,
			nullString(d.SeriesID), nullInt(int64(d.InstallmentNumber)), nullInt(int64(d.InstallmentTotal)),
			nullMoney(d.OriginalAmount))
		if err != nil {
			return nil, core.WrapStore(op, fmt.Errorf("record %d: %w", i, err))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, core.WrapStore(op, err)
		}
		out[i] = core.LedgerRecord{ID: strconv.FormatInt(id, 10), RecordDraft: d}
	}

	if err := tx.Commit(); err != nil {
		return nil, core.WrapStore(op, err)
	}

	slog.DebugContext(ctx, "Ledger records saved to SQLite", "count", len(out), "series_id", drafts[0].SeriesID)
	return out, nil
}

func (r *SQLiteRepository) SelectRecordsInRange(ctx context.Context, rng core.DateRange) ([]core.LedgerRecord, error) {
	return r.query(ctx, "select records in range", selectRangeSQL, rng.Start.String(), rng.End.String())
}

func (r *SQLiteRepository) SelectRecordsBySeries(ctx context.Context, seriesID string) ([]core.LedgerRecord, error) {
	if seriesID == "" {
		return nil, nil
	}
	return r.query(ctx, "select records by series", selectBySeriesSQL, seriesID)
}

func (r *SQLiteRepository) GetRecord(ctx context.Context, id string) (core.LedgerRecord, error) {
	return getRecord(ctx, r.db, id)
}

// UpdateRecord applies the patch and writes the record back in one transaction.
func (r *SQLiteRepository) UpdateRecord(ctx context.Context, id string, patch core.RecordPatch) (core.LedgerRecord, error) {
	const op = "update record"

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.LedgerRecord{}, core.WrapStore(op, err)
	}
	defer tx.Rollback()

	current, err := getRecord(ctx, tx, id)
	if err != nil {
		return core.LedgerRecord{}, err
	}
	updated := current.Apply(patch)
	if err := ledger.CheckDraft(updated.RecordDraft); err != nil {
		return core.LedgerRecord{}, core.WrapStore(op, err)
	}

	if _, err := tx.ExecContext(ctx, updateRecordSQL,
		updated.Amount.Cents, updated.TxDate.String(), updated.CategoryID, updated.Note, id); err != nil {
		return core.LedgerRecord{}, core.WrapStore(op, err)
	}
	if err := tx.Commit(); err != nil {
		return core.LedgerRecord{}, core.WrapStore(op, err)
	}
	return updated, nil
}

func (r *SQLiteRepository) DeleteRecordByID(ctx context.Context, id string) error {
	n, ok := parseID(id)
	if !ok {
		return nil
	}
	return r.exec(ctx, "delete record", deleteByIDSQL, n)
}

func (r *SQLiteRepository) DeleteRecordsBySeriesID(ctx context.Context, seriesID string) error {
	return r.exec(ctx, "delete series", deleteBySeriesSQL, seriesID)
}

func (r *SQLiteRepository) DeleteRecordsBySeriesIDFrom(ctx context.Context, seriesID string, from core.Date) error {
	return r.exec(ctx, "delete series from date", deleteBySeriesFromSQL, seriesID, from.String())
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, kind core.Kind) ([]catalog.Category, error) {
	rows, err := r.db.QueryContext(ctx, listCategoriesSQL, string(kind), string(kind))
	if err != nil {
		return nil, core.WrapStore("list categories", err)
	}
	defer rows.Close()

	var out []catalog.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, core.WrapStore("list categories", err)
		}
		out = append(out, c)
	}
	return out, core.WrapStore("list categories", rows.Err())
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (catalog.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, getCategorySQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Category{}, fmt.Errorf("get category %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return catalog.Category{}, core.WrapStore("get category", err)
	}
	return c, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func getRecord(ctx context.Context, q querier, id string) (core.LedgerRecord, error) {
	n, ok := parseID(id)
	if !ok {
		return core.LedgerRecord{}, fmt.Errorf("get record %s: %w", id, core.ErrNotFound)
	}
	rec, err := scanRecord(q.QueryRowContext(ctx, selectByIDSQL, n))
	if errors.Is(err, sql.ErrNoRows) {
		return core.LedgerRecord{}, fmt.Errorf("get record %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.LedgerRecord{}, core.WrapStore("get record", err)
	}
	return rec, nil
}

func (r *SQLiteRepository) query(ctx context.Context, op, query string, args ...any) ([]core.LedgerRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.WrapStore(op, err)
	}
	defer rows.Close()

	out := make([]core.LedgerRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, core.WrapStore(op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapStore(op, err)
	}
	return out, nil
}

func (r *SQLiteRepository) exec(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return core.WrapStore(op, err)
	}
	n, _ := res.RowsAffected()
	slog.DebugContext(ctx, "Ledger records deleted", "op", op, "rows", n)
	return nil
}

func scanRecord(s scanner) (core.LedgerRecord, error) {
	var (
		rec                core.LedgerRecord
		id                 int64
		kind, mode, txDate string
		seriesID           sql.NullString
		number, total      sql.NullInt64
		original           sql.NullInt64
	)
	if err := s.Scan(&id, &kind, &mode, &rec.CategoryID, &rec.Amount.Cents, &txDate, &rec.Note,
		&seriesID, &number, &total, &original); err != nil {
		return core.LedgerRecord{}, err
	}
	date, err := core.ParseDate(txDate)
	if err != nil {
		return core.LedgerRecord{}, fmt.Errorf("record %d: %w", id, err)
	}

	rec.ID = strconv.FormatInt(id, 10)
	rec.Kind = core.Kind(kind)
	rec.Mode = core.Mode(mode)
	rec.TxDate = date
	rec.SeriesID = seriesID.String
	rec.InstallmentNumber = int(number.Int64)
	rec.InstallmentTotal = int(total.Int64)
	if original.Valid {
		rec.OriginalAmount = &core.Money{Cents: original.Int64}
	}
	return rec, nil
}

func scanCategory(s scanner) (catalog.Category, error) {
	var (
		c          catalog.Category
		kind, icon string
	)
	if err := s.Scan(&c.ID, &kind, &c.Name, &icon, &c.Active); err != nil {
		return catalog.Category{}, err
	}
	c.Kind = core.Kind(kind)
	c.Icon = catalog.ParseIcon(icon)
	return c, nil
}

func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	return n, err == nil && n > 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}

func nullMoney(m *core.Money) sql.NullInt64 {
	if m == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: m.Cents, Valid: true}
}

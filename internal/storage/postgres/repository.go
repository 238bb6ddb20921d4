package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"famledger/internal/catalog"
	"famledger/internal/core"
	"famledger/internal/ledger"
)

var _ ledger.Backend = (*Repository)(nil)

// Repository implements ledger.Backend on a pgx pool.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Close closes the pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

// Ping checks the connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

const recordColumns = `id, kind, mode, category_id, amount_cents, tx_date, note,
	series_id, installment_number, installment_total, original_amount_cents`

// InsertRecords sends the whole batch inside one transaction.
func (r *Repository) InsertRecords(ctx context.Context, drafts []core.RecordDraft) ([]core.LedgerRecord, error) {
	const op = "insert records"
	if err := ledger.CheckDrafts(drafts); err != nil {
		return nil, core.WrapStore(op, err)
	}
	if len(drafts) == 0 {
		return []core.LedgerRecord{}, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, core.WrapStore(op, err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO ledger_records
			(kind, mode, category_id, amount_cents, tx_date, note,
			 series_id, installment_number, installment_total, original_amount_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	batch := &pgx.Batch{}
	for _, d := range drafts {
		batch.Queue(query,
			string(d.Kind), string(d.Mode), d.CategoryID, d.Amount.Cents, d.TxDate.Time, d.Note,
			nullable(d.SeriesID), nullable(d.InstallmentNumber), nullable(d.InstallmentTotal),
			originalCents(d.OriginalAmount))
	}

	br := tx.SendBatch(ctx, batch)
	out := make([]core.LedgerRecord, len(drafts))
	for i, d := range drafts {
		var id int64
		if err := br.QueryRow().Scan(&id); err != nil {
			br.Close()
			return nil, core.WrapStore(op, fmt.Errorf("record %d: %w", i, err))
		}
		out[i] = core.LedgerRecord{ID: strconv.FormatInt(id, 10), RecordDraft: d}
	}
	if err := br.Close(); err != nil {
		return nil, core.WrapStore(op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, core.WrapStore(op, err)
	}
	return out, nil
}

func (r *Repository) SelectRecordsInRange(ctx context.Context, rng core.DateRange) ([]core.LedgerRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM ledger_records
		WHERE tx_date >= $1 AND tx_date < $2
		ORDER BY tx_date, id`
	return r.query(ctx, "select records in range", query, rng.Start.Time, rng.End.Time)
}

func (r *Repository) SelectRecordsBySeries(ctx context.Context, seriesID string) ([]core.LedgerRecord, error) {
	if seriesID == "" {
		return nil, nil
	}
	query := `SELECT ` + recordColumns + ` FROM ledger_records
		WHERE series_id = $1
		ORDER BY tx_date, id`
	return r.query(ctx, "select records by series", query, seriesID)
}

func (r *Repository) GetRecord(ctx context.Context, id string) (core.LedgerRecord, error) {
	return getRecord(ctx, r.pool, id, false)
}

// UpdateRecord locks the row, applies the patch and writes it back.
func (r *Repository) UpdateRecord(ctx context.Context, id string, patch core.RecordPatch) (core.LedgerRecord, error) {
	const op = "update record"

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return core.LedgerRecord{}, core.WrapStore(op, err)
	}
	defer tx.Rollback(ctx)

	current, err := getRecord(ctx, tx, id, true)
	if err != nil {
		return core.LedgerRecord{}, err
	}
	updated := current.Apply(patch)
	if err := ledger.CheckDraft(updated.RecordDraft); err != nil {
		return core.LedgerRecord{}, core.WrapStore(op, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE ledger_records
		SET amount_cents = $1, tx_date = $2, category_id = $3, note = $4, updated_at = NOW()
		WHERE id = $5
	`, updated.Amount.Cents, updated.TxDate.Time, updated.CategoryID, updated.Note, current.ID)
	if err != nil {
		return core.LedgerRecord{}, core.WrapStore(op, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return core.LedgerRecord{}, core.WrapStore(op, err)
	}
	return updated, nil
}

func (r *Repository) DeleteRecordByID(ctx context.Context, id string) error {
	n, ok := parseID(id)
	if !ok {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM ledger_records WHERE id = $1`, n)
	return core.WrapStore("delete record", err)
}

func (r *Repository) DeleteRecordsBySeriesID(ctx context.Context, seriesID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM ledger_records WHERE series_id = $1`, seriesID)
	return core.WrapStore("delete series", err)
}

func (r *Repository) DeleteRecordsBySeriesIDFrom(ctx context.Context, seriesID string, from core.Date) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM ledger_records WHERE series_id = $1 AND tx_date >= $2`, seriesID, from.Time)
	return core.WrapStore("delete series from date", err)
}

func (r *Repository) ListCategories(ctx context.Context, kind core.Kind) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, kind, name, icon, active FROM categories
		WHERE active AND ($1 = '' OR kind = $1)
		ORDER BY name
	`, string(kind))
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

func (r *Repository) GetCategory(ctx context.Context, id string) (catalog.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT id, kind, name, icon, active FROM categories WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Category{}, fmt.Errorf("get category %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return catalog.Category{}, core.WrapStore("get category", err)
	}
	return c, nil
}

type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getRecord(ctx context.Context, q queryer, id string, forUpdate bool) (core.LedgerRecord, error) {
	n, ok := parseID(id)
	if !ok {
		return core.LedgerRecord{}, fmt.Errorf("get record %s: %w", id, core.ErrNotFound)
	}
	query := `SELECT ` + recordColumns + ` FROM ledger_records WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rec, err := scanRecord(q.QueryRow(ctx, query, n))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.LedgerRecord{}, fmt.Errorf("get record %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.LedgerRecord{}, core.WrapStore("get record", err)
	}
	return rec, nil
}

func (r *Repository) query(ctx context.Context, op, query string, args ...any) ([]core.LedgerRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
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

func scanRecord(row pgx.Row) (core.LedgerRecord, error) {
	var (
		rec           core.LedgerRecord
		id            int64
		kind, mode    string
		txDate        time.Time
		seriesID      *string
		number, total *int32
		original      *int64
	)
	if err := row.Scan(&id, &kind, &mode, &rec.CategoryID, &rec.Amount.Cents, &txDate, &rec.Note,
		&seriesID, &number, &total, &original); err != nil {
		return core.LedgerRecord{}, err
	}

	rec.ID = strconv.FormatInt(id, 10)
	rec.Kind = core.Kind(kind)
	rec.Mode = core.Mode(mode)
	rec.TxDate = core.DateOf(txDate)
	if seriesID != nil {
		rec.SeriesID = *seriesID
	}
	if number != nil {
		rec.InstallmentNumber = int(*number)
	}
	if total != nil {
		rec.InstallmentTotal = int(*total)
	}
	if original != nil {
		rec.OriginalAmount = &core.Money{Cents: *original}
	}
	return rec, nil
}

func scanCategory(row pgx.Row) (catalog.Category, error) {
	var (
		c          catalog.Category
		kind, icon string
	)
	if err := row.Scan(&c.ID, &kind, &c.Name, &icon, &c.Active); err != nil {
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

// nullable maps zero values to SQL NULL.
func nullable[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

func originalCents(m *core.Money) *int64 {
	if m == nil {
		return nil
	}
	return &m.Cents
}

package storage

const recordColumns = `id, kind, mode, category_id, amount_cents, tx_date, note,
	series_id, installment_number, installment_total, original_amount_cents`

const (
	insertRecordSQL = `INSERT INTO ledger_records
	(kind, mode, category_id, amount_cents, tx_date, note,
	 series_id, installment_number, installment_total, original_amount_cents)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectRangeSQL = `SELECT ` + recordColumns + ` FROM ledger_records
	WHERE tx_date >= ? AND tx_date < ?
	ORDER BY tx_date, id`

	selectByIDSQL = `SELECT ` + recordColumns + ` FROM ledger_records WHERE id = ?`

	selectBySeriesSQL = `SELECT ` + recordColumns + ` FROM ledger_records
	WHERE series_id = ?
	ORDER BY tx_date, id`

	updateRecordSQL = `UPDATE ledger_records
	SET amount_cents = ?, tx_date = ?, category_id = ?, note = ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ?`

	deleteByIDSQL         = `DELETE FROM ledger_records WHERE id = ?`
	deleteBySeriesSQL     = `DELETE FROM ledger_records WHERE series_id = ?`
	deleteBySeriesFromSQL = `DELETE FROM ledger_records WHERE series_id = ? AND tx_date >= ?`

	listCategoriesSQL = `SELECT id, kind, name, icon, active FROM categories
	WHERE active = 1 AND (? = '' OR kind = ?)
	ORDER BY name`

	getCategorySQL = `SELECT id, kind, name, icon, active FROM categories WHERE id = ?`

	insertAuditSQL = `INSERT OR IGNORE INTO ledger_audit
	(event_id, event_type, record_ids, series_id, months, occurred_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	listAuditSQL = `SELECT event_id, event_type, record_ids, series_id, months, occurred_at
	FROM ledger_audit ORDER BY id DESC LIMIT ?`
)

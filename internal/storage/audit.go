package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// AuditEntry is one ledger change as recorded by the audit worker.
type AuditEntry struct {
	EventID    string
	EventType  string
	RecordIDs  []string
	SeriesID   string
	Months     []string // YYYY-MM
	OccurredAt time.Time
}

// AppendAudit stores an entry. Entries are keyed by EventID, so a redelivered event is
// stored once.
func (r *SQLiteRepository) AppendAudit(ctx context.Context, e AuditEntry) error {
	if e.EventID == "" {
		return fmt.Errorf("append audit: missing event id")
	}
	_, err := r.db.ExecContext(ctx, insertAuditSQL,
		e.EventID, e.EventType, strings.Join(e.RecordIDs, ","), e.SeriesID,
		strings.Join(e.Months, ","), e.OccurredAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append audit %s: %w", e.EventID, err)
	}
	return nil
}

// ListAudit returns the newest entries first.
func (r *SQLiteRepository) ListAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, listAuditSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var (
			e                 AuditEntry
			recordIDs, months string
			occurredAt        string
		)
		if err := rows.Scan(&e.EventID, &e.EventType, &recordIDs, &e.SeriesID, &months, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		e.RecordIDs = splitList(recordIDs)
		e.Months = splitList(months)
		if e.OccurredAt, err = time.Parse(time.RFC3339Nano, occurredAt); err != nil {
			return nil, fmt.Errorf("audit %s occurred_at: %w", e.EventID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

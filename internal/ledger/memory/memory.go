// Package memory is an in-process Ledger Store and Category Catalog, seeded from
// plain-text files. It is used for development and tests.
package memory

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"famledger/internal/catalog"
	"famledger/internal/core"
	"famledger/internal/ledger"
)

// SeedFile is the category seed read by NewFromFiles. Each line is
// "kind|name|icon"; blank lines and lines starting with # are skipped.
const SeedFile = "seed_categories.txt"

var _ ledger.Backend = (*Store)(nil)

type Store struct {
	mu      sync.RWMutex
	nextID  int64
	records map[string]core.LedgerRecord
	cats    []catalog.Category
}

// New returns an empty ledger with the given categories. Categories without an id get
// one assigned from their position.
func New(cats []catalog.Category) *Store {
	s := &Store{records: map[string]core.LedgerRecord{}}
	seen := map[string]struct{}{}
	for _, c := range cats {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		key := string(c.Kind) + "|" + strings.ToLower(c.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if c.ID == "" {
			c.ID = strconv.Itoa(len(s.cats) + 1)
		}
		c.Icon = catalog.ParseIcon(string(c.Icon))
		s.cats = append(s.cats, c)
	}
	return s
}

// NewFromFiles seeds the catalog from base/seed_categories.txt, falling back to a
// small default set when the file is missing or empty.
func NewFromFiles(base string) *Store {
	cats := readSeed(filepath.Join(base, SeedFile))
	if len(cats) == 0 {
		cats = DefaultCategories()
	}
	return New(cats)
}

// DefaultCategories is the catalog used when no seed file is available.
func DefaultCategories() []catalog.Category {
	return []catalog.Category{
		{Kind: core.Income, Name: "Salary", Icon: catalog.IconWallet, Active: true},
		{Kind: core.Income, Name: "Allowance", Icon: catalog.IconPiggyBank, Active: true},
		{Kind: core.Income, Name: "Other income", Icon: catalog.IconTrending, Active: true},
		{Kind: core.Expense, Name: "Home", Icon: catalog.IconHome, Active: true},
		{Kind: core.Expense, Name: "Groceries", Icon: catalog.IconCart, Active: true},
		{Kind: core.Expense, Name: "Transport", Icon: catalog.IconCar, Active: true},
		{Kind: core.Expense, Name: "Health", Icon: catalog.IconHeart, Active: true},
		{Kind: core.Expense, Name: "Kids", Icon: catalog.IconBaby, Active: true},
		{Kind: core.Expense, Name: "Bills", Icon: catalog.IconZap, Active: true},
	}
}

func (s *Store) InsertRecords(_ context.Context, drafts []core.RecordDraft) ([]core.LedgerRecord, error) {
	if err := ledger.CheckDrafts(drafts); err != nil {
		return nil, core.WrapStore("insert records", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.LedgerRecord, len(drafts))
	for i, d := range drafts {
		s.nextID++
		r := core.LedgerRecord{ID: fmt.Sprintf("mem:%d", s.nextID), RecordDraft: d}
		if d.OriginalAmount != nil {
			orig := *d.OriginalAmount
			r.OriginalAmount = &orig
		}
		s.records[r.ID] = r
		out[i] = r
	}
	return out, nil
}

func (s *Store) SelectRecordsInRange(_ context.Context, rng core.DateRange) ([]core.LedgerRecord, error) {
	return s.selectWhere(func(r core.LedgerRecord) bool { return rng.Contains(r.TxDate) }), nil
}

func (s *Store) GetRecord(_ context.Context, id string) (core.LedgerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return core.LedgerRecord{}, fmt.Errorf("get record %s: %w", id, core.ErrNotFound)
	}
	return r, nil
}

func (s *Store) SelectRecordsBySeries(_ context.Context, seriesID string) ([]core.LedgerRecord, error) {
	if seriesID == "" {
		return nil, nil
	}
	return s.selectWhere(func(r core.LedgerRecord) bool { return r.SeriesID == seriesID }), nil
}

func (s *Store) UpdateRecord(_ context.Context, id string, patch core.RecordPatch) (core.LedgerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return core.LedgerRecord{}, fmt.Errorf("update record %s: %w", id, core.ErrNotFound)
	}
	updated := r.Apply(patch)
	if err := ledger.CheckDraft(updated.RecordDraft); err != nil {
		return core.LedgerRecord{}, core.WrapStore("update record", err)
	}
	s.records[id] = updated
	return updated, nil
}

func (s *Store) DeleteRecordByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *Store) DeleteRecordsBySeriesID(_ context.Context, seriesID string) error {
	s.deleteWhere(func(r core.LedgerRecord) bool { return seriesID != "" && r.SeriesID == seriesID })
	return nil
}

func (s *Store) DeleteRecordsBySeriesIDFrom(_ context.Context, seriesID string, from core.Date) error {
	s.deleteWhere(func(r core.LedgerRecord) bool {
		return seriesID != "" && r.SeriesID == seriesID && !r.TxDate.Before(from)
	})
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) ListCategories(_ context.Context, kind core.Kind) ([]catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []catalog.Category
	for _, c := range s.cats {
		if c.Active && (kind == "" || c.Kind == kind) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id string) (catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cats {
		if c.ID == id {
			return c, nil
		}
	}
	return catalog.Category{}, fmt.Errorf("get category %s: %w", id, core.ErrNotFound)
}

func (s *Store) selectWhere(keep func(core.LedgerRecord) bool) []core.LedgerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.LedgerRecord, 0)
	for _, r := range s.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b core.LedgerRecord) int {
		if c := a.TxDate.Compare(b.TxDate); c != 0 {
			return c
		}
		return cmp.Compare(idNumber(a.ID), idNumber(b.ID))
	})
	return out
}

func (s *Store) deleteWhere(match func(core.LedgerRecord) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.records {
		if match(r) {
			delete(s.records, id)
		}
	}
}

func idNumber(id string) int64 {
	n, _ := strconv.ParseInt(strings.TrimPrefix(id, "mem:"), 10, 64)
	return n
}

func readSeed(path string) []catalog.Category {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var out []catalog.Category
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) < 2 {
			continue
		}
		kind := core.Kind(strings.ToLower(strings.TrimSpace(parts[0])))
		if !kind.IsValid() {
			continue
		}
		c := catalog.Category{Kind: kind, Name: strings.TrimSpace(parts[1]), Active: true}
		if len(parts) > 2 {
			c.Icon = catalog.Icon(parts[2])
		}
		out = append(out, c)
	}
	return out
}

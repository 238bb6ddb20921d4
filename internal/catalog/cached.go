package catalog

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"famledger/internal/cache"
	"famledger/internal/core"
)

// CachedReader serves category lists from a TTL cache and applies the ordering policy.
type CachedReader struct {
	next   Reader
	order  OrderPolicy
	lists  *cache.LRU[[]Category]
	byID   *cache.LRU[Category]
	logger *slog.Logger
}

// NewCachedReader wraps next. A zero ttl disables caching.
func NewCachedReader(next Reader, order OrderPolicy, ttl time.Duration, logger *slog.Logger) *CachedReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedReader{
		next:   next,
		order:  order,
		lists:  cache.NewLRU[[]Category](8, ttl),
		byID:   cache.NewLRU[Category](256, ttl),
		logger: logger,
	}
}

// Caches returns the underlying caches so a cache.Manager can sweep them.
func (r *CachedReader) Caches() []cache.Cleaner {
	return []cache.Cleaner{r.lists, r.byID}
}

func (r *CachedReader) ListCategories(ctx context.Context, kind core.Kind) ([]Category, error) {
	key := "kind:" + string(kind)
	if cats, ok := r.lists.Get(key); ok {
		return slices.Clone(cats), nil
	}

	cats, err := r.next.ListCategories(ctx, kind)
	if err != nil {
		return nil, err
	}
	for i := range cats {
		cats[i].Icon = ParseIcon(string(cats[i].Icon))
	}
	cats = r.order.Sort(cats)

	r.lists.Set(key, cats)
	for _, c := range cats {
		r.byID.Set(c.ID, c)
	}
	r.logger.DebugContext(ctx, "Category list loaded", "kind", kind, "count", len(cats))
	return slices.Clone(cats), nil
}

func (r *CachedReader) GetCategory(ctx context.Context, id string) (Category, error) {
	if c, ok := r.byID.Get(id); ok {
		return c, nil
	}
	c, err := r.next.GetCategory(ctx, id)
	if err != nil {
		return Category{}, err
	}
	c.Icon = ParseIcon(string(c.Icon))
	r.byID.Set(id, c)
	return c, nil
}

// Invalidate drops every cached entry.
func (r *CachedReader) Invalidate() {
	r.lists.Purge()
	r.byID.Purge()
}

package market

import (
	"context"

	"lotcheck/logger"
	"lotcheck/metrics"
	"lotcheck/types"
)

// SnapshotCache stores recent successful lookups.
type SnapshotCache interface {
	// Get returns (nil, false, nil) on a miss.
	Get(ctx context.Context, key string) (*types.ItemSnapshot, bool, error)
	Set(ctx context.Context, key string, snap *types.ItemSnapshot) error
}

// CachingFetcher serves recent snapshots from a cache and falls through to
// the wrapped fetcher on a miss. Cache failures never fail a lookup.
type CachingFetcher struct {
	next    ItemFetcher
	cache   SnapshotCache
	log     logger.Logger
	metrics *metrics.Metrics
}

// NewCachingFetcher wraps next with cache.
func NewCachingFetcher(next ItemFetcher, cache SnapshotCache, log logger.Logger, m *metrics.Metrics) *CachingFetcher {
	return &CachingFetcher{next: next, cache: cache, log: log, metrics: m}
}

// FetchItem implements ItemFetcher.
func (f *CachingFetcher) FetchItem(ctx context.Context, id string, mode Mode) (*types.ItemSnapshot, error) {
	if id == "" {
		return f.next.FetchItem(ctx, id, mode)
	}
	key := cacheKey(id, mode)

	snap, ok, err := f.cache.Get(ctx, key)
	switch {
	case err != nil:
		f.metrics.CacheLookups.WithLabelValues("error").Inc()
		f.log.Warn("Snapshot cache read failed", logger.String("item_id", id), logger.Error(err))
	case ok:
		f.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return snap, nil
	default:
		f.metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	snap, err = f.next.FetchItem(ctx, id, mode)
	if err != nil {
		return nil, err
	}

	if err := f.cache.Set(ctx, key, snap); err != nil {
		f.log.Warn("Snapshot cache write failed", logger.String("item_id", id), logger.Error(err))
	}
	return snap, nil
}

func cacheKey(id string, mode Mode) string {
	return string(mode) + ":" + id
}

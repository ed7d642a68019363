package market

import (
	"context"
	"errors"
	"testing"

	"lotcheck/logger"
	"lotcheck/metrics"
	"lotcheck/types"
)

type memoryCache struct {
	items   map[string]types.ItemSnapshot
	getErr  error
	setErr  error
	setKeys []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string]types.ItemSnapshot)}
}

func (m *memoryCache) Get(_ context.Context, key string) (*types.ItemSnapshot, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	snap, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	return &snap, true, nil
}

func (m *memoryCache) Set(_ context.Context, key string, snap *types.ItemSnapshot) error {
	m.setKeys = append(m.setKeys, key)
	if m.setErr != nil {
		return m.setErr
	}
	m.items[key] = *snap
	return nil
}

type countingFetcher struct {
	calls int
	snap  *types.ItemSnapshot
	err   error
}

func (f *countingFetcher) FetchItem(context.Context, string, Mode) (*types.ItemSnapshot, error) {
	f.calls++
	return f.snap, f.err
}

func TestCachingFetcher_HitSkipsUpstream(t *testing.T) {
	next := &countingFetcher{snap: &types.ItemSnapshot{Price: 10, State: types.ItemStateActive}}
	cache := newMemoryCache()
	f := NewCachingFetcher(next, cache, logger.NewNop(), metrics.New())

	for i := 0; i < 3; i++ {
		snap, err := f.FetchItem(context.Background(), "42", ModeDefault)
		if err != nil || snap.Price != 10 {
			t.Fatalf("FetchItem = %+v, %v", snap, err)
		}
	}
	if next.calls != 1 {
		t.Errorf("upstream calls = %d, want 1", next.calls)
	}
	if _, ok := cache.items["default:42"]; !ok {
		t.Errorf("cache keys = %v", cache.setKeys)
	}
}

func TestCachingFetcher_FailuresNotCached(t *testing.T) {
	next := &countingFetcher{err: ErrUnexpectedStatus}
	cache := newMemoryCache()
	f := NewCachingFetcher(next, cache, logger.NewNop(), metrics.New())

	if _, err := f.FetchItem(context.Background(), "42", ModeDefault); !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("err = %v", err)
	}
	if len(cache.setKeys) != 0 {
		t.Errorf("failed lookup was cached: %v", cache.setKeys)
	}
}

func TestCachingFetcher_CacheErrorsFallThrough(t *testing.T) {
	next := &countingFetcher{snap: &types.ItemSnapshot{Price: 10, State: types.ItemStatePaid}}
	cache := newMemoryCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	f := NewCachingFetcher(next, cache, logger.NewNop(), metrics.New())

	snap, err := f.FetchItem(context.Background(), "42", ModeSpecial)
	if err != nil || snap == nil {
		t.Fatalf("FetchItem = %+v, %v", snap, err)
	}
	if next.calls != 1 {
		t.Errorf("upstream calls = %d, want 1", next.calls)
	}
}

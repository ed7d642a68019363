package batch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotcheck/config"
	"lotcheck/logger"
	"lotcheck/market"
	"lotcheck/metrics"
	"lotcheck/types"
)

type fakeFetcher struct {
	items map[string]*types.ItemSnapshot
	calls []string
	hook  func(id string)
}

func (f *fakeFetcher) FetchItem(_ context.Context, id string, _ market.Mode) (*types.ItemSnapshot, error) {
	f.calls = append(f.calls, id)
	if f.hook != nil {
		f.hook(id)
	}
	snap, ok := f.items[id]
	if !ok {
		return nil, market.ErrUnexpectedStatus
	}
	return snap, nil
}

func newProcessor(f market.ItemFetcher) *Processor {
	return NewProcessor(f, logger.NewNop(), metrics.New())
}

func collect(t *testing.T, p *Processor, links []string) ([]types.BatchProgress, *Report) {
	t.Helper()
	var out []types.BatchProgress
	report, err := p.Run(context.Background(), Request{Links: links}, func(bp types.BatchProgress) error {
		out = append(out, bp)
		return nil
	})
	require.NoError(t, err)
	return out, report
}

func TestRun_SingleGreen(t *testing.T) {
	f := &fakeFetcher{items: map[string]*types.ItemSnapshot{
		"12345": {Price: 100, State: types.ItemStatePaid},
	}}

	out, report := collect(t, newProcessor(f), []string{"item/12345"})

	require.Len(t, out, 1)
	assert.Equal(t, "1 of 1", out[0].Progress)
	assert.Equal(t, int64(97), out[0].TotalGreenPrice)
	require.Len(t, out[0].FilteredResults, 1)
	assert.Equal(t, types.ClassifiedResult{
		Link: "item/12345", ItemID: "12345", Symbol: types.SymbolGreen, Price: 97,
	}, out[0].FilteredResults[0])

	assert.Equal(t, int64(97), report.TotalGreenPrice)
	assert.Equal(t, 1, report.Counts[types.SymbolGreen])
	assert.Equal(t, market.ModeDefault, report.Mode)
}

func TestRun_RemovedThenRed(t *testing.T) {
	f := &fakeFetcher{items: map[string]*types.ItemSnapshot{
		"111": {Price: 50, State: types.ItemStateActive},
	}}

	out, _ := collect(t, newProcessor(f), []string{"item/999", "item/111"})

	require.Len(t, out, 2)
	assert.Equal(t, types.SymbolRemoved, out[0].FilteredResults[0].Symbol)
	assert.Equal(t, int64(0), out[0].FilteredResults[0].Price)
	assert.Equal(t, types.SymbolRed, out[1].FilteredResults[1].Symbol)
	assert.Equal(t, int64(48), out[1].FilteredResults[1].Price)
	for _, bp := range out {
		assert.Equal(t, int64(0), bp.TotalGreenPrice)
	}
}

func TestRun_OnlyGreenCountsTowardTotal(t *testing.T) {
	f := &fakeFetcher{items: map[string]*types.ItemSnapshot{
		"1": {Price: 100, State: types.ItemStatePaid},
		"2": {Price: 200, State: types.ItemStatePaid, GuaranteeActive: true},
		"3": {Price: 300, State: types.ItemStateActive},
		"4": {Price: 1000, State: types.ItemStatePaid},
	}}

	out, report := collect(t, newProcessor(f), []string{"a1", "a2", "a3", "a5", "a4"})

	totals := make([]int64, len(out))
	for i, bp := range out {
		totals[i] = bp.TotalGreenPrice
	}
	assert.Equal(t, []int64{97, 97, 97, 97, 1067}, totals)
	assert.Equal(t, map[types.Symbol]int{
		types.SymbolGreen:   2,
		types.SymbolYellow:  1,
		types.SymbolRed:     1,
		types.SymbolRemoved: 1,
	}, report.Counts)
}

func TestRun_OneRecordPerLinkInOrder(t *testing.T) {
	const n = 7
	f := &fakeFetcher{items: map[string]*types.ItemSnapshot{}}
	links := make([]string, n)
	for i := range links {
		id := fmt.Sprint(i + 10)
		links[i] = "https://market.example/" + id + "/"
		f.items[id] = &types.ItemSnapshot{Price: float64(i), State: types.ItemStateActive}
	}

	out, _ := collect(t, newProcessor(f), links)

	require.Len(t, out, n)
	for i, bp := range out {
		assert.Equal(t, fmt.Sprintf("%d of %d", i+1, n), bp.Progress)
		require.Len(t, bp.FilteredResults, i+1)
		for j := 0; j <= i; j++ {
			assert.Equal(t, links[j], bp.FilteredResults[j].Link)
		}
	}
}

func TestRun_EmissionsAreStable(t *testing.T) {
	f := &fakeFetcher{items: map[string]*types.ItemSnapshot{
		"1": {Price: 10, State: types.ItemStatePaid},
		"2": {Price: 20, State: types.ItemStatePaid},
	}}

	out, _ := collect(t, newProcessor(f), []string{"1", "2"})

	first := out[0].FilteredResults
	require.Len(t, first, 1)
	assert.Equal(t, "1", first[0].Link)
	// Appending to an earlier emission must not clobber later results.
	_ = append(first, types.ClassifiedResult{Link: "x"})
	assert.Equal(t, "2", out[1].FilteredResults[1].Link)
}

func TestRun_EmptyIDIsRemovedWithoutFetch(t *testing.T) {
	f := &fakeFetcher{items: map[string]*types.ItemSnapshot{}}

	out, _ := collect(t, newProcessor(f), []string{"no digits here"})

	require.Len(t, out, 1)
	assert.Equal(t, types.SymbolRemoved, out[0].FilteredResults[0].Symbol)
	assert.Empty(t, f.calls)
}

func TestRun_EmptyBatch(t *testing.T) {
	out, report := collect(t, newProcessor(&fakeFetcher{}), nil)

	assert.Empty(t, out)
	assert.Equal(t, 0, report.Total)
	assert.Empty(t, report.Results)
}

func TestRun_CancelStopsBeforeNextLink(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := &fakeFetcher{items: map[string]*types.ItemSnapshot{
		"1": {Price: 10, State: types.ItemStatePaid},
		"2": {Price: 10, State: types.ItemStatePaid},
		"3": {Price: 10, State: types.ItemStatePaid},
	}}
	f.hook = func(id string) {
		if id == "2" {
			cancel()
		}
	}

	var out []types.BatchProgress
	report, err := newProcessor(f).Run(ctx, Request{Links: []string{"1", "2", "3"}}, func(bp types.BatchProgress) error {
		out = append(out, bp)
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, report)
	assert.Len(t, out, 1)
	assert.Equal(t, []string{"1", "2"}, f.calls)
}

func TestRun_EmitErrorAborts(t *testing.T) {
	f := &fakeFetcher{items: map[string]*types.ItemSnapshot{}}
	gone := errors.New("client gone")

	calls := 0
	_, err := newProcessor(f).Run(context.Background(), Request{Links: []string{"1", "2", "3"}}, func(types.BatchProgress) error {
		calls++
		return gone
	})

	require.ErrorIs(t, err, gone)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"1"}, f.calls)
}

func TestStream_YieldsEveryRecord(t *testing.T) {
	f := &fakeFetcher{items: map[string]*types.ItemSnapshot{
		"1": {Price: 100, State: types.ItemStatePaid},
	}}
	seq := newProcessor(f).Stream(context.Background(), Request{Links: []string{"1", "2"}})

	var progress []string
	for bp, err := range seq {
		require.NoError(t, err)
		progress = append(progress, bp.Progress)
	}
	assert.Equal(t, []string{"1 of 2", "2 of 2"}, progress)

	// Not restartable.
	var errs []error
	for _, err := range seq {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrStreamReused)
}

func TestStream_CancelEndsWithError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := &fakeFetcher{items: map[string]*types.ItemSnapshot{}}
	f.hook = func(id string) {
		if id == "2" {
			cancel()
		}
	}
	seq := newProcessor(f).Stream(ctx, Request{Links: []string{"1", "2", "3"}})

	var progress []string
	var last error
	for bp, err := range seq {
		if err != nil {
			last = err
			continue
		}
		progress = append(progress, bp.Progress)
	}

	assert.Equal(t, []string{"1 of 3"}, progress)
	assert.ErrorIs(t, last, context.Canceled)
}

func TestStream_BreakStopsFetching(t *testing.T) {
	f := &fakeFetcher{items: map[string]*types.ItemSnapshot{}}
	seq := newProcessor(f).Stream(context.Background(), Request{Links: []string{"1", "2", "3"}})

	for _, err := range seq {
		require.NoError(t, err)
		break
	}
	assert.Equal(t, []string{"1"}, f.calls)
}

func TestRun_RetryAfterRateLimitYieldsOneRecord(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"item":{"price":100,"item_state":"paid","guarantee":{"active":false}}}`))
	}))
	defer srv.Close()

	m := metrics.New()
	client := market.NewClient(config.MarketConfig{
		BaseURL:       srv.URL,
		Token:         "t",
		Timeout:       2 * time.Second,
		MaxRetries:    3,
		RetryPause:    time.Millisecond,
		MaxRetryPause: 4 * time.Millisecond,
	}, logger.NewNop(), m)

	out, report := collect(t, NewProcessor(client, logger.NewNop(), m), []string{"item/12345"})

	require.Len(t, out, 1)
	assert.Equal(t, types.SymbolGreen, out[0].FilteredResults[0].Symbol)
	assert.Equal(t, int64(97), report.TotalGreenPrice)
	assert.Equal(t, int32(2), calls.Load())
}

package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suiLiquidity/internal/metrics"
	"suiLiquidity/internal/model"
	"suiLiquidity/internal/pools"
)

type fakeLoader struct {
	mu    sync.Mutex
	pools map[string][]model.PoolInfo
	errs  map[string]error
	calls map[string]int
}

func (f *fakeLoader) Load(_ context.Context, dex string) ([]model.PoolInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[dex]++
	if err := f.errs[dex]; err != nil {
		return nil, err
	}
	return f.pools[dex], nil
}

type memStorage struct {
	mu    sync.Mutex
	snaps []model.PoolSnapshot
	fails int
}

func (m *memStorage) PutPoolSnapshots(_ context.Context, snaps []model.PoolSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fails > 0 {
		m.fails--
		return errors.New("disk full")
	}
	m.snaps = append(m.snaps, snaps...)
	return nil
}

func testPools() map[string][]model.PoolInfo {
	return map[string][]model.PoolInfo{
		model.DEXCetus: {
			{DEX: model.DEXCetus, PoolID: "0x1", CurrentTick: 10, LiquidityUSD: "100"},
			{DEX: model.DEXCetus, PoolID: "0x2", CurrentTick: 20, LiquidityUSD: "200"},
		},
	}
}

func TestRunOnceWritesSnapshots(t *testing.T) {
	loader := &fakeLoader{pools: testPools()}
	store := &memStorage{fails: 1}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	r := NewRunner(RunConfig{DEXes: []string{model.DEXCetus}, MaxRetries: 1, RetryBackoff: time.Millisecond}, loader, store, m, nil)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	r.now = func() time.Time { return at }

	require.NoError(t, r.RunOnce(context.Background()))
	require.Len(t, store.snaps, 2)
	assert.Equal(t, at, store.snaps[0].CapturedAt)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SnapshotsWritten))
}

func TestRunOnceSkipsUnchanged(t *testing.T) {
	loader := &fakeLoader{pools: testPools()}
	store := &memStorage{}
	r := NewRunner(RunConfig{DEXes: []string{model.DEXCetus}, SkipUnchanged: true}, loader, store, nil, nil)

	require.NoError(t, r.RunOnce(context.Background()))
	loader.pools[model.DEXCetus][1].CurrentTick = 21
	require.NoError(t, r.RunOnce(context.Background()))

	require.Len(t, store.snaps, 3)
	assert.Equal(t, int32(21), store.snaps[2].CurrentTick)
}

func TestRunOnceContinuesAfterFailure(t *testing.T) {
	loader := &fakeLoader{
		pools: testPools(),
		errs:  map[string]error{model.DEXTurbos: errors.New("rpc down")},
	}
	store := &memStorage{}
	var seen []string
	r := NewRunner(RunConfig{DEXes: []string{model.DEXTurbos, model.DEXCetus}}, loader, store, nil, nil)
	r.OnPools = func(dex string, _ []model.PoolInfo) { seen = append(seen, dex) }

	err := r.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "turbos")
	assert.Equal(t, []string{model.DEXCetus}, seen)
	assert.Len(t, store.snaps, 2)
}

func TestRunOnceSwallowsSuperseded(t *testing.T) {
	loader := &fakeLoader{errs: map[string]error{model.DEXCetus: pools.ErrSuperseded}}
	r := NewRunner(RunConfig{DEXes: []string{model.DEXCetus}, MaxRetries: 3}, loader, &memStorage{}, nil, nil)

	require.NoError(t, r.RunOnce(context.Background()))
	assert.Equal(t, 1, loader.calls[model.DEXCetus])
}

func TestRunStopsOnCancel(t *testing.T) {
	loader := &fakeLoader{pools: testPools()}
	store := &memStorage{}
	r := NewRunner(RunConfig{DEXes: []string{model.DEXCetus}, Interval: 5 * time.Millisecond}, loader, store, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := r.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	loader.mu.Lock()
	defer loader.mu.Unlock()
	assert.GreaterOrEqual(t, loader.calls[model.DEXCetus], 2)
}

func TestRunValidates(t *testing.T) {
	r := NewRunner(RunConfig{}, nil, nil, nil, nil)
	assert.Error(t, r.RunOnce(context.Background()))

	r = NewRunner(RunConfig{DEXes: []string{"cetus"}}, &fakeLoader{}, nil, nil, nil)
	assert.Error(t, r.Run(context.Background()))
}

func TestRunOnceRewritesAfterFailedStore(t *testing.T) {
	loader := &fakeLoader{pools: testPools()}
	store := &memStorage{fails: 1}
	r := NewRunner(RunConfig{DEXes: []string{model.DEXCetus}, SkipUnchanged: true, RetryBackoff: time.Millisecond}, loader, store, nil, nil)

	require.Error(t, r.RunOnce(context.Background()))
	require.Empty(t, store.snaps)

	require.NoError(t, r.RunOnce(context.Background()))
	require.Len(t, store.snaps, 2)

	require.NoError(t, r.RunOnce(context.Background()))
	assert.Len(t, store.snaps, 2)
}

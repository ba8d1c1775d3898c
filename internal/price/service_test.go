package price

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSource struct {
	name   string
	prices map[string]string
	err    error
	calls  atomic.Int32
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) PriceUSD(_ context.Context, coinType string) (decimal.Decimal, error) {
	s.calls.Add(1)
	if s.err != nil {
		return decimal.Zero, s.err
	}
	p, ok := s.prices[coinType]
	if !ok {
		return decimal.Zero, errors.New("unknown")
	}
	return decimal.RequireFromString(p), nil
}

const sui = "0x0000000000000000000000000000000000000000000000000000000000000002::sui::SUI"

func TestPriceUSDFailsOverAndCaches(t *testing.T) {
	primary := &stubSource{name: "birdeye", err: errors.New("503")}
	secondary := &stubSource{name: "blockvision", prices: map[string]string{sui: "3.25"}}
	svc := NewService([]Source{primary, secondary}, nil, DefaultBreakerConfig(), nil, zap.NewNop())

	q, err := svc.PriceUSD(context.Background(), "0x2::sui::SUI")
	require.NoError(t, err)
	assert.Equal(t, "blockvision", q.Source)
	assert.True(t, q.PriceUSD.Equal(decimal.RequireFromString("3.25")))

	_, err = svc.PriceUSD(context.Background(), sui)
	require.NoError(t, err)
	assert.Equal(t, int32(1), secondary.calls.Load())

	svc.Cache().Clear()
	_, err = svc.PriceUSD(context.Background(), sui)
	require.NoError(t, err)
	assert.Equal(t, int32(2), secondary.calls.Load())
}

func TestPriceUSDAllSourcesFail(t *testing.T) {
	svc := NewService([]Source{&stubSource{name: "a", err: errors.New("down")}}, nil, BreakerConfig{}, nil, nil)
	_, err := svc.PriceUSD(context.Background(), sui)
	assert.ErrorIs(t, err, ErrNoPrice)
}

func TestPriceUSDRejectsZero(t *testing.T) {
	src := &stubSource{name: "a", prices: map[string]string{sui: "0"}}
	svc := NewService([]Source{src}, nil, BreakerConfig{}, nil, nil)
	_, err := svc.PriceUSD(context.Background(), sui)
	assert.ErrorIs(t, err, ErrNoPrice)
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	flaky := &stubSource{name: "flaky", err: errors.New("timeout")}
	svc := NewService([]Source{flaky}, nil, BreakerConfig{MaxFailures: 2, OpenTimeout: time.Minute}, nil, nil)

	for i := 0; i < 4; i++ {
		_, err := svc.PriceUSD(context.Background(), sui)
		require.Error(t, err)
	}
	assert.Equal(t, int32(2), flaky.calls.Load())
}

func TestPrices(t *testing.T) {
	src := &stubSource{name: "a", prices: map[string]string{sui: "1.5"}}
	svc := NewService([]Source{src}, nil, BreakerConfig{}, nil, nil)

	out, err := svc.Prices(context.Background(), []string{"0x2::sui::SUI", "0x3::x::X"})
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Contains(t, out, "0x2::sui::SUI")
}

func TestCacheMaxAge(t *testing.T) {
	cache := NewCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	cache.Set(sui, Quote{CoinType: sui, PriceUSD: decimal.NewFromInt(1), FetchedAt: now})

	_, ok := cache.Get(sui)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = cache.Get(sui)
	assert.False(t, ok)

	cache.Invalidate(sui)
	assert.Equal(t, 0, cache.Len())
}

package price

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"suiLiquidity/internal/metrics"
	"suiLiquidity/internal/token"
)

// ErrNoPrice is returned when every source fails.
var ErrNoPrice = errors.New("no price available")

// Source is a USD price provider.
type Source interface {
	Name() string
	PriceUSD(ctx context.Context, coinType string) (decimal.Decimal, error)
}

// BreakerConfig tunes the per-source circuit breakers.
type BreakerConfig struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{MaxFailures: 5, OpenTimeout: 30 * time.Second}
}

type guardedSource struct {
	source  Source
	breaker *gobreaker.CircuitBreaker[decimal.Decimal]
}

// Service resolves prices: cache first, then sources in order.
type Service struct {
	sources []guardedSource
	cache   *Cache
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(sources []Source, cache *Cache, cfg BreakerConfig, m *metrics.Metrics, logger *zap.Logger) *Service {
	if cache == nil {
		cache = NewCache(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFailures == 0 {
		cfg = DefaultBreakerConfig()
	}

	s := &Service{cache: cache, metrics: m, logger: logger, now: time.Now}
	for _, src := range sources {
		name := src.Name()
		settings := gobreaker.Settings{
			Name:    name,
			Timeout: cfg.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.MaxFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Info("price breaker state change",
					zap.String("source", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
				m.SetBreakerState(name, float64(to))
			},
		}
		s.sources = append(s.sources, guardedSource{
			source:  src,
			breaker: gobreaker.NewCircuitBreaker[decimal.Decimal](settings),
		})
	}
	return s
}

// Cache exposes the quote cache.
func (s *Service) Cache() *Cache {
	return s.cache
}

// PriceUSD returns the USD price of coinType.
func (s *Service) PriceUSD(ctx context.Context, coinType string) (Quote, error) {
	canonical, err := token.CanonicalAddress(coinType)
	if err != nil {
		return Quote{}, err
	}
	if q, ok := s.cache.Get(canonical); ok {
		s.metrics.ObservePriceLookup("cache", "hit")
		return q, nil
	}

	var errs []error
	for _, gs := range s.sources {
		name := gs.source.Name()
		value, err := gs.breaker.Execute(func() (decimal.Decimal, error) {
			return gs.source.PriceUSD(ctx, canonical)
		})
		if err == nil && !value.IsPositive() {
			err = fmt.Errorf("non-positive price %s", value)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Quote{}, ctxErr
			}
			s.metrics.ObservePriceLookup(name, "error")
			s.logger.Warn("price source failed", zap.String("source", name), zap.String("coin_type", canonical), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		s.metrics.ObservePriceLookup(name, "ok")
		q := Quote{CoinType: canonical, PriceUSD: value, Source: name, FetchedAt: s.now().UTC()}
		s.cache.Set(canonical, q)
		return q, nil
	}

	if len(errs) == 0 {
		return Quote{}, fmt.Errorf("%w for %s", ErrNoPrice, canonical)
	}
	return Quote{}, fmt.Errorf("%w for %s: %w", ErrNoPrice, canonical, errors.Join(errs...))
}

// Prices resolves many coin types concurrently. Coin types without a price
// are absent from the result.
func (s *Service) Prices(ctx context.Context, coinTypes []string) (map[string]Quote, error) {
	quotes := make([]*Quote, len(coinTypes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, coinType := range coinTypes {
		g.Go(func() error {
			q, err := s.PriceUSD(gctx, coinType)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return nil
			}
			quotes[i] = &q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]Quote, len(coinTypes))
	for i, coinType := range coinTypes {
		if quotes[i] != nil {
			out[coinType] = *quotes[i]
		}
	}
	return out, nil
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"suiLiquidity/internal/chain"
	"suiLiquidity/internal/config"
	"suiLiquidity/internal/dex"
	"suiLiquidity/internal/metrics"
	"suiLiquidity/internal/model"
	"suiLiquidity/internal/pools"
	"suiLiquidity/internal/price"
	"suiLiquidity/internal/provider/birdeye"
	"suiLiquidity/internal/provider/blockvision"
	"suiLiquidity/internal/provider/cetus"
	"suiLiquidity/internal/token"
)

// stack holds the clients shared by every command.
type stack struct {
	chain       *chain.Client
	blockvision *blockvision.Client
	birdeye     *birdeye.Client
	cetus       *cetus.Client
	tokens      *token.Resolver
	prices      *price.Service
	metrics     *metrics.Metrics
}

func newStack(ctx context.Context, cfg config.Providers, reg prometheus.Registerer, logger *zap.Logger) (*stack, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	m := metrics.New(reg)

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}

	bv := blockvision.New(blockvision.Config{
		BaseURL:   cfg.BlockVisionURL,
		APIKey:    cfg.BlockVisionKey,
		Timeout:   cfg.RequestTimeout,
		RateLimit: cfg.RateLimit,
	}, m, logger)
	be := birdeye.New(birdeye.Config{
		BaseURL:   cfg.BirdeyeURL,
		APIKey:    cfg.BirdeyeKey,
		Chain:     cfg.BirdeyeChain,
		Timeout:   cfg.RequestTimeout,
		RateLimit: cfg.RateLimit,
	}, m, logger)
	ce := cetus.New(cetus.Config{
		BaseURL:   cfg.CetusURL,
		Timeout:   cfg.RequestTimeout,
		RateLimit: cfg.RateLimit,
	}, m, logger)

	resolver := token.NewResolver(chainClient, []token.InfoSource{bv, be}, token.NewCache(), logger)

	breaker := price.DefaultBreakerConfig()
	if cfg.BreakerMaxFailures > 0 {
		breaker.MaxFailures = cfg.BreakerMaxFailures
	}
	if cfg.BreakerOpenTimeout > 0 {
		breaker.OpenTimeout = cfg.BreakerOpenTimeout
	}
	prices := price.NewService([]price.Source{be, bv}, price.NewCache(cfg.PriceTTL), breaker, m, logger)

	return &stack{
		chain:       chainClient,
		blockvision: bv,
		birdeye:     be,
		cetus:       ce,
		tokens:      resolver,
		prices:      prices,
		metrics:     m,
	}, nil
}

func (s *stack) Close() {
	s.chain.Close()
}

// aggregator wires a pools.Aggregator for dexes. Cetus lists from its stats
// API unless pool ids are configured; the other dexes need pool ids.
func (s *stack) aggregator(dexes []string, poolIDs map[string][]string, limit int, logger *zap.Logger) (*pools.Aggregator, error) {
	listers := make(map[string]pools.Lister, len(dexes))
	for _, name := range dexes {
		if _, err := dex.LayoutFor(name); err != nil {
			return nil, err
		}
		ids := poolIDs[name]
		switch {
		case len(ids) > 0:
			listers[name] = pools.StaticLister{DEX: name, PoolIDs: ids}
		case name == model.DEXCetus:
			listers[name] = pools.CetusLister{Client: s.cetus, Limit: limit}
		default:
			return nil, fmt.Errorf("%s needs pool ids (--config %s-pools or DESK_%s_POOLS)", name, name, strings.ToUpper(name))
		}
	}

	cfg := pools.Config{
		Listers:    listers,
		Objects:    s.chain,
		Tokens:     s.tokens,
		Prices:     s.prices,
		StateCache: dex.NewPoolStateCache(),
		Metrics:    s.metrics,
	}
	if _, ok := listers[model.DEXCetus]; ok {
		cfg.Vaults = s.cetus
	}
	return pools.NewAggregator(cfg, logger), nil
}

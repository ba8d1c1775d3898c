// Package pools builds the merged pool list shown by the desk: pool stats,
// on-chain pool state, vault linkage and token metadata.
package pools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"suiLiquidity/internal/clmm"
	"suiLiquidity/internal/dex"
	"suiLiquidity/internal/metrics"
	"suiLiquidity/internal/model"
	"suiLiquidity/internal/price"
	"suiLiquidity/internal/provider/cetus"
	"suiLiquidity/internal/token"
)

const tracerName = "suiLiquidity/pools"

// ErrUnsupportedDEX is returned for a DEX without a configured lister.
var ErrUnsupportedDEX = errors.New("unsupported dex")

// TokenResolver resolves coin metadata.
type TokenResolver interface {
	ResolveMany(ctx context.Context, coinTypes []string) (map[string]model.TokenMetadata, error)
}

// PriceLookup resolves USD prices.
type PriceLookup interface {
	Prices(ctx context.Context, coinTypes []string) (map[string]price.Quote, error)
}

// VaultLister lists vaults linked to pools.
type VaultLister interface {
	Vaults(ctx context.Context) ([]cetus.Vault, error)
}

// Config wires the aggregator dependencies. Only Listers is required.
type Config struct {
	Listers    map[string]Lister
	Objects    dex.ObjectFetcher
	Vaults     VaultLister
	Tokens     TokenResolver
	Prices     PriceLookup
	StateCache *dex.PoolStateCache
	Metrics    *metrics.Metrics
}

// Aggregator merges pool data from every configured source.
type Aggregator struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

func NewAggregator(cfg Config, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StateCache == nil {
		cfg.StateCache = dex.NewPoolStateCache()
	}
	return &Aggregator{cfg: cfg, logger: logger, now: time.Now}
}

// DEXes lists the configured DEX identifiers.
func (a *Aggregator) DEXes() []string {
	out := make([]string, 0, len(a.cfg.Listers))
	for name := range a.cfg.Listers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Fetch builds the pool list of one DEX. Only the pool list itself is
// required; chain state, vaults, metadata and prices degrade to whatever
// the list carried.
func (a *Aggregator) Fetch(ctx context.Context, dexName string) ([]model.PoolInfo, error) {
	lister, ok := a.cfg.Listers[dexName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDEX, dexName)
	}
	start := a.now()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "pools.fetch", trace.WithAttributes(attribute.String("dex", dexName)))
	defer span.End()

	list, err := lister.ListPools(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list %s pools: %w", dexName, err)
	}
	span.SetAttributes(attribute.Int("pools", len(list)))
	if len(list) == 0 {
		return list, nil
	}

	ids := make([]string, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.PoolID)
	}

	var (
		states map[string]model.PoolState
		vaults map[string]cetus.Vault
	)
	g, gctx := errgroup.WithContext(ctx)
	if a.cfg.Objects != nil {
		g.Go(func() error {
			s, err := dex.FetchPoolStates(gctx, a.cfg.Objects, dexName, ids, a.cfg.StateCache, a.logger)
			if err != nil {
				a.logger.Warn("pool state fetch failed, using list data", zap.String("dex", dexName), zap.Error(err))
				return nil
			}
			states = s
			return nil
		})
	}
	if a.cfg.Vaults != nil && dexName == model.DEXCetus {
		g.Go(func() error {
			v, err := a.cfg.Vaults.Vaults(gctx)
			if err != nil {
				a.logger.Warn("vault fetch failed", zap.String("dex", dexName), zap.Error(err))
				return nil
			}
			vaults = make(map[string]cetus.Vault, len(v))
			for _, vault := range v {
				vaults[vault.PoolID] = vault
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	states, stale := a.withCachedStates(ids, states)
	for i := range list {
		if state, ok := states[list[i].PoolID]; ok {
			applyState(&list[i], state)
		}
	}

	coinTypes := collectCoinTypes(list)
	tokens := a.resolveTokens(ctx, coinTypes)
	quotes := a.lookupPrices(ctx, coinTypes, tokens)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fetchedAt := a.now().UTC()
	for i := range list {
		p := &list[i]
		applyToken(&p.TokenA, tokens[p.TokenA.Address])
		applyToken(&p.TokenB, tokens[p.TokenB.Address])
		if state, ok := states[p.PoolID]; ok {
			ref := usdReference(quotes, p.TokenA.Address, p.TokenB.Address)
			p.CurrentPrice = clmm.TickToPrice(state.CurrentTick, p.TokenA.Decimals, p.TokenB.Decimals, ref).Value
		}
		if p.LiquidityUSD == "" {
			p.LiquidityUSD = "0"
		}
		if p.Volume24hUSD == "" {
			p.Volume24hUSD = "0"
		}
		if p.Fees24hUSD == "" {
			p.Fees24hUSD = "0"
		}
		if p.APR == nil {
			p.APR = computeAPR(p.Fees24hUSD, p.LiquidityUSD)
		}
		if vault, ok := vaults[p.PoolID]; ok {
			p.HasVault = true
			p.VaultID = vault.ID
			if vault.APY.Valid {
				apy := vault.APY.Decimal.StringFixed(2)
				p.VaultAPY = &apy
			}
		}
		p.FetchedAt = fetchedAt
	}

	a.cfg.Metrics.ObservePoolFetch(dexName, len(list), a.now().Sub(start).Seconds())
	a.logger.Debug("pools fetched",
		zap.String("dex", dexName),
		zap.Int("pools", len(list)),
		zap.Int("with_state", len(states)),
		zap.Int("stale_state", stale),
		zap.Int("vaults", len(vaults)),
	)
	return list, nil
}

// FetchAll fetches every configured DEX concurrently. A failing DEX is
// logged and left out.
func (a *Aggregator) FetchAll(ctx context.Context) ([]model.PoolInfo, error) {
	names := a.DEXes()
	results := make([][]model.PoolInfo, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pools, err := a.Fetch(ctx, name)
			if err != nil {
				if ctx.Err() == nil {
					a.logger.Warn("dex fetch failed", zap.String("dex", name), zap.Error(err))
				}
				return
			}
			results[i] = pools
		}()
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []model.PoolInfo
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// withCachedStates fills pools the chain did not answer for with their last
// decoded state, so a failed object fetch leaves stale data in place.
func (a *Aggregator) withCachedStates(ids []string, states map[string]model.PoolState) (map[string]model.PoolState, int) {
	if states == nil {
		states = make(map[string]model.PoolState, len(ids))
	}
	stale := 0
	for _, id := range ids {
		if _, ok := states[id]; ok {
			continue
		}
		if state, ok := a.cfg.StateCache.Get(id); ok {
			states[id] = state
			stale++
		}
	}
	return states, stale
}

func (a *Aggregator) resolveTokens(ctx context.Context, coinTypes []string) map[string]model.TokenMetadata {
	if a.cfg.Tokens == nil || len(coinTypes) == 0 {
		return nil
	}
	tokens, err := a.cfg.Tokens.ResolveMany(ctx, coinTypes)
	if err != nil {
		a.logger.Warn("token metadata failed", zap.Error(err))
		return nil
	}
	return tokens
}

// lookupPrices prefers prices carried by token metadata and asks the price
// service for the rest.
func (a *Aggregator) lookupPrices(ctx context.Context, coinTypes []string, tokens map[string]model.TokenMetadata) map[string]float64 {
	out := make(map[string]float64, len(coinTypes))
	var missing []string
	for _, ct := range coinTypes {
		if meta, ok := tokens[ct]; ok && meta.PriceUSD != nil && *meta.PriceUSD > 0 {
			out[ct] = *meta.PriceUSD
			continue
		}
		missing = append(missing, ct)
	}
	if a.cfg.Prices == nil || len(missing) == 0 {
		return out
	}
	quotes, err := a.cfg.Prices.Prices(ctx, missing)
	if err != nil {
		a.logger.Warn("price lookup failed", zap.Error(err))
		return out
	}
	for ct, q := range quotes {
		out[ct] = q.PriceUSD.InexactFloat64()
	}
	return out
}

func applyState(p *model.PoolInfo, state model.PoolState) {
	p.CurrentTick = state.CurrentTick
	if state.TickSpacing > 0 {
		p.TickSpacing = state.TickSpacing
	}
	if p.FeeBps == 0 && state.FeeRate > 0 {
		p.FeeBps = dex.FeeBps(state.FeeRate)
	}
	if p.TokenA.Address == "" {
		p.TokenA.Address = state.CoinTypeA
	}
	if p.TokenB.Address == "" {
		p.TokenB.Address = state.CoinTypeB
	}
}

// applyToken fills gaps in a pool token from resolved metadata. Decimals
// from metadata win when the chain confirmed them.
func applyToken(t *model.PoolToken, meta model.TokenMetadata) {
	if meta.Address == "" {
		return
	}
	if t.Symbol == "" {
		t.Symbol = meta.Symbol
	}
	if t.Decimals == 0 || hasSource(meta, token.SourceChain) {
		t.Decimals = meta.Decimals
	}
	if t.LogoURL == "" {
		t.LogoURL = meta.LogoURL
	}
}

func hasSource(meta model.TokenMetadata, source string) bool {
	for _, s := range meta.Sources {
		if s == source {
			return true
		}
	}
	return false
}

func collectCoinTypes(list []model.PoolInfo) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range list {
		for _, addr := range []string{p.TokenA.Address, p.TokenB.Address} {
			if addr == "" {
				continue
			}
			if _, ok := seen[addr]; ok {
				continue
			}
			seen[addr] = struct{}{}
			out = append(out, addr)
		}
	}
	return out
}

func usdReference(prices map[string]float64, a, b string) *clmm.USDReference {
	pa, okA := prices[a]
	pb, okB := prices[b]
	if !okA || !okB {
		return nil
	}
	return &clmm.USDReference{A: pa, B: pb}
}

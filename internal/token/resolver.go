package token

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"suiLiquidity/internal/chain"
	"suiLiquidity/internal/model"
)

const (
	// DefaultDecimals is used when no source knows the decimals.
	DefaultDecimals uint8 = 9
	// PlaceholderLogo is used when no source has a logo.
	PlaceholderLogo = "/assets/token-placeholder.svg"

	SourceChain    = "chain"
	SourceFallback = "fallback"

	defaultConcurrency = 8
)

// ChainMetadata reads coin metadata published on chain.
type ChainMetadata interface {
	CoinMetadata(ctx context.Context, coinType string) (chain.CoinMetadata, error)
}

// InfoSource is a metadata API.
type InfoSource interface {
	TokenInfo(ctx context.Context, coinType string) (model.TokenInfo, error)
}

// Resolver merges on-chain metadata with metadata APIs. On-chain symbol,
// name and decimals win; API sources fill the logo, the price and any
// missing field. Sources are tried in order until one answers.
type Resolver struct {
	chain   ChainMetadata
	sources []InfoSource
	cache   *Cache
	logger  *zap.Logger
}

func NewResolver(chainMeta ChainMetadata, sources []InfoSource, cache *Cache, logger *zap.Logger) *Resolver {
	if cache == nil {
		cache = NewCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{chain: chainMeta, sources: sources, cache: cache, logger: logger}
}

// Cache exposes the resolver cache.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Resolve returns metadata for coinType. It never fails for a well formed
// coin type: when every source fails the result carries DefaultDecimals and
// PlaceholderLogo, and is not cached so a later call can retry.
func (r *Resolver) Resolve(ctx context.Context, coinType string) (model.TokenMetadata, error) {
	canonical, err := CanonicalAddress(coinType)
	if err != nil {
		return model.TokenMetadata{}, err
	}
	if meta, ok := r.cache.Get(canonical); ok {
		return meta, nil
	}

	var (
		onChain  *chain.CoinMetadata
		info     *model.TokenInfo
		chainErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	if r.chain != nil {
		g.Go(func() error {
			meta, err := r.chain.CoinMetadata(gctx, canonical)
			if err != nil {
				chainErr = err
				return nil
			}
			onChain = &meta
			return nil
		})
	}
	g.Go(func() error {
		info = r.fetchInfo(gctx, canonical)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return model.TokenMetadata{}, err
	}
	if chainErr != nil && !errors.Is(chainErr, context.Canceled) {
		r.logger.Warn("on-chain metadata failed", zap.String("coin_type", canonical), zap.Error(chainErr))
	}

	meta := merge(canonical, onChain, info)
	if onChain != nil || info != nil {
		r.cache.Set(canonical, meta)
	}
	return meta, nil
}

// ResolveMany resolves coin types concurrently. Malformed coin types are
// skipped with a warning.
func (r *Resolver) ResolveMany(ctx context.Context, coinTypes []string) (map[string]model.TokenMetadata, error) {
	results := make([]model.TokenMetadata, len(coinTypes))
	ok := make([]bool, len(coinTypes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultConcurrency)
	for i, coinType := range coinTypes {
		g.Go(func() error {
			meta, err := r.Resolve(gctx, coinType)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				r.logger.Warn("token resolve failed", zap.String("coin_type", coinType), zap.Error(err))
				return nil
			}
			results[i] = meta
			ok[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve tokens: %w", err)
	}

	out := make(map[string]model.TokenMetadata, len(coinTypes))
	for i, coinType := range coinTypes {
		if ok[i] {
			out[coinType] = results[i]
		}
	}
	return out, nil
}

func (r *Resolver) fetchInfo(ctx context.Context, coinType string) *model.TokenInfo {
	for _, source := range r.sources {
		info, err := source.TokenInfo(ctx, coinType)
		if err == nil {
			return &info
		}
		if ctx.Err() != nil {
			return nil
		}
		r.logger.Warn("token info source failed", zap.String("coin_type", coinType), zap.Error(err))
	}
	return nil
}

func merge(coinType string, onChain *chain.CoinMetadata, info *model.TokenInfo) model.TokenMetadata {
	meta := model.TokenMetadata{
		Address:  coinType,
		Symbol:   SymbolFromType(coinType),
		Decimals: DefaultDecimals,
		LogoURL:  PlaceholderLogo,
	}

	decimalsKnown := false
	if onChain != nil {
		meta.Sources = append(meta.Sources, SourceChain)
		meta.Decimals = onChain.Decimals
		decimalsKnown = true
		if onChain.Symbol != "" {
			meta.Symbol = onChain.Symbol
		}
		meta.Name = onChain.Name
		if onChain.IconURL != nil && *onChain.IconURL != "" {
			meta.LogoURL = *onChain.IconURL
		}
	}

	if info != nil {
		meta.Sources = append(meta.Sources, info.Source)
		if onChain == nil && info.Symbol != "" {
			meta.Symbol = info.Symbol
		}
		if meta.Name == "" {
			meta.Name = info.Name
		}
		if !decimalsKnown && info.Decimals != nil {
			meta.Decimals = *info.Decimals
			decimalsKnown = true
		}
		if info.LogoURL != "" {
			meta.LogoURL = info.LogoURL
		}
		meta.PriceUSD = info.PriceUSD
	}

	if meta.Name == "" {
		meta.Name = meta.Symbol
	}
	if !decimalsKnown {
		meta.Sources = append(meta.Sources, SourceFallback)
	}
	return meta
}

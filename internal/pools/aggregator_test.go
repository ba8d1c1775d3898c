package pools

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"suiLiquidity/internal/chain"
	"suiLiquidity/internal/model"
	"suiLiquidity/internal/price"
	"suiLiquidity/internal/provider/cetus"
	"suiLiquidity/internal/token"
)

const (
	coinSUI  = "0x2::sui::SUI"
	coinUSDC = "0xabc::usdc::USDC"
)

type listFunc func(context.Context) ([]model.PoolInfo, error)

func (f listFunc) ListPools(ctx context.Context) ([]model.PoolInfo, error) { return f(ctx) }

type objectsStub map[string]chain.ObjectData

func (o objectsStub) MultiGetObjects(_ context.Context, ids []string) (map[string]chain.ObjectData, error) {
	out := make(map[string]chain.ObjectData)
	for _, id := range ids {
		if obj, ok := o[id]; ok {
			out[id] = obj
		}
	}
	return out, nil
}

// flakyObjects serves objects on the first call and fails afterwards.
type flakyObjects struct {
	objects objectsStub
	calls   int
}

func (f *flakyObjects) MultiGetObjects(ctx context.Context, ids []string) (map[string]chain.ObjectData, error) {
	f.calls++
	if f.calls > 1 {
		return nil, errors.New("rpc unavailable")
	}
	return f.objects.MultiGetObjects(ctx, ids)
}

type vaultsStub []cetus.Vault

func (v vaultsStub) Vaults(context.Context) ([]cetus.Vault, error) { return v, nil }

type tokensStub map[string]model.TokenMetadata

func (t tokensStub) ResolveMany(_ context.Context, coinTypes []string) (map[string]model.TokenMetadata, error) {
	out := make(map[string]model.TokenMetadata)
	for _, ct := range coinTypes {
		if meta, ok := t[ct]; ok {
			out[ct] = meta
		}
	}
	return out, nil
}

type pricesStub map[string]string

func (p pricesStub) Prices(_ context.Context, coinTypes []string) (map[string]price.Quote, error) {
	out := make(map[string]price.Quote)
	for _, ct := range coinTypes {
		if v, ok := p[ct]; ok {
			out[ct] = price.Quote{CoinType: ct, PriceUSD: decimal.RequireFromString(v)}
		}
	}
	return out, nil
}

func poolObject(t *testing.T, id string, tickBits uint32) chain.ObjectData {
	t.Helper()
	fields, err := json.Marshal(map[string]any{
		"current_tick_index": map[string]any{"fields": map[string]any{"bits": tickBits}},
		"tick_spacing":       60,
		"fee_rate":           "2500",
	})
	require.NoError(t, err)
	objType := "0x1eab::pool::Pool<" + coinSUI + ", " + coinUSDC + ">"
	return chain.ObjectData{ObjectID: id, Type: objType, Content: &chain.MoveContent{Fields: fields}}
}

func TestFetchMergesSources(t *testing.T) {
	apr := "40.00"
	lister := listFunc(func(context.Context) ([]model.PoolInfo, error) {
		return []model.PoolInfo{
			{DEX: model.DEXCetus, PoolID: "0xp1", LiquidityUSD: "365000", Fees24hUSD: "100"},
			{DEX: model.DEXCetus, PoolID: "0xp2", APR: &apr,
				TokenA: model.PoolToken{Address: coinSUI, Symbol: "SUI", Decimals: 9},
				TokenB: model.PoolToken{Address: coinUSDC, Symbol: "USDC", Decimals: 6}},
		}, nil
	})

	agg := NewAggregator(Config{
		Listers: map[string]Lister{model.DEXCetus: lister},
		Objects: objectsStub{"0xp1": poolObject(t, "0xp1", 0)},
		Vaults:  vaultsStub{{ID: "0xv", PoolID: "0xp1", APY: decimal.NewNullDecimal(decimal.RequireFromString("12.345"))}},
		Tokens: tokensStub{
			coinSUI:  {Address: coinSUI, Symbol: "SUI", Decimals: 9, LogoURL: "sui.png", Sources: []string{token.SourceChain}},
			coinUSDC: {Address: coinUSDC, Symbol: "USDC", Decimals: 6, LogoURL: "usdc.png", Sources: []string{token.SourceChain}},
		},
		Prices: pricesStub{coinSUI: "2", coinUSDC: "1"},
	}, zap.NewNop())
	fixed := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	agg.now = func() time.Time { return fixed }

	pools, err := agg.Fetch(context.Background(), model.DEXCetus)
	require.NoError(t, err)
	require.Len(t, pools, 2)

	p1 := pools[0]
	assert.Equal(t, coinSUI, p1.TokenA.Address)
	assert.Equal(t, "SUI/USDC", p1.Pair())
	assert.Equal(t, uint8(9), p1.TokenA.Decimals)
	assert.Equal(t, "usdc.png", p1.TokenB.LogoURL)
	assert.Equal(t, int32(60), p1.TickSpacing)
	assert.Equal(t, 25, p1.FeeBps)
	// tick 0 with 9/6 decimals gives a raw ratio of 1000; SUI is worth more
	// than USDC and the ratio is above one, so no inversion.
	assert.InDelta(t, 1000, p1.CurrentPrice, 1e-6)
	require.NotNil(t, p1.APR)
	assert.Equal(t, "10.00", *p1.APR)
	assert.True(t, p1.HasVault)
	assert.Equal(t, "0xv", p1.VaultID)
	require.NotNil(t, p1.VaultAPY)
	assert.Equal(t, "12.35", *p1.VaultAPY)
	assert.Equal(t, fixed, p1.FetchedAt)

	p2 := pools[1]
	assert.False(t, p2.HasVault)
	assert.Equal(t, "40.00", *p2.APR)
	assert.Equal(t, "0", p2.LiquidityUSD)
	assert.False(t, math.IsNaN(p2.CurrentPrice))
}

func TestFetchUnknownDEX(t *testing.T) {
	agg := NewAggregator(Config{}, nil)
	_, err := agg.Fetch(context.Background(), "uniswap")
	assert.Error(t, err)
}

func TestFetchAllSkipsFailingDEX(t *testing.T) {
	agg := NewAggregator(Config{Listers: map[string]Lister{
		model.DEXCetus: listFunc(func(context.Context) ([]model.PoolInfo, error) {
			return []model.PoolInfo{{DEX: model.DEXCetus, PoolID: "0x1"}}, nil
		}),
		model.DEXTurbos: listFunc(func(context.Context) ([]model.PoolInfo, error) {
			return nil, errors.New("down")
		}),
		model.DEXKriya: StaticLister{DEX: model.DEXKriya, PoolIDs: []string{"0xk"}},
	}}, nil)

	assert.Equal(t, []string{model.DEXCetus, model.DEXKriya, model.DEXTurbos}, agg.DEXes())

	pools, err := agg.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, pools, 2)
}

func TestFetchKeepsCachedStateWhenChainFails(t *testing.T) {
	lister := listFunc(func(context.Context) ([]model.PoolInfo, error) {
		return []model.PoolInfo{{DEX: model.DEXCetus, PoolID: "0xp1"}}, nil
	})
	objects := &flakyObjects{objects: objectsStub{"0xp1": poolObject(t, "0xp1", 120)}}
	agg := NewAggregator(Config{
		Listers: map[string]Lister{model.DEXCetus: lister},
		Objects: objects,
	}, nil)

	first, err := agg.Fetch(context.Background(), model.DEXCetus)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, int32(120), first[0].CurrentTick)

	second, err := agg.Fetch(context.Background(), model.DEXCetus)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 2, objects.calls)
	assert.Equal(t, int32(120), second[0].CurrentTick)
	assert.Equal(t, int32(60), second[0].TickSpacing)
	assert.Equal(t, coinSUI, second[0].TokenA.Address)
}

// Package cetus adapts the Cetus stats API: pool lists and vault linkage.
package cetus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"suiLiquidity/internal/httpclient"
	"suiLiquidity/internal/metrics"
	"suiLiquidity/internal/model"
	"suiLiquidity/internal/provider/logo"
)

const (
	DefaultBaseURL = "https://api-sui.cetus.zone"
	ProviderName   = "cetus"

	poolsEndpoint  = "/v2/sui/stats_pools"
	vaultsEndpoint = "/v2/sui/vaults/info"

	defaultPageSize = 100
)

type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	PageSize  int
}

// Client calls the Cetus stats API.
type Client struct {
	http     *httpclient.Client
	pageSize int
	logger   *zap.Logger
}

func New(cfg Config, m *metrics.Metrics, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	opts := []httpclient.ClientOption{
		httpclient.WithProviderName(ProviderName),
		httpclient.WithBaseURL(baseURL),
		httpclient.WithRateLimit(cfg.RateLimit, 2),
		httpclient.WithMetrics(m),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, httpclient.WithRequestTimeout(cfg.Timeout))
	}
	return &Client{http: httpclient.New(opts...), pageSize: pageSize, logger: logger}
}

type envelope[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data T      `json:"data"`
}

func (e envelope[T]) err() error {
	if e.Code != http.StatusOK {
		return fmt.Errorf("cetus error %d: %s", e.Code, e.Msg)
	}
	return nil
}

// Coin is one side of a listed pool.
type Coin struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	LogoURL  string `json:"logo_url"`
}

func (c *Coin) UnmarshalJSON(data []byte) error {
	type plain Coin
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	url, err := logo.Find(data)
	if err != nil {
		return err
	}
	*c = Coin(p)
	c.LogoURL = url
	return nil
}

// PoolStat is one row of the pool list.
type PoolStat struct {
	Address     string              `json:"address"`
	Symbol      string              `json:"symbol"`
	Fee         decimal.Decimal     `json:"fee"`
	TickSpacing string              `json:"tick_spacing"`
	TVLUSD      decimal.NullDecimal `json:"tvl_in_usd"`
	Volume24h   decimal.NullDecimal `json:"vol_in_usd_24h"`
	Fees24h     decimal.NullDecimal `json:"fee_24_h"`
	Price       decimal.NullDecimal `json:"price"`
	TotalAPR    decimal.NullDecimal `json:"total_apr"`
	CoinA       Coin                `json:"coin_a"`
	CoinB       Coin                `json:"coin_b"`
}

type poolPage struct {
	Total  int        `json:"total"`
	LPList []PoolStat `json:"lp_list"`
}

// Pools pages through the pool list until limit rows are read or the list
// ends. limit <= 0 reads everything.
func (c *Client) Pools(ctx context.Context, limit int) ([]PoolStat, error) {
	var out []PoolStat
	for offset := 0; ; offset += c.pageSize {
		var page envelope[poolPage]
		_, err := c.http.NewRequest().
			SetQueryParam("is_vaults", "false").
			SetQueryParam("display_all_pools", "true").
			SetQueryParam("order_by", "-tvl").
			SetQueryParam("limit", strconv.Itoa(c.pageSize)).
			SetQueryParam("offset", strconv.Itoa(offset)).
			SetResult(&page).
			Get(ctx, poolsEndpoint)
		if err != nil {
			return nil, fmt.Errorf("cetus pools: %w", err)
		}
		if err := page.err(); err != nil {
			return nil, fmt.Errorf("cetus pools: %w", err)
		}

		out = append(out, page.Data.LPList...)
		if limit > 0 && len(out) >= limit {
			return out[:limit], nil
		}
		if len(page.Data.LPList) < c.pageSize || len(out) >= page.Data.Total {
			break
		}
	}
	c.logger.Debug("fetched cetus pools", zap.Int("pools", len(out)))
	return out, nil
}

// Vault links a vault object to its pool.
type Vault struct {
	ID     string              `json:"id"`
	PoolID string              `json:"pool"`
	APY    decimal.NullDecimal `json:"apy"`
	TVLUSD decimal.NullDecimal `json:"tvl_in_usd"`
}

type vaultList struct {
	List []Vault `json:"list"`
}

// Vaults lists the auto-compounding vaults.
func (c *Client) Vaults(ctx context.Context) ([]Vault, error) {
	var out envelope[vaultList]
	_, err := c.http.NewRequest().SetResult(&out).Get(ctx, vaultsEndpoint)
	if err != nil {
		return nil, fmt.Errorf("cetus vaults: %w", err)
	}
	if err := out.err(); err != nil {
		return nil, fmt.Errorf("cetus vaults: %w", err)
	}
	return out.Data.List, nil
}

// ToPoolInfo normalises a pool row. Fee is a fraction (0.0025 = 25 bps).
func (p PoolStat) ToPoolInfo(fetchedAt time.Time) model.PoolInfo {
	info := model.PoolInfo{
		DEX:    model.DEXCetus,
		PoolID: p.Address,
		TokenA: model.PoolToken{
			Address:  p.CoinA.Address,
			Symbol:   p.CoinA.Symbol,
			Decimals: p.CoinA.Decimals,
			LogoURL:  p.CoinA.LogoURL,
		},
		TokenB: model.PoolToken{
			Address:  p.CoinB.Address,
			Symbol:   p.CoinB.Symbol,
			Decimals: p.CoinB.Decimals,
			LogoURL:  p.CoinB.LogoURL,
		},
		FeeBps:       int(p.Fee.Mul(decimal.NewFromInt(10_000)).Round(0).IntPart()),
		LiquidityUSD: nullString(p.TVLUSD),
		Volume24hUSD: nullString(p.Volume24h),
		Fees24hUSD:   nullString(p.Fees24h),
		FetchedAt:    fetchedAt.UTC(),
	}
	if spacing, err := strconv.ParseInt(p.TickSpacing, 10, 32); err == nil {
		info.TickSpacing = int32(spacing)
	}
	if p.Price.Valid {
		info.CurrentPrice = p.Price.Decimal.InexactFloat64()
	}
	if p.TotalAPR.Valid {
		apr := p.TotalAPR.Decimal.StringFixed(2)
		info.APR = &apr
	}
	return info
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return "0"
	}
	return d.Decimal.String()
}

func (c *Client) Name() string {
	return ProviderName
}

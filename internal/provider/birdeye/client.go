// Package birdeye adapts the Birdeye public API for Sui prices and token
// overviews.
package birdeye

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"suiLiquidity/internal/httpclient"
	"suiLiquidity/internal/metrics"
	"suiLiquidity/internal/model"
	"suiLiquidity/internal/provider/logo"
)

const (
	DefaultBaseURL = "https://public-api.birdeye.so"
	ProviderName   = "birdeye"

	priceEndpoint    = "/defi/price"
	overviewEndpoint = "/defi/token_overview"
)

// ErrNoData is returned when Birdeye answers without a usable payload.
var ErrNoData = errors.New("birdeye: no data")

type Config struct {
	BaseURL   string
	APIKey    string
	Chain     string
	Timeout   time.Duration
	RateLimit float64
}

// Client calls the Birdeye API.
type Client struct {
	http   *httpclient.Client
	logger *zap.Logger
}

func New(cfg Config, m *metrics.Metrics, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	chain := cfg.Chain
	if chain == "" {
		chain = "sui"
	}
	headers := map[string]string{"x-chain": chain}
	if cfg.APIKey != "" {
		headers["X-API-KEY"] = cfg.APIKey
	}
	opts := []httpclient.ClientOption{
		httpclient.WithProviderName(ProviderName),
		httpclient.WithBaseURL(baseURL),
		httpclient.WithHeaders(headers),
		httpclient.WithRateLimit(cfg.RateLimit, 1),
		httpclient.WithMetrics(m),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, httpclient.WithRequestTimeout(cfg.Timeout))
	}
	return &Client{http: httpclient.New(opts...), logger: logger}
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

type priceData struct {
	Value          decimal.Decimal `json:"value"`
	UpdateUnixTime int64           `json:"updateUnixTime"`
}

// PriceUSD returns the current USD price of a token.
func (c *Client) PriceUSD(ctx context.Context, address string) (decimal.Decimal, error) {
	var out envelope[priceData]
	_, err := c.http.NewRequest().
		SetQueryParam("address", address).
		SetResult(&out).
		Get(ctx, priceEndpoint)
	if err != nil {
		return decimal.Zero, fmt.Errorf("birdeye price %s: %w", address, err)
	}
	if !out.Success || out.Data == nil {
		return decimal.Zero, fmt.Errorf("birdeye price %s: %w", address, ErrNoData)
	}
	return out.Data.Value, nil
}

// TokenOverview is the subset of the overview payload the desk uses.
type TokenOverview struct {
	Address   string              `json:"address"`
	Symbol    string              `json:"symbol"`
	Name      string              `json:"name"`
	Decimals  uint8               `json:"decimals"`
	LogoURI   string              `json:"logoURI"`
	Price     decimal.NullDecimal `json:"price"`
	Liquidity decimal.NullDecimal `json:"liquidity"`
	Volume24h decimal.NullDecimal `json:"v24hUSD"`
}

func (o *TokenOverview) UnmarshalJSON(data []byte) error {
	type plain TokenOverview
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	url, err := logo.Find(data)
	if err != nil {
		return err
	}
	*o = TokenOverview(p)
	o.LogoURI = url
	return nil
}

// TokenOverview fetches symbol, logo and market data for a token.
func (c *Client) TokenOverview(ctx context.Context, address string) (TokenOverview, error) {
	var out envelope[TokenOverview]
	_, err := c.http.NewRequest().
		SetQueryParam("address", address).
		SetResult(&out).
		Get(ctx, overviewEndpoint)
	if err != nil {
		return TokenOverview{}, fmt.Errorf("birdeye overview %s: %w", address, err)
	}
	if !out.Success || out.Data == nil {
		return TokenOverview{}, fmt.Errorf("birdeye overview %s: %w", address, ErrNoData)
	}
	c.logger.Debug("fetched token overview", zap.String("address", address))
	return *out.Data, nil
}

func (c *Client) Name() string {
	return ProviderName
}

// TokenInfo maps the token overview to a metadata source answer.
func (c *Client) TokenInfo(ctx context.Context, address string) (model.TokenInfo, error) {
	overview, err := c.TokenOverview(ctx, address)
	if err != nil {
		return model.TokenInfo{}, err
	}
	info := model.TokenInfo{
		Source:  ProviderName,
		Symbol:  overview.Symbol,
		Name:    overview.Name,
		LogoURL: overview.LogoURI,
	}
	if overview.Decimals > 0 {
		decimals := overview.Decimals
		info.Decimals = &decimals
	}
	if overview.Price.Valid {
		price := overview.Price.Decimal.InexactFloat64()
		info.PriceUSD = &price
	}
	return info, nil
}

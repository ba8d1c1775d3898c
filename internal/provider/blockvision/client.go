// Package blockvision adapts the BlockVision Sui indexer API: coin details
// (metadata, logo, price) and account coin holdings.
package blockvision

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"suiLiquidity/internal/chain"
	"suiLiquidity/internal/httpclient"
	"suiLiquidity/internal/metrics"
	"suiLiquidity/internal/model"
	"suiLiquidity/internal/provider/logo"
)

const (
	DefaultBaseURL = "https://api.blockvision.org/v2/sui"
	ProviderName   = "blockvision"

	coinDetailEndpoint   = "/coin/detail"
	accountCoinsEndpoint = "/account/coins"
)

// Config configures the client.
type Config struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	RateLimit float64
}

// Client calls the BlockVision API.
type Client struct {
	http   *httpclient.Client
	logger *zap.Logger
}

// New creates a client.
func New(cfg Config, m *metrics.Metrics, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	opts := []httpclient.ClientOption{
		httpclient.WithProviderName(ProviderName),
		httpclient.WithBaseURL(baseURL),
		httpclient.WithRateLimit(cfg.RateLimit, 5),
		httpclient.WithMetrics(m),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, httpclient.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.APIKey != "" {
		opts = append(opts, httpclient.WithHeaders(map[string]string{"x-api-key": cfg.APIKey}))
	}
	return &Client{http: httpclient.New(opts...), logger: logger}
}

// APIError is a non-success envelope.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("blockvision error %d: %s", e.Code, e.Message)
}

type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

func (e envelope[T]) err() error {
	if e.Code != 0 && e.Code != http.StatusOK {
		return &APIError{Code: e.Code, Message: e.Message}
	}
	return nil
}

// CoinDetail is the metadata of one coin type.
type CoinDetail struct {
	CoinType string              `json:"coinType"`
	Name     string              `json:"name"`
	Symbol   string              `json:"symbol"`
	Decimals *uint8              `json:"decimals"`
	Logo     string              `json:"-"`
	Price    decimal.NullDecimal `json:"price"`
	Verified bool                `json:"verified"`
}

func (c *CoinDetail) UnmarshalJSON(data []byte) error {
	type plain CoinDetail
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	url, err := logo.Find(data)
	if err != nil {
		return err
	}
	*c = CoinDetail(p)
	c.Logo = url
	return nil
}

// CoinDetail fetches metadata and price for coinType.
func (c *Client) CoinDetail(ctx context.Context, coinType string) (CoinDetail, error) {
	var out envelope[CoinDetail]
	_, err := c.http.NewRequest().
		SetQueryParam("coinType", coinType).
		SetResult(&out).
		Get(ctx, coinDetailEndpoint)
	if err != nil {
		return CoinDetail{}, fmt.Errorf("coin detail %s: %w", coinType, err)
	}
	if err := out.err(); err != nil {
		return CoinDetail{}, fmt.Errorf("coin detail %s: %w", coinType, err)
	}
	detail := out.Result
	if detail.CoinType == "" {
		detail.CoinType = coinType
	}
	return detail, nil
}

// AccountCoin is one holding of an account.
type AccountCoin struct {
	CoinType string              `json:"coinType"`
	Name     string              `json:"name"`
	Symbol   string              `json:"symbol"`
	Decimals uint8               `json:"decimals"`
	Balance  string              `json:"balance"`
	Logo     string              `json:"logo"`
	Price    decimal.NullDecimal `json:"price"`
	USDValue decimal.NullDecimal `json:"usdValue"`
	Verified bool                `json:"verified"`
}

func (c *AccountCoin) UnmarshalJSON(data []byte) error {
	type plain AccountCoin
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	url, err := logo.Find(data)
	if err != nil {
		return err
	}
	*c = AccountCoin(p)
	c.Logo = url
	return nil
}

type accountCoins struct {
	Coins    []AccountCoin       `json:"coins"`
	USDValue decimal.NullDecimal `json:"usdValue"`
}

// AccountCoins lists the coins held by owner.
func (c *Client) AccountCoins(ctx context.Context, owner string) ([]AccountCoin, error) {
	var out envelope[accountCoins]
	_, err := c.http.NewRequest().
		SetQueryParam("account", owner).
		SetResult(&out).
		Get(ctx, accountCoinsEndpoint)
	if err != nil {
		return nil, fmt.Errorf("account coins %s: %w", owner, err)
	}
	if err := out.err(); err != nil {
		return nil, fmt.Errorf("account coins %s: %w", owner, err)
	}
	c.logger.Debug("fetched account coins", zap.String("owner", owner), zap.Int("coins", len(out.Result.Coins)))
	return out.Result.Coins, nil
}

// AllBalances reports the account coins of owner as chain balances.
func (c *Client) AllBalances(ctx context.Context, owner string) ([]chain.Balance, error) {
	coins, err := c.AccountCoins(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]chain.Balance, 0, len(coins))
	for _, coin := range coins {
		out = append(out, chain.Balance{CoinType: coin.CoinType, TotalBalance: coin.Balance})
	}
	return out, nil
}

// PriceUSD returns the USD price reported by the coin detail endpoint.
func (c *Client) PriceUSD(ctx context.Context, coinType string) (decimal.Decimal, error) {
	detail, err := c.CoinDetail(ctx, coinType)
	if err != nil {
		return decimal.Zero, err
	}
	if !detail.Price.Valid {
		return decimal.Zero, fmt.Errorf("coin detail %s: no price", coinType)
	}
	return detail.Price.Decimal, nil
}

// Name identifies the provider.
func (c *Client) Name() string {
	return ProviderName
}

// TokenInfo maps the coin detail to a metadata source answer.
func (c *Client) TokenInfo(ctx context.Context, coinType string) (model.TokenInfo, error) {
	detail, err := c.CoinDetail(ctx, coinType)
	if err != nil {
		return model.TokenInfo{}, err
	}
	info := model.TokenInfo{
		Source:   ProviderName,
		Symbol:   detail.Symbol,
		Name:     detail.Name,
		Decimals: detail.Decimals,
		LogoURL:  detail.Logo,
	}
	if detail.Price.Valid {
		price := detail.Price.Decimal.InexactFloat64()
		info.PriceUSD = &price
	}
	return info, nil
}

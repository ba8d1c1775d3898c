// Package portfolio values an owner's coin balances in USD.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"suiLiquidity/internal/chain"
	"suiLiquidity/internal/model"
	"suiLiquidity/internal/price"
	"suiLiquidity/internal/token"
)

const stateKeyPrefix = "portfolio:"

var ErrInvalidOwner = errors.New("invalid owner address")

// Features toggles optional behaviour of the portfolio view.
type Features struct {
	// HideDust drops priced holdings worth less than DustUSD.
	HideDust bool
	DustUSD  decimal.Decimal
	// IncludeUnpriced keeps holdings no price source could value.
	IncludeUnpriced bool
	// PersistTotal saves the total for chart scaling on the next load.
	PersistTotal bool
}

// DefaultFeatures hides holdings under one cent and keeps unpriced coins.
func DefaultFeatures() Features {
	return Features{
		HideDust:        true,
		DustUSD:         decimal.RequireFromString("0.01"),
		IncludeUnpriced: true,
		PersistTotal:    true,
	}
}

type BalanceSource interface {
	AllBalances(ctx context.Context, owner string) ([]chain.Balance, error)
}

type TokenResolver interface {
	ResolveMany(ctx context.Context, coinTypes []string) (map[string]model.TokenMetadata, error)
}

type PriceLookup interface {
	Prices(ctx context.Context, coinTypes []string) (map[string]price.Quote, error)
}

// Config wires a Service. Balances is required; Fallback is asked only when
// Balances fails.
type Config struct {
	Balances BalanceSource
	Fallback BalanceSource
	Tokens   TokenResolver
	Prices   PriceLookup
	State    StateStore
	Features Features
}

// Holding is one valued coin balance.
type Holding struct {
	CoinType string           `json:"coin_type"`
	Symbol   string           `json:"symbol"`
	Name     string           `json:"name"`
	LogoURL  string           `json:"logo_url"`
	Decimals uint8            `json:"decimals"`
	Balance  string           `json:"balance"`
	Amount   decimal.Decimal  `json:"amount"`
	PriceUSD *decimal.Decimal `json:"price_usd,omitempty"`
	ValueUSD decimal.Decimal  `json:"value_usd"`
	Share    decimal.Decimal  `json:"share_percent"`
}

// Summary is the valued portfolio of one owner.
type Summary struct {
	Owner         string           `json:"owner"`
	Holdings      []Holding        `json:"holdings"`
	TotalUSD      decimal.Decimal  `json:"total_usd"`
	LastTotalUSD  *decimal.Decimal `json:"last_total_usd,omitempty"`
	ChangePercent *decimal.Decimal `json:"change_percent,omitempty"`
	Hidden        int              `json:"hidden"`
	Chart         Bounds           `json:"chart"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

type Service struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

func NewService(cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, logger: logger, now: time.Now}
}

// Value loads the balances of owner and values them. Metadata and price
// failures degrade to unpriced holdings.
func (s *Service) Value(ctx context.Context, owner string) (Summary, error) {
	canonical, err := token.CanonicalAddress(owner)
	if err != nil || strings.Contains(canonical, "::") {
		return Summary{}, fmt.Errorf("%w: %q", ErrInvalidOwner, owner)
	}
	owner = canonical
	if s.cfg.Balances == nil {
		return Summary{}, fmt.Errorf("no balance source configured")
	}

	balances, err := s.loadBalances(ctx, owner)
	if err != nil {
		return Summary{}, fmt.Errorf("load balances: %w", err)
	}

	coinTypes := make([]string, 0, len(balances))
	for _, b := range balances {
		coinTypes = append(coinTypes, b.CoinType)
	}
	tokens := s.resolveTokens(ctx, coinTypes)
	quotes := s.lookupPrices(ctx, coinTypes)

	summary := Summary{Owner: owner, UpdatedAt: s.now().UTC()}
	for _, b := range balances {
		h, ok := valueHolding(b, tokens[b.CoinType], quotes[b.CoinType])
		if !ok {
			s.logger.Debug("skipping unparsable balance", zap.String("coin_type", b.CoinType), zap.String("balance", b.TotalBalance))
			continue
		}
		if !s.keep(h) {
			summary.Hidden++
			continue
		}
		summary.TotalUSD = summary.TotalUSD.Add(h.ValueUSD)
		summary.Holdings = append(summary.Holdings, h)
	}

	for i := range summary.Holdings {
		if summary.TotalUSD.IsPositive() {
			summary.Holdings[i].Share = summary.Holdings[i].ValueUSD.Div(summary.TotalUSD).Mul(decimal.NewFromInt(100)).Round(2)
		}
	}
	slices.SortStableFunc(summary.Holdings, func(a, b Holding) int {
		if c := b.ValueUSD.Cmp(a.ValueUSD); c != 0 {
			return c
		}
		return strings.Compare(a.Symbol, b.Symbol)
	})

	last, hasLast := s.loadLast(ctx, owner)
	if hasLast {
		summary.LastTotalUSD = &last
		if last.IsPositive() {
			change := summary.TotalUSD.Sub(last).Div(last).Mul(decimal.NewFromInt(100)).Round(2)
			summary.ChangePercent = &change
		}
	}
	summary.Chart = ChartBounds(summary.TotalUSD, last, hasLast)

	if s.cfg.Features.PersistTotal && s.cfg.State != nil {
		if err := s.cfg.State.Save(ctx, stateKeyPrefix+owner, summary.TotalUSD); err != nil {
			s.logger.Warn("save portfolio total failed", zap.String("owner", owner), zap.Error(err))
		}
	}
	return summary, nil
}

func (s *Service) loadBalances(ctx context.Context, owner string) ([]chain.Balance, error) {
	balances, err := s.cfg.Balances.AllBalances(ctx, owner)
	if err == nil || s.cfg.Fallback == nil || ctx.Err() != nil {
		return balances, err
	}
	s.logger.Warn("balance source failed, trying fallback", zap.String("owner", owner), zap.Error(err))
	balances, fbErr := s.cfg.Fallback.AllBalances(ctx, owner)
	if fbErr != nil {
		return nil, errors.Join(err, fbErr)
	}
	return balances, nil
}

func (s *Service) keep(h Holding) bool {
	if h.PriceUSD == nil {
		return s.cfg.Features.IncludeUnpriced
	}
	if s.cfg.Features.HideDust && h.ValueUSD.LessThan(s.cfg.Features.DustUSD) {
		return false
	}
	return true
}

func (s *Service) loadLast(ctx context.Context, owner string) (decimal.Decimal, bool) {
	if s.cfg.State == nil {
		return decimal.Zero, false
	}
	last, ok, err := s.cfg.State.Load(ctx, stateKeyPrefix+owner)
	if err != nil {
		s.logger.Warn("load portfolio total failed", zap.String("owner", owner), zap.Error(err))
		return decimal.Zero, false
	}
	return last, ok
}

func (s *Service) resolveTokens(ctx context.Context, coinTypes []string) map[string]model.TokenMetadata {
	if s.cfg.Tokens == nil || len(coinTypes) == 0 {
		return nil
	}
	tokens, err := s.cfg.Tokens.ResolveMany(ctx, coinTypes)
	if err != nil {
		s.logger.Warn("resolve portfolio tokens failed", zap.Error(err))
		return nil
	}
	return tokens
}

func (s *Service) lookupPrices(ctx context.Context, coinTypes []string) map[string]price.Quote {
	if s.cfg.Prices == nil || len(coinTypes) == 0 {
		return nil
	}
	quotes, err := s.cfg.Prices.Prices(ctx, coinTypes)
	if err != nil {
		s.logger.Warn("portfolio prices failed", zap.Error(err))
		return nil
	}
	return quotes
}

func valueHolding(b chain.Balance, meta model.TokenMetadata, quote price.Quote) (Holding, bool) {
	raw, err := decimal.NewFromString(b.TotalBalance)
	if err != nil || raw.IsNegative() {
		return Holding{}, false
	}

	decimals := meta.Decimals
	symbol := meta.Symbol
	if meta.Address == "" {
		decimals = token.DefaultDecimals
	}
	if symbol == "" {
		symbol = token.SymbolFromType(b.CoinType)
	}

	h := Holding{
		CoinType: b.CoinType,
		Symbol:   symbol,
		Name:     meta.Name,
		LogoURL:  meta.LogoURL,
		Decimals: decimals,
		Balance:  b.TotalBalance,
		Amount:   raw.Shift(-int32(decimals)),
	}

	switch {
	case quote.PriceUSD.IsPositive():
		p := quote.PriceUSD
		h.PriceUSD = &p
	case meta.PriceUSD != nil && *meta.PriceUSD > 0:
		p := decimal.NewFromFloat(*meta.PriceUSD)
		h.PriceUSD = &p
	}
	if h.PriceUSD != nil {
		h.ValueUSD = h.Amount.Mul(*h.PriceUSD)
	}
	return h, true
}

package deposit

import (
	"context"
	"strings"
	"sync"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"suiLiquidity/internal/clmm"
	"suiLiquidity/internal/metrics"
	"suiLiquidity/internal/model"
	"suiLiquidity/internal/txerror"
)

const (
	// DefaultSlippagePercent is the initial slippage tolerance.
	DefaultSlippagePercent = 0.5
	maxSlippagePercent     = 50
	pairedAmountPlaces     = 6
)

// Pool is what a session needs to know about the target pool.
type Pool struct {
	ID           string
	DEX          string
	TickSpacing  int32
	CurrentTick  int32
	CurrentPrice decimal.Decimal
	DecimalsA    uint8
	DecimalsB    uint8
	FeeBps       int
	USD          *clmm.USDReference
}

// PoolFromInfo adapts a merged pool row.
func PoolFromInfo(p model.PoolInfo, usd *clmm.USDReference) Pool {
	return Pool{
		ID:           p.PoolID,
		DEX:          p.DEX,
		TickSpacing:  p.TickSpacing,
		CurrentTick:  p.CurrentTick,
		CurrentPrice: decimal.NewFromFloat(p.CurrentPrice),
		DecimalsA:    p.TokenA.Decimals,
		DecimalsB:    p.TokenB.Decimals,
		FeeBps:       p.FeeBps,
		USD:          usd,
	}
}

// Submitter builds, signs and executes the deposit transaction and returns
// its digest.
type Submitter interface {
	SubmitDeposit(ctx context.Context, req model.DepositRequest) (string, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, req model.DepositRequest) (string, error)

func (f SubmitterFunc) SubmitDeposit(ctx context.Context, req model.DepositRequest) (string, error) {
	return f(ctx, req)
}

// Option configures a Session.
type Option func(*Session)

func WithEstimator(est clmm.LiquidityEstimator) Option {
	return func(s *Session) { s.estimator = est }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithDisplayFeeBps sets the flat fee shown in the net deposited summary.
// Non-positive values keep clmm.DefaultFeeBps.
func WithDisplayFeeBps(bps int) Option {
	return func(s *Session) {
		if bps > 0 {
			s.displayFeeBps = bps
		}
	}
}

// Session is one deposit form. It is safe for concurrent use; only one
// submission runs at a time.
type Session struct {
	mu sync.Mutex

	pool      Pool
	amountA   string
	amountB   string
	slippage  float64
	quote     clmm.RangeQuote
	oneSided  bool
	vaultID   string
	state     State
	notice    string
	digest    string
	txErr     *txerror.TxError
	estimator clmm.LiquidityEstimator
	metrics   *metrics.Metrics
	logger    *zap.Logger

	displayFeeBps int
}

// NewSession starts an idle session on pool with a full range selected.
func NewSession(pool Pool, opts ...Option) *Session {
	s := &Session{
		pool:          pool,
		slippage:      DefaultSlippagePercent,
		logger:        zap.NewNop(),
		displayFeeBps: clmm.DefaultFeeBps,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.quote = s.fullRangeQuote()
	return s
}

// SetAmountA sets the token A amount. Without a selected vault the token B
// amount follows at the current price with six decimals.
func (s *Session) SetAmountA(amount string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	amount = strings.TrimSpace(amount)
	if amount == "" {
		s.amountA = ""
		if s.vaultID == "" && !s.oneSided {
			s.amountB = ""
		}
		return nil
	}
	d, err := parseAmount(amount)
	if err != nil {
		return err
	}
	s.amountA = amount
	if s.vaultID == "" && !s.oneSided && s.pool.CurrentPrice.IsPositive() {
		s.amountB = d.Mul(s.pool.CurrentPrice).StringFixed(pairedAmountPlaces)
	}
	return nil
}

// SetAmountB sets the token B amount; token A follows like in SetAmountA.
func (s *Session) SetAmountB(amount string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	amount = strings.TrimSpace(amount)
	if amount == "" {
		s.amountB = ""
		if s.vaultID == "" && !s.oneSided {
			s.amountA = ""
		}
		return nil
	}
	d, err := parseAmount(amount)
	if err != nil {
		return err
	}
	s.amountB = amount
	if s.vaultID == "" && !s.oneSided && s.pool.CurrentPrice.IsPositive() {
		s.amountA = d.Div(s.pool.CurrentPrice).StringFixed(pairedAmountPlaces)
	}
	return nil
}

// SetSlippage sets the slippage tolerance in percent.
func (s *Session) SetSlippage(percent float64) error {
	if percent <= 0 || percent > maxSlippagePercent {
		return ErrSlippage
	}
	s.mu.Lock()
	s.slippage = percent
	s.mu.Unlock()
	return nil
}

// SetRange selects a custom tick range. It is validated on submit.
func (s *Session) SetRange(lower, upper int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quote = clmm.QuoteRange(lower, upper, s.pool.CurrentTick, false, s.pool.DecimalsA, s.pool.DecimalsB, s.pool.USD)
}

// SetPriceRange selects the range covering [minPrice, maxPrice] in raw
// token B per token A terms.
func (s *Session) SetPriceRange(minPrice, maxPrice float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := clmm.RangeFromPrices(minPrice, maxPrice, s.pool.DecimalsA, s.pool.DecimalsB, s.pool.TickSpacing)
	if err != nil {
		return err
	}
	s.quote = clmm.QuoteRange(r.Lower, r.Upper, s.pool.CurrentTick, r.FullRange, s.pool.DecimalsA, s.pool.DecimalsB, s.pool.USD)
	return nil
}

// UseFullRange re-snaps the range to full range and re-derives the price
// bounds. Amounts are left untouched.
func (s *Session) UseFullRange() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quote = s.fullRangeQuote()
}

// SetOneSided toggles single-token deposits.
func (s *Session) SetOneSided(on bool) {
	s.mu.Lock()
	s.oneSided = on
	s.mu.Unlock()
}

// SelectVault routes the deposit into a vault; "" clears the selection.
func (s *Session) SelectVault(vaultID string) {
	s.mu.Lock()
	s.vaultID = vaultID
	s.mu.Unlock()
}

// Reset returns a finished session to idle. After a success the amounts
// are cleared.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		return
	}
	if s.state == StateSuccess {
		s.amountA, s.amountB = "", ""
	}
	s.state = StateIdle
	s.notice = ""
	s.digest = ""
	s.txErr = nil
}

func (s *Session) fullRangeQuote() clmm.RangeQuote {
	return clmm.FullRangeQuote(s.pool.TickSpacing, s.pool.CurrentTick, s.pool.DecimalsA, s.pool.DecimalsB, s.pool.USD)
}

func parseAmount(amount string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil || d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

func positive(amount string) (decimal.Decimal, bool) {
	if amount == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(amount)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

func toUnits(d decimal.Decimal, decimals uint8) *uint256.Int {
	v, err := clmm.ToBaseUnits(d, decimals)
	if err != nil {
		return uint256.NewInt(0)
	}
	return v
}

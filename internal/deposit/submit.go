package deposit

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"suiLiquidity/internal/clmm"
	"suiLiquidity/internal/model"
	"suiLiquidity/internal/txerror"
)

// Result is what a submission produced.
type Result struct {
	Outcome Outcome               `json:"outcome"`
	State   State                 `json:"state"`
	Notice  string                `json:"notice,omitempty"`
	Digest  string                `json:"digest,omitempty"`
	Error   *txerror.TxError      `json:"error,omitempty"`
	Request *model.DepositRequest `json:"request,omitempty"`
	// RangeCorrected is set whenever validation re-snapped the range, even
	// when a missing amount rejected the submission.
	RangeCorrected bool `json:"range_corrected,omitempty"`
	// LiquiditySource tells whether the estimator or a fallback sized the
	// position.
	LiquiditySource string `json:"liquidity_source,omitempty"`
}

// Prepare validates the form and builds the request without submitting.
// An invalid range is always re-snapped to full range first. A missing
// amount is then OutcomeRejected; otherwise a corrected range is
// OutcomeAutoCorrected. Both leave the session idle.
func (s *Session) Prepare(ctx context.Context) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		return Result{State: s.state}, ErrSubmitting
	}
	return s.validateLocked(ctx), nil
}

// Submit validates the form and hands the request to submitter. While a
// submission runs further calls fail with ErrSubmitting.
func (s *Session) Submit(ctx context.Context, submitter Submitter) (Result, error) {
	if submitter == nil {
		return Result{}, ErrNoSubmitter
	}

	s.mu.Lock()
	if s.state == StateSubmitting {
		state := s.state
		s.mu.Unlock()
		return Result{State: state}, ErrSubmitting
	}
	res := s.validateLocked(ctx)
	if res.Request == nil {
		s.mu.Unlock()
		s.metrics.ObserveDeposit(string(res.Outcome))
		return res, nil
	}
	s.state = StateSubmitting
	s.notice = ""
	s.digest = ""
	s.txErr = nil
	req := *res.Request
	s.mu.Unlock()

	digest, err := submitter.SubmitDeposit(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateError
		s.txErr = txerror.Translate(err)
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn("deposit failed", zap.String("pool", req.PoolID), zap.String("code", string(s.txErr.Code)), zap.Error(err))
		}
		res.Outcome = OutcomeFailed
		res.Error = s.txErr
	} else {
		s.state = StateSuccess
		s.digest = digest
		s.logger.Info("deposit submitted", zap.String("pool", req.PoolID), zap.String("digest", digest))
		res.Outcome = OutcomeSuccess
		res.Digest = digest
	}
	res.State = s.state
	s.metrics.ObserveDeposit(string(res.Outcome))
	return res, nil
}

func (s *Session) validateLocked(ctx context.Context) Result {
	s.state = StateValidating

	corrected := false
	r := model.TickRange{Lower: s.quote.TickLower, Upper: s.quote.TickUpper, FullRange: s.quote.FullRange}
	if !r.FullRange {
		if err := clmm.ValidateRange(r, s.pool.TickSpacing); err != nil {
			s.logger.Info("tick range corrected to full range", zap.String("pool", s.pool.ID), zap.Error(err))
			s.quote = s.fullRangeQuote()
			corrected = true
		}
	}

	a, okA := positive(s.amountA)
	b, okB := positive(s.amountB)
	var res Result
	switch {
	case s.oneSided && !okA && !okB:
		res = s.idleLocked(OutcomeRejected, NoticeOneSidedAmount)
	case !s.oneSided && (!okA || !okB):
		res = s.idleLocked(OutcomeRejected, NoticeAmountMissing)
	case corrected:
		res = s.idleLocked(OutcomeAutoCorrected, NoticeRangeCorrected)
	default:
		return s.readyLocked(ctx, r, a, b)
	}
	res.RangeCorrected = corrected
	return res
}

func (s *Session) readyLocked(ctx context.Context, r model.TickRange, a, b decimal.Decimal) Result {
	unitsA := toUnits(a, s.pool.DecimalsA)
	unitsB := toUnits(b, s.pool.DecimalsB)
	liq := clmm.Liquidity(ctx, s.estimator, r, unitsA, unitsB)

	req := &model.DepositRequest{
		PoolID:          s.pool.ID,
		DEX:             s.pool.DEX,
		AmountA:         unitsA.Dec(),
		AmountB:         unitsB.Dec(),
		SlippagePercent: s.slippage,
		Range:           r,
		Liquidity:       liq.Value.Dec(),
		OneSided:        s.oneSided,
		VaultID:         s.vaultID,
	}
	s.state = StateIdle
	return Result{Outcome: OutcomeReady, State: s.state, Request: req, LiquiditySource: liq.Source}
}

func (s *Session) idleLocked(outcome Outcome, notice string) Result {
	s.state = StateIdle
	s.notice = notice
	return Result{Outcome: outcome, State: s.state, Notice: notice}
}

// Summary is the informational "net deposited" view.
type Summary struct {
	AmountA    string `json:"amount_a"`
	AmountB    string `json:"amount_b"`
	NetAmountA string `json:"net_amount_a"`
	NetAmountB string `json:"net_amount_b"`
	FeeBps     int    `json:"fee_bps"`
}

// View is a read-only snapshot of the form.
type View struct {
	PoolID          string           `json:"pool_id"`
	State           State            `json:"state"`
	AmountA         string           `json:"amount_a"`
	AmountB         string           `json:"amount_b"`
	SlippagePercent float64          `json:"slippage_percent"`
	Range           clmm.RangeQuote  `json:"range"`
	OneSided        bool             `json:"one_sided"`
	VaultID         string           `json:"vault_id,omitempty"`
	Notice          string           `json:"notice,omitempty"`
	Digest          string           `json:"digest,omitempty"`
	Error           *txerror.TxError `json:"error,omitempty"`
	Summary         Summary          `json:"summary"`
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		PoolID:          s.pool.ID,
		State:           s.state,
		AmountA:         s.amountA,
		AmountB:         s.amountB,
		SlippagePercent: s.slippage,
		Range:           s.quote,
		OneSided:        s.oneSided,
		VaultID:         s.vaultID,
		Notice:          s.notice,
		Digest:          s.digest,
		Error:           s.txErr,
		Summary:         s.summaryLocked(),
	}
}

func (s *Session) summaryLocked() Summary {
	feeBps := s.displayFeeBps
	a, _ := positive(s.amountA)
	b, _ := positive(s.amountB)
	return Summary{
		AmountA:    a.String(),
		AmountB:    b.String(),
		NetAmountA: clmm.NetDisplayAmount(a, feeBps).String(),
		NetAmountB: clmm.NetDisplayAmount(b, feeBps).String(),
		FeeBps:     feeBps,
	}
}

// Amounts returns the entered amounts as decimals; empty amounts are zero.
func (s *Session) Amounts() (decimal.Decimal, decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, _ := positive(s.amountA)
	b, _ := positive(s.amountB)
	return a, b
}

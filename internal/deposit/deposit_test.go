package deposit

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suiLiquidity/internal/clmm"
	"suiLiquidity/internal/model"
	"suiLiquidity/internal/txerror"
)

func testPool() Pool {
	return Pool{
		ID:           "0xpool",
		DEX:          model.DEXCetus,
		TickSpacing:  60,
		CurrentTick:  9162,
		CurrentPrice: decimal.RequireFromString("2.5"),
		DecimalsA:    9,
		DecimalsB:    9,
		FeeBps:       25,
	}
}

func TestSetAmountAPopulatesAmountB(t *testing.T) {
	s := NewSession(testPool())
	require.NoError(t, s.SetAmountA("10"))

	v := s.View()
	assert.Equal(t, "10", v.AmountA)
	assert.Equal(t, "25.000000", v.AmountB)
}

func TestSetAmountBPopulatesAmountA(t *testing.T) {
	s := NewSession(testPool())
	require.NoError(t, s.SetAmountB("5"))
	assert.Equal(t, "2.000000", s.View().AmountA)
}

func TestVaultSelectionStopsPairing(t *testing.T) {
	s := NewSession(testPool())
	s.SelectVault("0xvault")
	require.NoError(t, s.SetAmountA("10"))
	assert.Empty(t, s.View().AmountB)
}

func TestInvalidAmount(t *testing.T) {
	s := NewSession(testPool())
	assert.ErrorIs(t, s.SetAmountA("abc"), ErrInvalidAmount)
	assert.ErrorIs(t, s.SetAmountB("-1"), ErrInvalidAmount)
}

func TestUseFullRangeKeepsAmounts(t *testing.T) {
	s := NewSession(testPool())
	require.NoError(t, s.SetAmountA("10"))
	s.SetRange(-600, 600)
	require.False(t, s.View().Range.FullRange)

	s.UseFullRange()
	v := s.View()
	want := clmm.FullRange(60)
	assert.Equal(t, want.Lower, v.Range.TickLower)
	assert.Equal(t, want.Upper, v.Range.TickUpper)
	assert.True(t, v.Range.FullRange)
	assert.Less(t, v.Range.MinPrice.Value, v.Range.MaxPrice.Value)
	assert.Equal(t, "10", v.AmountA)
	assert.Equal(t, "25.000000", v.AmountB)
}

func TestSetSlippage(t *testing.T) {
	s := NewSession(testPool())
	assert.ErrorIs(t, s.SetSlippage(0), ErrSlippage)
	assert.ErrorIs(t, s.SetSlippage(51), ErrSlippage)
	require.NoError(t, s.SetSlippage(1))
	assert.Equal(t, 1.0, s.View().SlippagePercent)
}

func TestSubmitMissingAmountIsRejected(t *testing.T) {
	s := NewSession(testPool())
	called := false
	res, err := s.Submit(context.Background(), SubmitterFunc(func(context.Context, model.DepositRequest) (string, error) {
		called = true
		return "", nil
	}))
	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Equal(t, StateIdle, res.State)
	assert.Equal(t, NoticeAmountMissing, res.Notice)
}

func TestSubmitOneSidedNeedsOneAmount(t *testing.T) {
	s := NewSession(testPool())
	s.SetOneSided(true)
	require.NoError(t, s.SetAmountA("3"))
	assert.Empty(t, s.View().AmountB)

	res, err := s.Prepare(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.Request)
	assert.Equal(t, OutcomeReady, res.Outcome)
	assert.True(t, res.Request.OneSided)
	assert.Equal(t, "3000000000", res.Request.AmountA)
	assert.Equal(t, "0", res.Request.AmountB)
}

func TestSubmitInvalidRangeIsAutoCorrected(t *testing.T) {
	s := NewSession(testPool())
	require.NoError(t, s.SetAmountA("10"))
	s.SetRange(10, 70)

	called := false
	res, err := s.Submit(context.Background(), SubmitterFunc(func(context.Context, model.DepositRequest) (string, error) {
		called = true
		return "", nil
	}))
	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, OutcomeAutoCorrected, res.Outcome)
	assert.Equal(t, StateIdle, res.State)
	assert.Equal(t, NoticeRangeCorrected, res.Notice)

	v := s.View()
	assert.True(t, v.Range.FullRange)
	assert.Equal(t, "10", v.AmountA)
}

func TestSubmitSuccess(t *testing.T) {
	s := NewSession(testPool())
	require.NoError(t, s.SetAmountA("10"))
	s.SetRange(-600, 600)
	s.SelectVault("")

	var got model.DepositRequest
	res, err := s.Submit(context.Background(), SubmitterFunc(func(_ context.Context, req model.DepositRequest) (string, error) {
		got = req
		return "DIGEST1", nil
	}))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, StateSuccess, res.State)
	assert.Equal(t, "DIGEST1", res.Digest)

	assert.Equal(t, "0xpool", got.PoolID)
	assert.Equal(t, "10000000000", got.AmountA)
	assert.Equal(t, "25000000000", got.AmountB)
	assert.Equal(t, model.TickRange{Lower: -600, Upper: 600}, got.Range)
	assert.Equal(t, DefaultSlippagePercent, got.SlippagePercent)
	assert.Equal(t, clmm.LiquiditySourceGeometric, res.LiquiditySource)

	s.Reset()
	v := s.View()
	assert.Equal(t, StateIdle, v.State)
	assert.Empty(t, v.AmountA)
}

type fixedEstimator struct{ v uint64 }

func (f fixedEstimator) EstimateLiquidity(context.Context, model.TickRange, *uint256.Int, *uint256.Int) (*uint256.Int, error) {
	return uint256.NewInt(f.v), nil
}

func TestSubmitUsesEstimator(t *testing.T) {
	s := NewSession(testPool(), WithEstimator(fixedEstimator{v: 42}))
	require.NoError(t, s.SetAmountA("1"))

	res, err := s.Prepare(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.Request)
	assert.Equal(t, "42", res.Request.Liquidity)
	assert.Equal(t, clmm.LiquiditySourceEstimator, res.LiquiditySource)
}

func TestSubmitFailureIsTranslated(t *testing.T) {
	s := NewSession(testPool())
	require.NoError(t, s.SetAmountA("10"))

	res, err := s.Submit(context.Background(), SubmitterFunc(func(context.Context, model.DepositRequest) (string, error) {
		return "", errors.New("MoveAbort in pool_script: amount_out_below_min")
	}))
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, StateError, res.State)
	require.NotNil(t, res.Error)
	assert.Equal(t, txerror.CodeSlippageExceeded, res.Error.Code)
	assert.Equal(t, txerror.Message(txerror.CodeSlippageExceeded), s.View().Error.Message)
}

func TestSubmitRefusedWhileSubmitting(t *testing.T) {
	s := NewSession(testPool())
	require.NoError(t, s.SetAmountA("10"))

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan Result)
	go func() {
		res, _ := s.Submit(context.Background(), SubmitterFunc(func(context.Context, model.DepositRequest) (string, error) {
			close(started)
			<-release
			return "D", nil
		}))
		done <- res
	}()
	<-started

	assert.Equal(t, StateSubmitting, s.View().State)
	_, err := s.Submit(context.Background(), SubmitterFunc(func(context.Context, model.DepositRequest) (string, error) {
		t.Error("second submit must not reach the submitter")
		return "", nil
	}))
	assert.ErrorIs(t, err, ErrSubmitting)

	close(release)
	res := <-done
	assert.Equal(t, OutcomeSuccess, res.Outcome)
}

func TestSummaryNetAmounts(t *testing.T) {
	s := NewSession(testPool())
	require.NoError(t, s.SetAmountA("100"))
	sum := s.View().Summary
	assert.Equal(t, 30, sum.FeeBps)
	assert.Equal(t, "99.7", sum.NetAmountA)
	assert.Equal(t, "249.25", sum.NetAmountB)
}

func TestSummaryDisplayFeeOverride(t *testing.T) {
	s := NewSession(testPool(), WithDisplayFeeBps(10))
	require.NoError(t, s.SetAmountA("100"))
	sum := s.View().Summary
	assert.Equal(t, 10, sum.FeeBps)
	assert.Equal(t, "99.9", sum.NetAmountA)

	s = NewSession(testPool(), WithDisplayFeeBps(0))
	assert.Equal(t, 30, s.View().Summary.FeeBps)
}

func TestStateText(t *testing.T) {
	b, err := StateSubmitting.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "submitting", string(b))
}

func TestSubmitCorrectsRangeBeforeRejectingAmounts(t *testing.T) {
	s := NewSession(testPool())
	s.SetRange(10, 70)

	res, err := s.Prepare(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Equal(t, NoticeAmountMissing, res.Notice)
	assert.True(t, res.RangeCorrected)
	assert.Nil(t, res.Request)

	v := s.View()
	assert.True(t, v.Range.FullRange)
	assert.Equal(t, int32(-443580), v.Range.TickLower)
	assert.Equal(t, int32(443580), v.Range.TickUpper)
}

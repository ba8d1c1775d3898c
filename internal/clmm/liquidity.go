package clmm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"suiLiquidity/internal/model"
)

// FallbackLiquidity is substituted when the geometric mean cannot be computed.
const FallbackLiquidity = 1_000_000_000

// Liquidity sources reported alongside an estimate.
const (
	LiquiditySourceEstimator = "estimator"
	LiquiditySourceGeometric = "geometric_mean"
	LiquiditySourceConstant  = "constant"
)

var ErrNegativeAmount = errors.New("amount must not be negative")

// LiquidityEstimator is implemented by SDK-backed estimators that know the
// real CLMM formula for a pool.
type LiquidityEstimator interface {
	EstimateLiquidity(ctx context.Context, r model.TickRange, amountA, amountB *uint256.Int) (*uint256.Int, error)
}

// EstimateLiquidity approximates liquidity as sqrt(a × b) of base-unit
// amounts. This ignores the tick range and is only a placeholder for when no
// estimator is available. Non-finite results yield FallbackLiquidity.
func EstimateLiquidity(a, b float64) float64 {
	l, ok := geometricMean(a, b)
	if !ok {
		return FallbackLiquidity
	}
	return l
}

func geometricMean(a, b float64) (float64, bool) {
	l := math.Sqrt(a * b)
	if math.IsNaN(l) || math.IsInf(l, 0) {
		return 0, false
	}
	return l, true
}

// LiquidityEstimate is the outcome of Liquidity.
type LiquidityEstimate struct {
	Value  *uint256.Int
	Source string
}

// Liquidity asks est first and falls back to EstimateLiquidity when est is
// nil, fails, or returns zero.
func Liquidity(ctx context.Context, est LiquidityEstimator, r model.TickRange, amountA, amountB *uint256.Int) LiquidityEstimate {
	if est != nil {
		if l, err := est.EstimateLiquidity(ctx, r, amountA, amountB); err == nil && l != nil && !l.IsZero() {
			return LiquidityEstimate{Value: l, Source: LiquiditySourceEstimator}
		}
	}

	if mean, ok := geometricMean(toFloat(amountA), toFloat(amountB)); ok {
		if v, ok := fromFloat(mean); ok {
			return LiquidityEstimate{Value: v, Source: LiquiditySourceGeometric}
		}
	}
	return LiquidityEstimate{Value: uint256.NewInt(FallbackLiquidity), Source: LiquiditySourceConstant}
}

// ToBaseUnits converts a display amount into integer base units.
func ToBaseUnits(amount decimal.Decimal, decimals uint8) (*uint256.Int, error) {
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	units := amount.Shift(int32(decimals)).Truncate(0).BigInt()
	v, overflow := uint256.FromBig(units)
	if overflow {
		return nil, fmt.Errorf("amount %s overflows 256 bits", amount.String())
	}
	return v, nil
}

// FromBaseUnits converts integer base units back into a display amount.
func FromBaseUnits(units *uint256.Int, decimals uint8) decimal.Decimal {
	if units == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(units.ToBig(), -int32(decimals))
}

func toFloat(v *uint256.Int) float64 {
	if v == nil {
		return math.NaN()
	}
	f, _ := new(big.Float).SetInt(v.ToBig()).Float64()
	return f
}

func fromFloat(f float64) (*uint256.Int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil, false
	}
	i, _ := big.NewFloat(f).Int(nil)
	v, overflow := uint256.FromBig(i)
	return v, !overflow
}

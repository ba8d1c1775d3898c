package clmm

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"suiLiquidity/internal/model"
)

func TestEstimateLiquiditySymmetric(t *testing.T) {
	pairs := [][2]float64{{4, 9}, {1, 1}, {10_000_000_000, 25_000_000}, {3, 7}}
	for _, p := range pairs {
		ab := EstimateLiquidity(p[0], p[1])
		ba := EstimateLiquidity(p[1], p[0])
		if ab != ba {
			t.Fatalf("not symmetric for %v: %f != %f", p, ab, ba)
		}
		if want := math.Sqrt(p[0] * p[1]); ab != want {
			t.Fatalf("expected %f, got %f", want, ab)
		}
	}
	if got := EstimateLiquidity(4, 9); got != 6 {
		t.Fatalf("expected 6, got %f", got)
	}
}

func TestEstimateLiquidityFallback(t *testing.T) {
	if got := EstimateLiquidity(math.NaN(), 5); got != FallbackLiquidity {
		t.Fatalf("expected fallback for NaN, got %f", got)
	}
	if got := EstimateLiquidity(5, math.NaN()); got != FallbackLiquidity {
		t.Fatalf("expected fallback for NaN, got %f", got)
	}
	if got := EstimateLiquidity(-4, 9); got != FallbackLiquidity {
		t.Fatalf("expected fallback for negative input, got %f", got)
	}
}

type stubEstimator struct {
	value *uint256.Int
	err   error
}

func (s stubEstimator) EstimateLiquidity(context.Context, model.TickRange, *uint256.Int, *uint256.Int) (*uint256.Int, error) {
	return s.value, s.err
}

func TestLiquidityPrefersEstimator(t *testing.T) {
	r := FullRange(60)
	a, b := uint256.NewInt(4), uint256.NewInt(9)

	got := Liquidity(context.Background(), stubEstimator{value: uint256.NewInt(42)}, r, a, b)
	if got.Source != LiquiditySourceEstimator || got.Value.Uint64() != 42 {
		t.Fatalf("expected estimator value, got %+v", got)
	}

	got = Liquidity(context.Background(), stubEstimator{value: uint256.NewInt(0)}, r, a, b)
	if got.Source != LiquiditySourceGeometric || got.Value.Uint64() != 6 {
		t.Fatalf("expected geometric fallback on zero, got %+v", got)
	}

	got = Liquidity(context.Background(), stubEstimator{err: errors.New("sdk down")}, r, a, b)
	if got.Source != LiquiditySourceGeometric {
		t.Fatalf("expected geometric fallback on error, got %+v", got)
	}

	got = Liquidity(context.Background(), nil, r, nil, b)
	if got.Source != LiquiditySourceConstant || got.Value.Uint64() != FallbackLiquidity {
		t.Fatalf("expected constant fallback, got %+v", got)
	}
}

func TestToBaseUnits(t *testing.T) {
	v, err := ToBaseUnits(decimal.RequireFromString("1.5"), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Uint64() != 1_500_000_000 {
		t.Fatalf("expected 1500000000, got %s", v.Dec())
	}
	if back := FromBaseUnits(v, 9); !back.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("expected 1.5, got %s", back)
	}
	if _, err := ToBaseUnits(decimal.NewFromInt(-1), 9); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected negative amount error, got %v", err)
	}
}

package clmm

import (
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

func TestNetDisplayAmount(t *testing.T) {
	got := NetDisplayAmount(decimal.NewFromInt(100), DefaultFeeBps)
	if f := got.InexactFloat64(); math.Abs(f-99.7) > 1e-9 {
		t.Fatalf("expected 99.7, got %s", got)
	}

	if got := NetDisplayAmount(decimal.NewFromInt(100), 0); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("zero fee should keep amount, got %s", got)
	}
	if got := NetDisplayAmount(decimal.NewFromInt(100), -10); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("negative fee should keep amount, got %s", got)
	}
}

func TestMinAmountOut(t *testing.T) {
	tests := []struct {
		amount   uint64
		slippage float64
		want     uint64
	}{
		{amount: 1_000_000, slippage: 0.5, want: 995_000},
		{amount: 1_000_000, slippage: 0, want: 1_000_000},
		{amount: 1_000_000, slippage: 150, want: 0},
		{amount: 999, slippage: 1, want: 989},
	}
	for _, tt := range tests {
		got := MinAmountOut(uint256.NewInt(tt.amount), tt.slippage)
		if got.Uint64() != tt.want {
			t.Fatalf("MinAmountOut(%d, %v) = %d, want %d", tt.amount, tt.slippage, got.Uint64(), tt.want)
		}
	}
}

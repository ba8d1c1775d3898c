package dex

import (
	"fmt"
	"sort"

	"suiLiquidity/internal/model"
)

// FeeRateDenominator is the scale of on-chain fee rates (2500 = 0.25%).
const FeeRateDenominator = 1_000_000

// Layout names the Move fields a DEX uses for its pool object. Paths may
// descend into nested structs with dots.
type Layout struct {
	DEX         string
	TickIndex   string
	TickSpacing string
	SqrtPrice   string
	Liquidity   string
	FeeRate     string
}

var layouts = map[string]Layout{
	model.DEXCetus: {
		DEX:         model.DEXCetus,
		TickIndex:   "current_tick_index",
		TickSpacing: "tick_spacing",
		SqrtPrice:   "current_sqrt_price",
		Liquidity:   "liquidity",
		FeeRate:     "fee_rate",
	},
	model.DEXBluefin: {
		DEX:         model.DEXBluefin,
		TickIndex:   "current_tick_index",
		TickSpacing: "ticks_manager.tick_spacing",
		SqrtPrice:   "current_sqrt_price",
		Liquidity:   "liquidity",
		FeeRate:     "fee_rate",
	},
	model.DEXTurbos: {
		DEX:         model.DEXTurbos,
		TickIndex:   "tick_current_index",
		TickSpacing: "tick_spacing",
		SqrtPrice:   "sqrt_price",
		Liquidity:   "liquidity",
		FeeRate:     "fee",
	},
	model.DEXKriya: {
		DEX:         model.DEXKriya,
		TickIndex:   "tick_index",
		TickSpacing: "tick_spacing",
		SqrtPrice:   "sqrt_price",
		Liquidity:   "liquidity",
		FeeRate:     "swap_fee_rate",
	},
}

// LayoutFor returns the field layout of a DEX.
func LayoutFor(dex string) (Layout, error) {
	layout, ok := layouts[dex]
	if !ok {
		return Layout{}, fmt.Errorf("unsupported dex: %s", dex)
	}
	return layout, nil
}

// Supported lists the known DEX identifiers in stable order.
func Supported() []string {
	out := make([]string, 0, len(layouts))
	for name := range layouts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// FeeBps converts an on-chain fee rate to basis points.
func FeeBps(feeRate uint64) int {
	return int(feeRate * 10_000 / FeeRateDenominator)
}

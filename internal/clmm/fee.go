package clmm

import (
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// DefaultFeeBps is the display fee applied to deposit summaries (0.30%).
const DefaultFeeBps = 30

const bpsDenominator = 10000

var bpsScale = decimal.NewFromInt(bpsDenominator)

// NetDisplayAmount returns amount × (1 − feeBps/10000). It is used only for
// the "net deposited" summary; transactions are built from the entered
// amount.
func NetDisplayAmount(amount decimal.Decimal, feeBps int) decimal.Decimal {
	return amount.Sub(FeeAmount(amount, feeBps))
}

// FeeAmount returns amount × feeBps/10000. Negative fees count as zero.
func FeeAmount(amount decimal.Decimal, feeBps int) decimal.Decimal {
	if feeBps <= 0 {
		return decimal.Zero
	}
	return amount.Mul(decimal.NewFromInt(int64(feeBps))).Div(bpsScale)
}

// SlippageBps converts a slippage percentage (0.5 = 0.5%) into basis points,
// clamped to [0, 10000].
func SlippageBps(percent float64) uint64 {
	bps := decimal.NewFromFloat(percent).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if bps < 0 {
		return 0
	}
	if bps > bpsDenominator {
		return bpsDenominator
	}
	return uint64(bps)
}

// MinAmountOut applies slippage to a base-unit amount, rounding down.
func MinAmountOut(amount *uint256.Int, slippagePercent float64) *uint256.Int {
	if amount == nil {
		return uint256.NewInt(0)
	}
	keep := uint256.NewInt(bpsDenominator - SlippageBps(slippagePercent))
	out := new(uint256.Int).Mul(amount, keep)
	return out.Div(out, uint256.NewInt(bpsDenominator))
}

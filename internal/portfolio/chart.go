package portfolio

import "github.com/shopspring/decimal"

var (
	chartPadLow  = decimal.RequireFromString("0.9")
	chartPadHigh = decimal.RequireFromString("1.1")
)

// Bounds is the value axis of the portfolio chart.
type Bounds struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// ChartBounds spans the current and last known totals with 10% padding.
// An empty portfolio with no history gets [0, 1].
func ChartBounds(current, last decimal.Decimal, hasLast bool) Bounds {
	lo, hi := current, current
	if hasLast {
		lo = decimal.Min(lo, last)
		hi = decimal.Max(hi, last)
	}
	if !hi.IsPositive() {
		return Bounds{Min: decimal.Zero, Max: decimal.NewFromInt(1)}
	}
	if lo.IsNegative() {
		lo = decimal.Zero
	}
	return Bounds{Min: lo.Mul(chartPadLow), Max: hi.Mul(chartPadHigh)}
}

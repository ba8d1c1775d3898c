// Package format renders amounts, prices and addresses for display.
package format

import (
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var (
	cent     = decimal.RequireFromString("0.01")
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
)

// USD renders d as "$1,234.56". Positive values below one cent render as
// "<$0.01".
func USD(d decimal.Decimal) string {
	if d.IsPositive() && d.LessThan(cent) {
		return "<$0.01"
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + "$" + grouped(d, 2)
}

// CompactUSD renders large values with K/M/B suffixes ("$1.23M").
func CompactUSD(d decimal.Decimal) string {
	abs := d.Abs()
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	switch {
	case abs.GreaterThanOrEqual(billion):
		return sign + "$" + abs.Div(billion).StringFixed(2) + "B"
	case abs.GreaterThanOrEqual(million):
		return sign + "$" + abs.Div(million).StringFixed(2) + "M"
	case abs.GreaterThanOrEqual(thousand):
		return sign + "$" + abs.Div(thousand).StringFixed(2) + "K"
	default:
		return USD(d)
	}
}

// Percent renders d (already a percentage) with the given decimal places.
func Percent(d decimal.Decimal, places int32) string {
	return d.StringFixed(places) + "%"
}

// ShortAddress shortens a Sui address or coin type for display:
// "0x1234…abcd" or "0x1234…abcd::usdc::USDC".
func ShortAddress(addr string) string {
	head, rest, hasRest := strings.Cut(addr, "::")
	if len(head) > 12 {
		head = head[:6] + "…" + head[len(head)-4:]
	}
	if hasRest {
		return head + "::" + rest
	}
	return head
}

func grouped(d decimal.Decimal, places int32) string {
	fixed := d.StringFixed(places)
	intPart, frac, _ := strings.Cut(fixed, ".")
	n, ok := new(big.Int).SetString(intPart, 10)
	if !ok || !n.IsInt64() {
		return fixed
	}
	out := humanize.Comma(n.Int64())
	if frac != "" {
		out += "." + frac
	}
	return out
}

package pools

import (
	"math/big"
	"strings"
)

const (
	aprScale   = 2
	daysInYear = 365
)

// computeAPR annualises 24h fees over TVL as a percentage string. It
// returns nil when either side is missing or TVL is zero.
func computeAPR(fees24h, tvl string) *string {
	fees, ok := parseRat(fees24h)
	if !ok || fees.Sign() < 0 {
		return nil
	}
	liquidity, ok := parseRat(tvl)
	if !ok || liquidity.Sign() <= 0 {
		return nil
	}

	apr := new(big.Rat).Quo(fees, liquidity)
	apr.Mul(apr, big.NewRat(daysInYear*100, 1))
	val := apr.FloatString(aprScale)
	return &val
}

func parseRat(s string) (*big.Rat, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	return new(big.Rat).SetString(s)
}

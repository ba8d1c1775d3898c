// Package withdraw sizes partial and full withdrawals from a liquidity
// position.
package withdraw

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"suiLiquidity/internal/clmm"
	"suiLiquidity/internal/model"
)

const (
	percentScale       = 10000 // hundredths of a percent
	maxSlippagePercent = 50
)

var (
	ErrInvalidPercent = errors.New("withdraw percentage must be greater than 0 and at most 100")
	ErrNoLiquidity    = errors.New("position has no liquidity")
	ErrSlippage       = errors.New("slippage must be greater than 0 and at most 50 percent")
)

// Position is an open liquidity position and the token amounts it
// currently represents, in base units.
type Position struct {
	ID        string       `json:"position_id"`
	PoolID    string       `json:"pool_id"`
	Liquidity *uint256.Int `json:"liquidity"`
	AmountA   *uint256.Int `json:"amount_a"`
	AmountB   *uint256.Int `json:"amount_b"`
	DecimalsA uint8        `json:"decimals_a"`
	DecimalsB uint8        `json:"decimals_b"`
	// DisplayFeeBps is the flat fee shown in the net amounts; zero means
	// clmm.DefaultFeeBps.
	DisplayFeeBps int `json:"display_fee_bps,omitempty"`
}

// Quote is the outcome of Preview.
type Quote struct {
	Percent    string                `json:"percent"`
	Liquidity  string                `json:"liquidity"`
	AmountA    decimal.Decimal       `json:"amount_a"`
	AmountB    decimal.Decimal       `json:"amount_b"`
	MinAmountA decimal.Decimal       `json:"min_amount_a"`
	MinAmountB decimal.Decimal       `json:"min_amount_b"`
	NetAmountA decimal.Decimal       `json:"net_amount_a"`
	NetAmountB decimal.Decimal       `json:"net_amount_b"`
	Request    model.WithdrawRequest `json:"request"`
}

// Preview sizes a withdrawal of percent (0 < percent <= 100) of pos.
// Liquidity and token amounts are scaled in integer arithmetic; 100 returns
// the full liquidity exactly.
func Preview(pos Position, percent, slippagePercent float64) (Quote, error) {
	if percent <= 0 || percent > 100 {
		return Quote{}, ErrInvalidPercent
	}
	if slippagePercent <= 0 || slippagePercent > maxSlippagePercent {
		return Quote{}, ErrSlippage
	}
	if pos.Liquidity == nil || pos.Liquidity.IsZero() {
		return Quote{}, ErrNoLiquidity
	}

	share := decimal.NewFromFloat(percent).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if share <= 0 {
		return Quote{}, fmt.Errorf("%w: %v", ErrInvalidPercent, percent)
	}

	liq := scale(pos.Liquidity, uint64(share))
	amountA := scale(pos.AmountA, uint64(share))
	amountB := scale(pos.AmountB, uint64(share))
	minA := clmm.MinAmountOut(amountA, slippagePercent)
	minB := clmm.MinAmountOut(amountB, slippagePercent)

	feeBps := pos.DisplayFeeBps
	if feeBps <= 0 {
		feeBps = clmm.DefaultFeeBps
	}
	displayA := clmm.FromBaseUnits(amountA, pos.DecimalsA)
	displayB := clmm.FromBaseUnits(amountB, pos.DecimalsB)

	return Quote{
		Percent:    decimal.NewFromInt(share).Div(decimal.NewFromInt(100)).String(),
		Liquidity:  liq.Dec(),
		AmountA:    displayA,
		AmountB:    displayB,
		MinAmountA: clmm.FromBaseUnits(minA, pos.DecimalsA),
		MinAmountB: clmm.FromBaseUnits(minB, pos.DecimalsB),
		NetAmountA: clmm.NetDisplayAmount(displayA, feeBps),
		NetAmountB: clmm.NetDisplayAmount(displayB, feeBps),
		Request: model.WithdrawRequest{
			PoolID:          pos.PoolID,
			PositionID:      pos.ID,
			Liquidity:       liq.Dec(),
			MinAmountA:      minA.Dec(),
			MinAmountB:      minB.Dec(),
			SlippagePercent: slippagePercent,
		},
	}, nil
}

// scale returns v × share / 10000, or v itself when share is the whole.
func scale(v *uint256.Int, share uint64) *uint256.Int {
	if v == nil {
		return uint256.NewInt(0)
	}
	if share >= percentScale {
		return new(uint256.Int).Set(v)
	}
	out, overflow := new(uint256.Int).MulOverflow(v, uint256.NewInt(share))
	if overflow {
		// v is at most u128 on chain, so only malformed input lands here.
		q := new(uint256.Int).Div(v, uint256.NewInt(percentScale))
		return q.Mul(q, uint256.NewInt(share))
	}
	return out.Div(out, uint256.NewInt(percentScale))
}

// ParsePosition builds a Position from decimal strings as returned by the
// chain.
func ParsePosition(id, poolID, liquidity, amountA, amountB string, decimalsA, decimalsB uint8) (Position, error) {
	liq, err := parseUint(liquidity)
	if err != nil {
		return Position{}, fmt.Errorf("liquidity: %w", err)
	}
	a, err := parseUint(amountA)
	if err != nil {
		return Position{}, fmt.Errorf("amount a: %w", err)
	}
	b, err := parseUint(amountB)
	if err != nil {
		return Position{}, fmt.Errorf("amount b: %w", err)
	}
	return Position{
		ID:        id,
		PoolID:    poolID,
		Liquidity: liq,
		AmountA:   a,
		AmountB:   b,
		DecimalsA: decimalsA,
		DecimalsB: decimalsB,
	}, nil
}

func parseUint(s string) (*uint256.Int, error) {
	if s == "" {
		return uint256.NewInt(0), nil
	}
	return uint256.FromDecimal(s)
}

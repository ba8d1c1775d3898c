// Package clmm holds the concentrated-liquidity arithmetic used by the
// deposit and withdraw flows: tick/price conversion, full-range ticks,
// liquidity estimation and fee display amounts.
package clmm

import (
	"errors"
	"fmt"
	"math"

	"suiLiquidity/internal/model"
)

const (
	// MaxTick is the largest tick magnitude accepted by Sui CLMM pools.
	MaxTick int32 = 443636
	MinTick int32 = -MaxTick

	// DefaultTickSpacing is used when a pool reports no usable spacing.
	DefaultTickSpacing int32 = 60
)

var (
	ErrInvertedRange  = errors.New("tick upper must be greater than tick lower")
	ErrUnalignedTick  = errors.New("tick is not a multiple of tick spacing")
	ErrTickOutOfRange = errors.New("tick outside allowed bounds")
	ErrRangeTooNarrow = errors.New("tick range narrower than tick spacing")
)

// NormalizeSpacing returns spacing, or DefaultTickSpacing when spacing is
// zero or negative.
func NormalizeSpacing(spacing int32) int32 {
	if spacing <= 0 {
		return DefaultTickSpacing
	}
	return spacing
}

// FullRange returns the widest range whose bounds are multiples of spacing.
// When the adjusted bounds do not form a valid range the unadjusted
// (MinTick, MaxTick) pair is returned, still flagged as full range.
func FullRange(spacing int32) model.TickRange {
	s := NormalizeSpacing(spacing)
	rem := MaxTick % s
	r := model.TickRange{
		Lower:     MinTick + rem,
		Upper:     MaxTick - rem,
		FullRange: true,
	}
	if r.Upper <= r.Lower || r.Upper-r.Lower < s {
		return model.TickRange{Lower: MinTick, Upper: MaxTick, FullRange: true}
	}
	return r
}

// ValidateRange checks ordering, bounds, spacing alignment and width.
func ValidateRange(r model.TickRange, spacing int32) error {
	s := NormalizeSpacing(spacing)
	if r.Upper <= r.Lower {
		return ErrInvertedRange
	}
	if r.Lower < MinTick || r.Upper > MaxTick {
		return fmt.Errorf("%w: [%d, %d]", ErrTickOutOfRange, r.Lower, r.Upper)
	}
	if r.Lower%s != 0 || r.Upper%s != 0 {
		return fmt.Errorf("%w: [%d, %d] spacing %d", ErrUnalignedTick, r.Lower, r.Upper, s)
	}
	if r.Upper-r.Lower < s {
		return ErrRangeTooNarrow
	}
	return nil
}

// SnapDown rounds tick down to the nearest multiple of spacing.
func SnapDown(tick, spacing int32) int32 {
	s := NormalizeSpacing(spacing)
	snapped := (tick / s) * s
	if tick < 0 && tick%s != 0 {
		snapped -= s
	}
	return snapped
}

// SnapUp rounds tick up to the nearest multiple of spacing.
func SnapUp(tick, spacing int32) int32 {
	s := NormalizeSpacing(spacing)
	snapped := (tick / s) * s
	if tick > 0 && tick%s != 0 {
		snapped += s
	}
	return snapped
}

// RangeFromPrices converts a nominal price band into a spacing-aligned tick
// range, clamped to the full range for the spacing.
func RangeFromPrices(minPrice, maxPrice float64, decimalsA, decimalsB uint8, spacing int32) (model.TickRange, error) {
	lowerTick, err := PriceToTick(minPrice, decimalsA, decimalsB)
	if err != nil {
		return model.TickRange{}, fmt.Errorf("min price: %w", err)
	}
	upperTick, err := PriceToTick(maxPrice, decimalsA, decimalsB)
	if err != nil {
		return model.TickRange{}, fmt.Errorf("max price: %w", err)
	}
	if upperTick < lowerTick {
		lowerTick, upperTick = upperTick, lowerTick
	}

	full := FullRange(spacing)
	r := model.TickRange{
		Lower: SnapDown(lowerTick, spacing),
		Upper: SnapUp(upperTick, spacing),
	}
	if r.Lower < full.Lower {
		r.Lower = full.Lower
	}
	if r.Upper > full.Upper {
		r.Upper = full.Upper
	}
	if r.Upper == r.Lower {
		r.Upper += NormalizeSpacing(spacing)
	}
	r.FullRange = r.Lower == full.Lower && r.Upper == full.Upper
	return r, ValidateRange(r, spacing)
}

func clampTick(tick float64) int32 {
	if math.IsNaN(tick) {
		return 0
	}
	if tick > float64(MaxTick) {
		return MaxTick
	}
	if tick < float64(MinTick) {
		return MinTick
	}
	return int32(tick)
}

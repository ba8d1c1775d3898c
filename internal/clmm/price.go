package clmm

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

const (
	tickBase = 1.0001

	displayFloor   = 1e-6
	displayCeiling = 1e6
)

var ErrInvalidPrice = errors.New("price must be a positive finite number")

// Orientation reports how a tick price relates to the quote-per-base
// convention (token B per token A).
type Orientation int

const (
	// OrientationRaw means no USD references were available.
	OrientationRaw Orientation = iota
	// OrientationConfirmed means the raw ratio already matched the references.
	OrientationConfirmed
	// OrientationInverted means the raw ratio was inverted.
	OrientationInverted
	// OrientationAmbiguous means both references were equal, so the raw
	// ratio was kept without any claim about its orientation.
	OrientationAmbiguous
)

func (o Orientation) String() string {
	switch o {
	case OrientationConfirmed:
		return "confirmed"
	case OrientationInverted:
		return "inverted"
	case OrientationAmbiguous:
		return "ambiguous"
	default:
		return "raw"
	}
}

// MarshalText renders the orientation name in JSON payloads.
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Orientation) UnmarshalText(text []byte) error {
	switch string(text) {
	case "raw":
		*o = OrientationRaw
	case "confirmed":
		*o = OrientationConfirmed
	case "inverted":
		*o = OrientationInverted
	case "ambiguous":
		*o = OrientationAmbiguous
	default:
		return fmt.Errorf("unknown orientation %q", text)
	}
	return nil
}

// USDReference holds external USD prices for token A and token B.
type USDReference struct {
	A float64
	B float64
}

func (r *USDReference) usable() bool {
	return r != nil && isPositiveFinite(r.A) && isPositiveFinite(r.B)
}

// Price is a tick price after orientation handling.
type Price struct {
	Value       float64     `json:"value"`
	Raw         float64     `json:"raw"`
	Orientation Orientation `json:"orientation"`
}

// Display formats the price for humans, bounding extreme values.
func (p Price) Display() string {
	return ClampForDisplay(p.Value, 6)
}

// RawPrice computes 1.0001^tick × 10^(decimalsA − decimalsB).
func RawPrice(tick int32, decimalsA, decimalsB uint8) float64 {
	return math.Pow(tickBase, float64(tick)) * math.Pow10(int(decimalsA)-int(decimalsB))
}

// TickToPrice converts a tick into a price, orienting it with ref when both
// USD prices are available.
func TickToPrice(tick int32, decimalsA, decimalsB uint8, ref *USDReference) Price {
	raw := RawPrice(tick, decimalsA, decimalsB)
	value, orientation := Orient(raw, ref)
	return Price{Value: value, Raw: raw, Orientation: orientation}
}

// Orient applies the USD-reference orientation heuristic to a raw ratio.
// The token with the higher USD price is expected to be worth more than one
// unit of the other, so raw > 1 should coincide with usdA > usdB.
func Orient(raw float64, ref *USDReference) (float64, Orientation) {
	if !ref.usable() || !isPositiveFinite(raw) {
		return raw, OrientationRaw
	}
	if ref.A == ref.B {
		return raw, OrientationAmbiguous
	}
	if (ref.A > ref.B) == (raw > 1) {
		return raw, OrientationConfirmed
	}
	return 1 / raw, OrientationInverted
}

// PriceToTick is the inverse of RawPrice, rounded to the nearest tick and
// clamped to [MinTick, MaxTick].
func PriceToTick(price float64, decimalsA, decimalsB uint8) (int32, error) {
	if !isPositiveFinite(price) {
		return 0, ErrInvalidPrice
	}
	scaled := price / math.Pow10(int(decimalsA)-int(decimalsB))
	tick := math.Round(math.Log(scaled) / math.Log(tickBase))
	return clampTick(tick), nil
}

// ClampForDisplay renders v with precision decimals, replacing values below
// 1e-6 or above 1e6 with bounded markers. v itself is never modified.
func ClampForDisplay(v float64, precision int) string {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return "-"
	case v > 0 && v < displayFloor:
		return "<0.000001"
	case v > displayCeiling:
		return ">1000000"
	default:
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
}

// RangeQuote is a tick range with the prices at each bound.
type RangeQuote struct {
	TickLower   int32       `json:"tick_lower"`
	TickUpper   int32       `json:"tick_upper"`
	FullRange   bool        `json:"full_range"`
	MinPrice    Price       `json:"min_price"`
	MaxPrice    Price       `json:"max_price"`
	Orientation Orientation `json:"orientation"`
}

// QuoteRange derives min/max prices for the bounds of a range. Orientation
// is decided once at anchorTick (normally the pool's current tick) and
// applied to both bounds, so the two prices share one convention. MinPrice
// is always the smaller value.
func QuoteRange(lower, upper, anchorTick int32, fullRange bool, decimalsA, decimalsB uint8, ref *USDReference) RangeQuote {
	anchor := TickToPrice(anchorTick, decimalsA, decimalsB, ref)
	lo := boundPrice(lower, decimalsA, decimalsB, anchor.Orientation)
	hi := boundPrice(upper, decimalsA, decimalsB, anchor.Orientation)
	if lo.Value > hi.Value {
		lo, hi = hi, lo
	}
	return RangeQuote{
		TickLower:   lower,
		TickUpper:   upper,
		FullRange:   fullRange,
		MinPrice:    lo,
		MaxPrice:    hi,
		Orientation: anchor.Orientation,
	}
}

// FullRangeQuote computes the full range for spacing and its price bounds.
func FullRangeQuote(spacing, currentTick int32, decimalsA, decimalsB uint8, ref *USDReference) RangeQuote {
	r := FullRange(spacing)
	return QuoteRange(r.Lower, r.Upper, currentTick, r.FullRange, decimalsA, decimalsB, ref)
}

func boundPrice(tick int32, decimalsA, decimalsB uint8, orientation Orientation) Price {
	raw := RawPrice(tick, decimalsA, decimalsB)
	p := Price{Value: raw, Raw: raw, Orientation: orientation}
	if orientation == OrientationInverted && isPositiveFinite(raw) {
		p.Value = 1 / raw
	}
	return p
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

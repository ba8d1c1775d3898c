package clmm

import (
	"math"
	"testing"
)

func TestTickPriceRoundTrip(t *testing.T) {
	decimals := [][2]uint8{{0, 12}, {12, 0}, {9, 6}, {6, 9}, {8, 8}, {18, 6}, {6, 18}}
	ticks := []int32{MinTick, MinTick + 1, -200000, -60, -1, 0, 1, 60, 12345, 200000, MaxTick - 1, MaxTick}
	for tick := MinTick; tick <= MaxTick; tick += 9973 {
		ticks = append(ticks, tick)
	}

	for _, d := range decimals {
		for _, tick := range ticks {
			price := RawPrice(tick, d[0], d[1])
			got, err := PriceToTick(price, d[0], d[1])
			if err != nil {
				t.Fatalf("tick %d decimals %v: unexpected error: %v", tick, d, err)
			}
			if diff := got - tick; diff < -1 || diff > 1 {
				t.Fatalf("tick %d decimals %v: round trip gave %d", tick, d, got)
			}
		}
	}
}

func TestRawPriceDecimalScaling(t *testing.T) {
	if got := RawPrice(0, 9, 6); math.Abs(got-1000) > 1e-9 {
		t.Fatalf("expected 1000, got %f", got)
	}
	if got := RawPrice(0, 6, 9); math.Abs(got-0.001) > 1e-15 {
		t.Fatalf("expected 0.001, got %f", got)
	}
}

func TestOrientation(t *testing.T) {
	raw := 2.5

	got, o := Orient(raw, &USDReference{A: 2, B: 1})
	if got != raw || o != OrientationConfirmed {
		t.Fatalf("expected raw price confirmed, got %f %s", got, o)
	}

	got, o = Orient(raw, &USDReference{A: 1, B: 2})
	if math.Abs(got-1/raw) > 1e-12 || o != OrientationInverted {
		t.Fatalf("expected inverted price, got %f %s", got, o)
	}

	got, o = Orient(raw, &USDReference{A: 1, B: 1})
	if got != raw || o != OrientationAmbiguous {
		t.Fatalf("expected ambiguous raw price, got %f %s", got, o)
	}

	got, o = Orient(raw, nil)
	if got != raw || o != OrientationRaw {
		t.Fatalf("expected raw price without references, got %f %s", got, o)
	}

	got, o = Orient(raw, &USDReference{A: 0, B: 2})
	if got != raw || o != OrientationRaw {
		t.Fatalf("expected raw price with missing reference, got %f %s", got, o)
	}
}

func TestTickToPriceInvertsBelowOne(t *testing.T) {
	// tick -6932 ≈ 0.5 with equal decimals; token A is the pricier one.
	p := TickToPrice(-6932, 9, 9, &USDReference{A: 3, B: 1.5})
	if p.Orientation != OrientationInverted {
		t.Fatalf("expected inversion, got %s", p.Orientation)
	}
	if math.Abs(p.Value-1/p.Raw) > 1e-12 {
		t.Fatalf("value %f is not 1/raw %f", p.Value, p.Raw)
	}
}

func TestClampForDisplay(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 2.5, want: "2.500000"},
		{in: 1e-7, want: "<0.000001"},
		{in: 5e6, want: ">1000000"},
		{in: 0, want: "0.000000"},
		{in: math.NaN(), want: "-"},
	}
	for _, tt := range tests {
		if got := ClampForDisplay(tt.in, 6); got != tt.want {
			t.Fatalf("ClampForDisplay(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFullRangeQuoteOrdersBounds(t *testing.T) {
	// raw price at tick 0 is 1000 while B is the pricier token, so both
	// bounds are inverted together.
	q := FullRangeQuote(60, 0, 9, 6, &USDReference{A: 1, B: 2})
	if q.MinPrice.Value > q.MaxPrice.Value {
		t.Fatalf("min %f above max %f", q.MinPrice.Value, q.MaxPrice.Value)
	}
	if q.TickLower != -443580 || q.TickUpper != 443580 || !q.FullRange {
		t.Fatalf("unexpected range: %+v", q)
	}
	if q.Orientation != OrientationInverted || q.MinPrice.Orientation != OrientationInverted {
		t.Fatalf("expected inverted orientation, got %s", q.Orientation)
	}
	if q.MaxPrice.Display() != ">1000000" {
		t.Fatalf("expected clamped max display, got %s", q.MaxPrice.Display())
	}
}

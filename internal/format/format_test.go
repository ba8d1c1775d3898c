package format

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestUSD(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "1234.567", want: "$1,234.57"},
		{in: "0", want: "$0.00"},
		{in: "0.004", want: "<$0.01"},
		{in: "-98765.4", want: "-$98,765.40"},
		{in: "1000000", want: "$1,000,000.00"},
	}
	for _, tt := range tests {
		if got := USD(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Fatalf("USD(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCompactUSD(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "1234567", want: "$1.23M"},
		{in: "2500000000", want: "$2.50B"},
		{in: "1500", want: "$1.50K"},
		{in: "999", want: "$999.00"},
	}
	for _, tt := range tests {
		if got := CompactUSD(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Fatalf("CompactUSD(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(decimal.RequireFromString("12.345"), 2); got != "12.35%" {
		t.Fatalf("unexpected percent: %s", got)
	}
}

func TestShortAddress(t *testing.T) {
	addr := "0xdba34672e30cb065b1f93e3ab55318768fd6fef66c15942c9f7cb846e2f900e7"
	if got := ShortAddress(addr); got != "0xdba3…00e7" {
		t.Fatalf("unexpected short address: %s", got)
	}
	if got := ShortAddress(addr + "::usdc::USDC"); got != "0xdba3…00e7::usdc::USDC" {
		t.Fatalf("unexpected short coin type: %s", got)
	}
	if got := ShortAddress("0x2::sui::SUI"); got != "0x2::sui::SUI" {
		t.Fatalf("short addresses should be kept: %s", got)
	}
}

package main

import (
	"bytes"
	"strings"
	"testing"

	"suiLiquidity/internal/clmm"
)

func TestPrintQuoteFullRange(t *testing.T) {
	q := clmm.FullRangeQuote(60, 0, 9, 9, nil)
	current := clmm.TickToPrice(0, 9, 9, nil)

	var buf bytes.Buffer
	printQuote(&buf, q, current, 60)

	out := buf.String()
	if !strings.Contains(out, "[-443580, 443580]") {
		t.Fatalf("missing tick bounds:\n%s", out)
	}
	if !strings.Contains(out, "full range:   true") {
		t.Fatalf("missing full range flag:\n%s", out)
	}
	if strings.Contains(out, "invalid:") {
		t.Fatalf("full range reported invalid:\n%s", out)
	}
}

func TestPrintQuoteReportsInvalidRange(t *testing.T) {
	q := clmm.QuoteRange(7, 100, 0, false, 9, 9, nil)
	current := clmm.TickToPrice(0, 9, 9, nil)

	var buf bytes.Buffer
	printQuote(&buf, q, current, 60)

	if !strings.Contains(buf.String(), "invalid:") {
		t.Fatalf("misaligned range not reported:\n%s", buf.String())
	}
}

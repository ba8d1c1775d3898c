package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"suiLiquidity/internal/clmm"
	"suiLiquidity/internal/config"
	"suiLiquidity/internal/model"
)

func runTickRange(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadTickRange(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	var ref *clmm.USDReference
	if cfg.USDA > 0 && cfg.USDB > 0 {
		ref = &clmm.USDReference{A: cfg.USDA, B: cfg.USDB}
	}

	var quote clmm.RangeQuote
	switch {
	case cfg.MinPrice > 0 || cfg.MaxPrice > 0:
		r, err := clmm.RangeFromPrices(cfg.MinPrice, cfg.MaxPrice, cfg.DecimalsA, cfg.DecimalsB, cfg.TickSpacing)
		if err != nil {
			return err
		}
		quote = clmm.QuoteRange(r.Lower, r.Upper, cfg.CurrentTick, r.FullRange, cfg.DecimalsA, cfg.DecimalsB, ref)
	case cfg.Full || (cfg.Lower == 0 && cfg.Upper == 0):
		quote = clmm.FullRangeQuote(cfg.TickSpacing, cfg.CurrentTick, cfg.DecimalsA, cfg.DecimalsB, ref)
	default:
		quote = clmm.QuoteRange(cfg.Lower, cfg.Upper, cfg.CurrentTick, false, cfg.DecimalsA, cfg.DecimalsB, ref)
	}

	current := clmm.TickToPrice(cfg.CurrentTick, cfg.DecimalsA, cfg.DecimalsB, ref)
	printQuote(cmd.OutOrStdout(), quote, current, cfg.TickSpacing)
	return nil
}

func printQuote(w io.Writer, q clmm.RangeQuote, current clmm.Price, spacing int32) {
	fmt.Fprintf(w, "ticks:        [%d, %d]\n", q.TickLower, q.TickUpper)
	fmt.Fprintf(w, "full range:   %t\n", q.FullRange)
	fmt.Fprintf(w, "min price:    %s\n", q.MinPrice.Display())
	fmt.Fprintf(w, "max price:    %s\n", q.MaxPrice.Display())
	fmt.Fprintf(w, "current:      %s\n", current.Display())
	fmt.Fprintf(w, "orientation:  %s\n", q.Orientation)
	if !q.FullRange {
		if err := clmm.ValidateRange(model.TickRange{Lower: q.TickLower, Upper: q.TickUpper}, spacing); err != nil {
			fmt.Fprintf(w, "invalid:      %v\n", err)
		}
	}
}

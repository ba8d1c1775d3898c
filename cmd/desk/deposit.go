package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"suiLiquidity/internal/clmm"
	"suiLiquidity/internal/config"
	"suiLiquidity/internal/deposit"
	"suiLiquidity/internal/model"
)

type depositPreview struct {
	Pool   model.PoolInfo `json:"pool"`
	Result deposit.Result `json:"result"`
	Form   deposit.View   `json:"form"`
}

func runDepositPreview(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDepositPreview(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.PoolID == "" {
		return fmt.Errorf("pool id is required")
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := newStack(ctx, cfg.Providers, prometheus.NewRegistry(), logger)
	if err != nil {
		return err
	}
	defer st.Close()

	agg, err := st.aggregator([]string{cfg.DEX}, map[string][]string{cfg.DEX: {cfg.PoolID}}, 0, logger)
	if err != nil {
		return err
	}
	list, err := agg.Fetch(ctx, cfg.DEX)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(list, func(p model.PoolInfo) bool { return p.PoolID == cfg.PoolID })
	if idx < 0 {
		return fmt.Errorf("pool %s not found on %s", cfg.PoolID, cfg.DEX)
	}
	pool := list[idx]

	var ref *clmm.USDReference
	quotes, err := st.prices.Prices(ctx, []string{pool.TokenA.Address, pool.TokenB.Address})
	if err == nil {
		qa, okA := quotes[pool.TokenA.Address]
		qb, okB := quotes[pool.TokenB.Address]
		if okA && okB {
			a, _ := qa.PriceUSD.Float64()
			b, _ := qb.PriceUSD.Float64()
			ref = &clmm.USDReference{A: a, B: b}
		}
	}

	session := deposit.NewSession(deposit.PoolFromInfo(pool, ref), deposit.WithLogger(logger))
	if err := session.SetSlippage(cfg.Slippage); err != nil {
		return err
	}
	session.SetOneSided(cfg.OneSided)
	session.SelectVault(cfg.VaultID)
	if cfg.AmountA != "" {
		if err := session.SetAmountA(cfg.AmountA); err != nil {
			return fmt.Errorf("amount-a: %w", err)
		}
	}
	if cfg.AmountB != "" && (cfg.AmountA == "" || cfg.OneSided || cfg.VaultID != "") {
		if err := session.SetAmountB(cfg.AmountB); err != nil {
			return fmt.Errorf("amount-b: %w", err)
		}
	}
	if !cfg.Full && (cfg.Lower != 0 || cfg.Upper != 0) {
		session.SetRange(cfg.Lower, cfg.Upper)
	}

	res, err := session.Prepare(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(depositPreview{Pool: pool, Result: res, Form: session.View()})
}

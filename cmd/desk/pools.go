package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"suiLiquidity/internal/clmm"
	"suiLiquidity/internal/config"
	"suiLiquidity/internal/format"
	"suiLiquidity/internal/model"
	"suiLiquidity/internal/pools"
	"suiLiquidity/internal/refresh"
	"suiLiquidity/internal/storage"
	"suiLiquidity/internal/storage/postgres"
)

func runPools(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadPools(cfgFile, cmd.Flags())
	if err != nil {
		return err
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

	agg, err := st.aggregator(cfg.DEXes, cfg.PoolIDs, cfg.PoolLimit, logger)
	if err != nil {
		return err
	}

	sink, closeSink, err := openSink(ctx, cfg.Out, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer closeSink()

	runner := refresh.NewRunner(refresh.RunConfig{
		DEXes:         agg.DEXes(),
		Interval:      cfg.Interval,
		MaxRetries:    cfg.MaxRetries,
		RetryBackoff:  cfg.RetryBackoff,
		SkipUnchanged: cfg.SkipUnchanged && cfg.Watch,
	}, pools.NewLoader(agg), sink, st.metrics, logger)
	runner.OnPools = func(_ string, list []model.PoolInfo) {
		printPools(cmd.OutOrStdout(), list)
	}

	logger.Info("pools start",
		zap.Strings("dexes", agg.DEXes()),
		zap.Bool("watch", cfg.Watch),
		zap.Duration("interval", cfg.Interval),
		zap.String("out", cfg.Out),
		zap.Bool("postgres", cfg.PGDSN != ""),
	)

	if !cfg.Watch {
		return runner.RunOnce(ctx)
	}
	err = runner.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// openSink picks Postgres over JSONL; with neither, snapshots are not kept.
func openSink(ctx context.Context, out, dsn string) (storage.Storage, func(), error) {
	if dsn != "" {
		store, err := postgres.NewStore(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, store.Close, nil
	}
	if out != "" {
		return storage.NewJsonlStorage(out), func() {}, nil
	}
	return nil, func() {}, nil
}

func printPools(w io.Writer, list []model.PoolInfo) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DEX\tPAIR\tPOOL\tFEE\tPRICE\tTVL\tVOLUME 24H\tAPR\tVAULT APY")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.DEX,
			p.Pair(),
			format.ShortAddress(p.PoolID),
			format.Percent(decimal.NewFromInt(int64(p.FeeBps)).Div(decimal.NewFromInt(100)), 2),
			clmm.ClampForDisplay(p.CurrentPrice, 6),
			compactUSD(p.LiquidityUSD),
			compactUSD(p.Volume24hUSD),
			optionalPercent(p.APR),
			optionalPercent(p.VaultAPY),
		)
	}
	tw.Flush()
}

func compactUSD(v string) string {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return "-"
	}
	return format.CompactUSD(d)
}

func optionalPercent(v *string) string {
	if v == nil {
		return "-"
	}
	d, err := decimal.NewFromString(*v)
	if err != nil {
		return "-"
	}
	return format.Percent(d, 2)
}

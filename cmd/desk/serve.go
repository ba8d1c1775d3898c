package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"suiLiquidity/internal/apm"
	"suiLiquidity/internal/config"
	"suiLiquidity/internal/model"
	"suiLiquidity/internal/pools"
	"suiLiquidity/internal/portfolio"
	"suiLiquidity/internal/refresh"
	"suiLiquidity/internal/server"
	"suiLiquidity/internal/storage"
	"suiLiquidity/internal/storage/postgres"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	dust, err := decimal.NewFromString(cfg.DustUSD)
	if err != nil {
		return fmt.Errorf("dust-usd: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	traceExporter, _ := cmd.Flags().GetString("trace")
	tp, err := apm.NewTraceProvider(ctx, apm.Options{Exporter: traceExporter, ServiceName: "desk"})
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Stop(); err != nil {
			logger.Warn("stop tracing", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	st, err := newStack(ctx, cfg.Providers, reg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	agg, err := st.aggregator(cfg.DEXes, cfg.PoolIDs, cfg.PoolLimit, logger)
	if err != nil {
		return err
	}

	var (
		stateStore portfolio.StateStore = &portfolio.FileStateStore{Path: cfg.StateFile}
		sink       storage.Storage
	)
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		stateStore = &portfolio.DBStateStore{Store: store}
		sink = store
	}

	valuer := portfolio.NewService(portfolio.Config{
		Balances: st.chain,
		Fallback: st.blockvision,
		Tokens:   st.tokens,
		Prices:   st.prices,
		State:    stateStore,
		Features: portfolio.Features{
			HideDust:        cfg.HideDust,
			DustUSD:         dust,
			IncludeUnpriced: cfg.IncludeUnpriced,
			PersistTotal:    true,
		},
	}, logger)

	srv := server.New(server.Options{
		Pools:     agg,
		Tokens:    st.tokens,
		Prices:    st.prices,
		Portfolio: valuer,
		Gatherer:  reg,
		Metrics:   st.metrics,
		Logger:    logger,
	})

	if cfg.RefreshInterval > 0 {
		runner := refresh.NewRunner(refresh.RunConfig{
			DEXes:         agg.DEXes(),
			Interval:      cfg.RefreshInterval,
			MaxRetries:    2,
			SkipUnchanged: true,
		}, pools.NewLoader(agg), sink, st.metrics, logger)
		runner.OnPools = func(string, []model.PoolInfo) {
			st.metrics.SetCacheSize("tokens", st.tokens.Cache().Len())
			st.metrics.SetCacheSize("prices", st.prices.Cache().Len())
		}
		go func() {
			if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("refresh stopped", zap.Error(err))
			}
		}()
	}

	logger.Info("desk serve start",
		zap.String("listen", cfg.Listen),
		zap.Strings("dexes", agg.DEXes()),
		zap.Bool("postgres", cfg.PGDSN != ""),
		zap.Duration("refresh_interval", cfg.RefreshInterval),
		zap.String("trace", traceExporter),
	)

	return srv.Serve(ctx, cfg.Listen, cfg.ShutdownTimeout)
}

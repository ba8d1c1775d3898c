package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"suiLiquidity/internal/config"
	"suiLiquidity/internal/format"
	"suiLiquidity/internal/model"
	"suiLiquidity/internal/storage/postgres"
)

func runToken(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadToken(cfgFile, cmd.Flags())
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

	tokens, err := st.tokens.ResolveMany(ctx, args)
	if err != nil {
		return err
	}
	quotes, err := st.prices.Prices(ctx, args)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COIN TYPE\tSYMBOL\tNAME\tDECIMALS\tPRICE\tSOURCES")
	resolved := make([]model.TokenMetadata, 0, len(tokens))
	for _, coinType := range args {
		meta, ok := tokens[coinType]
		if !ok {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\tinvalid\n", coinType)
			continue
		}
		priceText := "-"
		if q, ok := quotes[coinType]; ok {
			priceText = format.USD(q.PriceUSD)
			p, _ := q.PriceUSD.Float64()
			meta.PriceUSD = &p
		}
		resolved = append(resolved, meta)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%v\n", format.ShortAddress(meta.Address), meta.Symbol, meta.Name, meta.Decimals, priceText, meta.Sources)
	}
	tw.Flush()

	if cfg.PGDSN == "" {
		return nil
	}
	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	if err := store.UpsertTokens(ctx, resolved); err != nil {
		return fmt.Errorf("store tokens: %w", err)
	}
	logger.Info("tokens stored", zap.Int("count", len(resolved)))
	return nil
}

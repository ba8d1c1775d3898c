package main

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"suiLiquidity/internal/dex"
)

var supportedDEXes = strings.Join(dex.Supported(), ", ")

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		os.Stderr.WriteString("load .env: " + err.Error() + "\n")
	}

	root := &cobra.Command{
		Use:          "desk",
		Short:        "Sui liquidity desk: pools, tokens, portfolio and deposit previews",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE:  runServe,
	}
	addProviderFlags(serveCmd.Flags())
	serveCmd.Flags().String("listen", ":8080", "listen address")
	serveCmd.Flags().StringSlice("dex", []string{"cetus"}, "dexes to serve ("+supportedDEXes+")")
	serveCmd.Flags().Int("pool-limit", 200, "maximum pools listed from the cetus stats API")
	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN for snapshots and portfolio state")
	serveCmd.Flags().String("state-file", "./data/portfolio_state.json", "portfolio state file when no Postgres DSN is set")
	serveCmd.Flags().Duration("refresh-interval", 0, "background pool refresh interval, 0 disables")
	serveCmd.Flags().Bool("hide-dust", true, "hide holdings worth less than --dust-usd")
	serveCmd.Flags().String("dust-usd", "0.01", "dust threshold in USD")
	serveCmd.Flags().Bool("include-unpriced", true, "keep holdings without a USD price")
	serveCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	serveCmd.Flags().String("trace", "none", "trace exporter (none, console, otlp-http, otlp-grpc)")
	root.AddCommand(serveCmd)

	poolsCmd := &cobra.Command{
		Use:   "pools",
		Short: "Fetch pool lists once, or refresh them into a sink with --watch",
		RunE:  runPools,
	}
	addProviderFlags(poolsCmd.Flags())
	poolsCmd.Flags().StringSlice("dex", []string{"cetus"}, "dexes to fetch ("+supportedDEXes+")")
	poolsCmd.Flags().Int("pool-limit", 200, "maximum pools listed from the cetus stats API")
	poolsCmd.Flags().Bool("watch", false, "keep refreshing on --interval")
	poolsCmd.Flags().Duration("interval", 30*time.Second, "refresh interval for --watch")
	poolsCmd.Flags().String("out", "", "JSONL snapshot output path")
	poolsCmd.Flags().String("pg-dsn", "", "Postgres DSN for snapshots")
	poolsCmd.Flags().Int("max-retries", 3, "maximum retry attempts")
	poolsCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	poolsCmd.Flags().Bool("skip-unchanged", true, "skip snapshots of pools that did not change")
	root.AddCommand(poolsCmd)

	tickCmd := &cobra.Command{
		Use:   "tick-range",
		Short: "Quote a tick range and its price bounds",
		RunE:  runTickRange,
	}
	tickCmd.Flags().Int32("tick-spacing", 60, "pool tick spacing")
	tickCmd.Flags().Int32("current-tick", 0, "pool current tick")
	tickCmd.Flags().Uint8("decimals-a", 9, "token A decimals")
	tickCmd.Flags().Uint8("decimals-b", 9, "token B decimals")
	tickCmd.Flags().Float64("usd-a", 0, "token A USD price for orientation")
	tickCmd.Flags().Float64("usd-b", 0, "token B USD price for orientation")
	tickCmd.Flags().Int32("lower", 0, "lower tick")
	tickCmd.Flags().Int32("upper", 0, "upper tick")
	tickCmd.Flags().Float64("min-price", 0, "minimum price (token B per token A)")
	tickCmd.Flags().Float64("max-price", 0, "maximum price (token B per token A)")
	tickCmd.Flags().Bool("full", false, "quote the full range")
	root.AddCommand(tickCmd)

	tokenCmd := &cobra.Command{
		Use:   "token <coin-type>...",
		Short: "Resolve token metadata and USD prices",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runToken,
	}
	addProviderFlags(tokenCmd.Flags())
	tokenCmd.Flags().String("pg-dsn", "", "Postgres DSN to persist resolved tokens")
	root.AddCommand(tokenCmd)

	depositCmd := &cobra.Command{
		Use:   "deposit-preview",
		Short: "Validate a deposit and print the request it would submit",
		RunE:  runDepositPreview,
	}
	addProviderFlags(depositCmd.Flags())
	depositCmd.Flags().String("dex", "cetus", "dex of the pool ("+supportedDEXes+")")
	depositCmd.Flags().String("pool", "", "pool object id")
	depositCmd.Flags().String("amount-a", "", "token A amount")
	depositCmd.Flags().String("amount-b", "", "token B amount")
	depositCmd.Flags().Float64("slippage", 0.5, "slippage tolerance in percent")
	depositCmd.Flags().Int32("lower", 0, "lower tick")
	depositCmd.Flags().Int32("upper", 0, "upper tick")
	depositCmd.Flags().Bool("full", false, "use the full range")
	depositCmd.Flags().Bool("one-sided", false, "deposit a single token")
	depositCmd.Flags().String("vault", "", "vault id to deposit into")
	root.AddCommand(depositCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addProviderFlags(flags *pflag.FlagSet) {
	flags.String("rpc", "https://fullnode.mainnet.sui.io:443", "Sui JSON-RPC URL")
	flags.String("blockvision-url", "https://api.blockvision.org/v2/sui", "BlockVision API base URL")
	flags.String("blockvision-key", "", "BlockVision API key")
	flags.String("birdeye-url", "https://public-api.birdeye.so", "Birdeye API base URL")
	flags.String("birdeye-key", "", "Birdeye API key")
	flags.String("cetus-url", "https://api-sui.cetus.zone", "Cetus API base URL")
	flags.Duration("request-timeout", 10*time.Second, "upstream request timeout")
	flags.Float64("rate-limit", 5, "upstream requests per second per provider, 0 disables")
	flags.Duration("price-ttl", time.Minute, "price cache lifetime")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

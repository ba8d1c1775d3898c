// Package refresh periodically snapshots pool lists into storage.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"suiLiquidity/internal/metrics"
	"suiLiquidity/internal/model"
	"suiLiquidity/internal/pools"
	"suiLiquidity/internal/storage"
)

// RunConfig holds runtime settings for the refresher.
type RunConfig struct {
	DEXes        []string
	Interval     time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// SkipUnchanged drops snapshots whose tick and liquidity match the last
	// one written for the same pool.
	SkipUnchanged bool
}

// PoolLoader loads the pool list of one DEX.
type PoolLoader interface {
	Load(ctx context.Context, dex string) ([]model.PoolInfo, error)
}

// Runner loads pools on an interval and writes snapshots to storage.
type Runner struct {
	cfg     RunConfig
	loader  PoolLoader
	storage storage.Storage
	metrics *metrics.Metrics
	logger  *zap.Logger
	seen    map[string]string
	now     func() time.Time
	// OnPools, when set, receives every successful load.
	OnPools func(dex string, list []model.PoolInfo)
}

// NewRunner builds a Runner with its dependencies. storageSink may be nil
// for a display-only refresh.
func NewRunner(cfg RunConfig, loader PoolLoader, storageSink storage.Storage, m *metrics.Metrics, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:     cfg,
		loader:  loader,
		storage: storageSink,
		metrics: m,
		logger:  logger,
		seen:    make(map[string]string),
		now:     time.Now,
	}
}

// Run refreshes immediately and then on every interval until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.validate(); err != nil {
		return err
	}
	if r.cfg.Interval <= 0 {
		return fmt.Errorf("refresh interval must be greater than zero")
	}

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := r.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Warn("refresh cycle incomplete", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce refreshes every configured DEX once. A failing DEX does not stop
// the others; their errors are joined.
func (r *Runner) RunOnce(ctx context.Context) error {
	if err := r.validate(); err != nil {
		return err
	}

	var errs []error
	for _, dex := range r.cfg.DEXes {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := r.refreshDEX(ctx, dex); err != nil {
			if errors.Is(err, pools.ErrSuperseded) {
				continue
			}
			r.metrics.IncRefreshError()
			errs = append(errs, fmt.Errorf("%s: %w", dex, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Runner) validate() error {
	if r.loader == nil {
		return fmt.Errorf("pool loader is nil")
	}
	if len(r.cfg.DEXes) == 0 {
		return fmt.Errorf("at least one dex is required")
	}
	return nil
}

func (r *Runner) refreshDEX(ctx context.Context, dex string) error {
	r.logger.Info("refresh pools", zap.String("dex", dex))

	var (
		list       []model.PoolInfo
		superseded bool
	)
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		list, err = r.loader.Load(ctx, dex)
		if errors.Is(err, pools.ErrSuperseded) {
			superseded = true
			return nil
		}
		if err != nil {
			r.logger.Warn("load pools failed", zap.String("dex", dex), zap.Error(err))
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("load pools: %w", err)
	}
	if superseded {
		return pools.ErrSuperseded
	}
	if r.OnPools != nil {
		r.OnPools(dex, list)
	}
	if r.storage == nil {
		return nil
	}

	capturedAt := r.now().UTC()
	snaps := make([]model.PoolSnapshot, 0, len(list))
	pending := make(map[string]string, len(list))
	for _, p := range list {
		key, fingerprint := poolFingerprint(p)
		if r.cfg.SkipUnchanged && r.seen[key] == fingerprint {
			continue
		}
		pending[key] = fingerprint
		snaps = append(snaps, model.SnapshotFromPool(p, capturedAt))
	}

	err = withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		err := r.storage.PutPoolSnapshots(ctx, snaps)
		if err != nil {
			r.logger.Warn("store snapshots failed", zap.String("dex", dex), zap.Error(err))
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("store snapshots: %w", err)
	}
	for key, fingerprint := range pending {
		r.seen[key] = fingerprint
	}
	r.metrics.AddSnapshots(len(snaps))

	r.logger.Info("refresh complete", zap.String("dex", dex), zap.Int("pools", len(list)), zap.Int("snapshots", len(snaps)))
	return nil
}

// poolFingerprint keys a pool and summarises the fields a snapshot tracks.
// Fingerprints are recorded only after the snapshot is stored.
func poolFingerprint(p model.PoolInfo) (string, string) {
	fingerprint := strings.Join([]string{
		fmt.Sprint(p.CurrentTick),
		p.LiquidityUSD,
		p.Volume24hUSD,
		p.Fees24hUSD,
	}, "|")
	return p.DEX + ":" + p.PoolID, fingerprint
}

package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"suiLiquidity/internal/model"
)

//go:embed schema.sql
var schema string

// Store provides Postgres persistence for snapshots, tokens and desk state.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates missing tables.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// PutPoolSnapshots implements storage.Storage.
func (s *Store) PutPoolSnapshots(ctx context.Context, snaps []model.PoolSnapshot) error {
	return s.UpsertPoolSnapshots(ctx, snaps)
}

// UpsertPoolSnapshots inserts or updates pool snapshots.
func (s *Store) UpsertPoolSnapshots(ctx context.Context, snaps []model.PoolSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snap := range snaps {
		batch.Queue(`
			INSERT INTO pool_snapshots (
				dex, pool_id, captured_at, pair, token_a, token_b, fee_bps, tick_spacing,
				current_tick, current_price, liquidity_usd, volume_24h_usd, fees_24h_usd,
				apr, vault_apy, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,now(),now())
			ON CONFLICT (dex, pool_id, captured_at)
			DO UPDATE SET
				pair = EXCLUDED.pair,
				fee_bps = EXCLUDED.fee_bps,
				tick_spacing = EXCLUDED.tick_spacing,
				current_tick = EXCLUDED.current_tick,
				current_price = EXCLUDED.current_price,
				liquidity_usd = EXCLUDED.liquidity_usd,
				volume_24h_usd = EXCLUDED.volume_24h_usd,
				fees_24h_usd = EXCLUDED.fees_24h_usd,
				apr = EXCLUDED.apr,
				vault_apy = EXCLUDED.vault_apy,
				updated_at = now()
		`,
			snap.DEX,
			snap.PoolID,
			snap.CapturedAt,
			snap.Pair,
			snap.TokenA,
			snap.TokenB,
			snap.FeeBps,
			snap.TickSpacing,
			snap.CurrentTick,
			snap.CurrentPrice,
			numeric(snap.LiquidityUSD),
			numeric(snap.Volume24hUSD),
			numeric(snap.Fees24hUSD),
			snap.APR,
			snap.VaultAPY,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range snaps {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertTokens inserts or updates resolved token metadata.
func (s *Store) UpsertTokens(ctx context.Context, tokens []model.TokenMetadata) error {
	if len(tokens) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, t := range tokens {
		batch.Queue(`
			INSERT INTO tokens (coin_type, symbol, name, decimals, logo_url, price_usd, sources, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,now(),now())
			ON CONFLICT (coin_type)
			DO UPDATE SET
				symbol = EXCLUDED.symbol,
				name = EXCLUDED.name,
				decimals = EXCLUDED.decimals,
				logo_url = EXCLUDED.logo_url,
				price_usd = COALESCE(EXCLUDED.price_usd, tokens.price_usd),
				sources = EXCLUDED.sources,
				updated_at = now()
		`,
			t.Address,
			t.Symbol,
			t.Name,
			int16(t.Decimals),
			t.LogoURL,
			t.PriceUSD,
			t.Sources,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range tokens {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns the stored value for a name.
func (s *Store) LoadState(ctx context.Context, name string) (decimal.Decimal, bool, error) {
	if name == "" {
		return decimal.Zero, false, fmt.Errorf("state name required")
	}
	var value string
	row := s.pool.QueryRow(ctx, `SELECT value::text FROM desk_state WHERE name=$1`, name)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, err
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("parse state %s: %w", name, err)
	}
	return d, true, nil
}

// SaveState upserts the value for a name.
func (s *Store) SaveState(ctx context.Context, name string, value decimal.Decimal) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO desk_state (name, value, updated_at)
		VALUES ($1, $2::numeric, now())
		ON CONFLICT (name) DO UPDATE
		SET value = EXCLUDED.value, updated_at = now()
	`, name, value.String())
	return err
}

// numeric maps "" to "0" so NUMERIC columns accept missing API values.
func numeric(v string) string {
	if v == "" {
		return "0"
	}
	return v
}

package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"suiLiquidity/internal/model"
)

// JsonlStorage writes pool snapshots to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

type snapshotLine struct {
	DEX          string  `json:"dex"`
	PoolID       string  `json:"pool_id"`
	Pair         string  `json:"pair"`
	TokenA       string  `json:"token_a"`
	TokenB       string  `json:"token_b"`
	FeeBps       int     `json:"fee_bps"`
	TickSpacing  int32   `json:"tick_spacing"`
	CurrentTick  int32   `json:"current_tick"`
	CurrentPrice float64 `json:"current_price"`
	LiquidityUSD string  `json:"liquidity_usd"`
	Volume24hUSD string  `json:"volume_24h_usd"`
	Fees24hUSD   string  `json:"fees_24h_usd"`
	APR          *string `json:"apr,omitempty"`
	VaultAPY     *string `json:"vault_apy,omitempty"`
	CapturedAt   string  `json:"captured_at"`
}

// PutPoolSnapshots appends a batch of snapshots as JSON lines.
func (s *JsonlStorage) PutPoolSnapshots(ctx context.Context, snaps []model.PoolSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, snap := range snaps {
		line, err := json.Marshal(toLine(snap))
		if err != nil {
			return fmt.Errorf("marshal snapshot: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}

func toLine(s model.PoolSnapshot) snapshotLine {
	return snapshotLine{
		DEX:          s.DEX,
		PoolID:       s.PoolID,
		Pair:         s.Pair,
		TokenA:       s.TokenA,
		TokenB:       s.TokenB,
		FeeBps:       s.FeeBps,
		TickSpacing:  s.TickSpacing,
		CurrentTick:  s.CurrentTick,
		CurrentPrice: s.CurrentPrice,
		LiquidityUSD: s.LiquidityUSD,
		Volume24hUSD: s.Volume24hUSD,
		Fees24hUSD:   s.Fees24hUSD,
		APR:          s.APR,
		VaultAPY:     s.VaultAPY,
		CapturedAt:   s.CapturedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

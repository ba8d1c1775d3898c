package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"suiLiquidity/internal/model"
)

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "snapshots.jsonl")
	s := NewJsonlStorage(path)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	apr := "18.25"

	batch := []model.PoolSnapshot{
		{DEX: model.DEXCetus, PoolID: "0x1", Pair: "SUI/USDC", APR: &apr, CapturedAt: at},
		{DEX: model.DEXTurbos, PoolID: "0x2", Pair: "SUI/USDT", CapturedAt: at},
	}
	if err := s.PutPoolSnapshots(context.Background(), batch); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := s.PutPoolSnapshots(context.Background(), batch[:1]); err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if err := s.PutPoolSnapshots(context.Background(), nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var lines []map[string]interface{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]interface{}
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("bad line %q: %v", sc.Text(), err)
		}
		lines = append(lines, m)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0]["apr"] != "18.25" || lines[0]["captured_at"] != "2024-03-01T12:00:00.000Z" {
		t.Fatalf("unexpected first line: %v", lines[0])
	}
	if _, ok := lines[1]["apr"]; ok {
		t.Fatalf("nil apr should be omitted: %v", lines[1])
	}
}

func TestJsonlStorageCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewJsonlStorage(filepath.Join(t.TempDir(), "x.jsonl"))
	if err := s.PutPoolSnapshots(ctx, []model.PoolSnapshot{{PoolID: "0x1"}}); err == nil {
		t.Fatalf("expected context error")
	}
}

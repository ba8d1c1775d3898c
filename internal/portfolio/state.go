package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// StateStore persists the last known portfolio total per owner.
type StateStore interface {
	Load(ctx context.Context, name string) (decimal.Decimal, bool, error)
	Save(ctx context.Context, name string, value decimal.Decimal) error
}

// FileStateStore stores state in a local JSON file.
type FileStateStore struct {
	Path string

	mu sync.Mutex
}

type stateRecord struct {
	Value     decimal.Decimal `json:"value"`
	UpdatedAt string          `json:"updated_at"`
}

func (s *FileStateStore) Load(ctx context.Context, name string) (decimal.Decimal, bool, error) {
	if s == nil || s.Path == "" {
		return decimal.Zero, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return decimal.Zero, false, err
	}
	rec, ok := records[name]
	if !ok {
		return decimal.Zero, false, nil
	}
	return rec.Value, true, nil
}

func (s *FileStateStore) Save(ctx context.Context, name string, value decimal.Decimal) error {
	if s == nil || s.Path == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}
	records[name] = stateRecord{
		Value:     value,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	dir := filepath.Dir(s.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state tmp: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("rename state: %w", err)
	}
	return nil
}

func (s *FileStateStore) read() (map[string]stateRecord, error) {
	records := make(map[string]stateRecord)
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return records, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	return records, nil
}

// stateBackend is the subset of postgres.Store used by DBStateStore.
type stateBackend interface {
	LoadState(ctx context.Context, name string) (decimal.Decimal, bool, error)
	SaveState(ctx context.Context, name string, value decimal.Decimal) error
}

// DBStateStore stores state in the desk_state table.
type DBStateStore struct {
	Store stateBackend
}

func (s *DBStateStore) Load(ctx context.Context, name string) (decimal.Decimal, bool, error) {
	if s == nil || s.Store == nil {
		return decimal.Zero, false, nil
	}
	return s.Store.LoadState(ctx, name)
}

func (s *DBStateStore) Save(ctx context.Context, name string, value decimal.Decimal) error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.SaveState(ctx, name, value)
}

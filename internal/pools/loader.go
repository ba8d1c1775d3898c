package pools

import (
	"context"
	"errors"
	"sync"

	"suiLiquidity/internal/model"
)

// ErrSuperseded is returned by a load that a newer load replaced. Callers
// drop it silently.
var ErrSuperseded = errors.New("pool load superseded")

// Fetcher builds a pool list for a DEX.
type Fetcher interface {
	Fetch(ctx context.Context, dex string) ([]model.PoolInfo, error)
}

// Loader runs at most one effective load per DEX: starting a load cancels
// the one in flight for the same DEX, and only its result is kept. Loads
// of different DEXes run independently.
type Loader struct {
	fetcher Fetcher

	mu       sync.Mutex
	seq      uint64
	inflight map[string]*pendingLoad
}

type pendingLoad struct {
	seq    uint64
	cancel context.CancelFunc
}

func NewLoader(fetcher Fetcher) *Loader {
	return &Loader{
		fetcher:  fetcher,
		inflight: make(map[string]*pendingLoad),
	}
}

// Load fetches the pools of dex, superseding a load of the same dex in
// flight.
func (l *Loader) Load(ctx context.Context, dex string) ([]model.PoolInfo, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	if prev, ok := l.inflight[dex]; ok {
		prev.cancel()
	}
	l.seq++
	seq := l.seq
	l.inflight[dex] = &pendingLoad{seq: seq, cancel: cancel}
	l.mu.Unlock()

	pools, err := l.fetcher.Fetch(ctx, dex)

	l.mu.Lock()
	defer l.mu.Unlock()
	current, ok := l.inflight[dex]
	if !ok || current.seq != seq {
		return nil, ErrSuperseded
	}
	delete(l.inflight, dex)
	if err != nil {
		return nil, err
	}
	return pools, nil
}

package dex

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"suiLiquidity/internal/chain"
	"suiLiquidity/internal/model"
)

// ObjectFetcher loads objects by id.
type ObjectFetcher interface {
	MultiGetObjects(ctx context.Context, ids []string) (map[string]chain.ObjectData, error)
}

// PoolStateCache caches decoded pool state by pool id.
type PoolStateCache struct {
	mu   sync.RWMutex
	data map[string]model.PoolState
}

func NewPoolStateCache() *PoolStateCache {
	return &PoolStateCache{data: make(map[string]model.PoolState)}
}

func (c *PoolStateCache) Get(poolID string) (model.PoolState, bool) {
	c.mu.RLock()
	state, ok := c.data[poolID]
	c.mu.RUnlock()
	return state, ok
}

func (c *PoolStateCache) Set(poolID string, state model.PoolState) {
	c.mu.Lock()
	c.data[poolID] = state
	c.mu.Unlock()
}

// FetchPoolStates loads and decodes pool objects. Pools that are missing
// or fail to decode are logged and left out; the cache, when set, is
// refreshed with every decoded state.
func FetchPoolStates(ctx context.Context, fetcher ObjectFetcher, dex string, ids []string, cache *PoolStateCache, logger *zap.Logger) (map[string]model.PoolState, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("object fetcher is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	decoder, err := NewPoolDecoder(dex)
	if err != nil {
		return nil, err
	}

	objects, err := fetcher.MultiGetObjects(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch pool objects: %w", err)
	}

	states := make(map[string]model.PoolState, len(objects))
	for _, id := range ids {
		obj, ok := objects[id]
		if !ok {
			logger.Debug("pool object missing", zap.String("dex", dex), zap.String("pool", id))
			continue
		}
		state, err := decoder.Decode(obj)
		if err != nil {
			logger.Warn("pool decode failed", zap.String("dex", dex), zap.String("pool", id), zap.Error(err))
			continue
		}
		states[id] = state
		if cache != nil {
			cache.Set(id, state)
		}
	}
	return states, nil
}

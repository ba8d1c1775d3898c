package token

import (
	"sync"

	"suiLiquidity/internal/model"
)

// Cache holds resolved metadata keyed by canonical address. Entries never
// expire; Invalidate and Clear drop them explicitly.
type Cache struct {
	mu   sync.RWMutex
	data map[string]model.TokenMetadata
}

func NewCache() *Cache {
	return &Cache{data: make(map[string]model.TokenMetadata)}
}

func (c *Cache) Get(coinType string) (model.TokenMetadata, bool) {
	key := MustCanonical(coinType)
	c.mu.RLock()
	meta, ok := c.data[key]
	c.mu.RUnlock()
	return meta, ok
}

func (c *Cache) Set(coinType string, meta model.TokenMetadata) {
	key := MustCanonical(coinType)
	c.mu.Lock()
	c.data[key] = meta
	c.mu.Unlock()
}

func (c *Cache) Invalidate(coinType string) {
	key := MustCanonical(coinType)
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.data = make(map[string]model.TokenMetadata)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

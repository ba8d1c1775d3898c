// Package price looks up USD prices from ordered sources with circuit
// breakers and an explicit cache.
package price

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"suiLiquidity/internal/token"
)

// Quote is a USD price and where it came from.
type Quote struct {
	CoinType  string          `json:"coin_type"`
	PriceUSD  decimal.Decimal `json:"price_usd"`
	Source    string          `json:"source"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Cache stores quotes by canonical address. Writes overwrite. With a zero
// max age entries never expire.
type Cache struct {
	mu     sync.RWMutex
	data   map[string]Quote
	maxAge time.Duration
	now    func() time.Time
}

func NewCache(maxAge time.Duration) *Cache {
	return &Cache{
		data:   make(map[string]Quote),
		maxAge: maxAge,
		now:    time.Now,
	}
}

func (c *Cache) Get(coinType string) (Quote, bool) {
	key := token.MustCanonical(coinType)
	c.mu.RLock()
	q, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return Quote{}, false
	}
	if c.maxAge > 0 && c.now().Sub(q.FetchedAt) > c.maxAge {
		return Quote{}, false
	}
	return q, true
}

func (c *Cache) Set(coinType string, q Quote) {
	key := token.MustCanonical(coinType)
	c.mu.Lock()
	c.data[key] = q
	c.mu.Unlock()
}

func (c *Cache) Invalidate(coinType string) {
	key := token.MustCanonical(coinType)
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.data = make(map[string]Quote)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/rpc"
)

// Client speaks Sui JSON-RPC over the go-ethereum RPC transport.
type Client struct {
	rpcClient *rpc.Client

	mu        sync.RWMutex
	metaCache map[string]CoinMetadata
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return NewClientFromRPC(rpcClient), nil
}

// NewClientFromRPC wraps an existing RPC client.
func NewClientFromRPC(rpcClient *rpc.Client) *Client {
	return &Client{
		rpcClient: rpcClient,
		metaCache: make(map[string]CoinMetadata),
	}
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// CoinMetadata returns coin metadata, using an in-memory cache. Coin
// metadata is immutable once published.
func (c *Client) CoinMetadata(ctx context.Context, coinType string) (CoinMetadata, error) {
	c.mu.RLock()
	meta, ok := c.metaCache[coinType]
	c.mu.RUnlock()
	if ok {
		return meta, nil
	}

	var out *CoinMetadata
	if err := c.rpcClient.CallContext(ctx, &out, "suix_getCoinMetadata", coinType); err != nil {
		return CoinMetadata{}, fmt.Errorf("coin metadata %s: %w", coinType, err)
	}
	if out == nil {
		return CoinMetadata{}, fmt.Errorf("coin metadata %s: %w", coinType, ErrNotFound)
	}

	c.mu.Lock()
	c.metaCache[coinType] = *out
	c.mu.Unlock()

	return *out, nil
}

// AllBalances returns every coin balance owned by owner.
func (c *Client) AllBalances(ctx context.Context, owner string) ([]Balance, error) {
	var out []Balance
	if err := c.rpcClient.CallContext(ctx, &out, "suix_getAllBalances", owner); err != nil {
		return nil, fmt.Errorf("balances %s: %w", owner, err)
	}
	return out, nil
}

// MultiGetObjects fetches objects in batches. Missing objects are skipped;
// the result is keyed by object id.
func (c *Client) MultiGetObjects(ctx context.Context, ids []string) (map[string]ObjectData, error) {
	batches, err := SplitBatches(ids, MaxMultiGetObjects)
	if err != nil {
		return nil, err
	}

	result := make(map[string]ObjectData, len(ids))
	for _, batch := range batches {
		var out []ObjectResponse
		if err := c.rpcClient.CallContext(ctx, &out, "sui_multiGetObjects", batch, DefaultObjectOptions); err != nil {
			return nil, fmt.Errorf("multi get objects: %w", err)
		}
		for _, resp := range out {
			if resp.Data == nil {
				continue
			}
			result[resp.Data.ObjectID] = *resp.Data
		}
	}
	return result, nil
}

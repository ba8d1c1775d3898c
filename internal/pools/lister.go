package pools

import (
	"context"
	"fmt"
	"time"

	"suiLiquidity/internal/model"
	"suiLiquidity/internal/provider/cetus"
)

// Lister returns the pool list of one DEX. Rows may be partial; the
// aggregator fills the rest from chain state and token metadata.
type Lister interface {
	ListPools(ctx context.Context) ([]model.PoolInfo, error)
}

// CetusLister lists pools from the Cetus stats API.
type CetusLister struct {
	Client *cetus.Client
	Limit  int
	Now    func() time.Time
}

func (l CetusLister) ListPools(ctx context.Context) ([]model.PoolInfo, error) {
	if l.Client == nil {
		return nil, fmt.Errorf("cetus client is nil")
	}
	stats, err := l.Client.Pools(ctx, l.Limit)
	if err != nil {
		return nil, err
	}
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	fetchedAt := now()
	out := make([]model.PoolInfo, 0, len(stats))
	for _, s := range stats {
		out = append(out, s.ToPoolInfo(fetchedAt))
	}
	return out, nil
}

// StaticLister lists a configured set of pool ids for a DEX without a
// stats API.
type StaticLister struct {
	DEX     string
	PoolIDs []string
}

func (l StaticLister) ListPools(context.Context) ([]model.PoolInfo, error) {
	out := make([]model.PoolInfo, 0, len(l.PoolIDs))
	for _, id := range l.PoolIDs {
		out = append(out, model.PoolInfo{DEX: l.DEX, PoolID: id})
	}
	return out, nil
}

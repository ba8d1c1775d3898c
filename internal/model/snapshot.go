package model

import "time"

// PoolSnapshot is the persisted form of a PoolInfo at a point in time.
type PoolSnapshot struct {
	DEX          string
	PoolID       string
	Pair         string
	TokenA       string
	TokenB       string
	FeeBps       int
	TickSpacing  int32
	CurrentTick  int32
	CurrentPrice float64
	LiquidityUSD string
	Volume24hUSD string
	Fees24hUSD   string
	APR          *string
	VaultAPY     *string
	CapturedAt   time.Time
}

// SnapshotFromPool converts a PoolInfo into its storage record.
func SnapshotFromPool(p PoolInfo, capturedAt time.Time) PoolSnapshot {
	return PoolSnapshot{
		DEX:          p.DEX,
		PoolID:       p.PoolID,
		Pair:         p.Pair(),
		TokenA:       p.TokenA.Address,
		TokenB:       p.TokenB.Address,
		FeeBps:       p.FeeBps,
		TickSpacing:  p.TickSpacing,
		CurrentTick:  p.CurrentTick,
		CurrentPrice: p.CurrentPrice,
		LiquidityUSD: p.LiquidityUSD,
		Volume24hUSD: p.Volume24hUSD,
		Fees24hUSD:   p.Fees24hUSD,
		APR:          p.APR,
		VaultAPY:     p.VaultAPY,
		CapturedAt:   capturedAt.UTC(),
	}
}

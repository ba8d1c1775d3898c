package storage

import (
	"context"

	"suiLiquidity/internal/model"
)

// Storage defines a sink for pool snapshots.
type Storage interface {
	PutPoolSnapshots(ctx context.Context, snaps []model.PoolSnapshot) error
}

package model

// TickRange is a liquidity position range. Both bounds are multiples of the
// pool tick spacing when valid.
type TickRange struct {
	Lower     int32 `json:"tick_lower"`
	Upper     int32 `json:"tick_upper"`
	FullRange bool  `json:"full_range"`
}

// DepositRequest is handed to the external transaction builder.
type DepositRequest struct {
	PoolID          string    `json:"pool_id"`
	DEX             string    `json:"dex"`
	AmountA         string    `json:"amount_a"`
	AmountB         string    `json:"amount_b"`
	SlippagePercent float64   `json:"slippage_percent"`
	Range           TickRange `json:"range"`
	Liquidity       string    `json:"liquidity"`
	OneSided        bool      `json:"one_sided"`
	VaultID         string    `json:"vault_id,omitempty"`
}

// WithdrawRequest is handed to the external transaction builder.
type WithdrawRequest struct {
	PoolID          string  `json:"pool_id"`
	PositionID      string  `json:"position_id"`
	Liquidity       string  `json:"liquidity"`
	MinAmountA      string  `json:"min_amount_a"`
	MinAmountB      string  `json:"min_amount_b"`
	SlippagePercent float64 `json:"slippage_percent"`
}

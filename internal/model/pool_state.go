package model

// PoolState captures the on-chain fields of a CLMM pool object.
type PoolState struct {
	PoolID       string `json:"pool_id"`
	CoinTypeA    string `json:"coin_type_a"`
	CoinTypeB    string `json:"coin_type_b"`
	CurrentTick  int32  `json:"current_tick"`
	TickSpacing  int32  `json:"tick_spacing"`
	SqrtPriceX64 string `json:"sqrt_price_x64,omitempty"`
	Liquidity    string `json:"liquidity,omitempty"`
	FeeRate      uint64 `json:"fee_rate"`
}

package model

import "time"

// DEX identifiers for the supported Sui exchanges.
const (
	DEXCetus   = "cetus"
	DEXBluefin = "bluefin"
	DEXTurbos  = "turbos"
	DEXKriya   = "kriya"
)

// PoolToken is one side of a pool pair.
type PoolToken struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	LogoURL  string `json:"logo_url,omitempty"`
}

// PoolInfo is a merged view of a pool built from several API responses.
// It lives for one fetch cycle and is replaced on the next one.
type PoolInfo struct {
	DEX          string    `json:"dex"`
	PoolID       string    `json:"pool_id"`
	TokenA       PoolToken `json:"token_a"`
	TokenB       PoolToken `json:"token_b"`
	FeeBps       int       `json:"fee_bps"`
	TickSpacing  int32     `json:"tick_spacing"`
	CurrentTick  int32     `json:"current_tick"`
	CurrentPrice float64   `json:"current_price"`
	LiquidityUSD string    `json:"liquidity_usd"`
	Volume24hUSD string    `json:"volume_24h_usd"`
	Fees24hUSD   string    `json:"fees_24h_usd"`
	APR          *string   `json:"apr,omitempty"`
	HasVault     bool      `json:"has_vault"`
	VaultID      string    `json:"vault_id,omitempty"`
	VaultAPY     *string   `json:"vault_apy,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Pair returns a display label like "SUI/USDC".
func (p PoolInfo) Pair() string {
	return p.TokenA.Symbol + "/" + p.TokenB.Symbol
}

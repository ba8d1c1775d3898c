package model

// TokenMetadata describes a coin type. Sources records which providers
// contributed to the merged value.
type TokenMetadata struct {
	Address  string   `json:"address"`
	Symbol   string   `json:"symbol"`
	Name     string   `json:"name"`
	Decimals uint8    `json:"decimals"`
	LogoURL  string   `json:"logo_url"`
	PriceUSD *float64 `json:"price_usd,omitempty"`
	Sources  []string `json:"sources,omitempty"`
}

// TokenInfo is a partial answer from one metadata source. Nil or empty
// fields are unknown to that source.
type TokenInfo struct {
	Source   string
	Symbol   string
	Name     string
	Decimals *uint8
	LogoURL  string
	PriceUSD *float64
}

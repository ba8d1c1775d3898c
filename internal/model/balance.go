package model

// CoinBalance is an owner's total balance of one coin type in base units.
type CoinBalance struct {
	CoinType     string `json:"coin_type"`
	TotalBalance string `json:"total_balance"`
	ObjectCount  int    `json:"object_count"`
}

// Package txerror translates wallet and Move abort failures into user
// messages.
package txerror

// Code identifies a known transaction failure.
type Code string

const (
	CodeUserRejected        Code = "USER_REJECTED"
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeInsufficientGas     Code = "INSUFFICIENT_GAS"
	CodeSlippageExceeded    Code = "SLIPPAGE_EXCEEDED"
	CodeInvalidTickRange    Code = "INVALID_TICK_RANGE"
	CodePoolPaused          Code = "POOL_PAUSED"
	CodeObjectVersion       Code = "OBJECT_VERSION_CONFLICT"
	CodeLiquidityZero       Code = "ZERO_LIQUIDITY"
	CodeTimeout             Code = "TIMEOUT"
	CodeUnknown             Code = "UNKNOWN"
)

var messages = map[Code]string{
	CodeUserRejected:        "Transaction was rejected in the wallet.",
	CodeInsufficientBalance: "Insufficient token balance for this transaction.",
	CodeInsufficientGas:     "Insufficient SUI to pay for gas.",
	CodeSlippageExceeded:    "Price moved beyond your slippage tolerance. Try a higher slippage.",
	CodeInvalidTickRange:    "The selected price range is invalid for this pool.",
	CodePoolPaused:          "This pool is currently paused.",
	CodeObjectVersion:       "An object changed while the transaction was pending. Please retry.",
	CodeLiquidityZero:       "The deposit amount is too small to add liquidity.",
	CodeTimeout:             "The transaction timed out waiting for confirmation.",
}

// Message returns the user message for code, or "" for CodeUnknown.
func Message(code Code) string {
	return messages[code]
}

type pattern struct {
	substr string
	code   Code
}

// patterns are matched case-insensitively in order; the first hit wins.
var patterns = []pattern{
	{substr: "user rejected", code: CodeUserRejected},
	{substr: "rejected the request", code: CodeUserRejected},
	{substr: "insufficientcoinbalance", code: CodeInsufficientBalance},
	{substr: "insufficient balance", code: CodeInsufficientBalance},
	{substr: "insufficientgas", code: CodeInsufficientGas},
	{substr: "gasbalancetoolow", code: CodeInsufficientGas},
	{substr: "no valid gas coins", code: CodeInsufficientGas},
	{substr: "slippage", code: CodeSlippageExceeded},
	{substr: "amount_out_below_min", code: CodeSlippageExceeded},
	{substr: "invalidtick", code: CodeInvalidTickRange},
	{substr: "invalid_tick", code: CodeInvalidTickRange},
	{substr: "poolpaused", code: CodePoolPaused},
	{substr: "pool_is_pause", code: CodePoolPaused},
	{substr: "not available for consumption", code: CodeObjectVersion},
	{substr: "objectversionunavailable", code: CodeObjectVersion},
	{substr: "liquidityiszero", code: CodeLiquidityZero},
	{substr: "liquidity_is_zero", code: CodeLiquidityZero},
	{substr: "timeout", code: CodeTimeout},
	{substr: "timed out", code: CodeTimeout},
}

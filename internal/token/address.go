// Package token resolves coin metadata from the chain and metadata APIs.
package token

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const addressHexLen = 64

// CanonicalAddress normalises a Sui address or coin type: the address part
// is lowercased and left-padded to 32 bytes, module and name are kept.
// "0x2::sui::SUI" becomes "0x000…002::sui::SUI".
func CanonicalAddress(coinType string) (string, error) {
	coinType = strings.TrimSpace(coinType)
	addr, rest, hasRest := strings.Cut(coinType, "::")

	hex := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X"))
	if hex == "" || len(hex) > addressHexLen {
		return "", fmt.Errorf("invalid address %q", addr)
	}
	padded := "0x" + strings.Repeat("0", addressHexLen-len(hex)) + hex
	if _, err := hexutil.Decode(padded); err != nil {
		return "", fmt.Errorf("invalid address %q: %w", addr, err)
	}

	if !hasRest {
		return padded, nil
	}
	if strings.Count(rest, "::") != 1 {
		return "", fmt.Errorf("invalid coin type %q", coinType)
	}
	return padded + "::" + rest, nil
}

// MustCanonical is CanonicalAddress for inputs that are already known to be
// well formed; malformed input is returned unchanged.
func MustCanonical(coinType string) string {
	canonical, err := CanonicalAddress(coinType)
	if err != nil {
		return coinType
	}
	return canonical
}

// SymbolFromType returns the struct name of a coin type.
func SymbolFromType(coinType string) string {
	if idx := strings.LastIndex(coinType, "::"); idx >= 0 {
		return coinType[idx+2:]
	}
	return coinType
}

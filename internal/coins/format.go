package coins

import (
	"math/big"
	"strings"
)

// minFractionDigits is the display floor for the fractional part: trimmed
// fractions shorter than this are re-padded with zeros on the right.
const minFractionDigits = 4

// FormatBalance renders a base-unit balance for display. Arithmetic is pure
// big.Int: integer division by 10^decimals yields the whole part, the
// remainder (left-padded to decimals digits) the fraction. This output is
// display-only and never feeds back into balance math.
func FormatBalance(balance *big.Int, decimals int) string {
	if balance == nil {
		return "0"
	}
	if decimals <= 0 {
		return balance.String()
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(balance, scale, new(big.Int))

	fracStr := frac.String()
	if len(fracStr) < decimals {
		fracStr = strings.Repeat("0", decimals-len(fracStr)) + fracStr
	}
	fracStr = strings.TrimRight(fracStr, "0")

	minDigits := minFractionDigits
	if minDigits > decimals {
		minDigits = decimals
	}
	if len(fracStr) < minDigits {
		fracStr = fracStr + strings.Repeat("0", minDigits-len(fracStr))
	}
	if fracStr == "" {
		return whole.String()
	}
	return whole.String() + "." + fracStr
}

// ParseCoinTypeParts extracts the package id and module name from a coin
// type string such as "0x2::sui::SUI".
func ParseCoinTypeParts(coinType string) (packageID, moduleName string) {
	parts := strings.Split(coinType, "::")
	if len(parts) > 0 {
		packageID = parts[0]
	}
	if len(parts) > 1 {
		moduleName = parts[1]
	}
	return packageID, moduleName
}

// DeriveSymbol falls back to the last segment of the coin type when neither
// on-chain metadata nor the curated table know the token.
func DeriveSymbol(coinType string) string {
	parts := strings.Split(coinType, "::")
	return parts[len(parts)-1]
}

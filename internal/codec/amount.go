package codec

import (
	"fmt"
	"math/big"
	"strings"

	sdkmath "cosmossdk.io/math"
)

// EtherDecimals is the wei exponent of one ether.
const EtherDecimals = 18

const maxAmountBits = 256

// EtherSuffix marks an amount string as decimal ether ("1.5eth").
const EtherSuffix = "eth"

// ParseAmount decodes a base-10 base-unit amount. Empty, signed, and
// non-decimal inputs are rejected.
func ParseAmount(s string) (sdkmath.Uint, error) {
	if s == "" {
		return sdkmath.Uint{}, fmt.Errorf("missing amount")
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return sdkmath.Uint{}, fmt.Errorf("invalid amount %q", s)
	}
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return sdkmath.Uint{}, fmt.Errorf("invalid amount %q", s)
	}
	if i.BitLen() > maxAmountBits {
		return sdkmath.Uint{}, fmt.Errorf("amount %q out of range", s)
	}
	return sdkmath.NewUintFromBigInt(i), nil
}

// ParseEther converts a decimal ether string ("1.0", "0.5") to wei.
// Precision beyond 18 decimals is rejected rather than truncated, as are
// values that do not fit in 256 bits of wei.
func ParseEther(s string) (sdkmath.Uint, error) {
	d, err := sdkmath.LegacyNewDecFromStr(strings.TrimSpace(s))
	if err != nil {
		return sdkmath.Uint{}, fmt.Errorf("invalid ether amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return sdkmath.Uint{}, fmt.Errorf("negative ether amount %q", s)
	}
	// LegacyDec carries exactly EtherDecimals fractional digits, so its
	// underlying integer is the wei value.
	wei := d.BigInt()
	if wei.BitLen() > maxAmountBits {
		return sdkmath.Uint{}, fmt.Errorf("ether amount %q out of range", s)
	}
	return sdkmath.NewUintFromBigInt(wei), nil
}

// ParseAmountOrEther accepts either a base-unit integer ("1000") or a
// decimal ether amount with the "eth" suffix ("1.5eth").
func ParseAmountOrEther(s string) (sdkmath.Uint, error) {
	if v, ok := strings.CutSuffix(s, EtherSuffix); ok {
		return ParseEther(v)
	}
	return ParseAmount(s)
}

// MustParseEther is ParseEther for constants and tests.
func MustParseEther(s string) sdkmath.Uint {
	u, err := ParseEther(s)
	if err != nil {
		panic(err)
	}
	return u
}

// FormatEther renders a wei amount as decimal ether with at least one
// fractional digit ("1.0", "0.5", "2.25").
func FormatEther(wei sdkmath.Uint) string {
	d := sdkmath.LegacyNewDecFromBigIntWithPrec(wei.BigInt(), EtherDecimals)
	out := strings.TrimRight(d.String(), "0")
	if strings.HasSuffix(out, ".") {
		out += "0"
	}
	return out
}

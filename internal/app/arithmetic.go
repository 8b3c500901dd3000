package app

import (
	"math/big"

	sdkmath "cosmossdk.io/math"
)

// maxUintBits is the width sdkmath.Uint panics beyond.
const maxUintBits = 256

func addUint64Checked(a uint64, b uint64, field string) (uint64, error) {
	if a > ^uint64(0)-b {
		return 0, ErrOverflow.Wrapf("%s overflows uint64", field)
	}
	return a + b, nil
}

func addUintChecked(a sdkmath.Uint, b sdkmath.Uint, field string) (sdkmath.Uint, error) {
	sum := new(big.Int).Add(a.BigInt(), b.BigInt())
	if sum.BitLen() > maxUintBits {
		return sdkmath.Uint{}, ErrOverflow.Wrapf("%s overflows uint256", field)
	}
	return sdkmath.NewUintFromBigInt(sum), nil
}

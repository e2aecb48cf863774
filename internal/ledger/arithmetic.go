package ledger

import (
	sdkmath "cosmossdk.io/math"

	"onchainwager/internal/types"
)

// BpsDenominator is 100% in basis points.
const BpsDenominator = 10_000

func AddChecked(a, b uint64, field string) (uint64, error) {
	if a > ^uint64(0)-b {
		return 0, types.ErrOverflow.Wrapf("%s overflows uint64", field)
	}
	return a + b, nil
}

func SubChecked(a, b uint64, field string) (uint64, error) {
	if b > a {
		return 0, types.ErrOverflow.Wrapf("%s underflows", field)
	}
	return a - b, nil
}

// SubFloor returns a-b, or 0 when b exceeds a.
func SubFloor(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// MulDiv computes floor(a*b/d) without intermediate overflow.
func MulDiv(a, b, d uint64, field string) (uint64, error) {
	if d == 0 {
		return 0, types.ErrOverflow.Wrapf("%s divides by zero", field)
	}
	q := sdkmath.NewIntFromUint64(a).Mul(sdkmath.NewIntFromUint64(b)).Quo(sdkmath.NewIntFromUint64(d))
	if !q.IsUint64() {
		return 0, types.ErrOverflow.Wrapf("%s overflows uint64", field)
	}
	return q.Uint64(), nil
}

// Bps returns floor(amount*bps/10000).
func Bps(amount uint64, bps uint32) uint64 {
	// bps <= 10000 in every caller.
	v, _ := MulDiv(amount, uint64(bps), BpsDenominator, "bps")
	return v
}

package math

import (
	"errors"
	"math"
)

var ErrOverflowInt64 = errors.New("int64 overflow")
var ErrOverflowUint64 = errors.New("uint64 overflow")

// SafeAddInt64 adds two int64 integers. It returns ErrOverflowInt64 instead of
// wrapping around when the sum leaves the int64 range.
func SafeAddInt64(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, ErrOverflowInt64
	} else if b < 0 && a < math.MinInt64-b {
		return 0, ErrOverflowInt64
	}
	return a + b, nil
}

// SafeMulInt64 multiplies two int64 integers, returning ErrOverflowInt64 if
// the product does not fit.
func SafeMulInt64(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a == math.MinInt64 || b == math.MinInt64 {
		if a == 1 {
			return b, nil
		}
		if b == 1 {
			return a, nil
		}
		return 0, ErrOverflowInt64
	}

	absOfA, absOfB := a, b
	if a < 0 {
		absOfA = -a
	}
	if b < 0 {
		absOfB = -b
	}
	if absOfA > math.MaxInt64/absOfB {
		return 0, ErrOverflowInt64
	}
	return a * b, nil
}

// SafeConvertInt64 converts a uint64 to an int64, failing if it does not fit.
// Chain heights travel as uint64 in IBC and as int64 in Tendermint.
func SafeConvertInt64(a uint64) (int64, error) {
	if a > math.MaxInt64 {
		return 0, ErrOverflowInt64
	}
	return int64(a), nil
}

// SafeConvertUint64 converts an int64 to a uint64, failing on negatives.
func SafeConvertUint64(a int64) (uint64, error) {
	if a < 0 {
		return 0, ErrOverflowUint64
	}
	return uint64(a), nil
}

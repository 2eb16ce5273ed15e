// Package num implements various utility functions regarding numeric types.
package num

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// IsPowerOfTwo returns whether x is a power of two.
// It returns false for zero and negative values.
func IsPowerOfTwo[T constraints.Integer](x T) bool {
	return x > 0 && (x&(x-1)) == 0
}

// Log2 returns floor(log2(x)).
// Panics if x <= 0.
func Log2[T constraints.Integer](x T) int {
	if x <= 0 {
		panic("Log2 of non-positive number")
	}
	return bits.Len64(uint64(x)) - 1
}

// CeilLog2 returns ceil(log2(x)), the number of bits needed to
// enumerate x distinct values. CeilLog2(1) = 0.
// Panics if x <= 0.
func CeilLog2[T constraints.Integer](x T) int {
	if x <= 0 {
		panic("CeilLog2 of non-positive number")
	}
	return bits.Len64(uint64(x - 1))
}

// DivRoundUp returns ceil(x / y).
func DivRoundUp[T constraints.Integer](x, y T) T {
	return (x + y - 1) / y
}

// SaturatingSub returns x - y, or zero if y > x.
func SaturatingSub[T constraints.Integer](x, y T) T {
	if y > x {
		return 0
	}
	return x - y
}

// Abs returns |x|.
func Abs[T constraints.Signed | constraints.Float](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

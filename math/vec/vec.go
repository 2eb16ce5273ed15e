// Package vec implements vector operations acting on slices.
package vec

import (
	"golang.org/x/exp/constraints"
)

// Copy returns a copy of v.
func Copy[T any](v []T) []T {
	if v == nil {
		return nil
	}
	return append(make([]T, 0, len(v)), v...)
}

// CopyAssign copies v0 to vOut.
func CopyAssign[T any](v0, vOut []T) {
	copy(vOut, v0)
}

// Fill fills v with x.
func Fill[T any](v []T, x T) {
	for i := range v {
		v[i] = x
	}
}

// Equals returns if two vectors are equal.
func Equals[T comparable](v0, v1 []T) bool {
	if len(v0) != len(v1) {
		return false
	}
	for i := range v0 {
		if v0[i] != v1[i] {
			return false
		}
	}
	return true
}

// AddAssign computes vOut = v0 + v1, with wraparound.
func AddAssign[T constraints.Integer](v0, v1, vOut []T) {
	for i := range vOut {
		vOut[i] = v0[i] + v1[i]
	}
}

// SubAssign computes vOut = v0 - v1, with wraparound.
func SubAssign[T constraints.Integer](v0, v1, vOut []T) {
	for i := range vOut {
		vOut[i] = v0[i] - v1[i]
	}
}

// NegAssign computes vOut = -v0, with wraparound.
func NegAssign[T constraints.Integer](v0, vOut []T) {
	for i := range vOut {
		vOut[i] = -v0[i]
	}
}

// ScalarMulSubAssign computes vOut -= c * v0, with wraparound.
func ScalarMulSubAssign[T constraints.Integer](v0 []T, c T, vOut []T) {
	for i := range vOut {
		vOut[i] -= c * v0[i]
	}
}

// Dot returns the inner product of v0 and v1, with wraparound.
func Dot[T constraints.Integer](v0, v1 []T) T {
	var res T
	for i := range v0 {
		res += v0[i] * v1[i]
	}
	return res
}

// ScalarMulAddAssign computes vOut += c * v0, with wraparound.
func ScalarMulAddAssign[T constraints.Integer](v0 []T, c T, vOut []T) {
	for i := range vOut {
		vOut[i] += c * v0[i]
	}
}

// Chunk splits v into consecutive windows of length size.
// The last window may be shorter.
func Chunk[T any](v []T, size int) [][]T {
	if size <= 0 {
		panic("chunk size not positive")
	}

	chunks := make([][]T, 0, (len(v)+size-1)/size)
	for i := 0; i < len(v); i += size {
		end := i + size
		if end > len(v) {
			end = len(v)
		}
		chunks = append(chunks, v[i:end:end])
	}
	return chunks
}

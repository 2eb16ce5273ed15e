package tfhe

import (
	"errors"
	"fmt"
	"math"
)

// ErrTorusRange is returned when a value cannot be encoded on the torus.
var ErrTorusRange = errors.New("torus value out of range")

// Torus is an element of the real torus R/Z, discretized to 64 bits.
// The value x represents x / 2^64.
type Torus uint64

// FromUnsigned encodes v in [0, 2^logScale) as v / 2^logScale.
// logScale must be in [1, 63].
func FromUnsigned(v uint64, logScale int) (Torus, error) {
	if logScale < 1 || logScale > 63 {
		return 0, fmt.Errorf("%w: logScale %d not in [1, 63]", ErrTorusRange, logScale)
	}
	if v >= 1<<logScale {
		return 0, fmt.Errorf("%w: %d does not fit in %d bits", ErrTorusRange, v, logScale)
	}
	return Torus(v << (64 - logScale)), nil
}

// MustFromUnsigned is equivalent to FromUnsigned, but panics on error.
func MustFromUnsigned(v uint64, logScale int) Torus {
	t, err := FromUnsigned(v, logScale)
	if err != nil {
		panic(err)
	}
	return t
}

// IntoUnsigned rounds t to the nearest multiple of 1 / 2^logScale,
// and returns it as an integer in [0, 2^logScale).
//
// Panics when logScale is not in [1, 63].
func (t Torus) IntoUnsigned(logScale int) uint64 {
	if logScale < 1 || logScale > 63 {
		panic("logScale not in [1, 63]")
	}
	v := (uint64(t) + 1<<(63-logScale)) >> (64 - logScale)
	return v & (1<<logScale - 1)
}

// FromFloat encodes f in [0, 1) on the torus.
func FromFloat(f float64) (Torus, error) {
	if !(f >= 0 && f < 1) {
		return 0, fmt.Errorf("%w: %v not in [0, 1)", ErrTorusRange, f)
	}
	r := math.Round(f * math.Exp2(64))
	if r >= math.Exp2(64) {
		return 0, nil
	}
	return Torus(r), nil
}

// Float returns t as a real number in [0, 1).
func (t Torus) Float() float64 {
	return float64(t) / math.Exp2(64)
}

// Add returns t + u modulo 1.
func (t Torus) Add(u Torus) Torus {
	return t + u
}

// Sub returns t - u modulo 1.
func (t Torus) Sub(u Torus) Torus {
	return t - u
}

// Distance returns the length of the shorter arc between t and u,
// in units of 2^-64.
func (t Torus) Distance(u Torus) uint64 {
	d0 := uint64(t - u)
	d1 := uint64(u - t)
	return min(d0, d1)
}

// Package poly implements polynomial arithmetic over the 64-bit torus modulo X^N + 1.
package poly

import (
	"github.com/wisardfhe/tfhe-lut/math/num"
	"github.com/wisardfhe/tfhe-lut/math/vec"
)

// LimbBits is the width of a limb used when transforming torus polynomials.
const LimbBits = 16

// LimbCount is the number of limbs a 64-bit torus coefficient is split into.
const LimbCount = 64 / LimbBits

// MinDegree is the minimum degree supported by Evaluator.
const MinDegree = 1 << 2

// MaxDegree is the maximum degree supported by Evaluator.
const MaxDegree = 1 << 16

// MaxProductBits is the largest coefficient size, in bits, of a sum of products
// accumulated in the Fourier domain that the inverse transform still rounds exactly.
const MaxProductBits = 50

// ProductBits bounds the coefficient size, in bits, of a sum of terms products
// between limbs of torus polynomials of degree N and polynomials whose coefficients
// are at most 2^(digitBits-1) in absolute value.
func ProductBits(N, terms, digitBits int) int {
	return num.Log2(N) + num.CeilLog2(terms) + (digitBits - 1) + (LimbBits - 1)
}

// Poly is a polynomial with torus coefficients modulo X^N + 1.
type Poly struct {
	Coeffs []uint64
}

// NewPoly creates a polynomial with degree N with empty coefficients.
//
// Panics when N is not a power of two, or when N < MinDegree or N > MaxDegree.
func NewPoly(N int) Poly {
	checkDegree(N)
	return Poly{Coeffs: make([]uint64, N)}
}

func checkDegree(N int) {
	switch {
	case !num.IsPowerOfTwo(N):
		panic("degree not power of two")
	case N < MinDegree:
		panic("degree smaller than MinDegree")
	case N > MaxDegree:
		panic("degree larger than MaxDegree")
	}
}

// Degree returns the degree of the polynomial.
func (p Poly) Degree() int {
	return len(p.Coeffs)
}

// Copy returns a copy of the polynomial.
func (p Poly) Copy() Poly {
	coeffs := make([]uint64, len(p.Coeffs))
	copy(coeffs, p.Coeffs)
	return Poly{Coeffs: coeffs}
}

// CopyFrom copies p0 to p.
func (p *Poly) CopyFrom(p0 Poly) {
	vec.CopyAssign(p0.Coeffs, p.Coeffs)
}

// Clear clears all the coefficients to zero.
func (p Poly) Clear() {
	for i := range p.Coeffs {
		p.Coeffs[i] = 0
	}
}

// Equals checks if p0 is equal with p.
func (p Poly) Equals(p0 Poly) bool {
	return vec.Equals(p.Coeffs, p0.Coeffs)
}

package tfhe

import (
	"github.com/wisardfhe/tfhe-lut/math/poly"
)

// Decomposer decomposes torus values and polynomials
// into signed digits with respect to a gadget.
//
// Decomposer is not safe for concurrent use.
// Use ShallowCopy to get a safe copy.
type Decomposer struct {
	polyDegree int

	buffer decompositionBuffer
}

// decompositionBuffer contains buffer values for Decomposer.
type decompositionBuffer struct {
	// scalarDecomposed holds the decomposed scalar.
	// Initially has length 64.
	scalarDecomposed []uint64
	// polyDecomposed holds the decomposed polynomial.
	// Initially has length 64.
	polyDecomposed []poly.Poly
}

// NewDecomposer allocates an empty Decomposer for polynomials of degree N.
func NewDecomposer(N int) *Decomposer {
	polyDecomposed := make([]poly.Poly, 64)
	for i := range polyDecomposed {
		polyDecomposed[i] = poly.NewPoly(N)
	}

	return &Decomposer{
		polyDegree: N,
		buffer: decompositionBuffer{
			scalarDecomposed: make([]uint64, 64),
			polyDecomposed:   polyDecomposed,
		},
	}
}

// ShallowCopy returns a shallow copy of this Decomposer.
// Returned Decomposer is safe for concurrent use.
func (d *Decomposer) ShallowCopy() *Decomposer {
	return NewDecomposer(d.polyDegree)
}

// ScalarBuffer returns the scalar buffer of length Level.
func (d *Decomposer) ScalarBuffer(gadgetParams GadgetParameters) []uint64 {
	return d.buffer.scalarDecomposed[:gadgetParams.level]
}

// PolyBuffer returns the polynomial buffer of length Level.
func (d *Decomposer) PolyBuffer(gadgetParams GadgetParameters) []poly.Poly {
	return d.buffer.polyDecomposed[:gadgetParams.level]
}

// DecomposeScalar decomposes x with respect to gadgetParams.
func (d *Decomposer) DecomposeScalar(x uint64, gadgetParams GadgetParameters) []uint64 {
	decomposedOut := make([]uint64, gadgetParams.level)
	d.DecomposeScalarAssign(x, gadgetParams, decomposedOut)
	return decomposedOut
}

// DecomposeScalarAssign decomposes x with respect to gadgetParams and writes it to decomposedOut.
// decomposedOut[i] is a signed digit in [-Base/2, Base/2), stored in two's complement,
// and pairs with the gadget value BaseQ(i).
func (d *Decomposer) DecomposeScalarAssign(x uint64, gadgetParams GadgetParameters, decomposedOut []uint64) {
	baseLog := uint(gadgetParams.baseLog)
	lastBaseQLog := uint(gadgetParams.BaseQLog(gadgetParams.level - 1))
	mask := gadgetParams.base - 1
	half := gadgetParams.base >> 1

	v := x
	if lastBaseQLog > 0 {
		v = (x + 1<<(lastBaseQLog-1)) >> lastBaseQLog
	}

	for i := gadgetParams.level - 1; i >= 0; i-- {
		digit := v & mask
		v >>= baseLog
		if digit >= half {
			digit -= gadgetParams.base
			v++
		}
		decomposedOut[i] = digit
	}
}

// DecomposePoly decomposes p with respect to gadgetParams.
func (d *Decomposer) DecomposePoly(p poly.Poly, gadgetParams GadgetParameters) []poly.Poly {
	decomposedOut := make([]poly.Poly, gadgetParams.level)
	for i := range decomposedOut {
		decomposedOut[i] = poly.NewPoly(d.polyDegree)
	}
	d.DecomposePolyAssign(p, gadgetParams, decomposedOut)
	return decomposedOut
}

// DecomposePolyAssign decomposes p with respect to gadgetParams and writes it to decomposedOut.
func (d *Decomposer) DecomposePolyAssign(p poly.Poly, gadgetParams GadgetParameters, decomposedOut []poly.Poly) {
	digits := d.buffer.scalarDecomposed[:gadgetParams.level]
	for j, c := range p.Coeffs {
		d.DecomposeScalarAssign(c, gadgetParams, digits)
		for i, digit := range digits {
			decomposedOut[i].Coeffs[j] = digit
		}
	}
}

// RecomposeScalar returns sum_i decomposed[i] * BaseQ(i).
func RecomposeScalar(decomposed []uint64, gadgetParams GadgetParameters) uint64 {
	var x uint64
	for i, digit := range decomposed {
		x += digit << gadgetParams.BaseQLog(i)
	}
	return x
}

package poly

import (
	"fmt"
	"math"

	"github.com/wisardfhe/tfhe-lut/math/vec"
	"golang.org/x/sys/cpu"
)

// Evaluator computes polynomial operations over the 64-bit torus modulo X^N + 1.
//
// Evaluator is not safe for concurrent use.
// Use ShallowCopy to get a safe copy.
type Evaluator struct {
	// degree is the degree of polynomials that this evaluator can handle.
	degree int

	fft fftPlan

	// twist holds exp(i pi j / N) for 0 <= j < N/2.
	twist []complex128
	// twistInv holds exp(-i pi j / N) / (N/2) for 0 <= j < N/2.
	twistInv []complex128

	buffer evaluationBuffer
}

// evaluationBuffer contains buffer values for Evaluator.
type evaluationBuffer struct {
	// fv is a scratch vector for inverse transforms.
	fv []complex128
	// fpSmall holds the transform of a small polynomial.
	fpSmall FourierSmallPoly
	// fp holds the transform of a torus polynomial.
	fp FourierPoly
	// fpOut accumulates products.
	fpOut FourierPoly
	// pMono holds the result of a monomial multiplication.
	pMono Poly
}

// NewEvaluator creates a new Evaluator with degree N.
//
// Panics when N is not a power of two, or when N < MinDegree or N > MaxDegree.
func NewEvaluator(N int) *Evaluator {
	checkDegree(N)

	M := N / 2
	twist := make([]complex128, M)
	twistInv := make([]complex128, M)
	for j := 0; j < M; j++ {
		sin, cos := math.Sincos(math.Pi * float64(j) / float64(N))
		twist[j] = complex(cos, sin)
		twistInv[j] = complex(cos/float64(M), -sin/float64(M))
	}

	return &Evaluator{
		degree:   N,
		fft:      newFFTPlan(M),
		twist:    twist,
		twistInv: twistInv,
		buffer:   newEvaluationBuffer(N),
	}
}

// newEvaluationBuffer allocates an empty evaluationBuffer.
func newEvaluationBuffer(N int) evaluationBuffer {
	return evaluationBuffer{
		fv:      make([]complex128, N/2),
		fpSmall: NewFourierSmallPoly(N),
		fp:      NewFourierPoly(N),
		fpOut:   NewFourierPoly(N),
		pMono:   NewPoly(N),
	}
}

// ShallowCopy returns a shallow copy of this Evaluator.
// Returned Evaluator is safe for concurrent use.
func (e *Evaluator) ShallowCopy() *Evaluator {
	return &Evaluator{
		degree:   e.degree,
		fft:      e.fft.shallowCopy(),
		twist:    e.twist,
		twistInv: e.twistInv,
		buffer:   newEvaluationBuffer(e.degree),
	}
}

// Degree returns the degree of polynomials that the evaluator can handle.
func (e *Evaluator) Degree() int {
	return e.degree
}

// NewPoly creates a new polynomial with the same degree as the evaluator.
func (e *Evaluator) NewPoly() Poly {
	return NewPoly(e.degree)
}

// NewFourierPoly creates a new fourier polynomial with the same degree as the evaluator.
func (e *Evaluator) NewFourierPoly() FourierPoly {
	return NewFourierPoly(e.degree)
}

// NewFourierSmallPoly creates a new small fourier polynomial with the same degree as the evaluator.
func (e *Evaluator) NewFourierSmallPoly() FourierSmallPoly {
	return NewFourierSmallPoly(e.degree)
}

// Backend describes the FFT backend this package was built with,
// and the relevant CPU features of the host.
func Backend() string {
	return fmt.Sprintf("fft=%s avx2=%t fma=%t asimd=%t", fftBackend, cpu.X86.HasAVX2, cpu.X86.HasFMA, cpu.ARM64.HasASIMD)
}

// AddPoly returns p0 + p1.
func (e *Evaluator) AddPoly(p0, p1 Poly) Poly {
	pOut := e.NewPoly()
	e.AddPolyAssign(p0, p1, pOut)
	return pOut
}

// AddPolyAssign computes pOut = p0 + p1.
func (e *Evaluator) AddPolyAssign(p0, p1, pOut Poly) {
	vec.AddAssign(p0.Coeffs, p1.Coeffs, pOut.Coeffs)
}

// SubPoly returns p0 - p1.
func (e *Evaluator) SubPoly(p0, p1 Poly) Poly {
	pOut := e.NewPoly()
	e.SubPolyAssign(p0, p1, pOut)
	return pOut
}

// SubPolyAssign computes pOut = p0 - p1.
func (e *Evaluator) SubPolyAssign(p0, p1, pOut Poly) {
	vec.SubAssign(p0.Coeffs, p1.Coeffs, pOut.Coeffs)
}

// NegPoly returns -p0.
func (e *Evaluator) NegPoly(p0 Poly) Poly {
	pOut := e.NewPoly()
	e.NegPolyAssign(p0, pOut)
	return pOut
}

// NegPolyAssign computes pOut = -p0.
func (e *Evaluator) NegPolyAssign(p0, pOut Poly) {
	vec.NegAssign(p0.Coeffs, pOut.Coeffs)
}

// ScalarMulAddPolyAssign computes pOut += c * p0.
func (e *Evaluator) ScalarMulAddPolyAssign(p0 Poly, c uint64, pOut Poly) {
	vec.ScalarMulAddAssign(p0.Coeffs, c, pOut.Coeffs)
}

// MonomialMulPoly returns X^d * p0.
func (e *Evaluator) MonomialMulPoly(p0 Poly, d int) Poly {
	pOut := e.NewPoly()
	e.MonomialMulPolyAssign(p0, d, pOut)
	return pOut
}

// MonomialMulPolyAssign computes pOut = X^d * p0.
// d can be any integer, including negative values.
//
// p0 and pOut may overlap.
func (e *Evaluator) MonomialMulPolyAssign(p0 Poly, d int, pOut Poly) {
	if &p0.Coeffs[0] == &pOut.Coeffs[0] {
		e.monomialMulPolyAssign(p0, d, e.buffer.pMono)
		pOut.CopyFrom(e.buffer.pMono)
		return
	}
	e.monomialMulPolyAssign(p0, d, pOut)
}

// monomialMulPolyAssign computes pOut = X^d * p0.
// p0 and pOut should not overlap.
func (e *Evaluator) monomialMulPolyAssign(p0 Poly, d int, pOut Poly) {
	N := e.degree
	d &= 2*N - 1

	if d < N {
		for j, jj := 0, d; j < N-d; j, jj = j+1, jj+1 {
			pOut.Coeffs[jj] = p0.Coeffs[j]
		}
		for j, jj := N-d, 0; j < N; j, jj = j+1, jj+1 {
			pOut.Coeffs[jj] = -p0.Coeffs[j]
		}
	} else {
		d -= N
		for j, jj := 0, d; j < N-d; j, jj = j+1, jj+1 {
			pOut.Coeffs[jj] = -p0.Coeffs[j]
		}
		for j, jj := N-d, 0; j < N; j, jj = j+1, jj+1 {
			pOut.Coeffs[jj] = p0.Coeffs[j]
		}
	}
}

// MonomialSubOneMulPolyAssign computes pOut = (X^d - 1) * p0.
//
// p0 and pOut may overlap.
func (e *Evaluator) MonomialSubOneMulPolyAssign(p0 Poly, d int, pOut Poly) {
	e.monomialMulPolyAssign(p0, d, e.buffer.pMono)
	e.SubPolyAssign(e.buffer.pMono, p0, pOut)
}

// ClearFourierPoly clears fp.
func (e *Evaluator) ClearFourierPoly(fp FourierPoly) {
	fp.Clear()
}

package poly

import (
	"math"
)

// The negacyclic transform folds a real polynomial of degree N into N/2 complex
// values a[j] + i*a[j+N/2], twists them by exp(i pi j / N), and applies a
// complex FFT of length N/2. This evaluates the polynomial at half of the
// 2N-th roots of unity, which determines it completely since its
// coefficients are real.

// ToFourierPoly transforms a torus polynomial to the Fourier domain.
func (e *Evaluator) ToFourierPoly(p Poly) FourierPoly {
	fpOut := e.NewFourierPoly()
	e.ToFourierPolyAssign(p, fpOut)
	return fpOut
}

// ToFourierPolyAssign transforms a torus polynomial to the Fourier domain and writes it to fpOut.
func (e *Evaluator) ToFourierPolyAssign(p Poly, fpOut FourierPoly) {
	M := e.degree / 2

	for j := 0; j < M; j++ {
		x, y := p.Coeffs[j], p.Coeffs[j+M]
		for q := 0; q < LimbCount; q++ {
			lx := int64(x & (1<<LimbBits - 1))
			x >>= LimbBits
			if lx >= 1<<(LimbBits-1) {
				lx -= 1 << LimbBits
				x++
			}

			ly := int64(y & (1<<LimbBits - 1))
			y >>= LimbBits
			if ly >= 1<<(LimbBits-1) {
				ly -= 1 << LimbBits
				y++
			}

			fpOut.Limbs[q][j] = complex(float64(lx), float64(ly)) * e.twist[j]
		}
	}

	for q := 0; q < LimbCount; q++ {
		e.fft.forward(fpOut.Limbs[q])
	}
}

// ToFourierSmallPoly transforms a polynomial with small signed coefficients to the Fourier domain.
// Coefficients are interpreted as two's complement signed integers.
func (e *Evaluator) ToFourierSmallPoly(p Poly) FourierSmallPoly {
	fpOut := e.NewFourierSmallPoly()
	e.ToFourierSmallPolyAssign(p, fpOut)
	return fpOut
}

// ToFourierSmallPolyAssign transforms a polynomial with small signed coefficients
// to the Fourier domain and writes it to fpOut.
func (e *Evaluator) ToFourierSmallPolyAssign(p Poly, fpOut FourierSmallPoly) {
	M := e.degree / 2
	for j := 0; j < M; j++ {
		fpOut.Coeffs[j] = complex(float64(int64(p.Coeffs[j])), float64(int64(p.Coeffs[j+M]))) * e.twist[j]
	}
	e.fft.forward(fpOut.Coeffs)
}

// ToPoly transforms a fourier polynomial back to a torus polynomial.
func (e *Evaluator) ToPoly(fp FourierPoly) Poly {
	pOut := e.NewPoly()
	e.ToPolyAssign(fp, pOut)
	return pOut
}

// ToPolyAssign transforms a fourier polynomial back to a torus polynomial and writes it to pOut.
func (e *Evaluator) ToPolyAssign(fp FourierPoly, pOut Poly) {
	pOut.Clear()
	e.ToPolyAddAssign(fp, pOut)
}

// ToPolyAddAssign transforms a fourier polynomial back to a torus polynomial and adds it to pOut.
func (e *Evaluator) ToPolyAddAssign(fp FourierPoly, pOut Poly) {
	M := e.degree / 2

	for q := 0; q < LimbCount; q++ {
		copy(e.buffer.fv, fp.Limbs[q])
		e.fft.inverse(e.buffer.fv)

		shift := uint(q * LimbBits)
		for j := 0; j < M; j++ {
			w := e.buffer.fv[j] * e.twistInv[j]
			pOut.Coeffs[j] += uint64(int64(math.Round(real(w)))) << shift
			pOut.Coeffs[j+M] += uint64(int64(math.Round(imag(w)))) << shift
		}
	}
}

// ToPolySubAssign transforms a fourier polynomial back to a torus polynomial and subtracts it from pOut.
func (e *Evaluator) ToPolySubAssign(fp FourierPoly, pOut Poly) {
	M := e.degree / 2

	for q := 0; q < LimbCount; q++ {
		copy(e.buffer.fv, fp.Limbs[q])
		e.fft.inverse(e.buffer.fv)

		shift := uint(q * LimbBits)
		for j := 0; j < M; j++ {
			w := e.buffer.fv[j] * e.twistInv[j]
			pOut.Coeffs[j] -= uint64(int64(math.Round(real(w)))) << shift
			pOut.Coeffs[j+M] -= uint64(int64(math.Round(imag(w)))) << shift
		}
	}
}

// MulFourierPolyAssign computes fpOut = fs * fp.
func (e *Evaluator) MulFourierPolyAssign(fs FourierSmallPoly, fp, fpOut FourierPoly) {
	for q := 0; q < LimbCount; q++ {
		limb, limbOut := fp.Limbs[q], fpOut.Limbs[q]
		for j := range limbOut {
			limbOut[j] = fs.Coeffs[j] * limb[j]
		}
	}
}

// MulAddFourierPolyAssign computes fpOut += fs * fp.
func (e *Evaluator) MulAddFourierPolyAssign(fs FourierSmallPoly, fp, fpOut FourierPoly) {
	for q := 0; q < LimbCount; q++ {
		limb, limbOut := fp.Limbs[q], fpOut.Limbs[q]
		for j := range limbOut {
			limbOut[j] += fs.Coeffs[j] * limb[j]
		}
	}
}

// AddFourierPolyAssign computes fpOut = fp0 + fp1.
func (e *Evaluator) AddFourierPolyAssign(fp0, fp1, fpOut FourierPoly) {
	for q := 0; q < LimbCount; q++ {
		for j := range fpOut.Limbs[q] {
			fpOut.Limbs[q][j] = fp0.Limbs[q][j] + fp1.Limbs[q][j]
		}
	}
}

// MulSmallPoly returns p * s, where s has small signed coefficients.
func (e *Evaluator) MulSmallPoly(p, s Poly) Poly {
	pOut := e.NewPoly()
	e.MulSmallPolyAssign(p, s, pOut)
	return pOut
}

// MulSmallPolyAssign computes pOut = p * s, where s has small signed coefficients.
// The product is exact as long as |s_j| * N < 2^36.
func (e *Evaluator) MulSmallPolyAssign(p, s Poly, pOut Poly) {
	e.ToFourierPolyAssign(p, e.buffer.fp)
	e.ToFourierSmallPolyAssign(s, e.buffer.fpSmall)
	e.MulFourierPolyAssign(e.buffer.fpSmall, e.buffer.fp, e.buffer.fpOut)
	e.ToPolyAssign(e.buffer.fpOut, pOut)
}

// MulSmallPolyAddAssign computes pOut += p * s, where s has small signed coefficients.
func (e *Evaluator) MulSmallPolyAddAssign(p, s Poly, pOut Poly) {
	e.ToFourierPolyAssign(p, e.buffer.fp)
	e.ToFourierSmallPolyAssign(s, e.buffer.fpSmall)
	e.MulFourierPolyAssign(e.buffer.fpSmall, e.buffer.fp, e.buffer.fpOut)
	e.ToPolyAddAssign(e.buffer.fpOut, pOut)
}

// MulFourierSmallPolyAddAssign computes pOut += p * fs, where fs is a transformed small polynomial.
func (e *Evaluator) MulFourierSmallPolyAddAssign(p Poly, fs FourierSmallPoly, pOut Poly) {
	e.ToFourierPolyAssign(p, e.buffer.fp)
	e.MulFourierPolyAssign(fs, e.buffer.fp, e.buffer.fpOut)
	e.ToPolyAddAssign(e.buffer.fpOut, pOut)
}

package poly

// FourierPoly is a torus polynomial in the Fourier domain.
//
// Each coefficient is split into LimbCount balanced limbs of LimbBits bits,
// and every limb polynomial is transformed separately.
// This keeps products with small polynomials exact after the inverse transform,
// as long as their ProductBits stay within MaxProductBits.
type FourierPoly struct {
	// Limbs has length LimbCount, and each limb has length N / 2.
	Limbs [][]complex128
}

// NewFourierPoly creates a FourierPoly of degree N.
//
// Panics when N is not a valid degree.
func NewFourierPoly(N int) FourierPoly {
	checkDegree(N)

	limbs := make([][]complex128, LimbCount)
	for i := range limbs {
		limbs[i] = make([]complex128, N/2)
	}
	return FourierPoly{Limbs: limbs}
}

// Degree returns the degree of the polynomial.
func (p FourierPoly) Degree() int {
	return 2 * len(p.Limbs[0])
}

// Copy returns a copy of the polynomial.
func (p FourierPoly) Copy() FourierPoly {
	limbs := make([][]complex128, len(p.Limbs))
	for i := range limbs {
		limbs[i] = make([]complex128, len(p.Limbs[i]))
		copy(limbs[i], p.Limbs[i])
	}
	return FourierPoly{Limbs: limbs}
}

// CopyFrom copies p0 to p.
func (p *FourierPoly) CopyFrom(p0 FourierPoly) {
	for i := range p.Limbs {
		copy(p.Limbs[i], p0.Limbs[i])
	}
}

// Clear clears all the coefficients to zero.
func (p FourierPoly) Clear() {
	for i := range p.Limbs {
		for j := range p.Limbs[i] {
			p.Limbs[i][j] = 0
		}
	}
}

// FourierSmallPoly is a polynomial with small signed integer coefficients
// in the Fourier domain, such as a gadget digit or a binary key.
type FourierSmallPoly struct {
	// Coeffs has length N / 2.
	Coeffs []complex128
}

// NewFourierSmallPoly creates a FourierSmallPoly of degree N.
//
// Panics when N is not a valid degree.
func NewFourierSmallPoly(N int) FourierSmallPoly {
	checkDegree(N)
	return FourierSmallPoly{Coeffs: make([]complex128, N/2)}
}

// Degree returns the degree of the polynomial.
func (p FourierSmallPoly) Degree() int {
	return 2 * len(p.Coeffs)
}

// Copy returns a copy of the polynomial.
func (p FourierSmallPoly) Copy() FourierSmallPoly {
	coeffs := make([]complex128, len(p.Coeffs))
	copy(coeffs, p.Coeffs)
	return FourierSmallPoly{Coeffs: coeffs}
}

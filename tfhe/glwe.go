package tfhe

import (
	"github.com/wisardfhe/tfhe-lut/math/poly"
)

// GLWECiphertext represents a GLWE ciphertext.
type GLWECiphertext struct {
	// Value[0] = b, Value[1:] = a
	Value []poly.Poly
}

// NewGLWECiphertext allocates an empty GLWECiphertext.
func NewGLWECiphertext(params Parameters) GLWECiphertext {
	return NewGLWECiphertextCustom(params.glweRank, params.polyDegree)
}

// NewGLWECiphertextCustom allocates an empty GLWECiphertext with given rank and degree.
func NewGLWECiphertextCustom(glweRank, polyDegree int) GLWECiphertext {
	ct := make([]poly.Poly, glweRank+1)
	for i := 0; i < glweRank+1; i++ {
		ct[i] = poly.NewPoly(polyDegree)
	}
	return GLWECiphertext{Value: ct}
}

// NewTrivialGLWECiphertext returns the noiseless encryption of p:
// its mask is zero and its body is p itself.
// Its phase equals p under every key.
func NewTrivialGLWECiphertext(params Parameters, p poly.Poly) GLWECiphertext {
	ct := NewGLWECiphertext(params)
	ct.Value[0].CopyFrom(p)
	return ct
}

// NewTrivialGLWEArray returns n noiseless encryptions of zero.
func NewTrivialGLWEArray(params Parameters, n int) []GLWECiphertext {
	cts := make([]GLWECiphertext, n)
	for i := range cts {
		cts[i] = NewGLWECiphertext(params)
	}
	return cts
}

// Rank returns the rank k of ct.
func (ct GLWECiphertext) Rank() int {
	return len(ct.Value) - 1
}

// Degree returns the polynomial degree of ct.
func (ct GLWECiphertext) Degree() int {
	return ct.Value[0].Degree()
}

// Copy returns a copy of the ciphertext.
func (ct GLWECiphertext) Copy() GLWECiphertext {
	ctCopy := make([]poly.Poly, len(ct.Value))
	for i := range ct.Value {
		ctCopy[i] = ct.Value[i].Copy()
	}
	return GLWECiphertext{Value: ctCopy}
}

// CopyFrom copies values from a ciphertext.
func (ct *GLWECiphertext) CopyFrom(ctIn GLWECiphertext) {
	for i := range ct.Value {
		ct.Value[i].CopyFrom(ctIn.Value[i])
	}
}

// Clear clears the ciphertext.
func (ct *GLWECiphertext) Clear() {
	for i := range ct.Value {
		ct.Value[i].Clear()
	}
}

// ToLWECiphertext extracts the LWE ciphertext of the idx-th coefficient of ct.
// The result is encrypted under the LWE view of the GLWE key.
func (ct GLWECiphertext) ToLWECiphertext(idx int) LWECiphertext {
	ctOut := NewLWECiphertextCustom(ct.Rank() * ct.Degree())
	ct.ToLWECiphertextAssign(idx, ctOut)
	return ctOut
}

// ToLWECiphertextAssign extracts the LWE ciphertext of the idx-th coefficient of ct and writes it to ctOut.
//
// Panics when idx is out of range, or when ctOut has the wrong dimension.
func (ct GLWECiphertext) ToLWECiphertextAssign(idx int, ctOut LWECiphertext) {
	N := ct.Degree()
	if idx < 0 || idx >= N {
		panic("extraction index out of range")
	}
	if ctOut.Dimension() != ct.Rank()*N {
		panic("LWE dimension mismatch")
	}

	ctOut.Value[0] = ct.Value[0].Coeffs[idx]

	for i := 0; i < ct.Rank(); i++ {
		a := ct.Value[i+1].Coeffs
		aOut := ctOut.Value[1+i*N : 1+(i+1)*N]
		for j := 0; j <= idx; j++ {
			aOut[j] = a[idx-j]
		}
		for j := idx + 1; j < N; j++ {
			aOut[j] = -a[idx-j+N]
		}
	}
}

// FourierGLWECiphertext is a GLWE ciphertext in the Fourier domain.
type FourierGLWECiphertext struct {
	// Value[0] = b, Value[1:] = a
	Value []poly.FourierPoly
}

// NewFourierGLWECiphertext allocates an empty FourierGLWECiphertext.
func NewFourierGLWECiphertext(params Parameters) FourierGLWECiphertext {
	return NewFourierGLWECiphertextCustom(params.glweRank, params.polyDegree)
}

// NewFourierGLWECiphertextCustom allocates an empty FourierGLWECiphertext with given rank and degree.
func NewFourierGLWECiphertextCustom(glweRank, polyDegree int) FourierGLWECiphertext {
	ct := make([]poly.FourierPoly, glweRank+1)
	for i := 0; i < glweRank+1; i++ {
		ct[i] = poly.NewFourierPoly(polyDegree)
	}
	return FourierGLWECiphertext{Value: ct}
}

// Copy returns a copy of the ciphertext.
func (ct FourierGLWECiphertext) Copy() FourierGLWECiphertext {
	ctCopy := make([]poly.FourierPoly, len(ct.Value))
	for i := range ct.Value {
		ctCopy[i] = ct.Value[i].Copy()
	}
	return FourierGLWECiphertext{Value: ctCopy}
}

// Clear clears the ciphertext.
func (ct *FourierGLWECiphertext) Clear() {
	for i := range ct.Value {
		ct.Value[i].Clear()
	}
}

// GLevCiphertext is a leveled GLWE ciphertext, decomposed according to GadgetParameters.
type GLevCiphertext struct {
	GadgetParameters GadgetParameters

	// Value has length Level.
	Value []GLWECiphertext
}

// NewGLevCiphertext allocates an empty GLevCiphertext.
func NewGLevCiphertext(params Parameters, gadgetParams GadgetParameters) GLevCiphertext {
	ct := make([]GLWECiphertext, gadgetParams.level)
	for i := 0; i < gadgetParams.level; i++ {
		ct[i] = NewGLWECiphertext(params)
	}
	return GLevCiphertext{Value: ct, GadgetParameters: gadgetParams}
}

// Copy returns a copy of the ciphertext.
func (ct GLevCiphertext) Copy() GLevCiphertext {
	ctCopy := make([]GLWECiphertext, len(ct.Value))
	for i := range ct.Value {
		ctCopy[i] = ct.Value[i].Copy()
	}
	return GLevCiphertext{Value: ctCopy, GadgetParameters: ct.GadgetParameters}
}

// FourierGLevCiphertext is a GLevCiphertext in the Fourier domain.
type FourierGLevCiphertext struct {
	GadgetParameters GadgetParameters

	// Value has length Level.
	Value []FourierGLWECiphertext
}

// NewFourierGLevCiphertext allocates an empty FourierGLevCiphertext.
func NewFourierGLevCiphertext(params Parameters, gadgetParams GadgetParameters) FourierGLevCiphertext {
	ct := make([]FourierGLWECiphertext, gadgetParams.level)
	for i := 0; i < gadgetParams.level; i++ {
		ct[i] = NewFourierGLWECiphertext(params)
	}
	return FourierGLevCiphertext{Value: ct, GadgetParameters: gadgetParams}
}

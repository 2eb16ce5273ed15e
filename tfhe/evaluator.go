package tfhe

import (
	"github.com/wisardfhe/tfhe-lut/math/poly"
	"github.com/wisardfhe/tfhe-lut/math/vec"
)

// Evaluator evaluates homomorphic operations on ciphertexts.
// All ciphertexts consumed together must share the shape given by Parameters;
// a mismatch is a programming error and panics.
//
// Evaluator is not safe for concurrent use.
// Use ShallowCopy to get a safe copy.
type Evaluator struct {
	// Parameters holds the parameters for this Evaluator.
	Parameters Parameters

	// PolyEvaluator holds the PolyEvaluator for this Evaluator.
	PolyEvaluator *poly.Evaluator
	// Decomposer holds the Decomposer for this Evaluator.
	Decomposer *Decomposer

	// EvaluationKey holds the evaluation key for this Evaluator.
	EvaluationKey EvaluationKey
	// FourierPackingKeySwitchKey is the Fourier transform of
	// the packing key switching key, computed once at construction.
	FourierPackingKeySwitchKey []FourierGLevCiphertext

	buffer evaluationBuffer
}

// evaluationBuffer contains buffer values for Evaluator.
type evaluationBuffer struct {
	// ctFourierAcc accumulates products in the Fourier domain.
	ctFourierAcc FourierGLWECiphertext
	// fDigit holds the transform of a decomposed digit polynomial.
	fDigit poly.FourierSmallPoly

	// ctGate holds the intermediate value of gates.
	ctGate GLWECiphertext
	// ctRotate holds the rotated accumulator in blind rotation.
	ctRotate GLWECiphertext

	// pBody holds the packed bodies in packing key switching.
	pBody poly.Poly
	// pDigits holds the packed digit polynomials in packing key switching.
	pDigits []poly.Poly
	// scalarDecomposed holds the digits of one mask coefficient.
	scalarDecomposed []uint64
}

// NewEvaluator creates a new Evaluator based on parameters.
// This does not copy evaluation keys, since they are large.
func NewEvaluator(params Parameters, evk EvaluationKey) *Evaluator {
	pe := poly.NewEvaluator(params.polyDegree)

	fpksk := make([]FourierGLevCiphertext, len(evk.PackingKeySwitchKey.Value))
	for i, glev := range evk.PackingKeySwitchKey.Value {
		fpksk[i] = NewFourierGLevCiphertext(params, glev.GadgetParameters)
		for j := range glev.Value {
			toFourierGLWECiphertextAssign(pe, glev.Value[j], fpksk[i].Value[j])
		}
	}

	return &Evaluator{
		Parameters: params,

		PolyEvaluator: pe,
		Decomposer:    NewDecomposer(params.polyDegree),

		EvaluationKey:              evk,
		FourierPackingKeySwitchKey: fpksk,

		buffer: newEvaluationBuffer(params),
	}
}

// NewEvaluatorWithoutKey creates a new Evaluator based on parameters,
// without any evaluation keys.
// Gates, trees and blind rotations work; key switching panics.
func NewEvaluatorWithoutKey(params Parameters) *Evaluator {
	return NewEvaluator(params, EvaluationKey{})
}

// newEvaluationBuffer allocates an empty evaluationBuffer.
func newEvaluationBuffer(params Parameters) evaluationBuffer {
	pDigits := make([]poly.Poly, params.packingKeySwitchParameters.level)
	for i := range pDigits {
		pDigits[i] = poly.NewPoly(params.polyDegree)
	}

	return evaluationBuffer{
		ctFourierAcc: NewFourierGLWECiphertext(params),
		fDigit:       poly.NewFourierSmallPoly(params.polyDegree),

		ctGate:   NewGLWECiphertext(params),
		ctRotate: NewGLWECiphertext(params),

		pBody:            poly.NewPoly(params.polyDegree),
		pDigits:          pDigits,
		scalarDecomposed: make([]uint64, 64),
	}
}

// ShallowCopy returns a shallow copy of this Evaluator.
// Returned Evaluator is safe for concurrent use.
// Keys are shared, buffers are not.
func (e *Evaluator) ShallowCopy() *Evaluator {
	return &Evaluator{
		Parameters: e.Parameters,

		PolyEvaluator: e.PolyEvaluator.ShallowCopy(),
		Decomposer:    e.Decomposer.ShallowCopy(),

		EvaluationKey:              e.EvaluationKey,
		FourierPackingKeySwitchKey: e.FourierPackingKeySwitchKey,

		buffer: newEvaluationBuffer(e.Parameters),
	}
}

// checkGLWE panics if ct does not have the shape of the parameters.
func (e *Evaluator) checkGLWE(ct GLWECiphertext) {
	if ct.Rank() != e.Parameters.glweRank || ct.Degree() != e.Parameters.polyDegree {
		panic("GLWE ciphertext shape mismatch")
	}
}

// checkGGSW panics if ct does not have the shape of the parameters.
func (e *Evaluator) checkGGSW(ct FourierGGSWCiphertext) {
	if len(ct.Value) != e.Parameters.glweRank+1 || ct.Value[0].Value[0].Value[0].Degree() != e.Parameters.polyDegree {
		panic("GGSW ciphertext shape mismatch")
	}
}

// AddGLWE returns ct0 + ct1.
func (e *Evaluator) AddGLWE(ct0, ct1 GLWECiphertext) GLWECiphertext {
	ctOut := NewGLWECiphertext(e.Parameters)
	e.AddGLWEAssign(ct0, ct1, ctOut)
	return ctOut
}

// AddGLWEAssign computes ctOut = ct0 + ct1.
func (e *Evaluator) AddGLWEAssign(ct0, ct1, ctOut GLWECiphertext) {
	e.checkGLWE(ct0)
	e.checkGLWE(ct1)
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.AddPolyAssign(ct0.Value[i], ct1.Value[i], ctOut.Value[i])
	}
}

// SubGLWE returns ct0 - ct1.
func (e *Evaluator) SubGLWE(ct0, ct1 GLWECiphertext) GLWECiphertext {
	ctOut := NewGLWECiphertext(e.Parameters)
	e.SubGLWEAssign(ct0, ct1, ctOut)
	return ctOut
}

// SubGLWEAssign computes ctOut = ct0 - ct1.
func (e *Evaluator) SubGLWEAssign(ct0, ct1, ctOut GLWECiphertext) {
	e.checkGLWE(ct0)
	e.checkGLWE(ct1)
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.SubPolyAssign(ct0.Value[i], ct1.Value[i], ctOut.Value[i])
	}
}

// NegGLWE returns -ct0.
func (e *Evaluator) NegGLWE(ct0 GLWECiphertext) GLWECiphertext {
	ctOut := NewGLWECiphertext(e.Parameters)
	e.NegGLWEAssign(ct0, ctOut)
	return ctOut
}

// NegGLWEAssign computes ctOut = -ct0.
func (e *Evaluator) NegGLWEAssign(ct0, ctOut GLWECiphertext) {
	e.checkGLWE(ct0)
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.NegPolyAssign(ct0.Value[i], ctOut.Value[i])
	}
}

// MonomialMulGLWE returns X^d * ct0.
func (e *Evaluator) MonomialMulGLWE(ct0 GLWECiphertext, d int) GLWECiphertext {
	ctOut := NewGLWECiphertext(e.Parameters)
	e.MonomialMulGLWEAssign(ct0, d, ctOut)
	return ctOut
}

// MonomialMulGLWEAssign computes ctOut = X^d * ct0.
// ct0 and ctOut may overlap.
func (e *Evaluator) MonomialMulGLWEAssign(ct0 GLWECiphertext, d int, ctOut GLWECiphertext) {
	e.checkGLWE(ct0)
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.MonomialMulPolyAssign(ct0.Value[i], d, ctOut.Value[i])
	}
}

// MonomialSubOneMulGLWEAssign computes ctOut = (X^d - 1) * ct0.
// ct0 and ctOut may overlap.
func (e *Evaluator) MonomialSubOneMulGLWEAssign(ct0 GLWECiphertext, d int, ctOut GLWECiphertext) {
	e.checkGLWE(ct0)
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.PolyEvaluator.MonomialSubOneMulPolyAssign(ct0.Value[i], d, ctOut.Value[i])
	}
}

// ToFourierGLWECiphertext transforms ct to the Fourier domain.
func (e *Evaluator) ToFourierGLWECiphertext(ct GLWECiphertext) FourierGLWECiphertext {
	ctOut := NewFourierGLWECiphertext(e.Parameters)
	e.ToFourierGLWECiphertextAssign(ct, ctOut)
	return ctOut
}

// ToFourierGLWECiphertextAssign transforms ct to the Fourier domain and writes it to ctOut.
func (e *Evaluator) ToFourierGLWECiphertextAssign(ct GLWECiphertext, ctOut FourierGLWECiphertext) {
	toFourierGLWECiphertextAssign(e.PolyEvaluator, ct, ctOut)
}

// ToGLWECiphertext transforms a Fourier GLWE ciphertext back to the standard domain.
func (e *Evaluator) ToGLWECiphertext(ct FourierGLWECiphertext) GLWECiphertext {
	ctOut := NewGLWECiphertext(e.Parameters)
	e.ToGLWECiphertextAssign(ct, ctOut)
	return ctOut
}

// ToGLWECiphertextAssign transforms a Fourier GLWE ciphertext back to the standard domain and writes it to ctOut.
func (e *Evaluator) ToGLWECiphertextAssign(ct FourierGLWECiphertext, ctOut GLWECiphertext) {
	for i := range ct.Value {
		e.PolyEvaluator.ToPolyAssign(ct.Value[i], ctOut.Value[i])
	}
}

// ToFourierGGSWCiphertext transforms ct to the Fourier domain.
func (e *Evaluator) ToFourierGGSWCiphertext(ct GGSWCiphertext) FourierGGSWCiphertext {
	ctOut := NewFourierGGSWCiphertext(e.Parameters, ct.GadgetParameters)
	toFourierGGSWCiphertextAssign(e.PolyEvaluator, ct, ctOut)
	return ctOut
}

// externalProductFourierAssign computes ctGGSW * ctGLWE and writes it to
// e.buffer.ctFourierAcc.
func (e *Evaluator) externalProductFourierAssign(ctGGSW FourierGGSWCiphertext, ctGLWE GLWECiphertext) {
	e.checkGGSW(ctGGSW)
	e.checkGLWE(ctGLWE)

	gadgetParams := ctGGSW.GadgetParameters
	polyDecomposed := e.Decomposer.PolyBuffer(gadgetParams)

	e.buffer.ctFourierAcc.Clear()
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		e.Decomposer.DecomposePolyAssign(ctGLWE.Value[i], gadgetParams, polyDecomposed)
		for j := 0; j < gadgetParams.level; j++ {
			e.PolyEvaluator.ToFourierSmallPolyAssign(polyDecomposed[j], e.buffer.fDigit)
			row := ctGGSW.Value[i].Value[j]
			for c := 0; c < e.Parameters.glweRank+1; c++ {
				e.PolyEvaluator.MulAddFourierPolyAssign(e.buffer.fDigit, row.Value[c], e.buffer.ctFourierAcc.Value[c])
			}
		}
	}
}

// ExternalProduct returns ctGGSW * ctGLWE.
func (e *Evaluator) ExternalProduct(ctGGSW FourierGGSWCiphertext, ctGLWE GLWECiphertext) GLWECiphertext {
	ctOut := NewGLWECiphertext(e.Parameters)
	e.ExternalProductAssign(ctGGSW, ctGLWE, ctOut)
	return ctOut
}

// ExternalProductAssign computes ctOut = ctGGSW * ctGLWE.
// ctGLWE and ctOut may overlap.
func (e *Evaluator) ExternalProductAssign(ctGGSW FourierGGSWCiphertext, ctGLWE, ctOut GLWECiphertext) {
	e.externalProductFourierAssign(ctGGSW, ctGLWE)
	for c := 0; c < e.Parameters.glweRank+1; c++ {
		e.PolyEvaluator.ToPolyAssign(e.buffer.ctFourierAcc.Value[c], ctOut.Value[c])
	}
}

// ExternalProductAddAssign computes ctOut += ctGGSW * ctGLWE.
// ctGLWE and ctOut may overlap.
func (e *Evaluator) ExternalProductAddAssign(ctGGSW FourierGGSWCiphertext, ctGLWE, ctOut GLWECiphertext) {
	e.externalProductFourierAssign(ctGGSW, ctGLWE)
	for c := 0; c < e.Parameters.glweRank+1; c++ {
		e.PolyEvaluator.ToPolyAddAssign(e.buffer.ctFourierAcc.Value[c], ctOut.Value[c])
	}
}

// AddLWE returns ct0 + ct1.
func (e *Evaluator) AddLWE(ct0, ct1 LWECiphertext) LWECiphertext {
	ctOut := NewLWECiphertextCustom(ct0.Dimension())
	e.AddLWEAssign(ct0, ct1, ctOut)
	return ctOut
}

// AddLWEAssign computes ctOut = ct0 + ct1.
func (e *Evaluator) AddLWEAssign(ct0, ct1, ctOut LWECiphertext) {
	if ct0.Dimension() != ct1.Dimension() || ct0.Dimension() != ctOut.Dimension() {
		panic("LWE dimension mismatch")
	}
	vec.AddAssign(ct0.Value, ct1.Value, ctOut.Value)
}

// SubLWE returns ct0 - ct1.
func (e *Evaluator) SubLWE(ct0, ct1 LWECiphertext) LWECiphertext {
	ctOut := NewLWECiphertextCustom(ct0.Dimension())
	e.SubLWEAssign(ct0, ct1, ctOut)
	return ctOut
}

// SubLWEAssign computes ctOut = ct0 - ct1.
func (e *Evaluator) SubLWEAssign(ct0, ct1, ctOut LWECiphertext) {
	if ct0.Dimension() != ct1.Dimension() || ct0.Dimension() != ctOut.Dimension() {
		panic("LWE dimension mismatch")
	}
	vec.SubAssign(ct0.Value, ct1.Value, ctOut.Value)
}

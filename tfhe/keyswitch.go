package tfhe

import (
	"github.com/wisardfhe/tfhe-lut/math/vec"
)

// KeySwitch switches the key of ct from LWELargeKey to LWEKey.
func (e *Evaluator) KeySwitch(ct LWECiphertext) LWECiphertext {
	ctOut := NewLWECiphertext(e.Parameters)
	e.KeySwitchAssign(ct, ctOut)
	return ctOut
}

// KeySwitchAssign switches the key of ct from LWELargeKey to LWEKey and writes it to ctOut.
//
// Panics when the evaluator has no KeySwitchKey, or on dimension mismatch.
func (e *Evaluator) KeySwitchAssign(ct, ctOut LWECiphertext) {
	ksk := e.EvaluationKey.KeySwitchKey
	if len(ksk.Value) == 0 {
		panic("KeySwitchKey not set")
	}
	if ct.Dimension() != len(ksk.Value) || ctOut.Dimension() != e.Parameters.lweDimension {
		panic("LWE dimension mismatch")
	}

	gadgetParams := ksk.GadgetParameters
	digits := e.buffer.scalarDecomposed[:gadgetParams.level]

	ctOut.Clear()
	ctOut.Value[0] = ct.Value[0]
	for i := 0; i < ct.Dimension(); i++ {
		e.Decomposer.DecomposeScalarAssign(ct.Value[i+1], gadgetParams, digits)
		for j, d := range digits {
			vec.ScalarMulAddAssign(ksk.Value[i].Value[j].Value, d, ctOut.Value)
		}
	}
}

// PackingKeySwitch packs cts[skip : skip+offset] into a GLWE ciphertext.
func (e *Evaluator) PackingKeySwitch(cts []LWECiphertext, skip, offset int) GLWECiphertext {
	ctOut := NewGLWECiphertext(e.Parameters)
	e.PackingKeySwitchAssign(cts, skip, offset, ctOut)
	return ctOut
}

// PackingKeySwitchAssign packs cts[skip : skip+offset] into a GLWE ciphertext and writes it to ctOut.
// Coefficient p of the result encrypts the message of cts[skip+p],
// and coefficients from offset onwards encrypt zero.
// cts must be encrypted under LWELargeKey, as samples extracted from GLWE ciphertexts are.
//
// Panics when len(cts) < skip+offset, offset > PolyDegree,
// the evaluator has no PackingKeySwitchKey, or on dimension mismatch.
func (e *Evaluator) PackingKeySwitchAssign(cts []LWECiphertext, skip, offset int, ctOut GLWECiphertext) {
	if skip < 0 || offset < 0 || len(cts) < skip+offset {
		panic("packing window out of range")
	}
	if offset > e.Parameters.polyDegree {
		panic("packing offset larger than PolyDegree")
	}
	if len(e.FourierPackingKeySwitchKey) == 0 {
		panic("PackingKeySwitchKey not set")
	}
	e.checkGLWE(ctOut)

	window := cts[skip : skip+offset]
	lweDimension := len(e.FourierPackingKeySwitchKey)
	for _, ct := range window {
		if ct.Dimension() != lweDimension {
			panic("LWE dimension mismatch")
		}
	}

	gadgetParams := e.FourierPackingKeySwitchKey[0].GadgetParameters
	digits := e.buffer.scalarDecomposed[:gadgetParams.level]
	pDigits := e.buffer.pDigits[:gadgetParams.level]

	e.buffer.pBody.Clear()
	for p, ct := range window {
		e.buffer.pBody.Coeffs[p] = ct.Value[0]
	}

	e.buffer.ctFourierAcc.Clear()
	for i := 0; i < lweDimension; i++ {
		for j := range pDigits {
			pDigits[j].Clear()
		}

		for p, ct := range window {
			e.Decomposer.DecomposeScalarAssign(ct.Value[i+1], gadgetParams, digits)
			for j, d := range digits {
				pDigits[j].Coeffs[p] = d
			}
		}

		for j := range pDigits {
			e.PolyEvaluator.ToFourierSmallPolyAssign(pDigits[j], e.buffer.fDigit)
			row := e.FourierPackingKeySwitchKey[i].Value[j]
			for c := 0; c < e.Parameters.glweRank+1; c++ {
				e.PolyEvaluator.MulAddFourierPolyAssign(e.buffer.fDigit, row.Value[c], e.buffer.ctFourierAcc.Value[c])
			}
		}
	}

	for c := 0; c < e.Parameters.glweRank+1; c++ {
		e.PolyEvaluator.ToPolyAssign(e.buffer.ctFourierAcc.Value[c], ctOut.Value[c])
	}
	e.PolyEvaluator.AddPolyAssign(ctOut.Value[0], e.buffer.pBody, ctOut.Value[0])
}

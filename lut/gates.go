package lut

import (
	"github.com/wisardfhe/tfhe-lut/tfhe"
)

// WriteMask returns a one-hot mask over layout.Count polynomials,
// holding one, scaled to countBits bits, at the position of the concatenated address encrypted in bits.
// bits[i] encrypts the i-th least significant bit of the concatenated address.
func WriteMask(eval *tfhe.Evaluator, layout Layout, countBits int, bits []tfhe.FourierGGSWCiphertext) []tfhe.GLWECiphertext {
	maskOut := tfhe.NewTrivialGLWEArray(eval.Parameters, layout.Count)
	WriteMaskAssign(eval, layout, countBits, bits, maskOut)
	return maskOut
}

// WriteMaskAssign computes the one-hot mask of WriteMask and writes it to maskOut.
//
// The mask starts as the noiseless encryption of one at coefficient 0 of polynomial 0.
// The low bits rotate it within the polynomial, and the high bits distribute it across polynomials.
func WriteMaskAssign(eval *tfhe.Evaluator, layout Layout, countBits int, bits []tfhe.FourierGGSWCiphertext, maskOut []tfhe.GLWECiphertext) {
	if len(maskOut) != layout.Count {
		panic("mask length mismatch")
	}
	low, high := layout.SplitTrain(bits)

	for i := range maskOut {
		maskOut[i].Clear()
	}
	maskOut[0].Value[0].Coeffs[0] = uint64(tfhe.MustFromUnsigned(1, countBits))

	eval.BlindRotateLeftInPlace(low, maskOut[0])
	eval.CDemuxTree(high, maskOut)
}

// ReadCounter extracts the counter of the address encrypted in bits under label from slot,
// and writes it to ctOut as an LWE ciphertext under the LWE view of the GLWE key.
// bits[i] encrypts the i-th least significant bit of the address, without label.
// slot is not changed.
func ReadCounter(eval *tfhe.Evaluator, layout Layout, slot []tfhe.GLWECiphertext, label int, bits []tfhe.FourierGGSWCiphertext, ctOut tfhe.LWECiphertext) {
	buf := make([]tfhe.GLWECiphertext, layout.UpperTableSize)
	for i := range buf {
		buf[i] = tfhe.NewGLWECiphertext(eval.Parameters)
	}
	readCounterAssign(eval, layout, slot, label, bits, buf, ctOut)
}

// readCounterAssign is ReadCounter with a caller-owned buffer of UpperTableSize ciphertexts.
func readCounterAssign(eval *tfhe.Evaluator, layout Layout, slot []tfhe.GLWECiphertext, label int, bits []tfhe.FourierGGSWCiphertext, buf []tfhe.GLWECiphertext, ctOut tfhe.LWECiphertext) {
	if len(slot) != layout.Count {
		panic("slot length mismatch")
	}
	if label < 0 || label >= layout.NumLabels {
		panic("label out of range")
	}
	low, high := layout.SplitInfer(bits)

	offset := layout.UpperOffset(label)
	for i := range buf {
		buf[i].CopyFrom(slot[offset+i])
	}

	eval.CMuxTree(high, buf)
	eval.BlindRotateRightInPlace(low, buf[0])
	buf[0].ToLWECiphertextAssign(layout.LowerOffset(label), ctOut)
}

package tfhe

import (
	"github.com/wisardfhe/tfhe-lut/math/vec"
)

// LWECiphertext represents a LWE ciphertext.
type LWECiphertext struct {
	// Value[0] = b, Value[1:] = a
	Value []uint64
}

// NewLWECiphertext allocates an empty LWECiphertext under the standalone LWE key.
func NewLWECiphertext(params Parameters) LWECiphertext {
	return NewLWECiphertextCustom(params.lweDimension)
}

// NewLWECiphertextCustom allocates an empty LWECiphertext with given dimension.
func NewLWECiphertextCustom(lweDimension int) LWECiphertext {
	return LWECiphertext{Value: make([]uint64, lweDimension+1)}
}

// NewTrivialLWECiphertext returns the noiseless encryption of m with zero mask.
func NewTrivialLWECiphertext(lweDimension int, m Torus) LWECiphertext {
	ct := NewLWECiphertextCustom(lweDimension)
	ct.Value[0] = uint64(m)
	return ct
}

// Dimension returns the dimension of the mask of ct.
func (ct LWECiphertext) Dimension() int {
	return len(ct.Value) - 1
}

// Copy returns a copy of the ciphertext.
func (ct LWECiphertext) Copy() LWECiphertext {
	return LWECiphertext{Value: vec.Copy(ct.Value)}
}

// CopyFrom copies values from a ciphertext.
func (ct *LWECiphertext) CopyFrom(ctIn LWECiphertext) {
	vec.CopyAssign(ctIn.Value, ct.Value)
}

// Clear clears the ciphertext.
func (ct *LWECiphertext) Clear() {
	vec.Fill(ct.Value, 0)
}

// LevCiphertext is a leveled LWE ciphertext, decomposed according to GadgetParameters.
type LevCiphertext struct {
	GadgetParameters GadgetParameters

	// Value has length Level.
	Value []LWECiphertext
}

// NewLevCiphertextCustom allocates an empty LevCiphertext with given dimension.
func NewLevCiphertextCustom(lweDimension int, gadgetParams GadgetParameters) LevCiphertext {
	ct := make([]LWECiphertext, gadgetParams.level)
	for i := 0; i < gadgetParams.level; i++ {
		ct[i] = NewLWECiphertextCustom(lweDimension)
	}
	return LevCiphertext{Value: ct, GadgetParameters: gadgetParams}
}

// Copy returns a copy of the ciphertext.
func (ct LevCiphertext) Copy() LevCiphertext {
	ctCopy := make([]LWECiphertext, len(ct.Value))
	for i := range ct.Value {
		ctCopy[i] = ct.Value[i].Copy()
	}
	return LevCiphertext{Value: ctCopy, GadgetParameters: ct.GadgetParameters}
}

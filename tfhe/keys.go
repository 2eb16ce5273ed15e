package tfhe

import (
	"github.com/wisardfhe/tfhe-lut/math/poly"
	"github.com/wisardfhe/tfhe-lut/math/vec"
)

// LWESecretKey is a LWE secret key, sampled from uniform binary distribution.
type LWESecretKey struct {
	Value []uint64
}

// NewLWESecretKey allocates an empty LWESecretKey.
func NewLWESecretKey(params Parameters) LWESecretKey {
	return NewLWESecretKeyCustom(params.lweDimension)
}

// NewLWESecretKeyCustom allocates an empty LWESecretKey with given dimension.
func NewLWESecretKeyCustom(lweDimension int) LWESecretKey {
	return LWESecretKey{Value: make([]uint64, lweDimension)}
}

// Copy returns a copy of the key.
func (sk LWESecretKey) Copy() LWESecretKey {
	return LWESecretKey{Value: vec.Copy(sk.Value)}
}

// GLWESecretKey is a GLWE secret key, sampled from uniform binary distribution.
type GLWESecretKey struct {
	Value []poly.Poly
}

// NewGLWESecretKey allocates an empty GLWESecretKey.
func NewGLWESecretKey(params Parameters) GLWESecretKey {
	return NewGLWESecretKeyCustom(params.glweRank, params.polyDegree)
}

// NewGLWESecretKeyCustom allocates an empty GLWESecretKey with given rank and degree.
func NewGLWESecretKeyCustom(glweRank, polyDegree int) GLWESecretKey {
	sk := make([]poly.Poly, glweRank)
	for i := range sk {
		sk[i] = poly.NewPoly(polyDegree)
	}
	return GLWESecretKey{Value: sk}
}

// Copy returns a copy of the key.
func (sk GLWESecretKey) Copy() GLWESecretKey {
	skCopy := make([]poly.Poly, len(sk.Value))
	for i := range sk.Value {
		skCopy[i] = sk.Value[i].Copy()
	}
	return GLWESecretKey{Value: skCopy}
}

// FourierGLWESecretKey is a GLWE secret key in the Fourier domain.
type FourierGLWESecretKey struct {
	Value []poly.FourierSmallPoly
}

// NewFourierGLWESecretKey allocates an empty FourierGLWESecretKey.
func NewFourierGLWESecretKey(params Parameters) FourierGLWESecretKey {
	sk := make([]poly.FourierSmallPoly, params.glweRank)
	for i := range sk {
		sk[i] = poly.NewFourierSmallPoly(params.polyDegree)
	}
	return FourierGLWESecretKey{Value: sk}
}

// SecretKey is a structure containing LWE and GLWE key.
//
// LWELargeKey and GLWEKey share the same backing slice, so
// LWELargeKey is the LWE view of GLWEKey with dimension GLWERank * PolyDegree.
// Samples extracted from GLWE ciphertexts are encrypted under LWELargeKey.
// LWEKey is a standalone key, the target of key switching.
type SecretKey struct {
	// LWELargeKey is a LWE key with length GLWEDimension.
	// Essentially, this is same as GLWEKey but parsed differently.
	LWELargeKey LWESecretKey
	// GLWEKey is a key used for GLWE encryption.
	GLWEKey GLWESecretKey
	// FourierGLWEKey is a fourier transformed GLWEKey.
	// Used for GLWE encryption.
	FourierGLWEKey FourierGLWESecretKey
	// LWEKey is the standalone LWE key with length LWEDimension.
	LWEKey LWESecretKey
}

// NewSecretKey allocates an empty SecretKey.
func NewSecretKey(params Parameters) SecretKey {
	lweLargeKey := NewLWESecretKeyCustom(params.GLWEDimension())

	glweKey := GLWESecretKey{Value: make([]poly.Poly, params.glweRank)}
	for i := 0; i < params.glweRank; i++ {
		glweKey.Value[i].Coeffs = lweLargeKey.Value[i*params.polyDegree : (i+1)*params.polyDegree]
	}

	return SecretKey{
		LWELargeKey:    lweLargeKey,
		GLWEKey:        glweKey,
		FourierGLWEKey: NewFourierGLWESecretKey(params),
		LWEKey:         NewLWESecretKey(params),
	}
}

// Copy returns a copy of the key.
func (sk SecretKey) Copy() SecretKey {
	lweLargeKey := sk.LWELargeKey.Copy()
	N := sk.GLWEKey.Value[0].Degree()

	glweKey := GLWESecretKey{Value: make([]poly.Poly, len(sk.GLWEKey.Value))}
	for i := range glweKey.Value {
		glweKey.Value[i].Coeffs = lweLargeKey.Value[i*N : (i+1)*N]
	}

	fourierGLWEKey := FourierGLWESecretKey{Value: make([]poly.FourierSmallPoly, len(sk.FourierGLWEKey.Value))}
	for i := range fourierGLWEKey.Value {
		fourierGLWEKey.Value[i] = sk.FourierGLWEKey.Value[i].Copy()
	}

	return SecretKey{
		LWELargeKey:    lweLargeKey,
		GLWEKey:        glweKey,
		FourierGLWEKey: fourierGLWEKey,
		LWEKey:         sk.LWEKey.Copy(),
	}
}

// KeySwitchKey switches LWE ciphertexts under LWELargeKey to LWEKey.
// Value[i] is a Lev encryption of the i-th coefficient of LWELargeKey.
type KeySwitchKey struct {
	GadgetParameters GadgetParameters

	// Value has length GLWEDimension.
	Value []LevCiphertext
}

// NewKeySwitchKey allocates an empty KeySwitchKey.
func NewKeySwitchKey(params Parameters) KeySwitchKey {
	ksk := make([]LevCiphertext, params.GLWEDimension())
	for i := range ksk {
		ksk[i] = NewLevCiphertextCustom(params.lweDimension, params.keySwitchParameters)
	}
	return KeySwitchKey{Value: ksk, GadgetParameters: params.keySwitchParameters}
}

// PackingKeySwitchKey packs LWE ciphertexts under LWELargeKey into a GLWE ciphertext.
// Value[i] is a GLev encryption of the constant polynomial
// equal to the i-th coefficient of LWELargeKey.
type PackingKeySwitchKey struct {
	GadgetParameters GadgetParameters

	// Value has length GLWEDimension.
	Value []GLevCiphertext
}

// NewPackingKeySwitchKey allocates an empty PackingKeySwitchKey.
func NewPackingKeySwitchKey(params Parameters) PackingKeySwitchKey {
	pksk := make([]GLevCiphertext, params.GLWEDimension())
	for i := range pksk {
		pksk[i] = NewGLevCiphertext(params, params.packingKeySwitchParameters)
	}
	return PackingKeySwitchKey{Value: pksk, GadgetParameters: params.packingKeySwitchParameters}
}

// EvaluationKey is a public key for Evaluator,
// which consists of the key switching keys.
type EvaluationKey struct {
	// KeySwitchKey switches extracted samples to the standalone LWE key.
	KeySwitchKey KeySwitchKey
	// PackingKeySwitchKey packs extracted samples into GLWE ciphertexts.
	PackingKeySwitchKey PackingKeySwitchKey
}

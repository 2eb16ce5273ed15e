package tfhe

import (
	"runtime"
	"sync"

	"github.com/wisardfhe/tfhe-lut/math/csprng"
	"github.com/wisardfhe/tfhe-lut/math/poly"
	"github.com/wisardfhe/tfhe-lut/math/vec"
)

// Encryptor encrypts and decrypts TFHE plaintexts and ciphertexts.
// It also generates the evaluation keys.
//
// Encryptor is not safe for concurrent use.
// Use ShallowCopy to get a safe copy.
type Encryptor struct {
	// Parameters holds the parameters for this Encryptor.
	Parameters Parameters

	// UniformSampler samples masks and keys.
	UniformSampler *csprng.UniformSampler
	// GaussianSampler samples errors.
	GaussianSampler *csprng.GaussianSampler

	// PolyEvaluator holds the PolyEvaluator for this Encryptor.
	PolyEvaluator *poly.Evaluator

	// SecretKey holds the secret keys for this Encryptor.
	SecretKey SecretKey

	buffer encryptionBuffer
}

// encryptionBuffer contains buffer values for Encryptor.
type encryptionBuffer struct {
	// ptGLWE holds the GLWE plaintext for GGSW encryption.
	ptGLWE poly.Poly
	// pSplit holds a product with the secret key.
	pSplit poly.Poly
}

// NewEncryptor returns a initialized Encryptor with given parameters.
// It also automatically samples a new SecretKey.
func NewEncryptor(params Parameters) *Encryptor {
	enc := newEncryptor(params, csprng.NewUniformSamplerWithXOF(params.xof))
	enc.SecretKey = enc.GenSecretKey()
	return enc
}

// NewEncryptorWithSeed returns a initialized Encryptor whose randomness,
// including its SecretKey, is derived from seed.
func NewEncryptorWithSeed(params Parameters, seed []byte) *Encryptor {
	enc := newEncryptor(params, csprng.NewUniformSamplerWithSeed(seed, params.xof))
	enc.SecretKey = enc.GenSecretKey()
	return enc
}

// NewEncryptorWithKey returns a initialized Encryptor with given parameters and key.
// This does not copy the SecretKey.
func NewEncryptorWithKey(params Parameters, sk SecretKey) *Encryptor {
	enc := newEncryptor(params, csprng.NewUniformSamplerWithXOF(params.xof))
	enc.SecretKey = sk
	return enc
}

func newEncryptor(params Parameters, us *csprng.UniformSampler) *Encryptor {
	return &Encryptor{
		Parameters: params,

		UniformSampler:  us,
		GaussianSampler: csprng.NewGaussianSampler(us.Derive()),

		PolyEvaluator: poly.NewEvaluator(params.polyDegree),

		buffer: newEncryptionBuffer(params),
	}
}

// newEncryptionBuffer allocates an empty encryptionBuffer.
func newEncryptionBuffer(params Parameters) encryptionBuffer {
	return encryptionBuffer{
		ptGLWE: poly.NewPoly(params.polyDegree),
		pSplit: poly.NewPoly(params.polyDegree),
	}
}

// ShallowCopy returns a shallow copy of this Encryptor.
// Returned Encryptor is safe for concurrent use.
// The copy shares the SecretKey but has its own samplers.
func (e *Encryptor) ShallowCopy() *Encryptor {
	us := e.UniformSampler.Derive()
	return &Encryptor{
		Parameters: e.Parameters,

		UniformSampler:  us,
		GaussianSampler: csprng.NewGaussianSampler(us.Derive()),

		PolyEvaluator: e.PolyEvaluator.ShallowCopy(),

		SecretKey: e.SecretKey,

		buffer: newEncryptionBuffer(e.Parameters),
	}
}

// GenSecretKey samples a new SecretKey.
// The SecretKey of the Encryptor is not changed.
func (e *Encryptor) GenSecretKey() SecretKey {
	sk := NewSecretKey(e.Parameters)

	e.UniformSampler.SampleBinarySliceAssign(sk.LWELargeKey.Value)
	e.UniformSampler.SampleBinarySliceAssign(sk.LWEKey.Value)
	for i := 0; i < e.Parameters.glweRank; i++ {
		e.PolyEvaluator.ToFourierSmallPolyAssign(sk.GLWEKey.Value[i], sk.FourierGLWEKey.Value[i])
	}

	return sk
}

// EncryptLWE encrypts m under LWEKey.
func (e *Encryptor) EncryptLWE(m Torus) LWECiphertext {
	ctOut := NewLWECiphertext(e.Parameters)
	e.EncryptLWEAssign(m, ctOut)
	return ctOut
}

// EncryptLWEAssign encrypts m under LWEKey and writes it to ctOut.
func (e *Encryptor) EncryptLWEAssign(m Torus, ctOut LWECiphertext) {
	ctOut.Value[0] = uint64(m)
	e.EncryptLWEBody(ctOut)
}

// EncryptLWEBody encrypts the value in the body of ct under LWEKey, and overwrites it.
// This avoids the need for most buffers.
func (e *Encryptor) EncryptLWEBody(ct LWECiphertext) {
	e.encryptLWEBody(ct, e.SecretKey.LWEKey, e.Parameters.lweStdDev)
}

// EncryptLWELarge encrypts m under LWELargeKey,
// the same key samples extracted from GLWE ciphertexts use.
func (e *Encryptor) EncryptLWELarge(m Torus) LWECiphertext {
	ctOut := NewLWECiphertextCustom(e.Parameters.GLWEDimension())
	e.EncryptLWELargeAssign(m, ctOut)
	return ctOut
}

// EncryptLWELargeAssign encrypts m under LWELargeKey and writes it to ctOut.
func (e *Encryptor) EncryptLWELargeAssign(m Torus, ctOut LWECiphertext) {
	ctOut.Value[0] = uint64(m)
	e.encryptLWEBody(ctOut, e.SecretKey.LWELargeKey, e.Parameters.glweStdDev)
}

func (e *Encryptor) encryptLWEBody(ct LWECiphertext, sk LWESecretKey, stdDev float64) {
	if ct.Dimension() != len(sk.Value) {
		panic("LWE dimension mismatch")
	}
	e.UniformSampler.SampleSliceAssign(ct.Value[1:])
	ct.Value[0] -= vec.Dot(ct.Value[1:], sk.Value)
	ct.Value[0] += e.GaussianSampler.SampleTorus(stdDev)
}

// DecryptLWE returns the phase of ct under LWEKey.
func (e *Encryptor) DecryptLWE(ct LWECiphertext) Torus {
	return decryptLWE(ct, e.SecretKey.LWEKey)
}

// DecryptLWELarge returns the phase of ct under LWELargeKey.
// Use it for samples extracted from GLWE ciphertexts.
func (e *Encryptor) DecryptLWELarge(ct LWECiphertext) Torus {
	return decryptLWE(ct, e.SecretKey.LWELargeKey)
}

func decryptLWE(ct LWECiphertext, sk LWESecretKey) Torus {
	if ct.Dimension() != len(sk.Value) {
		panic("LWE dimension mismatch")
	}
	return Torus(ct.Value[0] + vec.Dot(ct.Value[1:], sk.Value))
}

// EncryptGLWE encrypts the polynomial p.
func (e *Encryptor) EncryptGLWE(p poly.Poly) GLWECiphertext {
	ctOut := NewGLWECiphertext(e.Parameters)
	e.EncryptGLWEAssign(p, ctOut)
	return ctOut
}

// EncryptGLWEAssign encrypts the polynomial p and writes it to ctOut.
func (e *Encryptor) EncryptGLWEAssign(p poly.Poly, ctOut GLWECiphertext) {
	ctOut.Value[0].CopyFrom(p)
	e.EncryptGLWEBody(ctOut)
}

// EncryptGLWEBody encrypts the value in the body of ct, and overwrites it.
// This avoids the need for most buffers.
func (e *Encryptor) EncryptGLWEBody(ct GLWECiphertext) {
	e.buffer.pSplit.Clear()
	for i := 0; i < e.Parameters.glweRank; i++ {
		e.UniformSampler.SampleSliceAssign(ct.Value[i+1].Coeffs)
		e.PolyEvaluator.MulFourierSmallPolyAddAssign(ct.Value[i+1], e.SecretKey.FourierGLWEKey.Value[i], e.buffer.pSplit)
	}
	e.PolyEvaluator.SubPolyAssign(ct.Value[0], e.buffer.pSplit, ct.Value[0])
	e.GaussianSampler.SampleTorusSliceAddAssign(e.Parameters.glweStdDev, ct.Value[0].Coeffs)
}

// DecryptGLWE returns the phase polynomial of ct.
func (e *Encryptor) DecryptGLWE(ct GLWECiphertext) poly.Poly {
	pOut := e.PolyEvaluator.NewPoly()
	e.DecryptGLWEAssign(ct, pOut)
	return pOut
}

// DecryptGLWEAssign computes the phase polynomial of ct and writes it to pOut.
func (e *Encryptor) DecryptGLWEAssign(ct GLWECiphertext, pOut poly.Poly) {
	e.buffer.pSplit.Clear()
	for i := 0; i < e.Parameters.glweRank; i++ {
		e.PolyEvaluator.MulFourierSmallPolyAddAssign(ct.Value[i+1], e.SecretKey.FourierGLWEKey.Value[i], e.buffer.pSplit)
	}
	e.PolyEvaluator.AddPolyAssign(ct.Value[0], e.buffer.pSplit, pOut)
}

// EncryptGGSW encrypts the monomial m * X^d, where m is a small integer.
func (e *Encryptor) EncryptGGSW(m uint64, d int) GGSWCiphertext {
	ctOut := NewGGSWCiphertext(e.Parameters, e.Parameters.ggswParameters)
	e.EncryptGGSWAssign(m, d, ctOut)
	return ctOut
}

// EncryptGGSWAssign encrypts the monomial m * X^d and writes it to ctOut.
// The j-th row of the i-th GLev encrypts m * X^d * BaseQ(j) * S_i, with S_0 = 1.
func (e *Encryptor) EncryptGGSWAssign(m uint64, d int, ctOut GGSWCiphertext) {
	e.buffer.ptGLWE.Clear()
	e.buffer.ptGLWE.Coeffs[0] = m
	e.PolyEvaluator.MonomialMulPolyAssign(e.buffer.ptGLWE, d, e.buffer.ptGLWE)

	gadgetParams := ctOut.GadgetParameters
	for i := 0; i < e.Parameters.glweRank+1; i++ {
		for j := 0; j < gadgetParams.level; j++ {
			ct := ctOut.Value[i].Value[j]
			ct.Clear()
			e.EncryptGLWEBody(ct)
			e.PolyEvaluator.ScalarMulAddPolyAssign(e.buffer.ptGLWE, gadgetParams.BaseQ(j), ct.Value[i])
		}
	}
}

// EncryptFourierGGSW encrypts the monomial m * X^d and returns it in the Fourier domain.
func (e *Encryptor) EncryptFourierGGSW(m uint64, d int) FourierGGSWCiphertext {
	ctOut := NewFourierGGSWCiphertext(e.Parameters, e.Parameters.ggswParameters)
	e.EncryptFourierGGSWAssign(m, d, ctOut)
	return ctOut
}

// EncryptFourierGGSWAssign encrypts the monomial m * X^d in the Fourier domain and writes it to ctOut.
func (e *Encryptor) EncryptFourierGGSWAssign(m uint64, d int, ctOut FourierGGSWCiphertext) {
	ct := e.EncryptGGSW(m, d)
	toFourierGGSWCiphertextAssign(e.PolyEvaluator, ct, ctOut)
}

// EncryptFourierGGSWBits encrypts the count least significant bits of value,
// least significant bit first, as selectors.
func (e *Encryptor) EncryptFourierGGSWBits(value uint64, count int) []FourierGGSWCiphertext {
	cts := make([]FourierGGSWCiphertext, count)
	for i := range cts {
		cts[i] = e.EncryptFourierGGSW((value>>i)&1, 0)
	}
	return cts
}

// toFourierGGSWCiphertextAssign transforms ct to the Fourier domain and writes it to ctOut.
func toFourierGGSWCiphertextAssign(pe *poly.Evaluator, ct GGSWCiphertext, ctOut FourierGGSWCiphertext) {
	for i := range ct.Value {
		for j := range ct.Value[i].Value {
			toFourierGLWECiphertextAssign(pe, ct.Value[i].Value[j], ctOut.Value[i].Value[j])
		}
	}
}

// toFourierGLWECiphertextAssign transforms ct to the Fourier domain and writes it to ctOut.
func toFourierGLWECiphertextAssign(pe *poly.Evaluator, ct GLWECiphertext, ctOut FourierGLWECiphertext) {
	for i := range ct.Value {
		pe.ToFourierPolyAssign(ct.Value[i], ctOut.Value[i])
	}
}

// GenKeySwitchKey samples a new KeySwitchKey from LWELargeKey to LWEKey.
func (e *Encryptor) GenKeySwitchKey() KeySwitchKey {
	ksk := NewKeySwitchKey(e.Parameters)
	for i := range ksk.Value {
		e.genKeySwitchKeyRow(i, ksk)
	}
	return ksk
}

func (e *Encryptor) genKeySwitchKeyRow(i int, ksk KeySwitchKey) {
	s := e.SecretKey.LWELargeKey.Value[i]
	for j := 0; j < ksk.GadgetParameters.level; j++ {
		ksk.Value[i].Value[j].Value[0] = s << ksk.GadgetParameters.BaseQLog(j)
		e.EncryptLWEBody(ksk.Value[i].Value[j])
	}
}

// GenPackingKeySwitchKey samples a new PackingKeySwitchKey from LWELargeKey to GLWEKey.
func (e *Encryptor) GenPackingKeySwitchKey() PackingKeySwitchKey {
	pksk := NewPackingKeySwitchKey(e.Parameters)
	for i := range pksk.Value {
		e.genPackingKeySwitchKeyRow(i, pksk)
	}
	return pksk
}

func (e *Encryptor) genPackingKeySwitchKeyRow(i int, pksk PackingKeySwitchKey) {
	s := e.SecretKey.LWELargeKey.Value[i]
	for j := 0; j < pksk.GadgetParameters.level; j++ {
		ct := pksk.Value[i].Value[j]
		ct.Clear()
		ct.Value[0].Coeffs[0] = s << pksk.GadgetParameters.BaseQLog(j)
		e.EncryptGLWEBody(ct)
	}
}

// GenEvaluationKey samples a new evaluation key for Evaluator.
//
// This can take a long time.
// Use GenEvaluationKeyParallel for better key generation performance.
func (e *Encryptor) GenEvaluationKey() EvaluationKey {
	return EvaluationKey{
		KeySwitchKey:        e.GenKeySwitchKey(),
		PackingKeySwitchKey: e.GenPackingKeySwitchKey(),
	}
}

// GenEvaluationKeyParallel samples a new evaluation key for Evaluator in parallel.
func (e *Encryptor) GenEvaluationKeyParallel() EvaluationKey {
	evk := EvaluationKey{
		KeySwitchKey:        NewKeySwitchKey(e.Parameters),
		PackingKeySwitchKey: NewPackingKeySwitchKey(e.Parameters),
	}

	glweDimension := e.Parameters.GLWEDimension()
	e.genRowsParallel(2*glweDimension, func(enc *Encryptor, i int) {
		if i < glweDimension {
			enc.genKeySwitchKeyRow(i, evk.KeySwitchKey)
		} else {
			enc.genPackingKeySwitchKeyRow(i-glweDimension, evk.PackingKeySwitchKey)
		}
	})
	return evk
}

// GenPackingKeySwitchKeyParallel samples a new PackingKeySwitchKey in parallel.
// This is the only key encrypted lookup tables need.
func (e *Encryptor) GenPackingKeySwitchKeyParallel() PackingKeySwitchKey {
	pksk := NewPackingKeySwitchKey(e.Parameters)
	e.genRowsParallel(len(pksk.Value), func(enc *Encryptor, i int) {
		enc.genPackingKeySwitchKeyRow(i, pksk)
	})
	return pksk
}

// genRowsParallel calls gen for every row in [0, rows),
// each worker with its own shallow copy of e.
func (e *Encryptor) genRowsParallel(rows int, gen func(enc *Encryptor, i int)) {
	chunkCount := min(runtime.NumCPU(), rows)

	encryptorPool := make([]*Encryptor, chunkCount)
	for i := range encryptorPool {
		encryptorPool[i] = e.ShallowCopy()
	}

	jobs := make(chan int)
	go func() {
		defer close(jobs)
		for i := 0; i < rows; i++ {
			jobs <- i
		}
	}()

	var wg sync.WaitGroup
	wg.Add(chunkCount)
	for i := 0; i < chunkCount; i++ {
		go func(idx int) {
			defer wg.Done()
			for job := range jobs {
				gen(encryptorPool[idx], job)
			}
		}(i)
	}
	wg.Wait()
}

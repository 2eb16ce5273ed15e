package tfhe_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wisardfhe/tfhe-lut/math/csprng"
	"github.com/wisardfhe/tfhe-lut/math/poly"
	"github.com/wisardfhe/tfhe-lut/tfhe"
)

const logScale = 8

var (
	paramsList = []tfhe.ParametersLiteral{
		tfhe.ParamsWiSARD,
		tfhe.ParamsWiSARD2048,
		tfhe.ParamsTest,
	}

	testParams    = tfhe.ParamsTest.Compile()
	testEncryptor = tfhe.NewEncryptor(testParams)
	testEvaluator = tfhe.NewEvaluator(testParams, testEncryptor.GenEvaluationKeyParallel())
)

// encodePoly encodes msgs as the first coefficients of a polynomial.
func encodePoly(params tfhe.Parameters, msgs []uint64) poly.Poly {
	p := poly.NewPoly(params.PolyDegree())
	for i, m := range msgs {
		p.Coeffs[i] = uint64(tfhe.MustFromUnsigned(m, logScale))
	}
	return p
}

// decodeGLWE decrypts ct and rounds every coefficient.
func decodeGLWE(enc *tfhe.Encryptor, ct tfhe.GLWECiphertext) []uint64 {
	pt := enc.DecryptGLWE(ct)
	msgs := make([]uint64, len(pt.Coeffs))
	for i, c := range pt.Coeffs {
		msgs[i] = tfhe.Torus(c).IntoUnsigned(logScale)
	}
	return msgs
}

func TestParams(t *testing.T) {
	for _, params := range paramsList {
		t.Run(fmt.Sprintf("Compile/N=%v", params.PolyDegree), func(t *testing.T) {
			assert.NotPanics(t, func() { params.Compile() })
		})
	}

	t.Run("Accessors", func(t *testing.T) {
		params := tfhe.ParamsWiSARD.Compile()
		assert.Equal(t, 1024, params.PolyDegree())
		assert.Equal(t, 10, params.LogPolyDegree())
		assert.Equal(t, 1024, params.GLWEDimension())
		assert.Equal(t, 6, params.GGSWParameters().BaseLog())
		assert.Equal(t, 4, params.GGSWParameters().Level())
		assert.Equal(t, uint64(1)<<58, params.GGSWParameters().BaseQ(0))
		assert.Equal(t, tfhe.ParamsWiSARD, params.Literal())
	})

	t.Run("Invalid", func(t *testing.T) {
		invalid := []func(p *tfhe.ParametersLiteral){
			func(p *tfhe.ParametersLiteral) { p.PolyDegree = 1000 },
			func(p *tfhe.ParametersLiteral) { p.PolyDegree = 2 },
			func(p *tfhe.ParametersLiteral) { p.GLWERank = 0 },
			func(p *tfhe.ParametersLiteral) { p.LWEDimension = 0 },
			func(p *tfhe.ParametersLiteral) { p.GLWEStdDev = 1 },
			func(p *tfhe.ParametersLiteral) { p.GGSWParameters.Base = 3 },
			func(p *tfhe.ParametersLiteral) { p.GGSWParameters.Level = 0 },
			func(p *tfhe.ParametersLiteral) { p.PackingKeySwitchParameters = tfhe.GadgetParametersLiteral{Base: 1 << 30, Level: 3} },
			func(p *tfhe.ParametersLiteral) { p.XOF = csprng.XOF(42) },
			func(p *tfhe.ParametersLiteral) { p.GGSWParameters = tfhe.GadgetParametersLiteral{Base: 1 << 30, Level: 1} },
			func(p *tfhe.ParametersLiteral) {
				p.PolyDegree = 4096
				p.GGSWParameters = tfhe.GadgetParametersLiteral{Base: 1 << 26, Level: 2}
			},
			func(p *tfhe.ParametersLiteral) { p.PackingKeySwitchParameters = tfhe.GadgetParametersLiteral{Base: 1 << 20, Level: 2} },
		}
		for i, f := range invalid {
			p := tfhe.ParamsTest
			f(&p)
			assert.Error(t, p.Validate(), "case %d", i)
			assert.Panics(t, func() { p.Compile() }, "case %d", i)
		}
	})
}

func TestTorus(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		for _, s := range []int{1, 4, 8, 16, 32, 63} {
			for _, v := range []uint64{0, 1, 1<<s - 1, (1 << s) / 3} {
				x, err := tfhe.FromUnsigned(v, s)
				require.NoError(t, err)
				assert.Equal(t, v, x.IntoUnsigned(s), "v=%d s=%d", v, s)
			}
		}
	})

	t.Run("Rounding", func(t *testing.T) {
		x := tfhe.MustFromUnsigned(5, logScale)
		assert.Equal(t, uint64(5), (x + 1<<50).IntoUnsigned(logScale))
		assert.Equal(t, uint64(5), (x - 1<<50).IntoUnsigned(logScale))
		assert.Equal(t, uint64(0), tfhe.MustFromUnsigned(255, logScale).Add(1<<56).IntoUnsigned(logScale))
	})

	t.Run("Range", func(t *testing.T) {
		_, err := tfhe.FromUnsigned(256, 8)
		assert.ErrorIs(t, err, tfhe.ErrTorusRange)
		_, err = tfhe.FromUnsigned(1, 0)
		assert.ErrorIs(t, err, tfhe.ErrTorusRange)
		_, err = tfhe.FromUnsigned(1, 64)
		assert.ErrorIs(t, err, tfhe.ErrTorusRange)
		_, err = tfhe.FromFloat(1)
		assert.ErrorIs(t, err, tfhe.ErrTorusRange)
		_, err = tfhe.FromFloat(math.NaN())
		assert.ErrorIs(t, err, tfhe.ErrTorusRange)
		assert.Panics(t, func() { tfhe.MustFromUnsigned(2, 1) })
		assert.Panics(t, func() { tfhe.Torus(0).IntoUnsigned(64) })
	})

	t.Run("Float", func(t *testing.T) {
		x, err := tfhe.FromFloat(0.25)
		require.NoError(t, err)
		assert.Equal(t, tfhe.Torus(1<<62), x)
		assert.Equal(t, 0.25, x.Float())
	})

	t.Run("GroupLaws", func(t *testing.T) {
		x, y := tfhe.Torus(math.MaxUint64-3), tfhe.Torus(10)
		assert.Equal(t, tfhe.Torus(6), x.Add(y))
		assert.Equal(t, x, x.Add(y).Sub(y))
		assert.Equal(t, y.Add(x), x.Add(y))
	})

	t.Run("Distance", func(t *testing.T) {
		assert.Equal(t, uint64(14), tfhe.Torus(math.MaxUint64-3).Distance(10))
		assert.Equal(t, uint64(14), tfhe.Torus(10).Distance(math.MaxUint64-3))
		assert.Equal(t, uint64(1)<<63, tfhe.Torus(0).Distance(1<<63))
		assert.Equal(t, uint64(0), tfhe.Torus(7).Distance(7))
	})
}

func TestDecomposer(t *testing.T) {
	us := csprng.NewUniformSampler()
	dcmp := tfhe.NewDecomposer(testParams.PolyDegree())

	gadgets := []tfhe.GadgetParametersLiteral{
		{Base: 1 << 6, Level: 4},
		{Base: 1 << 12, Level: 3},
		{Base: 1 << 16, Level: 4},
		{Base: 1 << 8, Level: 8},
	}

	for _, g := range gadgets {
		gadgetParams := g.Compile()
		t.Run(fmt.Sprintf("Scalar/Base=2^%v/Level=%v", gadgetParams.BaseLog(), gadgetParams.Level()), func(t *testing.T) {
			bound := uint64(0)
			if shift := gadgetParams.BaseLog() * gadgetParams.Level(); shift < 64 {
				bound = uint64(1) << (63 - shift)
			}
			half := int64(gadgetParams.Base() / 2)

			for i := 0; i < 1000; i++ {
				x := us.Sample()
				digits := dcmp.DecomposeScalar(x, gadgetParams)
				for _, d := range digits {
					assert.GreaterOrEqual(t, int64(d), -half)
					assert.Less(t, int64(d), half)
				}
				y := tfhe.RecomposeScalar(digits, gadgetParams)
				assert.LessOrEqual(t, tfhe.Torus(x).Distance(tfhe.Torus(y)), bound)
			}
		})
	}

	t.Run("Poly", func(t *testing.T) {
		gadgetParams := testParams.GGSWParameters()
		p := poly.NewPoly(testParams.PolyDegree())
		us.SampleSliceAssign(p.Coeffs)
		decomposed := dcmp.DecomposePoly(p, gadgetParams)

		digits := make([]uint64, gadgetParams.Level())
		for j, c := range p.Coeffs {
			for i := range digits {
				digits[i] = decomposed[i].Coeffs[j]
			}
			assert.Equal(t, dcmp.DecomposeScalar(c, gadgetParams), digits)
		}
	})
}

func TestEncryptor(t *testing.T) {
	enc := testEncryptor
	msgs := []uint64{1, 2, 3, 255, 128, 0, 77}

	t.Run("LWE", func(t *testing.T) {
		for _, m := range msgs {
			ct := enc.EncryptLWE(tfhe.MustFromUnsigned(m, logScale))
			assert.Equal(t, testParams.LWEDimension(), ct.Dimension())
			assert.Equal(t, m, enc.DecryptLWE(ct).IntoUnsigned(logScale))

			ctLarge := enc.EncryptLWELarge(tfhe.MustFromUnsigned(m, logScale))
			assert.Equal(t, testParams.GLWEDimension(), ctLarge.Dimension())
			assert.Equal(t, m, enc.DecryptLWELarge(ctLarge).IntoUnsigned(logScale))
		}
	})

	t.Run("GLWE", func(t *testing.T) {
		ct := enc.EncryptGLWE(encodePoly(testParams, msgs))
		assert.Equal(t, msgs, decodeGLWE(enc, ct)[:len(msgs)])
		for _, m := range decodeGLWE(enc, ct)[len(msgs):] {
			assert.Equal(t, uint64(0), m)
		}
	})

	t.Run("Trivial", func(t *testing.T) {
		p := encodePoly(testParams, msgs)
		ct := tfhe.NewTrivialGLWECiphertext(testParams, p)
		assert.Equal(t, p.Coeffs, enc.DecryptGLWE(ct).Coeffs)

		other := tfhe.NewEncryptor(testParams)
		assert.Equal(t, p.Coeffs, other.DecryptGLWE(ct).Coeffs)
	})

	t.Run("SampleExtract", func(t *testing.T) {
		ct := enc.EncryptGLWE(encodePoly(testParams, msgs))
		for i, m := range msgs {
			assert.Equal(t, m, enc.DecryptLWELarge(ct.ToLWECiphertext(i)).IntoUnsigned(logScale))
		}
		last := ct.ToLWECiphertext(testParams.PolyDegree() - 1)
		assert.Equal(t, uint64(0), enc.DecryptLWELarge(last).IntoUnsigned(logScale))
		assert.Panics(t, func() { ct.ToLWECiphertext(testParams.PolyDegree()) })
	})

	t.Run("GGSW", func(t *testing.T) {
		ct := enc.EncryptGLWE(encodePoly(testParams, msgs))

		ctOut := testEvaluator.ExternalProduct(enc.EncryptFourierGGSW(1, 0), ct)
		assert.Equal(t, decodeGLWE(enc, ct), decodeGLWE(enc, ctOut))

		ctOut = testEvaluator.ExternalProduct(enc.EncryptFourierGGSW(0, 0), ct)
		for _, m := range decodeGLWE(enc, ctOut) {
			assert.Equal(t, uint64(0), m)
		}

		ctOut = testEvaluator.ExternalProduct(enc.EncryptFourierGGSW(1, 3), ct)
		assert.Equal(t, msgs, decodeGLWE(enc, ctOut)[3:3+len(msgs)])
	})

	t.Run("Seed", func(t *testing.T) {
		seed := make([]byte, csprng.SeedSize)
		enc0 := tfhe.NewEncryptorWithSeed(testParams, seed)
		enc1 := tfhe.NewEncryptorWithSeed(testParams, seed)
		assert.Equal(t, enc0.SecretKey.LWEKey.Value, enc1.SecretKey.LWEKey.Value)
		assert.Equal(t, enc0.SecretKey.GLWEKey.Value[0].Coeffs, enc1.SecretKey.GLWEKey.Value[0].Coeffs)
		assert.Equal(t, enc0.EncryptLWE(5).Value, enc1.EncryptLWE(5).Value)
	})
}

func TestNoise(t *testing.T) {
	enc := testEncryptor
	eval := testEvaluator
	N := testParams.PolyDegree()

	msgs := make([]uint64, N)
	for i := range msgs {
		msgs[i] = uint64(i) % (1 << logScale)
	}
	pt := encodePoly(testParams, msgs)
	expected := make([]tfhe.Torus, N)
	for i, c := range pt.Coeffs {
		expected[i] = tfhe.Torus(c)
	}

	phases := func(ct tfhe.GLWECiphertext) []tfhe.Torus {
		p := enc.DecryptGLWE(ct)
		out := make([]tfhe.Torus, N)
		for i, c := range p.Coeffs {
			out[i] = tfhe.Torus(c)
		}
		return out
	}

	t.Run("Trivial", func(t *testing.T) {
		stats := tfhe.MeasureNoise(phases(tfhe.NewTrivialGLWECiphertext(testParams, pt)), expected)
		assert.Equal(t, 0.0, stats.Variance)
		assert.True(t, math.IsInf(stats.Log2StdDev, -1))
	})

	t.Run("Fresh", func(t *testing.T) {
		stats := tfhe.MeasureNoise(phases(enc.EncryptGLWE(pt)), expected)
		assert.Greater(t, stats.Variance, 0.0)
		assert.InDelta(t, math.Log2(testParams.GLWEStdDev()), stats.Log2StdDev, 1)
		assert.GreaterOrEqual(t, stats.Max, stats.StdDev)
	})

	t.Run("Monotonicity", func(t *testing.T) {
		ct := enc.EncryptGLWE(pt)
		zero := enc.EncryptGLWE(poly.NewPoly(N))
		ctrl := enc.EncryptFourierGGSW(0, 0)

		prev := tfhe.MeasureNoise(phases(ct), expected).Variance
		for i := 0; i < 4; i++ {
			ct = eval.CMux(ctrl, ct, zero)
			cur := tfhe.MeasureNoise(phases(ct), expected).Variance
			assert.GreaterOrEqual(t, cur, prev, "step %d", i)
			prev = cur
		}
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		assert.Panics(t, func() { tfhe.MeasureNoise(make([]tfhe.Torus, 2), make([]tfhe.Torus, 3)) })
	})
}

func BenchmarkEncryptor(b *testing.B) {
	enc := testEncryptor

	b.Run("EncryptGLWE", func(b *testing.B) {
		p := encodePoly(testParams, []uint64{1, 2, 3})
		for i := 0; i < b.N; i++ {
			enc.EncryptGLWE(p)
		}
	})

	b.Run("EncryptFourierGGSW", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			enc.EncryptFourierGGSW(1, 0)
		}
	})
}

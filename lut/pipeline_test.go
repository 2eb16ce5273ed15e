package lut_test

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wisardfhe/tfhe-lut/lut"
	"github.com/wisardfhe/tfhe-lut/math/csprng"
	"github.com/wisardfhe/tfhe-lut/tfhe"
)

const countBits = 8

var (
	// params16 is a toy parameter set with N = 16,
	// so that inference spans several chunks with few addresses.
	params16 = tfhe.ParametersLiteral{
		LWEDimension: 16,
		GLWERank:     1,
		PolyDegree:   16,

		LWEStdDev:  0.0000000009313225746154785,
		GLWEStdDev: 0.0000000000009094947017729282,

		GGSWParameters: tfhe.GadgetParametersLiteral{
			Base:  1 << 12,
			Level: 3,
		},
		PackingKeySwitchParameters: tfhe.GadgetParametersLiteral{
			Base:  1 << 8,
			Level: 4,
		},
		KeySwitchParameters: tfhe.GadgetParametersLiteral{
			Base:  1 << 6,
			Level: 4,
		},
	}.Compile()

	testParams    = tfhe.ParamsTest.Compile()
	testEncryptor = tfhe.NewEncryptor(testParams)
	testEvaluator = tfhe.NewEvaluator(testParams, testEncryptor.GenEvaluationKeyParallel())
)

func newPipeline(t testing.TB, params tfhe.Parameters, addressSize, numLabels int) *lut.Pipeline {
	layout, err := lut.NewLayout(addressSize, numLabels, params.PolyDegree())
	require.NoError(t, err)

	enc, eval := testEncryptor, testEvaluator
	if params.PolyDegree() != testParams.PolyDegree() {
		enc = tfhe.NewEncryptor(params)
		eval = tfhe.NewEvaluator(params, enc.GenEvaluationKeyParallel())
	}

	p := lut.NewPipeline(layout, enc, eval, countBits)
	p.Workers = 3
	return p
}

// randomAddresses samples n addresses deterministically.
func randomAddresses(layout lut.Layout, n, slots int) []lut.Address {
	us := csprng.NewUniformSamplerWithSeed(make([]byte, csprng.SeedSize), csprng.XOFBlake2b)
	addrs := make([]lut.Address, n)
	for i := range addrs {
		addrs[i] = lut.Address{
			Label: uint8(us.SampleN(uint64(layout.NumLabels))),
			Index: uint16(us.SampleN(uint64(slots))),
			Addr:  uint32(us.SampleN(1 << layout.AddressSize)),
		}
	}
	return addrs
}

// plainCounters returns the counters a plaintext table would hold after training on addrs.
func plainCounters(layout lut.Layout, addrs []lut.Address, slots int) [][][]uint64 {
	counts := make([][][]uint64, slots)
	for i := range counts {
		counts[i] = make([][]uint64, layout.NumLabels)
		for l := range counts[i] {
			counts[i][l] = make([]uint64, 1<<layout.AddressSize)
		}
	}
	for _, a := range addrs {
		counts[a.Index][a.Label][a.Addr]++
	}
	return counts
}

// decryptTable decrypts every coefficient of table, rounded to countBits bits.
func decryptTable(enc *tfhe.Encryptor, table lut.Table) [][][]uint64 {
	out := make([][][]uint64, len(table.Slots))
	for i, slot := range table.Slots {
		out[i] = make([][]uint64, len(slot))
		for j, ct := range slot {
			pt := enc.DecryptGLWE(ct)
			out[i][j] = make([]uint64, len(pt.Coeffs))
			for k, c := range pt.Coeffs {
				out[i][j][k] = tfhe.Torus(c).IntoUnsigned(countBits)
			}
		}
	}
	return out
}

func TestWriteMask(t *testing.T) {
	enc, eval := testEncryptor, testEvaluator

	for _, args := range [][2]int{{4, 2}, {7, 4}, {9, 2}} {
		layout, err := lut.NewLayout(args[0], args[1], testParams.PolyDegree())
		require.NoError(t, err)

		t.Run(fmt.Sprintf("a=%v/L=%v", args[0], args[1]), func(t *testing.T) {
			label, addr := layout.NumLabels-1, uint32(1<<layout.AddressSize-2)
			bits := enc.EncryptFourierGGSWBits(layout.AddressLabel(label, addr), layout.AddressLabelSize)
			mask := lut.WriteMask(eval, layout, countBits, bits)
			require.Len(t, mask, layout.Count)

			polyIdx, coeffIdx := layout.Locate(label, addr)
			for j, ct := range mask {
				pt := enc.DecryptGLWE(ct)
				for k, c := range pt.Coeffs {
					want := uint64(0)
					if j == polyIdx && k == coeffIdx {
						want = 1
					}
					assert.Equal(t, want, tfhe.Torus(c).IntoUnsigned(countBits), "poly=%d coeff=%d", j, k)
				}
			}
		})
	}
}

func TestReadCounter(t *testing.T) {
	enc, eval := testEncryptor, testEvaluator
	layout, err := lut.NewLayout(7, 4, testParams.PolyDegree())
	require.NoError(t, err)

	// Counter of (label, addr) holds label * 2^7 + addr, modulo 2^countBits.
	table := lut.NewTable(testParams, layout, 1)
	for label := 0; label < layout.NumLabels; label++ {
		for addr := uint32(0); addr < 1<<layout.AddressSize; addr += 13 {
			polyIdx, coeffIdx := layout.Locate(label, addr)
			v := layout.AddressLabel(label, addr) % (1 << countBits)
			table.Slots[0][polyIdx].Value[0].Coeffs[coeffIdx] = uint64(tfhe.MustFromUnsigned(v, countBits))
		}
	}

	ctOut := tfhe.NewLWECiphertextCustom(testParams.GLWEDimension())
	for _, addr := range []uint32{0, 13, 52, 117} {
		bits := enc.EncryptFourierGGSWBits(uint64(addr), layout.AddressSize)
		for label := 0; label < layout.NumLabels; label++ {
			lut.ReadCounter(eval, layout, table.Slots[0], label, bits, ctOut)
			want := layout.AddressLabel(label, addr) % (1 << countBits)
			assert.Equal(t, want, enc.DecryptLWELarge(ctOut).IntoUnsigned(countBits), "label=%d addr=%d", label, addr)
		}
	}
}

func TestPipeline(t *testing.T) {
	ctx := context.Background()

	t.Run("SingleSample", func(t *testing.T) {
		p := newPipeline(t, testParams, 4, 2)

		table, err := p.Train(ctx, []lut.Address{{Label: 0, Index: 0, Addr: 5}}, 1)
		require.NoError(t, err)

		queries := []lut.Address{{Index: 0, Addr: 5}, {Index: 0, Addr: 6}}
		packed, err := p.Infer(ctx, table, queries)
		require.NoError(t, err)
		require.Len(t, packed, 1)

		// Counters are ordered by address, then label.
		assert.Equal(t, []uint64{1, 0, 0, 0}, p.Decrypt(packed, 4))
	})

	cases := []struct {
		params                 tfhe.Parameters
		addressSize, numLabels int
		slots, samples         int
	}{
		{testParams, 4, 2, 3, 24},
		{testParams, 7, 4, 2, 16},
		{testParams, 9, 3, 2, 16},
		{params16, 4, 2, 2, 40},
		{params16, 3, 5, 2, 20},
	}

	for _, tc := range cases {
		p := newPipeline(t, tc.params, tc.addressSize, tc.numLabels)
		layout := p.Layout

		t.Run(fmt.Sprintf("Plaintext/N=%v/a=%v/L=%v", layout.PolyDegree, tc.addressSize, tc.numLabels), func(t *testing.T) {
			addrs := randomAddresses(layout, tc.samples, tc.slots)
			counts := plainCounters(layout, addrs, tc.slots)

			table, err := p.Train(ctx, addrs, tc.slots)
			require.NoError(t, err)

			decrypted := decryptTable(p.Encryptor, table)
			for i := 0; i < tc.slots; i++ {
				for label := 0; label < layout.NumLabels; label++ {
					for addr := uint32(0); addr < 1<<layout.AddressSize; addr++ {
						polyIdx, coeffIdx := layout.Locate(label, addr)
						assert.Equal(t, counts[i][label][addr], decrypted[i][polyIdx][coeffIdx])
					}
				}
			}

			packed, err := p.Infer(ctx, table, addrs)
			require.NoError(t, err)
			numResults := len(addrs) * layout.NumLabels
			assert.Len(t, packed, (numResults+layout.PolyDegree-1)/layout.PolyDegree)

			results := p.Decrypt(packed, numResults)
			require.Len(t, results, numResults)
			for i, a := range addrs {
				for label := 0; label < layout.NumLabels; label++ {
					assert.Equal(t, counts[a.Index][label][a.Addr], results[i*layout.NumLabels+label], "address %d label %d", i, label)
				}
			}
		})
	}
}

func TestPipelineMerge(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, testParams, 5, 2)
	addrs := randomAddresses(p.Layout, 20, 2)

	p.Workers = 1
	serial, err := p.Train(ctx, addrs, 2)
	require.NoError(t, err)

	p.Workers = 4
	first, err := p.Train(ctx, addrs[:7], 2)
	require.NoError(t, err)
	second, err := p.Train(ctx, addrs[7:], 2)
	require.NoError(t, err)

	forward := first.Clone()
	forward.AddAssign(p.Evaluator, second)
	backward := second.Clone()
	backward.AddAssign(p.Evaluator, first)

	want := decryptTable(p.Encryptor, serial)
	assert.Equal(t, want, decryptTable(p.Encryptor, forward))
	assert.Equal(t, want, decryptTable(p.Encryptor, backward))

	assert.Panics(t, func() { forward.AddAssign(p.Evaluator, lut.NewTable(testParams, p.Layout, 3)) })
}

func TestPipelineReencrypt(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, testParams, 5, 2)
	addrs := randomAddresses(p.Layout, 10, 1)

	table, err := p.Train(ctx, addrs, 1)
	require.NoError(t, err)

	fresh, err := p.Reencrypt(ctx, table)
	require.NoError(t, err)
	assert.Equal(t, decryptTable(p.Encryptor, table), decryptTable(p.Encryptor, fresh))

	packed, err := p.Infer(ctx, fresh, addrs)
	require.NoError(t, err)
	counts := plainCounters(p.Layout, addrs, 1)
	results := p.Decrypt(packed, len(addrs)*2)
	for i, a := range addrs {
		assert.Equal(t, counts[0][a.Label][a.Addr], results[i*2+int(a.Label)])
	}
}

func TestPipelineNoise(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, testParams, 6, 2)
	addrs := randomAddresses(p.Layout, 12, 1)

	var logs bytes.Buffer
	p.Logger = log.New(&logs, "", 0)
	p.TrackNoise = true

	table, err := p.Train(ctx, addrs, 1)
	require.NoError(t, err)
	_, err = p.Infer(ctx, table, addrs)
	require.NoError(t, err)

	assert.Greater(t, p.Noise.PostTrain.Variance, 0.0)
	assert.GreaterOrEqual(t, p.Noise.PostInference.Variance, p.Noise.PostTrain.Variance)
	assert.Greater(t, p.Noise.PostKeySwitch.Variance, 0.0)
	assert.Less(t, p.Noise.PostKeySwitch.Max, 1.0/(1<<(countBits+1)))

	assert.Contains(t, logs.String(), "Training 12 addresses")
	assert.Contains(t, logs.String(), "Post-Keyswitch Variance")
}

func TestPipelineErrors(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, testParams, 4, 2)

	_, err := p.Train(ctx, []lut.Address{{Index: 1}}, 1)
	assert.ErrorIs(t, err, lut.ErrAddress)

	_, err = p.Train(ctx, []lut.Address{{Label: 2}}, 1)
	assert.ErrorIs(t, err, lut.ErrAddress)

	_, err = p.Train(ctx, []lut.Address{{Addr: 16}}, 1)
	assert.ErrorIs(t, err, lut.ErrAddress)

	table := lut.NewTable(testParams, p.Layout, 1)
	_, err = p.Infer(ctx, table, []lut.Address{{Index: 1}})
	assert.ErrorIs(t, err, lut.ErrAddress)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = p.Train(canceled, randomAddresses(p.Layout, 8, 1), 1)
	assert.ErrorIs(t, err, context.Canceled)

	p.CountBits = 0
	_, err = p.Train(ctx, nil, 1)
	assert.Error(t, err)
}

func TestTableMarshal(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, testParams, 9, 2)

	table, err := p.Train(ctx, randomAddresses(p.Layout, 3, 2), 2)
	require.NoError(t, err)

	data, err := table.MarshalBinary()
	require.NoError(t, err)

	var out lut.Table
	require.NoError(t, out.UnmarshalBinary(data))
	assert.True(t, cmp.Equal(table, out))

	assert.ErrorIs(t, out.UnmarshalBinary(data[:len(data)-1]), tfhe.ErrMalformed)
	assert.ErrorIs(t, out.UnmarshalBinary(data[:5]), tfhe.ErrMalformed)
}

func BenchmarkPipeline(b *testing.B) {
	ctx := context.Background()
	p := newPipeline(b, testParams, 8, 2)
	addrs := randomAddresses(p.Layout, 8, 1)
	table, err := p.Train(ctx, addrs, 1)
	require.NoError(b, err)

	b.Run("Train", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			p.Train(ctx, addrs, 1)
		}
	})

	b.Run("Infer", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			p.Infer(ctx, table, addrs)
		}
	})
}

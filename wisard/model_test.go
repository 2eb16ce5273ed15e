package wisard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wisardfhe/tfhe-lut/lut"
	"github.com/wisardfhe/tfhe-lut/math/csprng"
	"github.com/wisardfhe/tfhe-lut/tfhe"
	"github.com/wisardfhe/tfhe-lut/wisard"
)

// randomSamples samples n records of numValues values with labels in [0, numLabels).
func randomSamples(n, numValues, numLabels int) []wisard.Sample {
	us := csprng.NewUniformSamplerWithSeed([]byte("samples"), csprng.XOFBlake2b)
	samples := make([]wisard.Sample, n)
	for i := range samples {
		samples[i].Label = uint8(us.SampleN(uint64(numLabels)))
		samples[i].Values = make([]uint8, numValues)
		for j := range samples[i].Values {
			samples[i].Values[j] = uint8(us.SampleN(256))
		}
	}
	return samples
}

func TestModel(t *testing.T) {
	m := wisard.NewModel(2, 3, 2)
	require.NoError(t, m.Train([]lut.Address{
		{Label: 1, Index: 2, Addr: 3},
		{Label: 1, Index: 2, Addr: 3},
		{Label: 0, Index: 0, Addr: 1},
	}))

	assert.EqualValues(t, 2, m.Count(1, 2, 3))
	assert.EqualValues(t, 1, m.Count(0, 0, 1))
	assert.EqualValues(t, 0, m.Count(0, 2, 3))
	assert.EqualValues(t, 2, m.MaxCount())

	counters, err := m.Read([]lut.Address{{Label: 1, Index: 0, Addr: 1}, {Index: 2, Addr: 3}})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 0, 0, 2}, counters)

	for _, a := range []lut.Address{{Label: 2}, {Index: 3}, {Addr: 4}} {
		assert.ErrorIs(t, m.Train([]lut.Address{a}), lut.ErrAddress)
	}
	_, err = m.Read([]lut.Address{{Addr: 4}})
	assert.ErrorIs(t, err, lut.ErrAddress)
}

func TestModelEncrypted(t *testing.T) {
	const (
		numLabels   = 3
		addressSize = 4
		countBits   = 6
	)

	params := tfhe.ParamsTest.Compile()
	enc := tfhe.NewEncryptor(params)
	eval := tfhe.NewEvaluator(params, enc.GenEvaluationKeyParallel())

	therm := wisard.LinearThermometer{Resolution: 3}
	encoder := wisard.NewEncoder(wisard.Slice{Start: 0, End: 8}, therm, []byte("model"))

	train := randomSamples(12, 4, numLabels)
	test := randomSamples(5, 4, numLabels)

	trainAddrs, numLuts, err := wisard.EncodeDataset(encoder, train, addressSize)
	require.NoError(t, err)
	testAddrs, _, err := wisard.EncodeDataset(encoder, test, addressSize)
	require.NoError(t, err)

	model := wisard.NewModel(numLabels, numLuts, addressSize)
	require.NoError(t, model.Train(trainAddrs))
	want, err := model.Read(testAddrs)
	require.NoError(t, err)

	layout, err := lut.NewLayout(addressSize, numLabels, params.PolyDegree())
	require.NoError(t, err)
	p := lut.NewPipeline(layout, enc, eval, countBits)
	p.Workers = 2

	table, err := p.Train(context.Background(), trainAddrs, numLuts)
	require.NoError(t, err)
	packed, err := p.Infer(context.Background(), table, testAddrs)
	require.NoError(t, err)
	got := p.Decrypt(packed, len(testAddrs)*numLabels)

	assert.Equal(t, want, got)

	scorer := wisard.Scorer{NumLabels: numLabels, NumLuts: numLuts, CountBits: countBits}
	assert.Equal(t, scorer.Scores(want), scorer.Scores(got))
}

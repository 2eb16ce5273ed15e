package wisard_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wisardfhe/tfhe-lut/lut"
	"github.com/wisardfhe/tfhe-lut/wisard"
)

func TestSlice(t *testing.T) {
	s := wisard.Slice{Start: 2, End: 6}
	assert.Equal(t, 4, s.Width())
	assert.Equal(t, []uint8{15, 0, 5}, s.Apply([]uint8{0b10111100, 0b11000011, 0b00010100}))

	assert.NoError(t, s.Validate(8))
	assert.Error(t, s.Validate(5))
	assert.Error(t, wisard.Slice{Start: 3, End: 3}.Validate(8))
}

func TestThermometer(t *testing.T) {
	t.Run("Linear", func(t *testing.T) {
		therm := wisard.LinearThermometer{Resolution: 3}
		for v, ones := range map[uint8]int{0: 0, 63: 0, 64: 1, 128: 2, 191: 2, 192: 3, 255: 3} {
			assert.Equal(t, ones, therm.Ones(v, 8), "v=%d", v)
		}
	})

	t.Run("Log", func(t *testing.T) {
		therm := wisard.LogThermometer{Resolution: 4}
		for v, ones := range map[uint8]int{0: 0, 1: 1, 3: 1, 15: 2, 255: 4} {
			assert.Equal(t, ones, therm.Ones(v, 8), "v=%d", v)
		}
	})

	t.Run("Parse", func(t *testing.T) {
		therm, err := wisard.ParseThermometer("log", 8)
		require.NoError(t, err)
		assert.Equal(t, wisard.LogThermometer{Resolution: 8}, therm)

		_, err = wisard.ParseThermometer("cubic", 8)
		assert.Error(t, err)
		_, err = wisard.ParseThermometer("linear", 0)
		assert.Error(t, err)
	})
}

func TestPermutation(t *testing.T) {
	seed := []byte("permutation seed")
	p0 := wisard.NewPermutation(64, seed)
	p1 := wisard.NewPermutation(64, seed)

	bits := make([]bool, 64)
	for i := 0; i < 64; i += 3 {
		bits[i] = true
	}

	out := p0.Apply(bits)
	assert.Equal(t, out, p1.Apply(bits))
	assert.NotEqual(t, bits, out)

	count := 0
	for _, b := range out {
		if b {
			count++
		}
	}
	assert.Equal(t, 22, count)

	assert.Panics(t, func() { p0.Apply(bits[:10]) })
}

func TestEncoder(t *testing.T) {
	therm := wisard.LinearThermometer{Resolution: 3}
	enc := wisard.NewEncoder(wisard.Slice{Start: 0, End: 8}, therm, []byte("seed"))

	values := []uint8{255, 0, 128}
	bits := enc.Encode(values)
	require.Len(t, bits, enc.InputSize(len(values)))

	ones := 0
	for _, b := range bits {
		if b {
			ones++
		}
	}
	assert.Equal(t, 5, ones)

	// The permutation depends only on the seed and the input size.
	assert.Equal(t, bits, wisard.NewEncoder(enc.Slice, therm, []byte("seed")).Encode(values))
}

func TestGenAddresses(t *testing.T) {
	bits := []bool{true, false, true, true, false}
	addrs, err := wisard.GenAddresses(bits, 2, 7)
	require.NoError(t, err)
	assert.Equal(t, []lut.Address{
		{Label: 7, Index: 0, Addr: 1},
		{Label: 7, Index: 1, Addr: 3},
		{Label: 7, Index: 2, Addr: 0},
	}, addrs)

	for _, size := range []int{1, 3, 5, 8} {
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			addrs, err := wisard.GenAddresses(bits, size, 0)
			require.NoError(t, err)
			assert.Len(t, addrs, wisard.NumLuts(len(bits), size))
			for _, a := range addrs {
				assert.Less(t, uint64(a.Addr), uint64(1)<<size)
			}
		})
	}

	_, err = wisard.GenAddresses(bits, 0, 0)
	assert.Error(t, err)
	_, err = wisard.GenAddresses(bits, lut.MaxAddressSize+1, 0)
	assert.Error(t, err)
}

func TestEncodeDataset(t *testing.T) {
	enc := wisard.NewEncoder(wisard.Slice{Start: 0, End: 8}, wisard.LinearThermometer{Resolution: 4}, nil)

	addrs, numLuts, err := wisard.EncodeDataset(enc, testSamples, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, numLuts)
	require.Len(t, addrs, numLuts*len(testSamples))
	for i, a := range addrs {
		assert.Equal(t, testSamples[i/numLuts].Label, a.Label)
		assert.EqualValues(t, i%numLuts, a.Index)
	}

	_, _, err = wisard.EncodeDataset(enc, append(testSamples, wisard.Sample{Values: []uint8{1}}), 5)
	assert.Error(t, err)
}

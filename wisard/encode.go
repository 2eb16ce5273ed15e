package wisard

import (
	"fmt"
	"math"

	"github.com/wisardfhe/tfhe-lut/math/csprng"
)

// Slice keeps the bits [Start, End) of every value.
type Slice struct {
	Start, End int
}

// Width returns the number of bits kept.
func (s Slice) Width() int {
	return s.End - s.Start
}

// Validate checks if the slice is a non-empty range of dataBits bits.
func (s Slice) Validate(dataBits int) error {
	if s.Start < 0 || s.End <= s.Start || s.End > dataBits || dataBits > 8 {
		return fmt.Errorf("bit range [%d, %d) not within %d bits", s.Start, s.End, dataBits)
	}
	return nil
}

// Apply returns the sliced values.
func (s Slice) Apply(values []uint8) []uint8 {
	mask := uint8(1<<s.Width() - 1)
	vOut := make([]uint8, len(values))
	for i, v := range values {
		vOut[i] = v >> s.Start & mask
	}
	return vOut
}

// Thermometer encodes a value as a unary code of Size bits.
type Thermometer interface {
	// Size returns the number of bits of a code.
	Size() int
	// Ones returns the number of bits set in the code of v, a value of width bits.
	Ones(v uint8, width int) int
}

// LinearThermometer splits the value range into Size+1 equal intervals.
type LinearThermometer struct {
	Resolution int
}

// Size implements the Thermometer interface.
func (t LinearThermometer) Size() int {
	return t.Resolution
}

// Ones implements the Thermometer interface.
func (t LinearThermometer) Ones(v uint8, width int) int {
	return int(uint64(v) * uint64(t.Resolution+1) >> width)
}

// LogThermometer sets a number of bits proportional to log2(v+1).
type LogThermometer struct {
	Resolution int
}

// Size implements the Thermometer interface.
func (t LogThermometer) Size() int {
	return t.Resolution
}

// Ones implements the Thermometer interface.
func (t LogThermometer) Ones(v uint8, width int) int {
	ones := int(math.Round(math.Log2(float64(v)+1) / float64(width) * float64(t.Resolution)))
	return min(ones, t.Resolution)
}

// ParseThermometer returns the thermometer named name ("linear" or "log").
func ParseThermometer(name string, resolution int) (Thermometer, error) {
	if resolution < 1 {
		return nil, fmt.Errorf("thermometer size %d not positive", resolution)
	}
	switch name {
	case "linear":
		return LinearThermometer{Resolution: resolution}, nil
	case "log":
		return LogThermometer{Resolution: resolution}, nil
	}
	return nil, fmt.Errorf("unknown thermometer %q", name)
}

// Permutation is a fixed random reordering of n bits.
type Permutation struct {
	perm []int
}

// NewPermutation returns the permutation of n bits drawn from seed.
// The same seed always yields the same permutation.
func NewPermutation(n int, seed []byte) Permutation {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	us := csprng.NewUniformSamplerWithSeed(seed, csprng.XOFBlake2b)
	us.Shuffle(n, func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
	return Permutation{perm: perm}
}

// Len returns the number of permuted bits.
func (p Permutation) Len() int {
	return len(p.perm)
}

// Apply returns bits reordered by p.
func (p Permutation) Apply(bits []bool) []bool {
	if len(bits) != len(p.perm) {
		panic("permutation length mismatch")
	}
	bOut := make([]bool, len(bits))
	for i, j := range p.perm {
		bOut[i] = bits[j]
	}
	return bOut
}

// Encoder turns samples into bit vectors:
// it slices every value, encodes it with a thermometer,
// and permutes the concatenated codes.
type Encoder struct {
	Slice       Slice
	Thermometer Thermometer
	Seed        []byte

	perm Permutation
}

// NewEncoder returns a new Encoder.
func NewEncoder(slice Slice, therm Thermometer, seed []byte) *Encoder {
	return &Encoder{Slice: slice, Thermometer: therm, Seed: seed}
}

// InputSize returns the number of bits of the encoding of numValues values.
func (e *Encoder) InputSize(numValues int) int {
	return numValues * e.Thermometer.Size()
}

// Encode returns the bit vector of values.
// Encode is not safe for concurrent use.
func (e *Encoder) Encode(values []uint8) []bool {
	size := e.Thermometer.Size()
	width := e.Slice.Width()

	bits := make([]bool, e.InputSize(len(values)))
	for i, v := range e.Slice.Apply(values) {
		ones := e.Thermometer.Ones(v, width)
		for j := 0; j < ones; j++ {
			bits[i*size+j] = true
		}
	}

	if e.perm.Len() != len(bits) {
		e.perm = NewPermutation(len(bits), e.Seed)
	}
	return e.perm.Apply(bits)
}

// Package csprng implements cryptographically secure samplers over 64-bit words.
package csprng

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// SeedSize is the size of the seed in bytes.
const SeedSize = 32

// bufSize is the number of bytes read from the XOF at once.
const bufSize = 8192

// XOF selects the extendable-output function backing a sampler.
// All choices produce uniformly distributed words; only the byte stream differs.
type XOF int

const (
	// XOFBlake2b uses BLAKE2b-XOF.
	XOFBlake2b XOF = iota
	// XOFShake256 uses SHAKE256.
	XOFShake256
	// XOFBlake3 uses BLAKE3 in extended output mode.
	XOFBlake3
)

// String implements fmt.Stringer.
func (x XOF) String() string {
	switch x {
	case XOFBlake2b:
		return "blake2b"
	case XOFShake256:
		return "shake256"
	case XOFBlake3:
		return "blake3"
	}
	return fmt.Sprintf("XOF(%d)", int(x))
}

// ParseXOF parses the name of an XOF, as returned by String.
func ParseXOF(name string) (XOF, error) {
	for _, x := range []XOF{XOFBlake2b, XOFShake256, XOFBlake3} {
		if x.String() == name {
			return x, nil
		}
	}
	return 0, fmt.Errorf("unknown xof %q", name)
}

func newXOF(seed []byte, x XOF) io.Reader {
	switch x {
	case XOFBlake2b:
		xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, seed)
		if err != nil {
			panic(err)
		}
		return xof
	case XOFShake256:
		xof := sha3.NewShake256()
		xof.Write(seed)
		return xof
	case XOFBlake3:
		h := blake3.New()
		h.Write(seed)
		return h.Digest()
	}
	panic("invalid xof")
}

// UniformSampler samples values from uniform distribution.
// This uses an XOF keyed by the seed as its source of randomness.
//
// UniformSampler is not safe for concurrent use.
type UniformSampler struct {
	xof XOF
	src io.Reader

	buf [bufSize]byte
	ptr int
}

// NewUniformSampler creates a new UniformSampler with BLAKE2b-XOF and a random seed.
//
// Panics when reading from crypto/rand fails.
func NewUniformSampler() *UniformSampler {
	return NewUniformSamplerWithXOF(XOFBlake2b)
}

// NewUniformSamplerWithXOF creates a new UniformSampler with the given XOF and a random seed.
//
// Panics when reading from crypto/rand fails.
func NewUniformSamplerWithXOF(x XOF) *UniformSampler {
	seed := make([]byte, SeedSize)
	if _, err := rand.Read(seed); err != nil {
		panic(err)
	}
	return NewUniformSamplerWithSeed(seed, x)
}

// NewUniformSamplerWithSeed creates a new UniformSampler from seed.
// Two samplers with the same seed and XOF output the same stream.
//
// Panics if the seed is longer than 64 bytes.
func NewUniformSamplerWithSeed(seed []byte, x XOF) *UniformSampler {
	if len(seed) > 64 {
		panic("seed longer than 64 bytes")
	}

	s := &UniformSampler{
		xof: x,
		src: newXOF(seed, x),
		ptr: bufSize,
	}
	return s
}

// XOF returns the XOF backing this sampler.
func (s *UniformSampler) XOF() XOF {
	return s.xof
}

// Derive returns a new UniformSampler seeded from this sampler's stream.
// The result is independent of s afterwards.
func (s *UniformSampler) Derive() *UniformSampler {
	seed := make([]byte, SeedSize)
	s.Read(seed)
	return NewUniformSamplerWithSeed(seed, s.xof)
}

// Read implements io.Reader.
// It never fails.
func (s *UniformSampler) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if s.ptr == bufSize {
			s.refill()
		}
		c := copy(p[n:], s.buf[s.ptr:])
		s.ptr += c
		n += c
	}
	return n, nil
}

func (s *UniformSampler) refill() {
	if _, err := io.ReadFull(s.src, s.buf[:]); err != nil {
		panic(err)
	}
	s.ptr = 0
}

// Sample uniformly samples a 64-bit word.
func (s *UniformSampler) Sample() uint64 {
	if s.ptr+8 > bufSize {
		s.refill()
	}
	x := binary.LittleEndian.Uint64(s.buf[s.ptr : s.ptr+8])
	s.ptr += 8
	return x
}

// SampleN uniformly samples an integer in [0, n).
//
// Panics if n == 0.
func (s *UniformSampler) SampleN(n uint64) uint64 {
	if n == 0 {
		panic("SampleN with n = 0")
	}

	bound := math.MaxUint64 - (math.MaxUint64 % n)
	for {
		x := s.Sample()
		if x < bound {
			return x % n
		}
	}
}

// SampleFloat uniformly samples a float64 in [0, 1).
func (s *UniformSampler) SampleFloat() float64 {
	return float64(s.Sample()>>11) / (1 << 53)
}

// SampleSliceAssign samples uniform values to v.
func (s *UniformSampler) SampleSliceAssign(v []uint64) {
	for i := range v {
		v[i] = s.Sample()
	}
}

// SampleBinarySliceAssign samples uniform binary values to v.
func (s *UniformSampler) SampleBinarySliceAssign(v []uint64) {
	for i := 0; i < len(v); i += 64 {
		r := s.Sample()
		for j := i; j < i+64 && j < len(v); j++ {
			v[j] = r & 1
			r >>= 1
		}
	}
}

// Shuffle pseudo-randomizes the order of n elements using the Fisher-Yates method.
func (s *UniformSampler) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := int(s.SampleN(uint64(i + 1)))
		swap(i, j)
	}
}

package csprng

import (
	"math"
)

// GaussianSampler samples torus values from a centered normal distribution.
//
// GaussianSampler is not safe for concurrent use.
type GaussianSampler struct {
	baseSampler *UniformSampler

	spare    float64
	hasSpare bool
}

// NewGaussianSampler creates a new GaussianSampler drawing from base.
func NewGaussianSampler(base *UniformSampler) *GaussianSampler {
	return &GaussianSampler{
		baseSampler: base,
	}
}

// normFloat samples from N(0, 1) using the Box-Muller transform.
func (s *GaussianSampler) normFloat() float64 {
	if s.hasSpare {
		s.hasSpare = false
		return s.spare
	}

	u := s.baseSampler.SampleFloat()
	for u == 0 {
		u = s.baseSampler.SampleFloat()
	}
	v := s.baseSampler.SampleFloat()

	r := math.Sqrt(-2 * math.Log(u))
	sin, cos := math.Sincos(2 * math.Pi * v)

	s.spare = r * sin
	s.hasSpare = true
	return r * cos
}

// SampleFloat samples from N(0, stdDev^2).
func (s *GaussianSampler) SampleFloat(stdDev float64) float64 {
	return s.normFloat() * stdDev
}

// SampleTorus samples from N(0, stdDev^2) and maps the result onto the 64-bit torus.
// stdDev is given in torus units, i.e. relative to 1.
func (s *GaussianSampler) SampleTorus(stdDev float64) uint64 {
	return floatToTorus(s.normFloat() * stdDev)
}

// SampleTorusSliceAddAssign adds torus Gaussian samples to v.
func (s *GaussianSampler) SampleTorusSliceAddAssign(stdDev float64, v []uint64) {
	for i := range v {
		v[i] += s.SampleTorus(stdDev)
	}
}

// floatToTorus maps a real number to its 64-bit torus representative.
func floatToTorus(x float64) uint64 {
	const scale = 1 << 64
	if math.Abs(x) < 0.5 {
		return uint64(int64(math.Round(x * scale)))
	}

	f := x - math.Floor(x)
	r := math.Round(f * scale)
	if r >= scale {
		return 0
	}
	return uint64(r)
}

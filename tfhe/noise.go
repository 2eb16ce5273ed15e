package tfhe

import (
	"math"

	"github.com/montanaflynn/stats"
)

// NoiseStats summarizes the distance between decrypted phases and their expected values.
// All values are in torus units.
type NoiseStats struct {
	// Variance is the mean of squared distances.
	Variance float64
	// StdDev is the square root of Variance.
	StdDev float64
	// Max is the largest distance.
	Max float64
	// Log2StdDev is log2(StdDev), or -Inf if StdDev is zero.
	Log2StdDev float64
}

// MeasureNoise compares phases with expected element-wise.
//
// Panics when phases and expected have different lengths.
func MeasureNoise(phases, expected []Torus) NoiseStats {
	if len(phases) != len(expected) {
		panic("length mismatch")
	}
	if len(phases) == 0 {
		return NoiseStats{Log2StdDev: math.Inf(-1)}
	}

	dist := make(stats.Float64Data, len(phases))
	sq := make(stats.Float64Data, len(phases))
	for i := range phases {
		dist[i] = math.Ldexp(float64(phases[i].Distance(expected[i])), -64)
		sq[i] = dist[i] * dist[i]
	}

	variance, _ := stats.Mean(sq)
	maxDist, _ := stats.Max(dist)
	stdDev := math.Sqrt(variance)

	return NoiseStats{
		Variance:   variance,
		StdDev:     stdDev,
		Max:        maxDist,
		Log2StdDev: math.Log2(stdDev),
	}
}

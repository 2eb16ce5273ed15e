//go:build purego

package poly

import (
	"math"
	"math/bits"
)

const fftBackend = "radix2"

// fftPlan computes complex FFTs of a fixed power-of-two length
// with an iterative radix-2 algorithm.
// Its tables are read-only, so a plan may be shared.
type fftPlan struct {
	m     int
	rev   []int
	roots []complex128
}

func newFFTPlan(m int) fftPlan {
	logM := bits.Len(uint(m)) - 1

	rev := make([]int, m)
	for i := range rev {
		rev[i] = int(bits.Reverse64(uint64(i)) >> (64 - logM))
	}

	roots := make([]complex128, m/2)
	for k := range roots {
		sin, cos := math.Sincos(-2 * math.Pi * float64(k) / float64(m))
		roots[k] = complex(cos, sin)
	}

	return fftPlan{m: m, rev: rev, roots: roots}
}

func (f fftPlan) transform(v []complex128, conj bool) {
	for i, j := range f.rev {
		if i < j {
			v[i], v[j] = v[j], v[i]
		}
	}

	for size := 2; size <= f.m; size <<= 1 {
		half := size >> 1
		step := f.m / size
		for start := 0; start < f.m; start += size {
			for k := 0; k < half; k++ {
				w := f.roots[k*step]
				if conj {
					w = complex(real(w), -imag(w))
				}
				u := v[start+k]
				t := w * v[start+k+half]
				v[start+k] = u + t
				v[start+k+half] = u - t
			}
		}
	}
}

// forward computes v[k] = sum_j v[j] * exp(-2 pi i jk / m) in place.
func (f fftPlan) forward(v []complex128) {
	f.transform(v, false)
}

// inverse computes v[j] = sum_k v[k] * exp(2 pi i jk / m) in place.
// The result is not normalized.
func (f fftPlan) inverse(v []complex128) {
	f.transform(v, true)
}

func (f fftPlan) shallowCopy() fftPlan {
	return f
}

//go:build !purego

package poly

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

const fftBackend = "gonum"

// fftPlan computes complex FFTs of a fixed length.
// It owns a work buffer, so it is not safe for concurrent use.
type fftPlan struct {
	fft *fourier.CmplxFFT
}

func newFFTPlan(m int) fftPlan {
	return fftPlan{fft: fourier.NewCmplxFFT(m)}
}

// forward computes v[k] = sum_j v[j] * exp(-2 pi i jk / m) in place.
func (f fftPlan) forward(v []complex128) {
	f.fft.Coefficients(v, v)
}

// inverse computes v[j] = sum_k v[k] * exp(2 pi i jk / m) in place.
// The result is not normalized.
func (f fftPlan) inverse(v []complex128) {
	f.fft.Sequence(v, v)
}

func (f fftPlan) shallowCopy() fftPlan {
	return newFFTPlan(f.fft.Len())
}

package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// ErrShortSeries indicates too few samples for the requested estimate.
var ErrShortSeries = errors.New("analysis: series too short")

// Spectrum returns the one-sided amplitude spectrum of a uniformly sampled
// series with its mean removed. Frequencies are angular (rad/s).
func Spectrum(series []float64, dt float64) (omega, amp []float64, err error) {
	n := len(series)
	if n < 4 || dt <= 0 {
		return nil, nil, ErrShortSeries
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range series {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	half := n / 2
	omega = make([]float64, half)
	amp = make([]float64, half)
	for i := 0; i < half; i++ {
		omega[i] = 2 * math.Pi * float64(i) / (float64(n) * dt)
		amp[i] = 2 * cmplx.Abs(coeffs[i]) / float64(n)
	}
	return omega, amp, nil
}

// DominantFrequency is the angular frequency of the largest spectral peak,
// refined by a parabola through the neighbouring bins.
func DominantFrequency(series []float64, dt float64) (float64, error) {
	omega, amp, err := Spectrum(series, dt)
	if err != nil {
		return 0, err
	}

	best := 1
	for i := 2; i < len(amp); i++ {
		if amp[i] > amp[best] {
			best = i
		}
	}
	if best <= 0 || best >= len(amp)-1 {
		return omega[best], nil
	}

	a, b, c := amp[best-1], amp[best], amp[best+1]
	den := a - 2*b + c
	if den == 0 {
		return omega[best], nil
	}
	shift := 0.5 * (a - c) / den
	return omega[best] + shift*(omega[1]-omega[0]), nil
}

package analysis

import (
	"fmt"
	"math"
)

type Peak struct {
	Index int
	Value float64
}

// Peaks lists the positive local maxima of series.
func Peaks(series []float64) []Peak {
	var peaks []Peak
	for i := 1; i < len(series)-1; i++ {
		if series[i] > 0 && series[i] > series[i-1] && series[i] >= series[i+1] {
			peaks = append(peaks, Peak{Index: i, Value: series[i]})
		}
	}
	return peaks
}

// LogDecrement estimates the damping ratio of a free decay from its
// positive peaks: delta = ln(x_0/x_n)/n, xi = delta/sqrt(4 pi^2 + delta^2).
func LogDecrement(series []float64) (float64, error) {
	peaks := Peaks(series)
	if len(peaks) < 2 {
		return 0, fmt.Errorf("%w: %d peaks, need 2", ErrShortSeries, len(peaks))
	}

	first, last := peaks[0], peaks[len(peaks)-1]
	cycles := float64(len(peaks) - 1)
	delta := math.Log(first.Value/last.Value) / cycles
	return delta / math.Sqrt(4*math.Pi*math.Pi+delta*delta), nil
}

// RayleighRatio is the damping ratio alpha/(2w) + beta*w/2 that Rayleigh
// damping gives at angular frequency w.
func RayleighRatio(alpha, beta, omega float64) float64 {
	return alpha/(2*omega) + beta*omega/2
}

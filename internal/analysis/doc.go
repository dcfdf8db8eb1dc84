// Package analysis measures the damping a run actually produced.
//
//   - [Spectrum], [DominantFrequency]: FFT of a recorded response
//   - [LogDecrement]: damping ratio of a free decay from successive peaks
//   - [RayleighRatio]: the ratio Rayleigh damping predicts at a frequency
//   - [PhasePortrait]: displacement against velocity for one probe
//
// Comparing LogDecrement with RayleighRatio at the dominant frequency
// checks a calibration end to end:
//
//	w, _ := analysis.DominantFrequency(series, dt)
//	got, _ := analysis.LogDecrement(series)
//	want := analysis.RayleighRatio(c.Alpha, c.Beta, w)
package analysis

// Package damping calibrates Rayleigh damping for explicit time integration.
//
// Given two reference angular frequencies, target damping ratios and the
// time step, [Calibrate] derives the coefficients alpha and beta of
// C = alpha*M + beta*K. For the CDF scheme it additionally derives the
// secondary pair (alpha_b, beta_b) and the blending coefficients b_0..b_2.
//
// # Example
//
//	s, err := damping.NewBuilder().
//	    Scheme("Explicit_Central_Differences").
//	    TimeStep(5e-5).
//	    Frequencies(5, 50).
//	    Ratios(0.02, 0.02).
//	    Build()
//	c, err := damping.Calibrate(s)
//	c.Apply(store)
//
// Calibrate is a pure function. It never writes to a store; callers apply
// the result once calibration has succeeded.
package damping

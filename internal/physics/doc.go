// Package physics provides lumped-mass test models with closed-form internal
// forces and, where available, closed-form natural frequencies.
//
// Available models:
//   - [Oscillator]: single mass on a spring, optional harmonic load
//   - [SpringChain]: n masses between two walls, w_j = 2 sqrt(k/m) sin(j pi/(2(n+1)))
//   - [Rotor]: spring chain whose nodes also carry torsionally restrained
//     rotation vectors
package physics

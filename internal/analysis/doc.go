// Package analysis provides post-run diagnostics for particle simulations.
//
//   - [PowerSpectrum]: magnitude spectrum of an energy series
//   - [DominantFrequency]: strongest non-DC frequency of a series
//   - [SpeedHistogram]: distribution of particle speeds
//   - [RadialDistribution]: pair correlation g(r) under periodic boundaries
//
// # Oscillations
//
// Kinetic and potential energy exchange at the lattice vibration frequency
// early in a run:
//
//	freq, err := analysis.DominantFrequency(series.Kinetic, dt)
package analysis

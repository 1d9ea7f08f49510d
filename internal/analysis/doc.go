// Package analysis provides spectral tools for recorded runs.
//
//   - [FFT]: radix-2 discrete Fourier transform
//   - [PowerSpectrum]: magnitude spectrum, zero-padded to a power of two
//   - [DominantFrequency]: strongest non-DC frequency of a sampled series
//
// The CLI uses these on the separation series of stored dynamics runs.
package analysis

// Package analysis summarizes magnetization series.
//
// The package includes:
//
//   - [Summarize]: equilibrium averages, susceptibility and Binder cumulant
//   - [Autocorrelation] and [IntegratedTime]: sweep-to-sweep correlation
//   - [PowerSpectrum]: spectral content of m(t)
//
// # Burn-in
//
// Early sweeps carry the memory of the random initial state. Pass a burn-in
// to drop them before averaging:
//
//	s := analysis.Summarize(series, 64, 0.44, 100)
//	fmt.Println(s.MeanAbs, s.Susceptibility)
package analysis

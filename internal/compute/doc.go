// Package compute provides the sweep backends used by the runner.
//
// Two backends are available:
//
//   - serial: single-spin-flip Metropolis with one shared random stream
//   - checkerboard: red-black decomposition updated in parallel row bands
//
// # Checkerboard Decomposition
//
// On an even-sized torus the sites with (x+y) even never neighbor each other,
// so each color can be updated concurrently while the other color is held
// fixed. Every band owns its own random stream:
//
//	backend := compute.NewCheckerboardBackend(runtime.NumCPU())
//	stats := backend.Sweep(l, params, src)
//
// The band count is fixed, so a seed reproduces the same trajectory no matter
// how many workers run it.
package compute

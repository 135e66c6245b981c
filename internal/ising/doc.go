// Package ising implements the 2D Ising model on a toroidal lattice with
// single-spin-flip Metropolis dynamics.
//
// The package is split along ownership lines:
//
//   - [Params]: immutable coupling, temperature, field and sweep count
//   - [LocalEnergy]: energy of one site given its four neighbors
//   - [Stepper]: one sweep of size² proposed flips ([Metropolis] is serial)
//   - [Runner]: runs the sweeps, samples magnetization and notifies sinks
//
// # Example
//
//	src := rng.New(42)
//	l, _ := lattice.New(64, 0.5, src)
//	r := ising.NewRunner(ising.NewMetropolis(), src)
//	r.AddMagnetizationSink(sink)
//	result, err := r.Run(ctx, l, ising.Params{J: 1, Beta: 0.9, B: 0.1, Steps: 100})
//
// # Thread Safety
//
// A Runner runs once and is not safe for concurrent use. The lattice must not
// be read by anyone else while a sweep is in progress. Parallel sweeps live in
// the compute package and use a checkerboard decomposition.
package ising

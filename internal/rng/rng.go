// Package rng provides the explicit random handles threaded through lattice
// initialization and Metropolis sweeps.
package rng

import "math/rand/v2"

// Source is the subset of *rand.Rand the simulation draws from.
type Source interface {
	IntN(n int) int
	Float64() float64
	Uint64() uint64
}

// New returns a deterministic PCG stream for the given seed.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// Split derives k independent streams from src. The seeds are drawn in order,
// so the result is reproducible for a fixed parent state.
func Split(src Source, k int) []*rand.Rand {
	if k <= 0 {
		return nil
	}
	streams := make([]*rand.Rand, k)
	for i := range streams {
		streams[i] = rand.New(rand.NewPCG(src.Uint64(), src.Uint64()))
	}
	return streams
}

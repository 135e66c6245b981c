package ising

import "github.com/san-kum/isingsim/internal/lattice"

// LocalEnergy returns the interaction and field energy of site (x, y) in the
// current configuration. Neighbor lookups wrap around the torus.
func LocalEnergy(v lattice.View, x, y int, j, b float64) float64 {
	s := float64(v.Get(x, y))
	neighbors := v.Get(x-1, y) + v.Get(x+1, y) + v.Get(x, y-1) + v.Get(x, y+1)
	return -j*s*float64(neighbors) - b*s
}

// FlipDelta is the energy change from flipping (x, y). Flipping negates the
// site's local energy, so ΔE = -2·E_local.
func FlipDelta(v lattice.View, x, y int, j, b float64) float64 {
	return -2 * LocalEnergy(v, x, y, j, b)
}

// TotalEnergy sums the lattice Hamiltonian, counting each bond once.
func TotalEnergy(v lattice.View, j, b float64) float64 {
	n := v.Size()
	bonds, field := 0, 0
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			s := int(v.Get(x, y))
			bonds += s * int(v.Get(x+1, y)+v.Get(x, y+1))
			field += s
		}
	}
	return -j*float64(bonds) - b*float64(field)
}

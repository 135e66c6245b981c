package metrics

import (
	"github.com/san-kum/isingsim/internal/ising"
	"github.com/san-kum/isingsim/internal/lattice"
)

// Energy is the mean energy per site across observed sweeps.
type Energy struct {
	name    string
	j, b    float64
	samples int
	total   float64
}

func NewEnergy(j, b float64) *Energy {
	return &Energy{name: "energy_per_site", j: j, b: b}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(v lattice.View, _ ising.SweepStats) {
	n := v.Size()
	e.total += ising.TotalEnergy(v, e.j, e.b) / float64(n*n)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
}

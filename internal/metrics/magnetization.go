package metrics

import (
	"math"

	"github.com/san-kum/isingsim/internal/ising"
	"github.com/san-kum/isingsim/internal/lattice"
)

// AbsMagnetization averages |m| over sweeps, which stays meaningful when the
// ordered phase flips sign.
type AbsMagnetization struct {
	samples int
	total   float64
}

func NewAbsMagnetization() *AbsMagnetization { return &AbsMagnetization{} }

func (a *AbsMagnetization) Name() string { return "mean_abs_magnetization" }

func (a *AbsMagnetization) Observe(v lattice.View, _ ising.SweepStats) {
	a.total += math.Abs(v.Magnetization())
	a.samples++
}

func (a *AbsMagnetization) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.total / float64(a.samples)
}

func (a *AbsMagnetization) Reset() {
	a.total = 0
	a.samples = 0
}

// Defaults returns the metrics every run records.
func Defaults(p ising.Params) []ising.Metric {
	return []ising.Metric{
		NewEnergy(p.J, p.B),
		NewAcceptanceRate(),
		NewDegenerate(),
		NewAbsMagnetization(),
	}
}

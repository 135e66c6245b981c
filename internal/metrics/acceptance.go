package metrics

import (
	"github.com/san-kum/isingsim/internal/ising"
	"github.com/san-kum/isingsim/internal/lattice"
)

// AcceptanceRate is the fraction of proposed flips accepted over the run.
type AcceptanceRate struct {
	stats ising.SweepStats
}

func NewAcceptanceRate() *AcceptanceRate { return &AcceptanceRate{} }

func (a *AcceptanceRate) Name() string { return "acceptance_rate" }

func (a *AcceptanceRate) Observe(_ lattice.View, stats ising.SweepStats) {
	a.stats = a.stats.Add(stats)
}

func (a *AcceptanceRate) Value() float64 { return a.stats.AcceptanceRate() }

func (a *AcceptanceRate) Reset() { a.stats = ising.SweepStats{} }

// Degenerate counts trials rejected for a non-finite acceptance probability.
type Degenerate struct {
	count int
}

func NewDegenerate() *Degenerate { return &Degenerate{} }

func (d *Degenerate) Name() string { return "degenerate_trials" }

func (d *Degenerate) Observe(_ lattice.View, stats ising.SweepStats) {
	d.count += stats.Degenerate
}

func (d *Degenerate) Value() float64 { return float64(d.count) }
func (d *Degenerate) Reset()         { d.count = 0 }

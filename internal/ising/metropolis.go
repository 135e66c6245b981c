package ising

import (
	"math"

	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/rng"
)

// SweepStats counts the outcome of proposed flips.
type SweepStats struct {
	Proposed   int
	Accepted   int
	Degenerate int
}

func (s SweepStats) Add(o SweepStats) SweepStats {
	return SweepStats{
		Proposed:   s.Proposed + o.Proposed,
		Accepted:   s.Accepted + o.Accepted,
		Degenerate: s.Degenerate + o.Degenerate,
	}
}

func (s SweepStats) AcceptanceRate() float64 {
	if s.Proposed == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Proposed)
}

// Stepper performs one sweep of size² proposed flips in place.
type Stepper interface {
	Name() string
	Sweep(l *lattice.Lattice, p Params, src rng.Source) SweepStats
}

// Metropolis is the serial single-spin-flip stepper. Sites are drawn
// uniformly with replacement, so a sweep may visit a site twice or not at all.
type Metropolis struct{}

func NewMetropolis() *Metropolis { return &Metropolis{} }

func (m *Metropolis) Name() string { return "serial" }

func (m *Metropolis) Sweep(l *lattice.Lattice, p Params, src rng.Source) SweepStats {
	n := l.Size()
	stats := SweepStats{Proposed: n * n}

	for i := 0; i < n*n; i++ {
		x := src.IntN(n)
		y := src.IntN(n)
		dE := FlipDelta(l, x, y, p.J, p.B)

		accepted, degenerate := Accept(dE, p.Beta, src)
		if degenerate {
			stats.Degenerate++
		}
		if accepted {
			l.Flip(x, y)
			stats.Accepted++
		}
	}
	return stats
}

// Accept applies the Metropolis rule. Energy-lowering moves are taken without
// consuming a uniform draw. A NaN ΔE or a non-finite exponent is reported as
// degenerate and rejected.
func Accept(dE, beta float64, src rng.Source) (accepted, degenerate bool) {
	if math.IsNaN(dE) {
		return false, true
	}
	if dE < 0 {
		return true, false
	}
	arg := -beta * dE
	if math.IsNaN(arg) || math.IsInf(arg, 0) {
		return false, true
	}
	return src.Float64() < math.Exp(arg), false
}

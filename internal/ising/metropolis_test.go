package ising

import (
	"math"
	"testing"

	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/rng"
)

func TestAccept(t *testing.T) {
	tests := []struct {
		name       string
		dE, beta   float64
		u          float64
		accepted   bool
		degenerate bool
		draws      int
	}{
		{"downhill skips the draw", -4, 1.0, 0.99, true, false, 0},
		{"infinite temperature", 8, 0.0, 0.999999, true, false, 1},
		{"uphill rejected", 8, 1.0, 0.5, false, false, 1},
		{"uphill accepted", 0.1, 1.0, 0.5, true, false, 1},
		{"zero delta", 0, 5.0, 0.999, true, false, 1},
		{"NaN delta", math.NaN(), 1.0, 0.1, false, true, 0},
		{"infinite beta", 8, math.Inf(1), 0.0, false, true, 0},
		{"NaN beta", 8, math.NaN(), 0.0, false, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &scriptedSource{ints: []int{0}, floats: []float64{tt.u}}
			accepted, degenerate := Accept(tt.dE, tt.beta, src)
			if accepted != tt.accepted || degenerate != tt.degenerate {
				t.Errorf("Accept(%v, %v) = (%v, %v), want (%v, %v)",
					tt.dE, tt.beta, accepted, degenerate, tt.accepted, tt.degenerate)
			}
			if src.nf != tt.draws {
				t.Errorf("expected %d uniform draws, got %d", tt.draws, src.nf)
			}
		})
	}
}

func TestSweepScriptedInfiniteTemperature(t *testing.T) {
	l, err := lattice.FromSpins(2, []lattice.Spin{
		lattice.Up, lattice.Down,
		lattice.Down, lattice.Up,
	})
	if err != nil {
		t.Fatal(err)
	}

	// trials: (0,0) (1,0) (0,0) (1,1)
	src := &scriptedSource{ints: []int{0, 0, 1, 0, 0, 0, 1, 1}, floats: []float64{0.999}}
	stats := NewMetropolis().Sweep(l, Params{J: 1.0, Beta: 0.0}, src)

	if stats.Proposed != 4 || stats.Accepted != 4 {
		t.Errorf("expected 4/4 accepted, got %d/%d", stats.Accepted, stats.Proposed)
	}

	want := []lattice.Spin{
		lattice.Up, lattice.Up,
		lattice.Down, lattice.Down,
	}
	got := l.Spins()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("site %d: expected %d, got %d (grid %v)", i, want[i], got[i], got)
		}
	}
}

func TestSweepLowTemperatureAligned(t *testing.T) {
	src := rng.New(2024)
	l, err := lattice.New(4, 1.0, src)
	if err != nil {
		t.Fatal(err)
	}

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if d := FlipDelta(l, x, y, 1.0, 0.0); d < 0 {
				t.Fatalf("aligned lattice has dE=%f at (%d,%d)", d, x, y)
			}
		}
	}

	stats := NewMetropolis().Sweep(l, Params{J: 1.0, Beta: 10.0, Steps: 1, Density: 1.0}, src)
	if stats.Proposed != 16 {
		t.Errorf("expected 16 trials, got %d", stats.Proposed)
	}
	if m := l.Magnetization(); math.Abs(m-1.0) > 0.1 {
		t.Errorf("expected m≈1 at low temperature, got %f", m)
	}
}

func TestSweepInfiniteTemperatureAcceptance(t *testing.T) {
	src := rng.New(5)
	l, _ := lattice.New(8, 0.5, src)
	p := Params{J: 1.0, Beta: 0.0, B: 0.3, Steps: 50, Density: 0.5}

	var total SweepStats
	for i := 0; i < p.Steps; i++ {
		total = total.Add(NewMetropolis().Sweep(l, p, src))
	}
	if rate := total.AcceptanceRate(); rate < 0.99 {
		t.Errorf("expected acceptance ≈1 at beta=0, got %f", rate)
	}
}

func TestSweepNumericDegeneracy(t *testing.T) {
	src := rng.New(9)
	l, _ := lattice.New(6, 1.0, src)
	before := l.Spins()

	stats := NewMetropolis().Sweep(l, Params{J: math.NaN(), Beta: 1.0}, src)
	if stats.Degenerate != 36 || stats.Accepted != 0 {
		t.Errorf("expected 36 degenerate rejections, got %+v", stats)
	}
	after := l.Spins()
	for i := range before {
		if before[i] != after[i] {
			t.Fatal("degenerate trials must not flip spins")
		}
	}
}

func TestSweepStats(t *testing.T) {
	var empty SweepStats
	if empty.AcceptanceRate() != 0 {
		t.Error("empty stats should report zero rate")
	}
	s := SweepStats{Proposed: 10, Accepted: 4}.Add(SweepStats{Proposed: 10, Accepted: 6, Degenerate: 1})
	if s.Proposed != 20 || s.Accepted != 10 || s.Degenerate != 1 {
		t.Errorf("unexpected sum %+v", s)
	}
	if s.AcceptanceRate() != 0.5 {
		t.Errorf("expected 0.5, got %f", s.AcceptanceRate())
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name  string
		p     Params
		valid bool
	}{
		{"defaults", Params{J: 1, Beta: 0.9, B: 0.1, Steps: 100, Density: 0.5}, true},
		{"zero steps", Params{Steps: 0, Density: 0.5}, true},
		{"negative steps", Params{Steps: -1, Density: 0.5}, false},
		{"density above one", Params{Density: 1.01}, false},
		{"negative density", Params{Density: -0.01}, false},
		{"NaN density", Params{Density: math.NaN()}, false},
		{"negative beta", Params{Beta: -0.1, Density: 0.5}, false},
		{"infinite beta", Params{Beta: math.Inf(1), Density: 0.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func BenchmarkMetropolisSweep64(b *testing.B) {
	src := rng.New(1)
	l, _ := lattice.New(64, 0.5, src)
	p := Params{J: 1.0, Beta: 0.44, Steps: 1, Density: 0.5}
	m := NewMetropolis()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Sweep(l, p, src)
	}
}

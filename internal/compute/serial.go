package compute

import (
	"github.com/san-kum/isingsim/internal/ising"
	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/rng"
)

type SerialBackend struct {
	m *ising.Metropolis
}

func NewSerialBackend() *SerialBackend {
	return &SerialBackend{m: ising.NewMetropolis()}
}

func (s *SerialBackend) Name() string    { return Serial }
func (s *SerialBackend) Available() bool { return true }
func (s *SerialBackend) Cleanup()        {}

func (s *SerialBackend) Sweep(l *lattice.Lattice, p ising.Params, src rng.Source) ising.SweepStats {
	return s.m.Sweep(l, p, src)
}

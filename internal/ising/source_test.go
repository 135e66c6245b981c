package ising

// scriptedSource replays fixed coordinate and uniform draws so sweeps can be
// checked trial by trial.
type scriptedSource struct {
	ints   []int
	floats []float64
	ni, nf int
}

func (s *scriptedSource) IntN(n int) int {
	v := s.ints[s.ni%len(s.ints)]
	s.ni++
	return v % n
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		s.nf++
		return 0.5
	}
	v := s.floats[s.nf%len(s.floats)]
	s.nf++
	return v
}

func (s *scriptedSource) Uint64() uint64 { return 0 }

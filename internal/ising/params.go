package ising

import (
	"fmt"
	"math"
)

// Params is fixed for the lifetime of a run.
type Params struct {
	J       float64
	Beta    float64
	B       float64
	Steps   int
	Density float64
}

// Validate rejects configurations that must never start a run. Non-finite J
// or Beta pass here; they surface per trial as numeric degeneracy.
func (p Params) Validate() error {
	if p.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", ErrInvalidConfiguration, p.Steps)
	}
	if math.IsNaN(p.Density) || p.Density < 0 || p.Density > 1 {
		return fmt.Errorf("%w: density must be in [0, 1], got %g", ErrInvalidConfiguration, p.Density)
	}
	if p.Beta < 0 {
		return fmt.Errorf("%w: beta must be non-negative, got %g", ErrInvalidConfiguration, p.Beta)
	}
	return nil
}

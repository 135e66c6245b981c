package ising

import (
	"errors"
	"fmt"
)

// Domain errors for simulation runs.
var (
	// ErrInvalidConfiguration indicates parameters rejected before a run starts.
	ErrInvalidConfiguration = errors.New("ising: invalid configuration")

	// ErrNumericDegeneracy marks trials whose acceptance probability was not
	// finite. Such trials are rejected and counted, never returned from Run.
	ErrNumericDegeneracy = errors.New("ising: non-finite acceptance probability")

	// ErrObserverFailure indicates a sink returned an error during notification.
	ErrObserverFailure = errors.New("ising: observer failed")

	// ErrRunnerState indicates Run was called on a runner that already ran.
	ErrRunnerState = errors.New("ising: runner already used")

	// ErrCanceled indicates the run was interrupted between sweeps.
	ErrCanceled = errors.New("ising: run canceled by context")
)

// ObserverError wraps a sink failure with the sweep it happened on.
// Sweep is -1 for failures during finalization.
type ObserverError struct {
	Sink    string
	Sweep   int
	Wrapped error
}

func (e *ObserverError) Error() string {
	if e.Sweep < 0 {
		return fmt.Sprintf("%s sink at finalization: %v", e.Sink, e.Wrapped)
	}
	return fmt.Sprintf("%s sink at sweep %d: %v", e.Sink, e.Sweep, e.Wrapped)
}

func (e *ObserverError) Unwrap() []error {
	return []error{ErrObserverFailure, e.Wrapped}
}

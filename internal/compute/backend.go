package compute

import (
	"fmt"
	"runtime"
	"sort"

	"github.com/san-kum/isingsim/internal/ising"
)

// Backend is a Stepper with lifecycle hooks.
type Backend interface {
	ising.Stepper
	Available() bool
	Cleanup()
}

const (
	Serial       = "serial"
	Checkerboard = "checkerboard"
	Auto         = "auto"

	// autoMinSize is the smallest lattice for which auto picks the
	// checkerboard backend.
	autoMinSize = 64
)

var constructors = map[string]func(workers int) Backend{
	Serial:       func(int) Backend { return NewSerialBackend() },
	Checkerboard: func(w int) Backend { return NewCheckerboardBackend(w) },
}

// ByName builds a backend. "auto" needs the lattice size and is resolved by
// AutoSelectBackend instead.
func ByName(name string, workers int) (Backend, error) {
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s (available: %v)", name, Names())
	}
	return fn(workers), nil
}

// Names lists the concrete backends in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AutoSelectBackend picks checkerboard for large even lattices on multi-core
// machines and serial otherwise.
func AutoSelectBackend(size, workers int) Backend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if size%2 == 0 && size >= autoMinSize && workers > 1 {
		return NewCheckerboardBackend(workers)
	}
	return NewSerialBackend()
}

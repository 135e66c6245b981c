// Package lattice stores the toroidal N×N grid of ±1 spins.
package lattice

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/isingsim/internal/rng"
)

var (
	ErrInvalidSize    = errors.New("lattice: size must be positive")
	ErrInvalidDensity = errors.New("lattice: density must be in [0, 1]")
	ErrInvalidSpin    = errors.New("lattice: spin must be +1 or -1")
)

// Spin is a two-valued site variable.
type Spin int8

const (
	Down Spin = -1
	Up   Spin = 1
)

// View is the read-only surface handed to observers.
type View interface {
	Size() int
	Get(x, y int) Spin
	Magnetization() float64
}

// Lattice stores spins in row-major order. All coordinates wrap modulo N.
type Lattice struct {
	n     int
	spins []Spin
}

// New allocates a size×size lattice and sets each site Up with probability
// density, drawing one uniform value per site in row-major order.
func New(size int, density float64, src rng.Source) (*Lattice, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	if math.IsNaN(density) || density < 0 || density > 1 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidDensity, density)
	}

	l := &Lattice{n: size, spins: make([]Spin, size*size)}
	for i := range l.spins {
		if src.Float64() < density {
			l.spins[i] = Up
		} else {
			l.spins[i] = Down
		}
	}
	return l, nil
}

// FromSpins builds a lattice from explicit row-major values.
func FromSpins(size int, spins []Spin) (*Lattice, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	if len(spins) != size*size {
		return nil, fmt.Errorf("lattice: expected %d spins, got %d", size*size, len(spins))
	}
	l := &Lattice{n: size, spins: make([]Spin, len(spins))}
	for i, s := range spins {
		if s != Up && s != Down {
			return nil, fmt.Errorf("%w: got %d at index %d", ErrInvalidSpin, s, i)
		}
		l.spins[i] = s
	}
	return l, nil
}

func (l *Lattice) Size() int { return l.n }

// Wrap maps any integer coordinate into [0, N).
func (l *Lattice) Wrap(c int) int {
	return ((c % l.n) + l.n) % l.n
}

func (l *Lattice) index(x, y int) int {
	return l.Wrap(y)*l.n + l.Wrap(x)
}

func (l *Lattice) Get(x, y int) Spin { return l.spins[l.index(x, y)] }

// Set stores s at (x, y). Callers must pass Up or Down.
func (l *Lattice) Set(x, y int, s Spin) { l.spins[l.index(x, y)] = s }

func (l *Lattice) Flip(x, y int) {
	i := l.index(x, y)
	l.spins[i] = -l.spins[i]
}

func (l *Lattice) Sum() int {
	sum := 0
	for _, s := range l.spins {
		sum += int(s)
	}
	return sum
}

// Magnetization is the mean spin value over the whole lattice.
func (l *Lattice) Magnetization() float64 {
	return float64(l.Sum()) / float64(len(l.spins))
}

func (l *Lattice) Clone() *Lattice {
	c := &Lattice{n: l.n, spins: make([]Spin, len(l.spins))}
	copy(c.spins, l.spins)
	return c
}

// Spins returns a copy of the row-major values.
func (l *Lattice) Spins() []Spin {
	out := make([]Spin, len(l.spins))
	copy(out, l.spins)
	return out
}

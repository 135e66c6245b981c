package ising

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/rng"
)

// ImageSink renders the lattice after every completed sweep.
type ImageSink interface {
	OnSweep(v lattice.View, sweep int) error
}

// AnimationSink receives every recorded frame once the run completes.
type AnimationSink interface {
	OnFrames(frames []lattice.View) error
}

// MagnetizationSink receives the full magnetization series once the run
// completes. The series may be empty.
type MagnetizationSink interface {
	OnSeries(series []float64) error
}

// Metric accumulates a scalar over the sweeps of one run.
type Metric interface {
	Name() string
	Observe(v lattice.View, stats SweepStats)
	Value() float64
	Reset()
}

type RunState int

const (
	Created RunState = iota
	Running
	Completed
)

func (s RunState) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case Completed:
		return "completed"
	}
	return fmt.Sprintf("RunState(%d)", int(s))
}

type Result struct {
	Magnetization []float64
	Frames        []*lattice.Lattice
	Stats         SweepStats
	Metrics       map[string]float64
	Sweeps        int
	Elapsed       time.Duration
}

// Runner owns the magnetization series and frame log for a single run.
type Runner struct {
	stepper    Stepper
	src        rng.Source
	images     []ImageSink
	animations []AnimationSink
	series     []MagnetizationSink
	metrics    []Metric
	state      RunState
}

func NewRunner(stepper Stepper, src rng.Source) *Runner {
	return &Runner{
		stepper:    stepper,
		src:        src,
		images:     make([]ImageSink, 0),
		animations: make([]AnimationSink, 0),
		series:     make([]MagnetizationSink, 0),
		metrics:    make([]Metric, 0),
	}
}

func (r *Runner) AddImageSink(s ImageSink)                 { r.images = append(r.images, s) }
func (r *Runner) AddAnimationSink(s AnimationSink)         { r.animations = append(r.animations, s) }
func (r *Runner) AddMagnetizationSink(s MagnetizationSink) { r.series = append(r.series, s) }
func (r *Runner) AddMetric(m Metric)                       { r.metrics = append(r.metrics, m) }

func (r *Runner) State() RunState { return r.state }

// Run executes p.Steps sweeps against l. It can be called once; later calls
// return ErrRunnerState. Cancellation is honored between sweeps, in which
// case the partial result is returned and finalization sinks are skipped.
func (r *Runner) Run(ctx context.Context, l *lattice.Lattice, p Params) (*Result, error) {
	if r.state != Created {
		return nil, fmt.Errorf("%w: state is %s", ErrRunnerState, r.state)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	r.state = Running
	defer func() { r.state = Completed }()

	start := time.Now()
	record := len(r.animations) > 0
	result := &Result{
		Magnetization: make([]float64, 0, p.Steps),
		Frames:        make([]*lattice.Lattice, 0),
		Metrics:       make(map[string]float64),
	}
	if record {
		result.Frames = make([]*lattice.Lattice, 0, p.Steps)
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	for i := 0; i < p.Steps; i++ {
		select {
		case <-ctx.Done():
			r.collect(result, start)
			return result, fmt.Errorf("%w after %d sweeps: %w", ErrCanceled, i, ctx.Err())
		default:
		}

		stats := r.stepper.Sweep(l, p, r.src)
		result.Stats = result.Stats.Add(stats)
		result.Sweeps++

		result.Magnetization = append(result.Magnetization, l.Magnetization())

		for _, m := range r.metrics {
			m.Observe(l, stats)
		}
		for _, s := range r.images {
			if err := s.OnSweep(l, i); err != nil {
				r.collect(result, start)
				return result, &ObserverError{Sink: "image", Sweep: i, Wrapped: err}
			}
		}
		if record {
			result.Frames = append(result.Frames, l.Clone())
		}
	}

	r.collect(result, start)

	for _, s := range r.series {
		if err := s.OnSeries(slices.Clone(result.Magnetization)); err != nil {
			return result, &ObserverError{Sink: "magnetization", Sweep: -1, Wrapped: err}
		}
	}
	if record {
		frames := make([]lattice.View, len(result.Frames))
		for i, f := range result.Frames {
			frames[i] = f
		}
		for _, s := range r.animations {
			if err := s.OnFrames(frames); err != nil {
				return result, &ObserverError{Sink: "animation", Sweep: -1, Wrapped: err}
			}
		}
	}

	return result, nil
}

func (r *Runner) collect(result *Result, start time.Time) {
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Elapsed = time.Since(start)
}

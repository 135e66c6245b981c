// Package experiment assembles a lattice, backend, runner and sinks from a
// config and runs them.
package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/isingsim/internal/compute"
	"github.com/san-kum/isingsim/internal/config"
	"github.com/san-kum/isingsim/internal/ising"
	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/rng"
)

type Option func(*Experiment)

func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) { e.log = l }
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) { e.registry = r }
}

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	log      *slog.Logger
	lattice  *lattice.Lattice
	backend  compute.Backend
	runner   *ising.Runner
	sinks    []string
}

// New validates cfg and wires everything. The lattice and all sweeps draw
// from one PCG stream seeded with cfg.Seed.
func New(cfg *config.Config, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Experiment{cfg: cfg.Clone(), log: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = NewRegistry()
	}

	src := rng.New(cfg.Seed)
	l, err := lattice.New(cfg.GridSize, cfg.Density, src)
	if err != nil {
		return nil, err
	}
	backend, err := e.registry.GetBackend(cfg.Backend, cfg.GridSize, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ising.ErrInvalidConfiguration, err)
	}

	e.lattice = l
	e.backend = backend
	e.runner = ising.NewRunner(backend, src)
	for _, m := range e.registry.DefaultMetrics(cfg.Params()) {
		e.runner.AddMetric(m)
	}
	e.runner.AddImageSink(&progress{log: e.log, total: cfg.Steps})

	if err := e.wireSinks(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Experiment) wireSinks() error {
	enabled := e.registry.Sinks(e.cfg.Output)
	if len(enabled) == 0 {
		return nil
	}
	if err := os.MkdirAll(e.cfg.Output.Dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, kind := range sortedKeys(enabled) {
		s := enabled[kind]
		wired := false
		if is, ok := s.(ising.ImageSink); ok {
			e.runner.AddImageSink(is)
			wired = true
		}
		if as, ok := s.(ising.AnimationSink); ok {
			e.runner.AddAnimationSink(as)
			wired = true
		}
		if ms, ok := s.(ising.MagnetizationSink); ok {
			e.runner.AddMagnetizationSink(ms)
			wired = true
		}
		if !wired {
			return fmt.Errorf("sink %q implements no observer interface", kind)
		}
		e.sinks = append(e.sinks, kind)
	}
	return nil
}

func (e *Experiment) Config() *config.Config    { return e.cfg }
func (e *Experiment) Lattice() *lattice.Lattice { return e.lattice }
func (e *Experiment) Backend() string           { return e.backend.Name() }

// Run executes the configured number of sweeps. It can be called once.
func (e *Experiment) Run(ctx context.Context) (*ising.Result, error) {
	e.log.Info("run started",
		"size", e.cfg.GridSize,
		"beta", e.cfg.Beta,
		"j", e.cfg.J,
		"b", e.cfg.B,
		"steps", e.cfg.Steps,
		"seed", e.cfg.Seed,
		"backend", e.backend.Name(),
		"sinks", e.sinks,
	)
	defer e.backend.Cleanup()

	result, err := e.runner.Run(ctx, e.lattice, e.cfg.Params())
	if err != nil {
		e.log.Warn("run stopped", "err", err)
		return result, err
	}

	e.log.Info("run finished",
		"sweeps", result.Sweeps,
		"elapsed", result.Elapsed,
		"acceptance", result.Stats.AcceptanceRate(),
		"magnetization", e.lattice.Magnetization(),
		"output_dir", e.cfg.Output.Dir,
	)
	if result.Stats.Degenerate > 0 {
		e.log.Warn("degenerate trials rejected", "count", result.Stats.Degenerate)
	}
	return result, nil
}

// progress logs at debug level roughly every tenth of the run.
type progress struct {
	log   *slog.Logger
	total int
}

func (p *progress) OnSweep(v lattice.View, sweep int) error {
	every := max(p.total/10, 1)
	if (sweep+1)%every == 0 || sweep+1 == p.total {
		p.log.Debug("simulating", "sweep", sweep+1, "of", p.total, "m", v.Magnetization())
	}
	return nil
}

package experiment

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/san-kum/isingsim/internal/compute"
	"github.com/san-kum/isingsim/internal/config"
	"github.com/san-kum/isingsim/internal/export"
	"github.com/san-kum/isingsim/internal/ising"
	"github.com/san-kum/isingsim/internal/metrics"
)

// SinkFactory builds an observer from the output config, or returns nil when
// the sink is disabled. The returned value implements one or more of the
// ising sink interfaces.
type SinkFactory func(out config.OutputConfig) any

type Registry struct {
	backends map[string]func(size, workers int) compute.Backend
	sinks    map[string]SinkFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		backends: make(map[string]func(size, workers int) compute.Backend),
		sinks:    make(map[string]SinkFactory),
	}

	r.backends[compute.Serial] = func(int, int) compute.Backend { return compute.NewSerialBackend() }
	r.backends[compute.Checkerboard] = func(_, w int) compute.Backend { return compute.NewCheckerboardBackend(w) }
	r.backends[compute.Auto] = compute.AutoSelectBackend

	r.sinks["images"] = func(out config.OutputConfig) any {
		if out.ImagePrefix == "" {
			return nil
		}
		return export.NewPNGFrameSink(out.Dir, out.ImagePrefix)
	}
	r.sinks["animation"] = func(out config.OutputConfig) any {
		if out.Animation == "" {
			return nil
		}
		return export.NewGIFAnimationSink(filepath.Join(out.Dir, out.Animation), out.FrameDelay, out.FrameScale)
	}
	r.sinks["magnetization"] = func(out config.OutputConfig) any {
		if out.Magnetization == "" {
			return nil
		}
		return export.NewTextSeriesSink(filepath.Join(out.Dir, out.Magnetization))
	}
	r.sinks["plot"] = func(out config.OutputConfig) any {
		if out.Plot == "" {
			return nil
		}
		return export.NewSeriesPlotSink(filepath.Join(out.Dir, out.Plot))
	}

	return r
}

func (r *Registry) RegisterSink(kind string, fn SinkFactory) {
	r.sinks[kind] = fn
}

func (r *Registry) GetBackend(name string, size, workers int) (compute.Backend, error) {
	fn, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s (available: %v)", name, r.ListBackends())
	}
	return fn(size, workers), nil
}

func (r *Registry) ListBackends() []string {
	return sortedKeys(r.backends)
}

func (r *Registry) ListSinks() []string {
	return sortedKeys(r.sinks)
}

// Sinks returns the enabled sinks keyed by kind.
func (r *Registry) Sinks(out config.OutputConfig) map[string]any {
	enabled := make(map[string]any)
	for kind, fn := range r.sinks {
		if s := fn(out); s != nil {
			enabled[kind] = s
		}
	}
	return enabled
}

func (r *Registry) DefaultMetrics(p ising.Params) []ising.Metric {
	return metrics.Defaults(p)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

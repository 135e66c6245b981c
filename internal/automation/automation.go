// Package automation runs scripted sequences of simulations described in
// YAML and replica studies over seeds.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/isingsim/internal/analysis"
	"github.com/san-kum/isingsim/internal/config"
	"github.com/san-kum/isingsim/internal/experiment"
	"github.com/san-kum/isingsim/internal/ising"
	"github.com/san-kum/isingsim/internal/storage"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep overrides the base config. Unset fields keep the base value.
type ScenarioStep struct {
	Name     string               `yaml:"name"`
	Preset   string               `yaml:"preset"`
	GridSize *int                 `yaml:"grid_size"`
	J        *float64             `yaml:"j"`
	Beta     *float64             `yaml:"beta"`
	B        *float64             `yaml:"b"`
	Steps    *int                 `yaml:"steps"`
	Density  *float64             `yaml:"density"`
	Seed     *int64               `yaml:"seed"`
	Backend  *string              `yaml:"backend"`
	Output   *config.OutputConfig `yaml:"output"`
}

type StepResult struct {
	Name   string
	RunID  string
	Config *config.Config
	Result *ising.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// Apply layers the step on top of base and returns a new config.
func (s ScenarioStep) Apply(base *config.Config) (*config.Config, error) {
	cfg := base.Clone()
	if s.Preset != "" {
		p := config.GetPreset(s.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
		p.Seed, p.Backend, p.Workers, p.Output = cfg.Seed, cfg.Backend, cfg.Workers, cfg.Output
		cfg = p
	}
	if s.GridSize != nil {
		cfg.GridSize = *s.GridSize
	}
	if s.J != nil {
		cfg.J = *s.J
	}
	if s.Beta != nil {
		cfg.Beta = *s.Beta
	}
	if s.B != nil {
		cfg.B = *s.B
	}
	if s.Steps != nil {
		cfg.Steps = *s.Steps
	}
	if s.Density != nil {
		cfg.Density = *s.Density
	}
	if s.Seed != nil {
		cfg.Seed = *s.Seed
	}
	if s.Backend != nil {
		cfg.Backend = *s.Backend
	}
	if s.Output != nil {
		out := *s.Output
		if out.Dir == "" {
			out.Dir = cfg.Output.Dir
		}
		if out.FrameDelay == 0 {
			out.FrameDelay = config.DefaultFrameDelay
		}
		if out.FrameScale == 0 {
			out.FrameScale = config.DefaultFrameScale
		}
		cfg.Output = out
	} else {
		cfg.Output = config.OutputConfig{Dir: cfg.Output.Dir}
	}
	return cfg, nil
}

// RunScenario executes the steps in order. Each finished step is saved to st
// when st is non-nil, labeled "<scenario>/<step>".
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, st *storage.Store, log *slog.Logger) ([]StepResult, error) {
	if log == nil {
		log = slog.Default()
	}
	if scenario.Preset != "" {
		p := config.GetPreset(scenario.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s", scenario.Preset)
		}
		p.Seed, p.Backend, p.Workers, p.Output = base.Seed, base.Backend, base.Workers, base.Output
		base = p
	}

	results := make([]StepResult, 0, len(scenario.Steps))
	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}

		cfg, err := step.Apply(base)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		if step.Output != nil && step.Output.Dir == "" {
			cfg.Output.Dir = filepath.Join(cfg.Output.Dir, scenario.Name, name)
		}

		log.Info("scenario step", "scenario", scenario.Name, "step", name, "n", i+1, "of", len(scenario.Steps))

		exp, err := experiment.New(cfg, experiment.WithLogger(log))
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: name, Config: cfg, Result: result}
		if st != nil {
			id, err := st.Save(scenario.Name+"/"+name, cfg, result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = id
		}
		results = append(results, sr)
	}

	return results, nil
}

// ReplicaResult is one run of a replica study.
type ReplicaResult struct {
	Seed    int64
	Final   float64
	Summary analysis.Summary
}

// RunReplicas repeats cfg with seeds cfg.Seed, cfg.Seed+1, ... to measure
// run-to-run spread.
func RunReplicas(ctx context.Context, cfg *config.Config, n int) ([]ReplicaResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("replica count must be positive, got %d", n)
	}
	betas := make([]float64, n)
	for i := range betas {
		betas[i] = cfg.Beta
	}
	points, err := experiment.Scan(ctx, cfg, betas)
	if err != nil {
		return nil, err
	}

	results := make([]ReplicaResult, n)
	for i, p := range points {
		results[i] = ReplicaResult{Seed: p.Seed, Final: p.Summary.Final, Summary: p.Summary}
	}
	return results, nil
}

// ReplicaStats returns the mean and standard deviation of the final |m|.
func ReplicaStats(results []ReplicaResult) (mean, std float64) {
	if len(results) == 0 {
		return 0, 0
	}
	abs := make([]float64, len(results))
	for i, r := range results {
		abs[i] = math.Abs(r.Final)
	}
	if len(abs) == 1 {
		return abs[0], 0
	}
	return stat.MeanStdDev(abs, nil)
}

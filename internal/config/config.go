package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/isingsim/internal/ising"
)

const (
	DefaultGridSize   = 64
	DefaultJ          = 1.0
	DefaultBeta       = 0.9
	DefaultB          = 0.1
	DefaultSteps      = 100
	DefaultDensity    = 0.5
	DefaultBackend    = "serial"
	DefaultOutputDir  = "results"
	DefaultFrameDelay = 10
	DefaultFrameScale = 4
)

var backends = []string{"auto", "checkerboard", "serial"}

type Config struct {
	GridSize int          `yaml:"grid_size"`
	J        float64      `yaml:"j"`
	Beta     float64      `yaml:"beta"`
	B        float64      `yaml:"b"`
	Steps    int          `yaml:"steps"`
	Density  float64      `yaml:"density"`
	Seed     int64        `yaml:"seed"`
	Backend  string       `yaml:"backend"`
	Workers  int          `yaml:"workers"`
	Output   OutputConfig `yaml:"output"`
}

// OutputConfig names the artifacts of a run. An empty name disables the sink.
type OutputConfig struct {
	Dir           string `yaml:"dir"`
	ImagePrefix   string `yaml:"image_prefix"`
	Animation     string `yaml:"animation"`
	Magnetization string `yaml:"magnetization"`
	Plot          string `yaml:"plot"`
	FrameDelay    int    `yaml:"frame_delay"`
	FrameScale    int    `yaml:"frame_scale"`
}

func DefaultConfig() *Config {
	return &Config{
		GridSize: DefaultGridSize,
		J:        DefaultJ,
		Beta:     DefaultBeta,
		B:        DefaultB,
		Steps:    DefaultSteps,
		Density:  DefaultDensity,
		Backend:  DefaultBackend,
		Output: OutputConfig{
			Dir:        DefaultOutputDir,
			FrameDelay: DefaultFrameDelay,
			FrameScale: DefaultFrameScale,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the fields present in the file at path onto cfg.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every invalid field at once. All failures wrap
// ising.ErrInvalidConfiguration.
func (c *Config) Validate() error {
	var errs []error
	if c.GridSize <= 0 {
		errs = append(errs, fmt.Errorf("grid_size must be positive, got %d", c.GridSize))
	}
	if math.IsNaN(c.Density) || c.Density < 0 || c.Density > 1 {
		errs = append(errs, fmt.Errorf("density must be in [0, 1], got %g", c.Density))
	}
	if c.Steps < 0 {
		errs = append(errs, fmt.Errorf("steps must be non-negative, got %d", c.Steps))
	}
	if c.Beta < 0 {
		errs = append(errs, fmt.Errorf("beta must be non-negative, got %g", c.Beta))
	}
	if !slices.Contains(backends, c.Backend) {
		errs = append(errs, fmt.Errorf("unknown backend %q (available: %v)", c.Backend, backends))
	}
	if c.Backend == "checkerboard" && c.GridSize%2 != 0 {
		errs = append(errs, fmt.Errorf("checkerboard backend needs an even grid_size, got %d", c.GridSize))
	}
	if c.Output.FrameScale < 0 || c.Output.FrameDelay < 0 {
		errs = append(errs, errors.New("frame_scale and frame_delay must be non-negative"))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ising.ErrInvalidConfiguration, errors.Join(errs...))
}

func (c *Config) Params() ising.Params {
	return ising.Params{
		J:       c.J,
		Beta:    c.Beta,
		B:       c.B,
		Steps:   c.Steps,
		Density: c.Density,
	}
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

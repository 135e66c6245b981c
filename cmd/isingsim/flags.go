package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/isingsim/internal/config"
)

// resolveConfig layers preset, then config file, then explicitly set flags.
// Flag defaults fill every field that neither the preset nor the file sets.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	applyFlags(cmd, cfg, true)

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		p.Seed, p.Backend, p.Workers, p.Output = cfg.Seed, cfg.Backend, cfg.Workers, cfg.Output
		cfg = p
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	applyFlags(cmd, cfg, false)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies flag values into cfg. With all set, every registered
// flag is copied; otherwise only flags the user changed.
func applyFlags(cmd *cobra.Command, cfg *config.Config, all bool) {
	setters := map[string]func(){
		"size":          func() { cfg.GridSize = gridSize },
		"j":             func() { cfg.J = coupling },
		"beta":          func() { cfg.Beta = beta },
		"b":             func() { cfg.B = field },
		"steps":         func() { cfg.Steps = steps },
		"density":       func() { cfg.Density = density },
		"seed":          func() { cfg.Seed = seed },
		"backend":       func() { cfg.Backend = backend },
		"workers":       func() { cfg.Workers = workers },
		"out-dir":       func() { cfg.Output.Dir = outDir },
		"prefix":        func() { cfg.Output.ImagePrefix = imagePrefix },
		"animation":     func() { cfg.Output.Animation = animation },
		"magnetization": func() { cfg.Output.Magnetization = magnetization },
		"plot":          func() { cfg.Output.Plot = plotFile },
		"frame-delay":   func() { cfg.Output.FrameDelay = frameDelay },
		"frame-scale":   func() { cfg.Output.FrameScale = frameScale },
	}
	for name, set := range setters {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if all || f.Changed {
			set()
		}
	}
}

package optim

import (
	"context"
	"fmt"

	"github.com/san-kum/isingsim/internal/config"
	"github.com/san-kum/isingsim/internal/experiment"
	"github.com/san-kum/isingsim/internal/ising"
)

// Apply sets the named fields on a copy of base. Known names are beta, j, b
// and density.
func Apply(base *config.Config, params map[string]float64) (*config.Config, error) {
	cfg := base.Clone()
	for name, v := range params {
		switch name {
		case "beta":
			cfg.Beta = v
		case "j":
			cfg.J = v
		case "b":
			cfg.B = v
		case "density":
			cfg.Density = v
		default:
			return nil, fmt.Errorf("unknown search parameter: %s", name)
		}
	}
	return cfg, nil
}

// ExperimentRunner runs each grid point as an experiment on top of base,
// with artifacts disabled.
func ExperimentRunner(base *config.Config, opts ...experiment.Option) Runner {
	return func(ctx context.Context, params map[string]float64) (*ising.Result, error) {
		cfg, err := Apply(base, params)
		if err != nil {
			return nil, err
		}
		cfg.Output = config.OutputConfig{}
		exp, err := experiment.New(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return exp.Run(ctx)
	}
}

package config

import "sort"

// Presets are parameter sets on top of DefaultConfig.
var Presets = map[string]*Config{
	"ferro": {
		GridSize: 64, J: 1.0, Beta: 0.9, B: 0.1, Steps: 100, Density: 0.5,
	},
	"critical": {
		GridSize: 128, J: 1.0, Beta: 0.4407, B: 0.0, Steps: 500, Density: 0.5,
	},
	"hot": {
		GridSize: 64, J: 1.0, Beta: 0.1, B: 0.0, Steps: 100, Density: 1.0,
	},
	"cold": {
		GridSize: 64, J: 1.0, Beta: 2.0, B: 0.0, Steps: 200, Density: 0.5,
	},
	"field": {
		GridSize: 64, J: 1.0, Beta: 0.3, B: 0.5, Steps: 100, Density: 0.0,
	},
}

// GetPreset returns a fresh config with the preset applied, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.GridSize = p.GridSize
	cfg.J = p.J
	cfg.Beta = p.Beta
	cfg.B = p.B
	cfg.Steps = p.Steps
	cfg.Density = p.Density
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

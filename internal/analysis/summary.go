package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

type Summary struct {
	Samples        int     `json:"samples"`
	Mean           float64 `json:"mean"`
	StdDev         float64 `json:"std_dev"`
	MeanAbs        float64 `json:"mean_abs"`
	Susceptibility float64 `json:"susceptibility"`
	Binder         float64 `json:"binder"`
	Final          float64 `json:"final"`
}

// Summarize computes equilibrium statistics after dropping burnIn samples.
// χ = β·N²·(⟨m²⟩ − ⟨|m|⟩²), U = 1 − ⟨m⁴⟩ / (3⟨m²⟩²).
func Summarize(series []float64, size int, beta float64, burnIn int) Summary {
	if burnIn < 0 {
		burnIn = 0
	}
	if burnIn >= len(series) {
		return Summary{}
	}
	data := series[burnIn:]

	abs := make([]float64, len(data))
	m2 := make([]float64, len(data))
	m4 := make([]float64, len(data))
	for i, m := range data {
		abs[i] = math.Abs(m)
		m2[i] = m * m
		m4[i] = m2[i] * m2[i]
	}

	s := Summary{
		Samples: len(data),
		Mean:    stat.Mean(data, nil),
		MeanAbs: stat.Mean(abs, nil),
		Final:   data[len(data)-1],
	}
	if len(data) > 1 {
		s.StdDev = stat.StdDev(data, nil)
	}

	meanM2 := stat.Mean(m2, nil)
	sites := float64(size * size)
	s.Susceptibility = beta * sites * (meanM2 - s.MeanAbs*s.MeanAbs)
	if meanM2 > 0 {
		s.Binder = 1 - stat.Mean(m4, nil)/(3*meanM2*meanM2)
	}
	return s
}

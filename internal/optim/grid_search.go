// Package optim searches config parameter grids for the run that extremizes
// a metric.
package optim

import (
	"context"
	"fmt"
	"maps"
	"math"

	"github.com/san-kum/isingsim/internal/ising"
)

// Objective scores a finished run. Lower is better.
type Objective func(*ising.Result) (float64, error)

// Metric minimizes a named runner metric, or maximizes it when maximize is set.
func Metric(name string, maximize bool) Objective {
	return func(r *ising.Result) (float64, error) {
		v, ok := r.Metrics[name]
		if !ok {
			return 0, fmt.Errorf("metric %q not recorded", name)
		}
		if maximize {
			return -v, nil
		}
		return v, nil
	}
}

// Runner executes one point of the grid.
type Runner func(ctx context.Context, params map[string]float64) (*ising.Result, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("got %d parameters and %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("parameter %s has an empty range", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search evaluates every grid point in order and returns the best one. The
// first error stops the search.
func (g *GridSearch) Search(ctx context.Context, run Runner, objective Objective) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), run, objective, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	run Runner,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return err
		}
		result, err := run(ctx, current)
		if err != nil {
			return fmt.Errorf("%v: %w", current, err)
		}
		val, err := objective(result)
		if err != nil {
			return err
		}
		if val < *best {
			*best = val
			*bestParams = maps.Clone(current)
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := maps.Clone(current)
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, run, objective, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"

	"github.com/san-kum/isingsim/internal/analysis"
	"github.com/san-kum/isingsim/internal/config"
	"github.com/san-kum/isingsim/internal/ising"
)

type ScanPoint struct {
	Beta    float64
	Seed    int64
	Summary analysis.Summary
	Result  *ising.Result
}

// scanWorkers caps how many scan points simulate at once.
var scanWorkers = runtime.NumCPU()

// Scan runs one independent simulation per β, at most scanWorkers at a
// time. Point i uses seed base.Seed+i, drops the first fifth of its sweeps
// as burn-in and writes no artifacts.
func Scan(ctx context.Context, base *config.Config, betas []float64, opts ...Option) ([]ScanPoint, error) {
	points := make([]ScanPoint, len(betas))
	errs := make([]error, len(betas))
	burnIn := base.Steps / 5

	forEachBounded(len(betas), scanWorkers, func(idx int) {
		beta := betas[idx]
		cfg := base.Clone()
		cfg.Beta = beta
		cfg.Seed = base.Seed + int64(idx)
		cfg.Output = config.OutputConfig{}

		e, err := New(cfg, append([]Option{WithLogger(discardLogger)}, opts...)...)
		if err != nil {
			errs[idx] = fmt.Errorf("beta %g: %w", beta, err)
			return
		}
		res, err := e.Run(ctx)
		if err != nil {
			errs[idx] = fmt.Errorf("beta %g: %w", beta, err)
			return
		}
		points[idx] = ScanPoint{
			Beta:    beta,
			Seed:    cfg.Seed,
			Summary: analysis.Summarize(res.Magnetization, cfg.GridSize, beta, burnIn),
			Result:  res,
		}
	})

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return points, nil
}

// forEachBounded calls fn(i) for every i in [0, n) with at most workers
// calls in flight.
func forEachBounded(n, workers int, fn func(i int)) {
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			fn(i)
		}()
	}
	wg.Wait()
}

// BetaRange returns start, start+step, ... up to and including stop.
func BetaRange(start, stop, step float64) ([]float64, error) {
	if step <= 0 || math.IsNaN(step) {
		return nil, fmt.Errorf("step must be positive, got %g", step)
	}
	if stop < start {
		return nil, fmt.Errorf("stop %g is below start %g", stop, start)
	}
	n := int(math.Floor((stop-start)/step+1e-9)) + 1
	betas := make([]float64, n)
	for i := range betas {
		betas[i] = start + float64(i)*step
	}
	return betas, nil
}

var discardLogger = slog.New(slog.DiscardHandler)

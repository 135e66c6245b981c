package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/isingsim/internal/analysis"
	"github.com/san-kum/isingsim/internal/automation"
	"github.com/san-kum/isingsim/internal/compute"
	"github.com/san-kum/isingsim/internal/config"
	"github.com/san-kum/isingsim/internal/experiment"
	"github.com/san-kum/isingsim/internal/export"
	"github.com/san-kum/isingsim/internal/ising"
	"github.com/san-kum/isingsim/internal/lattice"
	"github.com/san-kum/isingsim/internal/optim"
	"github.com/san-kum/isingsim/internal/rng"
	"github.com/san-kum/isingsim/internal/tui"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exp, err := experiment.New(cfg, experiment.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	fmt.Printf("simulating %d×%d lattice, beta=%g, %d sweeps (%s)\n",
		cfg.GridSize, cfg.GridSize, cfg.Beta, cfg.Steps, exp.Backend())
	result, err := exp.Run(ctx)
	if err != nil {
		if errors.Is(err, ising.ErrCanceled) && result != nil {
			fmt.Printf("interrupted after %d sweeps\n", result.Sweeps)
		}
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	if n := len(result.Magnetization); n > 0 {
		fmt.Printf("final magnetization: %+.6f\n", result.Magnetization[n-1])
	}

	if !noSave {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		id, err := st.Save(runLabel(), cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", id)
	}

	printMetrics(result.Metrics)
	return nil
}

func runLabel() string {
	if label != "" {
		return label
	}
	return preset
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tTIME\tSIZE\tBETA\tJ\tB\tSWEEPS\tM\tBACKEND\tELAPSED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4f\t%.2f\t%.2f\t%d\t%+.4f\t%s\t%.2fs\n",
			run.ID[:8],
			run.Label,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.GridSize,
			run.Beta,
			run.J,
			run.B,
			run.Sweeps,
			run.FinalMagnetization,
			run.Backend,
			run.ElapsedSeconds,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st, id, err := resolveRun(args[0])
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, id, err := resolveRun(args[0])
	if err != nil {
		return err
	}
	defer st.Close()

	series, err := st.LoadSeries(id)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return fmt.Errorf("no data to plot")
	}

	switch strings.ToLower(filepath.Ext(outFile)) {
	case "":
	case ".svg":
		return os.WriteFile(outFile, []byte(export.SeriesToSVG(series, 800, 300, "#b40426")), 0644)
	case ".png":
		if err := export.NewSeriesPlotSink(outFile).OnSeries(series); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outFile)
		return nil
	default:
		return fmt.Errorf("unsupported plot format: %s", outFile)
	}

	fmt.Printf("run: %s\n", id)
	fmt.Printf("sweeps: %d\n\n", len(series))
	graph := asciigraph.Plot(series,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.LowerBound(-1),
		asciigraph.UpperBound(1),
		asciigraph.Caption("magnetization vs sweep"),
	)
	fmt.Println(graph)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st, id, err := resolveRun(args[0])
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(id)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(id)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return fmt.Errorf("no data")
	}

	skip := burnIn
	if skip < 0 {
		skip = len(series) / 5
	}
	s := analysis.Summarize(series, meta.GridSize, meta.Beta, skip)
	if s.Samples == 0 {
		return fmt.Errorf("burn-in %d leaves no samples out of %d", skip, len(series))
	}

	fmt.Printf("analysis: %s\n", id)
	fmt.Printf("size=%d beta=%.4f j=%.2f b=%.2f burn-in=%d\n\n", meta.GridSize, meta.Beta, meta.J, meta.B, skip)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "samples\t%d\n", s.Samples)
	fmt.Fprintf(w, "<m>\t%+.6f\n", s.Mean)
	fmt.Fprintf(w, "std(m)\t%.6f\n", s.StdDev)
	fmt.Fprintf(w, "<|m|>\t%.6f\n", s.MeanAbs)
	fmt.Fprintf(w, "susceptibility\t%.6f\n", s.Susceptibility)
	fmt.Fprintf(w, "binder\t%.6f\n", s.Binder)
	fmt.Fprintf(w, "tau_int\t%.3f sweeps\n", analysis.IntegratedTime(series[skip:]))
	if err := w.Flush(); err != nil {
		return err
	}

	ps := analysis.PowerSpectrum(series[skip:])
	if len(ps) > 2 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(ps[1:],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum of m(t)"),
		))
		if p := analysis.DominantPeriod(series[skip:]); p > 0 {
			fmt.Printf("\ndominant period: %.1f sweeps\n", p)
		}
	}
	return nil
}

// output opens outFile, or stdout when it is empty.
func output() (io.WriteCloser, error) {
	if outFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outFile)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportCSV(cmd *cobra.Command, args []string) error {
	st, id, err := resolveRun(args[0])
	if err != nil {
		return err
	}
	defer st.Close()

	w, err := output()
	if err != nil {
		return err
	}
	if err := st.ExportCSV(w, id); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, id, err := resolveRun(args[0])
	if err != nil {
		return err
	}
	defer st.Close()

	w, err := output()
	if err != nil {
		return err
	}
	if err := st.ExportJSON(w, id); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func exportHTML(cmd *cobra.Command, args []string) error {
	st, id, err := resolveRun(args[0])
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(id)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(id)
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = id + ".html"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("Magnetization (N=%d, beta=%.4f)", meta.GridSize, meta.Beta)
	if err := export.WriteSeriesChart(f, title, series); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func benchBackends(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.GridSize%2 != 0 {
		return fmt.Errorf("bench needs an even size, got %d", cfg.GridSize)
	}
	p := cfg.Params()

	fmt.Printf("benchmarking %d×%d, %d sweeps, beta=%g\n\n", cfg.GridSize, cfg.GridSize, cfg.Steps, cfg.Beta)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tBEST\tSWEEPS/SEC\tFLIPS/SEC\tSPEEDUP")

	var baseline time.Duration
	for _, name := range []string{compute.Serial, compute.Checkerboard} {
		b, err := compute.ByName(name, cfg.Workers)
		if err != nil {
			return err
		}

		best := time.Duration(math.MaxInt64)
		for i := 0; i < max(benchRuns, 1); i++ {
			src := rng.New(cfg.Seed)
			l, err := lattice.New(cfg.GridSize, cfg.Density, src)
			if err != nil {
				return err
			}
			start := time.Now()
			for s := 0; s < cfg.Steps; s++ {
				b.Sweep(l, p, src)
			}
			best = min(best, time.Since(start))
		}
		b.Cleanup()

		if name == compute.Serial {
			baseline = best
		}
		sweeps := float64(cfg.Steps) / best.Seconds()
		flips := sweeps * float64(cfg.GridSize*cfg.GridSize)
		speedup := "-"
		if baseline > 0 {
			speedup = fmt.Sprintf("%.2fx", baseline.Seconds()/best.Seconds())
		}
		fmt.Fprintf(w, "%s\t%v\t%.1f\t%.3g\t%s\n", name, best, sweeps, flips, speedup)
	}
	return w.Flush()
}

func scanBeta(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	betas, err := experiment.BetaRange(betaFrom, betaTo, betaStep)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("scan started", "points", len(betas), "size", cfg.GridSize, "steps", cfg.Steps)
	start := time.Now()
	points, err := experiment.Scan(ctx, cfg, betas)
	if err != nil {
		return err
	}
	slog.Info("scan finished", "elapsed", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BETA\tSEED\t<|m|>\tCHI\tBINDER")
	mean := make([]float64, len(points))
	for i, pt := range points {
		mean[i] = pt.Summary.MeanAbs
		fmt.Fprintf(w, "%.4f\t%d\t%.4f\t%.4f\t%.4f\n",
			pt.Beta, pt.Seed, pt.Summary.MeanAbs, pt.Summary.Susceptibility, pt.Summary.Binder)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(mean) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(mean,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.LowerBound(0),
			asciigraph.UpperBound(1),
			asciigraph.Caption("<|m|> vs beta"),
		))
	}

	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		if err := export.WriteSeriesChart(f, "<|m|> across the scan", mean); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	if noSave {
		return nil
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	for _, pt := range points {
		c := cfg.Clone()
		c.Beta, c.Seed = pt.Beta, pt.Seed
		if _, err := st.Save(fmt.Sprintf("scan/beta=%.4f", pt.Beta), c, pt.Result); err != nil {
			return err
		}
	}
	fmt.Printf("\nsaved %d runs to %s\n", len(points), dataDir)
	return nil
}

func runReplicas(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	results, err := automation.RunReplicas(cmd.Context(), cfg, replicaN)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tFINAL M\t<|m|>")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%+.4f\t%.4f\n", r.Seed, r.Final, r.Summary.MeanAbs)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	mean, std := automation.ReplicaStats(results)
	fmt.Printf("\nfinal |m| = %.4f ± %.4f over %d replicas\n", mean, std, len(results))
	return nil
}

func searchGrid(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(searchParams) == 0 {
		return fmt.Errorf("at least one --param is required")
	}

	names := make([]string, 0, len(searchParams))
	ranges := make([][]float64, 0, len(searchParams))
	for _, arg := range searchParams {
		name, values, err := parseParamRange(arg)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	slog.Info("search started", "points", g.Size(), "metric", metricName, "maximize", maximize)

	run := optim.ExperimentRunner(cfg, experiment.WithLogger(slog.Default()))
	best, val, err := g.Search(cmd.Context(), run, optim.Metric(metricName, maximize))
	if err != nil {
		return err
	}
	if maximize {
		val = -val
	}

	fmt.Printf("best %s = %.6f at", metricName, val)
	for _, name := range names {
		fmt.Printf(" %s=%.4f", name, best[name])
	}
	fmt.Println()
	return nil
}

// parseParamRange reads name=from:to:step.
func parseParamRange(arg string) (string, []float64, error) {
	name, rest, ok := strings.Cut(arg, "=")
	if !ok {
		return "", nil, fmt.Errorf("bad --param %q: want name=from:to:step", arg)
	}
	parts := strings.Split(rest, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("bad --param %q: want name=from:to:step", arg)
	}
	var bounds [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad --param %q: %w", arg, err)
		}
		bounds[i] = v
	}
	values, err := experiment.BetaRange(bounds[0], bounds[1], bounds[2])
	if err != nil {
		return "", nil, fmt.Errorf("bad --param %q: %w", arg, err)
	}
	return name, values, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if sc.Description != "" {
		fmt.Printf("%s: %s\n", sc.Name, sc.Description)
	}
	results, err := automation.RunScenario(cmd.Context(), sc, base, st, slog.Default())
	for _, r := range results {
		final := 0.0
		if n := len(r.Result.Magnetization); n > 0 {
			final = r.Result.Magnetization[n-1]
		}
		fmt.Printf("  %-12s %s  m=%+.4f  %v\n", r.Name, r.RunID[:8], final, r.Result.Elapsed)
	}
	return err
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSIZE\tJ\tBETA\tB\tSTEPS\tDENSITY")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.4f\t%.2f\t%d\t%.2f\n", name, p.GridSize, p.J, p.Beta, p.B, p.Steps, p.Density)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	return tui.Run(cfg)
}

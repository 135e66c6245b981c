package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/isingsim/internal/config"
	"github.com/san-kum/isingsim/internal/storage"
)

var (
	dataDir string
	verbose bool

	gridSize int
	coupling float64
	beta     float64
	field    float64
	steps    int
	density  float64
	seed     int64
	backend  string
	workers  int

	outDir        string
	imagePrefix   string
	animation     string
	magnetization string
	plotFile      string
	frameDelay    int
	frameScale    int

	configFile string
	preset     string
	label      string
	noSave     bool

	outFile   string
	burnIn    int
	betaFrom  float64
	betaTo    float64
	betaStep  float64
	replicaN  int
	benchRuns int

	searchParams []string
	metricName   string
	maximize     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "isingsim",
		Short:        "2D Ising model Monte Carlo lab",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".isingsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	addOutputFlags(runCmd)
	runCmd.Flags().StringVar(&label, "label", "", "label stored with the run")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the run in the data directory")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the magnetization series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVarP(&outFile, "out", "o", "", "write a .png or .svg instead of printing")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "equilibrium statistics and spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&burnIn, "burn-in", -1, "sweeps to discard (default: first fifth)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the magnetization series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and series to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportHTMLCmd := &cobra.Command{
		Use:   "export-html [run_id]",
		Short: "write an interactive chart of the series",
		Args:  cobra.ExactArgs(1),
		RunE:  exportHTML,
	}
	exportHTMLCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.html)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "compare sweep throughput of the backends",
		Args:  cobra.NoArgs,
		RunE:  benchBackends,
	}
	addModelFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchRuns, "repeat", 3, "timed runs per backend")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "run a temperature scan",
		Args:  cobra.NoArgs,
		RunE:  scanBeta,
	}
	addModelFlags(scanCmd)
	scanCmd.Flags().Float64Var(&betaFrom, "from", 0.2, "first beta")
	scanCmd.Flags().Float64Var(&betaTo, "to", 0.7, "last beta")
	scanCmd.Flags().Float64Var(&betaStep, "step", 0.05, "beta increment")
	scanCmd.Flags().StringVarP(&outFile, "out", "o", "", "write an html chart of <|m|>(beta)")
	scanCmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the runs")

	replicasCmd := &cobra.Command{
		Use:   "replicas",
		Short: "repeat one configuration over consecutive seeds",
		Args:  cobra.NoArgs,
		RunE:  runReplicas,
	}
	addModelFlags(replicasCmd)
	replicasCmd.Flags().IntVar(&replicaN, "count", 8, "number of replicas")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "grid search parameters for the best value of a metric",
		Args:  cobra.NoArgs,
		RunE:  searchGrid,
	}
	addModelFlags(searchCmd)
	searchCmd.Flags().StringArrayVar(&searchParams, "param", nil, "name=from:to:step, repeatable (beta, j, b, density)")
	searchCmd.Flags().StringVar(&metricName, "metric", "mean_abs_magnetization", "metric to optimize")
	searchCmd.Flags().BoolVar(&maximize, "maximize", false, "maximize instead of minimize")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addModelFlags(scenarioCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the lattice evolve in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addModelFlags(liveCmd)
	addOutputFlags(liveCmd)

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd,
		exportHTMLCmd, benchCmd, scanCmd, replicasCmd, searchCmd, scenarioCmd, presetsCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&gridSize, "size", config.DefaultGridSize, "lattice side length")
	f.Float64Var(&coupling, "j", config.DefaultJ, "coupling J")
	f.Float64Var(&beta, "beta", config.DefaultBeta, "inverse temperature")
	f.Float64Var(&field, "b", config.DefaultB, "external field B")
	f.IntVar(&steps, "steps", config.DefaultSteps, "number of sweeps")
	f.Float64Var(&density, "density", config.DefaultDensity, "initial fraction of up spins")
	f.Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	f.StringVar(&backend, "backend", config.DefaultBackend, "serial, checkerboard or auto")
	f.IntVar(&workers, "workers", 0, "worker goroutines (0 = all cpus)")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
}

func addOutputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&outDir, "out-dir", config.DefaultOutputDir, "artifact directory")
	f.StringVar(&imagePrefix, "prefix", "ising", "per-sweep png prefix (empty disables)")
	f.StringVar(&animation, "animation", "ising.gif", "animation file (empty disables)")
	f.StringVar(&magnetization, "magnetization", "magnetization.txt", "magnetization file (empty disables)")
	f.StringVar(&plotFile, "plot", "", "magnetization plot png (empty disables)")
	f.IntVar(&frameDelay, "frame-delay", config.DefaultFrameDelay, "gif frame delay in 1/100 s")
	f.IntVar(&frameScale, "frame-scale", config.DefaultFrameScale, "gif pixels per site")
}

func openStore() (*storage.Store, error) {
	st, err := storage.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open data dir %s: %w", dataDir, err)
	}
	return st, nil
}

// resolveRun opens the store and expands an id prefix.
func resolveRun(prefix string) (*storage.Store, string, error) {
	st, err := openStore()
	if err != nil {
		return nil, "", err
	}
	id, err := st.Resolve(prefix)
	if err != nil {
		st.Close()
		return nil, "", err
	}
	return st, id, nil
}

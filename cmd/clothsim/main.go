package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/clothsim/internal/analysis"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/export"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
	"github.com/san-kum/clothsim/internal/viz"
	"github.com/san-kum/clothsim/internal/xpbd"
)

var (
	dataDir    string
	cols       int
	rows       int
	duration   float64
	iterations int
	stiffness  float64
	mode       string
	warmStart  bool
	eta        float64
	damping    float64
	relaxation float64
	configFile string
	preset     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clothsim",
		Short: "interactive XPBD cloth simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			p, err := cfg.Params()
			if err != nil {
				return err
			}
			return viz.Run(cfg.Grid.Cols, cfg.Grid.Rows, p)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".clothsim", "data directory")

	addSolverFlags := func(cmd *cobra.Command) {
		cmd.Flags().IntVar(&cols, "cols", config.DefaultCols, "grid columns")
		cmd.Flags().IntVar(&rows, "rows", config.DefaultRows, "grid rows")
		cmd.Flags().IntVar(&iterations, "iterations", config.DefaultIterations, "solver iterations per step")
		cmd.Flags().Float64Var(&stiffness, "stiffness", config.DefaultStiffness, "constraint stiffness")
		cmd.Flags().StringVar(&mode, "mode", "gauss-seidel", "solve mode (gauss-seidel|jacobi)")
		cmd.Flags().BoolVar(&warmStart, "warm-start", true, "carry impulses across frames")
		cmd.Flags().Float64Var(&eta, "eta", config.DefaultEta, "warm-start carry-over fraction")
		cmd.Flags().Float64Var(&damping, "damping", config.DefaultDamping, "velocity retention factor")
		cmd.Flags().Float64Var(&relaxation, "relaxation", config.DefaultRelaxation, "jacobi under-relaxation")
		cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
		cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	}
	addSolverFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless simulation and store the result",
		RunE:  runSimulation,
	}
	addSolverFlags(runCmd)
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run's measurement series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json",
		Short: "run headless and export the result as JSON",
		RunE:  exportJSON,
	}
	addSolverFlags(exportJSONCmd)
	exportJSONCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a stored run's samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark step throughput over grid sizes",
		RunE:  benchSolver,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored run's residual",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg",
		Short: "run headless and export the final frame as SVG",
		RunE:  exportSVG,
	}
	addSolverFlags(exportSVGCmd)
	exportSVGCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare Gauss-Seidel and Jacobi convergence",
		RunE:  compareModes,
	}
	addSolverFlags(compareCmd)
	compareCmd.Flags().Float64Var(&duration, "time", 5.0, "duration in seconds")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, analyzeCmd, presetsCmd, benchCmd, compareCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig merges preset, config file and CLI flags, in increasing
// precedence, and validates the result.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("cols") {
		cfg.Grid.Cols = cols
	}
	if flags.Changed("rows") {
		cfg.Grid.Rows = rows
	}
	if flags.Changed("iterations") {
		cfg.Solver.Iterations = iterations
	}
	if flags.Changed("stiffness") {
		cfg.Solver.Stiffness = stiffness
	}
	if flags.Changed("mode") {
		cfg.Solver.Mode = mode
	}
	if flags.Changed("warm-start") {
		cfg.Solver.WarmStart = warmStart
	}
	if flags.Changed("eta") {
		cfg.Solver.Eta = eta
	}
	if flags.Changed("damping") {
		cfg.Solver.Damping = damping
	}
	if flags.Changed("relaxation") {
		cfg.Solver.JacobiRelaxation = relaxation
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func simConfig(cfg *config.Config) (sim.Config, error) {
	p, err := cfg.Params()
	if err != nil {
		return sim.Config{}, err
	}
	return sim.Config{
		Cols:     cfg.Grid.Cols,
		Rows:     cfg.Grid.Rows,
		Duration: cfg.Duration,
		Params:   p,
	}, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	simCfg, err := simConfig(cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	runner := sim.NewRunner()
	runner.AddMetric(metrics.NewMeanResidual())
	runner.AddMetric(metrics.NewPeakStretch())
	runner.AddMetric(metrics.NewSettleEnergy(sim.TargetDt))

	fmt.Printf("running %dx%d cloth, %s mode...\n", simCfg.Cols, simCfg.Rows, simCfg.Params.Mode)
	start := time.Now()

	result, err := runner.Run(context.Background(), simCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(simCfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6g\n", name, val)
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGRID\tTIME\tDURATION\tITERS\tMODE\tWARM")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%dx%d\t%s\t%.2fs\t%d\t%s\t%v\n",
			run.ID,
			run.Cols, run.Rows,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Iterations,
			run.Mode,
			run.WarmStart,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("grid: %dx%d  mode: %s\n", meta.Cols, meta.Rows, meta.Mode)
	fmt.Printf("samples: %d\n\n", len(samples))

	series := []struct {
		caption string
		pick    func(s sim.Sample) float64
	}{
		{"rms residual", func(s sim.Sample) float64 { return s.Residual }},
		{"max stretch", func(s sim.Sample) float64 { return s.MaxStretch }},
		{"kinetic energy", func(s sim.Sample) float64 { return s.Kinetic }},
	}

	for _, sp := range series {
		data := make([]float64, len(samples))
		for i, s := range samples {
			data[i] = sp.pick(s)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sp.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	simCfg, err := simConfig(cfg)
	if err != nil {
		return err
	}

	runner := sim.NewRunner()
	runner.AddMetric(metrics.NewMeanResidual())
	runner.AddMetric(metrics.NewPeakStretch())

	result, err := runner.Run(context.Background(), simCfg)
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, "adhoc", simCfg, result)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"time", "residual", "max_stretch", "kinetic"}); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.FormatFloat(s.Time, 'f', 6, 64),
			strconv.FormatFloat(s.Residual, 'g', 8, 64),
			strconv.FormatFloat(s.MaxStretch, 'g', 8, 64),
			strconv.FormatFloat(s.Kinetic, 'g', 8, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("grid: %dx%d  mode: %s\n\n", meta.Cols, meta.Rows, meta.Mode)

	data := make([]float64, len(samples))
	for i, s := range samples {
		data[i] = s.Residual
	}

	ps := analysis.PowerSpectrum(data)
	if len(ps) == 0 {
		return fmt.Errorf("series too short to analyze")
	}
	// The interesting structure sits in the low-frequency quarter.
	plotData := ps
	if len(ps) >= 8 {
		plotData = ps[:len(ps)/4]
	}

	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("residual power spectrum"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq := analysis.DominantFrequency(ps, sim.TargetDt)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	simCfg, err := simConfig(cfg)
	if err != nil {
		return err
	}

	runner := sim.NewRunner()
	result, err := runner.Run(context.Background(), simCfg)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(os.Stdout, export.ClothSVG(result.FinalPositions, result.Edges, 800, 800))
	return err
}

func benchSolver(cmd *cobra.Command, args []string) error {
	grids := [][2]int{{10, 10}, {20, 20}, {40, 40}}
	iterCounts := []int{1, 2, 4, 8}
	benchDuration := 2.0

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GRID\tITERS\tSTEPS\tTIME\tSTEPS/SEC")

	for _, g := range grids {
		for _, it := range iterCounts {
			p := xpbd.DefaultParams()
			p.Iterations = it

			runner := sim.NewRunner()
			start := time.Now()
			result, err := runner.Run(context.Background(), sim.Config{
				Cols: g[0], Rows: g[1], Duration: benchDuration, Params: p,
			})
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			stepsPerSec := float64(result.StepsTaken) / elapsed.Seconds()
			fmt.Fprintf(w, "%dx%d\t%d\t%d\t%v\t%.0f\n",
				g[0], g[1], it, result.StepsTaken, elapsed, stepsPerSec)
		}
	}

	return w.Flush()
}

func compareModes(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	simCfg, err := simConfig(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("comparing solve modes on %dx%d (iterations=%d, stiffness=%.4g)\n\n",
		simCfg.Cols, simCfg.Rows, simCfg.Params.Iterations, simCfg.Params.Stiffness)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tMEAN_RESIDUAL\tPEAK_STRETCH\tTIME_MS")

	for _, m := range []xpbd.Mode{xpbd.GaussSeidel, xpbd.Jacobi} {
		p := simCfg.Params
		p.Mode = m

		runner := sim.NewRunner()
		runner.AddMetric(metrics.NewMeanResidual())
		runner.AddMetric(metrics.NewPeakStretch())

		start := time.Now()
		result, err := runner.Run(context.Background(), sim.Config{
			Cols: simCfg.Cols, Rows: simCfg.Rows, Duration: simCfg.Duration, Params: p,
		})
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", m, err)
			continue
		}

		fmt.Fprintf(w, "%s\t%.6g\t%.6g\t%.2f\n",
			m,
			result.Metrics["mean_residual"],
			result.Metrics["peak_stretch"],
			float64(elapsed.Microseconds())/1000)
	}

	return w.Flush()
}

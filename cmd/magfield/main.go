package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/magfield/internal/analysis"
	"github.com/san-kum/magfield/internal/config"
	"github.com/san-kum/magfield/internal/export"
	"github.com/san-kum/magfield/internal/metrics"
	"github.com/san-kum/magfield/internal/sim"
	"github.com/san-kum/magfield/internal/storage"
	"github.com/san-kum/magfield/internal/store"
	"github.com/san-kum/magfield/internal/transform"
	"github.com/san-kum/magfield/internal/viz"
	"github.com/spf13/cobra"
)

const defaultPreset = "single"

var (
	dataDir    string
	configFile string
	workers    int
	adaptive   bool
	steps      int
	dt         float64
	speed      float64
	reverse    bool
	save       bool
	plot       bool
	jsonOut    string
	svgOut     string
	svgScale   float64
)

var errUnknownPreset = errors.New("unknown preset")

// main registers the commands and opens the preset menu when no subcommand
// is given. It exits with status 1 if the command returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "magfield",
		Short: "magnetic dipole field lines and dynamics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".magfield", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "scene config file (yaml or toml)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "tracing goroutines (0 = all cpus)")
	rootCmd.PersistentFlags().BoolVar(&adaptive, "adaptive", false, "adaptive field line stepping")

	traceCmd := &cobra.Command{
		Use:   "trace [preset]",
		Short: "trace field lines",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTrace,
	}
	traceCmd.Flags().BoolVar(&save, "save", false, "store the traced lines")
	traceCmd.Flags().BoolVar(&plot, "plot", false, "draw the lines in the terminal")
	traceCmd.Flags().StringVar(&jsonOut, "json", "", "write the lines as json (- for stdout)")

	simulateCmd := &cobra.Command{
		Use:   "simulate [preset]",
		Short: "run the dipole dynamics headless",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulate,
	}
	simulateCmd.Flags().IntVar(&steps, "steps", 0, "number of steps (default duration/dt)")
	simulateCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "real time per step")
	simulateCmd.Flags().Float64Var(&speed, "speed", 1, "simulation speed multiplier")
	simulateCmd.Flags().BoolVar(&reverse, "reverse", false, "run time backwards")
	simulateCmd.Flags().BoolVar(&save, "save", false, "store the trajectory")
	simulateCmd.Flags().BoolVar(&plot, "plot", false, "plot separation and energy")
	simulateCmd.Flags().StringVar(&jsonOut, "json", "", "write the run as json (- for stdout)")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "interactive field line viewer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&speed, "speed", 1, "simulation speed multiplier")
	liveCmd.Flags().BoolVar(&reverse, "reverse", false, "run time backwards")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available scene presets",
		RunE:  listPresets,
	}

	exportCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a stored run as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default <run_id>.svg)")
	exportCmd.Flags().Float64Var(&svgScale, "scale", 200, "svg units per world unit")

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "benchmark field line tracing across worker counts",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchTrace,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored dynamics run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	rootCmd.AddCommand(traceCmd, simulateCmd, liveCmd, listCmd, presetsCmd, exportCmd, benchCmd, analyzeCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadScene resolves the config file or preset and applies the flags that
// were set explicitly.
func loadScene(cmd *cobra.Command, args []string) (string, *config.Config, error) {
	name := defaultPreset
	if len(args) > 0 {
		name = args[0]
	}

	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return "", nil, err
		}
		cfg = loaded
		if len(args) == 0 {
			base := filepath.Base(configFile)
			name = strings.TrimSuffix(base, filepath.Ext(base))
		}
	} else {
		cfg = config.GetPreset(name)
		if cfg == nil {
			return "", nil, fmt.Errorf("%w %q (available: %s)", errUnknownPreset, name, strings.Join(config.ListPresets(), ", "))
		}
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Trace.Workers = workers
	}
	if flags.Changed("adaptive") {
		cfg.Trace.Adaptive = adaptive
	}
	if flags.Changed("dt") {
		cfg.Dynamics.Dt = dt
	}
	if flags.Changed("speed") {
		cfg.Dynamics.Speed = speed
	}
	if flags.Changed("reverse") {
		cfg.Dynamics.Reverse = reverse
	}
	if err := cfg.Validate(); err != nil {
		return "", nil, err
	}
	return name, cfg, nil
}

func runTrace(cmd *cobra.Command, args []string) error {
	name, cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	scene := sim.BuildScene(cfg)
	fmt.Printf("tracing %s...\n", name)
	start := time.Now()
	lines := scene.FieldLines()
	elapsed := time.Since(start)

	samples := 0
	for _, l := range lines {
		samples += l.Len()
	}
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("lines: %d\n", len(lines))
	fmt.Printf("samples: %d\n", samples)

	if plot {
		canvas := viz.NewCanvas(80, 32)
		viz.DrawLines(canvas, lines, viz.NewPlane(scene.Bounds(), canvas).Project)
		fmt.Println()
		fmt.Print(canvas.String())
	}

	if jsonOut != "" {
		if err := store.ExportJSON(jsonOut, store.NewTraceData(name, cfg.Trace.Adaptive, lines)); err != nil {
			return err
		}
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.SaveTrace(name, cfg, lines, map[string]float64{
			"trace_ms": float64(elapsed.Microseconds()) / 1000,
			"samples":  float64(samples),
		})
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	name, cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	n := cfg.Steps()
	if cmd.Flags().Changed("steps") {
		n = steps
	}

	scene := sim.BuildScene(cfg)
	runner := sim.NewRunner(scene)
	p := scene.Dynamics().Params
	runner.AddMetric(metrics.NewKineticEnergy(p.Mass, p.MomentOfInertia))
	runner.AddMetric(metrics.NewEnergyDrift(p.Mass, p.MomentOfInertia))
	runner.AddMetric(metrics.NewMinSeparation())
	runner.AddMetric(metrics.NewMaxSpeed())
	runner.AddMetric(metrics.NewStability(0.1))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("simulating %s for %d steps...\n", name, n)
	start := time.Now()
	result, err := runner.Run(ctx, n, cfg.Dynamics.Dt)
	if result == nil {
		return err
	}
	if err != nil {
		fmt.Printf("interrupted: %v\n", err)
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("energy drift: %.6f\n", result.EnergyDrift)
	for _, e := range result.Errors {
		fmt.Printf("stopped: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	for _, k := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", k, result.Metrics[k])
	}

	if plot && len(result.Positions) > 1 {
		sep := make([]float64, len(result.Positions))
		for i, row := range result.Positions {
			sep[i] = minDistance(row)
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(sep, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("min separation")))
		fmt.Println()
		fmt.Println(asciigraph.Plot(result.Energy, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("energy")))
	}

	if jsonOut != "" {
		if err := store.ExportJSON(jsonOut, store.NewRunData(name, cfg.Dynamics.Dt, result)); err != nil {
			return err
		}
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.SaveRun(name, cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	name, cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	return viz.Run(sim.BuildScene(cfg), name)
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
	fmt.Fprintln(w, "ID\tKIND\tPRESET\tTIME\tDIPOLES\tBARS\tLINES\tSTEPS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.Kind,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Dipoles,
			run.Bars,
			run.Lines,
			run.Steps,
		)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tDIPOLES\tBARS\tADAPTIVE\tMAX STEPS")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%d\n", name, len(cfg.Scene.Dipoles), len(cfg.Scene.Bars), cfg.Trace.Adaptive, cfg.Trace.MaxSteps)
	}
	return w.Flush()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	bounds := transform.NewBox(meta.Bounds[0], meta.Bounds[1], meta.Bounds[2])

	var svg string
	switch meta.Kind {
	case storage.KindTrace:
		lines, err := st.LoadLines(runID)
		if err != nil {
			return err
		}
		svg = export.LinesToSVG(lines, bounds, svgScale)
	case storage.KindSimulate:
		_, positions, err := st.LoadTrajectory(runID)
		if err != nil {
			return err
		}
		svg = export.TrajectoriesToSVG(positions, bounds, svgScale)
	default:
		return fmt.Errorf("run %s has unknown kind %q", runID, meta.Kind)
	}

	out := svgOut
	if out == "" {
		out = runID + ".svg"
	}
	if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func benchTrace(cmd *cobra.Command, args []string) error {
	name, cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	counts := []int{1, 2, 4, runtime.NumCPU()}
	const rounds = 5

	fmt.Printf("benchmarking %s\n\n", name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tLINES\tSAMPLES\tTIME\tLINES/SEC")

	for _, n := range counts {
		cfg.Trace.Workers = n
		scene := sim.BuildScene(cfg)

		var lines, samples int
		start := time.Now()
		for i := 0; i < rounds; i++ {
			traced := scene.Tracer().Trace()
			lines = len(traced)
			samples = 0
			for _, l := range traced {
				samples += l.Len()
			}
		}
		elapsed := time.Since(start) / rounds

		fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\n", n, lines, samples, elapsed, float64(lines)/elapsed.Seconds())
	}
	return w.Flush()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	if meta.Kind != storage.KindSimulate {
		return fmt.Errorf("run %s is a %s run, not a dynamics run", runID, meta.Kind)
	}

	_, positions, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(positions) < 4 {
		return fmt.Errorf("run %s has too few samples", runID)
	}

	sep := make([]float64, len(positions))
	for i, row := range positions {
		sep[i] = minDistance(row)
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("preset: %s\n\n", meta.Preset)

	ps := analysis.PowerSpectrum(sep)
	plotData := ps[:max(2, len(ps)/4)]
	fmt.Println(asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (min separation)"),
	))
	fmt.Println()

	freq := analysis.DominantFrequency(sep, meta.Dt)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func minDistance(row []mgl64.Vec3) float64 {
	best := 0.0
	for i := range row {
		for j := i + 1; j < len(row); j++ {
			d := row[i].Sub(row[j]).Len()
			if best == 0 || d < best {
				best = d
			}
		}
	}
	return best
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

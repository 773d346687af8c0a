package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mpsfluid/internal/analysis"
	"github.com/san-kum/mpsfluid/internal/automation"
	"github.com/san-kum/mpsfluid/internal/config"
	"github.com/san-kum/mpsfluid/internal/export"
	"github.com/san-kum/mpsfluid/internal/metrics"
	"github.com/san-kum/mpsfluid/internal/storage"
	"github.com/san-kum/mpsfluid/internal/stream"
	"github.com/san-kum/mpsfluid/internal/viz"
)

var (
	dataDir      string
	configFile   string
	preset       string
	workers      int
	intervalMs   int
	verbose      bool
	steps        int
	noSave       bool
	addr         string
	staticDir    string
	plotField    string
	svgPath      string
	analyzeField string
	sweepMin     float64
	sweepMax     float64
	sweepCount   int
	sweepSteps   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "mpsfluid",
		Short:        "2-D particle fluid simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mpsfluid", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset scene")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 1, "goroutines for per-particle loops")
	rootCmd.PersistentFlags().IntVar(&intervalMs, "interval", config.DefaultIntervalMs, "tick interval in milliseconds")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation headless and save telemetry",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().IntVar(&steps, "steps", 2000, "number of ticks")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not write a run directory")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write the final frame as SVG")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream snapshots over a websocket at /ws",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&staticDir, "root", "", "static files served at /")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted list of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "run a preset across a range of one parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepCount, "count", 5, "number of values")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 500, "ticks per value")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run telemetry",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotField, "field", "", "single column to plot (max_speed, mean_speed, max_pressure, mean_pressure, dt, fluid, processing_us)")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the plotted column as SVG (requires --field)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of run telemetry",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&analyzeField, "field", "mean_speed", "telemetry column to analyze")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, batchCmd, sweepCmd, listCmd, plotCmd, analyzeCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// loadConfig layers the preset, then the config file, then any flags the
// user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("workers") {
		cfg.Runner.Workers = workers
	}
	if cmd.Flags().Changed("interval") {
		cfg.Runner.IntervalMs = intervalMs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	logger := setupLogger(os.Stderr)
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("running %s simulation...\n", cfg.Scene)
	out, err := automation.Execute(ctx, cfg, steps, logger)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	result := out.Result

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("simulated time: %.4fs\n", result.Time)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := out.Save(st)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	if svgPath != "" {
		if err := writeFile(svgPath, func(w io.Writer) error {
			return export.WriteSnapshot(w, &out.Final, cfg.View(), 800)
		}); err != nil {
			return err
		}
		fmt.Printf("frame: %s\n", svgPath)
	}

	if len(result.Errors) > 0 {
		return errors.Join(result.Errors...)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runBatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(os.Stderr)
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcomes, err := automation.RunScenario(ctx, sc, st, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSCENE\tSTEPS\tSIM TIME\tPEAK SPEED\tRUN")
	for i, out := range outcomes {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.4fs\t%.4f\t%s\n",
			i+1,
			out.Config.Scene,
			out.Result.StepsTaken,
			out.Result.Time,
			out.Result.Metrics["peak_speed"],
			out.RunID,
		)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	logger := setupLogger(os.Stderr)
	name := preset
	if name == "" {
		name = "dam_break"
	}
	sweep := &automation.ParameterSweep{
		Preset: name,
		Param:  args[0],
		Min:    sweepMin,
		Max:    sweepMax,
		Count:  sweepCount,
		Steps:  sweepSteps,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := automation.RunSweep(ctx, sweep, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tPEAK SPEED\tPEAK PRESSURE\tFLUID\tSTATUS\n", strings.ToUpper(args[0]))
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		fmt.Fprintf(w, "%g\t%.4f\t%.1f\t%d\t%s\n", r.Value, r.PeakSpeed, r.PeakPressure, r.Fluid, status)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	logger := setupLogger(io.Discard)
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runner, err := automation.NewRunner(cfg, logger)
	if err != nil {
		return err
	}

	if err := runner.Start(context.Background()); err != nil {
		return err
	}
	defer runner.Stop()

	return viz.Run(runner, cfg.View(), cfg.Scene)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(os.Stderr)
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runner, err := automation.NewRunner(cfg, logger)
	if err != nil {
		return err
	}

	hub := stream.NewHub(cfg.View(), runner)
	hub.SetLogger(logger)
	runner.AddObserver(hub)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runner.Start(ctx); err != nil {
		return err
	}
	defer runner.Stop()
	defer hub.Close()

	return stream.ListenAndServe(ctx, addr, stream.Handler(hub, staticDir), logger)
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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tSTEPS\tSIM TIME\tPARTICLES\tELAPSED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%d\t%v\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.SimTime,
			run.Particles,
			run.Elapsed.Round(time.Millisecond),
		)
	}

	return w.Flush()
}

var plotColumns = []struct {
	name    string
	caption string
	value   func(metrics.Record) float64
}{
	{"max_speed", "max fluid speed (m/s)", func(r metrics.Record) float64 { return r.MaxSpeed }},
	{"mean_speed", "mean fluid speed (m/s)", func(r metrics.Record) float64 { return r.MeanSpeed }},
	{"max_pressure", "max pressure (Pa)", func(r metrics.Record) float64 { return r.MaxPressure }},
	{"mean_pressure", "mean pressure (Pa)", func(r metrics.Record) float64 { return r.MeanPressure }},
	{"dt", "time step (s)", func(r metrics.Record) float64 { return r.Dt }},
	{"fluid", "fluid particles", func(r metrics.Record) float64 { return float64(r.Fluid) }},
	{"processing_us", "tick processing (µs)", func(r metrics.Record) float64 { return float64(r.ProcessingUs) }},
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	records, err := st.LoadTelemetry(runID)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(records))

	plotted := 0
	for _, col := range plotColumns {
		if plotField != "" && col.name != plotField {
			continue
		}
		data := make([]float64, len(records))
		for i, r := range records {
			data[i] = col.value(r)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(col.caption),
		)
		fmt.Println(graph)
		fmt.Println()
		plotted++

		if svgPath != "" && plotField != "" {
			if err := writeFile(svgPath, func(w io.Writer) error {
				_, err := io.WriteString(w, export.SeriesToSVG(data, 800, 300, "#00ccff"))
				return err
			}); err != nil {
				return err
			}
			fmt.Printf("svg: %s\n", svgPath)
		}
	}
	if plotted == 0 {
		names := make([]string, len(plotColumns))
		for i, col := range plotColumns {
			names[i] = col.name
		}
		return fmt.Errorf("unknown field %q (available: %s)", plotField, strings.Join(names, ", "))
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

	records, err := st.LoadTelemetry(runID)
	if err != nil {
		return err
	}

	var value func(metrics.Record) float64
	for _, col := range plotColumns {
		if col.name == analyzeField {
			value = col.value
		}
	}
	if value == nil {
		return fmt.Errorf("unknown field %q", analyzeField)
	}

	times := make([]float64, len(records))
	data := make([]float64, len(records))
	for i, r := range records {
		times[i], data[i] = r.Time, value(r)
	}

	uniform, step, err := analysis.Resample(times, data, len(records))
	if err != nil {
		return err
	}
	ps := analysis.PowerSpectrum(uniform, step)

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("scene: %s\n\n", meta.Scene)

	plotData := ps.Power[:max(len(ps.Power)/4, min(len(ps.Power), 2))]
	if len(plotData) > 1 {
		graph := asciigraph.Plot(plotData,
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum ("+analyzeField+")"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	freq, _ := ps.Dominant()
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}


package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/dampcal/internal/analysis"
	"github.com/san-kum/dampcal/internal/config"
	"github.com/san-kum/dampcal/internal/damping"
	"github.com/san-kum/dampcal/internal/dynamo"
	"github.com/san-kum/dampcal/internal/experiment"
	"github.com/san-kum/dampcal/internal/export"
	"github.com/san-kum/dampcal/internal/optim"
	"github.com/san-kum/dampcal/internal/scheme"
	"github.com/san-kum/dampcal/internal/sim"
	"github.com/san-kum/dampcal/internal/solver"
	"github.com/san-kum/dampcal/internal/storage"
	"github.com/san-kum/dampcal/internal/tui"
	"github.com/san-kum/dampcal/internal/viz"
)

// loadConfig layers defaults, preset, config file and explicit flags, in
// that order.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Model = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) > 0 {
			loaded.Model = args[0]
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("time") {
		cfg.Duration = duration
	}
	if f.Changed("record-every") {
		cfg.RecordEvery = recordEvery
	}
	if f.Changed("nodes") {
		cfg.ModelParams.Nodes = nodes
	}
	d := &cfg.Damping
	if f.Changed("scheme") {
		d.SchemeType = schemeType
	}
	if f.Changed("rotational") {
		d.RotationalSchemeType = rotational
	}
	if f.Changed("xi1") {
		d.Xi1 = xi1
	}
	if f.Changed("xin") {
		d.XiN = xiN
	}
	if f.Changed("omega1") {
		_ = cfg.SetParam("omega_1", omega1)
	}
	if f.Changed("omegan") {
		_ = cfg.SetParam("omega_n", omegaN)
	}
	if f.Changed("g-factor") {
		d.GFactor = gFactor
	}
	if f.Changed("theta-factor") {
		d.ThetaFactor = thetaFactor
	}
	if f.Changed("calculate-xi") {
		d.CalculateXi = calculateXi
	}
	if f.Changed("range-policy") {
		d.RangePolicy = rangePolicy
	}
	return cfg, nil
}

func calibrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, log.StandardLogger())
	_, settings, err := exp.Settings()
	if err != nil {
		return err
	}
	coeffs, err := damping.Calibrate(settings)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s  %s", cfg.Model, coeffs.Scheme)))
	fmt.Println(viz.CoefficientReport(coeffs))

	if ranks > 1 {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		stores, err := solver.InitializePartitions(ctx, settings, ranks, log.StandardLogger())
		if err != nil {
			return err
		}
		fmt.Printf("\ninitialized %d partition stores\n", len(stores))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tVALUE")
		snap := stores[0].Snapshot()
		for _, k := range stores[0].Keys() {
			fmt.Fprintf(w, "%s\t%.6g\n", k, snap[string(k)])
		}
		return w.Flush()
	}
	return nil
}

func listSchemes(cmd *cobra.Command, args []string) error {
	fmt.Println("translational:")
	for _, name := range scheme.TranslationalNames() {
		t, _ := scheme.ParseTranslational(name)
		damped := ""
		if t.Damped() {
			damped = "  (rayleigh damped)"
		}
		fmt.Printf("  %s%s\n", name, damped)
	}
	fmt.Println("rotational:")
	for _, name := range scheme.RotationalNames() {
		fmt.Printf("  %s\n", name)
	}
	return nil
}

func simulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, log.StandardLogger())
	if err := exp.Setup(exp.Registry().DefaultMetrics()); err != nil {
		return err
	}

	var renderer *tui.LiveRenderer
	if live {
		renderer = tui.NewLiveRenderer(os.Stdout, fmt.Sprintf("%s  %s", cfg.Model, cfg.Damping.SchemeType), exp.Model().Dim(), frameRate)
		exp.GetSimulator().AddObserver(renderer)
		renderer.Start()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	fmt.Printf("running %s with %s...\n", cfg.Model, cfg.Damping.SchemeType)
	start := time.Now()
	result, err := exp.Run(ctx)
	if renderer != nil {
		renderer.Stop()
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	coeffs := exp.GetSimulator().Solver().Coefficients()

	fmt.Printf("completed in %v (%d steps)\n", elapsed, result.StepsTaken)
	if saveRun {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.Run{Config: cfg, Coefficients: coeffs, Result: result})
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Println()
	fmt.Println(viz.CoefficientReport(coeffs))
	fmt.Println(viz.MetricsReport(result.Metrics))
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
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT\tSCHEME\tALPHA\tBETA")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.2es\t%s\t%.4g\t%.4g\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Scheme,
			run.Coefficients.Alpha,
			run.Coefficients.Beta,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *dynamo.Result, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	result, err := st.LoadResponse(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(result.Displacements) == 0 {
		return nil, nil, fmt.Errorf("run %s has no data", runID)
	}
	return meta, result, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s  scheme: %s\n", meta.Model, meta.Scheme)
	fmt.Printf("samples: %d\n\n", len(result.Times))

	probes := len(result.Probes)
	maxPlots := 4
	first := 0
	if probes > maxPlots {
		first = probes - maxPlots
	}
	for p := first; p < probes; p++ {
		graph := asciigraph.Plot(result.Series(p),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("u%d vs time", result.Probes[p])),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func pickProbe(result *dynamo.Result) (int, error) {
	p := probe
	if p < 0 {
		p = len(result.Probes) - 1
	}
	if p >= len(result.Probes) {
		return 0, fmt.Errorf("probe %d out of range, run has %d", p, len(result.Probes))
	}
	return p, nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	p, err := pickProbe(result)
	if err != nil {
		return err
	}
	if len(result.Times) < 2 {
		return fmt.Errorf("run %s has too few samples", meta.ID)
	}

	series := result.Series(p)
	sampling := result.Times[1] - result.Times[0]

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("model: %s  scheme: %s  probe: u%d\n\n", meta.Model, meta.Scheme, result.Probes[p])

	omega, amp, err := analysis.Spectrum(series, sampling)
	if err != nil {
		return err
	}
	cut := len(amp) / 4
	if cut < 2 {
		cut = len(amp)
	}
	fmt.Println(asciigraph.Plot(amp[:cut],
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("amplitude spectrum, 0..%.1f rad/s", omega[cut-1])),
	))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	dominant, err := analysis.DominantFrequency(series, sampling)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "dominant frequency\t%.4f rad/s\n", dominant)
	if xi, err := analysis.LogDecrement(series); err == nil {
		fmt.Fprintf(w, "measured damping ratio\t%.5f\n", xi)
	} else {
		fmt.Fprintf(w, "measured damping ratio\tn/a (%v)\n", err)
	}
	if dominant > 0 {
		c := meta.Coefficients
		fmt.Fprintf(w, "rayleigh ratio at dominant\t%.5f\n", analysis.RayleighRatio(c.Alpha, c.Beta, dominant))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if phase {
		fmt.Println()
		fmt.Println(analysis.PhasePortraitToASCII(analysis.PhasePortrait(result, p), 70, 20))
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	presets := config.ListPresets(args[0])
	if len(presets) == 0 {
		fmt.Printf("no presets for model: %s\n", args[0])
		return nil
	}
	fmt.Printf("presets for %s:\n", args[0])
	for _, p := range presets {
		fmt.Printf("  %s\n", p)
	}
	return nil
}

func tune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	tuned, err := tui.RunTuner(cfg)
	if err != nil {
		return err
	}
	if outPath != "" {
		if err := config.Save(outPath, tuned); err != nil {
			return err
		}
		fmt.Printf("saved %s\n", outPath)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if outPath == "" {
		return storage.WriteJSON(os.Stdout, meta, result)
	}
	return storage.ExportJSON(outPath, meta, result)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var svg string
	if phase {
		p, err := pickProbe(result)
		if err != nil {
			return err
		}
		svg = export.PhaseToSVG(analysis.PhasePortrait(result, p), 800, 600)
	} else {
		svg = export.ResponseToSVG(result, 800, 400)
	}

	path := outPath
	if path == "" {
		path = meta.ID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

// parseRange reads name=lo:hi:n.
func parseRange(s string) (string, []float64, error) {
	name, bounds, ok := strings.Cut(s, "=")
	if !ok {
		return "", nil, fmt.Errorf("bad range %q, want name=lo:hi:n", s)
	}
	parts := strings.Split(bounds, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("bad range %q, want name=lo:hi:n", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, err
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, err
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", nil, err
	}
	return strings.TrimSpace(name), optim.Linspace(lo, hi, n), nil
}

func sweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(sweepParams) == 0 {
		return fmt.Errorf("no --param given")
	}

	names := make([]string, 0, len(sweepParams))
	ranges := make([][]float64, 0, len(sweepParams))
	for _, s := range sweepParams {
		name, values, err := parseRange(s)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	gs := optim.NewGridSearch(names, ranges)
	best, value, err := gs.Search(ctx, optim.ConfigBuilder(cfg, log.StandardLogger()), metricName)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(metricName))
	for _, tr := range gs.Trials() {
		row := make([]string, 0, len(names)+1)
		for _, n := range names {
			row = append(row, fmt.Sprintf("%.4g", tr.Params[n]))
		}
		if tr.Err != nil {
			row = append(row, "failed")
		} else {
			row = append(row, fmt.Sprintf("%.6g", tr.Value))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	keys := make([]string, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Printf("\nbest %s = %.6g at", metricName, value)
	for _, k := range keys {
		fmt.Printf(" %s=%.4g", k, best[k])
	}
	fmt.Println()
	return nil
}

func compareSchemes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args[:1])
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, log.StandardLogger())
	cases := make([]sim.Case, 0, len(args)-1)
	for _, name := range args[1:] {
		c := cfg.Clone()
		c.Damping.SchemeType = name
		_, settings, err := experiment.New(c, log.StandardLogger()).Settings()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		cases = append(cases, sim.Case{Name: name, Settings: settings})
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	fmt.Printf("comparing schemes for %s (dt=%.2e, duration=%.2fs)\n\n", cfg.Model, cfg.Dt, cfg.Duration)
	results, err := sim.Compare(ctx, exp.SetupFunc(), cases, exp.RunConfig(), log.StandardLogger())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCHEME\tALPHA\tBETA\tENERGY_DECAY\tPEAK\tSTABILITY")
	for _, r := range results {
		m := r.Result.Metrics
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\t%.4g\t%.0f\n",
			r.Name, r.Coefficients.Alpha, r.Coefficients.Beta,
			m["energy_decay"], m["peak_displacement"], m["stability"])
	}
	return w.Flush()
}

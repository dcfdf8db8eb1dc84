package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/dampcal/internal/viz"
)

var (
	dataDir  string
	logLevel string
	theme    string

	// Run options. A flag overrides the preset or config file only when
	// it was set explicitly.
	dt          float64
	duration    float64
	schemeType  string
	rotational  string
	xi1         float64
	xiN         float64
	omega1      float64
	omegaN      float64
	gFactor     float64
	thetaFactor float64
	calculateXi bool
	rangePolicy string
	nodes       int
	recordEvery int
	configFile  string
	preset      string

	saveRun   bool
	live      bool
	frameRate int
	ranks     int

	probe   int
	outPath string
	phase   bool

	sweepParams []string
	metricName  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "dampcal",
		Short:         "rayleigh damping calibration for explicit schemes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(lvl)
			viz.SetTheme(theme)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dampcal", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "terminal", fmt.Sprintf("color theme %v", viz.ThemeNames()))

	calibrateCmd := &cobra.Command{
		Use:   "calibrate [model]",
		Short: "compute the damping coefficients",
		Args:  cobra.MaximumNArgs(1),
		RunE:  calibrate,
	}
	runFlags(calibrateCmd)
	calibrateCmd.Flags().IntVar(&ranks, "ranks", 1, "initialize this many partition stores")

	schemesCmd := &cobra.Command{
		Use:   "schemes",
		Short: "list scheme identifiers",
		RunE:  listSchemes,
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate [model]",
		Short: "calibrate and run a model",
		Args:  cobra.MaximumNArgs(1),
		RunE:  simulate,
	}
	runFlags(simulateCmd)
	simulateCmd.Flags().BoolVar(&saveRun, "save", true, "store the run")
	simulateCmd.Flags().BoolVar(&live, "live", false, "draw the chain while running")
	simulateCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate of the live view")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the recorded displacements",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "measure frequency and damping of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&probe, "probe", -1, "probe index (default last)")
	analyzeCmd.Flags().BoolVar(&phase, "phase", false, "also draw the phase portrait")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE:  listPresets,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune [model]",
		Short: "interactive damping tuner",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tune,
	}
	runFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&outPath, "out", "", "write the tuned configuration here (yaml)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the response as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&outPath, "out", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().BoolVar(&phase, "phase", false, "render the phase portrait instead")
	exportSVGCmd.Flags().IntVar(&probe, "probe", -1, "probe index for the phase portrait (default last)")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "grid search over calibration options",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweep,
	}
	runFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "name=lo:hi:n, repeatable")
	sweepCmd.Flags().StringVar(&metricName, "metric", "energy_decay", "metric to minimize")

	compareCmd := &cobra.Command{
		Use:   "compare [model] [scheme1] [scheme2] ...",
		Short: "compare schemes on the same model",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareSchemes,
	}
	runFlags(compareCmd)

	rootCmd.AddCommand(calibrateCmd, schemesCmd, simulateCmd, listCmd, plotCmd, analyzeCmd, presetsCmd,
		tuneCmd, exportJSONCmd, exportSVGCmd, sweepCmd, compareCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml or ini)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.Float64Var(&dt, "dt", 0, "time step")
	f.Float64Var(&duration, "time", 0, "duration")
	f.StringVar(&schemeType, "scheme", "", "translational scheme")
	f.StringVar(&rotational, "rotational", "", "rotational scheme")
	f.Float64Var(&xi1, "xi1", 0, "damping ratio at omega_1")
	f.Float64Var(&xiN, "xin", 0, "damping ratio at omega_n")
	f.Float64Var(&omega1, "omega1", 0, "first reference frequency (rad/s)")
	f.Float64Var(&omegaN, "omegan", 0, "second reference frequency (rad/s)")
	f.Float64Var(&gFactor, "g-factor", 0, "stability factor (central differences)")
	f.Float64Var(&thetaFactor, "theta-factor", 1, "theta factor (central differences)")
	f.BoolVar(&calculateXi, "calculate-xi", false, "derive xi_1 and xi_n from the stability factor")
	f.StringVar(&rangePolicy, "range-policy", "warn", "ratios outside [0, 1): ignore, warn or reject")
	f.IntVar(&nodes, "nodes", 0, "number of nodes")
	f.IntVar(&recordEvery, "record-every", 0, "record every n-th step")
}

package main

import (
	"fmt"
	"os"

	"github.com/san-kum/fracsolve/internal/config"
	"github.com/san-kum/fracsolve/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool
	logger     *zap.Logger

	alpha      float64
	lambda     float64
	points     int
	gamma      float64
	method     string
	jacobian   string
	maxIter    int
	tol        float64
	evalPoints int

	noSave   bool
	showPlot bool
	output   string

	sweepField string
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
	sweepLimit int
	plain      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "fracsolve",
		Short:        "LS-SVR collocation solver for the fractional Bratu equation",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = logging.New(verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".fracsolve", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "solve one problem and store the run",
		Args:  cobra.NoArgs,
		RunE:  runSolve,
	}
	addProblemFlags(solveCmd)
	solveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	solveCmd.Flags().BoolVar(&showPlot, "plot", false, "print an ascii plot of the solution")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "solve the fractional and classical cases and compare with the exact solution",
		Args:  cobra.NoArgs,
		RunE:  runCompare,
	}
	addProblemFlags(compareCmd)
	compareCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")
	compareCmd.Flags().StringVarP(&output, "svg", "o", "", "write the three curves to an svg file")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "solve in parallel over a range of one parameter",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addProblemFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepField, "field", "alpha", "parameter to vary (alpha, lambda, gamma, n)")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.5, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1.0, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 6, "number of values")
	sweepCmd.Flags().IntVar(&sweepLimit, "limit", 0, "concurrent solves (0 = GOMAXPROCS)")
	sweepCmd.Flags().BoolVar(&plain, "plain", false, "print a table instead of the interactive view")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored solution",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the solution curve to csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the solution curve to svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <run_id>.svg)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-12s alpha=%g lambda=%g n=%d gamma=%g %s/%s\n",
					name, p.Alpha, p.Lambda, p.N, p.Gamma, p.Method, p.Jacobian)
			}
			return nil
		},
	}

	rootCmd.AddCommand(solveCmd, compareCmd, sweepCmd, listCmd, showCmd, plotCmd, exportCSVCmd, exportSVGCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addProblemFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	cmd.Flags().Float64Var(&alpha, "alpha", d.Alpha, "fractional order in (0, 1]")
	cmd.Flags().Float64Var(&lambda, "lambda", d.Lambda, "Bratu parameter")
	cmd.Flags().IntVar(&points, "n", d.N, "number of collocation points")
	cmd.Flags().Float64Var(&gamma, "gamma", d.Gamma, "RBF width parameter")
	cmd.Flags().StringVar(&method, "method", d.Method, "root finder (newton, broyden)")
	cmd.Flags().StringVar(&jacobian, "jacobian", d.Jacobian, "jacobian (fd, analytic)")
	cmd.Flags().IntVar(&maxIter, "max-iter", d.MaxIter, "root finder iteration limit")
	cmd.Flags().Float64Var(&tol, "tol", d.Tol, "residual tolerance")
	cmd.Flags().IntVar(&evalPoints, "eval-points", d.EvalPoints, "points the solution is sampled on")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig applies, in increasing precedence, defaults, the preset, the
// config file and explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
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
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("alpha") {
		cfg.Alpha = alpha
	}
	if flags.Changed("lambda") {
		cfg.Lambda = lambda
	}
	if flags.Changed("n") {
		cfg.N = points
		cfg.Grid = nil
	}
	if flags.Changed("gamma") {
		cfg.Gamma = gamma
	}
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("jacobian") {
		cfg.Jacobian = jacobian
	}
	if flags.Changed("max-iter") {
		cfg.MaxIter = maxIter
	}
	if flags.Changed("tol") {
		cfg.Tol = tol
	}
	if flags.Changed("eval-points") {
		cfg.EvalPoints = evalPoints
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

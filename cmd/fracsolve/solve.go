package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/fracsolve/internal/bratu"
	"github.com/san-kum/fracsolve/internal/config"
	"github.com/san-kum/fracsolve/internal/export"
	"github.com/san-kum/fracsolve/internal/reference"
	"github.com/san-kum/fracsolve/internal/storage"
	"github.com/san-kum/fracsolve/internal/viz"
	"github.com/spf13/cobra"
)

func newSolver(cfg *config.Config) (*bratu.Solver, error) {
	opts, err := cfg.SolverOptions()
	if err != nil {
		return nil, err
	}
	return bratu.NewSolver(append(opts, bratu.WithLogger(logger))...), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// sample evaluates the solution on the uniform evaluation grid.
func sample(sol *bratu.Solution, n int) ([]float64, []float64, error) {
	xs := bratu.Linspace(0, 1, n)
	us, err := sol.Predict(xs)
	if err != nil {
		return nil, nil, err
	}
	return xs, us, nil
}

func printStatus(label string, sol *bratu.Solution, extra ...string) {
	fmt.Println(viz.StatusBlock(label, sol, extra...))
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	solver, err := newSolver(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	sol, err := solver.Solve(ctx, cfg.Params())
	if err != nil {
		return err
	}
	xs, us, err := sample(sol, cfg.EvalPoints)
	if err != nil {
		return err
	}

	printStatus("solve", sol)
	if showPlot {
		fmt.Println()
		fmt.Println(viz.Curves(fmt.Sprintf("u(x), alpha=%g", cfg.Alpha), 12, 80, us))
	}

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.Record{Method: cfg.Method, Solution: sol, X: xs, U: us})
	if err != nil {
		return err
	}
	fmt.Printf("\nsaved: %s\n", runID)
	return nil
}

type comparison struct {
	label   string
	sol     *bratu.Solution
	u       []float64
	metrics map[string]float64
}

// runCompare solves the configured fractional order and α = 1 on the same
// grid and measures both against the classical closed form.
func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	solver, err := newSolver(cfg)
	if err != nil {
		return err
	}

	xs := bratu.Linspace(0, 1, cfg.EvalPoints)
	exact, err := reference.Sample(cfg.Lambda, xs)
	if err != nil {
		return fmt.Errorf("exact solution: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fractional := cfg.Params()
	classical := cfg.Params()
	classical.Alpha = 1

	var runs []comparison
	for _, c := range []struct {
		label string
		p     bratu.Params
	}{
		{fmt.Sprintf("LS-SVR alpha=%g", fractional.Alpha), fractional},
		{"LS-SVR alpha=1", classical},
	} {
		sol, err := solver.Solve(ctx, c.p)
		if err != nil {
			return err
		}
		us, err := sol.Predict(xs)
		if err != nil {
			return err
		}
		metrics, err := reference.Evaluate(us, exact, reference.DefaultMetrics()...)
		if err != nil {
			return err
		}
		runs = append(runs, comparison{label: c.label, sol: sol, u: us, metrics: metrics})
	}

	for i, r := range runs {
		if i > 0 {
			fmt.Println(viz.Separator(60))
		}
		printStatus(r.label, r.sol,
			viz.Metric("rel L2", fmt.Sprintf("%.3e", r.metrics["rel_l2"]))+"  "+
				viz.Metric("max err", fmt.Sprintf("%.3e", r.metrics["max_abs"])))
	}
	fmt.Println()
	fmt.Println(viz.Curves("fractional, alpha=1, exact", 12, 80, runs[0].u, runs[1].u, exact))

	if output != "" {
		plot := export.Plot{
			Title:  fmt.Sprintf("Fractional Bratu, lambda=%g", cfg.Lambda),
			XLabel: "x",
			YLabel: "u(x)",
			Series: []export.Series{
				{Label: runs[0].label, X: xs, Y: runs[0].u},
				{Label: runs[1].label, X: xs, Y: runs[1].u},
				{Label: "exact (alpha=1)", X: xs, Y: exact, Dashed: true},
			},
		}
		if err := writeSVG(output, plot); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", output)
	}

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	for _, r := range runs {
		runID, err := st.Save(storage.Record{Method: cfg.Method, Solution: r.sol, X: xs, U: r.u, Metrics: r.metrics})
		if err != nil {
			return err
		}
		fmt.Printf("saved: %s\n", runID)
	}
	return nil
}

func writeSVG(path string, plot export.Plot) error {
	svg, err := plot.SVG()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(svg), 0644)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if sweepSteps < 1 {
		return fmt.Errorf("steps must be positive, got %d", sweepSteps)
	}
	params, err := bratu.Vary(cfg.Params(), sweepField, bratu.Linspace(sweepFrom, sweepTo, sweepSteps))
	if err != nil {
		return err
	}
	solver, err := newSolver(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if plain {
		results, err := solver.Sweep(ctx, params, sweepLimit, nil)
		if err != nil {
			return err
		}
		rows := make([]viz.Row, len(results))
		for i, r := range results {
			rows[i] = viz.NewRow(sweepField, r)
		}
		fmt.Print(viz.SweepTable(sweepField, rows))
		return nil
	}

	p := tea.NewProgram(viz.NewSweepModel(sweepField, len(params)))
	go func() {
		_, err := solver.Sweep(ctx, params, sweepLimit, func(r bratu.SweepResult) {
			p.Send(viz.ResultMsg(r))
		})
		p.Send(viz.DoneMsg{Err: err})
	}()

	final, err := p.Run()
	cancel()
	if err != nil {
		return err
	}
	if m, ok := final.(viz.SweepModel); ok && m.Err() != nil && !errors.Is(m.Err(), context.Canceled) {
		return m.Err()
	}
	return nil
}

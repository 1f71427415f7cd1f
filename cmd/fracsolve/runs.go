package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/san-kum/fracsolve/internal/export"
	"github.com/san-kum/fracsolve/internal/reference"
	"github.com/san-kum/fracsolve/internal/storage"
	"github.com/san-kum/fracsolve/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

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
	fmt.Fprintln(w, "ID\tTIME\tALPHA\tLAMBDA\tN\tGAMMA\tMETHOD\tSTATUS\tITERS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%d\t%g\t%s\t%s\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Params.Alpha,
			run.Params.Lambda,
			run.Params.Points(),
			run.Params.Gamma,
			run.Method,
			run.Status.Outcome,
			run.Status.Iterations,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta)
}

// exactFor returns the classical solution for overlay, or nil when the run
// is fractional or λ admits no real solution.
func exactFor(meta *storage.RunMetadata, xs []float64) []float64 {
	if meta.Params.Alpha != 1 {
		return nil
	}
	exact, err := reference.Sample(meta.Params.Lambda, xs)
	if err != nil {
		logger.Debug("no exact overlay", zap.Error(err))
		return nil
	}
	return exact
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	xs, us, err := st.LoadSolution(runID)
	if err != nil {
		return err
	}
	if len(us) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("%s\n", meta.Params)
	fmt.Printf("status: %s (%s)\n\n", meta.Status.Outcome, meta.Status.Message)

	series := [][]float64{us}
	caption := "u(x)"
	if exact := exactFor(meta, xs); exact != nil {
		series = append(series, exact)
		caption = "u(x) and exact solution"
	}
	fmt.Println(viz.Curves(caption, 12, 80, series...))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if output == "" {
		return st.ExportCSV(args[0], os.Stdout)
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := st.ExportCSV(args[0], f); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", output)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	xs, us, err := st.LoadSolution(runID)
	if err != nil {
		return err
	}

	plot := export.Plot{
		Title:  fmt.Sprintf("Fractional Bratu (%s)", meta.Params),
		XLabel: "x",
		YLabel: "u(x)",
		Series: []export.Series{{Label: "LS-SVR", X: xs, Y: us}},
	}
	if exact := exactFor(meta, xs); exact != nil {
		plot.Series = append(plot.Series, export.Series{Label: "exact", X: xs, Y: exact, Dashed: true})
	}

	path := output
	if path == "" {
		path = runID + ".svg"
	}
	if err := writeSVG(path, plot); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

package bratu

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// SweepResult pairs one parameter set with its solution.
type SweepResult struct {
	Index    int
	Params   Params
	Solution *Solution
}

// Sweep solves every parameter set, at most limit at a time (GOMAXPROCS when
// limit <= 0). Results are returned in input order. The first error cancels
// the remaining solves. onDone, when non-nil, is called from the worker
// goroutines as each solve finishes and must be safe for concurrent use.
func (s *Solver) Sweep(ctx context.Context, params []Params, limit int, onDone func(SweepResult)) ([]SweepResult, error) {
	for i, p := range params {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("sweep entry %d: %w", i, err)
		}
	}
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]SweepResult, len(params))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, p := range params {
		g.Go(func() error {
			sol, err := s.Solve(gctx, p)
			if err != nil {
				return fmt.Errorf("sweep entry %d: %w", i, err)
			}
			results[i] = SweepResult{Index: i, Params: p, Solution: sol}
			if onDone != nil {
				onDone(results[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Vary returns copies of base with one field replaced by each value.
// Supported fields are alpha, lambda, gamma and n; values for n are rounded
// to the nearest integer.
func Vary(base Params, field string, values []float64) ([]Params, error) {
	out := make([]Params, len(values))
	for i, v := range values {
		p := base
		switch field {
		case "alpha":
			p.Alpha = v
		case "lambda":
			p.Lambda = v
		case "gamma":
			p.Gamma = v
		case "n":
			p.N = int(math.Round(v))
			p.Grid = nil
		default:
			return nil, fmt.Errorf("%w: cannot sweep over %q", ErrInvalidParams, field)
		}
		out[i] = p
	}
	return out, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

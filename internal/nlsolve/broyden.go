package nlsolve

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Broyden is Broyden's "good" quasi-Newton method. The Jacobian estimate is
// initialised like Newton's and then corrected by rank-one secant updates;
// it is recomputed once whenever the line search fails with a stale estimate.
type Broyden struct{}

func NewBroyden() *Broyden { return &Broyden{} }

func (b *Broyden) Name() string { return "broyden" }

func (b *Broyden) Solve(ctx context.Context, p Problem, x0 []float64, s Settings) (*Result, error) {
	if err := p.validate(x0); err != nil {
		return nil, err
	}
	s = s.withDefaults()

	st, err := newState(p, x0, s)
	if err != nil {
		return nil, err
	}
	if !allFinite(st.f) {
		return st.result(0, 0, NonFinite, "residual is not finite at the initial guess"), nil
	}

	j := mat.NewDense(p.Dim, p.Dim, nil)
	if err := st.jacobian(j); err != nil {
		return nil, err
	}
	fresh := true
	dx := mat.NewVecDense(p.Dim, nil)
	fPrev := make([]float64, p.Dim)
	df := make([]float64, p.Dim)
	maxCond := 0.0

	for iter := 0; ; iter++ {
		if norm := maxAbs(st.f); norm <= s.Tolerance {
			return st.result(iter, maxCond, Success,
				fmt.Sprintf("converged in %d iterations (|F|=%.3e)", iter, norm)), nil
		}
		if iter == s.MaxIterations {
			return st.result(iter, maxCond, IterationLimit,
				fmt.Sprintf("no convergence after %d iterations (|F|=%.3e)", iter, maxAbs(st.f))), nil
		}
		if err := canceled(ctx); err != nil {
			return nil, err
		}

		cond, ok := newtonStep(dx, j, st.f)
		maxCond = math.Max(maxCond, cond)
		if !ok && fresh {
			return st.result(iter, maxCond, SingularJacobian,
				fmt.Sprintf("jacobian is singular at iteration %d (cond=%.3e)", iter, cond)), nil
		}

		var step []float64
		if ok {
			copy(fPrev, st.f)
			step, ok, err = st.lineSearch(dx.RawVector().Data)
			if err != nil {
				return nil, err
			}
		}
		if !ok {
			if fresh {
				return st.result(iter+1, maxCond, NoProgress,
					fmt.Sprintf("line search failed at iteration %d (|F|=%.3e)", iter, maxAbs(st.f))), nil
			}
			if err := st.jacobian(j); err != nil {
				return nil, err
			}
			fresh = true
			continue
		}
		if st.stalled(step) && maxAbs(st.f) > s.Tolerance {
			return st.result(iter+1, maxCond, NoProgress,
				fmt.Sprintf("step below tolerance at iteration %d (|F|=%.3e)", iter, maxAbs(st.f))), nil
		}

		floats.SubTo(df, st.f, fPrev)
		broydenUpdate(j, step, df)
		fresh = false
	}
}

// broydenUpdate applies J += (df - J·dx) dxᵀ / (dxᵀdx).
func broydenUpdate(j *mat.Dense, dx, df []float64) {
	den := floats.Dot(dx, dx)
	if den == 0 {
		return
	}
	n := len(dx)
	jdx := mat.NewVecDense(n, nil)
	jdx.MulVec(j, mat.NewVecDense(n, dx))

	u := mat.NewVecDense(n, nil)
	u.SubVec(mat.NewVecDense(n, df), jdx)
	u.ScaleVec(1/den, u)
	j.RankOne(j, 1, u, mat.NewVecDense(n, dx))
}

package nlsolve

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Newton is a damped Newton-Raphson method. The Jacobian is taken from the
// problem when available and from forward differences otherwise.
type Newton struct{}

func NewNewton() *Newton { return &Newton{} }

func (n *Newton) Name() string { return "newton" }

func (n *Newton) Solve(ctx context.Context, p Problem, x0 []float64, s Settings) (*Result, error) {
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
	dx := mat.NewVecDense(p.Dim, nil)
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

		if err := st.jacobian(j); err != nil {
			return nil, err
		}
		cond, ok := newtonStep(dx, j, st.f)
		maxCond = math.Max(maxCond, cond)
		if !ok {
			return st.result(iter, maxCond, SingularJacobian,
				fmt.Sprintf("jacobian is singular at iteration %d (cond=%.3e)", iter, cond)), nil
		}

		step, ok, err := st.lineSearch(dx.RawVector().Data)
		if err != nil {
			return nil, err
		}
		if !ok {
			return st.result(iter+1, maxCond, NoProgress,
				fmt.Sprintf("line search failed at iteration %d (|F|=%.3e)", iter, maxAbs(st.f))), nil
		}
		if st.stalled(step) && maxAbs(st.f) > s.Tolerance {
			return st.result(iter+1, maxCond, NoProgress,
				fmt.Sprintf("step below tolerance at iteration %d (|F|=%.3e)", iter, maxAbs(st.f))), nil
		}
	}
}

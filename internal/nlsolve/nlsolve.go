// Package nlsolve finds roots of dense nonlinear systems F(x) = 0.
//
// Methods treat F as a black box. Failure to converge is not an error: it is
// reported through [Result.Status] so the caller can decide whether to retry
// with another starting point or discretization. Errors are returned only for
// malformed problems, failing function evaluations and context cancellation.
//
//   - [Newton]: damped Newton with backtracking on ½‖F‖²
//   - [Broyden]: Broyden's rank-one quasi-Newton update with the same line search
package nlsolve

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidProblem indicates a problem with no function or a non-positive dimension.
	ErrInvalidProblem = errors.New("nlsolve: invalid problem")

	// ErrDimensionMismatch indicates an initial guess of the wrong length.
	ErrDimensionMismatch = errors.New("nlsolve: initial guess does not match problem dimension")
)

// Problem describes F: R^Dim -> R^Dim.
type Problem struct {
	Dim int

	// Func writes F(x) into dst.
	Func func(dst, x []float64) error

	// Jacobian writes dF/dx into dst. When nil, forward differences are used.
	Jacobian func(dst *mat.Dense, x []float64) error
}

func (p Problem) validate(x0 []float64) error {
	if p.Func == nil {
		return fmt.Errorf("%w: nil function", ErrInvalidProblem)
	}
	if p.Dim <= 0 {
		return fmt.Errorf("%w: dimension %d", ErrInvalidProblem, p.Dim)
	}
	if len(x0) != p.Dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(x0), p.Dim)
	}
	return nil
}

// Settings bounds the iteration.
type Settings struct {
	// MaxIterations caps Jacobian solves.
	MaxIterations int
	// Tolerance on max |F_i| for convergence.
	Tolerance float64
	// StepTolerance is the relative step length below which the iteration
	// is considered stalled.
	StepTolerance float64
	// MinDamping is the smallest line-search fraction tried before giving up.
	MinDamping float64
}

// DefaultSettings returns the limits used for every zero field of Settings.
func DefaultSettings() Settings {
	return Settings{
		MaxIterations: 100,
		Tolerance:     1e-10,
		StepTolerance: 1e-14,
		MinDamping:    1.0 / 1024,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.MaxIterations <= 0 {
		s.MaxIterations = d.MaxIterations
	}
	if s.Tolerance <= 0 {
		s.Tolerance = d.Tolerance
	}
	if s.StepTolerance <= 0 {
		s.StepTolerance = d.StepTolerance
	}
	if s.MinDamping <= 0 || s.MinDamping > 1 {
		s.MinDamping = d.MinDamping
	}
	return s
}

// Result is the outcome of a solve. X always holds the best iterate found.
type Result struct {
	X          []float64
	F          []float64
	Norm       float64
	Iterations int
	FuncEvals  int
	// MaxCondition is the largest Jacobian condition estimate seen.
	MaxCondition float64
	Status       Status
	Message      string
}

func (r *Result) Converged() bool { return r.Status == Success }

// Method is a root-finding algorithm.
type Method interface {
	Name() string
	Solve(ctx context.Context, p Problem, x0 []float64, s Settings) (*Result, error)
}

// state is the iterate shared by the methods.
type state struct {
	p     Problem
	s     Settings
	x     []float64
	f     []float64
	evals int
}

func newState(p Problem, x0 []float64, s Settings) (*state, error) {
	st := &state{
		p: p,
		s: s,
		x: append([]float64(nil), x0...),
		f: make([]float64, p.Dim),
	}
	if err := st.eval(st.f, st.x); err != nil {
		return nil, err
	}
	return st, nil
}

func (st *state) eval(dst, x []float64) error {
	st.evals++
	if err := st.p.Func(dst, x); err != nil {
		return fmt.Errorf("nlsolve: evaluating function: %w", err)
	}
	return nil
}

func (st *state) result(iter int, cond float64, status Status, msg string) *Result {
	return &Result{
		X:            st.x,
		F:            st.f,
		Norm:         maxAbs(st.f),
		Iterations:   iter,
		FuncEvals:    st.evals,
		MaxCondition: cond,
		Status:       status,
		Message:      msg,
	}
}

// jacobian fills dst at the current iterate.
func (st *state) jacobian(dst *mat.Dense) error {
	if st.p.Jacobian != nil {
		if err := st.p.Jacobian(dst, st.x); err != nil {
			return fmt.Errorf("nlsolve: evaluating jacobian: %w", err)
		}
		return nil
	}

	var evalErr error
	step := math.Sqrt(2.2e-16) * math.Max(1, maxAbs(st.x))
	fd.Jacobian(dst, func(y, x []float64) {
		if evalErr != nil {
			return
		}
		st.evals++
		evalErr = st.p.Func(y, x)
	}, st.x, &fd.JacobianSettings{
		Formula:     fd.Forward,
		OriginValue: st.f,
		Step:        step,
	})
	if evalErr != nil {
		return fmt.Errorf("nlsolve: evaluating function: %w", evalErr)
	}
	return nil
}

// newtonStep solves J dx = -f. It reports ok=false when the system is
// numerically singular; ill-conditioned systems are still solved and their
// condition estimate returned.
func newtonStep(dx *mat.VecDense, j *mat.Dense, f []float64) (cond float64, ok bool) {
	var lu mat.LU
	lu.Factorize(j)
	cond = lu.Cond()
	if math.IsInf(cond, 1) || math.IsNaN(cond) {
		return cond, false
	}

	rhs := mat.NewVecDense(len(f), nil)
	for i, v := range f {
		rhs.SetVec(i, -v)
	}
	if err := lu.SolveVecTo(dx, false, rhs); err != nil {
		var c mat.Condition
		if !errors.As(err, &c) {
			return cond, false
		}
	}
	return cond, allFinite(dx.RawVector().Data)
}

// lineSearch backtracks along dx until ½‖F‖² decreases sufficiently.
// On success the iterate is advanced and the accepted step is returned.
func (st *state) lineSearch(dx []float64) (step []float64, ok bool, err error) {
	n := len(st.x)
	xt := make([]float64, n)
	ft := make([]float64, n)
	f0 := floats.Norm(st.f, 2)

	for t := 1.0; t >= st.s.MinDamping; t /= 2 {
		floats.AddScaledTo(xt, st.x, t, dx)
		if err := st.eval(ft, xt); err != nil {
			return nil, false, err
		}
		if !allFinite(ft) {
			continue
		}
		if floats.Norm(ft, 2) <= (1-1e-4*t)*f0 {
			step = make([]float64, n)
			floats.SubTo(step, xt, st.x)
			copy(st.x, xt)
			copy(st.f, ft)
			return step, true, nil
		}
	}
	return nil, false, nil
}

// stalled reports whether step is negligible relative to the iterate.
func (st *state) stalled(step []float64) bool {
	return maxAbs(step) <= st.s.StepTolerance*(maxAbs(st.x)+st.s.StepTolerance)
}

func canceled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func maxAbs(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if math.IsNaN(x) {
			return math.NaN()
		}
		m = math.Max(m, math.Abs(x))
	}
	return m
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

package bratu

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/fracsolve/internal/collocation"
	"github.com/san-kum/fracsolve/internal/grid"
	"github.com/san-kum/fracsolve/internal/kernel"
	"github.com/san-kum/fracsolve/internal/logging"
	"github.com/san-kum/fracsolve/internal/nlsolve"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Status summarizes how the root finder finished.
type Status struct {
	Converged  bool
	Code       nlsolve.Status
	Iterations int
	// Residual is max |F_i| at the returned coefficients.
	Residual float64
	// Condition is the largest Jacobian condition estimate seen.
	Condition float64
	Message   string
}

// Solution is the outcome of one solve. It is returned even when the root
// finder did not converge; Coefficients then hold the best iterate.
type Solution struct {
	Params       Params
	Grid         grid.Grid
	Coefficients []float64
	Matrices     *kernel.Matrices
	Elapsed      time.Duration
	Status       Status
}

// K returns the kernel matrix used by the solve.
func (s *Solution) K() mat.Matrix { return s.Matrices.K() }

// D returns the discrete Caputo derivative of the kernel columns.
func (s *Solution) D() mat.Matrix { return s.Matrices.D() }

// Option configures a Solver.
type Option func(*Solver)

// WithMethod selects the root finder. The default is damped Newton.
func WithMethod(m nlsolve.Method) Option {
	return func(s *Solver) { s.method = m }
}

// WithSettings overrides the iteration limits. Zero fields fall back to
// nlsolve.DefaultSettings.
func WithSettings(st nlsolve.Settings) Option {
	return func(s *Solver) { s.settings = st }
}

// WithAnalyticJacobian hands the closed-form collocation Jacobian to the root
// finder instead of finite differences.
func WithAnalyticJacobian(on bool) Option {
	return func(s *Solver) { s.analytic = on }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Solver) { s.logger = logging.OrNop(l) }
}

type Solver struct {
	method   nlsolve.Method
	settings nlsolve.Settings
	analytic bool
	logger   *zap.Logger
}

func NewSolver(opts ...Option) *Solver {
	s := &Solver{
		method:   nlsolve.NewNewton(),
		settings: nlsolve.DefaultSettings(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Method returns the name of the configured root finder.
func (s *Solver) Method() string { return s.method.Name() }

// Solve builds the collocation system for p and solves it from the zero
// coefficient vector. Invalid parameters, cancellation and failing
// evaluations are errors; non-convergence is reported in Solution.Status.
func (s *Solver) Solve(ctx context.Context, p Params) (*Solution, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	g, err := p.buildGrid()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	m, err := kernel.Build(g, p.Alpha, p.Gamma)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	s.logger.Debug("matrices built",
		zap.Int("n", m.Size()),
		zap.Float64("alpha", m.Alpha()),
		zap.Float64("gamma", m.Kernel().Gamma),
		zap.Float64("h", m.Grid().Spacing()),
		zap.Duration("took", time.Since(start)))

	sys := collocation.NewSystem(m, p.Lambda)
	prob := nlsolve.Problem{Dim: sys.Size(), Func: sys.Residual}
	if s.analytic {
		prob.Jacobian = sys.Jacobian
	}

	res, err := s.method.Solve(ctx, prob, make([]float64, sys.Size()), s.settings)
	if err != nil {
		return nil, fmt.Errorf("bratu: %s solve (%s): %w", s.method.Name(), p, err)
	}

	sol := &Solution{
		Params:       p,
		Grid:         g,
		Coefficients: res.X,
		Matrices:     m,
		Elapsed:      time.Since(start),
		Status: Status{
			Converged:  res.Converged(),
			Code:       res.Status,
			Iterations: res.Iterations,
			Residual:   res.Norm,
			Condition:  res.MaxCondition,
			Message:    res.Message,
		},
	}

	fields := []zap.Field{
		zap.String("method", s.method.Name()),
		zap.Float64("alpha", p.Alpha),
		zap.Float64("lambda", sys.Lambda()),
		zap.Int("n", g.Len()),
		zap.Float64("gamma", p.Gamma),
		zap.Int("iterations", res.Iterations),
		zap.Float64("residual", res.Norm),
		zap.Duration("elapsed", sol.Elapsed),
	}
	if !sol.Status.Converged {
		s.logger.Warn("solver did not converge", append(fields,
			zap.Stringer("status", res.Status),
			zap.String("message", res.Message),
			zap.Float64("condition", res.MaxCondition))...)
	} else {
		s.logger.Info("solved", fields...)
	}
	return sol, nil
}

package bratu

import (
	"fmt"

	"github.com/san-kum/fracsolve/internal/kernel"
	"gonum.org/v1/gonum/mat"
)

// Predict evaluates u(x) = Σ_i coef_i exp(-γ(x - grid_i)²) at every point of
// xEval. Points outside [0,1] are extrapolated.
func Predict(xEval, grid, coef []float64, gamma float64) ([]float64, error) {
	if len(grid) != len(coef) {
		return nil, fmt.Errorf("%w: %d grid points, %d coefficients", ErrPredict, len(grid), len(coef))
	}
	if len(grid) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrPredict)
	}
	rbf, err := kernel.NewRBF(gamma)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPredict, err)
	}
	if len(xEval) == 0 {
		return []float64{}, nil
	}

	out := make([]float64, len(xEval))
	u := mat.NewVecDense(len(xEval), out)
	u.MulVec(rbf.Evaluate(xEval, grid), mat.NewVecDense(len(coef), coef))
	return out, nil
}

// Predict evaluates the solved expansion at xs.
func (s *Solution) Predict(xs []float64) ([]float64, error) {
	return Predict(xs, s.Grid.Points(), s.Coefficients, s.Params.Gamma)
}

// Nodal returns u at the collocation points, i.e. K c.
func (s *Solution) Nodal() []float64 {
	out := make([]float64, len(s.Coefficients))
	u := mat.NewVecDense(len(out), out)
	u.MulVec(s.Matrices.K(), mat.NewVecDense(len(s.Coefficients), s.Coefficients))
	return out
}

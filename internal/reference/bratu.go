// Package reference provides the closed-form solution of the classical
// (integer-order) Bratu problem u'' + λ exp(u) = 0, u(0) = u(1) = 0, and
// error metrics for comparing computed curves against it.
//
// The solution is
//
//	u(x) = -2 ln[ cosh((x - 1/2) θ/2) / cosh(θ/4) ]
//
// where θ is the smaller root of θ = √(2λ) cosh(θ/4). Real solutions exist
// for 0 ≤ λ ≤ λc ≈ 3.513830719.
package reference

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/fracsolve/internal/nlsolve"
)

var (
	// ErrLambda indicates a negative or non-finite λ.
	ErrLambda = errors.New("reference: lambda must be finite and non-negative")

	// ErrNoSolution indicates that the θ equation could not be solved.
	ErrNoSolution = errors.New("reference: no real solution for theta")
)

// thetaGuess is the starting point of the θ iteration; it selects the lower branch.
const thetaGuess = 2.0

// Theta solves θ = √(2λ) cosh(θ/4) for the lower-branch root.
func Theta(lambda float64) (float64, error) {
	if math.IsNaN(lambda) || math.IsInf(lambda, 0) || lambda < 0 {
		return 0, fmt.Errorf("%w, got %g", ErrLambda, lambda)
	}
	s := math.Sqrt(2 * lambda)
	p := nlsolve.Problem{
		Dim: 1,
		Func: func(dst, x []float64) error {
			dst[0] = x[0] - s*math.Cosh(x[0]/4)
			return nil
		},
	}

	res, err := nlsolve.NewNewton().Solve(context.Background(), p, []float64{thetaGuess}, nlsolve.Settings{
		MaxIterations: 50,
		Tolerance:     1e-13,
	})
	if err != nil {
		return 0, err
	}
	if !res.Converged() {
		return 0, fmt.Errorf("%w (lambda=%g): %s", ErrNoSolution, lambda, res.Message)
	}
	return res.X[0], nil
}

// Exact returns the classical Bratu solution for λ as a function of x.
func Exact(lambda float64) (func(x float64) float64, error) {
	theta, err := Theta(lambda)
	if err != nil {
		return nil, err
	}
	denom := math.Cosh(theta / 4)
	return func(x float64) float64 {
		return -2 * math.Log(math.Cosh((x-0.5)*theta/2)/denom)
	}, nil
}

// Sample evaluates the exact solution at xs.
func Sample(lambda float64, xs []float64) ([]float64, error) {
	u, err := Exact(lambda)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = u(x)
	}
	return out, nil
}

// Package kernel builds the Gaussian RBF kernel matrix of a collocation grid
// together with its L1 fractional-derivative image.
package kernel

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrGamma indicates a non-positive or non-finite kernel width parameter.
var ErrGamma = errors.New("kernel: gamma must be positive and finite")

// RBF is the Gaussian kernel k(x, y) = exp(-γ (x - y)²).
type RBF struct {
	Gamma float64
}

// NewRBF validates gamma.
func NewRBF(gamma float64) (RBF, error) {
	if math.IsNaN(gamma) || math.IsInf(gamma, 0) || gamma <= 0 {
		return RBF{}, fmt.Errorf("%w, got %g", ErrGamma, gamma)
	}
	return RBF{Gamma: gamma}, nil
}

// Eval returns k(x, y).
func (k RBF) Eval(x, y float64) float64 {
	d := x - y
	return math.Exp(-k.Gamma * d * d)
}

// Evaluate returns the len(xs)×len(centers) matrix E[m,i] = k(xs[m], centers[i]).
func (k RBF) Evaluate(xs, centers []float64) *mat.Dense {
	e := mat.NewDense(len(xs), len(centers), nil)
	for m, x := range xs {
		row := e.RawRowView(m)
		for i, c := range centers {
			row[i] = k.Eval(x, c)
		}
	}
	return e
}

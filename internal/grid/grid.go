// Package grid provides the uniform collocation grid on [0, 1].
package grid

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrTooFewPoints indicates a grid with fewer than two nodes.
	ErrTooFewPoints = errors.New("grid: at least 2 points required")

	// ErrNotIncreasing indicates nodes that are not strictly increasing.
	ErrNotIncreasing = errors.New("grid: points must be strictly increasing")

	// ErrNotUniform indicates unequal spacing between consecutive nodes.
	ErrNotUniform = errors.New("grid: points must be uniformly spaced")

	// ErrOutOfDomain indicates a node outside [0, 1] or a non-finite node.
	ErrOutOfDomain = errors.New("grid: points must lie in [0, 1]")
)

// uniformTol is the relative spacing deviation still accepted as uniform.
const uniformTol = 1e-9

// Grid is an immutable, strictly increasing, uniformly spaced set of nodes.
type Grid struct {
	points []float64
	h      float64
}

// Uniform returns n equally spaced nodes from 0 to 1 inclusive.
func Uniform(n int) (Grid, error) {
	if n < 2 {
		return Grid{}, fmt.Errorf("%w, got %d", ErrTooFewPoints, n)
	}
	pts := floats.Span(make([]float64, n), 0, 1)
	return Grid{points: pts, h: 1.0 / float64(n-1)}, nil
}

// New validates xs and returns a grid holding a private copy of it.
func New(xs []float64) (Grid, error) {
	n := len(xs)
	if n < 2 {
		return Grid{}, fmt.Errorf("%w, got %d", ErrTooFewPoints, n)
	}
	for i, x := range xs {
		if math.IsNaN(x) || x < 0 || x > 1 {
			return Grid{}, fmt.Errorf("%w: x[%d]=%g", ErrOutOfDomain, i, x)
		}
	}

	h := (xs[n-1] - xs[0]) / float64(n-1)
	for i := 1; i < n; i++ {
		step := xs[i] - xs[i-1]
		if step <= 0 {
			return Grid{}, fmt.Errorf("%w: x[%d]=%g after x[%d]=%g", ErrNotIncreasing, i, xs[i], i-1, xs[i-1])
		}
		if math.Abs(step-h) > uniformTol*h {
			return Grid{}, fmt.Errorf("%w: step %d is %g, expected %g", ErrNotUniform, i, step, h)
		}
	}

	pts := make([]float64, n)
	copy(pts, xs)
	return Grid{points: pts, h: h}, nil
}

// Len returns the number of nodes.
func (g Grid) Len() int { return len(g.points) }

// Spacing returns the uniform node distance h.
func (g Grid) Spacing() float64 { return g.h }

// At returns node i.
func (g Grid) At(i int) float64 { return g.points[i] }

// Points returns a copy of the nodes.
func (g Grid) Points() []float64 {
	c := make([]float64, len(g.points))
	copy(c, g.points)
	return c
}

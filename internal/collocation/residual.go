// Package collocation assembles the nonlinear collocation system of the
// fractional Bratu problem D^α u + λ exp(u) = 0, u(0) = u(1) = 0, for a
// kernel expansion u = K·c.
package collocation

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/fracsolve/internal/kernel"
	"gonum.org/v1/gonum/mat"
)

// ErrDimensionMismatch indicates a coefficient vector whose length differs
// from the grid size.
var ErrDimensionMismatch = errors.New("collocation: coefficient length does not match grid")

// System is the residual map F(c) for fixed matrices and λ.
type System struct {
	m      *kernel.Matrices
	lambda float64
}

// NewSystem binds the matrices of one (grid, α, γ) to λ.
func NewSystem(m *kernel.Matrices, lambda float64) *System {
	return &System{m: m, lambda: lambda}
}

func (s *System) Size() int       { return s.m.Size() }
func (s *System) Lambda() float64 { return s.lambda }

// Residual writes F(c) into dst:
//
//	F[0]   = (K c)[0]
//	F[N-1] = (K c)[N-1]
//	F[i]   = (D c)[i] + λ exp((K c)[i]),  1 ≤ i ≤ N-2
//
// Overflow of exp is not clamped; it surfaces as +Inf or NaN entries.
func (s *System) Residual(dst, c []float64) error {
	n := s.m.Size()
	if len(c) != n || len(dst) != n {
		return fmt.Errorf("%w: got %d and %d, want %d", ErrDimensionMismatch, len(c), len(dst), n)
	}

	cv := mat.NewVecDense(n, c)
	u := mat.NewVecDense(n, nil)
	du := mat.NewVecDense(n, nil)
	u.MulVec(s.m.K(), cv)
	du.MulVec(s.m.D(), cv)

	dst[0] = u.AtVec(0)
	dst[n-1] = u.AtVec(n - 1)
	for i := 1; i < n-1; i++ {
		dst[i] = du.AtVec(i) + s.lambda*math.Exp(u.AtVec(i))
	}
	return nil
}

// Jacobian writes dF/dc into dst:
//
//	J[0,:]   = K[0,:]
//	J[N-1,:] = K[N-1,:]
//	J[i,:]   = D[i,:] + λ exp((K c)[i]) K[i,:]
func (s *System) Jacobian(dst *mat.Dense, c []float64) error {
	n := s.m.Size()
	if len(c) != n {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(c), n)
	}
	if r, cols := dst.Dims(); r != n || cols != n {
		return fmt.Errorf("%w: jacobian is %dx%d, want %dx%d", ErrDimensionMismatch, r, cols, n, n)
	}

	k, d := s.m.K(), s.m.D()
	u := mat.NewVecDense(n, nil)
	u.MulVec(k, mat.NewVecDense(n, c))

	for i := 0; i < n; i++ {
		row := dst.RawRowView(i)
		if i == 0 || i == n-1 {
			for j := range row {
				row[j] = k.At(i, j)
			}
			continue
		}
		scale := s.lambda * math.Exp(u.AtVec(i))
		for j := range row {
			row[j] = d.At(i, j) + scale*k.At(i, j)
		}
	}
	return nil
}

// Residual is the functional form of System.Residual.
func Residual(c []float64, m *kernel.Matrices, lambda float64) ([]float64, error) {
	f := make([]float64, m.Size())
	if err := NewSystem(m, lambda).Residual(f, c); err != nil {
		return nil, err
	}
	return f, nil
}

// Jacobian is the functional form of System.Jacobian.
func Jacobian(c []float64, m *kernel.Matrices, lambda float64) (*mat.Dense, error) {
	n := m.Size()
	j := mat.NewDense(n, n, nil)
	if err := NewSystem(m, lambda).Jacobian(j, c); err != nil {
		return nil, err
	}
	return j, nil
}

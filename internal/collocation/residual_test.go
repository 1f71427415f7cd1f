package collocation

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/fracsolve/internal/grid"
	"github.com/san-kum/fracsolve/internal/kernel"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

func buildMatrices(t *testing.T, n int, alpha, gamma float64) *kernel.Matrices {
	t.Helper()
	g, err := grid.Uniform(n)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	m, err := kernel.Build(g, alpha, gamma)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return m
}

func TestResidual_ZeroCoefficients(t *testing.T) {
	m := buildMatrices(t, 11, 0.75, 10)

	tests := []struct {
		name   string
		lambda float64
	}{
		{"bratu", 1.0},
		{"strong", 3.5},
		{"linear", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Residual(make([]float64, 11), m, tt.lambda)
			if err != nil {
				t.Fatalf("residual: %v", err)
			}
			if f[0] != 0 || f[10] != 0 {
				t.Errorf("boundary residuals should vanish for c=0, got %g and %g", f[0], f[10])
			}
			for i := 1; i < 10; i++ {
				if math.Abs(f[i]-tt.lambda) > 1e-15 {
					t.Errorf("F[%d]=%g, expected lambda=%g", i, f[i], tt.lambda)
				}
			}
		})
	}
}

func TestResidual_BoundaryRowsAreKernelExpansion(t *testing.T) {
	m := buildMatrices(t, 9, 0.5, 4)
	c := []float64{0.3, -0.1, 0.2, 0, 0.5, -0.7, 0.1, 0.05, -0.2}

	f, err := Residual(c, m, 1)
	if err != nil {
		t.Fatalf("residual: %v", err)
	}

	u := mat.NewVecDense(9, nil)
	u.MulVec(m.K(), mat.NewVecDense(9, c))
	if math.Abs(f[0]-u.AtVec(0)) > 1e-15 || math.Abs(f[8]-u.AtVec(8)) > 1e-15 {
		t.Errorf("boundary residuals %g, %g differ from u(0)=%g, u(1)=%g", f[0], f[8], u.AtVec(0), u.AtVec(8))
	}
}

func TestJacobian_MatchesFiniteDifference(t *testing.T) {
	m := buildMatrices(t, 7, 0.75, 10)
	sys := NewSystem(m, 1.3)
	c := []float64{0.1, -0.2, 0.05, 0.3, -0.1, 0.2, 0.0}

	analytic := mat.NewDense(7, 7, nil)
	if err := sys.Jacobian(analytic, c); err != nil {
		t.Fatalf("jacobian: %v", err)
	}

	numeric := mat.NewDense(7, 7, nil)
	fd.Jacobian(numeric, func(y, x []float64) {
		if err := sys.Residual(y, x); err != nil {
			t.Fatalf("residual: %v", err)
		}
	}, c, &fd.JacobianSettings{Formula: fd.Central})

	if !mat.EqualApprox(analytic, numeric, 1e-6) {
		t.Errorf("analytic jacobian differs from finite differences:\n%v\n%v",
			mat.Formatted(analytic), mat.Formatted(numeric))
	}
}

func TestResidual_OverflowPropagates(t *testing.T) {
	m := buildMatrices(t, 11, 0.75, 10)
	c := make([]float64, 11)
	c[5] = 1000

	f, err := Residual(c, m, 1)
	if err != nil {
		t.Fatalf("residual: %v", err)
	}
	if !math.IsInf(f[5], 1) {
		t.Errorf("expected +Inf at overflowing node, got %g", f[5])
	}
}

func TestResidual_DimensionMismatch(t *testing.T) {
	m := buildMatrices(t, 5, 0.5, 10)
	if _, err := Residual(make([]float64, 4), m, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}

	sys := NewSystem(m, 1)
	if err := sys.Jacobian(mat.NewDense(4, 4, nil), make([]float64, 5)); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch for jacobian, got %v", err)
	}
}

func TestJacobian_FunctionalForm(t *testing.T) {
	m := buildMatrices(t, 5, 1, 10)
	c := []float64{0.2, 0, -0.1, 0, 0.3}

	got, err := Jacobian(c, m, 2)
	if err != nil {
		t.Fatalf("jacobian: %v", err)
	}
	want := mat.NewDense(5, 5, nil)
	if err := NewSystem(m, 2).Jacobian(want, c); err != nil {
		t.Fatalf("jacobian: %v", err)
	}
	if !mat.Equal(got, want) {
		t.Error("functional jacobian differs from System.Jacobian")
	}

	if _, err := Jacobian(c[:3], m, 2); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

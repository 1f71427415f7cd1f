package kernel

import (
	"fmt"

	"github.com/san-kum/fracsolve/internal/fracderiv"
	"github.com/san-kum/fracsolve/internal/grid"
	"gonum.org/v1/gonum/mat"
)

// Matrices holds the kernel matrix K and the fractional-kernel matrix D for
// one (grid, α, γ). Both are built together and never updated afterwards.
type Matrices struct {
	grid  grid.Grid
	alpha float64
	rbf   RBF
	k     *mat.Dense
	d     *mat.Dense
}

// Build evaluates K[j,i] = k(x_j, x_i) and D[:,i] = L1Caputo(K[:,i]).
//
// Time Complexity: O(N³), N columns at O(N²) each. Practical grids are
// limited to tens or low hundreds of nodes. Memory: O(N²).
func Build(g grid.Grid, alpha, gamma float64) (*Matrices, error) {
	n := g.Len()
	if n < 2 {
		return nil, fmt.Errorf("kernel: %w, got %d", grid.ErrTooFewPoints, n)
	}
	rbf, err := NewRBF(gamma)
	if err != nil {
		return nil, err
	}
	h := g.Spacing()
	if err := fracderiv.Validate(alpha, h); err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}

	xs := g.Points()
	k := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		row := k.RawRowView(j)
		for i := 0; i < n; i++ {
			row[i] = rbf.Eval(xs[j], xs[i])
		}
	}

	w := fracderiv.Weights(n, alpha)
	c := fracderiv.Coefficient(alpha, h)
	d := mat.NewDense(n, n, nil)
	col := make([]float64, n)
	dcol := make([]float64, n)
	for i := 0; i < n; i++ {
		mat.Col(col, i, k)
		fracderiv.Apply(dcol, col, w, c)
		d.SetCol(i, dcol)
	}

	return &Matrices{grid: g, alpha: alpha, rbf: rbf, k: k, d: d}, nil
}

func (m *Matrices) Grid() grid.Grid { return m.grid }
func (m *Matrices) Alpha() float64  { return m.alpha }
func (m *Matrices) Kernel() RBF     { return m.rbf }
func (m *Matrices) Size() int       { return m.grid.Len() }

// K returns the kernel matrix. Callers must not modify it.
func (m *Matrices) K() mat.Matrix { return m.k }

// D returns the fractional-kernel matrix. Callers must not modify it.
func (m *Matrices) D() mat.Matrix { return m.d }

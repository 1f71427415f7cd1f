package bratu

import (
	"fmt"
	"math"

	"github.com/san-kum/fracsolve/internal/grid"
)

// Params selects one fractional Bratu problem and its discretization.
type Params struct {
	Alpha  float64 `json:"alpha"`
	Lambda float64 `json:"lambda"`
	N      int     `json:"n"`
	Gamma  float64 `json:"gamma"`

	// Grid overrides N with explicit collocation points when non-empty.
	Grid []float64 `json:"grid,omitempty"`
}

func DefaultParams() Params {
	return Params{
		Alpha:  0.75,
		Lambda: 1.0,
		N:      51,
		Gamma:  10.0,
	}
}

// Validate checks every field without building matrices.
func (p Params) Validate() error {
	if math.IsNaN(p.Alpha) || p.Alpha <= 0 || p.Alpha > 1 {
		return invalid("alpha", p.Alpha, "must lie in (0, 1]")
	}
	if math.IsNaN(p.Lambda) || math.IsInf(p.Lambda, 0) {
		return invalid("lambda", p.Lambda, "must be finite")
	}
	if math.IsNaN(p.Gamma) || math.IsInf(p.Gamma, 0) || p.Gamma <= 0 {
		return invalid("gamma", p.Gamma, "must be positive and finite")
	}
	if len(p.Grid) == 0 && p.N < 2 {
		return invalid("n", float64(p.N), "need at least 2 collocation points")
	}
	if len(p.Grid) > 0 {
		if _, err := grid.New(p.Grid); err != nil {
			return invalid("grid", float64(len(p.Grid)), "%w", err)
		}
	}
	return nil
}

// Points returns the number of collocation points the parameters describe.
func (p Params) Points() int {
	if len(p.Grid) > 0 {
		return len(p.Grid)
	}
	return p.N
}

func (p Params) buildGrid() (grid.Grid, error) {
	if len(p.Grid) > 0 {
		return grid.New(p.Grid)
	}
	return grid.Uniform(p.N)
}

func (p Params) String() string {
	return fmt.Sprintf("alpha=%g lambda=%g n=%d gamma=%g", p.Alpha, p.Lambda, p.Points(), p.Gamma)
}

package fracderiv

import (
	"errors"
	"math"
	"testing"
)

func uniformSamples(n int, f func(float64) float64) ([]float64, []float64, float64) {
	h := 1.0 / float64(n-1)
	xs := make([]float64, n)
	us := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i) * h
		us[i] = f(xs[i])
	}
	return xs, us, h
}

func TestL1Caputo_ZeroSequence(t *testing.T) {
	for _, n := range []int{2, 3, 17, 51} {
		for _, alpha := range []float64{0.1, 0.5, 0.75, 0.999, 1.0} {
			h := 1.0 / float64(n-1)
			d, err := L1Caputo(make([]float64, n), alpha, h)
			if err != nil {
				t.Fatalf("n=%d alpha=%g: %v", n, alpha, err)
			}
			for i, v := range d {
				if v != 0 {
					t.Errorf("n=%d alpha=%g: D[%d]=%g, expected 0", n, alpha, i, v)
				}
			}
		}
	}
}

func TestL1Caputo_FirstNodeIsZero(t *testing.T) {
	_, u, h := uniformSamples(11, math.Exp)
	d, err := L1Caputo(u, 0.6, h)
	if err != nil {
		t.Fatalf("L1Caputo failed: %v", err)
	}
	if d[0] != 0 {
		t.Errorf("expected D[0]=0, got %g", d[0])
	}
}

// The L1 scheme interpolates linearly between nodes, so it is exact for
// u(x) = x, whose Caputo derivative is x^(1-α) / Γ(2-α).
func TestL1Caputo_ExactForLinear(t *testing.T) {
	for _, alpha := range []float64{0.25, 0.5, 0.75, 1.0} {
		xs, u, h := uniformSamples(41, func(x float64) float64 { return x })
		d, err := L1Caputo(u, alpha, h)
		if err != nil {
			t.Fatalf("alpha=%g: %v", alpha, err)
		}
		for i := 1; i < len(xs); i++ {
			want := math.Pow(xs[i], 1-alpha) / math.Gamma(2-alpha)
			if math.Abs(d[i]-want) > 1e-10 {
				t.Errorf("alpha=%g: D[%d]=%.12f, want %.12f", alpha, i, d[i], want)
			}
		}
	}
}

func TestL1Caputo_OrderOneIsBackwardDifference(t *testing.T) {
	_, u, h := uniformSamples(51, math.Sin)
	d, err := L1Caputo(u, 1.0, h)
	if err != nil {
		t.Fatalf("L1Caputo failed: %v", err)
	}
	for i := 1; i < len(u); i++ {
		want := (u[i] - u[i-1]) / h
		if math.Abs(d[i]-want) > 1e-12 {
			t.Errorf("D[%d]=%.15f, want %.15f", i, d[i], want)
		}
	}
}

func TestL1Caputo_ConvergesToBackwardDifference(t *testing.T) {
	_, u, h := uniformSamples(101, math.Sin)

	maxDiff := func(alpha float64) float64 {
		d, err := L1Caputo(u, alpha, h)
		if err != nil {
			t.Fatalf("alpha=%g: %v", alpha, err)
		}
		m := 0.0
		for i := 1; i < len(u); i++ {
			m = math.Max(m, math.Abs(d[i]-(u[i]-u[i-1])/h))
		}
		return m
	}

	d99 := maxDiff(0.99)
	d999 := maxDiff(0.999)
	d9999 := maxDiff(0.9999)
	t.Logf("max deviation from backward difference: 0.99=%.3e 0.999=%.3e 0.9999=%.3e", d99, d999, d9999)

	if !(d9999 < d999 && d999 < d99) {
		t.Errorf("deviation not decreasing as alpha -> 1: %g, %g, %g", d99, d999, d9999)
	}
	if d9999 > 5e-3 {
		t.Errorf("alpha=0.9999 deviates by %g from backward difference", d9999)
	}
}

// Near α = 1 the scheme approaches u' = cos for u = sin as the grid is refined.
func TestL1Caputo_RefinementTowardFirstDerivative(t *testing.T) {
	const alpha = 0.999
	var errs []float64
	for _, n := range []int{51, 101, 201} {
		xs, u, h := uniformSamples(n, math.Sin)
		d, err := L1Caputo(u, alpha, h)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		m := 0.0
		for i := 1; i < n; i++ {
			m = math.Max(m, math.Abs(d[i]-math.Cos(xs[i])))
		}
		errs = append(errs, m)
	}
	t.Logf("max |D - cos|: n=51 %.3e, n=101 %.3e, n=201 %.3e", errs[0], errs[1], errs[2])

	if !(errs[2] < errs[1] && errs[1] < errs[0]) {
		t.Errorf("error not decreasing under refinement: %v", errs)
	}
	if errs[2] > 6e-3 {
		t.Errorf("n=201 error %g exceeds 6e-3", errs[2])
	}
}

func TestWeights_Telescope(t *testing.T) {
	for _, alpha := range []float64{0.3, 0.75, 1.0} {
		n := 30
		w := Weights(n, alpha)
		if w[0] != 0 {
			t.Errorf("alpha=%g: expected w[0]=0, got %g", alpha, w[0])
		}
		sum := 0.0
		for k := 1; k < n; k++ {
			if w[k] < 0 {
				t.Errorf("alpha=%g: negative weight w[%d]=%g", alpha, k, w[k])
			}
			sum += w[k]
		}
		want := math.Pow(float64(n-1), 1-alpha)
		if math.Abs(sum-want) > 1e-12 {
			t.Errorf("alpha=%g: weights sum to %g, want %g", alpha, sum, want)
		}
	}
}

func TestCoefficient_OrderOne(t *testing.T) {
	if c := Coefficient(1.0, 0.02); math.Abs(c-50) > 1e-12 {
		t.Errorf("expected 1/h = 50, got %g", c)
	}
}

func TestL1Caputo_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		u     []float64
		alpha float64
		h     float64
		want  error
	}{
		{"single sample", []float64{1}, 0.5, 0.1, ErrTooFewSamples},
		{"empty", nil, 0.5, 0.1, ErrTooFewSamples},
		{"zero order", []float64{0, 1}, 0, 0.1, ErrOrder},
		{"order above one", []float64{0, 1}, 1.5, 0.1, ErrOrder},
		{"nan order", []float64{0, 1}, math.NaN(), 0.1, ErrOrder},
		{"zero spacing", []float64{0, 1}, 0.5, 0, ErrSpacing},
		{"negative spacing", []float64{0, 1}, 0.5, -0.1, ErrSpacing},
		{"infinite spacing", []float64{0, 1}, 0.5, math.Inf(1), ErrSpacing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := L1Caputo(tt.u, tt.alpha, tt.h)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

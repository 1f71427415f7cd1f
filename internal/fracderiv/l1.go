package fracderiv

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrOrder indicates a fractional order outside (0, 1].
	ErrOrder = errors.New("fracderiv: order must be in (0, 1]")

	// ErrSpacing indicates a non-positive or non-finite grid spacing.
	ErrSpacing = errors.New("fracderiv: spacing must be positive and finite")

	// ErrTooFewSamples indicates fewer than two samples.
	ErrTooFewSamples = errors.New("fracderiv: at least 2 samples required")
)

// Validate checks alpha and h without computing anything.
func Validate(alpha, h float64) error {
	if math.IsNaN(alpha) || alpha <= 0 || alpha > 1 {
		return fmt.Errorf("%w, got %g", ErrOrder, alpha)
	}
	if math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
		return fmt.Errorf("%w, got %g", ErrSpacing, h)
	}
	return nil
}

// Coefficient returns 1 / (Γ(2-α) · h^α).
func Coefficient(alpha, h float64) float64 {
	return 1.0 / (math.Gamma(2-alpha) * math.Pow(h, alpha))
}

// Weights returns w(0..n-1) where w(k) = k^(1-α) - (k-1)^(1-α) for k ≥ 1.
// w(0) is unused by the scheme and left at 0.
func Weights(n int, alpha float64) []float64 {
	w := make([]float64, n)
	if n < 2 {
		return w
	}
	p := 1 - alpha
	// 0^(1-α) is taken as its limit 0, also at α = 1.
	w[1] = 1
	prev := 1.0
	for k := 2; k < n; k++ {
		cur := math.Pow(float64(k), p)
		w[k] = cur - prev
		prev = cur
	}
	return w
}

// L1Caputo returns the L1 approximation of the Caputo derivative of order
// alpha at every sample of u, assuming uniform spacing h.
//
// Time Complexity: O(n²); Memory: O(n).
func L1Caputo(u []float64, alpha, h float64) ([]float64, error) {
	if len(u) < 2 {
		return nil, fmt.Errorf("%w, got %d", ErrTooFewSamples, len(u))
	}
	if err := Validate(alpha, h); err != nil {
		return nil, err
	}

	d := make([]float64, len(u))
	apply(d, u, Weights(len(u), alpha), Coefficient(alpha, h))
	return d, nil
}

// Apply writes the L1 derivative of u into dst using precomputed weights and
// coefficient. It is the inner kernel shared with matrix builders that reuse
// the same weights for many columns; inputs are not validated.
func Apply(dst, u, w []float64, c float64) {
	apply(dst, u, w, c)
}

func apply(dst, u, w []float64, c float64) {
	n := len(u)
	dst[0] = 0
	for i := 1; i < n; i++ {
		s := 0.0
		for j := 0; j < i; j++ {
			s += (u[j+1] - u[j]) * w[i-j]
		}
		dst[i] = c * s
	}
}

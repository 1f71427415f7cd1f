// Package fracderiv approximates the Caputo fractional derivative of sampled
// functions with the L1 finite-difference scheme.
//
// For samples u[0..N-1] on a uniform grid with spacing h and order α in (0, 1]:
//
//	D[0] = 0
//	D[i] = c · Σ_{j=0}^{i-1} (u[j+1] - u[j]) · w(i-j),  i ≥ 1
//	c    = 1 / (Γ(2-α) · h^α)
//	w(k) = k^(1-α) - (k-1)^(1-α)
//
// The derivative is non-local: every node depends on the whole history to its
// left, so a full column costs O(N²). The weights form a Toeplitz structure
// that an FFT-based scheme could exploit; this package keeps the direct sum.
//
// # The α = 1 limit
//
// The k = 1 weight is 1 - 0^(1-α). For α < 1 the second term is 0, and the
// package keeps that value at α = 1 (its limit) instead of the IEEE convention
// 0^0 = 1. As a result α = 1 reduces exactly to the backward difference
// (u[i] - u[i-1]) / h rather than to a zero operator.
package fracderiv

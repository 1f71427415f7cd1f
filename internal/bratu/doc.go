// Package bratu solves the fractional Bratu problem
//
//	D^α u(x) + λ exp(u(x)) = 0,  u(0) = u(1) = 0,  0 < α ≤ 1
//
// by LS-SVR collocation: u is expanded in Gaussian kernels centred on a
// uniform grid, the Caputo derivative is discretized with the L1 scheme and
// the resulting nonlinear system for the coefficients is handed to a root
// finder from package nlsolve.
//
// A Solver is safe for concurrent use; each Solve builds its own matrices.
package bratu

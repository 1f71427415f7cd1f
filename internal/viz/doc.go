// Package viz renders solver output in the terminal.
//
//   - [SweepModel]: Bubble Tea view that fills in a parameter sweep as
//     solves finish
//   - [SweepTable]: the same table as plain styled text
//   - [Curves]: ASCII line plot of one or more sampled curves
//
// # Key Bindings
//
//	q, ctrl+c - quit (the sweep keeps its finished rows)
//	s         - sort rows by parameter value or by finish order
package viz

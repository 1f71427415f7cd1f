package reference

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrLengthMismatch indicates curves sampled at different numbers of points.
var ErrLengthMismatch = errors.New("reference: curves have different lengths")

// l2Floor keeps the relative error finite for an all-zero reference.
const l2Floor = 1e-14

// RelL2 returns ‖pred - exact‖₂ / (‖exact‖₂ + 1e-14).
func RelL2(pred, exact []float64) (float64, error) {
	if len(pred) != len(exact) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(pred), len(exact))
	}
	if len(pred) == 0 {
		return 0, nil
	}
	return floats.Distance(pred, exact, 2) / (floats.Norm(exact, 2) + l2Floor), nil
}

// MaxAbs returns max_i |pred_i - exact_i|.
func MaxAbs(pred, exact []float64) (float64, error) {
	if len(pred) != len(exact) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(pred), len(exact))
	}
	if len(pred) == 0 {
		return 0, nil
	}
	return floats.Distance(pred, exact, math.Inf(1)), nil
}

// Metric accumulates an error measure point by point.
type Metric interface {
	Name() string
	Observe(pred, exact float64)
	Value() float64
	Reset()
}

type RelL2Metric struct {
	diff2, ref2 float64
}

func NewRelL2() *RelL2Metric { return &RelL2Metric{} }

func (m *RelL2Metric) Name() string { return "rel_l2" }

func (m *RelL2Metric) Observe(pred, exact float64) {
	d := pred - exact
	m.diff2 += d * d
	m.ref2 += exact * exact
}

func (m *RelL2Metric) Value() float64 {
	return math.Sqrt(m.diff2) / (math.Sqrt(m.ref2) + l2Floor)
}

func (m *RelL2Metric) Reset() { m.diff2, m.ref2 = 0, 0 }

type MaxAbsMetric struct {
	max float64
}

func NewMaxAbs() *MaxAbsMetric { return &MaxAbsMetric{} }

func (m *MaxAbsMetric) Name() string { return "max_abs" }

func (m *MaxAbsMetric) Observe(pred, exact float64) {
	m.max = math.Max(m.max, math.Abs(pred-exact))
}

func (m *MaxAbsMetric) Value() float64 { return m.max }

func (m *MaxAbsMetric) Reset() { m.max = 0 }

// DefaultMetrics returns fresh relative-L2 and max-error accumulators.
func DefaultMetrics() []Metric {
	return []Metric{NewRelL2(), NewMaxAbs()}
}

// Evaluate feeds both curves through metrics and returns their values by name.
func Evaluate(pred, exact []float64, metrics ...Metric) (map[string]float64, error) {
	if len(pred) != len(exact) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(pred), len(exact))
	}
	out := make(map[string]float64, len(metrics))
	for _, m := range metrics {
		m.Reset()
		for i := range pred {
			m.Observe(pred[i], exact[i])
		}
		out[m.Name()] = m.Value()
	}
	return out, nil
}

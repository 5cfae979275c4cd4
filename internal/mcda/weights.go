package mcda

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MinRowsForDynamicWeights is the sample size below which variance estimates
// are not trusted and the literal triage weights are used instead.
const MinRowsForDynamicWeights = 3

// DefaultTriageWeights returns the literal weights for the five triage criteria
// (severity, urgency, resource need, waiting impact, age vulnerability).
func DefaultTriageWeights() []float64 {
	return []float64{0.35, 0.30, 0.15, 0.15, 0.05}
}

// DynamicWeights derives one weight per column from the population standard
// deviation of that column, normalized to sum to 1. With fewer than
// MinRowsForDynamicWeights rows the literal defaults are returned unchanged.
// A matrix whose columns are all constant yields all-zero weights.
func DynamicWeights(m [][]float64) []float64 {
	if len(m) < MinRowsForDynamicWeights {
		return DefaultTriageWeights()
	}

	raw := make([]float64, len(m[0]))
	for j := range raw {
		_, variance := stat.PopMeanVariance(Column(m, j), nil)
		raw[j] = math.Sqrt(math.Max(variance, 0))
	}
	return NormalizeWeights(raw)
}

// NormalizeWeights scales w to sum to 1. A zero sum is replaced by 1 so the
// result is all zeros instead of NaN.
func NormalizeWeights(w []float64) []float64 {
	out := make([]float64, len(w))
	if len(w) == 0 {
		return out
	}
	sum := floats.Sum(w)
	if sum == 0 {
		sum = 1
	}
	for i, v := range w {
		out[i] = v / sum
	}
	return out
}

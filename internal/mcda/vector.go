// Package mcda implements the multi-criteria decision analysis primitives used
// for patient triage and specialist routing: TOPSIS, PROMETHEE net flows, WASPAS,
// Mamdani fuzzy urgency, collaboration diffusion and rank fusion.
//
// Every function is a pure mapping from its inputs to freshly allocated outputs.
// Inputs are never mutated and nothing is retained between calls.
package mcda

import (
	"gonum.org/v1/gonum/floats"
)

const (
	// DistanceEpsilon keeps closeness and similarity ratios finite.
	DistanceEpsilon = 1e-12
	// ProductFloor is the smallest base allowed in weighted products.
	ProductFloor = 1e-9
)

func VectorNorm(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Norm(v, 2)
}

func Column(m [][]float64, j int) []float64 {
	col := make([]float64, len(m))
	for i, row := range m {
		col[i] = row[j]
	}
	return col
}

func ColumnMax(m [][]float64, j int) float64 {
	return floats.Max(Column(m, j))
}

func ColumnMin(m [][]float64, j int) float64 {
	return floats.Min(Column(m, j))
}

// ColumnNormalize divides every column by its Euclidean norm. A column whose
// norm is exactly zero is divided by 1 and therefore stays zero.
func ColumnNormalize(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
	}
	if len(m) == 0 {
		return out
	}

	for j := range m[0] {
		denom := VectorNorm(Column(m, j))
		if denom == 0 {
			denom = 1
		}
		for i := range m {
			out[i][j] = m[i][j] / denom
		}
	}
	return out
}

// CosineSimilarity returns dot(a,b) / (|a|*|b| + DistanceEpsilon). Two zero
// vectors give 0 rather than NaN.
func CosineSimilarity(a, b []float64) (float64, error) {
	if err := validateVector("b", b, len(a)); err != nil {
		return 0, err
	}
	if len(a) == 0 {
		return 0, nil
	}
	dot := floats.Dot(a, b)
	return dot / (VectorNorm(a)*VectorNorm(b) + DistanceEpsilon), nil
}

func euclidean(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return floats.Distance(a, b, 2)
}

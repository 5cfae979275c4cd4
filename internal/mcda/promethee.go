package mcda

import (
	"fmt"
	"math"
)

// PreferenceSteepness is the slope of the logistic preference function.
const PreferenceSteepness = 5.0

// PrometheeNetFlows returns φ+ − φ− for every row. Pairwise preferences use a
// logistic function of the range-normalized criterion difference. A matrix with
// a single row has no pairs to compare and scores 0.
func PrometheeNetFlows(m [][]float64, weights []float64) ([]float64, error) {
	if len(m) == 0 {
		return nil, ErrEmptyMatrix
	}
	n := len(weights)
	if err := ValidateMatrix(m, n); err != nil {
		return nil, fmt.Errorf("promethee: %w", err)
	}
	if err := validateVector("weights", weights, n); err != nil {
		return nil, fmt.Errorf("promethee: %w", err)
	}

	rows := len(m)
	if rows == 1 {
		return []float64{0}, nil
	}

	w := NormalizeWeights(weights)
	ranges := make([]float64, n)
	for k := range ranges {
		r := ColumnMax(m, k) - ColumnMin(m, k)
		if r == 0 {
			r = 1
		}
		ranges[k] = r
	}

	pref := make([][]float64, rows)
	for i := range pref {
		pref[i] = make([]float64, rows)
		for j := range pref[i] {
			if i == j {
				continue
			}
			var p float64
			for k := 0; k < n; k++ {
				diff := (m[i][k] - m[j][k]) / ranges[k]
				p += w[k] * logistic(PreferenceSteepness*diff)
			}
			pref[i][j] = p
		}
	}

	others := float64(rows - 1)
	net := make([]float64, rows)
	for i := 0; i < rows; i++ {
		var out, in float64
		for j := 0; j < rows; j++ {
			if i == j {
				continue
			}
			out += pref[i][j]
			in += pref[j][i]
		}
		net[i] = out/others - in/others
	}
	return net, nil
}

func logistic(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

package mcda

import "fmt"

// TOPSIS scores every row of m by its relative closeness to the weighted ideal
// solution. benefit marks, per column, whether higher raw values are better; a
// nil slice treats every column as a benefit criterion. Scores align with the
// input rows and lie in [0, 1].
func TOPSIS(m [][]float64, weights []float64, benefit []bool) ([]float64, error) {
	if len(m) == 0 {
		return nil, ErrEmptyMatrix
	}
	n := len(weights)
	if err := ValidateMatrix(m, n); err != nil {
		return nil, fmt.Errorf("topsis: %w", err)
	}
	if err := validateVector("weights", weights, n); err != nil {
		return nil, fmt.Errorf("topsis: %w", err)
	}
	if err := validateFlags(benefit, n); err != nil {
		return nil, fmt.Errorf("topsis: %w", err)
	}

	w := NormalizeWeights(weights)
	weighted := ColumnNormalize(m)
	for _, row := range weighted {
		for j := range row {
			row[j] *= w[j]
		}
	}

	ideal := make([]float64, n)
	antiIdeal := make([]float64, n)
	for j := 0; j < n; j++ {
		hi, lo := ColumnMax(weighted, j), ColumnMin(weighted, j)
		if isBenefit(benefit, j) {
			ideal[j], antiIdeal[j] = hi, lo
		} else {
			ideal[j], antiIdeal[j] = lo, hi
		}
	}

	scores := make([]float64, len(weighted))
	for i, row := range weighted {
		dPlus := euclidean(row, ideal)
		dMinus := euclidean(row, antiIdeal)
		scores[i] = dMinus / (dPlus + dMinus + DistanceEpsilon)
	}
	return scores, nil
}

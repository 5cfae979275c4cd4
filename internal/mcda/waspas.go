package mcda

import (
	"fmt"
	"math"
)

// DefaultLambda balances the weighted-sum and weighted-product models equally.
const DefaultLambda = 0.5

type Ranking struct {
	IDs    []string
	Scores []float64
}

func (r Ranking) Len() int {
	return len(r.IDs)
}

// ScoreOf returns the score recorded for id.
func (r Ranking) ScoreOf(id string) (float64, bool) {
	for i, v := range r.IDs {
		if v == id {
			return r.Scores[i], true
		}
	}
	return 0, false
}

// WASPAS blends the weighted sum model and the weighted product model:
// lambda*WSM + (1-lambda)*WPM. Benefit columns are scaled by their maximum,
// cost columns by min/value. The returned ranking keeps the input order.
func WASPAS(ids []string, m [][]float64, weights []float64, benefit []bool, lambda float64) (Ranking, error) {
	if len(m) == 0 {
		return Ranking{}, ErrEmptyMatrix
	}
	if len(ids) != len(m) {
		return Ranking{}, fmt.Errorf("waspas: %d ids for %d rows: %w", len(ids), len(m), ErrDimensionMismatch)
	}
	if lambda < 0 || lambda > 1 || math.IsNaN(lambda) {
		return Ranking{}, fmt.Errorf("waspas: lambda %v: %w", lambda, ErrInvalidLambda)
	}
	n := len(weights)
	if err := ValidateMatrix(m, n); err != nil {
		return Ranking{}, fmt.Errorf("waspas: %w", err)
	}
	if err := validateVector("weights", weights, n); err != nil {
		return Ranking{}, fmt.Errorf("waspas: %w", err)
	}
	if err := validateFlags(benefit, n); err != nil {
		return Ranking{}, fmt.Errorf("waspas: %w", err)
	}

	w := NormalizeWeights(weights)
	colMax := make([]float64, n)
	colMin := make([]float64, n)
	for j := 0; j < n; j++ {
		colMax[j] = ColumnMax(m, j)
		colMin[j] = ColumnMin(m, j)
	}

	scores := make([]float64, len(m))
	for i, row := range m {
		wsm, wpm := 0.0, 1.0
		for j, v := range row {
			var norm float64
			if isBenefit(benefit, j) {
				denom := colMax[j]
				if denom == 0 {
					denom = 1
				}
				norm = v / denom
			} else {
				norm = colMin[j] / math.Max(v, ProductFloor)
			}
			wsm += norm * w[j]
			wpm *= math.Pow(math.Max(norm, ProductFloor), w[j])
		}
		scores[i] = lambda*wsm + (1-lambda)*wpm
	}

	out := Ranking{IDs: make([]string, len(ids)), Scores: scores}
	copy(out.IDs, ids)
	return out, nil
}

package mcda

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrEmptyMatrix       = errors.New("decision matrix has no rows")
	ErrRaggedMatrix      = errors.New("decision matrix rows differ in length")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrNonFinite         = errors.New("non-finite value in input")
	ErrInvalidLambda     = errors.New("lambda must be within [0, 1]")
)

// ValidateMatrix checks the decision-matrix invariants shared by every ranker:
// at least one row, equal row lengths equal to cols, finite entries.
func ValidateMatrix(m [][]float64, cols int) error {
	if len(m) == 0 {
		return ErrEmptyMatrix
	}
	for i, row := range m {
		if len(row) != cols {
			return fmt.Errorf("row %d has %d values, want %d: %w", i, len(row), cols, ErrRaggedMatrix)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("row %d column %d: %w", i, j, ErrNonFinite)
			}
		}
	}
	return nil
}

func validateVector(name string, v []float64, n int) error {
	if len(v) != n {
		return fmt.Errorf("%s has %d values, want %d: %w", name, len(v), n, ErrDimensionMismatch)
	}
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%s[%d]: %w", name, i, ErrNonFinite)
		}
	}
	return nil
}

func validateFlags(benefit []bool, n int) error {
	if benefit != nil && len(benefit) != n {
		return fmt.Errorf("benefit flags have %d values, want %d: %w", len(benefit), n, ErrDimensionMismatch)
	}
	return nil
}

func isBenefit(benefit []bool, j int) bool {
	return benefit == nil || benefit[j]
}

package mcda

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceTriageMatrix() [][]float64 {
	return [][]float64{
		{90, 85, 80, 90, 85},
		{80, 85, 70, 80, 75},
		{85, 90, 85, 88, 82},
		{30, 25, 20, 20, 30},
		{90, 95, 90, 90, 90},
	}
}

func TestTOPSIS_ReferenceScenario(t *testing.T) {
	scores, err := TOPSIS(referenceTriageMatrix(), DefaultTriageWeights(), nil)
	require.NoError(t, err)
	require.Len(t, scores, 5)

	expected := []float64{0.902492, 0.826120, 0.925850, 0, 1}
	for i, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
		assert.InDelta(t, expected[i], s, 1e-5, "row %d", i)
	}

	minIdx := 0
	for i, s := range scores {
		if s < scores[minIdx] {
			minIdx = i
		}
	}
	assert.Equal(t, 3, minIdx)
}

func TestTOPSIS_CostCriterionInvertsOrder(t *testing.T) {
	m := [][]float64{{10}, {20}, {30}}

	benefit, err := TOPSIS(m, []float64{1}, []bool{true})
	require.NoError(t, err)
	cost, err := TOPSIS(m, []float64{1}, []bool{false})
	require.NoError(t, err)

	assert.Greater(t, benefit[2], benefit[0])
	assert.Greater(t, cost[0], cost[2])
}

func TestTOPSIS_ZeroWeightsScoreZero(t *testing.T) {
	scores, err := TOPSIS(referenceTriageMatrix(), make([]float64, 5), nil)
	require.NoError(t, err)
	for _, s := range scores {
		assert.False(t, math.IsNaN(s))
		assert.Equal(t, 0.0, s)
	}
}

func TestTOPSIS_RejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name    string
		m       [][]float64
		weights []float64
		benefit []bool
		want    error
	}{
		{"empty", nil, DefaultTriageWeights(), nil, ErrEmptyMatrix},
		{"ragged", [][]float64{{1, 2}, {1}}, []float64{1, 1}, nil, ErrRaggedMatrix},
		{"weight length", [][]float64{{1, 2}}, []float64{1}, nil, ErrRaggedMatrix},
		{"flag length", [][]float64{{1, 2}}, []float64{1, 1}, []bool{true}, ErrDimensionMismatch},
		{"nan", [][]float64{{1, math.NaN()}}, []float64{1, 1}, nil, ErrNonFinite},
		{"inf weight", [][]float64{{1, 2}}, []float64{1, math.Inf(1)}, nil, ErrNonFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TOPSIS(tt.m, tt.weights, tt.benefit)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestPrometheeNetFlows_ReferenceScenario(t *testing.T) {
	net, err := PrometheeNetFlows(referenceTriageMatrix(), DefaultTriageWeights())
	require.NoError(t, err)

	expected := []float64{0.271333, 0.009997, 0.261885, -0.978502, 0.435287}
	for i := range expected {
		assert.InDelta(t, expected[i], net[i], 1e-5, "row %d", i)
	}

	var sum float64
	for _, v := range net {
		sum += v
	}
	assert.InDelta(t, 0, sum, 1e-9)
}

func TestPrometheeNetFlows_SingleRow(t *testing.T) {
	net, err := PrometheeNetFlows([][]float64{{50, 50, 50, 50, 50}}, DefaultTriageWeights())
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, net)
}

func TestPrometheeNetFlows_IdenticalRows(t *testing.T) {
	m := [][]float64{{40, 40}, {40, 40}, {40, 40}}
	net, err := PrometheeNetFlows(m, []float64{0.5, 0.5})
	require.NoError(t, err)
	for _, v := range net {
		assert.InDelta(t, 0, v, 1e-12)
	}
}

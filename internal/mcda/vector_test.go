package mcda

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorNorm(t *testing.T) {
	assert.InDelta(t, 5.0, VectorNorm([]float64{3, 4}), 1e-12)
	assert.Equal(t, 0.0, VectorNorm(nil))
}

func TestColumnNormalize(t *testing.T) {
	m := [][]float64{
		{3, 0, 1},
		{4, 0, 1},
	}
	out := ColumnNormalize(m)

	assert.InDelta(t, 1.0, VectorNorm(Column(out, 0)), 1e-12)
	assert.InDelta(t, 1.0, VectorNorm(Column(out, 2)), 1e-12)
	assert.Equal(t, []float64{0, 0}, Column(out, 1))

	assert.Equal(t, 3.0, m[0][0], "input must not be mutated")
}

func TestCosineSimilarity(t *testing.T) {
	v := []float64{1, 0, 0, 0, 0.9, 0.8, 0.2, 0.1}
	neg := make([]float64, len(v))
	for i, x := range v {
		neg[i] = -x
	}

	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"self", v, v, 1},
		{"opposite", v, neg, -1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"zero", []float64{0, 0}, []float64{0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			require.NoError(t, err)
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCosineSimilarity_LengthMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float64{1, 2}, []float64{1})
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestDynamicWeights(t *testing.T) {
	t.Run("reference matrix sums to one", func(t *testing.T) {
		w := DynamicWeights(referenceTriageMatrix())
		require.Len(t, w, 5)
		var sum float64
		for _, v := range w {
			assert.GreaterOrEqual(t, v, 0.0)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
		assert.InDelta(t, 0.220386, w[3], 1e-5)
	})

	t.Run("fewer than three rows uses defaults", func(t *testing.T) {
		w := DynamicWeights([][]float64{{10, 20, 30, 40, 50}, {60, 70, 80, 90, 100}})
		assert.Equal(t, DefaultTriageWeights(), w)
	})

	t.Run("constant columns give zeros", func(t *testing.T) {
		w := DynamicWeights([][]float64{{5, 5}, {5, 5}, {5, 5}})
		assert.Equal(t, []float64{0, 0}, w)
	})
}

func TestDefaultTriageWeights_FreshSlice(t *testing.T) {
	w := DefaultTriageWeights()
	w[0] = 99
	assert.Equal(t, 0.35, DefaultTriageWeights()[0])
}

func TestNormalizeWeights(t *testing.T) {
	assert.Equal(t, []float64{0.25, 0.75}, NormalizeWeights([]float64{1, 3}))
	assert.Equal(t, []float64{0, 0}, NormalizeWeights([]float64{0, 0}))
}

package mcda

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

type DiffusionOptions struct {
	// Eta scales how strongly neighbour availability perturbs a score.
	Eta float64
	// Iterations is a hard cutoff; no convergence check is made.
	Iterations int
}

func DefaultDiffusionOptions() DiffusionOptions {
	return DiffusionOptions{Eta: 0.2, Iterations: 2}
}

// Diffuse adjusts base scores with the availability of collaborating
// specialists. Each iteration adds eta * (A · availability) to every score and
// then rescales all scores by 1 + eta*avg, where avg is the mean of every entry
// of A. The rescaling term is global rather than per-row.
func Diffuse(base, availability []float64, adjacency [][]float64, opts DiffusionOptions) ([]float64, error) {
	n := len(base)
	if err := validateVector("availability", availability, n); err != nil {
		return nil, fmt.Errorf("diffuse: %w", err)
	}
	if len(adjacency) != n {
		return nil, fmt.Errorf("diffuse: adjacency has %d rows, want %d: %w", len(adjacency), n, ErrDimensionMismatch)
	}
	if opts.Iterations < 0 {
		return nil, fmt.Errorf("diffuse: negative iteration count %d", opts.Iterations)
	}

	scores := make([]float64, n)
	copy(scores, base)
	if n == 0 {
		return scores, nil
	}

	flat := make([]float64, 0, n*n)
	for i, row := range adjacency {
		if err := validateVector(fmt.Sprintf("adjacency[%d]", i), row, n); err != nil {
			return nil, fmt.Errorf("diffuse: %w", err)
		}
		flat = append(flat, row...)
	}

	a := mat.NewDense(n, n, flat)
	avail := mat.NewVecDense(n, append([]float64(nil), availability...))

	var influence mat.VecDense
	influence.MulVec(a, avail)
	avgInfluence := mat.Sum(a) / float64(n*n)
	rescale := 1.0 + opts.Eta*avgInfluence

	for iter := 0; iter < opts.Iterations; iter++ {
		for i := range scores {
			scores[i] += opts.Eta * influence.AtVec(i)
		}
		for i := range scores {
			scores[i] /= rescale
		}
	}
	return scores, nil
}

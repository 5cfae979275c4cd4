package mcda

import (
	"fmt"
	"sort"
)

type FusionWeights struct {
	WASPAS     float64
	Diffusion  float64
	Similarity float64
}

func DefaultFusionWeights() FusionWeights {
	return FusionWeights{WASPAS: 0.5, Diffusion: 0.3, Similarity: 0.2}
}

// RankLikeScores replaces magnitudes by ordinal position. Scores are sorted in
// descending order with a stable sort, so equal scores keep their input order,
// and rank r of N maps to (N-r)/(N-1). A single score maps to 1.
func RankLikeScores(scores []float64) ([]float64, []int) {
	order := descendingOrder(scores)

	ranks := make([]int, len(scores))
	for pos, idx := range order {
		ranks[idx] = pos + 1
	}

	n := len(scores)
	scorelike := make([]float64, n)
	for i, r := range ranks {
		if n > 1 {
			scorelike[i] = float64(n-r) / float64(n-1)
		} else {
			scorelike[i] = 1
		}
	}
	return scorelike, ranks
}

// AggregateRanks fuses three incommensurable score vectors through their
// rank-like values and returns the ids re-ordered by fused score, best first.
func AggregateRanks(ids []string, waspas, gnn, sim []float64, w FusionWeights) (Ranking, error) {
	n := len(ids)
	signals := []struct {
		name   string
		scores []float64
	}{{"waspas", waspas}, {"gnn", gnn}, {"similarity", sim}}
	for _, s := range signals {
		if err := validateVector(s.name, s.scores, n); err != nil {
			return Ranking{}, fmt.Errorf("aggregate ranks: %w", err)
		}
	}

	wLike, _ := RankLikeScores(waspas)
	gLike, _ := RankLikeScores(gnn)
	sLike, _ := RankLikeScores(sim)

	fused := make([]float64, n)
	for i := range fused {
		fused[i] = w.WASPAS*wLike[i] + w.Diffusion*gLike[i] + w.Similarity*sLike[i]
	}

	order := descendingOrder(fused)
	out := Ranking{IDs: make([]string, n), Scores: make([]float64, n)}
	for pos, idx := range order {
		out.IDs[pos] = ids[idx]
		out.Scores[pos] = fused[idx]
	}
	return out, nil
}

func descendingOrder(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return order
}

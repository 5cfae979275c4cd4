package routing

import (
	"math"
	"sort"

	"github.com/Maanisha27/MediTriage/internal/storage/models"
)

// ValidateRecommendations keeps only specialists whose live status reports
// them available with load below 100. Specialists without a status are
// dropped.
func ValidateRecommendations(recs []Recommendation, status map[string]models.SpecialistStatus) []Recommendation {
	out := make([]Recommendation, 0, len(recs))
	for _, r := range recs {
		st, ok := status[r.SpecialistID]
		if ok && st.Available && st.CurrentLoad < 100 {
			out = append(out, r)
		}
	}
	return out
}

// ApplyLoadBalancing discounts confidence by current load and stretches the
// wait estimate, then re-sorts by adjusted confidence and renumbers ranks.
// Recommendations without a status are left unchanged.
func ApplyLoadBalancing(recs []Recommendation, status map[string]models.SpecialistStatus) []Recommendation {
	out := make([]Recommendation, len(recs))
	for i, r := range recs {
		out[i] = r
		out[i].RequiredResources = append([]string(nil), r.RequiredResources...)
		st, ok := status[r.SpecialistID]
		if !ok {
			continue
		}
		out[i].Confidence = r.Confidence * (100 - st.CurrentLoad) / 100
		out[i].EstimatedWaitMin = int(math.Round(float64(r.EstimatedWaitMin) * (1 + st.CurrentLoad/50)))
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Confidence > out[b].Confidence
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

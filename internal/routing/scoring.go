package routing

import (
	"github.com/Maanisha27/MediTriage/internal/mcda"
	"github.com/Maanisha27/MediTriage/internal/storage/models"
)

// SpecialistWeights orders the criteria expertise, availability, success rate,
// resource access and workload.
var SpecialistWeights = []float64{0.35, 0.20, 0.25, 0.15, 0.05}

// SpecialistBenefit marks workload as the only cost criterion.
var SpecialistBenefit = []bool{true, true, true, true, false}

func criteriaRow(s models.Specialist) []float64 {
	return []float64{s.Expertise, s.Availability, s.SuccessRate, s.ResourceAccess, s.Workload}
}

// ScoreSpecialists computes WASPAS utilities for the given specialists in
// input order.
func ScoreSpecialists(specialists []models.Specialist, lambda float64) (mcda.Ranking, error) {
	ids := make([]string, len(specialists))
	matrix := make([][]float64, len(specialists))
	for i, s := range specialists {
		ids[i] = s.ID
		matrix[i] = criteriaRow(s)
	}
	return mcda.WASPAS(ids, matrix, SpecialistWeights, SpecialistBenefit, lambda)
}

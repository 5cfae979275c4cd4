package triage

import "github.com/Maanisha27/MediTriage/internal/storage/models"

// CriteriaCount is the number of triage criteria: severity, urgency, resource
// need, waiting impact and age vulnerability.
const CriteriaCount = 5

var CriteriaNames = []string{"severity", "urgency", "resource_need", "waiting_impact", "age_vulnerability"}

type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

func PriorityFromScore(topsis float64) Priority {
	switch {
	case topsis >= 0.8:
		return PriorityCritical
	case topsis >= 0.6:
		return PriorityHigh
	case topsis >= 0.4:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// AgeVulnerability scores how exposed an age group is, on the 0-100 criterion
// scale. The elderly rank highest, then young children.
func AgeVulnerability(age int) float64 {
	switch {
	case age >= 75:
		return 90
	case age >= 65:
		return 70
	case age <= 5:
		return 85
	case age <= 18:
		return 60
	default:
		return 30
	}
}

// CriterionVector returns the five criteria in matrix column order. A zero age
// vulnerability is derived from the patient's age.
func CriterionVector(p models.Patient) []float64 {
	ageVuln := p.AgeVulnerability
	if ageVuln == 0 {
		ageVuln = AgeVulnerability(p.Age)
	}
	return []float64{p.Severity, p.Urgency, p.ResourceNeed, p.WaitingImpact, ageVuln}
}

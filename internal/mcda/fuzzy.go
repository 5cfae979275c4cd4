package mcda

import "math"

type UrgencyLabel string

const (
	LabelEmergency  UrgencyLabel = "Emergency/Immediate"
	LabelUrgent     UrgencyLabel = "Urgent"
	LabelSemiUrgent UrgencyLabel = "Semi-Urgent"
	LabelRoutine    UrgencyLabel = "Routine"
)

type FuzzyResult struct {
	Score float64
	Label UrgencyLabel
}

type fuzzyRule struct {
	strength   float64
	consequent float64
}

// FuzzyUrgency runs a four-rule Mamdani inference over severity, urgency and
// waiting impact, each already scaled to [0, 1], and defuzzifies by weighted
// average of the rule consequents.
func FuzzyUrgency(severity, urgency, waiting float64) FuzzyResult {
	sevL, sevM, sevH := lowMembership(severity), medMembership(severity), highMembership(severity)
	urgL, urgM, urgH := lowMembership(urgency), medMembership(urgency), highMembership(urgency)
	waitL, waitH := lowMembership(waiting), highMembership(waiting)

	rules := []fuzzyRule{
		{strength: max3(sevH, urgH, waitH), consequent: 0.95},
		{strength: max3(math.Min(sevM, urgM), math.Min(sevH, urgM), math.Min(sevM, urgH)), consequent: 0.70},
		{strength: math.Max(math.Min(sevM, urgL), math.Min(sevL, urgM)), consequent: 0.45},
		{strength: min3(sevL, urgL, waitL), consequent: 0.12},
	}

	var num, den float64
	for _, r := range rules {
		num += r.strength * r.consequent
		den += r.strength
	}
	score := num / (den + DistanceEpsilon)

	return FuzzyResult{Score: score, Label: LabelForScore(score)}
}

func LabelForScore(score float64) UrgencyLabel {
	switch {
	case score >= 0.8:
		return LabelEmergency
	case score >= 0.6:
		return LabelUrgent
	case score >= 0.35:
		return LabelSemiUrgent
	default:
		return LabelRoutine
	}
}

func lowMembership(x float64) float64 {
	return clamp01((0.5 - x) / 0.5)
}

func medMembership(x float64) float64 {
	return clamp01(1 - math.Abs(x-0.5)/0.25)
}

func highMembership(x float64) float64 {
	return clamp01((x - 0.5) / 0.5)
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(x, 1))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

package routing

import (
	"math"
	"strings"
)

const baseWaitMinutes = 30.0

type resourceRule struct {
	standard []string
	critical string
}

var specialtyResources = map[string]resourceRule{
	"cardiac":          {standard: []string{"ECG machine", "Defibrillator"}, critical: "Cardiac catheterization lab"},
	"neurology":        {standard: []string{"CT scanner", "MRI machine"}, critical: "Neurosurgery suite"},
	"trauma":           {standard: []string{"X-ray machine", "Orthopedic tools"}, critical: "Operating room"},
	"emergency":        {standard: []string{"IV equipment", "Ventilator"}, critical: "ICU bed"},
	"general medicine": {standard: []string{"Basic lab equipment"}},
}

// RequiredResources lists what a specialty needs for a patient of the given
// severity and urgency, both on the 0-100 scale.
func RequiredResources(specialty string, severity, urgency float64) []string {
	resources := []string{"Medical examination room"}

	rule, ok := specialtyResources[strings.ToLower(strings.TrimSpace(specialty))]
	if ok {
		resources = append(resources, rule.standard...)
		if severity > 80 && rule.critical != "" {
			resources = append(resources, rule.critical)
		}
	} else {
		resources = append(resources, "General medical equipment")
	}

	switch {
	case urgency > 80:
		resources = append(resources, "Immediate attention")
	case urgency > 60:
		resources = append(resources, "Priority attention")
	}

	return resources
}

// EstimateWaitMinutes grows the base wait with workload (0-10) and with
// unavailability (100 - availability, in percent).
func EstimateWaitMinutes(workload, availability float64) int {
	workloadFactor := workload / 10
	availabilityFactor := (100 - availability) / 100
	return int(math.Round(baseWaitMinutes * (1 + workloadFactor*0.5 + availabilityFactor*0.3)))
}

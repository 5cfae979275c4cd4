package models

import "time"

type Patient struct {
	ID               string    `json:"id" mapstructure:"id"`
	Name             string    `json:"name" mapstructure:"name"`
	Age              int       `json:"age" mapstructure:"age"`
	Gender           string    `json:"gender,omitempty" mapstructure:"gender"`
	Temperature      float64   `json:"temperature,omitempty" mapstructure:"temperature"`
	Severity         float64   `json:"severity" mapstructure:"severity"`
	Urgency          float64   `json:"urgency" mapstructure:"urgency"`
	ResourceNeed     float64   `json:"resource_need" mapstructure:"resource_need"`
	WaitingImpact    float64   `json:"waiting_impact" mapstructure:"waiting_impact"`
	AgeVulnerability float64   `json:"age_vulnerability" mapstructure:"age_vulnerability"`
	PainLevel        float64   `json:"pain_level" mapstructure:"pain_level"`
	ConditionDesc    string    `json:"condition_desc" mapstructure:"condition_desc"`
	Vitals           string    `json:"vitals,omitempty" mapstructure:"vitals"`
	RegisteredAt     time.Time `json:"registered_at" mapstructure:"-"`
}

type Specialist struct {
	ID             string  `json:"id" mapstructure:"id"`
	Label          string  `json:"label" mapstructure:"label"`
	Expertise      float64 `json:"expertise" mapstructure:"expertise"`
	Availability   float64 `json:"availability" mapstructure:"availability"`
	SuccessRate    float64 `json:"success_rate" mapstructure:"success_rate"`
	ResourceAccess float64 `json:"resource_access" mapstructure:"resource_access"`
	Workload       float64 `json:"workload" mapstructure:"workload"`
	Specialization string  `json:"specialization" mapstructure:"specialization"`
}

// SpecialistStatus is the live view of a specialist, kept outside the
// relational store because it changes minute to minute.
type SpecialistStatus struct {
	Available   bool      `json:"available"`
	CurrentLoad float64   `json:"current_load"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SymptomProfile struct {
	SpecialistID string    `json:"specialist_id"`
	Vector       []float64 `json:"vector"`
}

type CollaborationEdge struct {
	From   string  `json:"from" mapstructure:"from"`
	To     string  `json:"to" mapstructure:"to"`
	Weight float64 `json:"weight" mapstructure:"weight"`
}

type SystemMetric struct {
	ID          int
	MetricName  string
	MetricValue float64
	Tags        string
	Timestamp   time.Time
}

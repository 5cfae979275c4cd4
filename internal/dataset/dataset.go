// Package dataset loads the specialist pool used for routing: specialist
// records, symptom profiles and the collaboration graph.
package dataset

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Maanisha27/MediTriage/internal/routing"
	"github.com/Maanisha27/MediTriage/internal/storage/models"
	"github.com/Maanisha27/MediTriage/internal/symptom"
	"github.com/Maanisha27/MediTriage/pkg/logger"
)

type Bundle struct {
	Routing  routing.Dataset
	Patients []models.Patient
}

type file struct {
	Specialists   []models.Specialist `mapstructure:"specialists"`
	Profiles      []profileEntry      `mapstructure:"profiles"`
	Collaboration collaboration       `mapstructure:"collaboration"`
	Patients      []models.Patient    `mapstructure:"patients"`
}

type profileEntry struct {
	SpecialistID string    `mapstructure:"specialist_id"`
	Vector       []float64 `mapstructure:"vector"`
}

// collaboration accepts either a square matrix over ids or an edge list.
// Matrix cells are directed. Edges are applied after the matrix and hold in
// both directions unless the list also gives the reverse.
type collaboration struct {
	IDs    []string                   `mapstructure:"ids"`
	Matrix [][]float64                `mapstructure:"matrix"`
	Edges  []models.CollaborationEdge `mapstructure:"edges"`
}

// Load reads a YAML or JSON dataset file; the format follows the extension.
func Load(path string) (*Bundle, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}

	var f file
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dataset: %w", err)
	}

	bundle, err := f.bundle()
	if err != nil {
		return nil, fmt.Errorf("invalid dataset %s: %w", path, err)
	}

	logger.Info("Dataset loaded",
		zap.String("path", path),
		zap.Int("specialists", len(bundle.Routing.Specialists)),
		zap.Int("profiles", len(bundle.Routing.Profiles)),
		zap.Int("patients", len(bundle.Patients)),
	)

	return bundle, nil
}

func (f file) bundle() (*Bundle, error) {
	if len(f.Specialists) == 0 {
		return nil, fmt.Errorf("no specialists defined")
	}

	seen := make(map[string]bool, len(f.Specialists))
	for _, s := range f.Specialists {
		if s.ID == "" {
			return nil, fmt.Errorf("specialist %q has no id", s.Label)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("duplicate specialist id %s", s.ID)
		}
		seen[s.ID] = true
	}

	profiles := make(map[string][]float64, len(f.Profiles))
	for _, p := range f.Profiles {
		if len(p.Vector) != symptom.Dimensions {
			return nil, fmt.Errorf("profile %s has %d values, want %d", p.SpecialistID, len(p.Vector), symptom.Dimensions)
		}
		profiles[p.SpecialistID] = p.Vector
	}

	graph := routing.NewCollaborationGraph()
	if len(f.Collaboration.Matrix) > 0 {
		g, err := routing.GraphFromMatrix(f.Collaboration.IDs, f.Collaboration.Matrix)
		if err != nil {
			return nil, err
		}
		graph = g
	}
	graph.ApplyEdges(f.Collaboration.Edges)

	now := time.Now()
	patients := make([]models.Patient, len(f.Patients))
	for i, p := range f.Patients {
		p.RegisteredAt = now
		patients[i] = p
	}

	return &Bundle{
		Routing: routing.Dataset{
			Specialists: f.Specialists,
			Profiles:    profiles,
			Graph:       graph,
		},
		Patients: patients,
	}, nil
}

var referenceAdjacency = [][]float64{
	{1.0, 0.2, 0.6, 0.1, 0.3},
	{0.2, 1.0, 0.2, 0.1, 0.4},
	{0.6, 0.2, 1.0, 0.1, 0.3},
	{0.1, 0.1, 0.1, 1.0, 0.2},
	{0.3, 0.4, 0.3, 0.2, 1.0},
}

// Reference returns a fresh copy of the built-in five-specialist pool and its
// ten sample patients.
func Reference() *Bundle {
	specialists := []models.Specialist{
		{ID: "CARD_01", Label: "Specialist_1", Expertise: 92, Availability: 80, SuccessRate: 88, ResourceAccess: 90, Workload: 6, Specialization: "Cardiac"},
		{ID: "NEUR_02", Label: "Specialist_2", Expertise: 89, Availability: 70, SuccessRate: 90, ResourceAccess: 75, Workload: 4, Specialization: "Neurology"},
		{ID: "TRMA_03", Label: "Specialist_3", Expertise: 95, Availability: 65, SuccessRate: 91, ResourceAccess: 85, Workload: 9, Specialization: "Trauma"},
		{ID: "GENM_04", Label: "Specialist_4", Expertise: 80, Availability: 90, SuccessRate: 82, ResourceAccess: 70, Workload: 3, Specialization: "General Medicine"},
		{ID: "EMER_05", Label: "Specialist_5", Expertise: 88, Availability: 85, SuccessRate: 87, ResourceAccess: 80, Workload: 5, Specialization: "Emergency"},
	}

	ids := make([]string, len(specialists))
	for i, s := range specialists {
		ids[i] = s.ID
	}
	graph, err := routing.GraphFromMatrix(ids, referenceAdjacency)
	if err != nil {
		panic(fmt.Sprintf("reference adjacency: %v", err))
	}

	profiles := map[string][]float64{
		"CARD_01": {1, 0, 0, 0, 0.95, 0.2, 0.2, 0.1},
		"NEUR_02": {0, 1, 0, 0, 0.2, 0.95, 0.2, 0.1},
		"TRMA_03": {0, 0, 1, 0, 0.3, 0.3, 0.9, 0.1},
		"GENM_04": {0.5, 0.5, 0.2, 0.2, 0.5, 0.5, 0.5, 0.4},
		"EMER_05": {0.7, 0.6, 0.5, 0.6, 0.9, 0.8, 0.6, 0.3},
	}

	return &Bundle{
		Routing: routing.Dataset{
			Specialists: specialists,
			Profiles:    profiles,
			Graph:       graph,
		},
		Patients: samplePatients(),
	}
}

func samplePatients() []models.Patient {
	rows := []struct {
		id                                      string
		age                                     int
		temp, sev, urg, resource, waiting, pain float64
		condition                               string
	}{
		{"P001", 60, 39.0, 90, 85, 80, 90, 7, "Acute Myocardial Infarction"},
		{"P002", 8, 37.5, 80, 85, 70, 80, 6, "Severe Asthma Exacerbation"},
		{"P003", 72, 38.2, 85, 90, 85, 88, 6, "Displaced Hip Fracture"},
		{"P004", 25, 36.8, 30, 25, 20, 20, 2, "Deep Laceration"},
		{"P005", 55, 39.5, 90, 95, 90, 90, 3, "Acute Ischemic Stroke"},
		{"P006", 60, 38.8, 85, 80, 75, 85, 7, "Severe Pneumonia"},
		{"P007", 35, 37.2, 70, 75, 60, 65, 8, "Appendicitis"},
		{"P008", 50, 36.9, 60, 55, 50, 60, 5, "Fractured Arm"},
		{"P009", 28, 39.2, 40, 50, 20, 30, 7, "Migraine Attack"},
		{"P010", 65, 37.8, 85, 80, 90, 85, 5, "Chronic Heart Failure"},
	}

	now := time.Now()
	patients := make([]models.Patient, len(rows))
	for i, r := range rows {
		patients[i] = models.Patient{
			ID:            r.id,
			Name:          r.id,
			Age:           r.age,
			Temperature:   r.temp,
			Severity:      r.sev,
			Urgency:       r.urg,
			ResourceNeed:  r.resource,
			WaitingImpact: r.waiting,
			PainLevel:     r.pain,
			ConditionDesc: r.condition,
			RegisteredAt:  now.Add(time.Duration(i) * time.Second),
		}
	}
	return patients
}

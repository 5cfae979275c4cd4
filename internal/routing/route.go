package routing

import (
	"errors"
	"fmt"

	"github.com/Maanisha27/MediTriage/internal/mcda"
	"github.com/Maanisha27/MediTriage/internal/storage/models"
	"github.com/Maanisha27/MediTriage/internal/symptom"
)

var ErrInvalidSymptomVector = errors.New("symptom vector has wrong dimension")

type Request struct {
	PatientID     string    `json:"patient_id"`
	SymptomVector []float64 `json:"symptom_vector"`
	Severity      float64   `json:"severity"`
	Urgency       float64   `json:"urgency"`
}

// Dataset is everything routing needs to know about the specialist pool.
type Dataset struct {
	Specialists []models.Specialist
	Profiles    map[string][]float64
	Graph       *CollaborationGraph
}

type Options struct {
	Lambda    float64
	Diffusion mcda.DiffusionOptions
	Fusion    mcda.FusionWeights
	// MaxRecommendations truncates the recommendation list; 0 keeps all.
	MaxRecommendations int
}

func DefaultOptions() Options {
	return Options{
		Lambda:    mcda.DefaultLambda,
		Diffusion: mcda.DefaultDiffusionOptions(),
		Fusion:    mcda.DefaultFusionWeights(),
	}
}

type Recommendation struct {
	SpecialistID      string   `json:"specialist_id"`
	SpecialistName    string   `json:"specialist_name"`
	Specialty         string   `json:"specialty"`
	Confidence        float64  `json:"confidence"`
	EstimatedWaitMin  int      `json:"estimated_wait_minutes"`
	RequiredResources []string `json:"required_resources"`
	Rank              int      `json:"rank"`
}

// DecisionPath records every intermediate score keyed by specialist id so a
// routing decision can be audited after the fact.
type DecisionPath struct {
	WASPAS     map[string]float64 `json:"waspas_scores"`
	GNN        map[string]float64 `json:"gnn_scores"`
	Similarity map[string]float64 `json:"similarity_scores"`
	Final      map[string]float64 `json:"final_scores"`
}

func newDecisionPath() DecisionPath {
	return DecisionPath{
		WASPAS:     map[string]float64{},
		GNN:        map[string]float64{},
		Similarity: map[string]float64{},
		Final:      map[string]float64{},
	}
}

type Result struct {
	PatientID       string           `json:"patient_id"`
	Recommendations []Recommendation `json:"recommendations"`
	DecisionPath    DecisionPath     `json:"decision_path"`
	MissingProfiles []string         `json:"missing_profiles,omitempty"`
	LoadBalanced    bool             `json:"load_balanced"`
	Rationale       string           `json:"rationale,omitempty"`
}

// Route ranks the available specialists for one patient by fusing WASPAS
// utility, collaboration diffusion and symptom similarity. Specialists with
// zero availability are excluded; if none remain the result is empty.
func Route(req Request, ds Dataset, opts Options) (*Result, error) {
	if len(req.SymptomVector) != symptom.Dimensions {
		return nil, fmt.Errorf("got %d values, want %d: %w", len(req.SymptomVector), symptom.Dimensions, ErrInvalidSymptomVector)
	}

	result := &Result{
		PatientID:       req.PatientID,
		Recommendations: []Recommendation{},
		DecisionPath:    newDecisionPath(),
	}

	available := make([]models.Specialist, 0, len(ds.Specialists))
	for _, s := range ds.Specialists {
		if s.Availability > 0 {
			available = append(available, s)
		}
	}
	if len(available) == 0 {
		return result, nil
	}

	waspas, err := ScoreSpecialists(available, opts.Lambda)
	if err != nil {
		return nil, fmt.Errorf("failed to score specialists: %w", err)
	}

	ids := waspas.IDs
	availability := make([]float64, len(available))
	for i, s := range available {
		availability[i] = s.Availability / 100
	}

	gnn, err := mcda.Diffuse(waspas.Scores, availability, ds.Graph.SubMatrix(ids), opts.Diffusion)
	if err != nil {
		return nil, fmt.Errorf("failed to diffuse scores: %w", err)
	}

	similarity := make([]float64, len(available))
	for i, id := range ids {
		profile, ok := ds.Profiles[id]
		if !ok {
			result.MissingProfiles = append(result.MissingProfiles, id)
			continue
		}
		similarity[i], err = mcda.CosineSimilarity(req.SymptomVector, profile)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", id, err)
		}
	}

	fused, err := mcda.AggregateRanks(ids, waspas.Scores, gnn, similarity, opts.Fusion)
	if err != nil {
		return nil, fmt.Errorf("failed to fuse rankings: %w", err)
	}

	for i, id := range ids {
		result.DecisionPath.WASPAS[id] = waspas.Scores[i]
		result.DecisionPath.GNN[id] = gnn[i]
		result.DecisionPath.Similarity[id] = similarity[i]
	}

	byID := make(map[string]models.Specialist, len(available))
	for _, s := range available {
		byID[s.ID] = s
	}

	for pos, id := range fused.IDs {
		result.DecisionPath.Final[id] = fused.Scores[pos]
		if opts.MaxRecommendations > 0 && pos >= opts.MaxRecommendations {
			continue
		}
		s := byID[id]
		result.Recommendations = append(result.Recommendations, Recommendation{
			SpecialistID:      s.ID,
			SpecialistName:    s.Label,
			Specialty:         s.Specialization,
			Confidence:        fused.Scores[pos],
			EstimatedWaitMin:  EstimateWaitMinutes(s.Workload, s.Availability),
			RequiredResources: RequiredResources(s.Specialization, req.Severity, req.Urgency),
			Rank:              pos + 1,
		})
	}

	return result, nil
}

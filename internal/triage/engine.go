package triage

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Maanisha27/MediTriage/internal/evaluation"
	"github.com/Maanisha27/MediTriage/internal/mcda"
	"github.com/Maanisha27/MediTriage/internal/storage/models"
	"github.com/Maanisha27/MediTriage/pkg/logger"
)

var (
	ErrNoPatients    = errors.New("no patients to triage")
	ErrBatchTooLarge = errors.New("triage batch too large")
)

// Observer receives the outcome of each run. The Prometheus metrics satisfy it.
type Observer interface {
	ObserveTriage(patients int, duration time.Duration, dynamicWeights bool)
}

type Result struct {
	Patient    models.Patient    `json:"patient"`
	Rank       int               `json:"rank"`
	Criteria   []float64         `json:"criteria"`
	TOPSIS     float64           `json:"topsis_score"`
	PROMETHEE  float64           `json:"promethee_score"`
	Priority   Priority          `json:"priority"`
	FuzzyScore float64           `json:"fuzzy_score"`
	FuzzyLabel mcda.UrgencyLabel `json:"fuzzy_label"`
}

type Report struct {
	Results        []Result           `json:"results"`
	Weights        []float64          `json:"weights"`
	DynamicWeights bool               `json:"dynamic_weights"`
	Agreement      *evaluation.Report `json:"agreement"`
	GeneratedAt    time.Time          `json:"generated_at"`
}

type Engine struct {
	evaluator   *evaluation.Evaluator
	observer    Observer
	maxPatients int
}

func NewEngine(evaluator *evaluation.Evaluator, observer Observer, maxPatients int) *Engine {
	if evaluator == nil {
		evaluator = evaluation.NewEvaluator(nil)
	}
	return &Engine{
		evaluator:   evaluator,
		observer:    observer,
		maxPatients: maxPatients,
	}
}

// Run ranks patients by TOPSIS closeness, cross-checks the order with
// PROMETHEE net flows and attaches a fuzzy urgency label to each. Results are
// sorted by TOPSIS score, highest first; ties keep input order.
func (e *Engine) Run(patients []models.Patient) (*Report, error) {
	if len(patients) == 0 {
		return nil, ErrNoPatients
	}
	if e.maxPatients > 0 && len(patients) > e.maxPatients {
		return nil, fmt.Errorf("%w: %d patients, limit %d", ErrBatchTooLarge, len(patients), e.maxPatients)
	}

	start := time.Now()

	matrix := make([][]float64, len(patients))
	for i, p := range patients {
		matrix[i] = CriterionVector(p)
	}

	weights := mcda.DynamicWeights(matrix)
	dynamic := len(matrix) >= mcda.MinRowsForDynamicWeights

	topsis, err := mcda.TOPSIS(matrix, weights, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to rank patients: %w", err)
	}

	promethee, err := mcda.PrometheeNetFlows(matrix, weights)
	if err != nil {
		return nil, fmt.Errorf("failed to compute net flows: %w", err)
	}

	results := make([]Result, len(patients))
	priorities := make([]string, len(patients))
	labels := make([]string, len(patients))
	for i, p := range patients {
		fuzzy := mcda.FuzzyUrgency(p.Severity/100, p.Urgency/100, p.WaitingImpact/100)
		results[i] = Result{
			Patient:    p,
			Criteria:   matrix[i],
			TOPSIS:     topsis[i],
			PROMETHEE:  promethee[i],
			Priority:   PriorityFromScore(topsis[i]),
			FuzzyScore: fuzzy.Score,
			FuzzyLabel: fuzzy.Label,
		}
		priorities[i] = string(results[i].Priority)
		labels[i] = string(fuzzy.Label)
	}

	agreement, err := e.evaluator.Evaluate(topsis, promethee, priorities, labels)
	if err != nil {
		return nil, fmt.Errorf("failed to compare rankings: %w", err)
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].TOPSIS > results[b].TOPSIS
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	elapsed := time.Since(start)
	if e.observer != nil {
		e.observer.ObserveTriage(len(patients), elapsed, dynamic)
	}

	logger.Info("Triage completed",
		zap.Int("patients", len(patients)),
		zap.Bool("dynamic_weights", dynamic),
		zap.String("top_patient", results[0].Patient.ID),
		zap.Float64("spearman_rho", agreement.SpearmanRho),
		zap.Duration("duration", elapsed),
	)

	return &Report{
		Results:        results,
		Weights:        weights,
		DynamicWeights: dynamic,
		Agreement:      agreement,
		GeneratedAt:    time.Now().UTC(),
	}, nil
}

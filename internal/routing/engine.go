package routing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Maanisha27/MediTriage/internal/storage/models"
	"github.com/Maanisha27/MediTriage/pkg/logger"
)

type SpecialistStore interface {
	ListSpecialists() ([]models.Specialist, error)
}

type GraphStore interface {
	CollaborationGraph(ctx context.Context) (*CollaborationGraph, error)
}

type ProfileStore interface {
	Profiles(ctx context.Context, ids []string) (map[string][]float64, error)
}

type StatusStore interface {
	Statuses(ctx context.Context, ids []string) (map[string]models.SpecialistStatus, error)
}

type Narrator interface {
	ExplainRouting(ctx context.Context, req Request, res *Result) (string, error)
}

// Observer receives routing outcomes. The Prometheus metrics satisfy it.
type Observer interface {
	ObserveRouting(candidates, recommended int, duration time.Duration, loadBalanced bool)
	ObserveFallback(source string)
}

type Engine struct {
	specialists SpecialistStore
	graph       GraphStore
	profiles    ProfileStore
	status      StatusStore
	narrator    Narrator
	observer    Observer
	fallback    Dataset
	opts        Options
}

type EngineOption func(*Engine)

func WithSpecialistStore(s SpecialistStore) EngineOption { return func(e *Engine) { e.specialists = s } }
func WithGraphStore(s GraphStore) EngineOption { return func(e *Engine) { e.graph = s } }
func WithProfileStore(s ProfileStore) EngineOption { return func(e *Engine) { e.profiles = s } }
func WithStatusStore(s StatusStore) EngineOption { return func(e *Engine) { e.status = s } }
func WithNarrator(n Narrator) EngineOption { return func(e *Engine) { e.narrator = n } }
func WithObserver(o Observer) EngineOption { return func(e *Engine) { e.observer = o } }

// NewEngine builds a routing service. fallback is used for any part of the
// dataset whose store is not configured or fails.
func NewEngine(fallback Dataset, opts Options, options ...EngineOption) *Engine {
	e := &Engine{fallback: fallback, opts: opts}
	for _, o := range options {
		o(e)
	}
	return e
}

func (e *Engine) Options() Options {
	return e.opts
}

// Route gathers the current dataset, ranks specialists for req and, when live
// status is known, validates and load-balances the recommendations. Nothing
// computed here is persisted.
func (e *Engine) Route(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	if req.PatientID == "" {
		req.PatientID = uuid.New().String()
	}

	logger.Info("Processing routing request",
		zap.String("patient_id", req.PatientID),
		zap.Float64("severity", req.Severity),
		zap.Float64("urgency", req.Urgency),
	)

	ds := e.Dataset(ctx)

	result, err := Route(req, ds, e.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to route patient %s: %w", req.PatientID, err)
	}

	if len(result.MissingProfiles) > 0 {
		logger.Warn("Specialists without symptom profile scored with zero similarity",
			zap.String("patient_id", req.PatientID),
			zap.Strings("specialists", result.MissingProfiles),
		)
	}

	if e.status != nil && len(result.Recommendations) > 0 {
		ids := make([]string, len(result.Recommendations))
		for i, r := range result.Recommendations {
			ids[i] = r.SpecialistID
		}
		statuses, err := e.status.Statuses(ctx, ids)
		switch {
		case err != nil:
			logger.Warn("Live status unavailable, skipping validation", zap.Error(err))
			e.fallbackUsed("status")
		case len(statuses) > 0:
			validated := ValidateRecommendations(result.Recommendations, statuses)
			result.Recommendations = ApplyLoadBalancing(validated, statuses)
			result.LoadBalanced = true
		}
	}

	if e.narrator != nil && len(result.Recommendations) > 0 {
		rationale, err := e.narrator.ExplainRouting(ctx, req, result)
		if err != nil {
			logger.Warn("Failed to generate routing rationale", zap.Error(err))
		} else {
			result.Rationale = rationale
		}
	}

	elapsed := time.Since(start)
	if e.observer != nil {
		e.observer.ObserveRouting(len(ds.Specialists), len(result.Recommendations), elapsed, result.LoadBalanced)
	}

	top := ""
	if len(result.Recommendations) > 0 {
		top = result.Recommendations[0].SpecialistID
	}
	logger.Info("Routing completed",
		zap.String("patient_id", req.PatientID),
		zap.String("top_specialist", top),
		zap.Int("recommendations", len(result.Recommendations)),
		zap.Bool("load_balanced", result.LoadBalanced),
		zap.Duration("duration", elapsed),
	)

	return result, nil
}

// Dataset assembles specialists, collaboration graph and symptom profiles from
// the configured stores, substituting the fallback dataset piece by piece.
func (e *Engine) Dataset(ctx context.Context) Dataset {
	ds := Dataset{
		Specialists: e.fallback.Specialists,
		Graph:       e.fallback.Graph,
		Profiles:    e.fallback.Profiles,
	}

	if e.specialists != nil {
		specialists, err := e.specialists.ListSpecialists()
		switch {
		case err != nil:
			logger.Warn("Specialist store failed, using fallback dataset", zap.Error(err))
			e.fallbackUsed("specialists")
		case len(specialists) == 0:
			logger.Debug("Specialist store empty, using fallback dataset")
			e.fallbackUsed("specialists")
		default:
			ds.Specialists = specialists
		}
	}

	if e.graph != nil {
		graph, err := e.graph.CollaborationGraph(ctx)
		if err != nil {
			logger.Warn("Graph store failed, using fallback graph", zap.Error(err))
			e.fallbackUsed("graph")
		} else {
			ds.Graph = graph
		}
	}

	if e.profiles != nil {
		ids := make([]string, len(ds.Specialists))
		for i, s := range ds.Specialists {
			ids[i] = s.ID
		}
		profiles, err := e.profiles.Profiles(ctx, ids)
		if err != nil {
			logger.Warn("Profile store failed, using fallback profiles", zap.Error(err))
			e.fallbackUsed("profiles")
		} else {
			ds.Profiles = profiles
		}
	}

	return ds
}

func (e *Engine) fallbackUsed(source string) {
	if e.observer != nil {
		e.observer.ObserveFallback(source)
	}
}

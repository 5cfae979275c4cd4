// Package builder seeds a dataset into the configured stores.
package builder

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Maanisha27/MediTriage/internal/dataset"
	"github.com/Maanisha27/MediTriage/internal/storage/models"
	"github.com/Maanisha27/MediTriage/pkg/logger"
)

type RecordStore interface {
	UpsertSpecialist(s *models.Specialist) error
	UpsertPatient(p *models.Patient) error
}

type GraphStore interface {
	UpsertSpecialist(ctx context.Context, s models.Specialist) error
	UpsertEdges(ctx context.Context, edges []models.CollaborationEdge) error
}

type ProfileStore interface {
	UpsertProfiles(ctx context.Context, profiles map[string][]float64) error
}

type Builder struct {
	db       RecordStore
	graph    GraphStore
	profiles ProfileStore
}

// Summary counts what was written. Failures against the graph and profile
// stores are logged and reported here rather than returned, since routing
// falls back to the bundled dataset for those.
type Summary struct {
	Specialists    int
	Patients       int
	Edges          int
	Profiles       int
	GraphFailed    bool
	ProfilesFailed bool
}

// NewBuilder takes any store that is configured; graph and profiles may be nil.
func NewBuilder(db RecordStore, graph GraphStore, profiles ProfileStore) *Builder {
	return &Builder{db: db, graph: graph, profiles: profiles}
}

func (b *Builder) Seed(ctx context.Context, bundle *dataset.Bundle, withPatients bool) (*Summary, error) {
	if bundle == nil {
		return nil, fmt.Errorf("no dataset to seed")
	}

	logger.Info("Seeding dataset",
		zap.Int("specialists", len(bundle.Routing.Specialists)),
		zap.Bool("patients", withPatients),
	)

	summary := &Summary{}

	if b.db != nil {
		for i := range bundle.Routing.Specialists {
			if err := b.db.UpsertSpecialist(&bundle.Routing.Specialists[i]); err != nil {
				return summary, fmt.Errorf("failed to seed specialist %s: %w", bundle.Routing.Specialists[i].ID, err)
			}
			summary.Specialists++
		}

		if withPatients {
			for i := range bundle.Patients {
				if err := b.db.UpsertPatient(&bundle.Patients[i]); err != nil {
					return summary, fmt.Errorf("failed to seed patient %s: %w", bundle.Patients[i].ID, err)
				}
				summary.Patients++
			}
		}
	}

	if b.graph != nil {
		if err := b.seedGraph(ctx, bundle, summary); err != nil {
			logger.Error("Failed to seed collaboration graph", zap.Error(err))
			summary.GraphFailed = true
		}
	}

	if b.profiles != nil && len(bundle.Routing.Profiles) > 0 {
		if err := b.profiles.UpsertProfiles(ctx, bundle.Routing.Profiles); err != nil {
			logger.Error("Failed to seed symptom profiles", zap.Error(err))
			summary.ProfilesFailed = true
		} else {
			summary.Profiles = len(bundle.Routing.Profiles)
		}
	}

	logger.Info("Dataset seeded",
		zap.Int("specialists", summary.Specialists),
		zap.Int("patients", summary.Patients),
		zap.Int("edges", summary.Edges),
		zap.Int("profiles", summary.Profiles),
	)

	return summary, nil
}

func (b *Builder) seedGraph(ctx context.Context, bundle *dataset.Bundle, summary *Summary) error {
	for _, s := range bundle.Routing.Specialists {
		if err := b.graph.UpsertSpecialist(ctx, s); err != nil {
			return fmt.Errorf("specialist %s: %w", s.ID, err)
		}
	}

	edges := bundle.Routing.Graph.Edges()
	if err := b.graph.UpsertEdges(ctx, edges); err != nil {
		return err
	}
	summary.Edges = len(edges)
	return nil
}

package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/Maanisha27/MediTriage/internal/routing"
	"github.com/Maanisha27/MediTriage/internal/storage/models"
	"github.com/Maanisha27/MediTriage/pkg/circuitbreaker"
	"github.com/Maanisha27/MediTriage/pkg/logger"
	"github.com/Maanisha27/MediTriage/pkg/retry"
)

// Client keeps the specialist collaboration graph. Specialists are
// (:Specialist {id}) nodes joined by undirected [:COLLABORATES_WITH {weight}]
// relationships; a self-collaboration is stored as a loop.
type Client struct {
	driver      neo4j.DriverWithContext
	database    string
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

type Options struct {
	OnStateChange func(name string, from, to circuitbreaker.State)
	OnRetry       func(name string, attempt int, err error)
}

func NewClient(uri, username, password, database string, opts Options) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(
		uri,
		neo4j.BasicAuth(username, password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = driver.VerifyConnectivity(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to verify connectivity: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	cb := circuitbreaker.NewCircuitBreaker("neo4j", circuitbreaker.Config{
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          20 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OnStateChange:    opts.OnStateChange,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		Name:           "neo4j",
		MaxAttempts:    3,
		InitialDelay:   200 * time.Millisecond,
		MaxDelay:       3 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		OnRetry:        opts.OnRetry,
		Logger:         logger.GetLogger(),
	}

	logger.Info("Neo4j client initialized", zap.String("uri", uri), zap.String("database", database))

	return &Client{
		driver:      driver,
		database:    database,
		cb:          cb,
		retryConfig: retryConfig,
	}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func (c *Client) Breaker() *circuitbreaker.CircuitBreaker {
	return c.cb
}

func (c *Client) Ping(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

func (c *Client) executeWithRetry(ctx context.Context, operation func(ctx context.Context, session neo4j.SessionWithContext) error) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return c.cb.Execute(ctx, func(ctx context.Context) error {
		return retry.Do(ctx, c.retryConfig, func(ctx context.Context) error {
			session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
			defer session.Close(ctx)
			return operation(ctx, session)
		})
	})
}

func (c *Client) UpsertSpecialist(ctx context.Context, s models.Specialist) error {
	return c.executeWithRetry(ctx, func(ctx context.Context, session neo4j.SessionWithContext) error {
		query := `
			MERGE (s:Specialist {id: $id})
			SET s.label = $label,
			    s.specialization = $specialization,
			    s.updated_at = timestamp()
		`
		_, err := session.Run(ctx, query, map[string]interface{}{
			"id":             s.ID,
			"label":          s.Label,
			"specialization": s.Specialization,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert specialist: %w", err)
		}
		return nil
	})
}

// UpsertEdges merges collaboration weights. Endpoints are created when they
// do not exist yet, so edges can be loaded before the specialist details.
func (c *Client) UpsertEdges(ctx context.Context, edges []models.CollaborationEdge) error {
	if len(edges) == 0 {
		return nil
	}

	rows := edgeRows(edges)

	err := c.executeWithRetry(ctx, func(ctx context.Context, session neo4j.SessionWithContext) error {
		query := `
			UNWIND $edges AS edge
			MERGE (a:Specialist {id: edge.from})
			MERGE (b:Specialist {id: edge.to})
			MERGE (a)-[r:COLLABORATES_WITH]->(b)
			SET r.weight = edge.weight,
			    r.updated_at = timestamp()
		`
		_, err := session.Run(ctx, query, map[string]interface{}{"edges": rows})
		if err != nil {
			return fmt.Errorf("failed to upsert collaboration edges: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Debug("Collaboration edges stored", zap.Int("edges", len(edges)))
	return nil
}

// edgeRows stores an undirected edge once, from the smaller id to the larger.
// A pair listed in both directions is directed and each relationship is kept
// as given.
func edgeRows(edges []models.CollaborationEdge) []map[string]interface{} {
	listed := make(map[[2]string]bool, len(edges))
	for _, e := range edges {
		listed[[2]string{e.From, e.To}] = true
	}

	rows := make([]map[string]interface{}, len(edges))
	for i, e := range edges {
		from, to := e.From, e.To
		if to < from && !listed[[2]string{to, from}] {
			from, to = to, from
		}
		rows[i] = map[string]interface{}{"from": from, "to": to, "weight": e.Weight}
	}
	return rows
}

// CollaborationGraph reads every COLLABORATES_WITH relationship into an
// id-keyed graph.
func (c *Client) CollaborationGraph(ctx context.Context) (*routing.CollaborationGraph, error) {
	var edges []models.CollaborationEdge

	err := c.executeWithRetry(ctx, func(ctx context.Context, session neo4j.SessionWithContext) error {
		edges = edges[:0]
		query := `
			MATCH (a:Specialist)-[r:COLLABORATES_WITH]->(b:Specialist)
			RETURN a.id AS from, b.id AS to, r.weight AS weight
			ORDER BY from, to
		`
		result, err := session.Run(ctx, query, nil)
		if err != nil {
			return fmt.Errorf("failed to read collaboration graph: %w", err)
		}

		for result.Next(ctx) {
			edge, err := edgeFromRecord(result.Record())
			if err != nil {
				return retry.Permanent(err)
			}
			edges = append(edges, edge)
		}

		if err = result.Err(); err != nil {
			return fmt.Errorf("error iterating results: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Collaboration graph loaded", zap.Int("edges", len(edges)))

	return routing.GraphFromEdges(edges), nil
}

type record interface {
	Get(key string) (interface{}, bool)
}

func edgeFromRecord(rec record) (models.CollaborationEdge, error) {
	from, _ := rec.Get("from")
	to, _ := rec.Get("to")
	weight, _ := rec.Get("weight")

	fromID, ok := from.(string)
	if !ok {
		return models.CollaborationEdge{}, fmt.Errorf("collaboration edge has no source id")
	}
	toID, ok := to.(string)
	if !ok {
		return models.CollaborationEdge{}, fmt.Errorf("collaboration edge has no target id")
	}

	edge := models.CollaborationEdge{From: fromID, To: toID}
	switch w := weight.(type) {
	case float64:
		edge.Weight = w
	case int64:
		edge.Weight = float64(w)
	case nil:
	default:
		return models.CollaborationEdge{}, fmt.Errorf("collaboration edge %s-%s has weight of type %T", fromID, toID, weight)
	}
	return edge, nil
}

func (c *Client) CountEdges(ctx context.Context) (int64, error) {
	var count int64

	err := c.executeWithRetry(ctx, func(ctx context.Context, session neo4j.SessionWithContext) error {
		result, err := session.Run(ctx, `MATCH (:Specialist)-[r:COLLABORATES_WITH]->(:Specialist) RETURN count(r) AS count`, nil)
		if err != nil {
			return fmt.Errorf("failed to count edges: %w", err)
		}
		if result.Next(ctx) {
			v, _ := result.Record().Get("count")
			count, _ = v.(int64)
		}
		return result.Err()
	})

	return count, err
}

package milvus

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/Maanisha27/MediTriage/pkg/circuitbreaker"
	"github.com/Maanisha27/MediTriage/pkg/logger"
	"github.com/Maanisha27/MediTriage/pkg/retry"
)

const (
	idField     = "specialist_id"
	vectorField = "profile"
)

// Client stores one symptom profile vector per specialist.
type Client struct {
	client         client.Client
	collectionName string
	vectorDim      int
	indexType      string
	cb             *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

type Options struct {
	IndexType     string
	OnStateChange func(name string, from, to circuitbreaker.State)
	OnRetry       func(name string, attempt int, err error)
}

// Match is a specialist whose stored profile is close to a query vector.
// Distance is squared L2, smaller is closer.
type Match struct {
	SpecialistID string  `json:"specialist_id"`
	Distance     float32 `json:"distance"`
}

func NewClient(endpoint, apiKey, collectionName string, vectorDim int, opts Options) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := client.NewClient(ctx, client.Config{
		Address: endpoint,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	cb := circuitbreaker.NewCircuitBreaker("milvus", circuitbreaker.Config{
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          20 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OnStateChange:    opts.OnStateChange,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.DefaultConfig("milvus")
	retryConfig.OnRetry = opts.OnRetry
	retryConfig.Logger = logger.GetLogger()

	logger.Info("Milvus client initialized",
		zap.String("endpoint", endpoint),
		zap.String("collection", collectionName),
	)

	return &Client{
		client:         c,
		collectionName: collectionName,
		vectorDim:      vectorDim,
		indexType:      strings.ToUpper(opts.IndexType),
		cb:             cb,
		retryConfig:    retryConfig,
	}, nil
}

func (m *Client) Close() error {
	return m.client.Close()
}

func (m *Client) Breaker() *circuitbreaker.CircuitBreaker {
	return m.cb
}

func (m *Client) Ping(ctx context.Context) error {
	_, err := m.client.HasCollection(ctx, m.collectionName)
	return err
}

func (m *Client) execute(ctx context.Context, operation func(ctx context.Context) error) error {
	return m.cb.Execute(ctx, func(ctx context.Context) error {
		return retry.Do(ctx, m.retryConfig, operation)
	})
}

func (m *Client) CreateCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if has {
		logger.Info("Collection already exists", zap.String("collection", m.collectionName))
		return m.client.LoadCollection(ctx, m.collectionName, false)
	}

	schema := &entity.Schema{
		CollectionName: m.collectionName,
		Description:    "Specialist symptom profiles",
		Fields: []*entity.Field{
			{
				Name:       idField,
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     vectorField,
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": strconv.Itoa(m.vectorDim),
				},
			},
		},
	}

	err = m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := m.index()
	if err != nil {
		return err
	}
	err = m.client.CreateIndex(ctx, m.collectionName, vectorField, idx, false)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = m.client.LoadCollection(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	logger.Info("Collection created and loaded",
		zap.String("collection", m.collectionName),
		zap.String("index", m.indexType),
	)

	return nil
}

func (m *Client) index() (entity.Index, error) {
	switch m.indexType {
	case "", "FLAT":
		return entity.NewIndexFlat(entity.L2)
	case "IVF_FLAT":
		return entity.NewIndexIvfFlat(entity.L2, 128)
	default:
		return nil, fmt.Errorf("unsupported index type %q", m.indexType)
	}
}

func (m *Client) searchParam() (entity.SearchParam, error) {
	if m.indexType == "IVF_FLAT" {
		return entity.NewIndexIvfFlatSearchParam(16)
	}
	return entity.NewIndexFlatSearchParam()
}

// UpsertProfiles writes the profile of each specialist, replacing any earlier
// vector under the same id.
func (m *Client) UpsertProfiles(ctx context.Context, profiles map[string][]float64) error {
	if len(profiles) == 0 {
		return nil
	}

	ids := make([]string, 0, len(profiles))
	vectors := make([][]float32, 0, len(profiles))
	for id, vec := range profiles {
		if len(vec) != m.vectorDim {
			return fmt.Errorf("profile %s has %d dimensions, collection expects %d", id, len(vec), m.vectorDim)
		}
		ids = append(ids, id)
		vectors = append(vectors, toFloat32(vec))
	}

	err := m.execute(ctx, func(ctx context.Context) error {
		_, err := m.client.Upsert(
			ctx,
			m.collectionName,
			"",
			entity.NewColumnVarChar(idField, ids),
			entity.NewColumnFloatVector(vectorField, m.vectorDim, vectors),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert profiles: %w", err)
		}
		if err := m.client.Flush(ctx, m.collectionName, false); err != nil {
			return fmt.Errorf("failed to flush: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("Specialist profiles stored", zap.Int("count", len(ids)))
	return nil
}

// Profiles returns the stored profile of each requested specialist. Ids with
// no profile are absent from the result.
func (m *Client) Profiles(ctx context.Context, ids []string) (map[string][]float64, error) {
	if len(ids) == 0 {
		return map[string][]float64{}, nil
	}

	var out map[string][]float64
	err := m.execute(ctx, func(ctx context.Context) error {
		rs, err := m.client.Query(ctx, m.collectionName, nil, idFilter(ids), []string{idField, vectorField})
		if err != nil {
			return fmt.Errorf("failed to query profiles: %w", err)
		}
		out, err = profilesFromColumns(rs.GetColumn(idField), rs.GetColumn(vectorField))
		if err != nil {
			return retry.Permanent(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Specialist profiles loaded",
		zap.Int("requested", len(ids)),
		zap.Int("found", len(out)),
	)
	return out, nil
}

// Nearest finds the k specialists whose profiles lie closest to vector.
func (m *Client) Nearest(ctx context.Context, vector []float64, k int) ([]Match, error) {
	if len(vector) != m.vectorDim {
		return nil, fmt.Errorf("query vector has %d dimensions, collection expects %d", len(vector), m.vectorDim)
	}
	if k <= 0 {
		k = 1
	}

	sp, err := m.searchParam()
	if err != nil {
		return nil, fmt.Errorf("failed to build search params: %w", err)
	}

	var matches []Match
	err = m.execute(ctx, func(ctx context.Context) error {
		results, err := m.client.Search(
			ctx,
			m.collectionName,
			[]string{},
			"",
			[]string{idField},
			[]entity.Vector{entity.FloatVector(toFloat32(vector))},
			vectorField,
			entity.L2,
			k,
			sp,
		)
		if err != nil {
			return fmt.Errorf("failed to search: %w", err)
		}

		matches = matches[:0]
		for _, sr := range results {
			for i := 0; i < sr.ResultCount; i++ {
				id, err := sr.IDs.GetAsString(i)
				if err != nil {
					return retry.Permanent(fmt.Errorf("failed to read result id: %w", err))
				}
				matches = append(matches, Match{SpecialistID: id, Distance: sr.Scores[i]})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Nearest profile search completed",
		zap.Int("k", k),
		zap.Int("results", len(matches)),
	)
	return matches, nil
}

func idFilter(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = strconv.Quote(id)
	}
	return fmt.Sprintf("%s in [%s]", idField, strings.Join(quoted, ", "))
}

func profilesFromColumns(idCol, vecCol entity.Column) (map[string][]float64, error) {
	out := make(map[string][]float64)
	if idCol == nil || vecCol == nil {
		return out, nil
	}
	if idCol.Len() != vecCol.Len() {
		return nil, fmt.Errorf("profile query returned %d ids and %d vectors", idCol.Len(), vecCol.Len())
	}

	for i := 0; i < idCol.Len(); i++ {
		id, err := idCol.GetAsString(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read profile id: %w", err)
		}
		raw, err := vecCol.Get(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read profile %s: %w", id, err)
		}
		vec, ok := raw.([]float32)
		if !ok {
			return nil, fmt.Errorf("profile %s has vector of type %T", id, raw)
		}
		out[id] = toFloat64(vec)
	}
	return out, nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

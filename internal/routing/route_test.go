package routing

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maanisha27/MediTriage/internal/storage/models"
)

func referenceDataset(t *testing.T) Dataset {
	t.Helper()
	specialists := []models.Specialist{
		{ID: "CARD_01", Label: "Specialist_1", Expertise: 92, Availability: 80, SuccessRate: 88, ResourceAccess: 90, Workload: 6, Specialization: "Cardiac"},
		{ID: "NEUR_02", Label: "Specialist_2", Expertise: 89, Availability: 70, SuccessRate: 90, ResourceAccess: 75, Workload: 4, Specialization: "Neurology"},
		{ID: "TRMA_03", Label: "Specialist_3", Expertise: 95, Availability: 65, SuccessRate: 91, ResourceAccess: 85, Workload: 9, Specialization: "Trauma"},
		{ID: "GENM_04", Label: "Specialist_4", Expertise: 80, Availability: 90, SuccessRate: 82, ResourceAccess: 70, Workload: 3, Specialization: "General Medicine"},
		{ID: "EMER_05", Label: "Specialist_5", Expertise: 88, Availability: 85, SuccessRate: 87, ResourceAccess: 80, Workload: 5, Specialization: "Emergency"},
	}
	ids := []string{"CARD_01", "NEUR_02", "TRMA_03", "GENM_04", "EMER_05"}
	graph, err := GraphFromMatrix(ids, [][]float64{
		{1.0, 0.2, 0.6, 0.1, 0.3},
		{0.2, 1.0, 0.2, 0.1, 0.4},
		{0.6, 0.2, 1.0, 0.1, 0.3},
		{0.1, 0.1, 0.1, 1.0, 0.2},
		{0.3, 0.4, 0.3, 0.2, 1.0},
	})
	require.NoError(t, err)

	return Dataset{
		Specialists: specialists,
		Graph:       graph,
		Profiles: map[string][]float64{
			"CARD_01": {1, 0, 0, 0, 0.95, 0.2, 0.2, 0.1},
			"NEUR_02": {0, 1, 0, 0, 0.2, 0.95, 0.2, 0.1},
			"TRMA_03": {0, 0, 1, 0, 0.3, 0.3, 0.9, 0.1},
			"GENM_04": {0.5, 0.5, 0.2, 0.2, 0.5, 0.5, 0.5, 0.4},
			"EMER_05": {0.7, 0.6, 0.5, 0.6, 0.9, 0.8, 0.6, 0.3},
		},
	}
}

func cardiacRequest() Request {
	return Request{
		PatientID:     "TEST001",
		SymptomVector: []float64{1, 0, 0, 0, 0.9, 0.8, 0.2, 0.1},
		Severity:      90,
		Urgency:       85,
	}
}

func recommendationIDs(recs []Recommendation) []string {
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.SpecialistID
	}
	return ids
}

func TestRoute_CardiacPatient(t *testing.T) {
	res, err := Route(cardiacRequest(), referenceDataset(t), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "TEST001", res.PatientID)
	assert.Equal(t, []string{"CARD_01", "EMER_05", "NEUR_02", "TRMA_03", "GENM_04"}, recommendationIDs(res.Recommendations))

	top := res.Recommendations[0]
	assert.Equal(t, 1, top.Rank)
	assert.Equal(t, "Specialist_1", top.SpecialistName)
	assert.InDelta(t, 0.925, top.Confidence, 1e-9)
	assert.Equal(t, 41, top.EstimatedWaitMin)
	assert.Equal(t, []string{
		"Medical examination room", "ECG machine", "Defibrillator",
		"Cardiac catheterization lab", "Immediate attention",
	}, top.RequiredResources)

	path := res.DecisionPath
	assert.InDelta(t, 0.929305, path.WASPAS["CARD_01"], 1e-5)
	assert.InDelta(t, 1.405513, path.GNN["EMER_05"], 1e-5)
	assert.InDelta(t, 0.925233, path.Similarity["CARD_01"], 1e-5)
	assert.InDelta(t, 0.1, path.Final["GENM_04"], 1e-9)
	assert.Len(t, path.Final, 5)
	assert.Empty(t, res.MissingProfiles)
}

func TestRoute_RecommendationsArePermutation(t *testing.T) {
	ds := referenceDataset(t)
	res, err := Route(cardiacRequest(), ds, DefaultOptions())
	require.NoError(t, err)

	got := recommendationIDs(res.Recommendations)
	sort.Strings(got)
	var want []string
	for _, s := range ds.Specialists {
		want = append(want, s.ID)
	}
	sort.Strings(want)
	assert.Equal(t, want, got)
}

func TestRoute_AllUnavailable(t *testing.T) {
	ds := referenceDataset(t)
	for i := range ds.Specialists {
		ds.Specialists[i].Availability = 0
	}

	res, err := Route(cardiacRequest(), ds, DefaultOptions())
	require.NoError(t, err)

	assert.Empty(t, res.Recommendations)
	assert.NotNil(t, res.Recommendations)
	assert.Empty(t, res.DecisionPath.WASPAS)
	assert.Empty(t, res.DecisionPath.GNN)
	assert.Empty(t, res.DecisionPath.Similarity)
	assert.Empty(t, res.DecisionPath.Final)
}

func TestRoute_FiltersUnavailableWithoutMisaligningGraph(t *testing.T) {
	ds := referenceDataset(t)
	ds.Specialists[1].Availability = 0

	res, err := Route(cardiacRequest(), ds, DefaultOptions())
	require.NoError(t, err)

	assert.NotContains(t, recommendationIDs(res.Recommendations), "NEUR_02")
	assert.Len(t, res.Recommendations, 4)
	_, ok := res.DecisionPath.GNN["NEUR_02"]
	assert.False(t, ok)
}

func TestRoute_MissingProfileScoresZeroSimilarity(t *testing.T) {
	ds := referenceDataset(t)
	delete(ds.Profiles, "TRMA_03")

	res, err := Route(cardiacRequest(), ds, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"TRMA_03"}, res.MissingProfiles)
	assert.Equal(t, 0.0, res.DecisionPath.Similarity["TRMA_03"])
}

func TestRoute_NilGraphSkipsDiffusion(t *testing.T) {
	ds := referenceDataset(t)
	ds.Graph = nil

	res, err := Route(cardiacRequest(), ds, DefaultOptions())
	require.NoError(t, err)

	for id, w := range res.DecisionPath.WASPAS {
		assert.Equal(t, w, res.DecisionPath.GNN[id], id)
	}
}

func TestRoute_MaxRecommendations(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxRecommendations = 2

	res, err := Route(cardiacRequest(), referenceDataset(t), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"CARD_01", "EMER_05"}, recommendationIDs(res.Recommendations))
	assert.Len(t, res.DecisionPath.Final, 5)
}

func TestRoute_RejectsBadSymptomVector(t *testing.T) {
	req := cardiacRequest()
	req.SymptomVector = []float64{1, 0}

	_, err := Route(req, referenceDataset(t), DefaultOptions())
	assert.True(t, errors.Is(err, ErrInvalidSymptomVector))
}

func TestScoreSpecialists_StrongBeatsInverse(t *testing.T) {
	r, err := ScoreSpecialists([]models.Specialist{
		{ID: "strong", Expertise: 95, Availability: 95, SuccessRate: 95, ResourceAccess: 95, Workload: 1},
		{ID: "weak", Expertise: 40, Availability: 40, SuccessRate: 40, ResourceAccess: 40, Workload: 10},
	}, 0.5)
	require.NoError(t, err)
	assert.Greater(t, r.Scores[0], r.Scores[1])
}

func TestGraphSubMatrix(t *testing.T) {
	g := GraphFromEdges([]models.CollaborationEdge{
		{From: "A", To: "B", Weight: 0.4},
		{From: "A", To: "A", Weight: 1},
	})

	assert.Equal(t, [][]float64{{0, 0.4}, {0.4, 1}}, g.SubMatrix([]string{"B", "A"}))
	assert.Equal(t, [][]float64{{1, 0}, {0, 0}}, g.SubMatrix([]string{"A", "C"}))
	assert.Equal(t, []models.CollaborationEdge{
		{From: "A", To: "A", Weight: 1},
		{From: "A", To: "B", Weight: 0.4},
	}, g.Edges())

	var nilGraph *CollaborationGraph
	assert.Equal(t, [][]float64{{0}}, nilGraph.SubMatrix([]string{"A"}))
}

func TestGraphFromMatrixRejectsRagged(t *testing.T) {
	_, err := GraphFromMatrix([]string{"A", "B"}, [][]float64{{1, 0}, {0}})
	assert.Error(t, err)
}

func TestGraphFromMatrixKeepsDirection(t *testing.T) {
	ids := []string{"A", "B", "C"}
	matrix := [][]float64{
		{0, 0.9, 0.2},
		{0.1, 0, 0.4},
		{0.2, 0.4, 1},
	}
	g, err := GraphFromMatrix(ids, matrix)
	require.NoError(t, err)

	assert.Equal(t, matrix, g.SubMatrix(ids))
	assert.Equal(t, [][]float64{{0, 0.1}, {0.9, 0}}, g.SubMatrix([]string{"B", "A"}))

	assert.Equal(t, []models.CollaborationEdge{
		{From: "A", To: "A", Weight: 0},
		{From: "A", To: "B", Weight: 0.9},
		{From: "A", To: "C", Weight: 0.2},
		{From: "B", To: "A", Weight: 0.1},
		{From: "B", To: "B", Weight: 0},
		{From: "B", To: "C", Weight: 0.4},
		{From: "C", To: "C", Weight: 1},
	}, g.Edges())

	assert.Equal(t, matrix, GraphFromEdges(g.Edges()).SubMatrix(ids))
}

func TestApplyEdgesDirection(t *testing.T) {
	tests := []struct {
		name  string
		edges []models.CollaborationEdge
		want  [][]float64
	}{
		{
			name:  "single edge is undirected",
			edges: []models.CollaborationEdge{{From: "B", To: "A", Weight: 0.3}},
			want:  [][]float64{{0, 0.3}, {0.3, 0}},
		},
		{
			name: "reverse edge keeps both weights",
			edges: []models.CollaborationEdge{
				{From: "A", To: "B", Weight: 0.8},
				{From: "B", To: "A", Weight: 0.2},
			},
			want: [][]float64{{0, 0.8}, {0.2, 0}},
		},
		{
			name: "later edge overrides",
			edges: []models.CollaborationEdge{
				{From: "A", To: "B", Weight: 0.8},
				{From: "A", To: "B", Weight: 0.5},
			},
			want: [][]float64{{0, 0.5}, {0.5, 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GraphFromEdges(tt.edges).SubMatrix([]string{"A", "B"}))
		})
	}
}

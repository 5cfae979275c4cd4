package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadShippedDataset(t *testing.T) {
	b, err := Load(filepath.Join("..", "..", "config", "dataset.yaml"))
	require.NoError(t, err)

	ref := Reference()
	assert.Equal(t, ref.Routing.Specialists, b.Routing.Specialists)
	assert.Equal(t, ref.Routing.Profiles, b.Routing.Profiles)
	assert.Equal(t, ref.Routing.Graph.Edges(), b.Routing.Graph.Edges())

	require.Len(t, b.Patients, 3)
	assert.Equal(t, "Acute Myocardial Infarction", b.Patients[0].ConditionDesc)
	assert.Equal(t, 80.0, b.Patients[0].ResourceNeed)
}

func TestLoadJSONWithEdges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.json")
	body := `{
		"specialists": [
			{"id": "A", "label": "A", "expertise": 90, "availability": 50, "success_rate": 80, "resource_access": 70, "workload": 2, "specialization": "Cardiac"},
			{"id": "B", "label": "B", "expertise": 70, "availability": 60, "success_rate": 85, "resource_access": 65, "workload": 4, "specialization": "Trauma"}
		],
		"collaboration": {"edges": [{"from": "A", "to": "B", "weight": 0.5}]}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	b, err := Load(path)
	require.NoError(t, err)

	assert.Len(t, b.Routing.Specialists, 2)
	assert.Empty(t, b.Routing.Profiles)
	assert.Equal(t, 0.5, b.Routing.Graph.Weight("B", "A"))
}

func TestLoadKeepsAsymmetricAdjacency(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	body := `specialists:
  - id: A
  - id: B
  - id: C
collaboration:
  ids: [A, B, C]
  matrix:
    - [1, 0.9, 0]
    - [0.1, 1, 0]
    - [0, 0, 1]
  edges:
    - {from: A, to: C, weight: 0.7}
    - {from: B, to: C, weight: 0.6}
    - {from: C, to: B, weight: 0.3}
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	b, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{
		{1, 0.9, 0.7},
		{0.1, 1, 0.6},
		{0.7, 0.3, 1},
	}, b.Routing.Graph.SubMatrix([]string{"A", "B", "C"}))
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no specialists", "specialists: []\n"},
		{"duplicate ids", "specialists:\n  - id: A\n  - id: A\n"},
		{"short profile", "specialists:\n  - id: A\nprofiles:\n  - specialist_id: A\n    vector: [1, 0]\n"},
		{"ragged matrix", "specialists:\n  - id: A\ncollaboration:\n  ids: [A]\n  matrix:\n    - [1, 0]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestReferenceIsFreshCopy(t *testing.T) {
	a := Reference()
	a.Routing.Specialists[0].Availability = 0
	a.Routing.Profiles["CARD_01"][0] = 9

	b := Reference()
	assert.Equal(t, 80.0, b.Routing.Specialists[0].Availability)
	assert.Equal(t, 1.0, b.Routing.Profiles["CARD_01"][0])
	assert.Len(t, b.Patients, 10)
}

package neo4j

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maanisha27/MediTriage/internal/storage/models"
)

type fakeRecord map[string]interface{}

func (r fakeRecord) Get(key string) (interface{}, bool) {
	v, ok := r[key]
	return v, ok
}

func TestEdgeFromRecord(t *testing.T) {
	tests := []struct {
		name    string
		rec     fakeRecord
		want    models.CollaborationEdge
		wantErr bool
	}{
		{
			name: "float weight",
			rec:  fakeRecord{"from": "CARD_01", "to": "EMER_05", "weight": 0.7},
			want: models.CollaborationEdge{From: "CARD_01", To: "EMER_05", Weight: 0.7},
		},
		{
			name: "integer weight",
			rec:  fakeRecord{"from": "CARD_01", "to": "CARD_01", "weight": int64(1)},
			want: models.CollaborationEdge{From: "CARD_01", To: "CARD_01", Weight: 1},
		},
		{
			name: "missing weight",
			rec:  fakeRecord{"from": "A", "to": "B"},
			want: models.CollaborationEdge{From: "A", To: "B"},
		},
		{
			name:    "missing source",
			rec:     fakeRecord{"to": "B", "weight": 0.2},
			wantErr: true,
		},
		{
			name:    "string weight",
			rec:     fakeRecord{"from": "A", "to": "B", "weight": "high"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := edgeFromRecord(tt.rec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEdgeRows(t *testing.T) {
	rows := edgeRows([]models.CollaborationEdge{
		{From: "TRMA_03", To: "CARD_01", Weight: 0.6},
		{From: "EMER_05", To: "NEUR_02", Weight: 0.9},
		{From: "NEUR_02", To: "EMER_05", Weight: 0.1},
	})

	assert.Equal(t, []map[string]interface{}{
		{"from": "CARD_01", "to": "TRMA_03", "weight": 0.6},
		{"from": "EMER_05", "to": "NEUR_02", "weight": 0.9},
		{"from": "NEUR_02", "to": "EMER_05", "weight": 0.1},
	}, rows)
}

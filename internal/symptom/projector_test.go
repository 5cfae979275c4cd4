package symptom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategories(t *testing.T) {
	tests := []struct {
		condition string
		want      []Category
	}{
		{"Acute Myocardial Infarction", []Category{Cardiac}},
		{"Chronic Heart Failure", []Category{Cardiac}},
		{"suspected MI, chest pain", []Category{Cardiac}},
		{"Acute Ischemic Stroke", []Category{Neurological}},
		{"Migraine Attack", nil},
		{"Displaced Hip Fracture", []Category{Trauma}},
		{"Diabetic ketoacidosis after head injury", []Category{Trauma, Metabolic}},
		{"Severe Pneumonia", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.condition, func(t *testing.T) {
			assert.Equal(t, tt.want, Categories(tt.condition))
		})
	}
}

func TestProject(t *testing.T) {
	v := Project("Acute Myocardial Infarction", 90, 80, 2, 10)

	assert.Len(t, v, Dimensions)
	assert.Equal(t, []float64{1, 0, 0, 0, 0.9, 0.8, 0.2, 0.1}, v)
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "cardiac", Cardiac.String())
	assert.Equal(t, "metabolic", Metabolic.String())
	assert.Equal(t, "unknown", Category(9).String())
}

package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maanisha27/MediTriage/internal/storage/models"
)

type memoryStore struct {
	patients map[string]models.Patient
	err      error
}

func (m *memoryStore) UpsertPatient(p *models.Patient) error {
	if m.err != nil {
		return m.err
	}
	if m.patients == nil {
		m.patients = map[string]models.Patient{}
	}
	m.patients[p.ID] = *p
	return nil
}

type intakeCounter map[string]int

func (c intakeCounter) ObserveIntake(source string) { c[source]++ }

const referralHTML = `<html>
<head><title>Referral</title><script>track()</script></head>
<body>
  <h1>  Acute
      Myocardial Infarction </h1>
  <p>Crushing chest pain radiating to left arm.</p>
  <div class="vitals">BP 90/60,  HR 120</div>
</body>
</html>`

func TestProcessHTMLReferral(t *testing.T) {
	store := &memoryStore{}
	counter := intakeCounter{}
	p := NewProcessor(store, counter)

	patient, err := p.Process(context.Background(), Referral{
		Patient: models.Patient{Name: "John Smith", Age: 78, Severity: 95, Urgency: 90, ResourceNeed: 80, WaitingImpact: 90},
		Notes:   referralHTML,
		Source:  "referral",
	})
	require.NoError(t, err)

	_, err = uuid.Parse(patient.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Acute Myocardial Infarction", patient.ConditionDesc)
	assert.Equal(t, "BP 90/60, HR 120", patient.Vitals)
	assert.Equal(t, 90.0, patient.AgeVulnerability)
	assert.False(t, patient.RegisteredAt.IsZero())
	assert.Contains(t, store.patients, patient.ID)
	assert.Equal(t, 1, counter["referral"])
}

func TestProcessKeepsExplicitFields(t *testing.T) {
	store := &memoryStore{}
	p := NewProcessor(store, nil)

	patient, err := p.Process(context.Background(), Referral{
		Patient: models.Patient{ID: "P010", Name: "Ana", Age: 30, AgeVulnerability: 45, ConditionDesc: "Fracture", Vitals: "stable"},
		Notes:   referralHTML,
	})
	require.NoError(t, err)
	assert.Equal(t, "P010", patient.ID)
	assert.Equal(t, "Fracture", patient.ConditionDesc)
	assert.Equal(t, "stable", patient.Vitals)
	assert.Equal(t, 45.0, patient.AgeVulnerability)
}

func TestProcessPlainTextNotes(t *testing.T) {
	p := NewProcessor(nil, nil)

	patient, err := p.Process(context.Background(), Referral{
		Patient: models.Patient{Name: "Lee", Age: 4},
		Notes:   "Diabetic\n\tketoacidosis,   vomiting",
	})
	require.NoError(t, err)
	assert.Equal(t, "Diabetic ketoacidosis, vomiting", patient.ConditionDesc)
	assert.Equal(t, 85.0, patient.AgeVulnerability)
}

func TestProcessRejectsInvalid(t *testing.T) {
	store := &memoryStore{}
	p := NewProcessor(store, nil)

	_, err := p.Process(context.Background(), Referral{Patient: models.Patient{Name: "X", Severity: 120}})
	assert.ErrorIs(t, err, ErrInvalidPatient)
	assert.Empty(t, store.patients)
}

func TestProcessStoreFailure(t *testing.T) {
	p := NewProcessor(&memoryStore{err: errors.New("locked")}, nil)

	_, err := p.Process(context.Background(), Referral{Patient: models.Patient{Name: "X"}})
	assert.ErrorContains(t, err, "locked")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		patient models.Patient
		wantErr bool
	}{
		{"valid", models.Patient{Name: "A", Severity: 100, Urgency: 0, PainLevel: 50}, false},
		{"id only", models.Patient{ID: "P1"}, false},
		{"negative urgency", models.Patient{Name: "A", Urgency: -1}, true},
		{"pain above scale", models.Patient{Name: "A", PainLevel: 101}, true},
		{"resource need above scale", models.Patient{Name: "A", ResourceNeed: 100.5}, true},
		{"negative age", models.Patient{Name: "A", Age: -2}, true},
		{"anonymous", models.Patient{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.patient)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPatient)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	long := ""
	for len(long) < 300 {
		long += "word "
	}
	got := truncate(long)
	assert.LessOrEqual(t, len(got), maxConditionLength)
	assert.NotContains(t, got[len(got)-1:], " ")
}

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maanisha27/MediTriage/internal/ingestion"
	"github.com/Maanisha27/MediTriage/internal/routing"
	"github.com/Maanisha27/MediTriage/internal/triage"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandStructure(t *testing.T) {
	cmd := newRootCommand()
	assert.Equal(t, "triagectl", cmd.Use)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["triage"])
	assert.True(t, names["route"])
	assert.NotNil(t, cmd.PersistentFlags().Lookup("dataset"))
}

func TestRouteJSON(t *testing.T) {
	out, err := run(t, "", "route", "-o", "json",
		"--patient-id", "TEST001", "--severity", "90", "--urgency", "85",
		"--vector", "1,0,0,0,0.9,0.8,0.2,0.1")
	require.NoError(t, err)

	var res routing.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "TEST001", res.PatientID)
	require.Len(t, res.Recommendations, 5)
	assert.Equal(t, "CARD_01", res.Recommendations[0].SpecialistID)
}

func TestRouteTextWithLimit(t *testing.T) {
	out, err := run(t, "", "route", "--max", "2",
		"--severity", "90", "--urgency", "85",
		"--vector", "1,0,0,0,0.9,0.8,0.2,0.1")
	require.NoError(t, err)

	assert.Contains(t, out, "CARD_01")
	assert.Contains(t, out, "EMER_05")
	assert.NotContains(t, out, "GENM_04")
}

func TestRouteFromCondition(t *testing.T) {
	out, err := run(t, "", "route", "-o", "json",
		"--condition", "Acute Myocardial Infarction", "--severity", "90", "--urgency", "85",
		"--pain", "7", "--age", "60")
	require.NoError(t, err)

	var res routing.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.NotEmpty(t, res.PatientID)
	assert.NotEmpty(t, res.Recommendations)
}

func TestRouteErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no vector or condition", []string{"route"}, "either --vector or --condition"},
		{"short vector", []string{"route", "--vector", "1,0"}, "needs 8 values"},
		{"non numeric", []string{"route", "--vector", "1,0,0,0,x,0,0,0"}, "invalid vector value"},
		{"bad output", []string{"route", "-o", "yaml", "--vector", "1,0,0,0,0,0,0,0"}, "invalid output format"},
		{"missing dataset", []string{"route", "-d", "/nonexistent/dataset.yaml", "--vector", "1,0,0,0,0,0,0,0"}, "failed to read dataset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestTriageReferencePatients(t *testing.T) {
	out, err := run(t, "", "triage", "-o", "json")
	require.NoError(t, err)

	var report triage.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Results, 10)
	assert.True(t, report.DynamicWeights)
	for i, r := range report.Results {
		assert.Equal(t, i+1, r.Rank)
	}
	require.NotNil(t, report.Agreement)
}

func TestTriageText(t *testing.T) {
	out, err := run(t, "", "triage")
	require.NoError(t, err)

	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "P005")
	assert.Contains(t, out, "Spearman rho")
}

func TestTriageFromStdin(t *testing.T) {
	stdin := `[
		{"id": "A", "age": 70, "severity": 90, "urgency": 85, "resource_need": 80, "waiting_impact": 90},
		{"id": "B", "age": 30, "severity": 20, "urgency": 15, "resource_need": 10, "waiting_impact": 10}
	]`
	out, err := run(t, stdin, "triage", "-i", "-", "-o", "json")
	require.NoError(t, err)

	var report triage.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Results, 2)
	assert.Equal(t, "A", report.Results[0].Patient.ID)
	assert.False(t, report.DynamicWeights)
}

func TestTriageRejectsInvalidInput(t *testing.T) {
	_, err := run(t, `[{"id": "A", "severity": 140}]`, "triage", "-i", "-")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ingestion.ErrInvalidPatient))

	_, err = run(t, `{"id": "A"}`, "triage", "-i", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse patients")

	_, err = run(t, `[]`, "triage", "-i", "-")
	assert.True(t, errors.Is(err, triage.ErrNoPatients))

	_, err = run(t, "", "triage", "--max-patients", "3")
	assert.True(t, errors.Is(err, triage.ErrBatchTooLarge))
}

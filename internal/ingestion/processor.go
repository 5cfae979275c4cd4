package ingestion

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Maanisha27/MediTriage/internal/storage/models"
	"github.com/Maanisha27/MediTriage/internal/triage"
	"github.com/Maanisha27/MediTriage/pkg/logger"
)

var ErrInvalidPatient = errors.New("invalid patient")

type PatientStore interface {
	UpsertPatient(p *models.Patient) error
}

type Observer interface {
	ObserveIntake(source string)
}

// Referral is a patient as it arrives at intake. Notes may be plain text or
// an HTML referral letter.
type Referral struct {
	models.Patient
	Notes  string `json:"notes,omitempty"`
	Source string `json:"source,omitempty"`
}

type Processor struct {
	store    PatientStore
	observer Observer
}

func NewProcessor(store PatientStore, observer Observer) *Processor {
	return &Processor{store: store, observer: observer}
}

var whitespace = regexp.MustCompile(`\s+`)

const maxConditionLength = 200

func (p *Processor) Process(ctx context.Context, ref Referral) (*models.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	patient := ref.Patient
	if ref.Notes != "" {
		notes := parseNotes(ref.Notes)
		if patient.ConditionDesc == "" {
			patient.ConditionDesc = notes.condition
		}
		if patient.Vitals == "" {
			patient.Vitals = notes.vitals
		}
	}
	patient.ConditionDesc = strings.TrimSpace(patient.ConditionDesc)

	if err := Validate(patient); err != nil {
		return nil, err
	}

	if patient.ID == "" {
		patient.ID = uuid.New().String()
	}
	if patient.AgeVulnerability == 0 {
		patient.AgeVulnerability = triage.AgeVulnerability(patient.Age)
	}
	if patient.RegisteredAt.IsZero() {
		patient.RegisteredAt = time.Now().UTC()
	}

	if p.store != nil {
		if err := p.store.UpsertPatient(&patient); err != nil {
			return nil, fmt.Errorf("failed to store patient: %w", err)
		}
	}

	source := ref.Source
	if source == "" {
		source = "api"
	}
	if p.observer != nil {
		p.observer.ObserveIntake(source)
	}

	logger.Info("Patient admitted",
		zap.String("patient_id", patient.ID),
		zap.String("source", source),
		zap.String("condition", patient.ConditionDesc),
	)

	return &patient, nil
}

// Validate checks that every criterion lies on the 0-100 scale.
func Validate(p models.Patient) error {
	criteria := []struct {
		name  string
		value float64
	}{
		{"severity", p.Severity},
		{"urgency", p.Urgency},
		{"resource_need", p.ResourceNeed},
		{"waiting_impact", p.WaitingImpact},
		{"age_vulnerability", p.AgeVulnerability},
		{"pain_level", p.PainLevel},
	}
	for _, c := range criteria {
		if c.value < 0 || c.value > 100 {
			return fmt.Errorf("%w: %s %v outside [0, 100]", ErrInvalidPatient, c.name, c.value)
		}
	}
	if p.Age < 0 || p.Age > 130 {
		return fmt.Errorf("%w: age %d", ErrInvalidPatient, p.Age)
	}
	if strings.TrimSpace(p.Name) == "" && p.ID == "" {
		return fmt.Errorf("%w: name or id required", ErrInvalidPatient)
	}
	return nil
}

type referralNotes struct {
	condition string
	vitals    string
}

// parseNotes pulls the presenting condition and vitals out of a referral.
// The condition comes from the first heading, falling back to the title and
// then to the opening text. Vitals come from any element with class "vitals".
func parseNotes(raw string) referralNotes {
	if !strings.Contains(raw, "<") {
		return referralNotes{condition: truncate(cleanText(raw))}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return referralNotes{condition: truncate(cleanText(raw))}
	}

	doc.Find("script, style, nav, footer, aside").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	var notes referralNotes
	notes.vitals = cleanText(doc.Find(".vitals").First().Text())
	doc.Find(".vitals").Remove()

	notes.condition = cleanText(doc.Find("h1, h2").First().Text())
	if notes.condition == "" {
		notes.condition = cleanText(doc.Find("title").First().Text())
	}
	if notes.condition == "" {
		notes.condition = cleanText(doc.Find("body").Text())
	}
	notes.condition = truncate(notes.condition)

	return notes
}

func cleanText(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func truncate(s string) string {
	if len(s) <= maxConditionLength {
		return s
	}
	cut := s[:maxConditionLength]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut
}

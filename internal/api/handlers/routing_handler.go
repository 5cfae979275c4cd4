package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Maanisha27/MediTriage/internal/routing"
	"github.com/Maanisha27/MediTriage/internal/storage/sqlite"
	"github.com/Maanisha27/MediTriage/internal/symptom"
	"github.com/Maanisha27/MediTriage/pkg/logger"
)

// AssignmentRecorder counts top recommendations per specialist.
type AssignmentRecorder interface {
	RecordAssignment(ctx context.Context, specialistID string) error
}

type RoutingHandler struct {
	engine      *routing.Engine
	patients    PatientStore
	assignments AssignmentRecorder
}

func NewRoutingHandler(engine *routing.Engine, patients PatientStore, assignments AssignmentRecorder) *RoutingHandler {
	return &RoutingHandler{
		engine:      engine,
		patients:    patients,
		assignments: assignments,
	}
}

type routingRequest struct {
	PatientID     string    `json:"patient_id"`
	SymptomVector []float64 `json:"symptom_vector"`
	Severity      float64   `json:"severity"`
	Urgency       float64   `json:"urgency"`
}

type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

// resolve turns a request into a routing.Request. Without an explicit symptom
// vector the stored patient's condition is projected instead.
func (h *RoutingHandler) resolve(body routingRequest) (routing.Request, error) {
	req := routing.Request{
		PatientID:     body.PatientID,
		SymptomVector: body.SymptomVector,
		Severity:      body.Severity,
		Urgency:       body.Urgency,
	}

	if len(req.SymptomVector) > 0 {
		if len(req.SymptomVector) != symptom.Dimensions {
			return req, &requestError{fiber.StatusBadRequest, fmt.Sprintf("symptom_vector must have %d values", symptom.Dimensions)}
		}
		return req, nil
	}

	if body.PatientID == "" {
		return req, &requestError{fiber.StatusBadRequest, "patient_id or symptom_vector is required"}
	}
	if h.patients == nil {
		return req, &requestError{fiber.StatusServiceUnavailable, "Patient store not configured"}
	}

	patient, err := h.patients.GetPatient(body.PatientID)
	if errors.Is(err, sqlite.ErrNotFound) {
		return req, &requestError{fiber.StatusNotFound, "Patient not found"}
	}
	if err != nil {
		return req, fmt.Errorf("failed to load patient: %w", err)
	}

	if req.Severity == 0 {
		req.Severity = patient.Severity
	}
	if req.Urgency == 0 {
		req.Urgency = patient.Urgency
	}
	req.SymptomVector = symptom.Project(patient.ConditionDesc, req.Severity, req.Urgency, patient.PainLevel, patient.Age)

	return req, nil
}

func (h *RoutingHandler) route(ctx context.Context, body routingRequest) (*routing.Result, error) {
	req, err := h.resolve(body)
	if err != nil {
		return nil, err
	}

	result, err := h.engine.Route(ctx, req)
	if err != nil {
		if errors.Is(err, routing.ErrInvalidSymptomVector) {
			return nil, &requestError{fiber.StatusBadRequest, err.Error()}
		}
		return nil, err
	}

	if h.assignments != nil && len(result.Recommendations) > 0 {
		top := result.Recommendations[0].SpecialistID
		if err := h.assignments.RecordAssignment(ctx, top); err != nil {
			logger.Warn("Failed to record assignment", zap.String("specialist_id", top), zap.Error(err))
		}
	}

	return result, nil
}

func (h *RoutingHandler) RoutePatient(c *fiber.Ctx) error {
	var body routingRequest
	if err := c.BodyParser(&body); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.route(c.UserContext(), body)
	if err != nil {
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			return c.Status(reqErr.status).JSON(fiber.Map{
				"error": reqErr.msg,
			})
		}
		logger.Error("Failed to route patient", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to route patient",
		})
	}

	return c.JSON(result)
}

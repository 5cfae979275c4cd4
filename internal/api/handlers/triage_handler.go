package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Maanisha27/MediTriage/internal/ingestion"
	"github.com/Maanisha27/MediTriage/internal/storage/models"
	"github.com/Maanisha27/MediTriage/internal/triage"
	"github.com/Maanisha27/MediTriage/pkg/logger"
)

type TriageHandler struct {
	engine   *triage.Engine
	patients PatientStore
}

func NewTriageHandler(engine *triage.Engine, patients PatientStore) *TriageHandler {
	return &TriageHandler{
		engine:   engine,
		patients: patients,
	}
}

// TriageBatch ranks the patients supplied in the request body.
func (h *TriageHandler) TriageBatch(c *fiber.Ctx) error {
	var req struct {
		Patients []models.Patient `json:"patients"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	for _, p := range req.Patients {
		if err := ingestion.Validate(p); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	return h.run(c, req.Patients)
}

// TriageStored ranks the patients currently registered.
func (h *TriageHandler) TriageStored(c *fiber.Ctx) error {
	patients, err := h.patients.ListPatients(c.QueryInt("limit", 0))
	if err != nil {
		logger.Error("Failed to list patients", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load patients",
		})
	}

	return h.run(c, patients)
}

func (h *TriageHandler) run(c *fiber.Ctx, patients []models.Patient) error {
	report, err := h.engine.Run(patients)
	switch {
	case errors.Is(err, triage.ErrNoPatients):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No patients to triage",
		})
	case errors.Is(err, triage.ErrBatchTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": err.Error(),
		})
	case err != nil:
		logger.Error("Failed to triage patients", zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Failed to triage patients",
		})
	}

	return c.JSON(report)
}

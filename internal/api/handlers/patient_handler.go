package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Maanisha27/MediTriage/internal/ingestion"
	"github.com/Maanisha27/MediTriage/internal/storage/models"
	"github.com/Maanisha27/MediTriage/internal/storage/sqlite"
	"github.com/Maanisha27/MediTriage/pkg/logger"
)

type PatientStore interface {
	GetPatient(id string) (*models.Patient, error)
	ListPatients(limit int) ([]models.Patient, error)
	DeletePatient(id string) error
}

type PatientHandler struct {
	store     PatientStore
	processor *ingestion.Processor
}

func NewPatientHandler(store PatientStore, processor *ingestion.Processor) *PatientHandler {
	return &PatientHandler{
		store:     store,
		processor: processor,
	}
}

func (h *PatientHandler) CreatePatient(c *fiber.Ctx) error {
	var req ingestion.Referral
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	patient, err := h.processor.Process(c.UserContext(), req)
	if errors.Is(err, ingestion.ErrInvalidPatient) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		logger.Error("Failed to admit patient", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to admit patient",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(patient)
}

func (h *PatientHandler) GetPatient(c *fiber.Ctx) error {
	patient, err := h.store.GetPatient(c.Params("id"))
	if errors.Is(err, sqlite.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Patient not found",
		})
	}
	if err != nil {
		logger.Error("Failed to get patient", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get patient",
		})
	}

	return c.JSON(patient)
}

func (h *PatientHandler) ListPatients(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)

	patients, err := h.store.ListPatients(limit)
	if err != nil {
		logger.Error("Failed to list patients", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list patients",
		})
	}
	if patients == nil {
		patients = []models.Patient{}
	}

	return c.JSON(fiber.Map{
		"patients": patients,
		"count":    len(patients),
	})
}

func (h *PatientHandler) DeletePatient(c *fiber.Ctx) error {
	err := h.store.DeletePatient(c.Params("id"))
	if errors.Is(err, sqlite.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Patient not found",
		})
	}
	if err != nil {
		logger.Error("Failed to delete patient", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete patient",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

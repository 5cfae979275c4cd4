package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Maanisha27/MediTriage/internal/routing"
	"github.com/Maanisha27/MediTriage/internal/storage/models"
	"github.com/Maanisha27/MediTriage/internal/symptom"
	"github.com/Maanisha27/MediTriage/internal/vector/milvus"
	"github.com/Maanisha27/MediTriage/pkg/logger"
)

type StatusStore interface {
	SetStatus(ctx context.Context, specialistID string, status models.SpecialistStatus) error
	Statuses(ctx context.Context, ids []string) (map[string]models.SpecialistStatus, error)
}

type NearestFinder interface {
	Nearest(ctx context.Context, vector []float64, k int) ([]milvus.Match, error)
}

type SpecialistHandler struct {
	engine   *routing.Engine
	statuses StatusStore
	nearest  NearestFinder
}

func NewSpecialistHandler(engine *routing.Engine, statuses StatusStore, nearest NearestFinder) *SpecialistHandler {
	return &SpecialistHandler{
		engine:   engine,
		statuses: statuses,
		nearest:  nearest,
	}
}

type specialistView struct {
	models.Specialist
	Status *models.SpecialistStatus `json:"status,omitempty"`
}

func (h *SpecialistHandler) ListSpecialists(c *fiber.Ctx) error {
	ctx := c.UserContext()
	specialists := h.engine.Dataset(ctx).Specialists

	var statuses map[string]models.SpecialistStatus
	if h.statuses != nil {
		ids := make([]string, len(specialists))
		for i, s := range specialists {
			ids[i] = s.ID
		}
		var err error
		statuses, err = h.statuses.Statuses(ctx, ids)
		if err != nil {
			logger.Warn("Failed to load specialist statuses", zap.Error(err))
		}
	}

	views := make([]specialistView, len(specialists))
	for i, s := range specialists {
		views[i] = specialistView{Specialist: s}
		if st, ok := statuses[s.ID]; ok {
			views[i].Status = &st
		}
	}

	return c.JSON(fiber.Map{
		"specialists": views,
		"count":       len(views),
	})
}

func (h *SpecialistHandler) UpdateStatus(c *fiber.Ctx) error {
	if h.statuses == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Live status store not configured",
		})
	}

	id := c.Params("id")
	if !h.known(c.UserContext(), id) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Specialist not found",
		})
	}

	var status models.SpecialistStatus
	if err := c.BodyParser(&status); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if status.CurrentLoad < 0 || status.CurrentLoad > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "current_load must be within [0, 100]",
		})
	}
	status.UpdatedAt = time.Now().UTC()

	if err := h.statuses.SetStatus(c.UserContext(), id, status); err != nil {
		logger.Error("Failed to update specialist status", zap.String("specialist_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update status",
		})
	}

	return c.JSON(fiber.Map{
		"specialist_id": id,
		"status":        status,
	})
}

func (h *SpecialistHandler) known(ctx context.Context, id string) bool {
	for _, s := range h.engine.Dataset(ctx).Specialists {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Nearest looks up the specialists whose symptom profiles are closest to a
// query vector given as comma-separated values.
func (h *SpecialistHandler) Nearest(c *fiber.Ctx) error {
	if h.nearest == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Profile search not configured",
		})
	}

	vector, err := parseVector(c.Query("vector"))
	if err != nil || len(vector) != symptom.Dimensions {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "vector must be " + strconv.Itoa(symptom.Dimensions) + " comma-separated numbers",
		})
	}

	k := c.QueryInt("k", 3)
	matches, err := h.nearest.Nearest(c.UserContext(), vector, k)
	if err != nil {
		logger.Error("Nearest profile search failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Profile search failed",
		})
	}

	return c.JSON(fiber.Map{
		"matches": matches,
	})
}

func parseVector(raw string) ([]float64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

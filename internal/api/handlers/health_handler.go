package handlers

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Maanisha27/MediTriage/pkg/circuitbreaker"
)

type check struct {
	name     string
	required bool
	fn       func(ctx context.Context) error
}

type HealthHandler struct {
	checks   []check
	breakers *circuitbreaker.Registry
	timeout  time.Duration
}

func NewHealthHandler(breakers *circuitbreaker.Registry) *HealthHandler {
	return &HealthHandler{
		breakers: breakers,
		timeout:  2 * time.Second,
	}
}

// AddCheck registers a readiness probe. A failing required check makes the
// service unready; a failing optional one only marks it degraded, since
// routing falls back to the bundled dataset.
func (h *HealthHandler) AddCheck(name string, required bool, fn func(ctx context.Context) error) {
	h.checks = append(h.checks, check{name: name, required: required, fn: fn})
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	components := make(map[string]string, len(h.checks))
	ready, degraded := true, false

	for _, chk := range h.checks {
		ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
		err := chk.fn(ctx)
		cancel()

		if err == nil {
			components[chk.name] = "up"
			continue
		}
		components[chk.name] = "down: " + err.Error()
		if chk.required {
			ready = false
		} else {
			degraded = true
		}
	}

	var open []string
	breakers := map[string]string{}
	if h.breakers != nil {
		open = h.breakers.Open()
		breakers = h.breakers.States()
	}
	if len(open) > 0 {
		degraded = true
	}
	sort.Strings(open)

	status := "ready"
	code := fiber.StatusOK
	switch {
	case !ready:
		status = "unready"
		code = fiber.StatusServiceUnavailable
	case degraded:
		status = "degraded"
	}

	return c.Status(code).JSON(fiber.Map{
		"status":        status,
		"components":    components,
		"breakers":      breakers,
		"open_breakers": open,
	})
}

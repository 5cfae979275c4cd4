package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type Handlers struct {
	Patients    *PatientHandler
	Triage      *TriageHandler
	Routing     *RoutingHandler
	Specialists *SpecialistHandler
	Health      *HealthHandler
	WebSocket   *WebSocketHandler
}

// Register mounts the REST API under /api/v1 and the routing stream at
// /ws/routing. Handlers left nil are not mounted.
func (h Handlers) Register(app *fiber.App, middleware ...fiber.Handler) {
	api := app.Group("/api/v1", middleware...)

	if h.Health != nil {
		api.Get("/health", h.Health.Health)
		api.Get("/ready", h.Health.Ready)
	}

	if h.Patients != nil {
		api.Get("/patients", h.Patients.ListPatients)
		api.Post("/patients", h.Patients.CreatePatient)
		api.Get("/patients/:id", h.Patients.GetPatient)
		api.Delete("/patients/:id", h.Patients.DeletePatient)
	}

	if h.Specialists != nil {
		api.Get("/specialists", h.Specialists.ListSpecialists)
		api.Get("/specialists/nearest", h.Specialists.Nearest)
		api.Put("/specialists/:id/status", h.Specialists.UpdateStatus)
	}

	if h.Triage != nil {
		api.Post("/triage", h.Triage.TriageBatch)
		api.Get("/triage", h.Triage.TriageStored)
	}

	if h.Routing != nil {
		api.Post("/routing", h.Routing.RoutePatient)
	}

	if h.WebSocket != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws/routing", websocket.New(h.WebSocket.HandleConnection))
	}
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/voice-servicedesk/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Session   *handlers.SessionHandler
	Tickets   *handlers.TicketsHandler
	Knowledge *handlers.KnowledgeHandler
	Incidents *handlers.IncidentsHandler
	Admin     *handlers.AdminHandler
	Relay     *handlers.RelayHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/ws", cfg.Relay.Upgrade, cfg.Relay.Serve())

	api := app.Group("/api")
	api.Get("/health", cfg.Health.Status)
	api.Get("/health/ready", cfg.Health.Ready)
	api.Post("/session", cfg.Session.Create)

	api.Get("/tickets", cfg.Tickets.List)
	api.Post("/tickets", cfg.Tickets.Create)
	api.Get("/tickets/:id", cfg.Tickets.Get)
	api.Patch("/tickets/:id", cfg.Tickets.Patch)
	api.Delete("/tickets/:id", cfg.Tickets.Delete)

	api.Get("/kb", cfg.Knowledge.List)
	api.Post("/kb", cfg.Knowledge.Create)
	api.Get("/kb/search", cfg.Knowledge.Search)
	api.Post("/kb/upload", cfg.Knowledge.Upload)
	api.Put("/kb/:id", cfg.Knowledge.Update)
	api.Delete("/kb/:id", cfg.Knowledge.Delete)

	api.Get("/incidents", cfg.Incidents.List)
	api.Post("/incidents/:id/adjust", cfg.Incidents.Adjust)

	admin := api.Group("/admin")
	admin.Get("/config", cfg.Admin.GetConfig)
	admin.Put("/config", cfg.Admin.UpdateConfig)
	admin.Post("/config/reset", cfg.Admin.ResetConfig)
}

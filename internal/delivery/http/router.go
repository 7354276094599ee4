package http

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, handler *Handler) {
	// Health check
	app.Get("/health", handler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		api.Post("/routes/plan", handler.PlanRoute)
		api.Post("/routes/feedback", handler.Feedback)

		api.Get("/preferences", handler.GetPreferences)
		api.Put("/preferences", handler.UpdatePreferences)
	}
}

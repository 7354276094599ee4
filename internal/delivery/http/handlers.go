package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/citycommute/backend/internal/domain"
	"github.com/citycommute/backend/internal/service"
)

// Handler contains all HTTP handlers
type Handler struct {
	planner *service.PlannerService
	learner *service.LearnerService
	repo    domain.DataRepository
}

// NewHandler creates a new handler
func NewHandler(planner *service.PlannerService, learner *service.LearnerService, repo domain.DataRepository) *Handler {
	return &Handler{
		planner: planner,
		learner: learner,
		repo:    repo,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	storage := "ok"
	if err := h.repo.Health(c.Context()); err != nil {
		storage = "unavailable"
	}
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "commute-planner",
		"storage": storage,
		"version": "1.0.0",
	})
}

// PlanRequest is the plan endpoint body. Preferences, when present, replace
// the stored defaults wholesale for this request only.
type PlanRequest struct {
	Origin      string              `json:"origin"`
	Dest        string              `json:"dest"`
	Preferences *domain.Preferences `json:"preferences,omitempty"`
}

// PlanRoute recommends one itinerary between two place queries
func (h *Handler) PlanRoute(c *fiber.Ctx) error {
	var req PlanRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Origin == "" || req.Dest == "" {
		return fiber.NewError(fiber.StatusBadRequest, "origin and dest are required")
	}

	data, err := h.planner.Plan(c.Context(), req.Origin, req.Dest, req.Preferences)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "Failed to plan route: "+err.Error())
	}

	return c.JSON(domain.PlanResponse{
		Data:    data,
		Success: true,
	})
}

// FeedbackRequest is the confirmed-route body used for learning.
type FeedbackRequest struct {
	Origin   string           `json:"origin"`
	Dest     string           `json:"dest"`
	Segments []domain.Segment `json:"segments"`
}

// Feedback applies one learning update from the route the rider confirmed
// and appends the trip to history
func (h *Handler) Feedback(c *fiber.Ctx) error {
	var req FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if len(req.Segments) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "segments are required")
	}

	prefs, err := h.learner.Learn(c.Context(), req.Segments)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to persist preferences")
	}

	ev := h.planner.RecordTrip(req.Origin, req.Dest, domain.RouteCandidate{Segments: req.Segments})

	return c.JSON(fiber.Map{
		"success":     true,
		"preferences": prefs,
		"trip":        ev,
	})
}

// GetPreferences returns the stored preferences
func (h *Handler) GetPreferences(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.repo.LoadPreferences(c.Context()),
	})
}

// UpdatePreferences replaces the stored preferences
func (h *Handler) UpdatePreferences(c *fiber.Ctx) error {
	var prefs domain.Preferences
	if err := c.BodyParser(&prefs); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if prefs.CrowdWeight < 0 || prefs.WalkLimitMin < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "crowd_weight and walk_limit_min must be non-negative")
	}
	if prefs.MaxCrowd < service.CrowdMin || prefs.MaxCrowd > service.CrowdMax {
		return fiber.NewError(fiber.StatusBadRequest, "max_crowd must be between 1 and 4")
	}

	normalized := prefs.Normalized()
	if err := h.repo.SavePreferences(c.Context(), normalized); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to save preferences")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    normalized,
	})
}

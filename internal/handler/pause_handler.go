package handler

import (
	"time"

	"github.com/KUSHAL0100/payals-kitchen/internal/service"
	"github.com/gofiber/fiber/v2"
)

// PauseHandler handles delivery-pause endpoints
type PauseHandler struct {
	pauseService *service.PauseService
}

// NewPauseHandler creates a new PauseHandler
func NewPauseHandler(pauseService *service.PauseService) *PauseHandler {
	return &PauseHandler{pauseService: pauseService}
}

// PauseRequest represents the request body for scheduling a pause
type PauseRequest struct {
	SubscriptionID string `json:"subscription_id"`
	StartDate      string `json:"start_date"` // YYYY-MM-DD
	EndDate        string `json:"end_date"`   // YYYY-MM-DD
}

// Create handles POST /v1/me/pauses
func (h *PauseHandler) Create(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req PauseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}
	if req.SubscriptionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "subscription_id is required",
		})
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "start_date must be YYYY-MM-DD",
		})
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "end_date must be YYYY-MM-DD",
		})
	}

	pause, err := h.pauseService.Create(c.UserContext(), userID, req.SubscriptionID, start.UTC(), end.UTC())
	if err != nil {
		return respondError(c, "CreatePause", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    pause,
	})
}

// Cancel handles POST /v1/me/pauses/:id/cancel
func (h *PauseHandler) Cancel(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	pauseID := c.Params("id")
	if pauseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "pause ID is required",
		})
	}

	if err := h.pauseService.Cancel(c.UserContext(), userID, pauseID); err != nil {
		return respondError(c, "CancelPause", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// List handles GET /v1/me/pauses
func (h *PauseHandler) List(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	pauses, err := h.pauseService.List(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "ListPauses", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    pauses,
	})
}

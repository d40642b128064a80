package handler

import (
	"github.com/KUSHAL0100/payals-kitchen/internal/domain"
	"github.com/KUSHAL0100/payals-kitchen/internal/service"
	"github.com/gofiber/fiber/v2"
)

// PlanHandler handles plan catalogue endpoints
type PlanHandler struct {
	planRepo domain.PlanRepository
}

// NewPlanHandler creates a new PlanHandler
func NewPlanHandler(planRepo domain.PlanRepository) *PlanHandler {
	return &PlanHandler{planRepo: planRepo}
}

// PlanResponse is a catalogue entry with derived single-meal pricing
type PlanResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	SingleMealPrice float64 `json:"single_meal_price"`
	Duration        string  `json:"duration"`
}

// List handles GET /v1/plans
// Returns active plans for the public catalogue
func (h *PlanHandler) List(c *fiber.Ctx) error {
	plans, err := h.planRepo.GetActivePlans(c.UserContext())
	if err != nil {
		return respondError(c, "ListPlans", err)
	}

	response := make([]PlanResponse, 0, len(plans))
	for _, plan := range plans {
		response = append(response, PlanResponse{
			ID:              plan.ID,
			Name:            plan.Name,
			Price:           plan.Price,
			SingleMealPrice: service.PriceFor(plan, domain.MealTypeLunch),
			Duration:        plan.Duration,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    response,
	})
}

// PlanRequest represents the admin request body for creating or updating a plan
type PlanRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Duration string  `json:"duration"`
	Active   *bool   `json:"active"`
}

func (r *PlanRequest) validate() string {
	if domain.TierRank(r.Name) == 0 {
		return "name must be one of Basic, Premium, Exotic"
	}
	if r.Price <= 0 {
		return "price must be positive"
	}
	if domain.DurationRank(r.Duration) == 0 {
		return "duration must be monthly or yearly"
	}
	return ""
}

// Create handles POST /v1/admin/plans
func (h *PlanHandler) Create(c *fiber.Ctx) error {
	var req PlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}
	if msg := req.validate(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   msg,
		})
	}

	plan := &domain.Plan{
		Name:     req.Name,
		Price:    req.Price,
		Duration: req.Duration,
		Active:   true,
	}
	if req.Active != nil {
		plan.Active = *req.Active
	}

	if err := h.planRepo.Create(c.UserContext(), plan); err != nil {
		return respondError(c, "CreatePlan", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    plan,
	})
}

// Update handles PUT /v1/admin/plans/:id
// Deactivation is the supported removal path; plans are never deleted.
func (h *PlanHandler) Update(c *fiber.Ctx) error {
	planID := c.Params("id")
	if planID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "plan ID is required",
		})
	}

	var req PlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}
	if msg := req.validate(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   msg,
		})
	}

	ctx := c.UserContext()
	plan, err := h.planRepo.GetByID(ctx, planID)
	if err != nil {
		return respondError(c, "UpdatePlan", err)
	}

	plan.Name = req.Name
	plan.Price = req.Price
	plan.Duration = req.Duration
	if req.Active != nil {
		plan.Active = *req.Active
	}

	if err := h.planRepo.Update(ctx, plan); err != nil {
		return respondError(c, "UpdatePlan", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    plan,
	})
}

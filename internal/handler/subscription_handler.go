package handler

import (
	"github.com/KUSHAL0100/payals-kitchen/internal/domain"
	"github.com/KUSHAL0100/payals-kitchen/internal/service"
	"github.com/gofiber/fiber/v2"
)

// SubscriptionHandler handles the authenticated subscription lifecycle endpoints
type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// SubscriptionCheckoutRequest represents the request body for subscription checkout
type SubscriptionCheckoutRequest struct {
	PlanID        string          `json:"plan_id"`
	MealType      string          `json:"meal_type"`
	LunchAddress  *domain.Address `json:"lunch_address"`
	DinnerAddress *domain.Address `json:"dinner_address"`
}

// SubscriptionVerifyRequest carries the gateway callback plus the re-submitted
// plan selection
type SubscriptionVerifyRequest struct {
	PlanID         string          `json:"plan_id"`
	MealType       string          `json:"meal_type"`
	LunchAddress   *domain.Address `json:"lunch_address"`
	DinnerAddress  *domain.Address `json:"dinner_address"`
	GatewayOrderID string          `json:"gateway_order_id"`
	PaymentID      string          `json:"payment_id"`
	Signature      string          `json:"signature"`
}

// Checkout handles POST /v1/me/subscription/checkout
func (h *SubscriptionHandler) Checkout(c *fiber.Ctx) error {
	return h.checkout(c, false)
}

// Renew handles POST /v1/me/subscription/renew
// Same flow as checkout but without the upgrade eligibility gate, so a user can
// re-purchase their current plan.
func (h *SubscriptionHandler) Renew(c *fiber.Ctx) error {
	return h.checkout(c, true)
}

func (h *SubscriptionHandler) checkout(c *fiber.Ctx, renew bool) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req SubscriptionCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}
	if req.PlanID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "plan_id is required",
		})
	}

	result, err := h.subscriptionService.Checkout(c.UserContext(), service.CheckoutInput{
		UserID:        userID,
		PlanID:        req.PlanID,
		MealType:      req.MealType,
		LunchAddress:  req.LunchAddress,
		DinnerAddress: req.DinnerAddress,
		Renew:         renew,
	})
	if err != nil {
		return respondError(c, "SubscriptionCheckout", err)
	}

	status := fiber.StatusCreated
	if result.FreeSwitch {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// Verify handles POST /v1/me/subscription/verify
func (h *SubscriptionHandler) Verify(c *fiber.Ctx) error {
	return h.verify(c, false)
}

// RenewVerify handles POST /v1/me/subscription/renew/verify
func (h *SubscriptionHandler) RenewVerify(c *fiber.Ctx) error {
	return h.verify(c, true)
}

func (h *SubscriptionHandler) verify(c *fiber.Ctx, renew bool) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req SubscriptionVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}
	if req.PlanID == "" || req.GatewayOrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "plan_id, gateway_order_id, payment_id and signature are required",
		})
	}

	subscription, err := h.subscriptionService.VerifyAndActivate(c.UserContext(), service.VerifyInput{
		UserID:         userID,
		PlanID:         req.PlanID,
		MealType:       req.MealType,
		LunchAddress:   req.LunchAddress,
		DinnerAddress:  req.DinnerAddress,
		Renew:          renew,
		GatewayOrderID: req.GatewayOrderID,
		PaymentID:      req.PaymentID,
		Signature:      req.Signature,
	})
	if err != nil {
		return respondError(c, "SubscriptionVerify", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    subscription,
	})
}

// Preview handles GET /v1/me/subscription/preview?plan_id=&meal_type=
// Quotes an upgrade without side effects.
func (h *SubscriptionHandler) Preview(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	planID := c.Query("plan_id")
	mealType := c.Query("meal_type", domain.MealTypeBoth)
	if planID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "plan_id is required",
		})
	}

	result, err := h.subscriptionService.Preview(c.UserContext(), userID, planID, mealType)
	if err != nil {
		return respondError(c, "SubscriptionPreview", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// Current handles GET /v1/me/subscription
func (h *SubscriptionHandler) Current(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	subscription, err := h.subscriptionService.Current(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "CurrentSubscription", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    subscription,
	})
}

// MealTypeRequest represents the request body for a meal-type change
type MealTypeRequest struct {
	MealType string `json:"meal_type"`
}

// ChangeMealType handles PATCH /v1/me/subscription/meal-type
func (h *SubscriptionHandler) ChangeMealType(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req MealTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}

	subscription, err := h.subscriptionService.ChangeMealType(c.UserContext(), userID, req.MealType)
	if err != nil {
		return respondError(c, "ChangeMealType", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    subscription,
	})
}

// AddressesRequest represents the request body for an address update
type AddressesRequest struct {
	LunchAddress  *domain.Address `json:"lunch_address"`
	DinnerAddress *domain.Address `json:"dinner_address"`
}

// UpdateAddresses handles PATCH /v1/me/subscription/addresses
func (h *SubscriptionHandler) UpdateAddresses(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req AddressesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}
	if req.LunchAddress == nil && req.DinnerAddress == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "at least one address is required",
		})
	}

	subscription, err := h.subscriptionService.UpdateAddresses(c.UserContext(), userID, req.LunchAddress, req.DinnerAddress)
	if err != nil {
		return respondError(c, "UpdateAddresses", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    subscription,
	})
}

// Cancel handles POST /v1/me/subscription/cancel
// Subscription cancellation carries a 100% fee; no refund is issued.
func (h *SubscriptionHandler) Cancel(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.subscriptionService.Cancel(c.UserContext(), userID); err != nil {
		return respondError(c, "CancelSubscription", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"refund_amount": 0,
		},
	})
}

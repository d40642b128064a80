package handler

import (
	"github.com/KUSHAL0100/payals-kitchen/internal/domain"
	"github.com/KUSHAL0100/payals-kitchen/internal/service"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles one-off order endpoints (single tiffins, event catering)
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// OrderCheckoutRequest represents the request body for order checkout
type OrderCheckoutRequest struct {
	Type            string                   `json:"type"` // single or event
	Items           []service.OrderItemInput `json:"items"`
	DeliveryAddress *domain.Address          `json:"delivery_address"`
	DiscountAmount  float64                  `json:"discount_amount"`
}

// OrderVerifyRequest carries the gateway callback for a pending order
type OrderVerifyRequest struct {
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// Checkout handles POST /v1/me/orders/checkout
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req OrderCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}

	result, err := h.orderService.Checkout(c.UserContext(), userID, req.Type, req.Items, req.DeliveryAddress, req.DiscountAmount)
	if err != nil {
		return respondError(c, "OrderCheckout", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// Verify handles POST /v1/me/orders/:id/verify
func (h *OrderHandler) Verify(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	orderID := c.Params("id")
	if orderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "order ID is required",
		})
	}

	var req OrderVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}
	if req.PaymentID == "" || req.Signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "payment_id and signature are required",
		})
	}

	order, err := h.orderService.VerifyPayment(c.UserContext(), userID, orderID, req.PaymentID, req.Signature)
	if err != nil {
		return respondError(c, "OrderVerify", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}

// Cancel handles POST /v1/me/orders/:id/cancel
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	orderID := c.Params("id")
	if orderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "order ID is required",
		})
	}

	result, err := h.orderService.Cancel(c.UserContext(), userID, orderID)
	if err != nil {
		return respondError(c, "OrderCancel", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// List handles GET /v1/me/orders
func (h *OrderHandler) List(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	orders, err := h.orderService.ListForUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "ListOrders", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
	})
}

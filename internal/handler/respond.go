package handler

import (
	"errors"
	"log"

	"github.com/KUSHAL0100/payals-kitchen/internal/domain"
	"github.com/gofiber/fiber/v2"
)

// respondError maps domain errors onto HTTP statuses. op tags the log line.
func respondError(c *fiber.Ctx, op string, err error) error {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   validationErr.Msg,
		})
	}

	var policyErr *domain.PolicyError
	if errors.As(err, &policyErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   policyErr.Reason,
		})
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "not found",
		})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "access denied",
		})
	case errors.Is(err, domain.ErrSignatureMismatch):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "payment signature verification failed",
		})
	case errors.Is(err, domain.ErrPauseOverlap):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	case errors.Is(err, domain.ErrPauseTooLate):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	log.Printf("[%s] Error: %v", op, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   "internal server error",
	})
}

// currentUserID pulls the authenticated user id set by the JWT middleware.
func currentUserID(c *fiber.Ctx) (string, bool) {
	userID, ok := c.Locals("userID").(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   "unauthorized",
	})
}

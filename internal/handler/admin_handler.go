package handler

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/KUSHAL0100/payals-kitchen/internal/domain"
	"github.com/KUSHAL0100/payals-kitchen/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"
)

// AdminHandler handles kitchen-side endpoints: the dispatch manifest, order
// moderation, menus and housekeeping.
type AdminHandler struct {
	manifestService     *service.ManifestService
	orderService        *service.OrderService
	subscriptionService *service.SubscriptionService
	menuRepo            domain.MenuRepository
	fileRepo            domain.FileRepository
	maxUploadBytes      int64
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	manifestService *service.ManifestService,
	orderService *service.OrderService,
	subscriptionService *service.SubscriptionService,
	menuRepo domain.MenuRepository,
	fileRepo domain.FileRepository,
	maxUploadSizeMB int64,
) *AdminHandler {
	return &AdminHandler{
		manifestService:     manifestService,
		orderService:        orderService,
		subscriptionService: subscriptionService,
		menuRepo:            menuRepo,
		fileRepo:            fileRepo,
		maxUploadBytes:      maxUploadSizeMB * 1024 * 1024,
	}
}

// Dispatch handles GET /v1/admin/dispatch?date=YYYY-MM-DD
// Builds the per-day delivery manifest grouped by plan tier.
func (h *AdminHandler) Dispatch(c *fiber.Ctx) error {
	dateStr := c.Query("date")
	day := time.Now().UTC()
	if dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "date must be YYYY-MM-DD",
			})
		}
		day = parsed.UTC()
	}

	manifest, err := h.manifestService.BuildManifest(c.UserContext(), day)
	if err != nil {
		return respondError(c, "Dispatch", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    manifest,
	})
}

// ListOrders handles GET /v1/admin/orders?status=
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.ListAll(c.UserContext(), c.Query("status"))
	if err != nil {
		return respondError(c, "AdminListOrders", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
	})
}

// ConfirmOrder handles POST /v1/admin/orders/:id/confirm
func (h *AdminHandler) ConfirmOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	if orderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "order ID is required",
		})
	}

	order, err := h.orderService.Confirm(c.UserContext(), orderID)
	if err != nil {
		return respondError(c, "ConfirmOrder", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}

// RejectOrder handles POST /v1/admin/orders/:id/reject
// A rejection refunds the full amount paid.
func (h *AdminHandler) RejectOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	if orderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "order ID is required",
		})
	}

	result, err := h.orderService.Reject(c.UserContext(), orderID)
	if err != nil {
		return respondError(c, "RejectOrder", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// MenuRequest represents the request body for the day's menu of one plan tier
type MenuRequest struct {
	Date        string   `json:"date"` // YYYY-MM-DD
	PlanType    string   `json:"plan_type"`
	LunchItems  []string `json:"lunch_items"`
	DinnerItems []string `json:"dinner_items"`
	ImageURL    string   `json:"image_url"`
}

// UpsertMenu handles PUT /v1/admin/menus
func (h *AdminHandler) UpsertMenu(c *fiber.Ctx) error {
	var req MenuRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "date must be YYYY-MM-DD",
		})
	}
	if domain.TierRank(req.PlanType) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "plan_type must be one of Basic, Premium, Exotic",
		})
	}

	menu := &domain.Menu{
		Date:        date.UTC(),
		PlanType:    req.PlanType,
		LunchItems:  req.LunchItems,
		DinnerItems: req.DinnerItems,
		ImageURL:    req.ImageURL,
	}

	if err := h.menuRepo.Upsert(c.UserContext(), menu); err != nil {
		return respondError(c, "UpsertMenu", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    menu,
	})
}

// ListMenus handles GET /v1/admin/menus?date=YYYY-MM-DD
func (h *AdminHandler) ListMenus(c *fiber.Ctx) error {
	dateStr := c.Query("date")
	day := time.Now().UTC()
	if dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "date must be YYYY-MM-DD",
			})
		}
		day = parsed.UTC()
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Millisecond)

	menus, err := h.menuRepo.ListByDate(c.UserContext(), dayStart, dayEnd)
	if err != nil {
		return respondError(c, "ListMenus", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    menus,
	})
}

// UploadMenuImage handles POST /v1/admin/menus/image
// Accepts a multipart file and returns the stored public URL.
func (h *AdminHandler) UploadMenuImage(c *fiber.Ctx) error {
	if h.fileRepo == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "file storage is not configured",
		})
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "image file is required",
		})
	}
	if fileHeader.Size > h.maxUploadBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("image exceeds maximum size of %d bytes", h.maxUploadBytes),
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("[UploadMenuImage] Error opening upload: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to read upload",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("[UploadMenuImage] Error reading upload: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "failed to read upload",
		})
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	filename := fmt.Sprintf("menus/%s-%s", ulid.Make().String(), fileHeader.Filename)
	url, err := h.fileRepo.Upload(c.UserContext(), data, filename, contentType)
	if err != nil {
		return respondError(c, "UploadMenuImage", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"url": url,
		},
	})
}

// ExpireLapsed handles POST /v1/admin/subscriptions/expire-lapsed
// Sweeps Active subscriptions whose end date has passed.
func (h *AdminHandler) ExpireLapsed(c *fiber.Ctx) error {
	count, err := h.subscriptionService.ExpireLapsed(c.UserContext())
	if err != nil {
		return respondError(c, "ExpireLapsed", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"expired": count,
		},
	})
}

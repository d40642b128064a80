package server

import (
	"context"
	"log"
	"time"

	"github.com/KUSHAL0100/payals-kitchen/internal/config"
	"github.com/KUSHAL0100/payals-kitchen/internal/domain"
	"github.com/KUSHAL0100/payals-kitchen/internal/handler"
	"github.com/KUSHAL0100/payals-kitchen/internal/middleware"
	"github.com/KUSHAL0100/payals-kitchen/internal/repository"
	"github.com/KUSHAL0100/payals-kitchen/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client
	// Payments overrides the env-selected gateway; tests inject the mock here.
	Payments service.PaymentProvider
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	// Initialize repositories
	userRepo := repository.NewMongoUserRepository(deps.MongoDB)
	planRepo := repository.NewMongoPlanRepository(deps.MongoDB)
	subscriptionRepo := repository.NewMongoSubscriptionRepository(deps.MongoDB)
	orderRepo := repository.NewMongoOrderRepository(deps.MongoDB)
	pauseRepo := repository.NewMongoPauseRepository(deps.MongoDB)
	menuRepo := repository.NewMongoMenuRepository(deps.MongoDB)

	var fileRepo domain.FileRepository
	if deps.Config.S3.Endpoint != "" {
		s3Repo, err := repository.NewS3FileRepository(context.Background(), deps.Config.S3)
		if err != nil {
			log.Printf("Warning: Failed to initialize S3 repository: %v", err)
		} else {
			fileRepo = s3Repo
		}
	}

	payments := deps.Payments
	if payments == nil {
		payments = service.NewPaymentProvider()
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, deps.Config.JWT.Secret, time.Duration(deps.Config.JWT.ExpiryHours)*time.Hour)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, planRepo, orderRepo, userRepo, payments)
	pauseService := service.NewPauseService(pauseRepo, subscriptionRepo)
	orderService := service.NewOrderService(orderRepo, payments)
	manifestService := service.NewManifestService(subscriptionRepo, pauseRepo, orderRepo, menuRepo, planRepo, userRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	planHandler := handler.NewPlanHandler(planRepo)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	pauseHandler := handler.NewPauseHandler(pauseService)
	orderHandler := handler.NewOrderHandler(orderService)
	adminHandler := handler.NewAdminHandler(manifestService, orderService, subscriptionService, menuRepo, fileRepo, deps.Config.Server.MaxUploadSizeMB)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Payal's Kitchen API",
		BodyLimit:    int(deps.Config.Server.MaxUploadSizeMB * 1024 * 1024),
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	app.Use(middleware.IdempotencyMiddleware(deps.RedisClient, 24*time.Hour))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "payals-kitchen",
		})
	})

	// API v1 routes
	v1 := app.Group("/v1")

	// Auth endpoints (public)
	auth := v1.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Public plan catalogue
	v1.Get("/plans", planHandler.List)

	// ===========================================
	// CUSTOMER API - /v1/me/* (requires 'customer' role)
	// ===========================================
	me := v1.Group("/me")
	me.Use(middleware.VerifyAccessToken(deps.Config.JWT.Secret))
	me.Use(middleware.AuthorizeRole(domain.RoleCustomer, domain.RoleAdmin))

	meSub := me.Group("/subscription")
	meSub.Get("/", subscriptionHandler.Current)
	meSub.Get("/preview", subscriptionHandler.Preview)
	meSub.Post("/checkout", subscriptionHandler.Checkout)
	meSub.Post("/verify", subscriptionHandler.Verify)
	meSub.Post("/renew", subscriptionHandler.Renew)
	meSub.Post("/renew/verify", subscriptionHandler.RenewVerify)
	meSub.Post("/cancel", subscriptionHandler.Cancel)
	meSub.Patch("/meal-type", subscriptionHandler.ChangeMealType)
	meSub.Patch("/addresses", subscriptionHandler.UpdateAddresses)

	mePauses := me.Group("/pauses")
	mePauses.Get("/", pauseHandler.List)
	mePauses.Post("/", pauseHandler.Create)
	mePauses.Post("/:id/cancel", pauseHandler.Cancel)

	meOrders := me.Group("/orders")
	meOrders.Get("/", orderHandler.List)
	meOrders.Post("/checkout", orderHandler.Checkout)
	meOrders.Post("/:id/verify", orderHandler.Verify)
	meOrders.Post("/:id/cancel", orderHandler.Cancel)

	// ===========================================
	// ADMIN API - /v1/admin/* (requires 'admin' role)
	// ===========================================
	admin := v1.Group("/admin")
	admin.Use(middleware.VerifyAccessToken(deps.Config.JWT.Secret))
	admin.Use(middleware.AuthorizeRole(domain.RoleAdmin))

	admin.Get("/dispatch", adminHandler.Dispatch)

	adminOrders := admin.Group("/orders")
	adminOrders.Get("/", adminHandler.ListOrders)
	adminOrders.Post("/:id/confirm", adminHandler.ConfirmOrder)
	adminOrders.Post("/:id/reject", adminHandler.RejectOrder)

	adminPlans := admin.Group("/plans")
	adminPlans.Post("/", planHandler.Create)
	adminPlans.Put("/:id", planHandler.Update)

	adminMenus := admin.Group("/menus")
	adminMenus.Get("/", adminHandler.ListMenus)
	adminMenus.Put("/", adminHandler.UpsertMenu)
	adminMenus.Post("/image", adminHandler.UploadMenuImage)

	admin.Post("/subscriptions/expire-lapsed", adminHandler.ExpireLapsed)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("Error: %v", err)
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

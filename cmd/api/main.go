package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"visa-processing/internal/config"
	"visa-processing/internal/handler"
	"visa-processing/internal/middleware"
	"visa-processing/internal/repository"
	"visa-processing/internal/service"
	"visa-processing/internal/service/document"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redis, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	minioClient, err := config.NewMinIOClient(cfg)
	if err != nil {
		log.Printf("Warning: Failed to connect to MinIO: %v (document upload will not work)", err)
	}

	store := repository.NewStore(db)
	services := service.NewServices(store, redis, minioClient, cfg)
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.NewErrorHandler(cfg),
		// Multipart envelope needs headroom above the per-file cap.
		BodyLimit: document.MaxFileSize + 1024*1024,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	setupRoutes(app, handlers, services)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, services *service.Services) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	public := v1.Group("/public")
	public.Get("/visa-types", h.Public.VisaTypes)
	public.Post("/cost-estimate", h.Public.CostEstimate)

	auth := v1.Group("/auth")
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.RefreshToken)
	auth.Post("/logout", h.Auth.Logout)

	protected := v1.Group("", middleware.AuthRequired(services.Auth))

	authed := protected.Group("/auth")
	authed.Get("/me", h.Auth.Me)
	authed.Put("/change-password", h.Auth.ChangePassword)

	users := protected.Group("/users")
	users.Get("/me", h.User.GetProfile)
	users.Put("/me", h.User.UpdateProfile)
	users.Get("/", middleware.RequireRole("admin"), h.User.List)
	users.Put("/:id/role", middleware.RequireRole("admin"), h.User.UpdateRole)
	users.Put("/:id/active", middleware.RequireRole("admin"), h.User.SetActive)
	users.Delete("/", middleware.RequireRole("admin"), h.User.BulkDelete)

	applications := protected.Group("/applications")
	applications.Post("/", h.Application.Create)
	applications.Get("/", h.Application.ListMine)
	applications.Get("/admin/all", middleware.RequireRole("officer"), h.Application.ListAll)
	applications.Get("/:id", h.Application.Get)
	applications.Put("/:id", h.Application.Update)
	applications.Put("/:id/submit", h.Application.Submit)
	applications.Put("/:id/cancel", h.Application.Cancel)

	documents := protected.Group("/documents")
	documents.Post("/", h.Document.Upload)
	documents.Get("/", h.Document.ListMine)
	documents.Get("/:id/url", h.Document.Get)
	documents.Delete("/:id", h.Document.Delete)

	biometrics := protected.Group("/biometrics")
	biometrics.Get("/my", h.Biometric.ListMine)
	biometrics.Post("/", middleware.RequireRole("officer"), h.Biometric.Schedule)
	biometrics.Get("/", middleware.RequireRole("officer"), h.Biometric.ListAll)
	biometrics.Get("/:id", h.Biometric.Get)
	biometrics.Put("/:id/status", middleware.RequireRole("officer"), h.Biometric.UpdateStatus)
	biometrics.Put("/:id/reschedule", middleware.RequireRole("officer"), h.Biometric.Reschedule)

	payments := protected.Group("/payments")
	payments.Post("/", h.Payment.Create)
	payments.Get("/my", h.Payment.ListMine)
	payments.Get("/:id", h.Payment.Get)
	payments.Put("/:id/status", middleware.RequireRole("officer"), h.Payment.UpdateStatus)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.GetUnreadCount)
	notifications.Patch("/:id/read", h.Notification.MarkAsRead)
	notifications.Post("/mark-all-read", h.Notification.MarkAllAsRead)
	notifications.Patch("/:id/archive", h.Notification.Archive)

	admin := protected.Group("/admin", middleware.RequireRole("officer"))
	admin.Put("/applications/:id/status", h.Application.SetStatus)
	admin.Put("/applications/:id/assign", h.Application.AssignOfficer)
	// Singular segment kept for client compatibility.
	admin.Post("/application/:id/send-cost-estimation", middleware.RequireRole("admin"), h.Application.SendCostEstimation)
	admin.Get("/applications/export", middleware.RequireRole("admin"), h.Application.Export)
	admin.Get("/documents", h.Document.ListByApplication)
	admin.Put("/documents/:id/status", h.Document.Review)
	admin.Get("/payments", h.Payment.ListAll)
	admin.Post("/notifications/broadcast", middleware.RequireRole("admin"), h.Notification.Broadcast)
	admin.Get("/dashboard", middleware.RequireRole("admin"), h.Dashboard.GetStats)
	admin.Get("/audit/recent", middleware.RequireRole("admin"), h.Audit.GetRecentActivities)
	admin.Get("/audit/:entityType/:entityId", middleware.RequireRole("admin"), h.Audit.ListByEntity)
}

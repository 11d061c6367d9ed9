package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"visa-processing/internal/domain"
	"visa-processing/internal/middleware"
	"visa-processing/internal/service"
	"visa-processing/internal/service/application"
)

type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Application  *ApplicationHandler
	Document     *DocumentHandler
	Biometric    *BiometricHandler
	Payment      *PaymentHandler
	Notification *NotificationHandler
	Dashboard    *DashboardHandler
	Audit        *AuditHandler
	Public       *PublicHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(services.Auth),
		User:         NewUserHandler(services.User),
		Application:  NewApplicationHandler(services.Application, services.Export),
		Document:     NewDocumentHandler(services.Document),
		Biometric:    NewBiometricHandler(services.Biometrics),
		Payment:      NewPaymentHandler(services.Payment),
		Notification: NewNotificationHandler(services.Notification),
		Dashboard:    NewDashboardHandler(services.Dashboard),
		Audit:        NewAuditHandler(services.Audit),
		Public:       NewPublicHandler(services.CostEstimate),
	}
}

// respond wraps data in the success envelope every endpoint returns.
func respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func respondMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

func respondValidation(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Validation failed",
		"errors":  fields,
	})
}

func parseIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.BadRequest("Invalid " + name + " parameter")
	}
	return id, nil
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.DefaultPagination()

	if page := c.QueryInt("page", 1); page > 0 {
		params.Page = page
	}
	if pageSize := c.QueryInt("page_size", 20); pageSize > 0 {
		params.PageSize = pageSize
	}

	params.Validate()
	return params
}

func requestMeta(c *fiber.Ctx) *application.RequestMeta {
	return &application.RequestMeta{
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
	}
}

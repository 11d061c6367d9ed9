package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"

	"visa-processing/internal/config"
	"visa-processing/internal/service/application"
	"visa-processing/internal/service/auth"
	"visa-processing/internal/service/biometrics"
	"visa-processing/internal/service/costestimate"
	"visa-processing/internal/service/document"
	"visa-processing/internal/service/export"
	"visa-processing/internal/service/notification"
	"visa-processing/internal/service/payment"
	"visa-processing/internal/service/user"
	"visa-processing/internal/workflow"
)

type ErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// errorStatus maps domain sentinels onto HTTP statuses. Handlers return
// service errors untranslated; this table is the only place a sentinel
// becomes a status code.
var errorStatus = []struct {
	target error
	code   int
}{
	{auth.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{auth.ErrInvalidToken, fiber.StatusUnauthorized},
	{auth.ErrAccountDisabled, fiber.StatusForbidden},
	{workflow.ErrNotAllowed, fiber.StatusForbidden},
	{application.ErrNotOwner, fiber.StatusForbidden},
	{notification.ErrNotRecipient, fiber.StatusForbidden},
	{auth.ErrUserNotFound, fiber.StatusNotFound},
	{user.ErrUserNotFound, fiber.StatusNotFound},
	{application.ErrApplicationNotFound, fiber.StatusNotFound},
	{application.ErrOfficerNotFound, fiber.StatusNotFound},
	{biometrics.ErrAppointmentNotFound, fiber.StatusNotFound},
	{payment.ErrPaymentNotFound, fiber.StatusNotFound},
	{document.ErrDocumentNotFound, fiber.StatusNotFound},
	{notification.ErrNotificationNotFound, fiber.StatusNotFound},
	{application.ErrConcurrentUpdate, fiber.StatusConflict},
	{workflow.ErrBadState, fiber.StatusBadRequest},
	{workflow.ErrUnknownStatus, fiber.StatusBadRequest},
	{workflow.ErrUnknownAction, fiber.StatusBadRequest},
	{application.ErrInvalidVisaType, fiber.StatusBadRequest},
	{application.ErrInvalidStatus, fiber.StatusBadRequest},
	{application.ErrNotAnOfficer, fiber.StatusBadRequest},
	{costestimate.ErrInvalidVisaType, fiber.StatusBadRequest},
	{export.ErrInvalidStatus, fiber.StatusBadRequest},
	{auth.ErrEmailExists, fiber.StatusBadRequest},
	{auth.ErrWrongPassword, fiber.StatusBadRequest},
	{user.ErrCannotModifySelf, fiber.StatusBadRequest},
	{user.ErrInvalidRole, fiber.StatusBadRequest},
	{payment.ErrPaymentExists, fiber.StatusBadRequest},
	{payment.ErrInvalidPayment, fiber.StatusBadRequest},
	{payment.ErrInvalidAmount, fiber.StatusBadRequest},
	{biometrics.ErrAppointmentExists, fiber.StatusBadRequest},
	{biometrics.ErrInvalidAppointment, fiber.StatusBadRequest},
	{biometrics.ErrAppointmentClosed, fiber.StatusBadRequest},
	{document.ErrFileTooLarge, fiber.StatusBadRequest},
	{document.ErrInvalidDocType, fiber.StatusBadRequest},
	{document.ErrStorageDisabled, fiber.StatusServiceUnavailable},
}

func NewErrorHandler(cfg *config.Config) fiber.ErrorHandler {
	development := cfg.Environment == "development"

	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Success: false,
				Message: fiberErr.Message,
			})
		}

		for _, entry := range errorStatus {
			if errors.Is(err, entry.target) {
				return c.Status(entry.code).JSON(ErrorResponse{
					Success: false,
					Message: err.Error(),
				})
			}
		}

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			// Uniqueness the caller controls (transaction ids, emails) is
			// their mistake; anything else is ours.
			if strings.Contains(pqErr.Constraint, "transaction_id") || strings.Contains(pqErr.Constraint, "email") {
				return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
					Success: false,
					Message: "A record with this value already exists",
				})
			}
		}

		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)

		message := "Internal server error"
		if development {
			message = err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Success: false,
			Message: message,
		})
	}
}

func NewError(code int, message string) *fiber.Error {
	return fiber.NewError(code, message)
}

func BadRequest(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusUnauthorized, message)
}

func Forbidden(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusForbidden, message)
}

func NotFound(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusNotFound, message)
}

func Conflict(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusConflict, message)
}

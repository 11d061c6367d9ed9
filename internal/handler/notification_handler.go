package handler

import (
	"github.com/gofiber/fiber/v2"

	"visa-processing/internal/domain"
	"visa-processing/internal/middleware"
	"visa-processing/internal/pkg/validate"
	"visa-processing/internal/service/notification"
)

type NotificationHandler struct {
	notifService notification.Service
}

func NewNotificationHandler(notifService notification.Service) *NotificationHandler {
	return &NotificationHandler{notifService: notifService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	params := getPaginationParams(c)
	unreadOnly := c.Query("unread_only") == "true"

	result, err := h.notifService.List(c.Context(), middleware.GetCurrentUserID(c), unreadOnly, params)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, result)
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	count, err := h.notifService.GetUnreadCount(c.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{"count": count})
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.notifService.MarkAsRead(c.Context(), middleware.GetCurrentUserID(c), id); err != nil {
		return err
	}

	return respondMessage(c, fiber.StatusOK, "Notification marked as read")
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	if err := h.notifService.MarkAllAsRead(c.Context(), middleware.GetCurrentUserID(c)); err != nil {
		return err
	}

	return respondMessage(c, fiber.StatusOK, "All notifications marked as read")
}

func (h *NotificationHandler) Archive(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.notifService.Archive(c.Context(), middleware.GetCurrentUserID(c), id); err != nil {
		return err
	}

	return respondMessage(c, fiber.StatusOK, "Notification archived")
}

func (h *NotificationHandler) Broadcast(c *fiber.Ctx) error {
	var input domain.BroadcastInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}

	created, err := h.notifService.Broadcast(c.Context(), input)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, fiber.Map{"created": created})
}

package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"visa-processing/internal/middleware"
	"visa-processing/internal/service/audit"
)

type AuditHandler struct {
	auditService audit.Service
}

func NewAuditHandler(auditService audit.Service) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) GetRecentActivities(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	logs, err := h.auditService.GetRecentActivities(c.Context(), limit)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, logs)
}

func (h *AuditHandler) ListByEntity(c *fiber.Ctx) error {
	// Audit rows store entity types uppercase; accept either case in the path.
	entityType := strings.ToUpper(c.Params("entityType"))
	if entityType == "" {
		return middleware.BadRequest("Missing entityType parameter")
	}
	entityID, err := parseIDParam(c, "entityId")
	if err != nil {
		return err
	}
	params := getPaginationParams(c)

	logs, total, err := h.auditService.ListByEntity(c.Context(), entityType, entityID, params)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{
		"logs":  logs,
		"total": total,
	})
}

package handler

import (
	"github.com/gofiber/fiber/v2"

	"visa-processing/internal/middleware"
	"visa-processing/internal/pkg/validate"
	"visa-processing/internal/service/costestimate"
)

// PublicHandler serves the unauthenticated endpoints: the visa type catalog
// and the cost estimator prospective applicants use before registering.
type PublicHandler struct {
	costService costestimate.Service
}

func NewPublicHandler(costService costestimate.Service) *PublicHandler {
	return &PublicHandler{costService: costService}
}

func (h *PublicHandler) VisaTypes(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, h.costService.VisaTypes())
}

func (h *PublicHandler) CostEstimate(c *fiber.Ctx) error {
	var input costestimate.EstimateInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}

	estimate, err := h.costService.Estimate(input)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, estimate)
}

package handler

import (
	"github.com/gofiber/fiber/v2"

	"visa-processing/internal/domain"
	"visa-processing/internal/middleware"
	"visa-processing/internal/pkg/validate"
	"visa-processing/internal/service/payment"
)

type PaymentHandler struct {
	paymentService payment.Service
}

func NewPaymentHandler(paymentService payment.Service) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	var input domain.CreatePaymentInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}

	pay, err := h.paymentService.Create(c.Context(), middleware.CurrentActor(c), input)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, pay)
}

func (h *PaymentHandler) ListMine(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	result, err := h.paymentService.ListByUser(c.Context(), middleware.GetCurrentUserID(c), params)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, result)
}

func (h *PaymentHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	pay, err := h.paymentService.GetByID(c.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, pay)
}

func (h *PaymentHandler) ListAll(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	result, err := h.paymentService.ListAll(c.Context(), c.Query("status"), params)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, result)
}

func (h *PaymentHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var input domain.UpdatePaymentStatusInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}

	pay, err := h.paymentService.UpdateStatus(c.Context(), middleware.CurrentActor(c), id, input, requestMeta(c))
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, pay)
}

package handler

import (
	"github.com/gofiber/fiber/v2"

	"visa-processing/internal/domain"
	"visa-processing/internal/middleware"
	"visa-processing/internal/pkg/validate"
	"visa-processing/internal/service/biometrics"
)

type BiometricHandler struct {
	biometricService biometrics.Service
}

func NewBiometricHandler(biometricService biometrics.Service) *BiometricHandler {
	return &BiometricHandler{biometricService: biometricService}
}

func (h *BiometricHandler) Schedule(c *fiber.Ctx) error {
	var input domain.ScheduleBiometricsInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}

	appointment, err := h.biometricService.Schedule(c.Context(), middleware.CurrentActor(c), input, requestMeta(c))
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, appointment)
}

func (h *BiometricHandler) ListMine(c *fiber.Ctx) error {
	appointments, err := h.biometricService.ListByUser(c.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, appointments)
}

func (h *BiometricHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	appointment, err := h.biometricService.GetByID(c.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, appointment)
}

func (h *BiometricHandler) ListAll(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	result, err := h.biometricService.ListAll(c.Context(), c.Query("status"), params)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, result)
}

func (h *BiometricHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var input domain.UpdateAppointmentStatusInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}

	appointment, err := h.biometricService.UpdateStatus(c.Context(), middleware.CurrentActor(c), id, input, requestMeta(c))
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, appointment)
}

func (h *BiometricHandler) Reschedule(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var input domain.RescheduleAppointmentInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}

	appointment, err := h.biometricService.Reschedule(c.Context(), middleware.CurrentActor(c), id, input, requestMeta(c))
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, appointment)
}

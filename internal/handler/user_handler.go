package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"visa-processing/internal/domain"
	"visa-processing/internal/middleware"
	"visa-processing/internal/pkg/validate"
	"visa-processing/internal/service/user"
)

type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.userService.GetProfile(c.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var input domain.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}

	profile, err := h.userService.UpdateProfile(c.Context(), middleware.GetCurrentUserID(c), input)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, profile)
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	search := c.Query("search")
	role := c.Query("role")
	params := getPaginationParams(c)

	users, total, err := h.userService.List(c.Context(), middleware.CurrentActor(c), search, role, params)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, domain.NewPaginatedResponse(users, params.Page, params.PageSize, total))
}

func (h *UserHandler) UpdateRole(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var input domain.AdminUpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}
	if input.Role == nil {
		return middleware.BadRequest("role is required")
	}

	updated, err := h.userService.UpdateRole(c.Context(), middleware.CurrentActor(c), id, *input.Role, requestMeta(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, updated)
}

func (h *UserHandler) SetActive(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var input domain.AdminUpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if input.IsActive == nil {
		return middleware.BadRequest("is_active is required")
	}

	updated, err := h.userService.SetActive(c.Context(), middleware.CurrentActor(c), id, *input.IsActive, requestMeta(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, updated)
}

func (h *UserHandler) BulkDelete(c *fiber.Ctx) error {
	var input struct {
		UserIDs []uuid.UUID `json:"user_ids" validate:"required,min=1"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}

	deleted, err := h.userService.BulkDelete(c.Context(), middleware.CurrentActor(c), input.UserIDs, requestMeta(c))
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{"deleted": deleted})
}

package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"visa-processing/internal/domain"
	"visa-processing/internal/middleware"
	"visa-processing/internal/pkg/validate"
	"visa-processing/internal/service/auth"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input domain.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}

	user, tokens, err := h.authService.Register(c.Context(), input, c.Get("User-Agent"), c.IP())
	if err != nil {
		return err
	}

	h.setAccessCookie(c, tokens)

	return respond(c, fiber.StatusCreated, fiber.Map{
		"user":          user,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_in":    tokens.ExpiresIn,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input domain.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}

	user, tokens, err := h.authService.Login(c.Context(), input, c.Get("User-Agent"), c.IP())
	if err != nil {
		return err
	}

	h.setAccessCookie(c, tokens)

	return respond(c, fiber.StatusOK, fiber.Map{
		"user":          user,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_in":    tokens.ExpiresIn,
	})
}

func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}

	tokens, err := h.authService.RefreshToken(c.Context(), input.RefreshToken, c.Get("User-Agent"), c.IP())
	if err != nil {
		return err
	}

	h.setAccessCookie(c, tokens)

	return respond(c, fiber.StatusOK, fiber.Map{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_in":    tokens.ExpiresIn,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	// Body is optional; logging out with no refresh token just clears the cookie.
	_ = c.BodyParser(&input)

	if err := h.authService.Logout(c.Context(), input.RefreshToken); err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return respondMessage(c, fiber.StatusOK, "Logged out")
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}
	return respond(c, fiber.StatusOK, user)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var input domain.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if fields := validate.Struct(input); fields != nil {
		return respondValidation(c, fields)
	}

	if err := h.authService.ChangePassword(c.Context(), middleware.GetCurrentUserID(c), input); err != nil {
		return err
	}

	return respondMessage(c, fiber.StatusOK, "Password changed. Please log in again.")
}

func (h *AuthHandler) setAccessCookie(c *fiber.Ctx, tokens *domain.TokenPair) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    tokens.AccessToken,
		Expires:  time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second),
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

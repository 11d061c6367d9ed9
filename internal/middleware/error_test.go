package middleware_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visa-processing/internal/config"
	"visa-processing/internal/middleware"
	"visa-processing/internal/service/application"
	"visa-processing/internal/service/document"
	"visa-processing/internal/workflow"
)

func newApp(env string, handler fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.NewErrorHandler(&config.Config{Environment: env}),
	})
	app.Get("/boom", handler)
	return app
}

func doRequest(t *testing.T, app *fiber.App) (int, middleware.ErrorResponse) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestErrorHandler(t *testing.T) {
	t.Run("authorization failures become 403", func(t *testing.T) {
		app := newApp("production", func(c *fiber.Ctx) error {
			return workflow.ErrNotAllowed
		})

		status, body := doRequest(t, app)
		assert.Equal(t, fiber.StatusForbidden, status)
		assert.False(t, body.Success)
		assert.Equal(t, workflow.ErrNotAllowed.Error(), body.Message)
	})

	t.Run("wrapped sentinels still match", func(t *testing.T) {
		app := newApp("production", func(c *fiber.Ctx) error {
			return fmt.Errorf("loading application: %w", application.ErrApplicationNotFound)
		})

		status, body := doRequest(t, app)
		assert.Equal(t, fiber.StatusNotFound, status)
		assert.Contains(t, body.Message, "application not found")
	})

	t.Run("lost write race becomes 409", func(t *testing.T) {
		app := newApp("production", func(c *fiber.Ctx) error {
			return application.ErrConcurrentUpdate
		})

		status, _ := doRequest(t, app)
		assert.Equal(t, fiber.StatusConflict, status)
	})

	t.Run("workflow precondition becomes 400", func(t *testing.T) {
		app := newApp("production", func(c *fiber.Ctx) error {
			return fmt.Errorf("%w: only draft applications can be submitted", workflow.ErrBadState)
		})

		status, body := doRequest(t, app)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Contains(t, body.Message, "draft")
	})

	t.Run("missing storage becomes 503", func(t *testing.T) {
		app := newApp("production", func(c *fiber.Ctx) error {
			return document.ErrStorageDisabled
		})

		status, _ := doRequest(t, app)
		assert.Equal(t, fiber.StatusServiceUnavailable, status)
	})

	t.Run("fiber errors keep their code and message", func(t *testing.T) {
		app := newApp("production", func(c *fiber.Ctx) error {
			return middleware.BadRequest("File is required")
		})

		status, body := doRequest(t, app)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "File is required", body.Message)
	})

	t.Run("unknown errors are hidden in production", func(t *testing.T) {
		app := newApp("production", func(c *fiber.Ctx) error {
			return errors.New("pq: deadlock detected")
		})

		status, body := doRequest(t, app)
		assert.Equal(t, fiber.StatusInternalServerError, status)
		assert.Equal(t, "Internal server error", body.Message)
	})

	t.Run("unknown errors are shown in development", func(t *testing.T) {
		app := newApp("development", func(c *fiber.Ctx) error {
			return errors.New("pq: deadlock detected")
		})

		status, body := doRequest(t, app)
		assert.Equal(t, fiber.StatusInternalServerError, status)
		assert.Equal(t, "pq: deadlock detected", body.Message)
	})
}

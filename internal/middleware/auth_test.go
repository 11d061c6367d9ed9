package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"visa-processing/internal/config"
	"visa-processing/internal/domain"
	"visa-processing/internal/middleware"
	"visa-processing/internal/mocks"
	"visa-processing/internal/service/auth"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, user *domain.User, secret string) string {
	t.Helper()

	claims := &auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Subject:   user.ID.String(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func protectedApp(users ...*domain.User) *fiber.App {
	userRepo := new(mocks.UserRepository)
	for _, u := range users {
		userRepo.On("GetByID", mock.Anything, u.ID).Return(u, nil)
	}
	authSvc := auth.NewService(userRepo, new(mocks.SessionRepository), new(mocks.NotificationRepository), new(mocks.EmailService), &config.Config{JWTSecret: testSecret})

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.NewErrorHandler(&config.Config{Environment: "production"}),
	})
	protected := app.Group("/", middleware.AuthRequired(authSvc))
	protected.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"role": middleware.CurrentActor(c).Role})
	})
	protected.Get("/staff", middleware.RequireRole("officer"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	protected.Get("/admin-only", middleware.RequireRole("admin"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func get(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAuthRequired(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Email: "u@example.com", Role: "user", IsActive: true}
	app := protectedApp(user)

	t.Run("missing credentials", func(t *testing.T) {
		resp := get(t, app, "/whoami", "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Token abc")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("tampered token", func(t *testing.T) {
		resp := get(t, app, "/whoami", signedToken(t, user, "wrong-secret"))
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid bearer token", func(t *testing.T) {
		resp := get(t, app, "/whoami", signedToken(t, user, testSecret))
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("cookie fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: middleware.AccessTokenCookie, Value: signedToken(t, user, testSecret)})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("deactivated after token was issued", func(t *testing.T) {
		disabled := &domain.User{ID: uuid.New(), Email: "gone@example.com", Role: "user", IsActive: false}
		resp := get(t, protectedApp(disabled), "/whoami", signedToken(t, disabled, testSecret))
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestRequireRole(t *testing.T) {
	applicant := &domain.User{ID: uuid.New(), Email: "a@example.com", Role: "user", IsActive: true}
	officer := &domain.User{ID: uuid.New(), Email: "o@example.com", Role: "officer", IsActive: true}
	admin := &domain.User{ID: uuid.New(), Email: "root@example.com", Role: "admin", IsActive: true}
	app := protectedApp(applicant, officer, admin)

	t.Run("applicant cannot reach staff routes", func(t *testing.T) {
		resp := get(t, app, "/staff", signedToken(t, applicant, testSecret))
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("officer reaches staff routes", func(t *testing.T) {
		resp := get(t, app, "/staff", signedToken(t, officer, testSecret))
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	// The role ladder: admin satisfies an officer requirement, never the
	// other way around.
	t.Run("admin reaches staff routes", func(t *testing.T) {
		resp := get(t, app, "/staff", signedToken(t, admin, testSecret))
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("officer cannot reach admin routes", func(t *testing.T) {
		resp := get(t, app, "/admin-only", signedToken(t, officer, testSecret))
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin reaches admin routes", func(t *testing.T) {
		resp := get(t, app, "/admin-only", signedToken(t, admin, testSecret))
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

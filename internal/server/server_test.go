package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"homestead/internal/config"
	"homestead/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Account{}, &models.RealtorProfile{}, &models.Listing{}))

	cfg := &config.Config{
		JWTSecret: "test-secret-test-secret-test-secret!",
		Env:       "test",
	}
	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return srv, app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func registerUser(t *testing.T, app *fiber.App, email string) {
	t.Helper()
	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/users/register", "", fiber.Map{
		"name": "Test User", "email": email,
		"password": "hunter2hunter2", "confirm_password": "hunter2hunter2",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func registerRealtor(t *testing.T, app *fiber.App, email string) {
	t.Helper()
	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/users/register/realtor", "", fiber.Map{
		"name": "Test Realtor", "email": email, "password": "hunter2hunter2",
		"phone": "07700900000", "company_name": "Test Homes",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func obtainTokens(t *testing.T, app *fiber.App, email string) (access, refresh string) {
	t.Helper()
	resp, body := doJSON(t, app, fiber.MethodPost, "/api/token/", "", fiber.Map{
		"email": email, "password": "hunter2hunter2",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	access, _ = body["access"].(string)
	refresh, _ = body["refresh"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	return access, refresh
}

func TestAuthRequired(t *testing.T) {
	_, app := setupTestServer(t)
	registerUser(t, app, "jane@example.com")

	t.Run("missing token", func(t *testing.T) {
		resp, body := doJSON(t, app, fiber.MethodGet, "/api/users/me", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Authorization required", body["error"])
	})

	t.Run("garbage token", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodGet, "/api/users/me", "not-a-jwt", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid access token", func(t *testing.T) {
		access, _ := obtainTokens(t, app, "jane@example.com")
		resp, body := doJSON(t, app, fiber.MethodGet, "/api/users/me", access, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "jane@example.com", user["email"])
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		_, refresh := obtainTokens(t, app, "jane@example.com")
		resp, body := doJSON(t, app, fiber.MethodGet, "/api/users/me", refresh, nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Access token required", body["error"])
	})
}

func TestRoleRequired(t *testing.T) {
	_, app := setupTestServer(t)
	registerUser(t, app, "jane@example.com")
	access, _ := obtainTokens(t, app, "jane@example.com")

	resp, _ := doJSON(t, app, fiber.MethodGet, "/api/listings/manage/", access, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestTokenEndpoints(t *testing.T) {
	_, app := setupTestServer(t)
	registerUser(t, app, "jane@example.com")

	t.Run("wrong password", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodPost, "/api/token/", "", fiber.Map{
			"email": "jane@example.com", "password": "wrong",
		})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("refresh yields a usable access token", func(t *testing.T) {
		_, refresh := obtainTokens(t, app, "jane@example.com")
		resp, body := doJSON(t, app, fiber.MethodPost, "/api/token/refresh", "", fiber.Map{
			"refresh": refresh,
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		access, _ := body["access"].(string)
		require.NotEmpty(t, access)

		resp, _ = doJSON(t, app, fiber.MethodGet, "/api/users/me", access, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("access token cannot refresh", func(t *testing.T) {
		access, _ := obtainTokens(t, app, "jane@example.com")
		resp, _ := doJSON(t, app, fiber.MethodPost, "/api/token/refresh", "", fiber.Map{
			"refresh": access,
		})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("verify", func(t *testing.T) {
		access, _ := obtainTokens(t, app, "jane@example.com")

		resp, _ := doJSON(t, app, fiber.MethodPost, "/api/token/verify", "", fiber.Map{"token": access})
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp, _ = doJSON(t, app, fiber.MethodPost, "/api/token/verify", "", fiber.Map{"token": "bogus"})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestHealthEndpoints(t *testing.T) {
	_, app := setupTestServer(t)

	resp, body := doJSON(t, app, fiber.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "up", body["status"])

	resp, body = doJSON(t, app, fiber.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"agriloop-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthApp(t *testing.T) (*fiber.App, *Service) {
	svc := setupAuthTest(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	h := &Handlers{Service: svc, Rdb: rdb, Config: middleware.SessionConfig{}}

	app := fiber.New()
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)
	app.Get("/me", h.Me)
	app.Delete("/logout", h.Logout)
	return app, svc
}

func authPost(t *testing.T, app *fiber.App, path string, payload map[string]interface{}) (map[string]interface{}, int) {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return result, resp.StatusCode
}

func TestRegisterHandler_CreatesUserAndSession(t *testing.T) {
	app, _ := setupAuthApp(t)

	body, _ := json.Marshal(map[string]interface{}{
		"fullname": "Harpreet Singh",
		"email":    "harpreet@example.com",
		"phone":    "+919876543210",
		"location": "Sangrur, Punjab",
		"password": "Secret1!pass",
		"role":     "FARMER",
	})
	req := httptest.NewRequest("POST", "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	// Session cookie set
	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName && c.Value != "" {
			found = true
		}
	}
	assert.True(t, found)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, "success", result["status"])
	data, _ := result["data"].(map[string]interface{})
	user, _ := data["user"].(map[string]interface{})
	assert.Equal(t, "FARMER", user["role"])
	assert.Equal(t, 1250.0, user["carbon_points"])
	assert.Equal(t, 45000.0, user["wallet_balance"])
}

func TestRegisterHandler_InvalidRole(t *testing.T) {
	app, _ := setupAuthApp(t)

	result, status := authPost(t, app, "/register", map[string]interface{}{
		"fullname": "Harpreet Singh",
		"email":    "harpreet@example.com",
		"password": "Secret1!pass",
		"role":     "ADMIN",
	})
	assert.Equal(t, 400, status)
	assert.Equal(t, "error", result["status"])
}

func TestLoginHandler(t *testing.T) {
	app, svc := setupAuthApp(t)
	_, err := svc.RegisterUser(context.Background(), validRegister("BUYER"))
	require.NoError(t, err)

	result, status := authPost(t, app, "/login", map[string]interface{}{
		"email": "harpreet@example.com", "password": "Secret1!pass",
	})
	assert.Equal(t, 200, status)
	assert.Equal(t, "success", result["status"])

	_, status = authPost(t, app, "/login", map[string]interface{}{
		"email": "harpreet@example.com", "password": "wrong",
	})
	assert.Equal(t, 401, status)

	_, status = authPost(t, app, "/login", map[string]interface{}{})
	assert.Equal(t, 400, status)
}

func TestMeHandler_Unauthenticated(t *testing.T) {
	app, _ := setupAuthApp(t)
	req := httptest.NewRequest("GET", "/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestLogoutHandler_ClearsCookie(t *testing.T) {
	app, _ := setupAuthApp(t)
	req := httptest.NewRequest("DELETE", "/logout", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			assert.Empty(t, c.Value)
		}
	}
}

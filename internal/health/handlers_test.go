package health

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthJSON(t *testing.T) {
	rdb := newTestRedis(t)
	h := &Handlers{Rdb: rdb, DB: okPinger{}}

	app := fiber.New()
	app.Get("/health/json", h.JSON)

	req := httptest.NewRequest("GET", "/health/json", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, "agriloop-api", result["service"])
	assert.Equal(t, "ok", result["status"])
}

func TestHealthReset_RequiresAdminKey(t *testing.T) {
	rdb := newTestRedis(t)
	h := &Handlers{Rdb: rdb, HealthAdminKey: "secret"}

	app := fiber.New()
	app.Get("/health/reset", h.Reset)

	req := httptest.NewRequest("GET", "/health/reset", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)

	req = httptest.NewRequest("GET", "/health/reset?key=wrong", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)

	req = httptest.NewRequest("GET", "/health/reset?key=secret", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestHealthReset_NoKeyConfigured(t *testing.T) {
	rdb := newTestRedis(t)
	h := &Handlers{Rdb: rdb}

	app := fiber.New()
	app.Get("/health/reset", h.Reset)

	req := httptest.NewRequest("GET", "/health/reset?key=anything", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

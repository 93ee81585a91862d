package middleware

import (
	"net/http/httptest"
	"testing"

	"agriloop-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appWithUser(role string, handlers ...fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if role != "" {
			c.Locals("user", map[string]interface{}{
				"user_id":  "u1",
				"fullname": "Harpreet Singh",
				"role":     role,
			})
		}
		return c.Next()
	})
	route := append(handlers, func(c *fiber.Ctx) error {
		return c.SendStatus(200)
	})
	app.Get("/t", route...)
	return app
}

func get(t *testing.T, app *fiber.App) int {
	req := httptest.NewRequest("GET", "/t", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireAuth(t *testing.T) {
	assert.Equal(t, 401, get(t, appWithUser("", RequireAuth())))
	assert.Equal(t, 200, get(t, appWithUser("FARMER", RequireAuth())))
}

func TestAuthorizePermission_RoleGating(t *testing.T) {
	// Farmers create listings, buyers do not
	assert.Equal(t, 200, get(t, appWithUser("FARMER", AuthorizePermission(constants.CreateListing))))
	assert.Equal(t, 200, get(t, appWithUser("HOUSEHOLD", AuthorizePermission(constants.CreateListing))))
	assert.Equal(t, 403, get(t, appWithUser("BUYER", AuthorizePermission(constants.CreateListing))))

	// Only the buying side bids
	assert.Equal(t, 200, get(t, appWithUser("BUYER", AuthorizePermission(constants.PlaceBid))))
	assert.Equal(t, 200, get(t, appWithUser("BIOGAS", AuthorizePermission(constants.PlaceBid))))
	assert.Equal(t, 403, get(t, appWithUser("FARMER", AuthorizePermission(constants.PlaceBid))))

	// Learners only analyze
	assert.Equal(t, 200, get(t, appWithUser("LEARNER", AuthorizePermission(constants.AnalyzeWaste))))
	assert.Equal(t, 403, get(t, appWithUser("LEARNER", AuthorizePermission(constants.ViewOpenListings))))
}

func TestAuthorizePermission_NoUser(t *testing.T) {
	assert.Equal(t, 401, get(t, appWithUser("", AuthorizePermission(constants.CreateListing))))
}

func TestAuthorizePermission_UnknownPermission(t *testing.T) {
	assert.Equal(t, 500, get(t, appWithUser("FARMER", AuthorizePermission("not_configured"))))
}

func TestGetUserHelpers(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{"fullname": "Meera", "role": "HOUSEHOLD"})
		return c.Next()
	})
	app.Get("/t", func(c *fiber.Ctx) error {
		assert.Equal(t, "Meera", GetUserName(c))
		assert.Equal(t, "HOUSEHOLD", GetUserRole(c))
		return c.SendStatus(200)
	})
	assert.Equal(t, 200, get(t, app))
}

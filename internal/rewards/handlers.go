package rewards

import (
	"agriloop-backend/internal/middleware"
	"agriloop-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// GET /api/v1/rewards/get-balance
func (h *Handlers) GetBalance(c *fiber.Ctx) error {
	m, ok := middleware.GetUser(c).(map[string]interface{})
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	idStr, _ := m["user_id"].(string)
	userID, err := uuid.Parse(idStr)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	balance, err := h.Service.GetBalance(c.Context(), userID)
	if err != nil {
		if err == ErrUserNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Balance fetched successfully", balance, nil)
}

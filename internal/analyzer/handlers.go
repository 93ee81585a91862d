package analyzer

import (
	"agriloop-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Client Client
}

type analyzeRequest struct {
	Image string `json:"image"` // base64, with or without data-URL prefix
}

// POST /api/v1/analyzer/analyze-waste
// Always resolves to a usable analysis: on analyzer failure the fallback
// record is returned with 200, never an error, so a scan can always proceed
// to a listing.
func (h *Handlers) AnalyzeWaste(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil || req.Image == "" {
		return response.Error(c, "image is required", 400, nil)
	}

	analysis, err := h.Client.AnalyzeWaste(c.Context(), req.Image)
	if err != nil {
		log.Error().Err(err).Msg("Waste analysis failed, using fallback")
	}
	out := Normalize(analysis)
	return response.Success(c, "Waste analyzed successfully", out, nil)
}

package events

import (
	"agriloop-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Bus *Bus
}

// GET /api/v1/ledger-events/get-listing-events/:listing_id
func (h *Handlers) GetListingEvents(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listing_id"))
	if err != nil {
		return response.Error(c, "Invalid listing_id format", 400, nil)
	}
	recs, err := h.Bus.EventsForListing(c.Context(), listingID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Listing events fetched successfully", fiber.Map{"events": recs}, nil)
}

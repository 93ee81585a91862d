package ledger

import (
	"errors"

	"agriloop-backend/internal/analyzer"
	"agriloop-backend/internal/domain"
	"agriloop-backend/internal/middleware"
	"agriloop-backend/internal/pkg/constants"
	"agriloop-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Reliability score applied when the reputation source supplies none.
const defaultReliabilityScore = 4.5

// Handlers exposes the ledger over HTTP. Each mutating route goes through
// the capability view for the caller's role; reads that every marketplace
// role shares go through the full service.
type Handlers struct {
	Owner     OwnerLedger
	Buyer     BuyerLedger
	Collector CollectorLedger
	Service   *Service
}

type createListingRequest struct {
	ImageURL      string                `json:"image_url"`
	Analysis      *domain.WasteAnalysis `json:"analysis"`
	Quantity      float64               `json:"quantity"`
	Location      string                `json:"location"`
	Degradability string                `json:"degradability"`
}

// POST /api/v1/listings/create-listing
func (h *Handlers) CreateListing(c *fiber.Ctx) error {
	var req createListingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	// Category follows the account role: farmers list crop residue,
	// households list household waste.
	category := domain.CategoryFarmCrop
	if middleware.GetUserRole(c) == constants.Household {
		category = domain.CategoryHouseholdWaste
	}

	listing, err := h.Owner.CreateListing(c.Context(), CreateListingInput{
		OwnerName:     middleware.GetUserName(c),
		ImageURL:      req.ImageURL,
		Analysis:      analyzer.Normalize(req.Analysis),
		Quantity:      req.Quantity,
		Location:      req.Location,
		WasteCategory: category,
		Degradability: req.Degradability,
	})
	if err != nil {
		return respondLedgerError(c, err)
	}
	return response.SuccessCreated(c, "Listing created successfully", listing, nil)
}

// GET /api/v1/listings/get-my-listings
func (h *Handlers) GetMyListings(c *fiber.Ctx) error {
	listings, err := h.Owner.ListingsByOwner(c.Context(), middleware.GetUserName(c))
	if err != nil {
		return respondLedgerError(c, err)
	}
	return response.Success(c, "Listings fetched successfully", listings, nil)
}

// GET /api/v1/listings/get-open-listings
// Buyers see open farm-crop listings, collectors open household-waste
// listings; owners browsing get all open listings (optional ?category=).
func (h *Handlers) GetOpenListings(c *fiber.Ctx) error {
	var listings []domain.Listing
	var err error
	switch middleware.GetUserRole(c) {
	case constants.Buyer:
		listings, err = h.Buyer.OpenListings(c.Context())
	case constants.Biogas:
		listings, err = h.Collector.OpenListings(c.Context())
	default:
		listings, err = h.Service.OpenListings(c.Context(), c.Query("category"))
	}
	if err != nil {
		return respondLedgerError(c, err)
	}
	return response.Success(c, "Open listings fetched successfully", listings, nil)
}

// GET /api/v1/listings/get-listing/:listing_id
func (h *Handlers) GetListingByID(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listing_id"))
	if err != nil {
		return response.Error(c, "Invalid listing_id format", 400, nil)
	}
	listing, err := h.Service.GetListing(c.Context(), listingID)
	if err != nil {
		return respondLedgerError(c, err)
	}
	return response.Success(c, "Listing fetched successfully", listing, nil)
}

type placeBidRequest struct {
	ListingID        string  `json:"listing_id"`
	Amount           float64 `json:"amount"`
	PickupTime       string  `json:"pickup_time"`
	ReliabilityScore float64 `json:"buyer_reliability_score"`
}

// POST /api/v1/listings/place-bid
func (h *Handlers) PlaceBid(c *fiber.Ctx) error {
	var req placeBidRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return response.Error(c, "Invalid listing_id format", 400, nil)
	}
	score := req.ReliabilityScore
	if score == 0 {
		score = defaultReliabilityScore
	}

	in := PlaceBidInput{
		ListingID:        listingID,
		BuyerName:        middleware.GetUserName(c),
		Amount:           req.Amount,
		PickupTime:       req.PickupTime,
		ReliabilityScore: score,
	}
	var bid *domain.Bid
	if middleware.GetUserRole(c) == constants.Biogas {
		bid, err = h.Collector.PlaceBid(c.Context(), in)
	} else {
		bid, err = h.Buyer.PlaceBid(c.Context(), in)
	}
	if err != nil {
		return respondLedgerError(c, err)
	}
	return response.SuccessCreated(c, "Bid placed successfully", bid, nil)
}

// GET /api/v1/listings/get-my-bids
func (h *Handlers) GetMyBids(c *fiber.Ctx) error {
	buyer := middleware.GetUserName(c)
	var listings []domain.Listing
	var err error
	if middleware.GetUserRole(c) == constants.Biogas {
		listings, err = h.Collector.ListingsBidOnBy(c.Context(), buyer)
	} else {
		listings, err = h.Buyer.ListingsBidOnBy(c.Context(), buyer)
	}
	if err != nil {
		return respondLedgerError(c, err)
	}
	return response.Success(c, "Bid activity fetched successfully", listings, nil)
}

type acceptBidRequest struct {
	ListingID string `json:"listing_id"`
	BidID     string `json:"bid_id"`
}

// POST /api/v1/listings/accept-bid
func (h *Handlers) AcceptBid(c *fiber.Ctx) error {
	var req acceptBidRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return response.Error(c, "Invalid listing_id format", 400, nil)
	}
	bidID, err := uuid.Parse(req.BidID)
	if err != nil {
		return response.Error(c, "Invalid bid_id format", 400, nil)
	}

	listing, err := h.Owner.AcceptBid(c.Context(), AcceptBidInput{
		ListingID: listingID,
		BidID:     bidID,
		OwnerName: middleware.GetUserName(c),
	})
	if err != nil {
		return respondLedgerError(c, err)
	}
	return response.Success(c, "Bid accepted successfully", listing, nil)
}

type confirmPickupRequest struct {
	ListingID     string  `json:"listing_id"`
	ProofImageURL *string `json:"proof_image_url"`
	ProofLocation *string `json:"proof_location"`
}

// POST /api/v1/listings/confirm-pickup
func (h *Handlers) ConfirmPickup(c *fiber.Ctx) error {
	var req confirmPickupRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return response.Error(c, "Invalid listing_id format", 400, nil)
	}

	listing, err := h.Owner.ConfirmPickup(c.Context(), ConfirmPickupInput{
		ListingID:     listingID,
		OwnerName:     middleware.GetUserName(c),
		ProofImageURL: req.ProofImageURL,
		ProofLocation: req.ProofLocation,
	})
	if err != nil {
		return respondLedgerError(c, err)
	}
	return response.Success(c, "Pickup confirmed successfully", listing, nil)
}

func respondLedgerError(c *fiber.Ctx, err error) error {
	switch {
	case IsValidation(err):
		return response.Error(c, err.Error(), 400, nil)
	case IsNotFound(err):
		return response.Error(c, err.Error(), 404, nil)
	case IsInvalidState(err):
		return response.Error(c, err.Error(), 409, nil)
	case errors.Is(err, ErrNotListingOwner):
		return response.Error(c, err.Error(), 403, nil)
	default:
		return response.Error(c, "Internal Server Error", 500, nil)
	}
}

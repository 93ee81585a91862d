package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"agriloop-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLedgerApp(t *testing.T, fullname, role string) (*fiber.App, *Service) {
	svc, _, _ := setupLedgerTest(t)
	h := &Handlers{
		Owner:     svc.ForOwner(),
		Buyer:     svc.ForBuyer(),
		Collector: svc.ForCollector(),
		Service:   svc,
	}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id":  uuid.New().String(),
			"fullname": fullname,
			"role":     role,
		})
		return c.Next()
	})
	app.Post("/create-listing", h.CreateListing)
	app.Get("/get-my-listings", h.GetMyListings)
	app.Get("/get-open-listings", h.GetOpenListings)
	app.Get("/get-listing/:listing_id", h.GetListingByID)
	app.Post("/place-bid", h.PlaceBid)
	app.Get("/get-my-bids", h.GetMyBids)
	app.Post("/accept-bid", h.AcceptBid)
	app.Post("/confirm-pickup", h.ConfirmPickup)
	return app, svc
}

func postJSON(t *testing.T, app *fiber.App, path string, payload map[string]interface{}) (map[string]interface{}, int) {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return result, resp.StatusCode
}

func TestCreateListingHandler_FarmerGetsFarmCrop(t *testing.T) {
	app, svc := setupLedgerApp(t, "Harpreet Singh", "FARMER")

	result, status := postJSON(t, app, "/create-listing", map[string]interface{}{
		"quantity": 12,
		"location": "Sangrur, Punjab",
		"analysis": map[string]interface{}{"residue_type": "Rice Straw"},
	})
	assert.Equal(t, 201, status)
	assert.Equal(t, "success", result["status"])

	listings, err := svc.ListingsByOwner(context.Background(), "Harpreet Singh")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, domain.CategoryFarmCrop, listings[0].WasteCategory)
	assert.Equal(t, domain.StatusOpen, listings[0].Status)
}

func TestCreateListingHandler_HouseholdGetsHouseholdWaste(t *testing.T) {
	app, svc := setupLedgerApp(t, "Meera", "HOUSEHOLD")

	_, status := postJSON(t, app, "/create-listing", map[string]interface{}{
		"quantity": 3,
		"location": "Pune",
	})
	assert.Equal(t, 201, status)

	listings, err := svc.ListingsByOwner(context.Background(), "Meera")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, domain.CategoryHouseholdWaste, listings[0].WasteCategory)
}

func TestCreateListingHandler_MissingAnalysisGetsFallback(t *testing.T) {
	app, svc := setupLedgerApp(t, "Harpreet Singh", "FARMER")

	_, status := postJSON(t, app, "/create-listing", map[string]interface{}{
		"quantity": 5,
		"location": "Sangrur, Punjab",
	})
	assert.Equal(t, 201, status)

	listings, err := svc.ListingsByOwner(context.Background(), "Harpreet Singh")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Unknown Biomass", listings[0].Analysis.ResidueType)
	assert.Equal(t, 50, listings[0].Analysis.PurityScore)
}

func TestCreateListingHandler_ValidationError(t *testing.T) {
	app, _ := setupLedgerApp(t, "Harpreet Singh", "FARMER")

	result, status := postJSON(t, app, "/create-listing", map[string]interface{}{
		"quantity": 0,
		"location": "Sangrur, Punjab",
	})
	assert.Equal(t, 400, status)
	assert.Equal(t, "error", result["status"])
}

func TestPlaceBidHandler_DefaultsReliabilityScore(t *testing.T) {
	app, svc := setupLedgerApp(t, "AgroMills", "BUYER")
	listing := createOpenListing(t, svc, "Harpreet Singh", domain.CategoryFarmCrop)

	result, status := postJSON(t, app, "/place-bid", map[string]interface{}{
		"listing_id":  listing.ListingID.String(),
		"amount":      3000,
		"pickup_time": "2026-09-02 10:00",
	})
	assert.Equal(t, 201, status)
	assert.Equal(t, "success", result["status"])

	got, err := svc.GetListing(context.Background(), listing.ListingID)
	require.NoError(t, err)
	require.Len(t, got.Bids, 1)
	assert.Equal(t, defaultReliabilityScore, got.Bids[0].BuyerReliabilityScore)
	assert.Equal(t, "AgroMills", got.Bids[0].BuyerName)
}

func TestPlaceBidHandler_BadListingID(t *testing.T) {
	app, _ := setupLedgerApp(t, "AgroMills", "BUYER")

	_, status := postJSON(t, app, "/place-bid", map[string]interface{}{
		"listing_id": "not-a-uuid", "amount": 3000, "pickup_time": "x",
	})
	assert.Equal(t, 400, status)
}

func TestPlaceBidHandler_ClosedListingConflict(t *testing.T) {
	app, svc := setupLedgerApp(t, "Latecomer", "BUYER")
	listing := createOpenListing(t, svc, "Harpreet Singh", domain.CategoryFarmCrop)
	bid, err := svc.ForBuyer().PlaceBid(context.Background(), PlaceBidInput{
		ListingID: listing.ListingID, BuyerName: "AgroMills", Amount: 3000, PickupTime: "x",
	})
	require.NoError(t, err)
	_, err = svc.AcceptBid(context.Background(), AcceptBidInput{ListingID: listing.ListingID, BidID: bid.BidID, OwnerName: "Harpreet Singh"})
	require.NoError(t, err)

	_, status := postJSON(t, app, "/place-bid", map[string]interface{}{
		"listing_id": listing.ListingID.String(), "amount": 4000, "pickup_time": "x",
	})
	assert.Equal(t, 409, status)
}

func TestAcceptBidHandler_WrongOwnerForbidden(t *testing.T) {
	app, svc := setupLedgerApp(t, "Not The Owner", "FARMER")
	listing := createOpenListing(t, svc, "Harpreet Singh", domain.CategoryFarmCrop)
	bid, err := svc.ForBuyer().PlaceBid(context.Background(), PlaceBidInput{
		ListingID: listing.ListingID, BuyerName: "AgroMills", Amount: 3000, PickupTime: "x",
	})
	require.NoError(t, err)

	_, status := postJSON(t, app, "/accept-bid", map[string]interface{}{
		"listing_id": listing.ListingID.String(), "bid_id": bid.BidID.String(),
	})
	assert.Equal(t, 403, status)
}

func TestAcceptBidHandler_UnknownBidNotFound(t *testing.T) {
	app, svc := setupLedgerApp(t, "Harpreet Singh", "FARMER")
	listing := createOpenListing(t, svc, "Harpreet Singh", domain.CategoryFarmCrop)

	_, status := postJSON(t, app, "/accept-bid", map[string]interface{}{
		"listing_id": listing.ListingID.String(), "bid_id": uuid.New().String(),
	})
	assert.Equal(t, 404, status)
}

func TestConfirmPickupHandler_FullFlow(t *testing.T) {
	app, svc := setupLedgerApp(t, "Harpreet Singh", "FARMER")
	listing := createOpenListing(t, svc, "Harpreet Singh", domain.CategoryFarmCrop)
	bid, err := svc.ForBuyer().PlaceBid(context.Background(), PlaceBidInput{
		ListingID: listing.ListingID, BuyerName: "GreenFuel Co", Amount: 3200, PickupTime: "x",
	})
	require.NoError(t, err)

	_, status := postJSON(t, app, "/accept-bid", map[string]interface{}{
		"listing_id": listing.ListingID.String(), "bid_id": bid.BidID.String(),
	})
	assert.Equal(t, 200, status)

	result, status := postJSON(t, app, "/confirm-pickup", map[string]interface{}{
		"listing_id":      listing.ListingID.String(),
		"proof_image_url": "https://img.example/proof.jpg",
	})
	assert.Equal(t, 200, status)
	assert.Equal(t, "success", result["status"])

	got, err := svc.GetListing(context.Background(), listing.ListingID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	// Already completed -> conflict
	_, status = postJSON(t, app, "/confirm-pickup", map[string]interface{}{
		"listing_id": listing.ListingID.String(),
	})
	assert.Equal(t, 409, status)
}

func TestGetOpenListingsHandler_RoleScoped(t *testing.T) {
	app, svc := setupLedgerApp(t, "BioGen Plant", "BIOGAS")
	createOpenListing(t, svc, "Harpreet Singh", domain.CategoryFarmCrop)
	createOpenListing(t, svc, "Meera", domain.CategoryHouseholdWaste)

	req := httptest.NewRequest("GET", "/get-open-listings", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data, _ := result["data"].([]interface{})
	require.Len(t, data, 1)
	first, _ := data[0].(map[string]interface{})
	assert.Equal(t, domain.CategoryHouseholdWaste, first["waste_category"])
}

func TestGetListingHandler_BadID(t *testing.T) {
	app, _ := setupLedgerApp(t, "Harpreet Singh", "FARMER")
	req := httptest.NewRequest("GET", "/get-listing/nope", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestGetMyBidsHandler(t *testing.T) {
	app, svc := setupLedgerApp(t, "AgroMills", "BUYER")
	listing := createOpenListing(t, svc, "Harpreet Singh", domain.CategoryFarmCrop)
	_, err := svc.ForBuyer().PlaceBid(context.Background(), PlaceBidInput{
		ListingID: listing.ListingID, BuyerName: "AgroMills", Amount: 3000, PickupTime: "x",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/get-my-bids", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data, _ := result["data"].([]interface{})
	assert.Len(t, data, 1)
}

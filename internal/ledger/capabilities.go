package ledger

import (
	"context"

	"agriloop-backend/internal/domain"
)

// Capability-scoped views over the ledger. Each role-facing handler holds
// only the surface valid for that role, instead of one wide operation set
// with role checks sprinkled through callers. Households share the owner
// surface with farmers.

// OwnerLedger is the surface for listing owners (FARMER and HOUSEHOLD).
type OwnerLedger interface {
	CreateListing(ctx context.Context, in CreateListingInput) (*domain.Listing, error)
	AcceptBid(ctx context.Context, in AcceptBidInput) (*domain.Listing, error)
	ConfirmPickup(ctx context.Context, in ConfirmPickupInput) (*domain.Listing, error)
	ListingsByOwner(ctx context.Context, owner string) ([]domain.Listing, error)
}

// BuyerLedger is the surface for BUYER accounts, restricted to farm-crop
// listings.
type BuyerLedger interface {
	OpenListings(ctx context.Context) ([]domain.Listing, error)
	PlaceBid(ctx context.Context, in PlaceBidInput) (*domain.Bid, error)
	ListingsBidOnBy(ctx context.Context, buyer string) ([]domain.Listing, error)
}

// CollectorLedger is the surface for BIOGAS accounts, restricted to
// household-waste listings.
type CollectorLedger interface {
	OpenListings(ctx context.Context) ([]domain.Listing, error)
	PlaceBid(ctx context.Context, in PlaceBidInput) (*domain.Bid, error)
	ListingsBidOnBy(ctx context.Context, buyer string) ([]domain.Listing, error)
}

// ForOwner returns the owner-facing view.
func (s *Service) ForOwner() OwnerLedger { return ownerView{s} }

// ForBuyer returns the buyer-facing view.
func (s *Service) ForBuyer() BuyerLedger { return buyerView{s} }

// ForCollector returns the biogas-collector-facing view.
func (s *Service) ForCollector() CollectorLedger { return collectorView{s} }

type ownerView struct{ s *Service }

func (v ownerView) CreateListing(ctx context.Context, in CreateListingInput) (*domain.Listing, error) {
	return v.s.CreateListing(ctx, in)
}

func (v ownerView) AcceptBid(ctx context.Context, in AcceptBidInput) (*domain.Listing, error) {
	return v.s.AcceptBid(ctx, in)
}

func (v ownerView) ConfirmPickup(ctx context.Context, in ConfirmPickupInput) (*domain.Listing, error) {
	return v.s.ConfirmPickup(ctx, in)
}

func (v ownerView) ListingsByOwner(ctx context.Context, owner string) ([]domain.Listing, error) {
	return v.s.ListingsByOwner(ctx, owner)
}

type buyerView struct{ s *Service }

func (v buyerView) OpenListings(ctx context.Context) ([]domain.Listing, error) {
	return v.s.OpenListings(ctx, domain.CategoryFarmCrop)
}

func (v buyerView) PlaceBid(ctx context.Context, in PlaceBidInput) (*domain.Bid, error) {
	return v.s.placeBid(ctx, in, domain.CategoryFarmCrop)
}

func (v buyerView) ListingsBidOnBy(ctx context.Context, buyer string) ([]domain.Listing, error) {
	return v.s.ListingsBidOnBy(ctx, buyer)
}

type collectorView struct{ s *Service }

func (v collectorView) OpenListings(ctx context.Context) ([]domain.Listing, error) {
	return v.s.OpenListings(ctx, domain.CategoryHouseholdWaste)
}

func (v collectorView) PlaceBid(ctx context.Context, in PlaceBidInput) (*domain.Bid, error) {
	return v.s.placeBid(ctx, in, domain.CategoryHouseholdWaste)
}

func (v collectorView) ListingsBidOnBy(ctx context.Context, buyer string) ([]domain.Listing, error) {
	return v.s.ListingsBidOnBy(ctx, buyer)
}

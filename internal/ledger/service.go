package ledger

import (
	"context"

	"agriloop-backend/internal/domain"
	"agriloop-backend/internal/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Publisher receives one event per committed ledger mutation. Publishing is
// best-effort: the ledger never fails an operation because a consumer did.
type Publisher interface {
	Publish(ctx context.Context, ev events.Event)
}

// Service owns the listing/bid collection and enforces the status state
// machine. All mutations run inside a DB transaction; status transitions are
// conditional updates checked via RowsAffected, so interleaved writers on
// the same listing cannot skip or reverse a state.
type Service struct {
	DB     *gorm.DB
	Events Publisher
}

type CreateListingInput struct {
	OwnerName     string
	ImageURL      string
	Analysis      domain.WasteAnalysis
	Quantity      float64
	Location      string
	WasteCategory string
	Degradability string
}

// CreateListing opens a new listing with no bids. The analysis record is
// attached as-is; optional-field defaulting happens at the analyzer
// boundary, not here.
func (s *Service) CreateListing(ctx context.Context, in CreateListingInput) (*domain.Listing, error) {
	if in.OwnerName == "" {
		return nil, ErrOwnerNameRequired
	}
	if in.Quantity <= 0 {
		return nil, ErrQuantityInvalid
	}
	if in.Location == "" {
		return nil, ErrLocationRequired
	}
	if in.WasteCategory != domain.CategoryFarmCrop && in.WasteCategory != domain.CategoryHouseholdWaste {
		return nil, ErrCategoryInvalid
	}
	degradability := in.Degradability
	switch degradability {
	case domain.Degradable, domain.NonDegradable:
	default:
		degradability = domain.DegradabilityNA
	}

	listing := &domain.Listing{
		OwnerName:     in.OwnerName,
		ImageURL:      in.ImageURL,
		Analysis:      in.Analysis,
		Quantity:      in.Quantity,
		Location:      in.Location,
		Status:        domain.StatusOpen,
		WasteCategory: in.WasteCategory,
		Degradability: degradability,
		Bids:          []domain.Bid{},
	}
	if err := s.DB.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      domain.EventListingCreated,
		ListingID: listing.ListingID,
		Actor:     listing.OwnerName,
		OwnerName: listing.OwnerName,
		Quantity:  listing.Quantity,
		CO2Saved:  listing.Analysis.CO2Saved,
	})
	return listing, nil
}

type PlaceBidInput struct {
	ListingID        uuid.UUID
	BuyerName        string
	Amount           float64
	PickupTime       string
	ReliabilityScore float64
}

// placeBid appends a bid to an open listing. requiredCategory restricts the
// listing categories the caller may bid on ("" means any). A buyer may
// legally hold multiple bids on one listing; no dedup is applied.
func (s *Service) placeBid(ctx context.Context, in PlaceBidInput, requiredCategory string) (*domain.Bid, error) {
	if in.BuyerName == "" {
		return nil, ErrBuyerNameRequired
	}
	if in.Amount <= 0 {
		return nil, ErrAmountInvalid
	}
	if in.PickupTime == "" {
		return nil, ErrPickupTimeRequired
	}

	bid := &domain.Bid{
		ListingID:             in.ListingID,
		BuyerName:             in.BuyerName,
		Amount:                in.Amount,
		PickupTime:            in.PickupTime,
		BuyerReliabilityScore: in.ReliabilityScore,
	}
	var owner string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing domain.Listing
		if err := tx.Where("listing_id = ?", in.ListingID).First(&listing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrListingNotFound
			}
			return err
		}
		if requiredCategory != "" && listing.WasteCategory != requiredCategory {
			return ErrCategoryNotEligible
		}
		if listing.Status != domain.StatusOpen {
			return ErrListingNotOpen
		}
		owner = listing.OwnerName
		var maxSeq int64
		if err := tx.Model(&domain.Bid{}).
			Where("listing_id = ?", in.ListingID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&maxSeq).Error; err != nil {
			return err
		}
		bid.Seq = maxSeq + 1
		if err := tx.Create(bid).Error; err != nil {
			return err
		}
		// Re-check after insert: an accept committed between the read above
		// and the insert must void this bid.
		var status string
		if err := tx.Model(&domain.Listing{}).Select("status").Where("listing_id = ?", in.ListingID).Scan(&status).Error; err != nil {
			return err
		}
		if status != domain.StatusOpen {
			return ErrListingNotOpen
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      domain.EventBidPlaced,
		ListingID: in.ListingID,
		Actor:     in.BuyerName,
		OwnerName: owner,
		Amount:    in.Amount,
	})
	return bid, nil
}

type AcceptBidInput struct {
	ListingID uuid.UUID
	BidID     uuid.UUID
	OwnerName string // actor; must match the listing owner when set
}

// AcceptBid selects exactly one bid and advances the listing to
// PENDING_PICKUP. This is the single irreversible selection point; a second
// accept fails with an invalid-state error and leaves the first selection
// intact.
func (s *Service) AcceptBid(ctx context.Context, in AcceptBidInput) (*domain.Listing, error) {
	var listing *domain.Listing
	var bid domain.Bid
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l domain.Listing
		if err := tx.Where("listing_id = ?", in.ListingID).First(&l).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrListingNotFound
			}
			return err
		}
		if in.OwnerName != "" && l.OwnerName != in.OwnerName {
			return ErrNotListingOwner
		}
		if err := tx.Where("bid_id = ? AND listing_id = ?", in.BidID, in.ListingID).First(&bid).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrBidNotFound
			}
			return err
		}
		res := tx.Model(&domain.Listing{}).
			Where("listing_id = ? AND status = ?", in.ListingID, domain.StatusOpen).
			Updates(map[string]interface{}{
				"status":          domain.StatusPendingPickup,
				"accepted_bid_id": in.BidID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrListingNotOpen
		}
		var err error
		listing, err = loadListing(tx, in.ListingID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      domain.EventBidAccepted,
		ListingID: listing.ListingID,
		Actor:     listing.OwnerName,
		OwnerName: listing.OwnerName,
		BuyerName: bid.BuyerName,
		Amount:    bid.Amount,
	})
	return listing, nil
}

type ConfirmPickupInput struct {
	ListingID     uuid.UUID
	OwnerName     string // actor; must match the listing owner when set
	ProofImageURL *string
	ProofLocation *string
}

// ConfirmPickup advances a PENDING_PICKUP listing to COMPLETED, the terminal
// state. The payment side effect is the pickup.confirmed event; crediting is
// the rewards consumer's business, not the ledger's.
func (s *Service) ConfirmPickup(ctx context.Context, in ConfirmPickupInput) (*domain.Listing, error) {
	var listing *domain.Listing
	var acceptedAmount float64
	var buyerName string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l domain.Listing
		if err := tx.Where("listing_id = ?", in.ListingID).First(&l).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrListingNotFound
			}
			return err
		}
		if in.OwnerName != "" && l.OwnerName != in.OwnerName {
			return ErrNotListingOwner
		}
		updates := map[string]interface{}{"status": domain.StatusCompleted}
		if in.ProofImageURL != nil {
			updates["proof_image_url"] = *in.ProofImageURL
		}
		if in.ProofLocation != nil {
			updates["proof_location"] = *in.ProofLocation
		}
		res := tx.Model(&domain.Listing{}).
			Where("listing_id = ? AND status = ?", in.ListingID, domain.StatusPendingPickup).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrListingNotPendingPickup
		}
		var err error
		listing, err = loadListing(tx, in.ListingID)
		if err != nil {
			return err
		}
		if listing.AcceptedBidID != nil {
			for _, b := range listing.Bids {
				if b.BidID == *listing.AcceptedBidID {
					acceptedAmount = b.Amount
					buyerName = b.BuyerName
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      domain.EventPickupConfirmed,
		ListingID: listing.ListingID,
		Actor:     listing.OwnerName,
		OwnerName: listing.OwnerName,
		BuyerName: buyerName,
		Amount:    acceptedAmount,
		Quantity:  listing.Quantity,
		CO2Saved:  listing.Analysis.CO2Saved,
	})
	return listing, nil
}

// GetListing returns one listing with its bids in arrival order.
func (s *Service) GetListing(ctx context.Context, listingID uuid.UUID) (*domain.Listing, error) {
	return loadListing(s.DB.WithContext(ctx), listingID)
}

// ListingsByOwner returns the owner's listings, newest first.
func (s *Service) ListingsByOwner(ctx context.Context, owner string) ([]domain.Listing, error) {
	if owner == "" {
		return nil, ErrOwnerNameRequired
	}
	var listings []domain.Listing
	if err := withBids(s.DB.WithContext(ctx)).
		Where("owner_name = ?", owner).
		Order("created_at DESC").
		Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

// OpenListings returns OPEN listings, newest first, optionally filtered by
// waste category ("" means all).
func (s *Service) OpenListings(ctx context.Context, category string) ([]domain.Listing, error) {
	q := withBids(s.DB.WithContext(ctx)).Where("status = ?", domain.StatusOpen)
	if category != "" {
		q = q.Where("waste_category = ?", category)
	}
	var listings []domain.Listing
	if err := q.Order("created_at DESC").Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

// ListingsBidOnBy returns every listing the buyer has at least one bid on,
// newest first.
func (s *Service) ListingsBidOnBy(ctx context.Context, buyer string) ([]domain.Listing, error) {
	if buyer == "" {
		return nil, ErrBuyerNameRequired
	}
	sub := s.DB.WithContext(ctx).Model(&domain.Bid{}).Select("listing_id").Where("buyer_name = ?", buyer)
	var listings []domain.Listing
	if err := withBids(s.DB.WithContext(ctx)).
		Where("listing_id IN (?)", sub).
		Order("created_at DESC").
		Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (s *Service) publish(ctx context.Context, ev events.Event) {
	if s.Events != nil {
		s.Events.Publish(ctx, ev)
	}
}

func withBids(db *gorm.DB) *gorm.DB {
	return db.Preload("Bids", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq ASC")
	})
}

func loadListing(db *gorm.DB, listingID uuid.UUID) (*domain.Listing, error) {
	var listing domain.Listing
	if err := withBids(db).Where("listing_id = ?", listingID).First(&listing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

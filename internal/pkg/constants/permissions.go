package constants

const (
	CreateListing    = "create_listing"
	PlaceBid         = "place_bid"
	AcceptBid        = "accept_bid"
	ConfirmPickup    = "confirm_pickup"
	ViewOwnListings  = "view_own_listings"
	ViewOpenListings = "view_open_listings"
	ViewOwnBids      = "view_own_bids"
	AnalyzeWaste     = "analyze_waste"
)

// PermissionRoles maps each permission to the roles allowed to perform it.
// Only waste owners (farmer/household) create, accept and confirm; only the
// buying side (buyer/biogas) bids. Category-level routing (buyers to farm
// crop, collectors to household waste) is enforced by the ledger itself.
var PermissionRoles = map[string][]string{
	CreateListing:    {Farmer, Household},
	PlaceBid:         {Buyer, Biogas},
	AcceptBid:        {Farmer, Household},
	ConfirmPickup:    {Farmer, Household},
	ViewOwnListings:  {Farmer, Household},
	ViewOpenListings: {Farmer, Buyer, Household, Biogas},
	ViewOwnBids:      {Buyer, Biogas},
	AnalyzeWaste:     {Farmer, Household, Learner},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

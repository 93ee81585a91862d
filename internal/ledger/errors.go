package ledger

import "errors"

// Validation errors: malformed input, rejected before any state change.
var (
	ErrOwnerNameRequired  = errors.New("Owner name is required")
	ErrQuantityInvalid    = errors.New("Quantity must be greater than zero")
	ErrLocationRequired   = errors.New("Location is required")
	ErrCategoryInvalid    = errors.New("Invalid waste category")
	ErrBuyerNameRequired  = errors.New("Buyer name is required")
	ErrAmountInvalid      = errors.New("Bid amount must be greater than zero")
	ErrPickupTimeRequired = errors.New("Pickup time is required")
)

// Not-found errors: referenced listing or bid does not exist.
var (
	ErrListingNotFound = errors.New("Listing not found")
	ErrBidNotFound     = errors.New("Bid not found")
)

// Invalid-state errors: operation attempted against a listing whose status
// or category forbids it. The ledger is the final authority on these, not
// the UI.
var (
	ErrListingNotOpen          = errors.New("Listing is not open")
	ErrListingNotPendingPickup = errors.New("Listing is not pending pickup")
	ErrCategoryNotEligible     = errors.New("Listing category is not eligible for this buyer")
)

// ErrNotListingOwner is returned when someone other than the listing owner
// attempts an owner-only transition.
var ErrNotListingOwner = errors.New("Only the listing owner can perform this action")

// IsValidation reports whether err is a caller input error.
func IsValidation(err error) bool {
	for _, e := range []error{
		ErrOwnerNameRequired, ErrQuantityInvalid, ErrLocationRequired,
		ErrCategoryInvalid, ErrBuyerNameRequired, ErrAmountInvalid,
		ErrPickupTimeRequired,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err refers to a missing listing or bid.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrListingNotFound) || errors.Is(err, ErrBidNotFound)
}

// IsInvalidState reports whether err is a forbidden status transition.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrListingNotOpen) ||
		errors.Is(err, ErrListingNotPendingPickup) ||
		errors.Is(err, ErrCategoryNotEligible)
}

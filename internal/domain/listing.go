package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Listing status lifecycle. Transitions are one-directional:
// OPEN -> PENDING_PICKUP -> COMPLETED. COMPLETED is terminal.
const (
	StatusOpen          = "OPEN"
	StatusPendingPickup = "PENDING_PICKUP"
	StatusCompleted     = "COMPLETED"
)

// Waste categories. FARM_CROP listings take buyer bids, HOUSEHOLD_WASTE
// listings take biogas collector bids.
const (
	CategoryFarmCrop       = "FARM_CROP"
	CategoryHouseholdWaste = "HOUSEHOLD_WASTE"
)

// Degradability classifications, relevant only for household waste routing.
const (
	Degradable      = "DEGRADABLE"
	NonDegradable   = "NON_DEGRADABLE"
	DegradabilityNA = "N/A"
)

// StringList stores a string slice as a JSON array in a json/text column and
// marshals to the API as a plain array (frontend expects an array for .map()).
type StringList []string

// Scan implements sql.Scanner for reading from DB.
func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported type for StringList")
	}
}

// Value implements driver.Valuer for writing to DB.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// WasteAnalysis is the record attached by the external AI analyzer. The
// ledger treats it as opaque: fields are stored and echoed back, never
// interpreted. Optional fields are resolved to explicit defaults at the
// analyzer boundary, not here.
type WasteAnalysis struct {
	ResidueType              string     `gorm:"column:residue_type" json:"residue_type"`
	SuggestedUses            StringList `gorm:"column:suggested_uses;type:json" json:"suggested_uses"`
	TransportFeasibility     string     `gorm:"column:transport_feasibility" json:"transport_feasibility"`
	EnvironmentalImpactScore int        `gorm:"column:environmental_impact_score" json:"environmental_impact_score"`
	EstimatedPriceRange      string     `gorm:"column:estimated_price_range" json:"estimated_price_range"`
	Confidence               float64    `gorm:"column:confidence" json:"confidence"`
	MoistureContent          string     `gorm:"column:moisture_content" json:"moisture_content"`
	PurityScore              int        `gorm:"column:purity_score" json:"purity_score"`
	CO2Saved                 float64    `gorm:"column:co2_saved" json:"co2_saved"`
}

// Listing is a waste-lot offer created by a farmer or household, tracked
// through its sale/collection lifecycle.
type Listing struct {
	ListingID     uuid.UUID     `gorm:"column:listing_id;type:uuid;primaryKey" json:"listing_id"`
	OwnerName     string        `gorm:"column:owner_name;not null" json:"owner_name"`
	ImageURL      string        `gorm:"column:image_url" json:"image_url"`
	Analysis      WasteAnalysis `gorm:"embedded;embeddedPrefix:analysis_" json:"analysis"`
	Quantity      float64       `gorm:"column:quantity;type:decimal(18,2);not null" json:"quantity"`
	Location      string        `gorm:"column:location;not null" json:"location"`
	Status        string        `gorm:"column:status;type:varchar(20);default:'OPEN'" json:"status"`
	AcceptedBidID *uuid.UUID    `gorm:"column:accepted_bid_id;type:uuid" json:"accepted_bid_id"`
	WasteCategory string        `gorm:"column:waste_category;type:varchar(20);not null" json:"waste_category"`
	Degradability string        `gorm:"column:degradability;type:varchar(20);default:'N/A'" json:"degradability"`
	ProofImageURL *string       `gorm:"column:proof_image_url" json:"proof_image_url"`
	ProofLocation *string       `gorm:"column:proof_location" json:"proof_location"`
	Bids          []Bid         `gorm:"foreignKey:ListingID;references:ListingID" json:"bids"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func (Listing) TableName() string {
	return "Listings"
}

// BeforeCreate sets listing_id if not already set (DBs without default uuid).
func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ListingID == uuid.Nil {
		l.ListingID = uuid.New()
	}
	return nil
}

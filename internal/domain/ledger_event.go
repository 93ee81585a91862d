package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Ledger event types, one per ledger mutation.
const (
	EventListingCreated  = "listing.created"
	EventBidPlaced       = "bid.placed"
	EventBidAccepted     = "bid.accepted"
	EventPickupConfirmed = "pickup.confirmed"
)

// LedgerEvent is the durable record of a ledger mutation, consumed by
// downstream systems (rewards, audit). Payload carries listing id, actor
// and amount so consumers never need to re-read the ledger.
type LedgerEvent struct {
	EventID   uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	ListingID uuid.UUID      `gorm:"column:listing_id;type:uuid;not null;index" json:"listing_id"`
	EventType string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	EventData datatypes.JSON `gorm:"column:event_data;type:jsonb;not null" json:"event_data"`
	Actor     string         `gorm:"column:actor;not null" json:"actor"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (LedgerEvent) TableName() string {
	return "LedgerEvents"
}

func (e *LedgerEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bid is a buyer's or collector's offer against an open listing. Rows are
// append-only; Seq is assigned per listing at insert time so arrival order
// survives identical created_at timestamps.
type Bid struct {
	BidID                 uuid.UUID `gorm:"column:bid_id;type:uuid;primaryKey" json:"bid_id"`
	ListingID             uuid.UUID `gorm:"column:listing_id;type:uuid;not null;index" json:"listing_id"`
	Seq                   int64     `gorm:"column:seq;not null;default:0" json:"seq"`
	BuyerName             string    `gorm:"column:buyer_name;not null" json:"buyer_name"`
	Amount                float64   `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	PickupTime            string    `gorm:"column:pickup_time;not null" json:"pickup_time"`
	BuyerReliabilityScore float64   `gorm:"column:buyer_reliability_score;type:decimal(5,2)" json:"buyer_reliability_score"`
	CreatedAt             time.Time `json:"createdAt"`
}

func (Bid) TableName() string {
	return "Bids"
}

func (b *Bid) BeforeCreate(tx *gorm.DB) error {
	if b.BidID == uuid.Nil {
		b.BidID = uuid.New()
	}
	return nil
}

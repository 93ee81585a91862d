package events

import (
	"context"
	"encoding/json"

	"agriloop-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultChannel is the Redis channel ledger events are published on when
// none is configured.
const DefaultChannel = "agriloop:ledger-events"

// Event is the outbound record of a ledger mutation. It carries enough data
// (listing id, owner, amount) for downstream consumers to credit points or
// wallet balance without re-reading the ledger.
type Event struct {
	Type      string    `json:"type"`
	ListingID uuid.UUID `json:"listing_id"`
	Actor     string    `json:"actor"`
	OwnerName string    `json:"owner_name"`
	BuyerName string    `json:"buyer_name,omitempty"`
	Amount    float64   `json:"amount,omitempty"`
	Quantity  float64   `json:"quantity,omitempty"`
	CO2Saved  float64   `json:"co2_saved,omitempty"`
}

// Subscriber is an in-process event consumer.
type Subscriber func(ctx context.Context, ev Event)

// Bus records ledger events in the DB, publishes them on a Redis channel
// for external consumers, and fans out to in-process subscribers. Every sink
// is best-effort: a failed sink is logged, never propagated to the ledger.
type Bus struct {
	DB      *gorm.DB
	Rdb     *redis.Client
	Channel string
	subs    []Subscriber
}

// Subscribe registers an in-process consumer. Call during app wiring, before
// the first Publish.
func (b *Bus) Subscribe(fn Subscriber) {
	b.subs = append(b.subs, fn)
}

// Publish delivers the event to all sinks.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event_type", ev.Type).Msg("Failed to marshal ledger event")
		return
	}

	if b.DB != nil {
		rec := &domain.LedgerEvent{
			ListingID: ev.ListingID,
			EventType: ev.Type,
			EventData: datatypes.JSON(payload),
			Actor:     ev.Actor,
		}
		if err := b.DB.WithContext(ctx).Create(rec).Error; err != nil {
			log.Error().Err(err).Str("event_type", ev.Type).Msg("Failed to record ledger event")
		}
	}

	if b.Rdb != nil {
		channel := b.Channel
		if channel == "" {
			channel = DefaultChannel
		}
		if err := b.Rdb.Publish(ctx, channel, payload).Err(); err != nil {
			log.Error().Err(err).Str("event_type", ev.Type).Msg("Failed to publish ledger event")
		}
	}

	for _, fn := range b.subs {
		fn(ctx, ev)
	}
}

// EventsForListing returns the recorded events for one listing, oldest first.
func (b *Bus) EventsForListing(ctx context.Context, listingID uuid.UUID) ([]domain.LedgerEvent, error) {
	var recs []domain.LedgerEvent
	if err := b.DB.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("created_at ASC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

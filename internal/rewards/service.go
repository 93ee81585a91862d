package rewards

import (
	"context"
	"errors"
	"math"

	"agriloop-backend/internal/domain"
	"agriloop-backend/internal/events"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("User not found")

// Service credits reward balances from ledger events. Crediting policy lives
// here, outside the ledger: the ledger only reports what happened.
type Service struct {
	DB *gorm.DB
}

// HandleEvent is the event-bus subscriber. pickup.confirmed credits the
// listing owner's wallet with the accepted bid amount and their carbon
// points with the CO2 saved by the lot (per-ton figure times quantity).
// Every other event type is durable in the event log but credits nothing.
func (s *Service) HandleEvent(ctx context.Context, ev events.Event) {
	if ev.Type != domain.EventPickupConfirmed {
		return
	}
	points := math.Round(ev.CO2Saved * ev.Quantity)
	if points < 0 {
		points = 0
	}
	res := s.DB.WithContext(ctx).Model(&domain.User{}).
		Where("fullname = ?", ev.OwnerName).
		Updates(map[string]interface{}{
			"wallet_balance": gorm.Expr("wallet_balance + ?", ev.Amount),
			"carbon_points":  gorm.Expr("carbon_points + ?", points),
		})
	if res.Error != nil {
		log.Error().Err(res.Error).Str("owner", ev.OwnerName).Msg("Failed to credit rewards")
		return
	}
	if res.RowsAffected == 0 {
		log.Warn().Str("owner", ev.OwnerName).Msg("Reward credit skipped, owner has no account")
	}
}

// Balance is the reward view of an account.
type Balance struct {
	CarbonPoints  float64 `json:"carbon_points"`
	WalletBalance float64 `json:"wallet_balance"`
}

// GetBalance returns the current balances for a user.
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (*Balance, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &Balance{CarbonPoints: u.CarbonPoints, WalletBalance: u.WalletBalance}, nil
}

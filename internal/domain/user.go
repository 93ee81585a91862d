package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an AgriLoop account. Role gates which ledger operations the
// account may invoke; carbon points and wallet balance are credited by the
// rewards subscriber, never by the ledger itself.
type User struct {
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Fullname      string    `gorm:"column:fullname;not null" json:"fullname"`
	Email         string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Phone         string    `gorm:"column:phone" json:"phone"`
	Location      string    `gorm:"column:location" json:"location"`
	PasswordHash  string    `gorm:"column:password_hash;not null" json:"-"`
	Role          string    `gorm:"column:role;not null" json:"role"`
	CarbonPoints  float64   `gorm:"column:carbon_points;type:decimal(18,2);not null;default:0" json:"carbon_points"`
	WalletBalance float64   `gorm:"column:wallet_balance;type:decimal(18,2);not null;default:0" json:"wallet_balance"`
	LastLogin     time.Time `gorm:"column:last_login" json:"last_login"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "Users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}

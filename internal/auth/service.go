package auth

import (
	"context"
	"time"

	"agriloop-backend/internal/domain"
	"agriloop-backend/internal/pkg/constants"
	"agriloop-backend/internal/pkg/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Starting balances by role, granted once at account creation. Crediting
// after that is the rewards subscriber's job.
var defaultCarbonPoints = map[string]float64{
	constants.Farmer:    1250,
	constants.Buyer:     350,
	constants.Biogas:    800,
	constants.Household: 50,
}

var defaultWalletBalance = map[string]float64{
	constants.Farmer: 45000,
	constants.Buyer:  500000,
	constants.Biogas: 250000,
}

type Service struct {
	DB *gorm.DB
}

type RegisterInput struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RegisterUser registers or re-registers an account, keyed by email. An
// existing account keeps its balances and gets its role and last_login
// updated (a user may come back under a different role); a new account gets
// role-based starting balances.
func (s *Service) RegisterUser(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if !validation.IsValidFullname(in.Fullname) {
		return nil, ErrFullnameRequired
	}
	if !validation.IsValidEmail(in.Email) {
		return nil, ErrInvalidEmail
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, ErrWeakPassword
	}
	if !validation.IsValidPhone(in.Phone) {
		return nil, ErrInvalidPhone
	}
	if !constants.IsValidRole(in.Role) {
		return nil, ErrInvalidRole
	}

	var user domain.User
	err := s.DB.WithContext(ctx).Where("email = ?", in.Email).First(&user).Error
	if err == nil {
		updates := map[string]interface{}{
			"role":       in.Role,
			"last_login": time.Now(),
		}
		if err := s.DB.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user = domain.User{
		Fullname:      in.Fullname,
		Email:         in.Email,
		Phone:         in.Phone,
		Location:      in.Location,
		PasswordHash:  string(hash),
		Role:          in.Role,
		CarbonPoints:  defaultCarbonPoints[in.Role],
		WalletBalance: defaultWalletBalance[in.Role],
		LastLogin:     time.Now(),
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginUser finds user by email and verifies password.
func (s *Service) LoginUser(ctx context.Context, in LoginInput) (*domain.User, error) {
	if in.Email == "" || in.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", in.Email).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidEmail
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	if err := s.DB.WithContext(ctx).Model(&u).Update("last_login", time.Now()).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// SessionUserShape is the object stored in session and returned by /me.
type SessionUserShape struct {
	UserID   string `json:"user_id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// VerifyUser validates the session user map and returns the shape for /me.
func VerifyUser(sessionUser interface{}) (*SessionUserShape, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	userID, _ := m["user_id"].(string)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return &SessionUserShape{
		UserID:   userID,
		Fullname: str(m["fullname"]),
		Email:    str(m["email"]),
		Role:     str(m["role"]),
	}, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

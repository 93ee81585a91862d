package auth

import "errors"

var (
	ErrEmailPasswordRequired = errors.New("Email and password are required")
	ErrInvalidEmail          = errors.New("Invalid Email")
	ErrIncorrectPassword     = errors.New("Incorrect Password")
	ErrNotAuthenticated      = errors.New("Not authenticated")
	ErrFullnameRequired      = errors.New("Fullname is required")
	ErrInvalidRole           = errors.New("Invalid role")
	ErrWeakPassword          = errors.New("Password must be at least 8 characters with a letter, number and special character")
	ErrInvalidPhone          = errors.New("Invalid phone number")
)

package transport

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest is the body for creating a user account.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=10,max=128"`
	DisplayName string `json:"displayName" validate:"required,min=1,max=100"`
}

// LoginRequest is the body for signing in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest exchanges a refresh token for a new token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenResponse carries an issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserResponse is the authenticated user's profile.
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	Roles       []string   `json:"roles"`
	HouseholdID *uuid.UUID `json:"householdId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

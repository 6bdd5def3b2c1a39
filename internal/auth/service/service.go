package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"farmlink_backend/internal/auth/password"
	"farmlink_backend/internal/auth/ports"
	"farmlink_backend/internal/auth/repository"
	"farmlink_backend/internal/auth/token"
	"farmlink_backend/internal/auth/transport"
	"farmlink_backend/platform/apperr"
	"farmlink_backend/platform/config"
	"farmlink_backend/platform/logger"
	"farmlink_backend/platform/sanitize"
)

const (
	accessTokenType = "access"
	refreshTokenTTL = 30 * 24 * time.Hour
)

// Service provides authentication and account logic.
type Service struct {
	repo       *repository.Repository
	cfg        config.AuthServiceConfig
	households ports.HouseholdResolver
	mailer     ports.WelcomeMailer
	log        *logger.Logger
}

// New creates a new auth service.
func New(repo *repository.Repository, cfg config.AuthServiceConfig, households ports.HouseholdResolver, mailer ports.WelcomeMailer, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, households: households, mailer: mailer, log: log}
}

// Register creates a user account and issues a token pair.
func (s *Service) Register(ctx context.Context, req transport.RegisterRequest) (transport.TokenResponse, error) {
	hash, err := password.Hash(req.Password)
	if err != nil {
		return transport.TokenResponse{}, err
	}

	now := time.Now()
	user := &repository.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		DisplayName:  sanitize.Text(req.DisplayName),
		Roles:        []string{"user"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return transport.TokenResponse{}, err
	}

	s.log.AuthEvent("register", user.Email, true, "")
	if s.mailer != nil {
		if err := s.mailer.SendWelcome(ctx, user.Email, user.DisplayName); err != nil {
			s.log.Error("failed to send welcome email", "email", user.Email, "error", err)
		}
	}

	return s.issueTokens(ctx, user)
}

// Login verifies credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (transport.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		s.log.AuthEvent("login", email, false, "unknown email")
		return transport.TokenResponse{}, apperr.Unauthorized("invalid credentials")
	}

	if err := password.Compare(user.PasswordHash, req.Password); err != nil {
		s.log.AuthEvent("login", email, false, "bad password")
		return transport.TokenResponse{}, apperr.Unauthorized("invalid credentials")
	}

	s.log.AuthEvent("login", email, true, "")
	return s.issueTokens(ctx, user)
}

// Refresh rotates a refresh token into a new token pair.
func (s *Service) Refresh(ctx context.Context, req transport.RefreshRequest) (transport.TokenResponse, error) {
	hash := token.HashSHA256(req.RefreshToken)

	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		return transport.TokenResponse{}, apperr.Unauthorized("invalid refresh token")
	}
	if time.Now().After(expiresAt) {
		_ = s.repo.RevokeRefreshToken(ctx, hash)
		return transport.TokenResponse{}, apperr.Unauthorized("refresh token expired")
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return transport.TokenResponse{}, err
	}

	_ = s.repo.RevokeRefreshToken(ctx, hash)
	return s.issueTokens(ctx, user)
}

// Logout revokes a refresh token.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.repo.RevokeRefreshToken(ctx, token.HashSHA256(refreshToken))
}

// Me returns the authenticated user's profile.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (transport.UserResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return transport.UserResponse{}, err
	}

	householdID, err := s.households.HouseholdForUser(ctx, userID)
	if err != nil {
		return transport.UserResponse{}, err
	}

	return transport.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Roles:       user.Roles,
		HouseholdID: householdID,
		CreatedAt:   user.CreatedAt,
	}, nil
}

func (s *Service) issueTokens(ctx context.Context, user *repository.User) (transport.TokenResponse, error) {
	householdID, err := s.households.HouseholdForUser(ctx, user.ID)
	if err != nil {
		return transport.TokenResponse{}, err
	}

	accessToken, err := s.signJWT(user, householdID)
	if err != nil {
		return transport.TokenResponse{}, err
	}

	refreshToken, err := token.GenerateRandomToken(48)
	if err != nil {
		return transport.TokenResponse{}, err
	}

	hash := token.HashSHA256(refreshToken)
	if err := s.repo.CreateRefreshToken(ctx, user.ID, hash, time.Now().Add(refreshTokenTTL)); err != nil {
		return transport.TokenResponse{}, err
	}

	return transport.TokenResponse{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// signJWT embeds the user's household in the access token so every request
// carries the acting household without a directory lookup.
func (s *Service) signJWT(user *repository.User, householdID *uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"type":  accessTokenType,
		"roles": user.Roles,
		"exp":   now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":   now.Unix(),
	}
	if householdID != nil {
		claims["household_id"] = householdID.String()
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

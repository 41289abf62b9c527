package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eclat-salon/internal/adapters/persistence/models"
	"eclat-salon/internal/adapters/persistence/repositories"
	"eclat-salon/internal/core/domain"
	"eclat-salon/internal/pkg/jwt"
	"eclat-salon/internal/pkg/password"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrUserNotFound       = fmt.Errorf("user %w", domain.ErrNotFound)
	ErrInvalidCredentials = fmt.Errorf("email or password is incorrect: %w", domain.ErrInvalidCredentials)
	ErrEmailAlreadyExists = fmt.Errorf("email already registered: %w", domain.ErrDuplicateEntry)
	ErrInvalidToken       = fmt.Errorf("invalid refresh token: %w", domain.ErrTokenInvalid)
	ErrTokenExpired       = fmt.Errorf("refresh token expired: %w", domain.ErrTokenExpired)
	ErrTokenRevoked       = fmt.Errorf("refresh token revoked: %w", domain.ErrTokenInvalid)
	ErrUserInactive       = fmt.Errorf("user account is inactive: %w", domain.ErrForbidden)
	ErrWeakPassword       = fmt.Errorf("password must be 6 to 72 characters: %w", domain.ErrInvalidInput)
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	tokens           *jwt.Manager
	logger           *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	tokens *jwt.Manager,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		tokens:           tokens,
		logger:           logger,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	ExpiresAt    time.Time            `json:"-"`
}

// Register registers a new user
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	if !password.ValidatePassword(input.Password) {
		return nil, ErrWeakPassword
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:        strings.TrimSpace(input.Name),
		Email:       input.Email,
		Phone:       input.Phone,
		Password:    hashedPassword,
		Role:        string(domain.RoleUser),
		IsActive:    true,
		NotifyEmail: true,
		NotifyPush:  true,
		Reminders:   true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	resp, err := s.issue(ctx, user, 0)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	return resp, nil
}

// Login authenticates a user
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	resp, err := s.issue(ctx, user, 0)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		s.logger.Warn("failed to record last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	s.logger.Info("user logged in", zap.Uint("user_id", user.ID))
	return resp, nil
}

// RefreshToken rotates the refresh token and issues a new access token.
// Presenting an already revoked token revokes every session of its user.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	stored, err := s.refreshTokenRepo.GetByTokenHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if stored.IsRevoked() {
		s.logger.Warn("revoked refresh token reused", zap.Uint("user_id", stored.UserID))
		if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, stored.UserID); err != nil {
			s.logger.Error("failed to revoke sessions", zap.Uint("user_id", stored.UserID), zap.Error(err))
		}
		return nil, ErrTokenRevoked
	}
	if stored.IsExpired() {
		return nil, ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	return s.issue(ctx, user, stored.ID)
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.refreshTokenRepo.RevokeByTokenHash(ctx, password.HashToken(refreshToken))
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("all sessions revoked", zap.Uint("user_id", userID))
	return nil
}

// Me returns the authenticated user
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// issue signs a token pair and stores the refresh token; a non-zero
// rotatedID is revoked in the same transaction
func (s *AuthService) issue(ctx context.Context, user *models.User, rotatedID uint) (*AuthResponse, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, expiresAt, err := s.tokens.GenerateRefreshToken(user.ID, uuid.New().String())
	if err != nil {
		return nil, err
	}

	record := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: expiresAt,
	}
	if rotatedID != 0 {
		err = s.refreshTokenRepo.Rotate(ctx, rotatedID, record)
	} else {
		err = s.refreshTokenRepo.Create(ctx, record)
	}
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

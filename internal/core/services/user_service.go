package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eclat-salon/internal/adapters/persistence/models"
	"eclat-salon/internal/adapters/persistence/repositories"
	"eclat-salon/internal/core/domain"
	"eclat-salon/internal/pkg/pagination"
	"eclat-salon/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// User service errors
var (
	ErrOldPasswordWrong    = fmt.Errorf("old password is incorrect: %w", domain.ErrInvalidInput)
	ErrCannotDeleteSelf    = fmt.Errorf("cannot delete your own account: %w", domain.ErrForbidden)
	ErrCannotChangeOwnRole = fmt.Errorf("cannot change your own role: %w", domain.ErrForbidden)
	ErrInvalidRole         = fmt.Errorf("role must be user or admin: %w", domain.ErrInvalidInput)
)

// UserService handles profile and user management business logic
type UserService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	logger           *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		logger:           logger,
	}
}

// ListUsersInput represents list users input
type ListUsersInput struct {
	Page   *pagination.Params
	Role   string
	Search string
}

// UpdateUserByAdminInput represents update user input (for admin)
type UpdateUserByAdminInput struct {
	Name       *string `json:"name" validate:"omitempty,min=2,max=50"`
	Email      *string `json:"email" validate:"omitempty,email,max=100"`
	Phone      *string `json:"phone" validate:"omitempty,phone"`
	IsActive   *bool   `json:"is_active"`
	IsVerified *bool   `json:"is_verified"`
}

// PreferencesInput carries notification preference toggles
type PreferencesInput struct {
	Email      *bool `json:"email"`
	SMS        *bool `json:"sms"`
	Push       *bool `json:"push"`
	Marketing  *bool `json:"marketing"`
	Reminders  *bool `json:"reminders"`
	Newsletter *bool `json:"newsletter"`
}

// UpdateProfileInput represents update profile input (for self)
type UpdateProfileInput struct {
	Name        *string           `json:"name" validate:"omitempty,min=2,max=50"`
	Phone       *string           `json:"phone" validate:"omitempty,phone"`
	Avatar      *string           `json:"avatar" validate:"omitempty,url,max=500"`
	Preferences *PreferencesInput `json:"preferences"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

// ListUsers lists users with pagination
func (s *UserService) ListUsers(ctx context.Context, input *ListUsersInput) ([]*models.UserResponse, *pagination.Meta, error) {
	page := input.Page
	if page == nil {
		page = pagination.New(1, pagination.DefaultLimit, pagination.DefaultLimit)
	}

	users, total, err := s.userRepo.List(ctx, repositories.UserFilter{Role: input.Role, Search: input.Search}, page.Offset, page.Limit)
	if err != nil {
		return nil, nil, err
	}

	out := make([]*models.UserResponse, len(users))
	for i, user := range users {
		out[i] = user.ToResponse()
	}
	return out, pagination.GetMeta(page, total), nil
}

// GetUserByID gets a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// UpdateUserByAdmin updates account fields of a user
func (s *UserService) UpdateUserByAdmin(ctx context.Context, id uint, input *UpdateUserByAdminInput) (*models.UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && !strings.EqualFold(*input.Email, user.Email) {
		exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailAlreadyExists
		}
		user.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.IsVerified != nil {
		user.IsVerified = *input.IsVerified
	}
	deactivated := false
	if input.IsActive != nil {
		deactivated = user.IsActive && !*input.IsActive
		user.IsActive = *input.IsActive
	}

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}

	if deactivated {
		if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, user.ID); err != nil {
			s.logger.Warn("failed to revoke sessions of deactivated user", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}

	return user.ToResponse(), nil
}

// SetRole changes the role of another user
func (s *UserService) SetRole(ctx context.Context, id, adminID uint, role string) (*models.UserResponse, error) {
	if id == adminID {
		return nil, ErrCannotChangeOwnRole
	}
	if !domain.Role(role).Valid() {
		return nil, ErrInvalidRole
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user role changed", zap.Uint("user_id", id), zap.String("role", role), zap.Uint("by", adminID))
	return user.ToResponse(), nil
}

// DeleteUser deletes a user (soft delete)
func (s *UserService) DeleteUser(ctx context.Context, id, adminID uint) error {
	if id == adminID {
		return ErrCannotDeleteSelf
	}

	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}

// GetProfile gets own profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	return s.GetUserByID(ctx, userID)
}

// UpdateProfile updates own profile
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.UserResponse, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Avatar != nil {
		user.Avatar = *input.Avatar
	}
	if p := input.Preferences; p != nil {
		setIf(&user.NotifyEmail, p.Email)
		setIf(&user.NotifySMS, p.SMS)
		setIf(&user.NotifyPush, p.Push)
		setIf(&user.Marketing, p.Marketing)
		setIf(&user.Reminders, p.Reminders)
		setIf(&user.Newsletter, p.Newsletter)
	}

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// ChangePassword changes user's password and ends the other sessions
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.find(ctx, userID)
	if err != nil {
		return err
	}

	if !password.Verify(input.OldPassword, user.Password) {
		return ErrOldPasswordWrong
	}
	if !password.ValidatePassword(input.NewPassword) {
		return ErrWeakPassword
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashed

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info("password changed", zap.Uint("user_id", userID))
	return s.refreshTokenRepo.RevokeAllByUserID(ctx, userID)
}

func (s *UserService) find(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) save(ctx context.Context, user *models.User) error {
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

func setIf(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

package models

import (
	"time"

	"eclat-salon/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"size:50;not null" json:"name"`
	Email      string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Phone      string         `gorm:"size:20" json:"phone"`
	Password   string         `gorm:"size:255;not null" json:"-"`
	Role       string         `gorm:"size:20;default:'user'" json:"role"`
	Avatar     string         `gorm:"size:500" json:"avatar"`
	IsVerified bool           `gorm:"default:false" json:"is_verified"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	LastLogin  *time.Time     `json:"last_login"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Notification preferences
	NotifyEmail bool `gorm:"default:true" json:"notify_email"`
	NotifySMS   bool `gorm:"default:false" json:"notify_sms"`
	NotifyPush  bool `gorm:"default:true" json:"notify_push"`
	Marketing   bool `gorm:"default:false" json:"marketing"`
	Reminders   bool `gorm:"default:true" json:"reminders"`
	Newsletter  bool `gorm:"default:false" json:"newsletter"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == string(domain.RoleAdmin)
}

// UserResponse DTO
type UserResponse struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Role       string     `json:"role"`
	Avatar     string     `json:"avatar,omitempty"`
	IsVerified bool       `json:"is_verified"`
	IsActive   bool       `json:"is_active"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`

	Preferences *UserPreferences `json:"preferences,omitempty"`
}

// UserPreferences groups the notification flags
type UserPreferences struct {
	Email      bool `json:"email"`
	SMS        bool `json:"sms"`
	Push       bool `json:"push"`
	Marketing  bool `json:"marketing"`
	Reminders  bool `json:"reminders"`
	Newsletter bool `json:"newsletter"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		Role:       u.Role,
		Avatar:     u.Avatar,
		IsVerified: u.IsVerified,
		IsActive:   u.IsActive,
		LastLogin:  u.LastLogin,
		CreatedAt:  u.CreatedAt,
		Preferences: &UserPreferences{
			Email:      u.NotifyEmail,
			SMS:        u.NotifySMS,
			Push:       u.NotifyPush,
			Marketing:  u.Marketing,
			Reminders:  u.Reminders,
			Newsletter: u.Newsletter,
		},
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		// Catalog
		&Service{},
		&Staff{},
		&StaffSchedule{},
		// Booking
		&Appointment{},
		&Review{},
		&ReviewHelpful{},
	)
}

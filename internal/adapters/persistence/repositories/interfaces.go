package repositories

import (
	"context"
	"time"

	"eclat-salon/internal/adapters/persistence/models"
)

// UserFilter narrows user listings
type UserFilter struct {
	Role   string
	Search string
}

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter UserFilter, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Rotate(ctx context.Context, oldID uint, next *models.RefreshToken) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
	CountActiveByUserID(ctx context.Context, userID uint) (int64, error)
}

// ServiceFilter narrows service listings
type ServiceFilter struct {
	Category    string
	Search      string
	PopularOnly bool
	ActiveOnly  bool
	MinPrice    *float64
	MaxPrice    *float64
	Sort        string
}

// ServiceRepository defines salon service repository interface
type ServiceRepository interface {
	Create(ctx context.Context, service *models.Service) error
	GetByID(ctx context.Context, id uint, preload ...string) (*models.Service, error)
	Update(ctx context.Context, service *models.Service) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter ServiceFilter, offset, limit int, preload ...string) ([]*models.Service, int64, error)
	ReplaceStaff(ctx context.Context, service *models.Service, staffIDs []uint) error
}

// StaffFilter narrows staff listings
type StaffFilter struct {
	Specialization string
	AvailableOnly  bool
	Search         string
	ServiceID      uint
}

// StaffRepository defines staff repository interface
type StaffRepository interface {
	Create(ctx context.Context, staff *models.Staff) error
	GetByID(ctx context.Context, id uint, preload ...string) (*models.Staff, error)
	Update(ctx context.Context, staff *models.Staff) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter StaffFilter, offset, limit int, preload ...string) ([]*models.Staff, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ReplaceSchedule(ctx context.Context, staffID uint, rows []models.StaffSchedule) error
	ReplaceServices(ctx context.Context, staff *models.Staff, serviceIDs []uint) error
	PerformsService(ctx context.Context, staffID, serviceID uint) (bool, error)
}

// AppointmentFilter narrows appointment listings
type AppointmentFilter struct {
	UserID   uint
	StaffID  uint
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
	Upcoming bool
}

// AppointmentRepository defines appointment repository interface
type AppointmentRepository interface {
	// Create and Update return domain.ErrSlotConflict when the slot key is taken
	Create(ctx context.Context, appt *models.Appointment) error
	Update(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id uint, preload ...string) (*models.Appointment, error)
	List(ctx context.Context, filter AppointmentFilter, offset, limit int, preload ...string) ([]*models.Appointment, int64, error)
	// ListHoldingSlot returns the staff member's slot-holding appointments on date
	ListHoldingSlot(ctx context.Context, staffID uint, date time.Time) ([]*models.Appointment, error)
	ListDueReminders(ctx context.Context, from, to time.Time) ([]*models.Appointment, error)
	MarkReminderSent(ctx context.Context, id uint, at time.Time) error
}

// ReviewFilter narrows review listings
type ReviewFilter struct {
	StaffID   uint
	ServiceID uint
	UserID    uint
	MinRating int
	// VisibleOnly limits to approved public reviews
	VisibleOnly bool
}

// ReviewHook runs inside a review write transaction, after the row is written
// and before its lock is released. before is nil on create, after is nil on delete.
type ReviewHook func(before, after *models.Review)

// ReviewRepository defines review repository interface.
// Writes hold the review row lock for the whole transaction, hook included;
// a review deleted concurrently surfaces as gorm.ErrRecordNotFound.
type ReviewRepository interface {
	// Create returns domain.ErrDuplicateEntry when the appointment already has a review
	Create(ctx context.Context, review *models.Review, hook ReviewHook) error
	GetByID(ctx context.Context, id uint, preload ...string) (*models.Review, error)
	// Edit applies change to the locked row and writes it back; an error from
	// change aborts the edit
	Edit(ctx context.Context, id uint, change func(review *models.Review) error, hook ReviewHook) (*models.Review, error)
	// Delete removes the locked row when check passes
	Delete(ctx context.Context, id uint, check func(review *models.Review) error, hook ReviewHook) error
	List(ctx context.Context, filter ReviewFilter, offset, limit int, preload ...string) ([]*models.Review, int64, error)
	ExistsForAppointment(ctx context.Context, appointmentID uint) (bool, error)
	// AddHelpful records the vote and returns the new count; a repeat vote
	// returns domain.ErrDuplicateEntry
	AddHelpful(ctx context.Context, reviewID, userID uint) (int, error)
	ServiceSummary(ctx context.Context, serviceID uint) (average float64, count int64, err error)
}

// StatusCount is the number of appointments in one status
type StatusCount struct {
	Status string
	Count  int64
}

// StaffStat summarises one staff member's bookings over a period
type StaffStat struct {
	StaffID       uint    `json:"staff_id"`
	Name          string  `json:"name"`
	Bookings      int64   `json:"bookings"`
	RatingAverage float64 `json:"rating_average"`
	RatingCount   int     `json:"rating_count"`
}

// DashboardRepository runs the aggregate queries behind the dashboards.
// Date ranges are half-open: from <= date < to.
type DashboardRepository interface {
	CountClients(ctx context.Context) (int64, error)
	// AppointmentsByStatus counts appointments per status; userID 0 counts everyone's
	AppointmentsByStatus(ctx context.Context, from, to time.Time, userID uint) ([]StatusCount, error)
	CompletedRevenue(ctx context.Context, from, to time.Time) (float64, error)
	BusiestStaff(ctx context.Context, from, to time.Time, limit int) ([]StaffStat, error)
	// UnreviewedCompleted counts the user's completed appointments without a review
	UnreviewedCompleted(ctx context.Context, userID uint) (int64, error)
}

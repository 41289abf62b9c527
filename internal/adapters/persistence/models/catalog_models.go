package models

import (
	"fmt"
	"time"

	"eclat-salon/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Catalog: Services & Staff
// ============================================================

// Service categories
var ServiceCategories = []string{
	"Hair Styling",
	"Nail Art",
	"Facial Treatments",
	"Massage Therapy",
	"Eyebrow & Eyelash",
	"Skincare",
	"Body Treatments",
	"Men's Grooming",
	"Wedding Services",
	"Special Occasions",
}

// Staff specializations
var Specializations = []string{
	"Hair Styling",
	"Hair Cutting",
	"Hair Coloring",
	"Nail Art",
	"Manicures",
	"Pedicures",
	"Facial Treatments",
	"Skincare",
	"Massage Therapy",
	"Relaxation Massage",
	"Therapeutic Massage",
	"Eyebrow Shaping",
	"Eyelash Extensions",
	"Eyebrow Tinting",
	"Bridal Styling",
	"Men's Grooming",
	"Body Treatments",
}

// Service represents services table
type Service struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Title               string         `gorm:"size:100;not null" json:"title"`
	Description         string         `gorm:"type:text;not null" json:"description"`
	ShortDescription    string         `gorm:"size:200" json:"short_description"`
	Category            string         `gorm:"size:50;not null;index" json:"category"`
	Price               float64        `gorm:"type:decimal(10,2);not null;index" json:"price"`
	PriceMin            *float64       `gorm:"type:decimal(10,2)" json:"price_min,omitempty"`
	PriceMax            *float64       `gorm:"type:decimal(10,2)" json:"price_max,omitempty"`
	Duration            int            `gorm:"not null" json:"duration"`
	Images              StringList     `gorm:"type:json" json:"images"`
	IsPopular           bool           `gorm:"default:false;index" json:"is_popular"`
	IsActive            bool           `gorm:"default:true;index" json:"is_active"`
	Tags                StringList     `gorm:"type:json" json:"tags"`
	Requirements        StringList     `gorm:"type:json" json:"requirements"`
	Benefits            StringList     `gorm:"type:json" json:"benefits"`
	BookingNotes        string         `gorm:"size:500" json:"booking_notes"`
	CancellationPolicy  string         `gorm:"size:300;default:'24-hour advance notice required for cancellations'" json:"cancellation_policy"`
	SpecialInstructions string         `gorm:"size:300" json:"special_instructions"`
	CreatedAt           time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Staff []*Staff `gorm:"many2many:staff_services;" json:"staff,omitempty"`
}

func (Service) TableName() string {
	return "services"
}

// FormattedPrice renders the price, e.g. "$45.00"
func (s *Service) FormattedPrice() string {
	return fmt.Sprintf("$%.2f", s.Price)
}

// FormattedDuration renders the duration as "1h 30m", "2h" or "45m"
func (s *Service) FormattedDuration() string {
	h, m := s.Duration/60, s.Duration%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

// ServiceResponse DTO
type ServiceResponse struct {
	*Service
	FormattedPrice    string `json:"formatted_price"`
	FormattedDuration string `json:"formatted_duration"`
}

func (s *Service) ToResponse() *ServiceResponse {
	return &ServiceResponse{
		Service:           s,
		FormattedPrice:    s.FormattedPrice(),
		FormattedDuration: s.FormattedDuration(),
	}
}

// Staff represents staff table
type Staff struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"size:50;not null" json:"name"`
	Email           string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Phone           string         `gorm:"size:20;not null" json:"phone"`
	Specializations StringList     `gorm:"type:json" json:"specializations"`
	Bio             string         `gorm:"type:text" json:"bio"`
	Experience      int            `gorm:"not null;default:0" json:"experience"`
	Avatar          string         `gorm:"size:500" json:"avatar"`
	Portfolio       StringList     `gorm:"type:json" json:"portfolio"`
	Languages       StringList     `gorm:"type:json" json:"languages"`
	RatingAverage   float64        `gorm:"not null;default:0;index" json:"rating_average"`
	RatingCount     int            `gorm:"not null;default:0" json:"rating_count"`
	IsAvailable     bool           `gorm:"default:true;index" json:"is_available"`
	Notes           string         `gorm:"size:500" json:"notes,omitempty"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Schedule []StaffSchedule `gorm:"foreignKey:StaffID;constraint:OnDelete:CASCADE" json:"schedule,omitempty"`
	Services []*Service      `gorm:"many2many:staff_services;" json:"services,omitempty"`
}

func (Staff) TableName() string {
	return "staff"
}

// Rating returns the stored (average, count) pair
func (s *Staff) Rating() domain.StaffRating {
	return domain.StaffRating{Average: s.RatingAverage, Count: s.RatingCount}
}

// ExperienceText renders the experience years for display
func (s *Staff) ExperienceText() string {
	switch s.Experience {
	case 0:
		return "New Professional"
	case 1:
		return "1 Year Experience"
	default:
		return fmt.Sprintf("%d+ Years Experience", s.Experience)
	}
}

// WeeklySchedule converts the loaded schedule rows into a validated domain schedule.
// Rows are checked on every read: the seeder and manual SQL write them without
// going through the staff service, and the slot engine assumes valid days.
func (s *Staff) WeeklySchedule() (domain.WeeklySchedule, error) {
	days := make([]domain.DaySchedule, 0, len(s.Schedule))
	for _, row := range s.Schedule {
		days = append(days, row.ToDomain())
	}
	return domain.NewWeeklySchedule(days...)
}

// StaffResponse DTO
type StaffResponse struct {
	*Staff
	FormattedRating string `json:"formatted_rating"`
	ExperienceText  string `json:"experience_text"`
}

func (s *Staff) ToResponse() *StaffResponse {
	return &StaffResponse{
		Staff:           s,
		FormattedRating: s.Rating().Formatted(),
		ExperienceText:  s.ExperienceText(),
	}
}

// StaffSchedule represents one weekday row of a staff member's schedule
type StaffSchedule struct {
	ID          uint              `gorm:"primaryKey" json:"-"`
	StaffID     uint              `gorm:"not null;uniqueIndex:idx_staff_day" json:"-"`
	Day         string            `gorm:"size:10;not null;uniqueIndex:idx_staff_day" json:"day"`
	IsAvailable bool              `gorm:"default:true" json:"is_available"`
	StartTime   domain.TimeOfDay  `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime     domain.TimeOfDay  `gorm:"type:varchar(5);not null" json:"end_time"`
	BreakStart  *domain.TimeOfDay `gorm:"type:varchar(5)" json:"break_start,omitempty"`
	BreakEnd    *domain.TimeOfDay `gorm:"type:varchar(5)" json:"break_end,omitempty"`
}

func (StaffSchedule) TableName() string {
	return "staff_schedules"
}

// ToDomain maps the row onto the domain day schedule
func (s StaffSchedule) ToDomain() domain.DaySchedule {
	return domain.DaySchedule{
		Day:         domain.Weekday(s.Day),
		IsAvailable: s.IsAvailable,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		BreakStart:  s.BreakStart,
		BreakEnd:    s.BreakEnd,
	}
}

// StaffScheduleFromDomain builds a row for staffID
func StaffScheduleFromDomain(staffID uint, d domain.DaySchedule) StaffSchedule {
	return StaffSchedule{
		StaffID:     staffID,
		Day:         string(d.Day),
		IsAvailable: d.IsAvailable,
		StartTime:   d.StartTime,
		EndTime:     d.EndTime,
		BreakStart:  d.BreakStart,
		BreakEnd:    d.BreakEnd,
	}
}

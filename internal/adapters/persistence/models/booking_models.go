package models

import (
	"fmt"
	"time"

	"eclat-salon/internal/core/domain"
)

// ============================================================
// Booking: Appointments & Reviews
// ============================================================

// DateLayout is the wire and slot-key format of appointment dates
const DateLayout = "2006-01-02"

// Payment methods
var PaymentMethods = []string{"cash", "credit-card", "debit-card", "paypal", "apple-pay", "google-pay"}

// Appointment represents appointments table
type Appointment struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	Reference     string           `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	UserID        uint             `gorm:"not null;index:idx_appt_user_date" json:"user_id"`
	ServiceID     uint             `gorm:"not null;index" json:"service_id"`
	StaffID       uint             `gorm:"not null;index:idx_appt_staff_date" json:"staff_id"`
	Date          time.Time        `gorm:"type:date;not null;index:idx_appt_user_date;index:idx_appt_staff_date" json:"date"`
	Time          domain.TimeOfDay `gorm:"type:varchar(5);not null" json:"time"`
	Duration      int              `gorm:"not null" json:"duration"`
	Status        string           `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Price         float64          `gorm:"type:decimal(10,2);not null" json:"price"`
	PaymentStatus string           `gorm:"size:20;default:'pending';index" json:"payment_status"`
	PaymentMethod string           `gorm:"size:20" json:"payment_method,omitempty"`

	// SlotKey is "staffID|date|time" while the appointment holds its slot and
	// NULL once cancelled; the unique index rejects double booking.
	SlotKey *string `gorm:"size:64;uniqueIndex" json:"-"`

	Comment             string `gorm:"size:500" json:"comment,omitempty"`
	SpecialInstructions string `gorm:"size:300" json:"special_instructions,omitempty"`
	StaffNotes          string `gorm:"type:text" json:"staff_notes,omitempty"`

	ArrivedAt *time.Time `json:"arrived_at,omitempty"`
	IsLate    bool       `gorm:"default:false" json:"is_late"`

	CancelledBy        *string    `gorm:"size:10" json:"cancelled_by,omitempty"`
	CancellationReason string     `gorm:"size:200" json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`

	RescheduledFromDate *time.Time        `gorm:"type:date" json:"rescheduled_from_date,omitempty"`
	RescheduledFromTime *domain.TimeOfDay `gorm:"type:varchar(5)" json:"rescheduled_from_time,omitempty"`
	RescheduledAt       *time.Time        `json:"rescheduled_at,omitempty"`

	ReminderSentAt *time.Time `gorm:"index" json:"reminder_sent_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Service *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Staff   *Staff   `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// SlotKeyFor builds the slot key of a staff member's date and time
func SlotKeyFor(staffID uint, date time.Time, t domain.TimeOfDay) string {
	return fmt.Sprintf("%d|%s|%s", staffID, date.Format(DateLayout), t)
}

// AppointmentStatus returns the typed status
func (a *Appointment) AppointmentStatus() domain.AppointmentStatus {
	return domain.AppointmentStatus(a.Status)
}

// EndTime is the time the appointment finishes
func (a *Appointment) EndTime() domain.TimeOfDay {
	return a.Time + domain.TimeOfDay(a.Duration)
}

// StartsAt combines date and time in loc
func (a *Appointment) StartsAt(loc *time.Location) time.Time {
	y, m, d := a.Date.Date()
	return time.Date(y, m, d, a.Time.Hour(), a.Time.Minute(), 0, 0, loc)
}

// AppointmentResponse DTO
type AppointmentResponse struct {
	*Appointment
	Date          string `json:"date"`
	EndTime       string `json:"end_time"`
	FormattedDate string `json:"formatted_date"`
}

func (a *Appointment) ToResponse() *AppointmentResponse {
	return &AppointmentResponse{
		Appointment:   a,
		Date:          a.Date.Format(DateLayout),
		EndTime:       a.EndTime().String(),
		FormattedDate: a.Date.Format("Monday, January 2, 2006"),
	}
}

// Review tags
var ReviewTags = []string{
	"great-service",
	"friendly-staff",
	"clean-environment",
	"good-value",
	"professional",
	"recommended",
	"quick-service",
	"relaxing",
	"results-exceeded-expectations",
	"will-return",
}

// Review represents reviews table
type Review struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	UserID        uint   `gorm:"not null;index" json:"user_id"`
	AppointmentID uint   `gorm:"not null;uniqueIndex" json:"appointment_id"`
	StaffID       uint   `gorm:"not null;index:idx_review_staff" json:"staff_id"`
	ServiceID     uint   `gorm:"not null;index:idx_review_service" json:"service_id"`
	Overall       int    `gorm:"not null;index" json:"overall"`
	RatingService *int   `json:"rating_service,omitempty"`
	RatingStaff   *int   `json:"rating_staff,omitempty"`
	Atmosphere    *int   `json:"atmosphere,omitempty"`
	Value         *int   `json:"value,omitempty"`
	Comment       string `gorm:"type:text;not null" json:"comment"`

	Photos StringList `gorm:"type:json" json:"photos"`
	Tags   StringList `gorm:"type:json" json:"tags"`

	IsVerified   bool `gorm:"default:false" json:"is_verified"`
	IsApproved   bool `gorm:"default:true;index:idx_review_visible" json:"is_approved"`
	IsPublic     bool `gorm:"default:true;index:idx_review_visible" json:"is_public"`
	HelpfulCount int  `gorm:"not null;default:0" json:"helpful_count"`

	ResponseText string     `gorm:"type:text" json:"response_text,omitempty"`
	RespondedBy  *uint      `json:"responded_by,omitempty"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_review_staff;index:idx_review_service" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	User        *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Staff       *Staff       `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
	Service     *Service     `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}

// RatingText renders stars, e.g. "★★★★☆ (4/5)"
func (r *Review) RatingText() string {
	stars := ""
	for i := 1; i <= domain.MaxRating; i++ {
		if i <= r.Overall {
			stars += "★"
		} else {
			stars += "☆"
		}
	}
	return fmt.Sprintf("%s (%d/5)", stars, r.Overall)
}

// ReviewResponse DTO
type ReviewResponse struct {
	*Review
	RatingText string        `json:"rating_text"`
	User       *ReviewAuthor `json:"user,omitempty"`
}

// ReviewAuthor is the public slice of the reviewing user
type ReviewAuthor struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

func (r *Review) ToResponse() *ReviewResponse {
	resp := &ReviewResponse{
		Review:     r,
		RatingText: r.RatingText(),
	}
	if r.User != nil {
		resp.User = &ReviewAuthor{ID: r.User.ID, Name: r.User.Name, Avatar: r.User.Avatar}
	}
	return resp
}

// ReviewHelpful records one user's helpful vote on a review
type ReviewHelpful struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ReviewID  uint      `gorm:"not null;uniqueIndex:idx_review_user" json:"review_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_review_user" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ReviewHelpful) TableName() string {
	return "review_helpfuls"
}

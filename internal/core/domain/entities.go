package domain

import (
	"fmt"
	"math"
)

// Role represents user role in the system
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// AppointmentStatus is the lifecycle state of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no-show"
)

// statusTransitions lists the legal next states for each status.
// Terminal states have no entry.
var statusTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

// Valid reports whether s is a known status
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// HoldsSlot reports whether an appointment in this status occupies its slot
func (s AppointmentStatus) HoldsSlot() bool {
	return s != StatusCancelled
}

// IsTerminal reports whether no further transitions are allowed
func (s AppointmentStatus) IsTerminal() bool {
	_, ok := statusTransitions[s]
	return !ok
}

// CanTransitionTo checks the transition table
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidStatusTransition when s → next is not allowed
func ValidateTransition(from, to AppointmentStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, to)
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, from, to)
	}
	return nil
}

// CancelledBy identifies who cancelled an appointment
type CancelledBy string

const (
	CancelledByClient CancelledBy = "client"
	CancelledByStaff  CancelledBy = "staff"
	CancelledByAdmin  CancelledBy = "admin"
)

// PaymentStatus values
const (
	PaymentPending           = "pending"
	PaymentPaid              = "paid"
	PaymentRefunded          = "refunded"
	PaymentPartiallyRefunded = "partially-refunded"
)

// MinRating / MaxRating bound every review rating
const (
	MinRating = 1
	MaxRating = 5
)

// ValidRating reports whether r is an integer rating in [1,5]
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// StaffRating is the running (average, count) over a staff member's live reviews.
// Average is zero whenever Count is zero.
type StaffRating struct {
	Average float64
	Count   int
}

// WithAdded returns the rating after one more review of value r
func (s StaffRating) WithAdded(r int) StaffRating {
	n := s.Count + 1
	return StaffRating{
		Average: (s.Average*float64(s.Count) + float64(r)) / float64(n),
		Count:   n,
	}
}

// WithChanged returns the rating after one review changed from oldR to newR
func (s StaffRating) WithChanged(oldR, newR int) (StaffRating, error) {
	if s.Count < 1 {
		return s, fmt.Errorf("%w: rating change with count %d", ErrInconsistentState, s.Count)
	}
	return StaffRating{
		Average: clampAverage(s.Average + float64(newR-oldR)/float64(s.Count)),
		Count:   s.Count,
	}, nil
}

// WithRemoved returns the rating after one review of value r was deleted
func (s StaffRating) WithRemoved(r int) (StaffRating, error) {
	switch {
	case s.Count < 1:
		return s, fmt.Errorf("%w: rating removal with count %d", ErrInconsistentState, s.Count)
	case s.Count == 1:
		return StaffRating{}, nil
	}
	n := s.Count - 1
	return StaffRating{
		Average: clampAverage((s.Average*float64(s.Count) - float64(r)) / float64(n)),
		Count:   n,
	}, nil
}

// Formatted renders the rating for display: one decimal, or "New" without reviews
func (s StaffRating) Formatted() string {
	if s.Count == 0 {
		return "New"
	}
	return fmt.Sprintf("%.1f", s.Average)
}

// clampAverage absorbs float drift at the [0,5] bounds
func clampAverage(v float64) float64 {
	return math.Min(math.Max(v, 0), MaxRating)
}

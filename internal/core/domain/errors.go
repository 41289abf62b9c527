package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// Availability errors
var (
	// ErrInvalidDuration is returned when a non-positive slot duration is requested
	ErrInvalidDuration = errors.New("invalid slot duration")
	// ErrInvalidSchedule is returned when a day schedule violates its chronological bounds
	ErrInvalidSchedule = errors.New("invalid schedule")
)

// Booking & rating errors
var (
	// ErrSlotConflict means another non-cancelled appointment already holds the slot.
	// Callers should re-query available slots and let the client pick again.
	ErrSlotConflict = errors.New("slot already booked")
	// ErrInconsistentState means rating bookkeeping is out of sync with the reviews table
	ErrInconsistentState = errors.New("inconsistent rating state")
	// ErrInvalidStatusTransition is returned for a disallowed appointment status change
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

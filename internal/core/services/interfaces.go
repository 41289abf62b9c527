package services

import (
	"context"

	"eclat-salon/internal/adapters/persistence/models"
	"eclat-salon/internal/core/domain"
)

// Note: SlotCache is implemented by internal/adapters/cache
// Note: Notifier is implemented by NotificationService

// SlotCache stores computed free slots per staff member, date and duration
type SlotCache interface {
	Get(ctx context.Context, staffID uint, date string, duration int) ([]string, bool)
	Set(ctx context.Context, staffID uint, date string, duration int, slots []string)
	// Invalidate drops one date, or every date of the staff member when date is empty
	Invalidate(ctx context.Context, staffID uint, date string)
}

// Notifier sends appointment emails; failures are logged, never returned to the booking flow
type Notifier interface {
	BookingConfirmed(appt *models.Appointment)
	BookingCancelled(appt *models.Appointment)
	BookingRescheduled(appt *models.Appointment)
	Reminder(appt *models.Appointment) error
}

// RatingAggregator receives review events
type RatingAggregator interface {
	OnReviewCreated(ctx context.Context, staffID uint, overall int) (domain.StaffRating, error)
	OnReviewRatingChanged(ctx context.Context, staffID uint, oldRating, newRating int) (domain.StaffRating, error)
	OnReviewDeleted(ctx context.Context, staffID uint, overall int) (domain.StaffRating, error)
	Reconcile(ctx context.Context, staffID uint) (domain.StaffRating, error)
	ReconcileAll(ctx context.Context) (int, error)
}

// noopCache is used when no slot cache is wired
type noopCache struct{}

func (noopCache) Get(context.Context, uint, string, int) ([]string, bool) { return nil, false }
func (noopCache) Set(context.Context, uint, string, int, []string)        {}
func (noopCache) Invalidate(context.Context, uint, string)                {}

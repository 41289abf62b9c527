package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eclat-salon/internal/adapters/persistence/models"
	"eclat-salon/internal/adapters/persistence/repositories"
	"eclat-salon/internal/core/domain"
	"eclat-salon/internal/pkg/metrics"
	"eclat-salon/internal/pkg/pagination"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Appointment errors
var (
	ErrAppointmentNotFound = fmt.Errorf("appointment %w", domain.ErrNotFound)
	ErrNotAppointmentOwner = fmt.Errorf("appointment belongs to another user: %w", domain.ErrForbidden)
	ErrCancelTooLate       = fmt.Errorf("appointment can no longer be cancelled online: %w", domain.ErrInvalidInput)
	ErrNotReschedulable    = fmt.Errorf("only pending or confirmed appointments can be rescheduled: %w", domain.ErrInvalidStatusTransition)
)

// lateArrivalGrace is how long after the start a check-in still counts as on time
const lateArrivalGrace = 15 * time.Minute

// AppointmentService handles booking and the appointment lifecycle
type AppointmentService struct {
	apptRepo     repositories.AppointmentRepository
	userRepo     repositories.UserRepository
	availability *AvailabilityService
	notifier     Notifier
	metrics      *metrics.Metrics
	cancelNotice time.Duration
	logger       *zap.Logger
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	apptRepo repositories.AppointmentRepository,
	userRepo repositories.UserRepository,
	availability *AvailabilityService,
	notifier Notifier,
	m *metrics.Metrics,
	cancelNotice time.Duration,
	logger *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		apptRepo:     apptRepo,
		userRepo:     userRepo,
		availability: availability,
		notifier:     notifier,
		metrics:      m,
		cancelNotice: cancelNotice,
		logger:       logger,
	}
}

// BookInput represents a booking request
type BookInput struct {
	ServiceID           uint   `json:"service_id" validate:"required"`
	StaffID             uint   `json:"staff_id" validate:"required"`
	Date                string `json:"date" validate:"required,datetime=2006-01-02"`
	Time                string `json:"time" validate:"required,hhmm"`
	Comment             string `json:"comment" validate:"omitempty,max=500"`
	SpecialInstructions string `json:"special_instructions" validate:"omitempty,max=300"`
	PaymentMethod       string `json:"payment_method" validate:"omitempty,oneof=cash credit-card debit-card paypal apple-pay google-pay"`
}

// RescheduleInput moves an appointment; StaffID zero keeps the current staff member
type RescheduleInput struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Time    string `json:"time" validate:"required,hhmm"`
	StaffID uint   `json:"staff_id"`
}

// CancelInput carries the optional cancellation reason
type CancelInput struct {
	Reason string `json:"reason" validate:"omitempty,max=200"`
}

// UpdateStatusInput represents an administrative status change
type UpdateStatusInput struct {
	Status        string  `json:"status" validate:"required,oneof=pending confirmed completed cancelled no-show"`
	PaymentStatus *string `json:"payment_status" validate:"omitempty,oneof=pending paid refunded partially-refunded"`
	StaffNotes    *string `json:"staff_notes" validate:"omitempty,max=2000"`
	Reason        string  `json:"reason" validate:"omitempty,max=200"`
}

// ListAppointmentsInput represents list appointments input
type ListAppointmentsInput struct {
	Page     *pagination.Params
	UserID   uint
	StaffID  uint
	Status   string
	DateFrom string
	DateTo   string
	Upcoming bool
	Include  string
}

// Actor is the authenticated caller of an appointment operation
type Actor struct {
	UserID  uint
	IsAdmin bool
}

// Book creates a pending appointment in a free slot
func (s *AppointmentService) Book(ctx context.Context, userID uint, input *BookInput) (*models.AppointmentResponse, error) {
	appt, err := s.book(ctx, userID, input)
	switch {
	case errors.Is(err, domain.ErrSlotConflict):
		s.metrics.Booking(metrics.BookingConflict)
		return nil, err
	case err != nil:
		s.metrics.Booking(metrics.BookingRejected)
		return nil, err
	}
	s.metrics.Booking(metrics.BookingCreated)

	s.logger.Info("appointment booked",
		zap.Uint("appointment_id", appt.ID),
		zap.Uint("staff_id", appt.StaffID),
		zap.String("slot", *appt.SlotKey),
	)

	if user, err := s.userRepo.GetByID(ctx, userID); err == nil {
		appt.User = user
		s.notifier.BookingConfirmed(appt)
	}
	return appt.ToResponse(), nil
}

func (s *AppointmentService) book(ctx context.Context, userID uint, input *BookInput) (*models.Appointment, error) {
	date, err := s.availability.ParseDate(input.Date)
	if err != nil {
		return nil, err
	}
	t, err := domain.ParseTimeOfDay(input.Time)
	if err != nil {
		return nil, err
	}

	staff, err := s.availability.loadStaff(ctx, input.StaffID)
	if err != nil {
		return nil, err
	}
	svc, err := s.availability.bookableService(ctx, staff.ID, input.ServiceID)
	if err != nil {
		return nil, err
	}
	if err := s.availability.checkBookable(ctx, staff, date, t, svc.Duration, 0); err != nil {
		return nil, err
	}

	key := models.SlotKeyFor(staff.ID, date, t)
	appt := &models.Appointment{
		Reference:           uuid.New().String(),
		UserID:              userID,
		ServiceID:           svc.ID,
		StaffID:             staff.ID,
		Date:                date,
		Time:                t,
		Duration:            svc.Duration,
		Status:              string(domain.StatusPending),
		Price:               svc.Price,
		PaymentStatus:       domain.PaymentPending,
		PaymentMethod:       input.PaymentMethod,
		SlotKey:             &key,
		Comment:             input.Comment,
		SpecialInstructions: input.SpecialInstructions,
	}
	if err := s.apptRepo.Create(ctx, appt); err != nil {
		return nil, err
	}
	s.availability.Invalidate(ctx, staff.ID, input.Date)

	staff.Schedule = nil
	appt.Staff = staff
	appt.Service = svc
	return appt, nil
}

// Get returns one appointment to its owner or an admin
func (s *AppointmentService) Get(ctx context.Context, id uint, actor Actor, include string) (*models.AppointmentResponse, error) {
	preload, err := parseInclude(include, appointmentIncludes)
	if err != nil {
		return nil, err
	}
	appt, err := s.find(ctx, id, actor, preload...)
	if err != nil {
		return nil, err
	}
	return appt.ToResponse(), nil
}

// ListMine lists the caller's appointments
func (s *AppointmentService) ListMine(ctx context.Context, userID uint, input *ListAppointmentsInput) ([]*models.AppointmentResponse, *pagination.Meta, error) {
	input.UserID = userID
	return s.List(ctx, input)
}

// List lists appointments with filters
func (s *AppointmentService) List(ctx context.Context, input *ListAppointmentsInput) ([]*models.AppointmentResponse, *pagination.Meta, error) {
	preload, err := parseInclude(input.Include, appointmentIncludes)
	if err != nil {
		return nil, nil, err
	}
	if input.Status != "" && !domain.AppointmentStatus(input.Status).Valid() {
		return nil, nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, input.Status)
	}
	page := input.Page
	if page == nil {
		page = pagination.New(1, pagination.DefaultLimit, pagination.DefaultLimit)
	}

	filter := repositories.AppointmentFilter{
		UserID:   input.UserID,
		StaffID:  input.StaffID,
		Status:   input.Status,
		Upcoming: input.Upcoming,
	}
	if input.DateFrom != "" {
		d, err := s.availability.ParseDate(input.DateFrom)
		if err != nil {
			return nil, nil, err
		}
		filter.DateFrom = &d
	}
	if input.DateTo != "" {
		d, err := s.availability.ParseDate(input.DateTo)
		if err != nil {
			return nil, nil, err
		}
		filter.DateTo = &d
	}

	appts, total, err := s.apptRepo.List(ctx, filter, page.Offset, page.Limit, preload...)
	if err != nil {
		return nil, nil, err
	}

	out := make([]*models.AppointmentResponse, len(appts))
	for i, appt := range appts {
		out[i] = appt.ToResponse()
	}
	return out, pagination.GetMeta(page, total), nil
}

// Cancel cancels an appointment and frees its slot. Clients must respect
// the configured notice period; admins are exempt.
func (s *AppointmentService) Cancel(ctx context.Context, id uint, actor Actor, input *CancelInput) (*models.AppointmentResponse, error) {
	appt, err := s.find(ctx, id, actor, "User", "Service", "Staff")
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateTransition(appt.AppointmentStatus(), domain.StatusCancelled); err != nil {
		return nil, err
	}

	now := s.availability.now()
	if !actor.IsAdmin && s.cancelNotice > 0 && appt.StartsAt(s.availability.loc).Sub(now) < s.cancelNotice {
		return nil, ErrCancelTooLate
	}

	by := domain.CancelledByClient
	if actor.IsAdmin {
		by = domain.CancelledByAdmin
	}
	s.markCancelled(appt, by, input.Reason, now)

	if err := s.apptRepo.Update(ctx, appt); err != nil {
		return nil, err
	}
	s.availability.Invalidate(ctx, appt.StaffID, appt.Date.Format(models.DateLayout))
	s.metrics.Cancellation()
	s.notifier.BookingCancelled(appt)

	s.logger.Info("appointment cancelled", zap.Uint("appointment_id", appt.ID), zap.String("by", string(by)))
	return appt.ToResponse(), nil
}

// Reschedule moves an appointment to another free slot
func (s *AppointmentService) Reschedule(ctx context.Context, id uint, actor Actor, input *RescheduleInput) (*models.AppointmentResponse, error) {
	appt, err := s.find(ctx, id, actor, "User", "Service")
	if err != nil {
		return nil, err
	}
	status := appt.AppointmentStatus()
	if status != domain.StatusPending && status != domain.StatusConfirmed {
		return nil, ErrNotReschedulable
	}

	date, err := s.availability.ParseDate(input.Date)
	if err != nil {
		return nil, err
	}
	t, err := domain.ParseTimeOfDay(input.Time)
	if err != nil {
		return nil, err
	}

	staffID := appt.StaffID
	if input.StaffID != 0 {
		staffID = input.StaffID
	}
	staff, err := s.availability.loadStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if staffID != appt.StaffID {
		if _, err := s.availability.bookableService(ctx, staffID, appt.ServiceID); err != nil {
			return nil, err
		}
	}
	if err := s.availability.checkBookable(ctx, staff, date, t, appt.Duration, appt.ID); err != nil {
		return nil, err
	}

	oldStaff, oldDate, oldTime := appt.StaffID, appt.Date, appt.Time
	now := s.availability.now()
	key := models.SlotKeyFor(staffID, date, t)

	appt.RescheduledFromDate = &oldDate
	appt.RescheduledFromTime = &oldTime
	appt.RescheduledAt = &now
	appt.StaffID = staffID
	appt.Date = date
	appt.Time = t
	appt.SlotKey = &key
	appt.ReminderSentAt = nil

	if err := s.apptRepo.Update(ctx, appt); err != nil {
		return nil, err
	}
	s.availability.Invalidate(ctx, oldStaff, oldDate.Format(models.DateLayout))
	s.availability.Invalidate(ctx, staffID, input.Date)

	staff.Schedule = nil
	appt.Staff = staff
	s.notifier.BookingRescheduled(appt)

	s.logger.Info("appointment rescheduled", zap.Uint("appointment_id", appt.ID), zap.String("slot", key))
	return appt.ToResponse(), nil
}

// UpdateStatus applies an administrative status change checked against the transition table
func (s *AppointmentService) UpdateStatus(ctx context.Context, id uint, input *UpdateStatusInput) (*models.AppointmentResponse, error) {
	appt, err := s.find(ctx, id, Actor{IsAdmin: true})
	if err != nil {
		return nil, err
	}

	next := domain.AppointmentStatus(input.Status)
	cancelled := false
	if next != appt.AppointmentStatus() {
		if err := domain.ValidateTransition(appt.AppointmentStatus(), next); err != nil {
			return nil, err
		}
		if next == domain.StatusCancelled {
			s.markCancelled(appt, domain.CancelledByAdmin, input.Reason, s.availability.now())
			cancelled = true
		} else {
			appt.Status = string(next)
		}
	}
	if input.PaymentStatus != nil {
		appt.PaymentStatus = *input.PaymentStatus
	}
	if input.StaffNotes != nil {
		appt.StaffNotes = *input.StaffNotes
	}

	if err := s.apptRepo.Update(ctx, appt); err != nil {
		return nil, err
	}
	if cancelled {
		s.availability.Invalidate(ctx, appt.StaffID, appt.Date.Format(models.DateLayout))
		s.metrics.Cancellation()
	}

	s.logger.Info("appointment status updated", zap.Uint("appointment_id", appt.ID), zap.String("status", appt.Status))
	return appt.ToResponse(), nil
}

// CheckIn records the client's arrival
func (s *AppointmentService) CheckIn(ctx context.Context, id uint) (*models.AppointmentResponse, error) {
	appt, err := s.find(ctx, id, Actor{IsAdmin: true})
	if err != nil {
		return nil, err
	}
	status := appt.AppointmentStatus()
	if status != domain.StatusPending && status != domain.StatusConfirmed {
		return nil, fmt.Errorf("%w: cannot check in a %s appointment", domain.ErrInvalidStatusTransition, status)
	}

	now := s.availability.now()
	appt.ArrivedAt = &now
	appt.IsLate = now.After(appt.StartsAt(s.availability.loc).Add(lateArrivalGrace))

	if err := s.apptRepo.Update(ctx, appt); err != nil {
		return nil, err
	}
	return appt.ToResponse(), nil
}

// SendReminder emails one appointment reminder and stamps it
func (s *AppointmentService) SendReminder(ctx context.Context, appt *models.Appointment) error {
	if appt.User != nil && !appt.User.Reminders {
		return nil
	}
	if err := s.notifier.Reminder(appt); err != nil {
		return err
	}
	s.metrics.ReminderSent()
	return s.apptRepo.MarkReminderSent(ctx, appt.ID, s.availability.now())
}

// DueReminders lists appointments starting within lead that still need a reminder
func (s *AppointmentService) DueReminders(ctx context.Context, lead time.Duration) ([]*models.Appointment, error) {
	now := s.availability.now().In(s.availability.loc)
	until := now.Add(lead)

	appts, err := s.apptRepo.ListDueReminders(ctx, midnight(now), until)
	if err != nil {
		return nil, err
	}

	due := make([]*models.Appointment, 0, len(appts))
	for _, appt := range appts {
		start := appt.StartsAt(s.availability.loc)
		if start.After(now) && !start.After(until) {
			due = append(due, appt)
		}
	}
	return due, nil
}

func (s *AppointmentService) markCancelled(appt *models.Appointment, by domain.CancelledBy, reason string, at time.Time) {
	who := string(by)
	appt.Status = string(domain.StatusCancelled)
	appt.CancelledBy = &who
	appt.CancellationReason = reason
	appt.CancelledAt = &at
	appt.SlotKey = nil
}

// find loads an appointment visible to actor
func (s *AppointmentService) find(ctx context.Context, id uint, actor Actor, preload ...string) (*models.Appointment, error) {
	appt, err := s.apptRepo.GetByID(ctx, id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	if !actor.IsAdmin && appt.UserID != actor.UserID {
		return nil, ErrNotAppointmentOwner
	}
	return appt, nil
}

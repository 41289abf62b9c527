package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"eclat-salon/internal/adapters/persistence/models"
	"eclat-salon/internal/adapters/persistence/repositories"
	"eclat-salon/internal/core/availability"
	"eclat-salon/internal/core/domain"
	"eclat-salon/internal/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Availability errors
var (
	ErrStaffNotFound        = fmt.Errorf("staff member %w", domain.ErrNotFound)
	ErrInvalidDate          = fmt.Errorf("date must be YYYY-MM-DD: %w", domain.ErrInvalidInput)
	ErrDurationRequired     = fmt.Errorf("service_id or duration is required: %w", domain.ErrInvalidDuration)
	ErrStaffDoesNotPerform  = fmt.Errorf("staff member does not perform this service: %w", domain.ErrInvalidInput)
	ErrStaffUnavailable     = fmt.Errorf("staff member is not taking bookings: %w", domain.ErrInvalidInput)
	ErrNotAnAvailableSlot   = fmt.Errorf("time is not one of the staff member's slots: %w", domain.ErrInvalidInput)
	ErrAppointmentInThePast = fmt.Errorf("appointment must be in the future: %w", domain.ErrInvalidInput)
)

// SlotsResult is the free-slot listing of one staff member on one date
type SlotsResult struct {
	StaffID  uint           `json:"staff_id"`
	Date     string         `json:"date"`
	Day      domain.Weekday `json:"day"`
	Duration int            `json:"duration"`
	Slots    []string       `json:"slots"`
}

// AvailabilityService answers slot and availability queries against stored schedules
type AvailabilityService struct {
	staffRepo   repositories.StaffRepository
	serviceRepo repositories.ServiceRepository
	apptRepo    repositories.AppointmentRepository
	cache       SlotCache
	metrics     *metrics.Metrics
	loc         *time.Location
	logger      *zap.Logger
	now         func() time.Time
}

// NewAvailabilityService creates a new availability service; cache may be nil
func NewAvailabilityService(
	staffRepo repositories.StaffRepository,
	serviceRepo repositories.ServiceRepository,
	apptRepo repositories.AppointmentRepository,
	cache SlotCache,
	m *metrics.Metrics,
	loc *time.Location,
	logger *zap.Logger,
) *AvailabilityService {
	if cache == nil {
		cache = noopCache{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &AvailabilityService{
		staffRepo:   staffRepo,
		serviceRepo: serviceRepo,
		apptRepo:    apptRepo,
		cache:       cache,
		metrics:     m,
		loc:         loc,
		logger:      logger,
		now:         time.Now,
	}
}

// ParseDate reads a YYYY-MM-DD calendar date in the salon timezone
func (s *AvailabilityService) ParseDate(raw string) (time.Time, error) {
	d, err := time.ParseInLocation(models.DateLayout, raw, s.loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// Slots lists the free start times of a staff member on date. The slot
// length comes from the service when serviceID is set, otherwise from duration.
func (s *AvailabilityService) Slots(ctx context.Context, staffID uint, date string, serviceID uint, duration int) (*SlotsResult, error) {
	day, err := s.ParseDate(date)
	if err != nil {
		return nil, err
	}

	staff, err := s.loadStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}

	if serviceID != 0 {
		svc, err := s.bookableService(ctx, staff.ID, serviceID)
		if err != nil {
			return nil, err
		}
		duration = svc.Duration
	}
	if duration == 0 {
		return nil, ErrDurationRequired
	}

	result := &SlotsResult{
		StaffID:  staff.ID,
		Date:     day.Format(models.DateLayout),
		Day:      domain.WeekdayOf(day),
		Duration: duration,
		Slots:    []string{},
	}

	now := s.now().In(s.loc)
	today := midnight(now)
	if !staff.IsAvailable || day.Before(today) {
		return result, nil
	}

	free, err := s.freeSlots(ctx, staff, day, duration)
	if err != nil {
		return nil, err
	}

	seq := slices.Values(free)
	if day.Equal(today) {
		seq = availability.NotBefore(seq, domain.TimeOfDay(now.Hour()*60+now.Minute()+1))
	}
	result.Slots = availability.Format(seq)
	return result, nil
}

// IsAvailableAt reports whether the staff member works at the given weekday and time
func (s *AvailabilityService) IsAvailableAt(ctx context.Context, staffID uint, day, at string) (bool, error) {
	weekday, t, err := parseDayTime(day, at)
	if err != nil {
		return false, err
	}

	staff, err := s.loadStaff(ctx, staffID)
	if err != nil {
		return false, err
	}
	return s.worksAt(staff, weekday, t), nil
}

// AvailableStaff lists the staff members offering serviceID who work at day and time
func (s *AvailabilityService) AvailableStaff(ctx context.Context, serviceID uint, day, at string) ([]*models.StaffResponse, error) {
	weekday, t, err := parseDayTime(day, at)
	if err != nil {
		return nil, err
	}

	filter := repositories.StaffFilter{AvailableOnly: true, ServiceID: serviceID}
	staff, _, err := s.staffRepo.List(ctx, filter, 0, 100, "Schedule")
	if err != nil {
		return nil, err
	}

	out := make([]*models.StaffResponse, 0, len(staff))
	for _, member := range staff {
		if !s.worksAt(member, weekday, t) {
			continue
		}
		member.Schedule = nil
		out = append(out, member.ToResponse())
	}
	return out, nil
}

// Invalidate drops cached slots of a staff member; an empty date drops every date
func (s *AvailabilityService) Invalidate(ctx context.Context, staffID uint, date string) {
	s.cache.Invalidate(ctx, staffID, date)
}

// checkBookable verifies that t on date is one of the staff member's slots
// and that no slot-holding appointment other than exclude overlaps it
func (s *AvailabilityService) checkBookable(ctx context.Context, staff *models.Staff, date time.Time, t domain.TimeOfDay, duration int, exclude uint) error {
	if !staff.IsAvailable {
		return ErrStaffUnavailable
	}

	now := s.now().In(s.loc)
	start := time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, s.loc)
	if !start.After(now) {
		return ErrAppointmentInThePast
	}

	ws, err := staff.WeeklySchedule()
	if err != nil {
		return err
	}
	slots, err := availability.AvailableSlots(ws, domain.WeekdayOf(date), duration)
	if err != nil {
		return err
	}
	if !availability.Contains(slots, t) {
		return ErrNotAnAvailableSlot
	}

	holding, err := s.apptRepo.ListHoldingSlot(ctx, staff.ID, date)
	if err != nil {
		return err
	}
	end := t + domain.TimeOfDay(duration)
	for _, appt := range holding {
		if appt.ID == exclude {
			continue
		}
		if busyInterval(appt).Overlaps(t, end) {
			return domain.ErrSlotConflict
		}
	}
	return nil
}

// freeSlots is the full-day slot list minus slot-holding appointments, cached per date
func (s *AvailabilityService) freeSlots(ctx context.Context, staff *models.Staff, date time.Time, duration int) ([]domain.TimeOfDay, error) {
	key := date.Format(models.DateLayout)
	if cached, ok := s.cache.Get(ctx, staff.ID, key, duration); ok {
		if slots, err := parseSlots(cached); err == nil {
			s.metrics.SlotCache(true)
			return slots, nil
		}
	}
	s.metrics.SlotCache(false)

	ws, err := staff.WeeklySchedule()
	if err != nil {
		return nil, err
	}
	all, err := availability.AvailableSlots(ws, domain.WeekdayOf(date), duration)
	if err != nil {
		return nil, err
	}

	holding, err := s.apptRepo.ListHoldingSlot(ctx, staff.ID, date)
	if err != nil {
		return nil, err
	}
	busy := make([]availability.Interval, len(holding))
	for i, appt := range holding {
		busy[i] = busyInterval(appt)
	}

	free := slices.Collect(availability.FreeSlots(all, duration, busy))
	s.cache.Set(ctx, staff.ID, key, duration, availability.Format(slices.Values(free)))
	return free, nil
}

func (s *AvailabilityService) worksAt(staff *models.Staff, day domain.Weekday, t domain.TimeOfDay) bool {
	if !staff.IsAvailable {
		return false
	}
	ws, err := staff.WeeklySchedule()
	if err != nil {
		s.logger.Warn("stored schedule is invalid", zap.Uint("staff_id", staff.ID), zap.Error(err))
		return false
	}
	return availability.IsAvailableAt(ws, day, t)
}

func (s *AvailabilityService) loadStaff(ctx context.Context, id uint) (*models.Staff, error) {
	staff, err := s.staffRepo.GetByID(ctx, id, "Schedule")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return staff, nil
}

// bookableService loads an active service the staff member performs
func (s *AvailabilityService) bookableService(ctx context.Context, staffID, serviceID uint) (*models.Service, error) {
	svc, err := s.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	if !svc.IsActive {
		return nil, ErrServiceInactive
	}

	ok, err := s.staffRepo.PerformsService(ctx, staffID, serviceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrStaffDoesNotPerform
	}
	return svc, nil
}

func busyInterval(appt *models.Appointment) availability.Interval {
	return availability.Interval{Start: appt.Time, End: appt.EndTime()}
}

func parseDayTime(day, at string) (domain.Weekday, domain.TimeOfDay, error) {
	weekday, err := domain.ParseWeekday(day)
	if err != nil {
		return "", 0, err
	}
	t, err := domain.ParseTimeOfDay(at)
	if err != nil {
		return "", 0, err
	}
	return weekday, t, nil
}

func parseSlots(raw []string) ([]domain.TimeOfDay, error) {
	out := make([]domain.TimeOfDay, len(raw))
	for i, s := range raw {
		t, err := domain.ParseTimeOfDay(s)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

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

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Staff errors
var (
	ErrStaffEmailTaken        = fmt.Errorf("staff email already registered: %w", domain.ErrDuplicateEntry)
	ErrInvalidSpecialization  = fmt.Errorf("unknown specialization: %w", domain.ErrInvalidInput)
	ErrSpecializationRequired = fmt.Errorf("at least one specialization is required: %w", domain.ErrInvalidInput)
)

// StaffService handles staff profiles, schedules and rating maintenance
type StaffService struct {
	staffRepo    repositories.StaffRepository
	availability *AvailabilityService
	ratings      RatingAggregator
	logger       *zap.Logger
}

// NewStaffService creates a new staff service
func NewStaffService(
	staffRepo repositories.StaffRepository,
	availability *AvailabilityService,
	ratings RatingAggregator,
	logger *zap.Logger,
) *StaffService {
	return &StaffService{
		staffRepo:    staffRepo,
		availability: availability,
		ratings:      ratings,
		logger:       logger,
	}
}

// DayScheduleInput is one weekday of a staff schedule
type DayScheduleInput struct {
	Day         string            `json:"day" validate:"required,weekday"`
	IsAvailable *bool             `json:"is_available"`
	StartTime   domain.TimeOfDay  `json:"start_time"`
	EndTime     domain.TimeOfDay  `json:"end_time"`
	BreakStart  *domain.TimeOfDay `json:"break_start"`
	BreakEnd    *domain.TimeOfDay `json:"break_end"`
}

// StaffInput carries the writable fields of a staff member.
// Pointer fields left nil are unchanged on update.
type StaffInput struct {
	Name            *string             `json:"name" validate:"omitempty,min=2,max=50"`
	Email           *string             `json:"email" validate:"omitempty,email,max=100"`
	Phone           *string             `json:"phone" validate:"omitempty,phone"`
	Specializations *[]string           `json:"specializations" validate:"omitempty,max=10"`
	Bio             *string             `json:"bio" validate:"omitempty,max=500"`
	Experience      *int                `json:"experience" validate:"omitempty,min=0,max=50"`
	Avatar          *string             `json:"avatar" validate:"omitempty,url,max=500"`
	Portfolio       *[]string           `json:"portfolio" validate:"omitempty,max=20,dive,url"`
	Languages       *[]string           `json:"languages" validate:"omitempty,max=10"`
	IsAvailable     *bool               `json:"is_available"`
	Notes           *string             `json:"notes" validate:"omitempty,max=500"`
	ServiceIDs      *[]uint             `json:"service_ids"`
	Schedule        *[]DayScheduleInput `json:"schedule" validate:"omitempty,max=7,dive"`
}

// ListStaffInput represents list staff input
type ListStaffInput struct {
	Page           *pagination.Params
	Specialization string
	AvailableOnly  bool
	Search         string
	ServiceID      uint
	Include        string
}

// Specializations lists the accepted staff specializations
func (s *StaffService) Specializations() []string {
	return models.Specializations
}

// ListStaff lists staff members, best rated first
func (s *StaffService) ListStaff(ctx context.Context, input *ListStaffInput) ([]*models.StaffResponse, *pagination.Meta, error) {
	preload, err := parseInclude(input.Include, staffIncludes)
	if err != nil {
		return nil, nil, err
	}
	page := input.Page
	if page == nil {
		page = pagination.New(1, pagination.DefaultLimit, pagination.DefaultLimit)
	}

	filter := repositories.StaffFilter{
		Specialization: input.Specialization,
		AvailableOnly:  input.AvailableOnly,
		Search:         input.Search,
		ServiceID:      input.ServiceID,
	}
	staff, total, err := s.staffRepo.List(ctx, filter, page.Offset, page.Limit, preload...)
	if err != nil {
		return nil, nil, err
	}

	out := make([]*models.StaffResponse, len(staff))
	for i, member := range staff {
		out[i] = member.ToResponse()
	}
	return out, pagination.GetMeta(page, total), nil
}

// GetStaff gets a staff member by ID
func (s *StaffService) GetStaff(ctx context.Context, id uint, include string) (*models.StaffResponse, error) {
	preload, err := parseInclude(include, staffIncludes)
	if err != nil {
		return nil, err
	}
	staff, err := s.find(ctx, id, preload...)
	if err != nil {
		return nil, err
	}
	return staff.ToResponse(), nil
}

// CreateStaff creates a staff member with an optional schedule and service links
func (s *StaffService) CreateStaff(ctx context.Context, input *StaffInput) (*models.StaffResponse, error) {
	if input.Name == nil || input.Email == nil || input.Phone == nil {
		return nil, fmt.Errorf("%w: name, email and phone are required", domain.ErrInvalidInput)
	}
	if input.Specializations == nil || len(*input.Specializations) == 0 {
		return nil, ErrSpecializationRequired
	}

	exists, err := s.staffRepo.ExistsByEmail(ctx, *input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrStaffEmailTaken
	}

	staff := &models.Staff{IsAvailable: true}
	if err := applyStaffInput(staff, input); err != nil {
		return nil, err
	}
	if input.Schedule != nil {
		rows, err := scheduleRows(0, *input.Schedule)
		if err != nil {
			return nil, err
		}
		staff.Schedule = rows
	}

	if err := s.staffRepo.Create(ctx, staff); err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return nil, ErrStaffEmailTaken
		}
		return nil, err
	}
	if input.ServiceIDs != nil {
		if err := s.staffRepo.ReplaceServices(ctx, staff, *input.ServiceIDs); err != nil {
			return nil, err
		}
	}

	s.logger.Info("staff created", zap.Uint("staff_id", staff.ID), zap.String("name", staff.Name))
	return staff.ToResponse(), nil
}

// UpdateStaff applies a partial profile update; a schedule in the input replaces the stored one
func (s *StaffService) UpdateStaff(ctx context.Context, id uint, input *StaffInput) (*models.StaffResponse, error) {
	staff, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && !strings.EqualFold(*input.Email, staff.Email) {
		exists, err := s.staffRepo.ExistsByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrStaffEmailTaken
		}
	}
	if input.Specializations != nil && len(*input.Specializations) == 0 {
		return nil, ErrSpecializationRequired
	}
	wasAvailable := staff.IsAvailable
	if err := applyStaffInput(staff, input); err != nil {
		return nil, err
	}

	if err := s.staffRepo.Update(ctx, staff); err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return nil, ErrStaffEmailTaken
		}
		return nil, err
	}
	if input.ServiceIDs != nil {
		if err := s.staffRepo.ReplaceServices(ctx, staff, *input.ServiceIDs); err != nil {
			return nil, err
		}
	}
	if input.Schedule != nil {
		if _, err := s.SetSchedule(ctx, id, *input.Schedule); err != nil {
			return nil, err
		}
	} else if wasAvailable != staff.IsAvailable {
		s.availability.Invalidate(ctx, id, "")
	}

	return staff.ToResponse(), nil
}

// SetSchedule validates and replaces the whole weekly schedule
func (s *StaffService) SetSchedule(ctx context.Context, id uint, days []DayScheduleInput) ([]models.StaffSchedule, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	rows, err := scheduleRows(id, days)
	if err != nil {
		return nil, err
	}
	if err := s.staffRepo.ReplaceSchedule(ctx, id, rows); err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return nil, fmt.Errorf("%w: duplicate weekday", domain.ErrInvalidSchedule)
		}
		return nil, err
	}
	s.availability.Invalidate(ctx, id, "")

	s.logger.Info("staff schedule replaced", zap.Uint("staff_id", id), zap.Int("days", len(rows)))
	return rows, nil
}

// DeleteStaff soft deletes a staff member
func (s *StaffService) DeleteStaff(ctx context.Context, id uint) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.staffRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.availability.Invalidate(ctx, id, "")
	s.logger.Info("staff deleted", zap.Uint("staff_id", id))
	return nil
}

// ReconcileRating recomputes the stored rating from the reviews table
func (s *StaffService) ReconcileRating(ctx context.Context, id uint) (domain.StaffRating, error) {
	if _, err := s.find(ctx, id); err != nil {
		return domain.StaffRating{}, err
	}
	return s.ratings.Reconcile(ctx, id)
}

func (s *StaffService) find(ctx context.Context, id uint, preload ...string) (*models.Staff, error) {
	staff, err := s.staffRepo.GetByID(ctx, id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return staff, nil
}

// scheduleRows validates the days as one weekly schedule and maps them to rows
func scheduleRows(staffID uint, days []DayScheduleInput) ([]models.StaffSchedule, error) {
	entries := make([]domain.DaySchedule, 0, len(days))
	for _, in := range days {
		day, err := domain.ParseWeekday(in.Day)
		if err != nil {
			return nil, fmt.Errorf("%w: unknown weekday %q", domain.ErrInvalidSchedule, in.Day)
		}
		available := true
		if in.IsAvailable != nil {
			available = *in.IsAvailable
		}
		entries = append(entries, domain.DaySchedule{
			Day:         day,
			IsAvailable: available,
			StartTime:   in.StartTime,
			EndTime:     in.EndTime,
			BreakStart:  in.BreakStart,
			BreakEnd:    in.BreakEnd,
		})
	}

	ws, err := domain.NewWeeklySchedule(entries...)
	if err != nil {
		return nil, err
	}

	rows := make([]models.StaffSchedule, 0, ws.Len())
	for _, d := range ws.Days() {
		rows = append(rows, models.StaffScheduleFromDomain(staffID, d))
	}
	return rows, nil
}

func applyStaffInput(staff *models.Staff, in *StaffInput) error {
	if in.Specializations != nil {
		for _, sp := range *in.Specializations {
			if !containsString(models.Specializations, sp) {
				return fmt.Errorf("%w: %q", ErrInvalidSpecialization, sp)
			}
		}
		staff.Specializations = *in.Specializations
	}
	if in.Name != nil {
		staff.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		staff.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		staff.Phone = *in.Phone
	}
	if in.Bio != nil {
		staff.Bio = *in.Bio
	}
	if in.Experience != nil {
		staff.Experience = *in.Experience
	}
	if in.Avatar != nil {
		staff.Avatar = *in.Avatar
	}
	if in.Portfolio != nil {
		staff.Portfolio = *in.Portfolio
	}
	if in.Languages != nil {
		staff.Languages = *in.Languages
	}
	if in.IsAvailable != nil {
		staff.IsAvailable = *in.IsAvailable
	}
	if in.Notes != nil {
		staff.Notes = *in.Notes
	}
	return nil
}

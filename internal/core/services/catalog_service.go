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

// Catalog errors
var (
	ErrServiceNotFound  = fmt.Errorf("service %w", domain.ErrNotFound)
	ErrServiceInactive  = fmt.Errorf("service is not bookable: %w", domain.ErrInvalidInput)
	ErrInvalidCategory  = fmt.Errorf("unknown service category: %w", domain.ErrInvalidInput)
	ErrInvalidPriceSpan = fmt.Errorf("price_min must not exceed price_max: %w", domain.ErrInvalidInput)
)

// CatalogService handles the salon service catalog
type CatalogService struct {
	serviceRepo repositories.ServiceRepository
	reviewRepo  repositories.ReviewRepository
	logger      *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	serviceRepo repositories.ServiceRepository,
	reviewRepo repositories.ReviewRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		serviceRepo: serviceRepo,
		reviewRepo:  reviewRepo,
		logger:      logger,
	}
}

// ServiceInput carries the writable fields of a service.
// Pointer fields left nil are unchanged on update.
type ServiceInput struct {
	Title               *string   `json:"title" validate:"omitempty,min=2,max=100"`
	Description         *string   `json:"description" validate:"omitempty,min=10,max=1000"`
	ShortDescription    *string   `json:"short_description" validate:"omitempty,max=200"`
	Category            *string   `json:"category"`
	Price               *float64  `json:"price" validate:"omitempty,gte=0"`
	PriceMin            *float64  `json:"price_min" validate:"omitempty,gte=0"`
	PriceMax            *float64  `json:"price_max" validate:"omitempty,gte=0"`
	Duration            *int      `json:"duration" validate:"omitempty,min=5,max=480"`
	Images              *[]string `json:"images" validate:"omitempty,max=10,dive,url"`
	IsPopular           *bool     `json:"is_popular"`
	IsActive            *bool     `json:"is_active"`
	Tags                *[]string `json:"tags" validate:"omitempty,max=20,dive,max=30"`
	Requirements        *[]string `json:"requirements" validate:"omitempty,dive,max=200"`
	Benefits            *[]string `json:"benefits" validate:"omitempty,dive,max=200"`
	BookingNotes        *string   `json:"booking_notes" validate:"omitempty,max=500"`
	CancellationPolicy  *string   `json:"cancellation_policy" validate:"omitempty,max=300"`
	SpecialInstructions *string   `json:"special_instructions" validate:"omitempty,max=300"`
	StaffIDs            *[]uint   `json:"staff_ids"`
}

// ListServicesInput represents list services input
type ListServicesInput struct {
	Page            *pagination.Params
	Category        string
	Search          string
	PopularOnly     bool
	IncludeInactive bool
	MinPrice        *float64
	MaxPrice        *float64
	Sort            string
	Include         string
}

// ServiceRatingSummary is the aggregate of a service's visible reviews
type ServiceRatingSummary struct {
	ServiceID       uint    `json:"service_id"`
	Average         float64 `json:"average"`
	Count           int64   `json:"count"`
	FormattedRating string  `json:"formatted_rating"`
}

// Categories lists the accepted service categories
func (s *CatalogService) Categories() []string {
	return models.ServiceCategories
}

// ListServices lists services with filters
func (s *CatalogService) ListServices(ctx context.Context, input *ListServicesInput) ([]*models.ServiceResponse, *pagination.Meta, error) {
	preload, err := parseInclude(input.Include, serviceIncludes)
	if err != nil {
		return nil, nil, err
	}
	page := input.Page
	if page == nil {
		page = pagination.New(1, pagination.DefaultLimit, pagination.DefaultLimit)
	}

	filter := repositories.ServiceFilter{
		Category:    input.Category,
		Search:      input.Search,
		PopularOnly: input.PopularOnly,
		ActiveOnly:  !input.IncludeInactive,
		MinPrice:    input.MinPrice,
		MaxPrice:    input.MaxPrice,
		Sort:        input.Sort,
	}
	services, total, err := s.serviceRepo.List(ctx, filter, page.Offset, page.Limit, preload...)
	if err != nil {
		return nil, nil, err
	}

	out := make([]*models.ServiceResponse, len(services))
	for i, svc := range services {
		out[i] = svc.ToResponse()
	}
	return out, pagination.GetMeta(page, total), nil
}

// PopularServices returns active services flagged popular
func (s *CatalogService) PopularServices(ctx context.Context, limit int) ([]*models.ServiceResponse, error) {
	out, _, err := s.ListServices(ctx, &ListServicesInput{
		Page:        pagination.New(1, limit, 6),
		PopularOnly: true,
	})
	return out, err
}

// GetService gets a service by ID
func (s *CatalogService) GetService(ctx context.Context, id uint, include string) (*models.ServiceResponse, error) {
	preload, err := parseInclude(include, serviceIncludes)
	if err != nil {
		return nil, err
	}
	svc, err := s.find(ctx, id, preload...)
	if err != nil {
		return nil, err
	}
	return svc.ToResponse(), nil
}

// RatingSummary aggregates the visible reviews of a service
func (s *CatalogService) RatingSummary(ctx context.Context, id uint) (*ServiceRatingSummary, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	avg, count, err := s.reviewRepo.ServiceSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ServiceRatingSummary{
		ServiceID:       id,
		Average:         avg,
		Count:           count,
		FormattedRating: domain.StaffRating{Average: avg, Count: int(count)}.Formatted(),
	}, nil
}

// CreateService creates a service; title, description, category, price and duration are required
func (s *CatalogService) CreateService(ctx context.Context, input *ServiceInput) (*models.ServiceResponse, error) {
	if input.Title == nil || input.Description == nil || input.Category == nil || input.Price == nil || input.Duration == nil {
		return nil, fmt.Errorf("%w: title, description, category, price and duration are required", domain.ErrInvalidInput)
	}

	svc := &models.Service{IsActive: true}
	if err := applyServiceInput(svc, input); err != nil {
		return nil, err
	}

	if err := s.serviceRepo.Create(ctx, svc); err != nil {
		return nil, err
	}
	if input.StaffIDs != nil {
		if err := s.serviceRepo.ReplaceStaff(ctx, svc, *input.StaffIDs); err != nil {
			return nil, err
		}
	}

	s.logger.Info("service created", zap.Uint("service_id", svc.ID), zap.String("title", svc.Title))
	return svc.ToResponse(), nil
}

// UpdateService applies a partial update
func (s *CatalogService) UpdateService(ctx context.Context, id uint, input *ServiceInput) (*models.ServiceResponse, error) {
	svc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyServiceInput(svc, input); err != nil {
		return nil, err
	}

	if err := s.serviceRepo.Update(ctx, svc); err != nil {
		return nil, err
	}
	if input.StaffIDs != nil {
		if err := s.serviceRepo.ReplaceStaff(ctx, svc, *input.StaffIDs); err != nil {
			return nil, err
		}
	}
	return svc.ToResponse(), nil
}

// DeleteService soft deletes a service
func (s *CatalogService) DeleteService(ctx context.Context, id uint) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.serviceRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("service deleted", zap.Uint("service_id", id))
	return nil
}

func (s *CatalogService) find(ctx context.Context, id uint, preload ...string) (*models.Service, error) {
	svc, err := s.serviceRepo.GetByID(ctx, id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return svc, nil
}

func applyServiceInput(svc *models.Service, in *ServiceInput) error {
	if in.Category != nil {
		if !containsString(models.ServiceCategories, *in.Category) {
			return ErrInvalidCategory
		}
		svc.Category = *in.Category
	}
	if in.Title != nil {
		svc.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		svc.Description = strings.TrimSpace(*in.Description)
	}
	if in.ShortDescription != nil {
		svc.ShortDescription = *in.ShortDescription
	}
	if in.Price != nil {
		svc.Price = *in.Price
	}
	if in.PriceMin != nil {
		svc.PriceMin = in.PriceMin
	}
	if in.PriceMax != nil {
		svc.PriceMax = in.PriceMax
	}
	if svc.PriceMin != nil && svc.PriceMax != nil && *svc.PriceMin > *svc.PriceMax {
		return ErrInvalidPriceSpan
	}
	if in.Duration != nil {
		svc.Duration = *in.Duration
	}
	if in.Images != nil {
		svc.Images = *in.Images
	}
	if in.IsPopular != nil {
		svc.IsPopular = *in.IsPopular
	}
	if in.IsActive != nil {
		svc.IsActive = *in.IsActive
	}
	if in.Tags != nil {
		svc.Tags = *in.Tags
	}
	if in.Requirements != nil {
		svc.Requirements = *in.Requirements
	}
	if in.Benefits != nil {
		svc.Benefits = *in.Benefits
	}
	if in.BookingNotes != nil {
		svc.BookingNotes = *in.BookingNotes
	}
	if in.CancellationPolicy != nil {
		svc.CancellationPolicy = *in.CancellationPolicy
	}
	if in.SpecialInstructions != nil {
		svc.SpecialInstructions = *in.SpecialInstructions
	}
	return nil
}

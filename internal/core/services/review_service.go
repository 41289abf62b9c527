package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eclat-salon/internal/adapters/persistence/models"
	"eclat-salon/internal/adapters/persistence/repositories"
	"eclat-salon/internal/core/domain"
	"eclat-salon/internal/pkg/metrics"
	"eclat-salon/internal/pkg/pagination"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Review errors
var (
	ErrReviewNotFound   = fmt.Errorf("review %w", domain.ErrNotFound)
	ErrReviewNotAllowed = fmt.Errorf("only completed appointments can be reviewed: %w", domain.ErrInvalidInput)
	ErrAlreadyReviewed  = fmt.Errorf("appointment already reviewed: %w", domain.ErrDuplicateEntry)
	ErrNotReviewOwner   = fmt.Errorf("review belongs to another user: %w", domain.ErrForbidden)
	ErrOwnReviewVote    = fmt.Errorf("cannot mark your own review helpful: %w", domain.ErrInvalidInput)
	ErrAlreadyVoted     = fmt.Errorf("review already marked helpful: %w", domain.ErrDuplicateEntry)
	ErrInvalidReviewTag = fmt.Errorf("unknown review tag: %w", domain.ErrInvalidInput)
)

// Review event names
const (
	reviewCreated = "created"
	reviewUpdated = "updated"
	reviewDeleted = "deleted"
)

// ReviewService handles reviews and keeps staff ratings in step with them
type ReviewService struct {
	reviewRepo repositories.ReviewRepository
	apptRepo   repositories.AppointmentRepository
	ratings    RatingAggregator
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewReviewService creates a new review service
func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	apptRepo repositories.AppointmentRepository,
	ratings RatingAggregator,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		apptRepo:   apptRepo,
		ratings:    ratings,
		metrics:    m,
		logger:     logger,
	}
}

// SubRatings are the optional per-aspect ratings
type SubRatings struct {
	Service    *int `json:"service" validate:"omitempty,min=1,max=5"`
	Staff      *int `json:"staff" validate:"omitempty,min=1,max=5"`
	Atmosphere *int `json:"atmosphere" validate:"omitempty,min=1,max=5"`
	Value      *int `json:"value" validate:"omitempty,min=1,max=5"`
}

// CreateReviewInput represents create review input
type CreateReviewInput struct {
	AppointmentID uint        `json:"appointment_id" validate:"required"`
	Overall       int         `json:"overall" validate:"required,min=1,max=5"`
	Ratings       *SubRatings `json:"ratings"`
	Comment       string      `json:"comment" validate:"required,min=10,max=1000"`
	Photos        []string    `json:"photos" validate:"omitempty,max=5,dive,url"`
	Tags          []string    `json:"tags" validate:"omitempty,max=10"`
	IsPublic      *bool       `json:"is_public"`
}

// UpdateReviewInput represents update review input
type UpdateReviewInput struct {
	Overall  *int        `json:"overall" validate:"omitempty,min=1,max=5"`
	Ratings  *SubRatings `json:"ratings"`
	Comment  *string     `json:"comment" validate:"omitempty,min=10,max=1000"`
	Photos   *[]string   `json:"photos" validate:"omitempty,max=5,dive,url"`
	Tags     *[]string   `json:"tags" validate:"omitempty,max=10"`
	IsPublic *bool       `json:"is_public"`
}

// RespondInput is the salon's public reply to a review
type RespondInput struct {
	Text string `json:"text" validate:"required,min=2,max=1000"`
}

// ListReviewsInput represents list reviews input; only approved public reviews are listed
type ListReviewsInput struct {
	Page      *pagination.Params
	StaffID   uint
	ServiceID uint
	MinRating int
	Include   string
}

// Create stores a review of a completed appointment owned by userID
func (s *ReviewService) Create(ctx context.Context, userID uint, input *CreateReviewInput) (*models.ReviewResponse, error) {
	appt, err := s.apptRepo.GetByID(ctx, input.AppointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	if appt.UserID != userID {
		return nil, ErrNotAppointmentOwner
	}
	if appt.AppointmentStatus() != domain.StatusCompleted {
		return nil, ErrReviewNotAllowed
	}
	if !domain.ValidRating(input.Overall) {
		return nil, fmt.Errorf("%w: overall rating %d", domain.ErrInvalidInput, input.Overall)
	}
	if err := checkTags(input.Tags); err != nil {
		return nil, err
	}

	exists, err := s.reviewRepo.ExistsForAppointment(ctx, appt.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	review := &models.Review{
		UserID:        userID,
		AppointmentID: appt.ID,
		StaffID:       appt.StaffID,
		ServiceID:     appt.ServiceID,
		Overall:       input.Overall,
		Comment:       strings.TrimSpace(input.Comment),
		Photos:        input.Photos,
		Tags:          input.Tags,
		IsVerified:    true,
		IsApproved:    true,
		IsPublic:      true,
	}
	if input.IsPublic != nil {
		review.IsPublic = *input.IsPublic
	}
	applySubRatings(review, input.Ratings)

	err = s.reviewRepo.Create(ctx, review, func(_, created *models.Review) {
		if _, err := s.ratings.OnReviewCreated(ctx, created.StaffID, created.Overall); err != nil {
			s.ratingFailed(reviewCreated, created, err)
		}
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}
	s.metrics.Review(reviewCreated)

	s.logger.Info("review created", zap.Uint("review_id", review.ID), zap.Uint("staff_id", review.StaffID))
	return review.ToResponse(), nil
}

// Update edits the caller's own review. The old rating is read under the
// review row lock and the staff rating moves in the same unit.
func (s *ReviewService) Update(ctx context.Context, id, userID uint, input *UpdateReviewInput) (*models.ReviewResponse, error) {
	if input.Overall != nil && !domain.ValidRating(*input.Overall) {
		return nil, fmt.Errorf("%w: overall rating %d", domain.ErrInvalidInput, *input.Overall)
	}
	if input.Tags != nil {
		if err := checkTags(*input.Tags); err != nil {
			return nil, err
		}
	}

	review, err := s.reviewRepo.Edit(ctx, id, func(review *models.Review) error {
		if review.UserID != userID {
			return ErrNotReviewOwner
		}
		if input.Overall != nil {
			review.Overall = *input.Overall
		}
		if input.Comment != nil {
			review.Comment = strings.TrimSpace(*input.Comment)
		}
		if input.Photos != nil {
			review.Photos = *input.Photos
		}
		if input.Tags != nil {
			review.Tags = *input.Tags
		}
		if input.IsPublic != nil {
			review.IsPublic = *input.IsPublic
		}
		applySubRatings(review, input.Ratings)
		return nil
	}, func(before, after *models.Review) {
		if before.Overall == after.Overall {
			return
		}
		if _, err := s.ratings.OnReviewRatingChanged(ctx, after.StaffID, before.Overall, after.Overall); err != nil {
			s.ratingFailed(reviewUpdated, after, err)
		}
	})
	if err != nil {
		return nil, notFoundAsReview(err)
	}
	s.metrics.Review(reviewUpdated)
	return review.ToResponse(), nil
}

// Delete hard deletes a review; owners and admins may delete
func (s *ReviewService) Delete(ctx context.Context, id uint, actor Actor) error {
	err := s.reviewRepo.Delete(ctx, id, func(review *models.Review) error {
		if !actor.IsAdmin && review.UserID != actor.UserID {
			return ErrNotReviewOwner
		}
		return nil
	}, func(before, _ *models.Review) {
		if _, err := s.ratings.OnReviewDeleted(ctx, before.StaffID, before.Overall); err != nil {
			s.ratingFailed(reviewDeleted, before, err)
		}
	})
	if err != nil {
		return notFoundAsReview(err)
	}
	s.metrics.Review(reviewDeleted)

	s.logger.Info("review deleted", zap.Uint("review_id", id), zap.Uint("by", actor.UserID))
	return nil
}

// MarkHelpful records the caller's helpful vote and returns the new count
func (s *ReviewService) MarkHelpful(ctx context.Context, id, userID uint) (int, error) {
	review, err := s.find(ctx, id)
	if err != nil {
		return 0, err
	}
	if review.UserID == userID {
		return 0, ErrOwnReviewVote
	}

	count, err := s.reviewRepo.AddHelpful(ctx, id, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEntry):
			return 0, ErrAlreadyVoted
		case errors.Is(err, gorm.ErrRecordNotFound):
			return 0, ErrReviewNotFound
		}
		return 0, err
	}
	return count, nil
}

// Respond stores the salon's reply to a review
func (s *ReviewService) Respond(ctx context.Context, id, adminID uint, input *RespondInput) (*models.ReviewResponse, error) {
	now := time.Now()
	review, err := s.reviewRepo.Edit(ctx, id, func(review *models.Review) error {
		review.ResponseText = strings.TrimSpace(input.Text)
		review.RespondedBy = &adminID
		review.RespondedAt = &now
		return nil
	}, nil)
	if err != nil {
		return nil, notFoundAsReview(err)
	}
	return review.ToResponse(), nil
}

// SetApproval hides or shows a review in public listings
func (s *ReviewService) SetApproval(ctx context.Context, id uint, approved bool) (*models.ReviewResponse, error) {
	review, err := s.reviewRepo.Edit(ctx, id, func(review *models.Review) error {
		review.IsApproved = approved
		return nil
	}, nil)
	if err != nil {
		return nil, notFoundAsReview(err)
	}
	return review.ToResponse(), nil
}

// Get returns a review by ID
func (s *ReviewService) Get(ctx context.Context, id uint, include string) (*models.ReviewResponse, error) {
	preload, err := parseInclude(include, reviewIncludes)
	if err != nil {
		return nil, err
	}
	review, err := s.find(ctx, id, preload...)
	if err != nil {
		return nil, err
	}
	return review.ToResponse(), nil
}

// List lists approved public reviews, newest first
func (s *ReviewService) List(ctx context.Context, input *ListReviewsInput) ([]*models.ReviewResponse, *pagination.Meta, error) {
	preload, err := parseInclude(input.Include, reviewIncludes)
	if err != nil {
		return nil, nil, err
	}
	page := input.Page
	if page == nil {
		page = pagination.New(1, pagination.DefaultLimit, pagination.DefaultLimit)
	}

	filter := repositories.ReviewFilter{
		StaffID:     input.StaffID,
		ServiceID:   input.ServiceID,
		MinRating:   input.MinRating,
		VisibleOnly: true,
	}
	reviews, total, err := s.reviewRepo.List(ctx, filter, page.Offset, page.Limit, preload...)
	if err != nil {
		return nil, nil, err
	}

	out := make([]*models.ReviewResponse, len(reviews))
	for i, review := range reviews {
		out[i] = review.ToResponse()
	}
	return out, pagination.GetMeta(page, total), nil
}

// Top lists the five-star reviews
func (s *ReviewService) Top(ctx context.Context, input *ListReviewsInput) ([]*models.ReviewResponse, *pagination.Meta, error) {
	input.MinRating = domain.MaxRating
	return s.List(ctx, input)
}

// ratingFailed records an aggregator failure; the review write still commits
// and the nightly reconcile repairs the stored rating
func (s *ReviewService) ratingFailed(event string, review *models.Review, err error) {
	s.metrics.RatingFailure()
	s.logger.Error("staff rating update failed",
		zap.String("event", event),
		zap.Uint("review_id", review.ID),
		zap.Uint("staff_id", review.StaffID),
		zap.Error(err),
	)
}

func (s *ReviewService) find(ctx context.Context, id uint, preload ...string) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

func notFoundAsReview(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrReviewNotFound
	}
	return err
}

func applySubRatings(review *models.Review, r *SubRatings) {
	if r == nil {
		return
	}
	if r.Service != nil {
		review.RatingService = r.Service
	}
	if r.Staff != nil {
		review.RatingStaff = r.Staff
	}
	if r.Atmosphere != nil {
		review.Atmosphere = r.Atmosphere
	}
	if r.Value != nil {
		review.Value = r.Value
	}
}

func checkTags(tags []string) error {
	for _, tag := range tags {
		if !containsString(models.ReviewTags, tag) {
			return fmt.Errorf("%w: %q", ErrInvalidReviewTag, tag)
		}
	}
	return nil
}

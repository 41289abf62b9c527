package repositories

import (
	"context"

	"eclat-salon/internal/adapters/persistence/models"
	"eclat-salon/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// reviewRepository implements ReviewRepository interface
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts a review; the unique appointment_id index allows one per appointment
func (r *reviewRepository) Create(ctx context.Context, review *models.Review, hook ReviewHook) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(review).Error; err != nil {
			return err
		}
		if hook != nil {
			hook(nil, review)
		}
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			return domain.ErrDuplicateEntry
		}
		return err
	}
	return nil
}

// GetByID gets a review by ID, loading only the requested relations
func (r *reviewRepository) GetByID(ctx context.Context, id uint, preload ...string) (*models.Review, error) {
	var review models.Review
	err := withPreload(r.db.WithContext(ctx), preload).First(&review, id).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// reviewEditable are the columns Edit writes back
var reviewEditable = []string{
	"overall", "rating_service", "rating_staff", "atmosphere", "value",
	"comment", "photos", "tags", "is_approved", "is_public",
	"response_text", "responded_by", "responded_at", "updated_at",
}

// Edit locks the review row, applies change and writes the row back in one transaction
func (r *reviewRepository) Edit(ctx context.Context, id uint, change func(review *models.Review) error, hook ReviewHook) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockReview(tx, id, &review); err != nil {
			return err
		}
		before := review
		if err := change(&review); err != nil {
			return err
		}
		err := tx.Model(&review).
			Omit(clause.Associations).
			Select(reviewEditable).
			Updates(&review).Error
		if err != nil {
			return err
		}
		if hook != nil {
			hook(&before, &review)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Delete locks the review row, runs check against it and hard deletes it with its helpful votes
func (r *reviewRepository) Delete(ctx context.Context, id uint, check func(review *models.Review) error, hook ReviewHook) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := lockReview(tx, id, &review); err != nil {
			return err
		}
		if check != nil {
			if err := check(&review); err != nil {
				return err
			}
		}
		if err := tx.Where("review_id = ?", id).Delete(&models.ReviewHelpful{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Review{}, id).Error; err != nil {
			return err
		}
		if hook != nil {
			hook(&review, nil)
		}
		return nil
	})
}

// lockReview reads the review row FOR UPDATE; a missing row is gorm.ErrRecordNotFound
func lockReview(tx *gorm.DB, id uint, review *models.Review) error {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(review).Error
}

// List lists reviews newest first
func (r *reviewRepository) List(ctx context.Context, filter ReviewFilter, offset, limit int, preload ...string) ([]*models.Review, int64, error) {
	var reviews []*models.Review
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Review{})
	if filter.VisibleOnly {
		query = query.Where("is_approved = ? AND is_public = ?", true, true)
	}
	if filter.StaffID != 0 {
		query = query.Where("staff_id = ?", filter.StaffID)
	}
	if filter.ServiceID != 0 {
		query = query.Where("service_id = ?", filter.ServiceID)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.MinRating > 0 {
		query = query.Where("overall >= ?", filter.MinRating)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := withPreload(query, preload).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// ExistsForAppointment checks whether the appointment has been reviewed
func (r *reviewRepository) ExistsForAppointment(ctx context.Context, appointmentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("appointment_id = ?", appointmentID).
		Count(&count).Error
	return count > 0, err
}

// AddHelpful records one user's vote and bumps the counter in one transaction
func (r *reviewRepository) AddHelpful(ctx context.Context, reviewID, userID uint) (int, error) {
	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vote := &models.ReviewHelpful{ReviewID: reviewID, UserID: userID}
		if err := tx.Create(vote).Error; err != nil {
			if isDuplicateKey(err) {
				return domain.ErrDuplicateEntry
			}
			return err
		}
		res := tx.Model(&models.Review{}).
			Where("id = ?", reviewID).
			UpdateColumn("helpful_count", gorm.Expr("helpful_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Review{}).
			Select("helpful_count").
			Where("id = ?", reviewID).
			Scan(&count).Error
	})
	return count, err
}

// ServiceSummary averages approved reviews of a service
func (r *reviewRepository) ServiceSummary(ctx context.Context, serviceID uint) (float64, int64, error) {
	var row struct {
		Average float64
		Count   int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(overall), 0) AS average, COUNT(*) AS count").
		Where("service_id = ? AND is_approved = ?", serviceID, true).
		Scan(&row).Error
	return row.Average, row.Count, err
}

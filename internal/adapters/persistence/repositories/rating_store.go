package repositories

import (
	"context"

	"eclat-salon/internal/adapters/persistence/models"
	"eclat-salon/internal/core/domain"
	"eclat-salon/internal/core/rating"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ratingStore persists staff ratings on the staff table.
// Every write locks the staff row, so instances sharing the database serialise.
type ratingStore struct {
	db *gorm.DB
}

// NewRatingStore creates the GORM-backed rating store
func NewRatingStore(db *gorm.DB) rating.Store {
	return &ratingStore{db: db}
}

type ratingRow struct {
	ID            uint
	RatingAverage float64
	RatingCount   int
}

// Update runs fn against the locked row and writes the result
func (s *ratingStore) Update(ctx context.Context, staffID uint, fn rating.MutateFunc) (domain.StaffRating, error) {
	var next domain.StaffRating
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockRating(tx, staffID)
		if err != nil {
			return err
		}

		next, err = fn(current)
		if err != nil {
			return err
		}

		return writeRating(tx, staffID, next)
	})
	if err != nil {
		return domain.StaffRating{}, err
	}
	return next, nil
}

// Recompute overwrites the rating with AVG/COUNT over the staff member's reviews
func (s *ratingStore) Recompute(ctx context.Context, staffID uint) (domain.StaffRating, error) {
	var next domain.StaffRating
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockRating(tx, staffID); err != nil {
			return err
		}

		var agg struct {
			Average float64
			Count   int
		}
		err := tx.Model(&models.Review{}).
			Select("COALESCE(AVG(overall), 0) AS average, COUNT(*) AS count").
			Where("staff_id = ?", staffID).
			Scan(&agg).Error
		if err != nil {
			return err
		}
		next = domain.StaffRating{Average: agg.Average, Count: agg.Count}
		if next.Count == 0 {
			next.Average = 0
		}

		return writeRating(tx, staffID, next)
	})
	if err != nil {
		return domain.StaffRating{}, err
	}
	return next, nil
}

// lockRating reads the staff rating FOR UPDATE. Soft-deleted staff are
// included so reviews about them stay editable.
func lockRating(tx *gorm.DB, staffID uint) (domain.StaffRating, error) {
	var row ratingRow
	err := tx.Unscoped().
		Model(&models.Staff{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "rating_average", "rating_count").
		Where("id = ?", staffID).
		Take(&row).Error
	if err != nil {
		return domain.StaffRating{}, err
	}
	return domain.StaffRating{Average: row.RatingAverage, Count: row.RatingCount}, nil
}

func writeRating(tx *gorm.DB, staffID uint, next domain.StaffRating) error {
	return tx.Unscoped().
		Model(&models.Staff{}).
		Where("id = ?", staffID).
		Updates(map[string]interface{}{
			"rating_average": next.Average,
			"rating_count":   next.Count,
		}).Error
}

// StaffIDs lists every live staff member
func (s *ratingStore) StaffIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Staff{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

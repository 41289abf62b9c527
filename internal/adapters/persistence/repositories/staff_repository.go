package repositories

import (
	"context"
	"strings"

	"eclat-salon/internal/adapters/persistence/models"
	"eclat-salon/internal/core/domain"

	"gorm.io/gorm"
)

// staffRepository implements StaffRepository interface
type staffRepository struct {
	db *gorm.DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *gorm.DB) StaffRepository {
	return &staffRepository{db: db}
}

// Create creates a staff member together with any schedule rows
func (r *staffRepository) Create(ctx context.Context, staff *models.Staff) error {
	staff.Email = strings.ToLower(strings.TrimSpace(staff.Email))
	if err := r.db.WithContext(ctx).Omit("Services").Create(staff).Error; err != nil {
		if isDuplicateKey(err) {
			return domain.ErrDuplicateEntry
		}
		return err
	}
	return nil
}

// GetByID gets a staff member by ID, loading only the requested relations
func (r *staffRepository) GetByID(ctx context.Context, id uint, preload ...string) (*models.Staff, error) {
	var staff models.Staff
	err := withPreload(r.db.WithContext(ctx), preload).First(&staff, id).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

// Update updates profile fields. Rating columns belong to the rating store
// and the schedule to ReplaceSchedule.
func (r *staffRepository) Update(ctx context.Context, staff *models.Staff) error {
	err := r.db.WithContext(ctx).
		Omit("Schedule", "Services", "RatingAverage", "RatingCount").
		Save(staff).Error
	if err != nil {
		if isDuplicateKey(err) {
			return domain.ErrDuplicateEntry
		}
		return err
	}
	return nil
}

// Delete soft deletes a staff member
func (r *staffRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Staff{}, id).Error
}

// List lists staff with filters and pagination, best rated first
func (r *staffRepository) List(ctx context.Context, filter StaffFilter, offset, limit int, preload ...string) ([]*models.Staff, int64, error) {
	var staff []*models.Staff
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Staff{})
	if filter.AvailableOnly {
		query = query.Where("is_available = ?", true)
	}
	if filter.Specialization != "" {
		query = query.Where("JSON_CONTAINS(specializations, JSON_QUOTE(?))", filter.Specialization)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("name LIKE ? OR bio LIKE ?", p, p)
	}
	if filter.ServiceID != 0 {
		query = query.Where("id IN (?)",
			r.db.Table("staff_services").Select("staff_id").Where("service_id = ?", filter.ServiceID))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := withPreload(query, preload).
		Order("rating_average DESC, rating_count DESC, name ASC").
		Offset(offset).
		Limit(limit).
		Find(&staff).Error
	if err != nil {
		return nil, 0, err
	}

	return staff, total, nil
}

// ExistsByEmail checks if a staff email exists
func (r *staffRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Staff{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	return count > 0, err
}

// ReplaceSchedule swaps the whole weekly schedule in one transaction
func (r *staffRepository) ReplaceSchedule(ctx context.Context, staffID uint, rows []models.StaffSchedule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("staff_id = ?", staffID).Delete(&models.StaffSchedule{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].StaffID = staffID
		}
		return tx.Create(&rows).Error
	})
}

// ReplaceServices sets the services a staff member offers
func (r *staffRepository) ReplaceServices(ctx context.Context, staff *models.Staff, serviceIDs []uint) error {
	services := make([]*models.Service, 0, len(serviceIDs))
	for _, id := range serviceIDs {
		services = append(services, &models.Service{ID: id})
	}
	return r.db.WithContext(ctx).Model(staff).Association("Services").Replace(services)
}

// PerformsService reports whether the staff member is linked to the service
func (r *staffRepository) PerformsService(ctx context.Context, staffID, serviceID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("staff_services").
		Where("staff_id = ? AND service_id = ?", staffID, serviceID).
		Count(&count).Error
	return count > 0, err
}

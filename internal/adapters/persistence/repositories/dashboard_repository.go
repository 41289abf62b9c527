package repositories

import (
	"context"
	"time"

	"eclat-salon/internal/adapters/persistence/models"
	"eclat-salon/internal/core/domain"

	"gorm.io/gorm"
)

// dashboardRepository implements DashboardRepository interface
type dashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository creates a new dashboard repository
func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) CountClients(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", string(domain.RoleUser)).
		Count(&total).Error
	return total, err
}

func (r *dashboardRepository) AppointmentsByStatus(ctx context.Context, from, to time.Time, userID uint) ([]StatusCount, error) {
	var rows []StatusCount
	query := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Select("status, COUNT(*) AS count").
		Where("date >= ? AND date < ?", from.Format(models.DateLayout), to.Format(models.DateLayout))
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}
	err := query.Group("status").Scan(&rows).Error
	return rows, err
}

func (r *dashboardRepository) CompletedRevenue(ctx context.Context, from, to time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Select("COALESCE(SUM(price), 0)").
		Where("status = ?", string(domain.StatusCompleted)).
		Where("date >= ? AND date < ?", from.Format(models.DateLayout), to.Format(models.DateLayout)).
		Scan(&total).Error
	return total, err
}

func (r *dashboardRepository) BusiestStaff(ctx context.Context, from, to time.Time, limit int) ([]StaffStat, error) {
	var rows []StaffStat
	err := r.db.WithContext(ctx).Table("appointments").
		Select(`
			staff.id AS staff_id,
			staff.name,
			COUNT(appointments.id) AS bookings,
			staff.rating_average,
			staff.rating_count
		`).
		Joins("JOIN staff ON staff.id = appointments.staff_id AND staff.deleted_at IS NULL").
		Where("appointments.status <> ?", string(domain.StatusCancelled)).
		Where("appointments.date >= ? AND appointments.date < ?", from.Format(models.DateLayout), to.Format(models.DateLayout)).
		Group("staff.id, staff.name, staff.rating_average, staff.rating_count").
		Order("bookings DESC, staff.rating_average DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *dashboardRepository) UnreviewedCompleted(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Table("appointments").
		Joins("LEFT JOIN reviews ON reviews.appointment_id = appointments.id").
		Where("appointments.user_id = ? AND appointments.status = ?", userID, string(domain.StatusCompleted)).
		Where("reviews.id IS NULL").
		Count(&total).Error
	return total, err
}

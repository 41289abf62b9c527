package repositories

import (
	"context"
	"time"

	"eclat-salon/internal/adapters/persistence/models"
	"eclat-salon/internal/core/domain"

	"gorm.io/gorm"
)

// appointmentRepository implements AppointmentRepository interface
type appointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

// Create inserts the appointment. The unique slot_key index is the final
// arbiter between concurrent bookings of the same slot.
func (r *appointmentRepository) Create(ctx context.Context, appt *models.Appointment) error {
	err := r.db.WithContext(ctx).
		Omit("User", "Service", "Staff").
		Create(appt).Error
	if err != nil {
		if isDuplicateKey(err) {
			return domain.ErrSlotConflict
		}
		return err
	}
	return nil
}

// Update saves every column, including a cleared or moved slot key
func (r *appointmentRepository) Update(ctx context.Context, appt *models.Appointment) error {
	err := r.db.WithContext(ctx).
		Omit("User", "Service", "Staff").
		Save(appt).Error
	if err != nil {
		if isDuplicateKey(err) {
			return domain.ErrSlotConflict
		}
		return err
	}
	return nil
}

// GetByID gets an appointment by ID, loading only the requested relations
func (r *appointmentRepository) GetByID(ctx context.Context, id uint, preload ...string) (*models.Appointment, error) {
	var appt models.Appointment
	err := withPreload(r.db.WithContext(ctx), preload).First(&appt, id).Error
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// List lists appointments with filters and pagination
func (r *appointmentRepository) List(ctx context.Context, filter AppointmentFilter, offset, limit int, preload ...string) ([]*models.Appointment, int64, error) {
	var appts []*models.Appointment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Appointment{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.StaffID != 0 {
		query = query.Where("staff_id = ?", filter.StaffID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("date >= ?", filter.DateFrom.Format(models.DateLayout))
	}
	if filter.DateTo != nil {
		query = query.Where("date <= ?", filter.DateTo.Format(models.DateLayout))
	}
	if filter.Upcoming {
		query = query.Where("date >= ?", time.Now().Format(models.DateLayout)).
			Where("status IN ?", []string{string(domain.StatusPending), string(domain.StatusConfirmed)})
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "date DESC, time DESC"
	if filter.Upcoming {
		order = "date ASC, time ASC"
	}
	err := withPreload(query, preload).
		Order(order).
		Offset(offset).
		Limit(limit).
		Find(&appts).Error
	if err != nil {
		return nil, 0, err
	}

	return appts, total, nil
}

// ListHoldingSlot returns the staff member's slot-holding appointments on date, by time
func (r *appointmentRepository) ListHoldingSlot(ctx context.Context, staffID uint, date time.Time) ([]*models.Appointment, error) {
	var appts []*models.Appointment
	err := r.db.WithContext(ctx).
		Select("id", "staff_id", "date", "time", "duration", "status").
		Where("staff_id = ? AND date = ?", staffID, date.Format(models.DateLayout)).
		Where("status <> ?", string(domain.StatusCancelled)).
		Order("time ASC").
		Find(&appts).Error
	return appts, err
}

// ListDueReminders returns confirmed or pending appointments dated within
// [from, to] that have not been reminded yet
func (r *appointmentRepository) ListDueReminders(ctx context.Context, from, to time.Time) ([]*models.Appointment, error) {
	var appts []*models.Appointment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Service").
		Preload("Staff").
		Where("date BETWEEN ? AND ?", from.Format(models.DateLayout), to.Format(models.DateLayout)).
		Where("status IN ?", []string{string(domain.StatusPending), string(domain.StatusConfirmed)}).
		Where("reminder_sent_at IS NULL").
		Find(&appts).Error
	return appts, err
}

// MarkReminderSent stamps the reminder time
func (r *appointmentRepository) MarkReminderSent(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		Update("reminder_sent_at", at).Error
}

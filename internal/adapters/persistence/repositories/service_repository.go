package repositories

import (
	"context"

	"eclat-salon/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// serviceSorts maps sort keys accepted by listings onto ORDER BY clauses
var serviceSorts = map[string]string{
	"":           "is_popular DESC, created_at DESC",
	"newest":     "created_at DESC",
	"price_asc":  "price ASC",
	"price_desc": "price DESC",
	"duration":   "duration ASC",
	"title":      "title ASC",
}

// serviceRepository implements ServiceRepository interface
type serviceRepository struct {
	db *gorm.DB
}

// NewServiceRepository creates a new service repository
func NewServiceRepository(db *gorm.DB) ServiceRepository {
	return &serviceRepository{db: db}
}

// Create creates a new service
func (r *serviceRepository) Create(ctx context.Context, service *models.Service) error {
	return r.db.WithContext(ctx).Create(service).Error
}

// GetByID gets a service by ID, loading only the requested relations
func (r *serviceRepository) GetByID(ctx context.Context, id uint, preload ...string) (*models.Service, error) {
	var service models.Service
	err := withPreload(r.db.WithContext(ctx), preload).First(&service, id).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// Update updates a service
func (r *serviceRepository) Update(ctx context.Context, service *models.Service) error {
	return r.db.WithContext(ctx).Omit("Staff").Save(service).Error
}

// Delete soft deletes a service
func (r *serviceRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Service{}, id).Error
}

// List lists services with filters and pagination
func (r *serviceRepository) List(ctx context.Context, filter ServiceFilter, offset, limit int, preload ...string) ([]*models.Service, int64, error) {
	var services []*models.Service
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Service{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.PopularOnly {
		query = query.Where("is_popular = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("title LIKE ? OR description LIKE ? OR short_description LIKE ?", p, p, p)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := serviceSorts[filter.Sort]
	if !ok {
		order = serviceSorts[""]
	}
	err := withPreload(query, preload).
		Order(order).
		Offset(offset).
		Limit(limit).
		Find(&services).Error
	if err != nil {
		return nil, 0, err
	}

	return services, total, nil
}

// ReplaceStaff sets the staff members who perform the service
func (r *serviceRepository) ReplaceStaff(ctx context.Context, service *models.Service, staffIDs []uint) error {
	staff := make([]*models.Staff, 0, len(staffIDs))
	for _, id := range staffIDs {
		staff = append(staff, &models.Staff{ID: id})
	}
	return r.db.WithContext(ctx).Model(service).Association("Staff").Replace(staff)
}

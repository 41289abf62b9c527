package config

import (
	"eclat-salon/internal/adapters/persistence/models"
	"eclat-salon/internal/core/domain"
	"eclat-salon/internal/pkg/password"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, log *zap.Logger) *Seeder {
	return &Seeder{db: db, log: log}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	s.log.Info("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		s.log.Warn("⚠️ Admin seeder skipped", zap.Error(err))
	}
	if err := s.seedCatalog(); err != nil {
		s.log.Warn("⚠️ Catalog seeder skipped", zap.Error(err))
	}

	s.log.Info("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds default admin user
// This is for development only
func (s *Seeder) seedAdminUser() error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:       "Salon Admin",
		Email:      "admin@eclatsalon.com",
		Phone:      "15550000000",
		Password:   hashedPassword,
		Role:       string(domain.RoleAdmin),
		IsVerified: true,
		IsActive:   true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	s.log.Info("✅ Admin user created", zap.String("email", admin.Email))
	return nil
}

// seedCatalog seeds a few services and one stylist with a weekday schedule
func (s *Seeder) seedCatalog() error {
	var count int64
	if err := s.db.Model(&models.Service{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	at := domain.MustParseTimeOfDay
	lunch, back := at("12:00"), at("13:00")

	services := []*models.Service{
		{Title: "Signature Haircut", Description: "Consultation, wash, precision cut and blow-dry.", Category: "Hair Styling", Price: 65, Duration: 60, IsPopular: true, IsActive: true},
		{Title: "Gel Manicure", Description: "Shaping, cuticle care and long-wear gel polish.", Category: "Nail Art", Price: 45, Duration: 45, IsActive: true},
		{Title: "Hydrating Facial", Description: "Deep cleanse, exfoliation and a moisture-boosting mask.", Category: "Facial Treatments", Price: 90, Duration: 75, IsPopular: true, IsActive: true},
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&services).Error; err != nil {
			return err
		}

		schedule := make([]models.StaffSchedule, 0, 5)
		for _, day := range domain.Weekdays[:5] {
			schedule = append(schedule, models.StaffSchedule{
				Day: string(day), IsAvailable: true,
				StartTime: at("09:00"), EndTime: at("17:00"),
				BreakStart: &lunch, BreakEnd: &back,
			})
		}
		stylist := &models.Staff{
			Name:            "Camille Laurent",
			Email:           "camille@eclatsalon.com",
			Phone:           "15550000001",
			Specializations: models.StringList{"Hair Styling", "Hair Cutting"},
			Experience:      8,
			Languages:       models.StringList{"English", "French"},
			IsAvailable:     true,
			Schedule:        schedule,
			Services:        services[:1],
		}
		if err := tx.Create(stylist).Error; err != nil {
			return err
		}

		s.log.Info("✅ Catalog seeded", zap.Int("services", len(services)), zap.String("staff", stylist.Name))
		return nil
	})
}

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"eclat-salon/internal/adapters/cache"
	"eclat-salon/internal/adapters/http/handlers"
	"eclat-salon/internal/adapters/http/middleware"
	"eclat-salon/internal/adapters/http/routes"
	"eclat-salon/internal/adapters/persistence/models"
	"eclat-salon/internal/adapters/persistence/repositories"
	"eclat-salon/internal/config"
	"eclat-salon/internal/core/rating"
	"eclat-salon/internal/core/services"
	"eclat-salon/internal/pkg/jwt"
	"eclat-salon/internal/pkg/logger"
	"eclat-salon/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	_ "eclat-salon/docs" // Swagger docs
)

// @title Eclat Salon API
// @version 1.0
// @description Salon booking API: service catalog, staff schedules, availability, appointments and reviews
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@eclat-salon.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.AppMode, cfg.LogLevel)
	if err != nil {
		log.Fatalf("❌ Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	zap.ReplaceGlobals(zlog)

	// Connect to database
	db, err := config.ConnectDatabase(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer config.CloseDatabase()

	if err := models.AutoMigrate(db); err != nil {
		zlog.Fatal("failed to auto migrate", zap.Error(err))
	}
	zlog.Info("database migration completed")

	if cfg.IsDev() {
		if err := config.NewSeeder(db, zlog).Run(); err != nil {
			zlog.Warn("failed to seed data", zap.Error(err))
		}
	}

	// Slot cache; runs uncached without REDIS_ADDR or when redis is unreachable
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		zlog.Warn("redis unavailable, slot cache disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	slotCache := cache.NewSlotCache(redisClient, cfg.Booking.SlotCacheTTL, zlog)

	m := metrics.New()
	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.RefreshSecret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	serviceRepo := repositories.NewServiceRepository(db)
	staffRepo := repositories.NewStaffRepository(db)
	apptRepo := repositories.NewAppointmentRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)

	ratings := rating.NewAggregator(repositories.NewRatingStore(db), zlog)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, tokens, zlog)
	userService := services.NewUserService(userRepo, refreshTokenRepo, zlog)
	catalogService := services.NewCatalogService(serviceRepo, reviewRepo, zlog)
	availabilityService := services.NewAvailabilityService(staffRepo, serviceRepo, apptRepo, slotCache, m, cfg.Booking.Location, zlog)
	staffService := services.NewStaffService(staffRepo, availabilityService, ratings, zlog)
	notifier := services.NewNotificationService(cfg.SMTP, zlog)
	appointmentService := services.NewAppointmentService(
		apptRepo,
		userRepo,
		availabilityService,
		notifier,
		m,
		cfg.Booking.CancelNotice(),
		zlog,
	)
	reviewService := services.NewReviewService(reviewRepo, apptRepo, ratings, m, zlog)
	dashboardService := services.NewDashboardService(repositories.NewDashboardRepository(db), apptRepo, cfg.Booking.Location, zlog)

	// Reminders, rating reconciliation and token cleanup
	cronService := services.NewCronService(appointmentService, ratings, refreshTokenRepo, cfg, zlog)
	if err := cronService.Start(); err != nil {
		zlog.Fatal("failed to start cron", zap.Error(err))
	}
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Eclat Salon API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg, m)

	routes.Setup(app, &routes.Handlers{
		Health:      handlers.NewHealthHandler(cfg, redisClient),
		Auth:        handlers.NewAuthHandler(authService, cfg),
		User:        handlers.NewUserHandler(userService),
		Service:     handlers.NewServiceHandler(catalogService),
		Staff:       handlers.NewStaffHandler(staffService, availabilityService),
		Appointment: handlers.NewAppointmentHandler(appointmentService),
		Review:      handlers.NewReviewHandler(reviewService),
		Dashboard:   handlers.NewDashboardHandler(dashboardService),
	}, tokens, m)

	// Graceful shutdown
	go gracefulShutdown(app, zlog)

	zlog.Info("server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, zlog *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
	zlog.Info("server stopped gracefully")
}

package routes

import (
	"time"

	"eclat-salon/internal/adapters/http/handlers"
	"eclat-salon/internal/adapters/http/middleware"
	"eclat-salon/internal/pkg/jwt"
	"eclat-salon/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
)

// Handlers bundles every HTTP handler served by the API
type Handlers struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
	Service     *handlers.ServiceHandler
	Staff       *handlers.StaffHandler
	Appointment *handlers.AppointmentHandler
	Review      *handlers.ReviewHandler
	Dashboard   *handlers.DashboardHandler
}

// catalogMaxAge is how long browsers may cache catalog reads
const catalogMaxAge = time.Minute

// Setup configures all routes for the application
func Setup(app *fiber.App, h *Handlers, tokens *jwt.Manager, m *metrics.Metrics) {
	// Health check & root routes
	app.Get("/", h.Health.Root)
	app.Get("/health", h.Health.HealthCheck)

	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, h, tokens)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(router fiber.Router, h *Handlers, tokens *jwt.Manager) {
	auth := middleware.AuthMiddleware(tokens)

	// API Info
	router.Get("/", h.Health.APIInfo)

	// Auth routes
	authRoutes := router.Group("/auth", middleware.NoCacheHeaders())
	setupAuthRoutes(authRoutes, h.Auth, auth)

	// User management routes (Admin only)
	userRoutes := router.Group("/users")
	userRoutes.Use(auth, middleware.AdminOnly())
	setupUserRoutes(userRoutes, h.User)

	// Profile routes (Authenticated users)
	profileRoutes := router.Group("/profile")
	profileRoutes.Use(auth)
	setupProfileRoutes(profileRoutes, h.User)

	// Catalog
	setupServiceRoutes(router.Group("/services"), h.Service, auth)
	setupStaffRoutes(router.Group("/staff"), h.Staff, auth)

	// Bookings (Authenticated users)
	appointmentRoutes := router.Group("/appointments")
	appointmentRoutes.Use(auth)
	setupAppointmentRoutes(appointmentRoutes, h.Appointment)

	// Reviews
	setupReviewRoutes(router.Group("/reviews"), h.Review, auth)

	// Dashboard routes
	dashboardRoutes := router.Group("/dashboard")
	dashboardRoutes.Use(auth)
	setupDashboardRoutes(dashboardRoutes, h.Dashboard)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, auth fiber.Handler) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", auth, handler.Me)
	router.Post("/logout-all", auth, handler.LogoutAll)
}

// setupUserRoutes configures user management routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.ListUsers)
	router.Get("/:id", handler.GetUser)
	router.Put("/:id", handler.UpdateUser)
	router.Put("/:id/role", handler.SetRole)
	router.Delete("/:id", handler.DeleteUser)
}

// setupProfileRoutes configures profile routes
func setupProfileRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.GetProfile)
	router.Put("/", handler.UpdateProfile)
	router.Put("/password", handler.ChangePassword)
}

// setupServiceRoutes configures service catalog routes
func setupServiceRoutes(router fiber.Router, handler *handlers.ServiceHandler, auth fiber.Handler) {
	cached := middleware.CacheControl(catalogMaxAge)

	// Public routes
	router.Get("/", cached, handler.ListServices)
	router.Get("/categories", cached, handler.Categories)
	router.Get("/popular", cached, handler.PopularServices)
	router.Get("/:id", cached, handler.GetService)
	router.Get("/:id/rating", cached, handler.RatingSummary)

	// Admin routes
	admin := middleware.AdminOnly()
	router.Post("/", auth, admin, handler.CreateService)
	router.Put("/:id", auth, admin, handler.UpdateService)
	router.Delete("/:id", auth, admin, handler.DeleteService)
}

// setupStaffRoutes configures staff and availability routes
func setupStaffRoutes(router fiber.Router, handler *handlers.StaffHandler, auth fiber.Handler) {
	cached := middleware.CacheControl(catalogMaxAge)
	live := middleware.NoCacheHeaders()

	// Public routes; static segments before /:id
	router.Get("/", cached, handler.ListStaff)
	router.Get("/specializations", cached, handler.Specializations)
	router.Get("/available", live, handler.AvailableStaff)
	router.Get("/:id", cached, handler.GetStaff)
	router.Get("/:id/slots", live, handler.Slots)
	router.Get("/:id/availability", live, handler.Availability)

	// Admin routes
	admin := middleware.AdminOnly()
	router.Post("/", auth, admin, handler.CreateStaff)
	router.Put("/:id", auth, admin, handler.UpdateStaff)
	router.Put("/:id/schedule", auth, admin, handler.SetSchedule)
	router.Delete("/:id", auth, admin, handler.DeleteStaff)
	router.Post("/:id/rating/reconcile", auth, admin, handler.ReconcileRating)
}

// setupAppointmentRoutes configures booking routes
func setupAppointmentRoutes(router fiber.Router, handler *handlers.AppointmentHandler) {
	router.Post("/", handler.Book)
	router.Get("/my", handler.ListMine)
	router.Get("/:id", handler.Get)
	router.Put("/:id/cancel", handler.Cancel)
	router.Put("/:id/reschedule", handler.Reschedule)

	// Admin routes
	router.Get("/", middleware.AdminOnly(), handler.List)
	router.Put("/:id/status", middleware.AdminOnly(), handler.UpdateStatus)
	router.Put("/:id/check-in", middleware.AdminOnly(), handler.CheckIn)
}

// setupReviewRoutes configures review routes
func setupReviewRoutes(router fiber.Router, handler *handlers.ReviewHandler, auth fiber.Handler) {
	// Public routes
	router.Get("/", handler.List)
	router.Get("/top", handler.Top)
	router.Get("/staff/:id", handler.ByStaff)
	router.Get("/service/:id", handler.ByService)
	router.Get("/:id", handler.Get)

	// Protected routes
	router.Post("/", auth, handler.Create)
	router.Put("/:id", auth, handler.Update)
	router.Delete("/:id", auth, handler.Delete)
	router.Post("/:id/helpful", auth, handler.MarkHelpful)

	// Admin routes
	router.Post("/:id/response", auth, middleware.AdminOnly(), handler.Respond)
	router.Put("/:id/approval", auth, middleware.AdminOnly(), handler.SetApproval)
}

// setupDashboardRoutes configures dashboard routes
func setupDashboardRoutes(router fiber.Router, handler *handlers.DashboardHandler) {
	router.Get("/", handler.GetMyDashboard)
	router.Get("/me", handler.GetClientDashboard)
	router.Get("/admin", middleware.AdminOnly(), handler.GetAdminDashboard)
}

package handlers

import (
	"eclat-salon/internal/adapters/http/middleware"
	"eclat-salon/internal/core/services"
	"eclat-salon/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetAdminDashboard returns admin dashboard data
// @Summary Admin Dashboard
// @Description Today's sheet, monthly totals and busiest staff (Admin only)
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/admin [get]
func (h *DashboardHandler) GetAdminDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetAdminDashboard(c.Context())
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "Admin dashboard retrieved successfully", data)
}

// GetClientDashboard returns the caller's dashboard data
// @Summary Client Dashboard
// @Description Upcoming visits, history and appointments awaiting a review
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard/me [get]
func (h *DashboardHandler) GetClientDashboard(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	data, err := h.dashboardService.GetClientDashboard(c.Context(), userID)
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}

// GetMyDashboard returns dashboard based on user role
// @Summary My Dashboard
// @Description Get dashboard based on current user's role (auto-detect)
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) GetMyDashboard(c *fiber.Ctx) error {
	if middleware.IsAdmin(c) {
		data, err := h.dashboardService.GetAdminDashboard(c.Context())
		if err != nil {
			return fail(c, err)
		}
		return response.Success(c, "Dashboard retrieved successfully", fiber.Map{"role": "admin", "data": data})
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	data, err := h.dashboardService.GetClientDashboard(c.Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Dashboard retrieved successfully", fiber.Map{"role": "user", "data": data})
}

package handlers

import (
	"eclat-salon/internal/core/services"
	"eclat-salon/internal/pkg/pagination"
	"eclat-salon/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ServiceHandler handles the service catalog endpoints
type ServiceHandler struct {
	catalog *services.CatalogService
}

// NewServiceHandler creates a new service handler
func NewServiceHandler(catalog *services.CatalogService) *ServiceHandler {
	return &ServiceHandler{catalog: catalog}
}

// ListServices handles listing services
// @Summary List services
// @Tags Services
// @Produce json
// @Param category query string false "Category"
// @Param search query string false "Title or description contains"
// @Param popular query bool false "Only popular services"
// @Param price_min query number false "Minimum price"
// @Param price_max query number false "Maximum price"
// @Param sort query string false "newest, price_asc, price_desc, duration, title"
// @Param include query string false "Relations to load: staff"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /services [get]
func (h *ServiceHandler) ListServices(c *fiber.Ctx) error {
	input := &services.ListServicesInput{
		Page:        pagination.GetParams(c),
		Category:    c.Query("category"),
		Search:      c.Query("search"),
		PopularOnly: c.QueryBool("popular"),
		MinPrice:    queryFloat(c, "price_min"),
		MaxPrice:    queryFloat(c, "price_max"),
		Sort:        c.Query("sort"),
		Include:     c.Query("include"),
	}

	list, meta, err := h.catalog.ListServices(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}

	return response.Paginated(c, list, meta)
}

// Categories lists the service categories
// @Summary Service categories
// @Tags Services
// @Produce json
// @Success 200 {object} response.Response
// @Router /services/categories [get]
func (h *ServiceHandler) Categories(c *fiber.Ctx) error {
	return response.Success(c, "", h.catalog.Categories())
}

// PopularServices lists popular services
// @Summary Popular services
// @Tags Services
// @Produce json
// @Param limit query int false "How many" default(6)
// @Success 200 {object} response.Response
// @Router /services/popular [get]
func (h *ServiceHandler) PopularServices(c *fiber.Ctx) error {
	list, err := h.catalog.PopularServices(c.Context(), c.QueryInt("limit", 6))
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "", list)
}

// GetService handles getting a service by ID
// @Summary Get service
// @Tags Services
// @Produce json
// @Param id path int true "Service ID"
// @Param include query string false "Relations to load: staff"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /services/{id} [get]
func (h *ServiceHandler) GetService(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid service ID")
	}

	svc, err := h.catalog.GetService(c.Context(), id, c.Query("include"))
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "", svc)
}

// RatingSummary aggregates a service's reviews
// @Summary Service rating
// @Tags Services
// @Produce json
// @Param id path int true "Service ID"
// @Success 200 {object} response.Response
// @Router /services/{id}/rating [get]
func (h *ServiceHandler) RatingSummary(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid service ID")
	}

	summary, err := h.catalog.RatingSummary(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "", summary)
}

// CreateService handles creating a service (Admin only)
// @Summary Create service
// @Tags Services
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ServiceInput true "Service"
// @Success 201 {object} response.Response
// @Router /services [post]
func (h *ServiceHandler) CreateService(c *fiber.Ctx) error {
	var req services.ServiceInput
	if ok, err := bind(c, &req); !ok {
		return err
	}

	svc, err := h.catalog.CreateService(c.Context(), &req)
	if err != nil {
		return fail(c, err)
	}

	return response.Created(c, "Service created successfully", svc)
}

// UpdateService handles updating a service (Admin only)
// @Summary Update service
// @Tags Services
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Service ID"
// @Param body body services.ServiceInput true "Fields to update"
// @Success 200 {object} response.Response
// @Router /services/{id} [put]
func (h *ServiceHandler) UpdateService(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid service ID")
	}

	var req services.ServiceInput
	if ok, err := bind(c, &req); !ok {
		return err
	}

	svc, err := h.catalog.UpdateService(c.Context(), id, &req)
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "Service updated successfully", svc)
}

// DeleteService handles deleting a service (Admin only)
// @Summary Delete service
// @Tags Services
// @Produce json
// @Security BearerAuth
// @Param id path int true "Service ID"
// @Success 200 {object} response.Response
// @Router /services/{id} [delete]
func (h *ServiceHandler) DeleteService(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid service ID")
	}

	if err := h.catalog.DeleteService(c.Context(), id); err != nil {
		return fail(c, err)
	}

	return response.Success(c, "Service deleted successfully", nil)
}

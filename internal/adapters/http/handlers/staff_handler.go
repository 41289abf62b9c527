package handlers

import (
	"eclat-salon/internal/core/services"
	"eclat-salon/internal/pkg/pagination"
	"eclat-salon/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// StaffHandler handles staff profile, schedule and availability endpoints
type StaffHandler struct {
	staff        *services.StaffService
	availability *services.AvailabilityService
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(staff *services.StaffService, availability *services.AvailabilityService) *StaffHandler {
	return &StaffHandler{staff: staff, availability: availability}
}

// ScheduleRequest replaces a staff member's weekly schedule
type ScheduleRequest struct {
	Days []services.DayScheduleInput `json:"days" validate:"max=7,dive"`
}

// ListStaff handles listing staff members
// @Summary List staff
// @Tags Staff
// @Produce json
// @Param specialization query string false "Specialization"
// @Param available query bool false "Only staff taking bookings"
// @Param service_id query int false "Only staff performing this service"
// @Param search query string false "Name contains"
// @Param include query string false "Relations to load: services,schedule"
// @Success 200 {object} response.Response
// @Router /staff [get]
func (h *StaffHandler) ListStaff(c *fiber.Ctx) error {
	input := &services.ListStaffInput{
		Page:           pagination.GetParams(c),
		Specialization: c.Query("specialization"),
		AvailableOnly:  c.QueryBool("available"),
		Search:         c.Query("search"),
		ServiceID:      queryUint(c, "service_id"),
		Include:        c.Query("include"),
	}

	list, meta, err := h.staff.ListStaff(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}

	return response.Paginated(c, list, meta)
}

// Specializations lists the staff specializations
// @Summary Staff specializations
// @Tags Staff
// @Produce json
// @Success 200 {object} response.Response
// @Router /staff/specializations [get]
func (h *StaffHandler) Specializations(c *fiber.Ctx) error {
	return response.Success(c, "", h.staff.Specializations())
}

// GetStaff handles getting a staff member
// @Summary Get staff member
// @Tags Staff
// @Produce json
// @Param id path int true "Staff ID"
// @Param include query string false "Relations to load: services,schedule"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /staff/{id} [get]
func (h *StaffHandler) GetStaff(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid staff ID")
	}

	member, err := h.staff.GetStaff(c.Context(), id, c.Query("include"))
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "", member)
}

// Slots lists the free start times on a date
// @Summary Available slots
// @Description Free start times of a staff member on a date for a service (or an explicit duration)
// @Tags Staff
// @Produce json
// @Param id path int true "Staff ID"
// @Param date query string true "YYYY-MM-DD"
// @Param service_id query int false "Service ID"
// @Param duration query int false "Minutes, when no service_id is given"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /staff/{id}/slots [get]
func (h *StaffHandler) Slots(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid staff ID")
	}
	date := c.Query("date")
	if date == "" {
		return response.BadRequest(c, "date is required")
	}

	result, err := h.availability.Slots(c.Context(), id, date, queryUint(c, "service_id"), c.QueryInt("duration"))
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "", result)
}

// Availability reports whether the staff member works at a weekday and time
// @Summary Is available at
// @Tags Staff
// @Produce json
// @Param id path int true "Staff ID"
// @Param day query string true "Weekday name"
// @Param time query string true "HH:MM"
// @Success 200 {object} response.Response
// @Router /staff/{id}/availability [get]
func (h *StaffHandler) Availability(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid staff ID")
	}

	available, err := h.availability.IsAvailableAt(c.Context(), id, c.Query("day"), c.Query("time"))
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "", fiber.Map{
		"staff_id":  id,
		"day":       c.Query("day"),
		"time":      c.Query("time"),
		"available": available,
	})
}

// AvailableStaff lists staff performing a service who work at a weekday and time
// @Summary Available staff
// @Tags Staff
// @Produce json
// @Param service_id query int true "Service ID"
// @Param day query string true "Weekday name"
// @Param time query string true "HH:MM"
// @Success 200 {object} response.Response
// @Router /staff/available [get]
func (h *StaffHandler) AvailableStaff(c *fiber.Ctx) error {
	serviceID := queryUint(c, "service_id")
	if serviceID == 0 {
		return response.BadRequest(c, "service_id is required")
	}

	list, err := h.availability.AvailableStaff(c.Context(), serviceID, c.Query("day"), c.Query("time"))
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "", list)
}

// CreateStaff handles creating a staff member (Admin only)
// @Summary Create staff member
// @Tags Staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.StaffInput true "Staff member"
// @Success 201 {object} response.Response
// @Router /staff [post]
func (h *StaffHandler) CreateStaff(c *fiber.Ctx) error {
	var req services.StaffInput
	if ok, err := bind(c, &req); !ok {
		return err
	}

	member, err := h.staff.CreateStaff(c.Context(), &req)
	if err != nil {
		return fail(c, err)
	}

	return response.Created(c, "Staff member created successfully", member)
}

// UpdateStaff handles updating a staff member (Admin only)
// @Summary Update staff member
// @Tags Staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Param body body services.StaffInput true "Fields to update"
// @Success 200 {object} response.Response
// @Router /staff/{id} [put]
func (h *StaffHandler) UpdateStaff(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid staff ID")
	}

	var req services.StaffInput
	if ok, err := bind(c, &req); !ok {
		return err
	}

	member, err := h.staff.UpdateStaff(c.Context(), id, &req)
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "Staff member updated successfully", member)
}

// SetSchedule replaces the weekly schedule (Admin only)
// @Summary Replace schedule
// @Tags Staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Param body body ScheduleRequest true "Weekly schedule"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /staff/{id}/schedule [put]
func (h *StaffHandler) SetSchedule(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid staff ID")
	}

	var req ScheduleRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	rows, err := h.staff.SetSchedule(c.Context(), id, req.Days)
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "Schedule updated successfully", rows)
}

// DeleteStaff handles deleting a staff member (Admin only)
// @Summary Delete staff member
// @Tags Staff
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Success 200 {object} response.Response
// @Router /staff/{id} [delete]
func (h *StaffHandler) DeleteStaff(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid staff ID")
	}

	if err := h.staff.DeleteStaff(c.Context(), id); err != nil {
		return fail(c, err)
	}

	return response.Success(c, "Staff member deleted successfully", nil)
}

// ReconcileRating recomputes the stored rating from the reviews (Admin only)
// @Summary Reconcile rating
// @Tags Staff
// @Produce json
// @Security BearerAuth
// @Param id path int true "Staff ID"
// @Success 200 {object} response.Response
// @Router /staff/{id}/rating/reconcile [post]
func (h *StaffHandler) ReconcileRating(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid staff ID")
	}

	rating, err := h.staff.ReconcileRating(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "Rating reconciled", fiber.Map{
		"staff_id":         id,
		"average":          rating.Average,
		"count":            rating.Count,
		"formatted_rating": rating.Formatted(),
	})
}

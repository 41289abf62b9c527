package handlers

import (
	"eclat-salon/internal/adapters/http/middleware"
	"eclat-salon/internal/core/services"
	"eclat-salon/internal/pkg/pagination"
	"eclat-salon/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AppointmentHandler handles booking and appointment lifecycle endpoints
type AppointmentHandler struct {
	appointments *services.AppointmentService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(appointments *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

// Book handles booking an appointment
// @Summary Book appointment
// @Description Book a free slot; a lost race returns 409 and the client should fetch slots again
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BookInput true "Booking"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /appointments [post]
func (h *AppointmentHandler) Book(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.BookInput
	if ok, err := bind(c, &req); !ok {
		return err
	}

	appt, err := h.appointments.Book(c.Context(), userID, &req)
	if err != nil {
		return fail(c, err)
	}

	return response.Created(c, "Appointment booked successfully", appt)
}

// ListMine lists the caller's appointments
// @Summary My appointments
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status"
// @Param upcoming query bool false "Only upcoming"
// @Param include query string false "Relations to load: service,staff"
// @Success 200 {object} response.Response
// @Router /appointments/my [get]
func (h *AppointmentHandler) ListMine(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	list, meta, err := h.appointments.ListMine(c.Context(), userID, listInput(c))
	if err != nil {
		return fail(c, err)
	}

	return response.Paginated(c, list, meta)
}

// List lists all appointments (Admin only)
// @Summary List appointments
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param user_id query int false "User ID"
// @Param staff_id query int false "Staff ID"
// @Param status query string false "Status"
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Param include query string false "Relations to load: user,service,staff"
// @Success 200 {object} response.Response
// @Router /appointments [get]
func (h *AppointmentHandler) List(c *fiber.Ctx) error {
	input := listInput(c)
	input.UserID = queryUint(c, "user_id")

	list, meta, err := h.appointments.List(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}

	return response.Paginated(c, list, meta)
}

// Get handles getting one appointment
// @Summary Get appointment
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Param include query string false "Relations to load: user,service,staff"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid appointment ID")
	}
	who, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	appt, err := h.appointments.Get(c.Context(), id, who, c.Query("include"))
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "", appt)
}

// Cancel handles cancelling an appointment
// @Summary Cancel appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Param body body services.CancelInput false "Reason"
// @Success 200 {object} response.Response
// @Router /appointments/{id}/cancel [put]
func (h *AppointmentHandler) Cancel(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid appointment ID")
	}
	who, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.CancelInput
	if len(c.Body()) > 0 {
		if ok, err := bind(c, &req); !ok {
			return err
		}
	}

	appt, err := h.appointments.Cancel(c.Context(), id, who, &req)
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "Appointment cancelled", appt)
}

// Reschedule handles moving an appointment
// @Summary Reschedule appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Param body body services.RescheduleInput true "New date and time"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /appointments/{id}/reschedule [put]
func (h *AppointmentHandler) Reschedule(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid appointment ID")
	}
	who, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.RescheduleInput
	if ok, err := bind(c, &req); !ok {
		return err
	}

	appt, err := h.appointments.Reschedule(c.Context(), id, who, &req)
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "Appointment rescheduled", appt)
}

// UpdateStatus applies a status change (Admin only)
// @Summary Update appointment status
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Param body body services.UpdateStatusInput true "Status"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /appointments/{id}/status [put]
func (h *AppointmentHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid appointment ID")
	}

	var req services.UpdateStatusInput
	if ok, err := bind(c, &req); !ok {
		return err
	}

	appt, err := h.appointments.UpdateStatus(c.Context(), id, &req)
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "Appointment status updated", appt)
}

// CheckIn records the client's arrival (Admin only)
// @Summary Check in
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 200 {object} response.Response
// @Router /appointments/{id}/check-in [put]
func (h *AppointmentHandler) CheckIn(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid appointment ID")
	}

	appt, err := h.appointments.CheckIn(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "Client checked in", appt)
}

func listInput(c *fiber.Ctx) *services.ListAppointmentsInput {
	return &services.ListAppointmentsInput{
		Page:     pagination.GetParams(c),
		StaffID:  queryUint(c, "staff_id"),
		Status:   c.Query("status"),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
		Upcoming: c.QueryBool("upcoming"),
		Include:  c.Query("include"),
	}
}

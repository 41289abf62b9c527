package handlers

import (
	"errors"
	"strconv"

	"eclat-salon/internal/adapters/http/middleware"
	"eclat-salon/internal/core/domain"
	"eclat-salon/internal/core/services"
	"eclat-salon/internal/pkg/response"
	"eclat-salon/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var requestValidator = validate.New()

// slotConflictHint tells clients how to recover from a lost booking race
const slotConflictHint = "This time was just taken. Fetch the available slots again and pick another time."

// bind parses and validates the JSON body. When ok is false the error
// response has already been written and err must be returned.
func bind(c *fiber.Ctx, dst interface{}) (ok bool, err error) {
	if err := c.BodyParser(dst); err != nil {
		return false, response.BadRequest(c, "Invalid request body")
	}
	if err := requestValidator.Struct(dst); err != nil {
		if fields := validate.Fields(err); fields != nil {
			return false, response.ValidationError(c, fields)
		}
		return false, response.BadRequest(c, err.Error())
	}
	return true, nil
}

// paramID reads a positive numeric path parameter
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// queryUint reads an optional numeric query parameter; zero when absent or invalid
func queryUint(c *fiber.Ctx, name string) uint {
	v, err := strconv.ParseUint(c.Query(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

// queryFloat reads an optional decimal query parameter
func queryFloat(c *fiber.Ctx, name string) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// actor builds the service-level caller from the auth locals
func actor(c *fiber.Ctx) (services.Actor, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return services.Actor{}, false
	}
	return services.Actor{UserID: userID, IsAdmin: middleware.IsAdmin(c)}, true
}

// fail maps a service error onto an HTTP response
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrSlotConflict):
		return c.Status(fiber.StatusConflict).JSON(response.Response{
			Success: false,
			Error:   "Slot already booked",
			Details: fiber.Map{"hint": slotConflictHint},
		})
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrDuplicateEntry):
		return response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrUnauthorized):
		return response.Unauthorized(c, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		return response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidSchedule),
		errors.Is(err, domain.ErrInvalidDuration):
		return response.BadRequest(c, err.Error())
	}

	zap.L().Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return response.InternalServerError(c, "Internal server error")
}

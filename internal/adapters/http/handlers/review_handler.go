package handlers

import (
	"eclat-salon/internal/adapters/http/middleware"
	"eclat-salon/internal/core/services"
	"eclat-salon/internal/pkg/pagination"
	"eclat-salon/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles review endpoints
type ReviewHandler struct {
	reviews *services.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// ApprovalRequest shows or hides a review
type ApprovalRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

// List lists recent public reviews
// @Summary Recent reviews
// @Tags Reviews
// @Produce json
// @Param min_rating query int false "Minimum overall rating"
// @Param include query string false "Relations to load: user,staff,service"
// @Success 200 {object} response.Response
// @Router /reviews [get]
func (h *ReviewHandler) List(c *fiber.Ctx) error {
	return h.list(c, &services.ListReviewsInput{MinRating: c.QueryInt("min_rating")})
}

// ByStaff lists public reviews of a staff member
// @Summary Staff reviews
// @Tags Reviews
// @Produce json
// @Param id path int true "Staff ID"
// @Success 200 {object} response.Response
// @Router /reviews/staff/{id} [get]
func (h *ReviewHandler) ByStaff(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid staff ID")
	}
	return h.list(c, &services.ListReviewsInput{StaffID: id, MinRating: c.QueryInt("min_rating")})
}

// ByService lists public reviews of a service
// @Summary Service reviews
// @Tags Reviews
// @Produce json
// @Param id path int true "Service ID"
// @Success 200 {object} response.Response
// @Router /reviews/service/{id} [get]
func (h *ReviewHandler) ByService(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid service ID")
	}
	return h.list(c, &services.ListReviewsInput{ServiceID: id, MinRating: c.QueryInt("min_rating")})
}

// Top lists five-star reviews
// @Summary Top reviews
// @Tags Reviews
// @Produce json
// @Success 200 {object} response.Response
// @Router /reviews/top [get]
func (h *ReviewHandler) Top(c *fiber.Ctx) error {
	input := &services.ListReviewsInput{
		Page:    pagination.GetParamsWithDefault(c, 10),
		Include: c.Query("include"),
	}
	list, meta, err := h.reviews.Top(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}
	return response.Paginated(c, list, meta)
}

// Get returns one review
// @Summary Get review
// @Tags Reviews
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} response.Response
// @Router /reviews/{id} [get]
func (h *ReviewHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid review ID")
	}

	review, err := h.reviews.Get(c.Context(), id, c.Query("include"))
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "", review)
}

// Create reviews a completed appointment
// @Summary Create review
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateReviewInput true "Review"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /reviews [post]
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.CreateReviewInput
	if ok, err := bind(c, &req); !ok {
		return err
	}

	review, err := h.reviews.Create(c.Context(), userID, &req)
	if err != nil {
		return fail(c, err)
	}

	return response.Created(c, "Thank you for your review", review)
}

// Update edits the caller's review
// @Summary Update review
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Param body body services.UpdateReviewInput true "Fields to update"
// @Success 200 {object} response.Response
// @Router /reviews/{id} [put]
func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid review ID")
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.UpdateReviewInput
	if ok, err := bind(c, &req); !ok {
		return err
	}

	review, err := h.reviews.Update(c.Context(), id, userID, &req)
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "Review updated", review)
}

// Delete removes a review; owners and admins only
// @Summary Delete review
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Success 200 {object} response.Response
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid review ID")
	}
	who, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.reviews.Delete(c.Context(), id, who); err != nil {
		return fail(c, err)
	}

	return response.Success(c, "Review deleted", nil)
}

// MarkHelpful records a helpful vote
// @Summary Mark review helpful
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Success 200 {object} response.Response
// @Router /reviews/{id}/helpful [post]
func (h *ReviewHandler) MarkHelpful(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid review ID")
	}
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	count, err := h.reviews.MarkHelpful(c.Context(), id, userID)
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "Marked as helpful", fiber.Map{"helpful_count": count})
}

// Respond stores the salon's reply (Admin only)
// @Summary Respond to review
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Param body body services.RespondInput true "Reply"
// @Success 200 {object} response.Response
// @Router /reviews/{id}/response [post]
func (h *ReviewHandler) Respond(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid review ID")
	}
	adminID, _ := middleware.UserID(c)

	var req services.RespondInput
	if ok, err := bind(c, &req); !ok {
		return err
	}

	review, err := h.reviews.Respond(c.Context(), id, adminID, &req)
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "Response saved", review)
}

// SetApproval hides or shows a review (Admin only)
// @Summary Moderate review
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Param body body ApprovalRequest true "Approval"
// @Success 200 {object} response.Response
// @Router /reviews/{id}/approval [put]
func (h *ReviewHandler) SetApproval(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid review ID")
	}

	var req ApprovalRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	review, err := h.reviews.SetApproval(c.Context(), id, *req.Approved)
	if err != nil {
		return fail(c, err)
	}

	return response.Success(c, "Review updated", review)
}

func (h *ReviewHandler) list(c *fiber.Ctx, input *services.ListReviewsInput) error {
	input.Page = pagination.GetParams(c)
	input.Include = c.Query("include")

	list, meta, err := h.reviews.List(c.Context(), input)
	if err != nil {
		return fail(c, err)
	}
	return response.Paginated(c, list, meta)
}

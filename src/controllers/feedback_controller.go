package controllers

import (
	"Backend-Feedback-Portal/src/middleware"
	"Backend-Feedback-Portal/src/models"
	"Backend-Feedback-Portal/src/services/feedbacks"
	"Backend-Feedback-Portal/src/utils"

	"github.com/gofiber/fiber/v2"
)

type FeedbackController struct {
	feedbacks *feedbacks.Service
}

func NewFeedbackController(svc *feedbacks.Service) *FeedbackController {
	return &FeedbackController{feedbacks: svc}
}

// SubmitFeedback godoc
// @Summary      Submit general feedback
// @Tags         feedbacks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body feedbacks.SubmitInput true "Feedback"
// @Success      201  {object}  models.Feedback
// @Failure      400  {object}  models.ErrorResponse
// @Router       /feedbacks/submitresponse [post]
func (h *FeedbackController) SubmitFeedback(c *fiber.Ctx) error {
	s, err := middleware.CurrentSession(c)
	if err != nil {
		return err
	}
	var in feedbacks.SubmitInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	fb, err := h.feedbacks.Submit(c.UserContext(), s.UserID, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Feedback submitted successfully",
		"data":    fb,
	})
}

// MyFeedbacks godoc
// @Summary      The caller's own feedback
// @Tags         feedbacks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.Feedback
// @Router       /feedbacks/mine [get]
func (h *FeedbackController) MyFeedbacks(c *fiber.Ctx) error {
	s, err := middleware.CurrentSession(c)
	if err != nil {
		return err
	}
	list, err := h.feedbacks.Mine(c.UserContext(), s.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": list})
}

// GetFilteredFeedbacks godoc
// @Summary      Filter feedback (teacher/admin)
// @Tags         feedbacks
// @Produce      json
// @Security     BearerAuth
// @Param        teacherName query string false "Teacher name (partial, case-insensitive)"
// @Param        course      query string false "Course"
// @Param        semester    query int    false "Semester"
// @Param        section     query string false "Section"
// @Param        status      query string false "pending, reviewed or resolved"
// @Param        category    query string false "Category"
// @Param        from        query string false "From date (YYYY-MM-DD)"
// @Param        to          query string false "To date (YYYY-MM-DD)"
// @Success      200  {array}  models.FeedbackView
// @Failure      400  {object}  models.ErrorResponse
// @Router       /feedbacks [get]
func (h *FeedbackController) GetFilteredFeedbacks(c *fiber.Ctx) error {
	var filter models.FeedbackFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.NewValidationError("Invalid query: %v", err)
	}
	from, err := parseDateQuery(c, "from", false)
	if err != nil {
		return err
	}
	to, err := parseDateQuery(c, "to", true)
	if err != nil {
		return err
	}
	filter.From, filter.To = from, to

	list, err := h.feedbacks.Filtered(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": list, "total": len(list)})
}

// MarkFeedbackAsRead godoc
// @Summary      Mark feedback as read
// @Tags         feedbacks
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Feedback ID"
// @Success      200  {object}  models.Feedback
// @Failure      404  {object}  models.ErrorResponse
// @Router       /feedbacks/{id}/read [put]
func (h *FeedbackController) MarkFeedbackAsRead(c *fiber.Ctx) error {
	id, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	fb, err := h.feedbacks.MarkRead(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Feedback marked as read", "data": fb})
}

// ReplyToFeedback godoc
// @Summary      Reply to feedback
// @Tags         feedbacks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string                true  "Feedback ID"
// @Param        body body  feedbacks.ReplyInput  true  "Reply"
// @Success      200  {object}  models.Feedback
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /feedbacks/{id}/reply [post]
func (h *FeedbackController) ReplyToFeedback(c *fiber.Ctx) error {
	s, err := middleware.CurrentSession(c)
	if err != nil {
		return err
	}
	id, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	var in feedbacks.ReplyInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	fb, err := h.feedbacks.Reply(c.UserContext(), s.UserID, id, in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Reply saved", "data": fb})
}

// UpdateFeedbackStatus godoc
// @Summary      Set feedback status
// @Tags         feedbacks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string                 true  "Feedback ID"
// @Param        body body  feedbacks.StatusInput  true  "Status"
// @Success      200  {object}  models.Feedback
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /feedbacks/{id}/status [put]
func (h *FeedbackController) UpdateFeedbackStatus(c *fiber.Ctx) error {
	id, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	var in feedbacks.StatusInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	fb, err := h.feedbacks.UpdateStatus(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Feedback status updated", "data": fb})
}

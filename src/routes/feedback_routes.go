package routes

import (
	"Backend-Feedback-Portal/src/controllers"

	"github.com/gofiber/fiber/v2"
)

func feedbackRoutes(router fiber.Router, h *controllers.FeedbackController, auth, staff fiber.Handler) {
	feedbacks := router.Group("/feedbacks", auth)

	feedbacks.Post("/submitresponse", h.SubmitFeedback)
	feedbacks.Get("/mine", h.MyFeedbacks)
	feedbacks.Get("/", staff, h.GetFilteredFeedbacks)
	feedbacks.Put("/:id/read", staff, h.MarkFeedbackAsRead)
	feedbacks.Post("/:id/reply", staff, h.ReplyToFeedback)
	feedbacks.Put("/:id/status", staff, h.UpdateFeedbackStatus)
}

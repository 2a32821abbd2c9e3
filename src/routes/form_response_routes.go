package routes

import (
	"Backend-Feedback-Portal/src/controllers"
	"Backend-Feedback-Portal/src/middleware"
	"Backend-Feedback-Portal/src/models"

	"github.com/gofiber/fiber/v2"
)

func formResponseRoutes(router fiber.Router, h *controllers.FormResponseController, auth, staff fiber.Handler) {
	responses := router.Group("/form-responses", auth)
	student := middleware.RequireRoles(models.RoleStudent)

	responses.Post("/submitresponse", student, h.SubmitResponse)
	responses.Get("/my-responses", student, h.MyResponses)
	responses.Get("/responses/analytics/:formId", staff, h.GetAnalytics)
	responses.Get("/responses/:formId", staff, h.GetResponsesByForm)
	responses.Get("/export", staff, h.ExportCSV)
}

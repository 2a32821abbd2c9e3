package routes

import (
	"Backend-Feedback-Portal/src/controllers"

	"github.com/gofiber/fiber/v2"
)

// formRoutes กำหนด route สำหรับ form management
func formRoutes(router fiber.Router, h *controllers.FormController, auth, staff fiber.Handler) {
	forms := router.Group("/forms", auth)

	forms.Post("/create-form", staff, h.CreateForm)
	forms.Get("/forms", h.GetForms)
	forms.Get("/:id", h.GetFormByID)
	forms.Put("/:id", staff, h.UpdateForm)
	forms.Delete("/:id", staff, h.DeleteForm)
	forms.Put("/:id/active", staff, h.ToggleFormActive)
	forms.Post("/:id/notify", staff, h.RepublishForm)
	forms.Get("/:id/qrcode", staff, h.GetFormQRCode)
}

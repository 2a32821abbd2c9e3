package routes

import (
	"Backend-Feedback-Portal/src/controllers"

	"github.com/gofiber/fiber/v2"
)

func notificationRoutes(router fiber.Router, h *controllers.NotificationController, auth, staff fiber.Handler) {
	notifications := router.Group("/notifications", auth)

	notifications.Post("/send", staff, h.SendNotification)
	notifications.Get("/:userId", h.GetNotificationsForUser)
	notifications.Get("/:userId/unread-count", h.GetUnreadCount)
	notifications.Put("/:userId/read-all", h.MarkAllAsRead)
	notifications.Put("/:id/read", h.MarkNotificationAsRead)
	notifications.Delete("/:id", h.DeleteNotification)
}

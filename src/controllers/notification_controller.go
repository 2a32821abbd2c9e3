package controllers

import (
	"Backend-Feedback-Portal/src/middleware"
	"Backend-Feedback-Portal/src/services/notifications"

	"github.com/gofiber/fiber/v2"
)

type NotificationController struct {
	notifications *notifications.Service
}

func NewNotificationController(svc *notifications.Service) *NotificationController {
	return &NotificationController{notifications: svc}
}

func notificationCaller(c *fiber.Ctx) (notifications.Caller, error) {
	s, err := middleware.CurrentSession(c)
	if err != nil {
		return notifications.Caller{}, err
	}
	return notifications.Caller{UserID: s.UserID, Role: s.Role}, nil
}

// SendNotification godoc
// @Summary      Send one notification (teacher/admin)
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body notifications.SendInput true "Notification"
// @Success      201  {object}  models.Notification
// @Failure      400  {object}  models.ErrorResponse
// @Router       /notifications/send [post]
func (h *NotificationController) SendNotification(c *fiber.Ctx) error {
	var in notifications.SendInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	n, err := h.notifications.Send(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Notification sent", "data": n})
}

// GetNotificationsForUser godoc
// @Summary      A user's notifications, newest first
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path  string  true  "User ID"
// @Success      200  {array}  models.Notification
// @Failure      403  {object}  models.ErrorResponse
// @Router       /notifications/{userId} [get]
func (h *NotificationController) GetNotificationsForUser(c *fiber.Ctx) error {
	caller, err := notificationCaller(c)
	if err != nil {
		return err
	}
	userID, err := paramObjectID(c, "userId")
	if err != nil {
		return err
	}
	list, err := h.notifications.ListForUser(c.UserContext(), caller, userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": list})
}

// GetUnreadCount godoc
// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path  string  true  "User ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  models.ErrorResponse
// @Router       /notifications/{userId}/unread-count [get]
func (h *NotificationController) GetUnreadCount(c *fiber.Ctx) error {
	caller, err := notificationCaller(c)
	if err != nil {
		return err
	}
	userID, err := paramObjectID(c, "userId")
	if err != nil {
		return err
	}
	n, err := h.notifications.UnreadCount(c.UserContext(), caller, userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"unread": n})
}

// MarkAllAsRead godoc
// @Summary      Mark all own notifications read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path  string  true  "User ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  models.ErrorResponse
// @Router       /notifications/{userId}/read-all [put]
func (h *NotificationController) MarkAllAsRead(c *fiber.Ctx) error {
	caller, err := notificationCaller(c)
	if err != nil {
		return err
	}
	userID, err := paramObjectID(c, "userId")
	if err != nil {
		return err
	}
	n, err := h.notifications.MarkAllRead(c.UserContext(), caller, userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Notifications marked as read", "updated": n})
}

// MarkNotificationAsRead godoc
// @Summary      Mark one notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Notification ID"
// @Success      200  {object}  models.Notification
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /notifications/{id}/read [put]
func (h *NotificationController) MarkNotificationAsRead(c *fiber.Ctx) error {
	caller, err := notificationCaller(c)
	if err != nil {
		return err
	}
	id, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	n, err := h.notifications.MarkRead(c.UserContext(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read", "data": n})
}

// DeleteNotification godoc
// @Summary      Delete one notification
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Notification ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /notifications/{id} [delete]
func (h *NotificationController) DeleteNotification(c *fiber.Ctx) error {
	caller, err := notificationCaller(c)
	if err != nil {
		return err
	}
	id, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.notifications.Delete(c.UserContext(), caller, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Notification deleted"})
}

package routes

import (
	"Backend-Feedback-Portal/src/controllers"
	"Backend-Feedback-Portal/src/middleware"
	"Backend-Feedback-Portal/src/models"
	"Backend-Feedback-Portal/src/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// Handlers รวม controller ทั้งหมดที่ router ต้องใช้
type Handlers struct {
	JWT       *utils.JWTManager
	Blacklist utils.TokenBlacklist

	Auth          *controllers.AuthController
	Users         *controllers.UserController
	Forms         *controllers.FormController
	Responses     *controllers.FormResponseController
	Feedbacks     *controllers.FeedbackController
	Notifications *controllers.NotificationController
}

func InitRoutes(app *fiber.App, h Handlers) {
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api/v1")
	auth := middleware.AuthJWT(h.JWT, h.Blacklist)
	staff := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)

	userRoutes(api, h, auth)
	formRoutes(api, h.Forms, auth, staff)
	formResponseRoutes(api, h.Responses, auth, staff)
	feedbackRoutes(api, h.Feedbacks, auth, staff)
	notificationRoutes(api, h.Notifications, auth, staff)

	// Route เช็คว่า API ทำงานอยู่
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("✅ API is running...")
	})
}

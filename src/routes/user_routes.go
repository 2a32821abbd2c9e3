package routes

import (
	"Backend-Feedback-Portal/src/middleware"
	"Backend-Feedback-Portal/src/models"

	"github.com/gofiber/fiber/v2"
)

func userRoutes(router fiber.Router, h Handlers, auth fiber.Handler) {
	users := router.Group("/users")
	admin := middleware.RequireRoles(models.RoleAdmin)

	users.Post("/register", middleware.RegisterRateLimiter(), h.Auth.Register)
	users.Post("/login", middleware.LoginRateLimiter(), h.Auth.Login)
	users.Post("/refresh-token", h.Auth.RefreshToken)
	users.Post("/logout", auth, h.Auth.Logout)

	users.Get("/me", auth, h.Users.Me)
	users.Patch("/me", auth, h.Users.UpdateMe)
	users.Post("/change-password", auth, h.Users.ChangePassword)

	users.Get("/", auth, admin, h.Users.ListUsers)
	users.Put("/:id/role", auth, admin, h.Users.UpdateRole)
}

package controllers

import (
	"Backend-Feedback-Portal/src/middleware"
	"Backend-Feedback-Portal/src/services/users"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	users *users.Service
}

func NewUserController(svc *users.Service) *UserController {
	return &UserController{users: svc}
}

// Me godoc
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Failure      401  {object}  models.ErrorResponse
// @Router       /users/me [get]
func (h *UserController) Me(c *fiber.Ctx) error {
	s, err := middleware.CurrentSession(c)
	if err != nil {
		return err
	}
	u, err := h.users.Get(c.UserContext(), s.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": u})
}

// UpdateMe godoc
// @Summary      Update own profile
// @Description  Full name for everyone; academic details only for students
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body users.UpdateProfileInput true "Profile"
// @Success      200  {object}  models.User
// @Failure      400  {object}  models.ErrorResponse
// @Router       /users/me [patch]
func (h *UserController) UpdateMe(c *fiber.Ctx) error {
	s, err := middleware.CurrentSession(c)
	if err != nil {
		return err
	}
	var in users.UpdateProfileInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	u, err := h.users.UpdateProfile(c.UserContext(), s.UserID, in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Profile updated", "data": u})
}

// ChangePassword godoc
// @Summary      Change own password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body users.ChangePasswordInput true "Passwords"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /users/change-password [post]
func (h *UserController) ChangePassword(c *fiber.Ctx) error {
	s, err := middleware.CurrentSession(c)
	if err != nil {
		return err
	}
	var in users.ChangePasswordInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if err := h.users.ChangePassword(c.UserContext(), s.UserID, in); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}

// ListUsers godoc
// @Summary      List users (admin)
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role  query  string  false  "student, teacher or admin"
// @Param        page  query  int     false  "Page"   default(1)
// @Param        limit query  int     false  "Limit"  default(10)
// @Success      200  {object}  models.PaginatedResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /users [get]
func (h *UserController) ListUsers(c *fiber.Ctx) error {
	res, err := h.users.List(c.UserContext(), c.Query("role"), paginationFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// UpdateRole godoc
// @Summary      Change a user's role (admin)
// @Description  Moving a user to student requires academic details
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string                true  "User ID"
// @Param        body body  users.UpdateRoleInput true  "Role"
// @Success      200  {object}  models.User
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /users/{id}/role [put]
func (h *UserController) UpdateRole(c *fiber.Ctx) error {
	id, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	var in users.UpdateRoleInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	u, err := h.users.UpdateRole(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Role updated", "data": u})
}

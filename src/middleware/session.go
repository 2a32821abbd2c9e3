package middleware

import (
	"Backend-Feedback-Portal/src/models"
	"Backend-Feedback-Portal/src/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const sessionKey = "session"

// Session is the authenticated caller, carried per request instead of in globals.
type Session struct {
	UserID primitive.ObjectID
	Email  string
	Role   string
	Token  string
	Claims *utils.JWTClaims
}

func (s *Session) IsStudent() bool { return s.Role == models.RoleStudent }

func (s *Session) IsStaff() bool { return s.Role == models.RoleTeacher || s.Role == models.RoleAdmin }

func (s *Session) IsAdmin() bool { return s.Role == models.RoleAdmin }

func CurrentSession(c *fiber.Ctx) (*Session, error) {
	s, ok := c.Locals(sessionKey).(*Session)
	if !ok || s == nil {
		return nil, utils.NewUnauthorizedError("User not authenticated")
	}
	return s, nil
}

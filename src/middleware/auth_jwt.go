package middleware

import (
	"Backend-Feedback-Portal/src/utils"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const AccessTokenCookie = "accessToken"

// AuthJWT ตรวจ Bearer token (หรือ cookie) แล้วเก็บ Session ไว้ใน request context
func AuthJWT(jwtm *utils.JWTManager, blacklist utils.TokenBlacklist) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			return utils.NewUnauthorizedError("Missing or invalid Authorization header")
		}

		claims, err := jwtm.ParseAccess(tokenStr)
		if err != nil {
			return utils.NewUnauthorizedError("Invalid or expired token")
		}

		revoked, err := blacklist.IsBlacklisted(c.UserContext(), tokenStr)
		if err != nil {
			log.Println("⚠️ blacklist check failed:", err)
		}
		if revoked {
			return utils.NewUnauthorizedError("Token has been revoked")
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			return utils.NewUnauthorizedError("Invalid token subject")
		}

		c.Locals(sessionKey, &Session{
			UserID: userID,
			Email:  claims.Email,
			Role:   claims.Role,
			Token:  tokenStr,
			Claims: claims,
		})
		return c.Next()
	}
}

// RequireRoles gates a route to the listed roles; must run after AuthJWT.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := CurrentSession(c)
		if err != nil {
			return err
		}
		for _, r := range roles {
			if s.Role == r {
				return c.Next()
			}
		}
		return utils.NewForbiddenError("Forbidden: you are not authorized to access this resource")
	}
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return c.Cookies(AccessTokenCookie)
}

package middleware

import (
	"time"

	"Backend-Feedback-Portal/src/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// GlobalRateLimiter สำหรับทุก endpoint
func GlobalRateLimiter(max int, window time.Duration) fiber.Handler {
	return newLimiter(max, window, "Too many requests, please try again later.")
}

// LoginRateLimiter เข้มกว่าปกติ
func LoginRateLimiter() fiber.Handler {
	return newLimiter(5, time.Minute, "Too many login attempts, please try again in a minute.")
}

func RegisterRateLimiter() fiber.Handler {
	return newLimiter(3, 5*time.Minute, "Too many registration attempts, please wait a few minutes.")
}

func newLimiter(max int, window time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.HandleError(c, fiber.StatusTooManyRequests, message)
		},
	})
}

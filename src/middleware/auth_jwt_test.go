package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"Backend-Feedback-Portal/src/models"
	"Backend-Feedback-Portal/src/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryBlacklist map[string]bool

func (m memoryBlacklist) Blacklist(_ context.Context, token string, _ time.Duration) error {
	m[token] = true
	return nil
}

func (m memoryBlacklist) IsBlacklisted(_ context.Context, token string) (bool, error) {
	return m[token], nil
}

func newTestApp(jwtm *utils.JWTManager, bl utils.TokenBlacklist) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	app.Use(AuthJWT(jwtm, bl))
	app.Get("/me", func(c *fiber.Ctx) error {
		s, err := CurrentSession(c)
		if err != nil {
			return err
		}
		return c.SendString(s.UserID.Hex() + ":" + s.Role)
	})
	app.Get("/staff", RequireRoles(models.RoleTeacher, models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestAuthJWT(t *testing.T) {
	jwtm := utils.NewJWTManager("a", "r", time.Minute, time.Hour)
	bl := memoryBlacklist{}
	app := newTestApp(jwtm, bl)

	userID := primitive.NewObjectID()
	pair, err := jwtm.GeneratePair(userID.Hex(), "s@uni.test", models.RoleStudent)
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/me", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("bearer accepted", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("cookie accepted", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Cookie", AccessTokenCookie+"="+pair.AccessToken)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("student blocked from staff route", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/staff", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("blacklisted token rejected", func(t *testing.T) {
		bl[pair.AccessToken] = true
		defer delete(bl, pair.AccessToken)

		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestRequireRolesAllowsStaff(t *testing.T) {
	jwtm := utils.NewJWTManager("a", "r", time.Minute, time.Hour)
	app := newTestApp(jwtm, memoryBlacklist{})

	pair, err := jwtm.GeneratePair(primitive.NewObjectID().Hex(), "t@uni.test", models.RoleTeacher)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/staff", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

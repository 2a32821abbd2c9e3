package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"Backend-Feedback-Portal/src/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandlerEnvelope(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/conflict", func(c *fiber.Ctx) error { return NewConflictError("response already submitted") })
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "teapot") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("driver exploded") })

	cases := []struct {
		path    string
		status  int
		message string
	}{
		{"/conflict", fiber.StatusConflict, "response already submitted"},
		{"/fiber", fiber.StatusTeapot, "teapot"},
		{"/boom", fiber.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var out models.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &out))
			assert.Equal(t, tc.status, out.Status)
			assert.Equal(t, tc.message, out.Message)
		})
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, 404, StatusOf(NewNotFoundError("form")))
	assert.Equal(t, 403, StatusOf(NewForbiddenError("nope")))
	assert.Equal(t, 500, StatusOf(errors.New("x")))
}

func TestValidateStruct(t *testing.T) {
	type loginIn struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	err := ValidateStruct(loginIn{Email: "nope", Password: "123"})
	require.Error(t, err)
	assert.Equal(t, 400, StatusOf(err))
	assert.Contains(t, err.Error(), "Email must be a valid email")
	assert.Contains(t, err.Error(), "Password must be at least 6")

	assert.NoError(t, ValidateStruct(loginIn{Email: "a@uni.test", Password: "secret1"}))
}

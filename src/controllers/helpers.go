package controllers

import (
	"strings"
	"time"

	"Backend-Feedback-Portal/src/models"
	"Backend-Feedback-Portal/src/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func paramObjectID(c *fiber.Ctx, name string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(c.Params(name))
	if err != nil {
		return primitive.NilObjectID, utils.NewValidationError("Invalid %s", name)
	}
	return oid, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return utils.NewValidationError("Invalid input: %v", err)
	}
	return nil
}

func paginationFrom(c *fiber.Ctx) models.PaginationParams {
	p := models.DefaultPagination()
	_ = c.QueryParser(&p)
	return p
}

// parseDateQuery accepts RFC3339 or YYYY-MM-DD; endOfDay moves a bare date to 23:59:59.
func parseDateQuery(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, utils.NewValidationError("Invalid %s date, use YYYY-MM-DD", key)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, nil
}

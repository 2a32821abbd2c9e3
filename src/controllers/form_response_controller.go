package controllers

import (
	"bufio"
	"context"
	"log"
	"time"

	"Backend-Feedback-Portal/src/middleware"
	"Backend-Feedback-Portal/src/services/responses"
	"Backend-Feedback-Portal/src/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const exportTimeout = 2 * time.Minute

type FormResponseController struct {
	responses *responses.Service
}

func NewFormResponseController(svc *responses.Service) *FormResponseController {
	return &FormResponseController{responses: svc}
}

// SubmitResponse godoc
// @Summary      Submit ratings for a form
// @Description  Student only; one response per student per form
// @Tags         form-responses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body responses.SubmitInput true "Ratings"
// @Success      201  {object}  models.FormResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /form-responses/submitresponse [post]
func (h *FormResponseController) SubmitResponse(c *fiber.Ctx) error {
	s, err := middleware.CurrentSession(c)
	if err != nil {
		return err
	}
	var in responses.SubmitInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	resp, err := h.responses.Submit(c.UserContext(), s.UserID, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Response submitted successfully",
		"data":    resp,
	})
}

// MyResponses godoc
// @Summary      The caller's own submissions
// @Tags         form-responses
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.FormResponse
// @Router       /form-responses/my-responses [get]
func (h *FormResponseController) MyResponses(c *fiber.Ctx) error {
	s, err := middleware.CurrentSession(c)
	if err != nil {
		return err
	}
	list, err := h.responses.Mine(c.UserContext(), s.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": list})
}

// GetResponsesByForm godoc
// @Summary      All responses of a form
// @Tags         form-responses
// @Produce      json
// @Security     BearerAuth
// @Param        formId  path  string  true  "Form ID"
// @Success      200  {array}  models.FormResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /form-responses/responses/{formId} [get]
func (h *FormResponseController) GetResponsesByForm(c *fiber.Ctx) error {
	formID, err := paramObjectID(c, "formId")
	if err != nil {
		return err
	}
	list, err := h.responses.ListByForm(c.UserContext(), formID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": list, "total": len(list)})
}

// GetAnalytics godoc
// @Summary      Per-question average and count
// @Tags         form-responses
// @Produce      json
// @Security     BearerAuth
// @Param        formId  path  string  true  "Form ID"
// @Success      200  {array}  models.QuestionStat
// @Failure      404  {object}  models.ErrorResponse
// @Router       /form-responses/responses/analytics/{formId} [get]
func (h *FormResponseController) GetAnalytics(c *fiber.Ctx) error {
	formID, err := paramObjectID(c, "formId")
	if err != nil {
		return err
	}
	stats, err := h.responses.Aggregate(c.UserContext(), formID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// ExportCSV godoc
// @Summary      Export responses as CSV
// @Description  One row per response and question; all forms when formId is omitted
// @Tags         form-responses
// @Produce      text/csv
// @Security     BearerAuth
// @Param        formId  query  string  false  "Form ID"
// @Success      200  {file}  binary
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /form-responses/export [get]
func (h *FormResponseController) ExportCSV(c *fiber.Ctx) error {
	var formID *primitive.ObjectID
	if raw := c.Query("formId"); raw != "" {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return utils.NewValidationError("Invalid formId")
		}
		formID = &oid
	}

	if err := h.responses.PrepareExport(c.UserContext(), formID); err != nil {
		return err
	}

	c.Attachment("responses.csv")
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	// stream ทีละแถวจาก cursor; handler คืนค่าก่อน callback นี้ทำงาน จึงใช้ context ของตัวเอง
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		rows, err := h.responses.WriteCSV(ctx, w, formID)
		if err == nil {
			err = w.Flush()
		}
		if err != nil {
			log.Printf("❌ CSV export stopped after %d rows: %v", rows, err)
			return
		}
		log.Printf("📤 CSV export rows=%d", rows)
	})
	return nil
}

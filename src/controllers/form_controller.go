package controllers

import (
	"Backend-Feedback-Portal/src/middleware"
	"Backend-Feedback-Portal/src/qrcode"
	"Backend-Feedback-Portal/src/services/forms"

	"github.com/gofiber/fiber/v2"
)

type FormController struct {
	forms   *forms.Service
	baseURL string
}

func NewFormController(svc *forms.Service, baseURL string) *FormController {
	return &FormController{forms: svc, baseURL: baseURL}
}

func formCaller(c *fiber.Ctx) (forms.Caller, error) {
	s, err := middleware.CurrentSession(c)
	if err != nil {
		return forms.Caller{}, err
	}
	return forms.Caller{UserID: s.UserID, Role: s.Role}, nil
}

// CreateForm godoc
// @Summary      Create a feedback form
// @Description  Teacher/admin. Students of the matching cohort are notified.
// @Tags         forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body forms.CreateFormInput true "Form"
// @Success      201  {object}  models.Form
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /forms/create-form [post]
func (h *FormController) CreateForm(c *fiber.Ctx) error {
	caller, err := formCaller(c)
	if err != nil {
		return err
	}
	var in forms.CreateFormInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	form, err := h.forms.Create(c.UserContext(), caller.UserID, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Form created successfully",
		"data":    form,
	})
}

// GetForms godoc
// @Summary      List forms
// @Description  Students only see active forms of their own cohort
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Param        page  query  int  false  "Page"   default(1)
// @Param        limit query  int  false  "Limit"  default(10)
// @Success      200  {object}  models.PaginatedResponse
// @Router       /forms/forms [get]
func (h *FormController) GetForms(c *fiber.Ctx) error {
	caller, err := formCaller(c)
	if err != nil {
		return err
	}
	res, err := h.forms.List(c.UserContext(), caller, paginationFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// GetFormByID godoc
// @Summary      Get a form
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Form ID"
// @Success      200  {object}  models.Form
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /forms/{id} [get]
func (h *FormController) GetFormByID(c *fiber.Ctx) error {
	caller, err := formCaller(c)
	if err != nil {
		return err
	}
	id, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	form, err := h.forms.Get(c.UserContext(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": form})
}

// UpdateForm godoc
// @Summary      Update a form
// @Tags         forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string                 true  "Form ID"
// @Param        body body  forms.UpdateFormInput  true  "Changes"
// @Success      200  {object}  models.Form
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /forms/{id} [put]
func (h *FormController) UpdateForm(c *fiber.Ctx) error {
	id, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	var in forms.UpdateFormInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	form, err := h.forms.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Form updated successfully", "data": form})
}

// DeleteForm godoc
// @Summary      Delete a form
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Form ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  models.ErrorResponse
// @Router       /forms/{id} [delete]
func (h *FormController) DeleteForm(c *fiber.Ctx) error {
	id, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.forms.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Form deleted successfully"})
}

// ToggleFormActive godoc
// @Summary      Toggle a form's active flag
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Form ID"
// @Success      200  {object}  models.Form
// @Failure      404  {object}  models.ErrorResponse
// @Router       /forms/{id}/active [put]
func (h *FormController) ToggleFormActive(c *fiber.Ctx) error {
	id, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	form, err := h.forms.ToggleActive(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Form status updated", "data": form})
}

// RepublishForm godoc
// @Summary      Send the formPublished notification again
// @Description  Students who were already notified are skipped
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Form ID"
// @Success      202  {object}  map[string]interface{}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /forms/{id}/notify [post]
func (h *FormController) RepublishForm(c *fiber.Ctx) error {
	id, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.forms.Republish(c.UserContext(), id); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "Form notifications dispatched"})
}

// GetFormQRCode godoc
// @Summary      QR code of the form's fill link
// @Tags         forms
// @Produce      png
// @Security     BearerAuth
// @Param        id    path   string  true   "Form ID"
// @Param        size  query  int     false  "Image size in pixels"  default(256)
// @Success      200  {file}  binary
// @Failure      404  {object}  models.ErrorResponse
// @Router       /forms/{id}/qrcode [get]
func (h *FormController) GetFormQRCode(c *fiber.Ctx) error {
	caller, err := formCaller(c)
	if err != nil {
		return err
	}
	id, err := paramObjectID(c, "id")
	if err != nil {
		return err
	}
	form, err := h.forms.Get(c.UserContext(), caller, id)
	if err != nil {
		return err
	}

	size := c.QueryInt("size", qrcode.DefaultSize)
	if size < 64 || size > 1024 {
		size = qrcode.DefaultSize
	}
	png, err := qrcode.GenerateQRCode(form.FillURL(h.baseURL), size)
	if err != nil {
		return err
	}
	c.Type("png")
	return c.Send(png)
}

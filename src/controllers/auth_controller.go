package controllers

import (
	"time"

	"Backend-Feedback-Portal/src/middleware"
	"Backend-Feedback-Portal/src/services/auth"
	"Backend-Feedback-Portal/src/utils"

	"github.com/gofiber/fiber/v2"
)

const RefreshTokenCookie = "refreshToken"

type AuthController struct {
	auth         *auth.Service
	cookieSecure bool
}

func NewAuthController(svc *auth.Service, cookieSecure bool) *AuthController {
	return &AuthController{auth: svc, cookieSecure: cookieSecure}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register godoc
// @Summary      Register a new user
// @Description  Multipart registration; the ID card image is required (JPEG/PNG, max 2 MB)
// @Tags         auth
// @Accept       multipart/form-data
// @Produce      json
// @Param        fullName formData string true "Full name"
// @Param        username formData string true "Username"
// @Param        email formData string true "Email"
// @Param        password formData string true "Password"
// @Param        role formData string false "student or teacher"
// @Param        course formData string false "Course (students)"
// @Param        year formData int false "Year (students)"
// @Param        semester formData int false "Semester (students)"
// @Param        section formData string false "Section (students)"
// @Param        specialization formData string false "Specialization (students)"
// @Param        idCard formData file true "ID card image"
// @Success      201  {object}  models.User
// @Failure      400  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /users/register [post]
func (h *AuthController) Register(c *fiber.Ctx) error {
	var in auth.RegisterInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	idCard, err := c.FormFile("idCard")
	if err != nil {
		idCard = nil
	}

	user, err := h.auth.Register(c.UserContext(), in, idCard)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"data":    user,
	})
}

// Login godoc
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body auth.LoginInput true "Credentials"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /users/login [post]
func (h *AuthController) Login(c *fiber.Ctx) error {
	var in auth.LoginInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	res, err := h.auth.Login(c.UserContext(), in)
	if err != nil {
		return err
	}
	h.setAuthCookies(c, res.Tokens)
	return c.JSON(tokenResponse("Login successful", res))
}

// RefreshToken godoc
// @Summary      Rotate the token pair
// @Description  Reads the refresh token from the refreshToken cookie or the JSON body
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body refreshRequest false "Refresh token"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  models.ErrorResponse
// @Router       /users/refresh-token [post]
func (h *AuthController) RefreshToken(c *fiber.Ctx) error {
	token := c.Cookies(RefreshTokenCookie)
	if token == "" {
		var body refreshRequest
		_ = c.BodyParser(&body)
		token = body.RefreshToken
	}

	res, err := h.auth.Refresh(c.UserContext(), token)
	if err != nil {
		h.clearAuthCookies(c)
		return err
	}
	h.setAuthCookies(c, res.Tokens)
	return c.JSON(tokenResponse("Token refreshed", res))
}

// Logout godoc
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  models.ErrorResponse
// @Router       /users/logout [post]
func (h *AuthController) Logout(c *fiber.Ctx) error {
	s, err := middleware.CurrentSession(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.UserContext(), s.UserID, s.Token, s.Claims); err != nil {
		return err
	}
	h.clearAuthCookies(c)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func tokenResponse(message string, res *auth.Result) fiber.Map {
	return fiber.Map{
		"message":      message,
		"user":         res.User,
		"accessToken":  res.Tokens.AccessToken,
		"refreshToken": res.Tokens.RefreshToken,
	}
}

func (h *AuthController) setAuthCookies(c *fiber.Ctx, pair *utils.TokenPair) {
	now := time.Now()
	c.Cookie(h.cookie(middleware.AccessTokenCookie, pair.AccessToken, now.Add(pair.AccessTTL)))
	c.Cookie(h.cookie(RefreshTokenCookie, pair.RefreshToken, now.Add(pair.RefreshTTL)))
}

func (h *AuthController) clearAuthCookies(c *fiber.Ctx) {
	expired := time.Unix(0, 0)
	c.Cookie(h.cookie(middleware.AccessTokenCookie, "", expired))
	c.Cookie(h.cookie(RefreshTokenCookie, "", expired))
}

func (h *AuthController) cookie(name, value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

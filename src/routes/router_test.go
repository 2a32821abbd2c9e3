package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"Backend-Feedback-Portal/src/controllers"
	"Backend-Feedback-Portal/src/models"
	"Backend-Feedback-Portal/src/services/auth"
	"Backend-Feedback-Portal/src/services/feedbacks"
	"Backend-Feedback-Portal/src/services/forms"
	"Backend-Feedback-Portal/src/services/notifications"
	"Backend-Feedback-Portal/src/services/responses"
	"Backend-Feedback-Portal/src/services/uploads"
	"Backend-Feedback-Portal/src/services/users"
	"Backend-Feedback-Portal/src/utils"
	"Backend-Feedback-Portal/test"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type server struct {
	app     *fiber.App
	jwt     *utils.JWTManager
	users   *test.MemoryUserStore
	notices *test.MemoryNotificationStore
}

// newServer wires the real services over in-memory stores; no Redis, so
// form notifications are sent inline and the blacklist runs in dev mode.
func newServer(t *testing.T) *server {
	userStore := test.NewMemoryUserStore()
	formStore := test.NewMemoryFormStore()
	notices := test.NewMemoryNotificationStore()

	notificationSvc := notifications.NewService(notices, userStore)
	formSvc := forms.NewService(formStore, userStore, inlinePublisher{notificationSvc})
	responseSvc := responses.NewService(test.NewMemoryResponseStore(userStore, formStore), formSvc)
	feedbackSvc := feedbacks.NewService(test.NewMemoryFeedbackStore(userStore), userStore, notificationSvc)

	jwtm := utils.NewJWTManager("a", "r", time.Minute, time.Hour)
	blacklist := utils.NewRedisBlacklist()
	authSvc := auth.NewService(userStore, jwtm, blacklist, uploads.NewService(t.TempDir(), 2<<20), nil)

	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	InitRoutes(app, Handlers{
		JWT:           jwtm,
		Blacklist:     blacklist,
		Auth:          controllers.NewAuthController(authSvc, false),
		Users:         controllers.NewUserController(users.NewService(userStore)),
		Forms:         controllers.NewFormController(formSvc, "http://portal.test"),
		Responses:     controllers.NewFormResponseController(responseSvc),
		Feedbacks:     controllers.NewFeedbackController(feedbackSvc),
		Notifications: controllers.NewNotificationController(notificationSvc),
	})
	return &server{app: app, jwt: jwtm, users: userStore, notices: notices}
}

type inlinePublisher struct {
	n *notifications.Service
}

func (p inlinePublisher) FormPublished(ctx context.Context, form *models.Form) error {
	_, err := p.n.NotifyFormPublished(ctx, form)
	return err
}

func (inlinePublisher) ScheduleClose(context.Context, *models.Form) error { return nil }

func (s *server) token(t *testing.T, u *models.User) string {
	pair, err := s.jwt.GeneratePair(u.ID.Hex(), u.Email, u.Role)
	require.NoError(t, err)
	return pair.AccessToken
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealthAndAuthRequired(t *testing.T) {
	s := newServer(t)

	resp := s.do(t, "GET", "/", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = s.do(t, "GET", "/api/v1/forms/forms", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var envelope models.ErrorResponse
	decode(t, resp, &envelope)
	assert.Equal(t, fiber.StatusUnauthorized, envelope.Status)
	assert.NotEmpty(t, envelope.Message)
}

func TestFormLifecycleOverHTTP(t *testing.T) {
	s := newServer(t)

	admin := s.users.Add(test.Staff(models.RoleAdmin))
	student := s.users.Add(test.Student("CS", 2, 1, ""))
	outsider := s.users.Add(test.Student("EE", 2, 1, ""))
	adminTok, studentTok := s.token(t, admin), s.token(t, student)

	// นิสิตสร้างฟอร์มไม่ได้
	resp := s.do(t, "POST", "/api/v1/forms/create-form", studentTok, map[string]interface{}{})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = s.do(t, "POST", "/api/v1/forms/create-form", adminTok, map[string]interface{}{
		"title":     "Databases midterm",
		"questions": []map[string]interface{}{{"text": "Clarity"}, {"text": "Pace", "scale": 3}},
		"course":    "CS",
		"year":      2,
		"semester":  1,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created struct {
		Data models.Form `json:"data"`
	}
	decode(t, resp, &created)
	formID := created.Data.ID.Hex()

	// แจ้งเตือนเฉพาะนิสิตในกลุ่ม
	all := s.notices.All()
	require.Len(t, all, 1)
	assert.Equal(t, student.ID, all[0].Recipient)

	resp = s.do(t, "GET", "/api/v1/forms/forms", studentTok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var page struct {
		Data  []models.Form `json:"data"`
		Total int64         `json:"total"`
	}
	decode(t, resp, &page)
	assert.Equal(t, int64(1), page.Total)

	resp = s.do(t, "GET", "/api/v1/forms/"+formID, s.token(t, outsider), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	submit := map[string]interface{}{
		"formId":  formID,
		"ratings": []map[string]interface{}{{"questionText": "Clarity", "rating": 4}, {"questionText": "Pace", "rating": 2}},
		"comment": "good, but fast",
	}
	resp = s.do(t, "POST", "/api/v1/form-responses/submitresponse", studentTok, submit)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = s.do(t, "POST", "/api/v1/form-responses/submitresponse", s.token(t, outsider), submit)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = s.do(t, "POST", "/api/v1/form-responses/submitresponse", studentTok, submit)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	var envelope models.ErrorResponse
	decode(t, resp, &envelope)
	assert.Equal(t, fiber.StatusConflict, envelope.Status)

	resp = s.do(t, "GET", "/api/v1/form-responses/responses/analytics/"+formID, studentTok, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = s.do(t, "GET", "/api/v1/form-responses/responses/analytics/"+formID, adminTok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var stats struct {
		Data []models.QuestionStat `json:"data"`
	}
	decode(t, resp, &stats)
	require.Len(t, stats.Data, 2)
	assert.Equal(t, "Clarity", stats.Data[0].QuestionText)

	resp = s.do(t, "GET", "/api/v1/form-responses/export?formId="+formID, adminTok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "responses.csv")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "Form Title,Student Name,Student Email,Question,Rating,Comment", lines[0])

	resp = s.do(t, "GET", "/api/v1/form-responses/export?formId="+primitive.NewObjectID().Hex(), adminTok, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	decode(t, resp, &envelope)
	assert.Equal(t, fiber.StatusNotFound, envelope.Status)

	resp = s.do(t, "GET", "/api/v1/forms/"+formID+"/qrcode", adminTok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}

func TestFeedbackOverHTTP(t *testing.T) {
	s := newServer(t)

	teacher := s.users.Add(test.Staff(models.RoleTeacher))
	student := s.users.Add(test.Student("CS", 1, 1, ""))
	studentTok, teacherTok := s.token(t, student), s.token(t, teacher)

	resp := s.do(t, "POST", "/api/v1/feedbacks/submitresponse", studentTok, map[string]interface{}{
		"message":   "Please share the slides earlier",
		"teacherId": teacher.ID.Hex(),
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created struct {
		Data models.Feedback `json:"data"`
	}
	decode(t, resp, &created)

	resp = s.do(t, "GET", "/api/v1/feedbacks?teacherName="+strings.ToUpper(teacher.FullName[:3]), teacherTok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list struct {
		Total int `json:"total"`
	}
	decode(t, resp, &list)
	assert.Equal(t, 1, list.Total)

	resp = s.do(t, "PUT", "/api/v1/feedbacks/"+created.Data.ID.Hex()+"/read", teacherTok, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = s.do(t, "GET", "/api/v1/notifications/"+student.ID.Hex()+"/unread-count", studentTok, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var unread struct {
		Unread int64 `json:"unread"`
	}
	decode(t, resp, &unread)
	assert.Equal(t, int64(1), unread.Unread)

	resp = s.do(t, "GET", "/api/v1/notifications/"+teacher.ID.Hex(), studentTok, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = s.do(t, "GET", "/api/v1/feedbacks?status=archived", teacherTok, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

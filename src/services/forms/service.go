package forms

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	DB "Backend-Feedback-Portal/src/database"
	"Backend-Feedback-Portal/src/models"
	"Backend-Feedback-Portal/src/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinQuestionScale = 2
	MaxQuestionScale = 10
)

// Publisher รับงานหลังบันทึกฟอร์ม: แจ้งเตือนนิสิต และตั้งเวลาปิดฟอร์ม
type Publisher interface {
	FormPublished(ctx context.Context, form *models.Form) error
	ScheduleClose(ctx context.Context, form *models.Form) error
}

type Users interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Caller is the authenticated user reading or changing forms.
type Caller struct {
	UserID primitive.ObjectID
	Role   string
}

type Service struct {
	store     Store
	users     Users
	publisher Publisher
	now       func() time.Time
}

func NewService(store Store, users Users, publisher Publisher) *Service {
	return &Service{store: store, users: users, publisher: publisher, now: time.Now}
}

type QuestionInput struct {
	Text  string `json:"text"`
	Scale int    `json:"scale"`
}

type CreateFormInput struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description"`
	Questions   []QuestionInput `json:"questions" validate:"required,min=1"`
	models.Cohort
	Deadline *time.Time `json:"deadline"`
	IsActive *bool      `json:"isActive"`
}

// UpdateFormInput is a partial update; nil fields keep their value.
type UpdateFormInput struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Questions   []QuestionInput `json:"questions"`
	Cohort      *models.Cohort  `json:"cohort"`
	Deadline    *time.Time      `json:"deadline"`
	IsActive    *bool           `json:"isActive"`
}

func buildQuestions(in []QuestionInput) ([]models.Question, error) {
	if len(in) == 0 {
		return nil, utils.NewValidationError("At least one question is required")
	}
	seen := make(map[string]bool, len(in))
	out := make([]models.Question, 0, len(in))
	for i, q := range in {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			return nil, utils.NewValidationError("Question %d text is required", i+1)
		}
		if seen[text] {
			return nil, utils.NewValidationError("Duplicate question %q", text)
		}
		seen[text] = true

		scale := q.Scale
		if scale == 0 {
			scale = models.DefaultQuestionScale
		}
		if scale < MinQuestionScale || scale > MaxQuestionScale {
			return nil, utils.NewValidationError("Question %q scale must be between %d and %d", text, MinQuestionScale, MaxQuestionScale)
		}
		out = append(out, models.Question{Text: text, Scale: scale})
	}
	return out, nil
}

func normalizeCohort(c models.Cohort) (models.Cohort, error) {
	c.Course = strings.TrimSpace(c.Course)
	c.Specialization = strings.TrimSpace(c.Specialization)
	if c.Course == "" || c.Year < 1 || c.Semester < 1 {
		return c, utils.NewValidationError("course, year and semester are required")
	}
	return c, nil
}

// Create บันทึกฟอร์ม แล้วแจ้งนิสิตในกลุ่ม (best-effort)
func (s *Service) Create(ctx context.Context, creator primitive.ObjectID, in CreateFormInput) (*models.Form, error) {
	if creator.IsZero() {
		return nil, utils.NewValidationError("createdBy is required")
	}
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, utils.NewValidationError("Title is required")
	}
	questions, err := buildQuestions(in.Questions)
	if err != nil {
		return nil, err
	}
	cohort, err := normalizeCohort(in.Cohort)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if in.Deadline != nil && !in.Deadline.After(now) {
		return nil, utils.NewValidationError("Deadline must be in the future")
	}

	form := &models.Form{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Questions:   questions,
		Cohort:      cohort,
		CreatedBy:   creator,
		IsActive:    in.IsActive == nil || *in.IsActive,
		Deadline:    in.Deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, form); err != nil {
		return nil, mapStoreError(err)
	}
	log.Printf("✅ Form created: %s (%s)", form.ID.Hex(), form.Title)

	s.publish(ctx, form)
	s.scheduleClose(ctx, form)
	return form, nil
}

func (s *Service) publish(ctx context.Context, form *models.Form) {
	if s.publisher == nil || !form.IsActive {
		return
	}
	if err := s.publisher.FormPublished(ctx, form); err != nil {
		log.Printf("⚠️ publish form %s failed: %v", form.ID.Hex(), err)
	}
}

func (s *Service) scheduleClose(ctx context.Context, form *models.Form) {
	if s.publisher == nil || form.Deadline == nil || !form.IsActive {
		return
	}
	if err := s.publisher.ScheduleClose(ctx, form); err != nil {
		log.Printf("⚠️ schedule close for form %s failed: %v", form.ID.Hex(), err)
	}
}

// List: นิสิตเห็นเฉพาะฟอร์มที่เปิดอยู่ของกลุ่มตัวเอง
func (s *Service) List(ctx context.Context, caller Caller, p models.PaginationParams) (*models.PaginatedResponse, error) {
	p = p.Normalize()

	filter := models.FormFilter{}
	if caller.Role == models.RoleStudent {
		ff, err := s.studentFilter(ctx, caller)
		if err != nil {
			return nil, err
		}
		filter = ff
	}

	list, total, err := s.store.List(ctx, filter, p)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return models.NewPaginatedResponse(list, total, p), nil
}

func (s *Service) studentFilter(ctx context.Context, caller Caller) (models.FormFilter, error) {
	u, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, DB.ErrNotFound) {
			return models.FormFilter{}, utils.NewUnauthorizedError("User no longer exists")
		}
		return models.FormFilter{}, err
	}
	ff, ok := models.StudentFormFilter(u)
	if !ok {
		return models.FormFilter{}, utils.NewForbiddenError("Student academic profile is incomplete")
	}
	return ff, nil
}

func (s *Service) Get(ctx context.Context, caller Caller, id primitive.ObjectID) (*models.Form, error) {
	form, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.Role != models.RoleStudent {
		return form, nil
	}

	ff, err := s.studentFilter(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !ff.Matches(form) {
		return nil, utils.NewForbiddenError("You do not have access to this form")
	}
	return form, nil
}

// AuthorizeStudent returns 403 unless the student belongs to the form's cohort.
func (s *Service) AuthorizeStudent(ctx context.Context, studentID primitive.ObjectID, form *models.Form) error {
	u, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, DB.ErrNotFound) {
			return utils.NewUnauthorizedError("User no longer exists")
		}
		return err
	}
	if !form.Cohort.IncludesStudent(u) {
		return utils.NewForbiddenError("You do not have access to this form")
	}
	return nil
}

// Find loads a form without visibility checks; used by other services and jobs.
func (s *Service) Find(ctx context.Context, id primitive.ObjectID) (*models.Form, error) {
	return s.find(ctx, id)
}

func (s *Service) find(ctx context.Context, id primitive.ObjectID) (*models.Form, error) {
	form, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return form, nil
}

func (s *Service) Update(ctx context.Context, id primitive.ObjectID, in UpdateFormInput) (*models.Form, error) {
	form, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	wasActive := form.IsActive
	oldDeadline := form.Deadline

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, utils.NewValidationError("Title is required")
		}
		form.Title = title
	}
	if in.Description != nil {
		form.Description = strings.TrimSpace(*in.Description)
	}
	if in.Questions != nil {
		questions, err := buildQuestions(in.Questions)
		if err != nil {
			return nil, err
		}
		form.Questions = questions
	}
	if in.Cohort != nil {
		cohort, err := normalizeCohort(*in.Cohort)
		if err != nil {
			return nil, err
		}
		form.Cohort = cohort
	}
	if in.Deadline != nil {
		if !in.Deadline.After(s.now()) {
			return nil, utils.NewValidationError("Deadline must be in the future")
		}
		form.Deadline = in.Deadline
	}
	if in.IsActive != nil {
		form.IsActive = *in.IsActive
	}
	if !wasActive && form.IsActive && !form.IsFillable(s.now()) {
		return nil, errDeadlinePassed
	}
	form.UpdatedAt = s.now()

	if err := s.store.Update(ctx, form); err != nil {
		return nil, mapStoreError(err)
	}

	if !wasActive && form.IsActive {
		s.publish(ctx, form)
	}
	if deadlineChanged(oldDeadline, form.Deadline) || (!wasActive && form.IsActive) {
		s.scheduleClose(ctx, form)
	}
	return form, nil
}

var errDeadlinePassed = utils.NewValidationError("Deadline has passed; set a new deadline before activating the form")

func deadlineChanged(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a != b
	}
	return !a.Equal(*b)
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}
	log.Printf("🗑️ Form deleted: %s", id.Hex())
	return nil
}

// ToggleActive flips isActive. Re-activating publishes again; the partial
// unique index keeps each student at one formPublished notice per form.
func (s *Service) ToggleActive(ctx context.Context, id primitive.ObjectID) (*models.Form, error) {
	form, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	form.IsActive = !form.IsActive
	if form.IsActive && !form.IsFillable(s.now()) {
		return nil, errDeadlinePassed
	}
	if err := s.store.SetActive(ctx, id, form.IsActive); err != nil {
		return nil, mapStoreError(err)
	}
	form.UpdatedAt = s.now()

	if form.IsActive {
		s.publish(ctx, form)
		s.scheduleClose(ctx, form)
	}
	return form, nil
}

// Republish sends formPublished again to the cohort; students already notified are skipped.
func (s *Service) Republish(ctx context.Context, id primitive.ObjectID) (*models.Form, error) {
	form, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !form.IsActive {
		return nil, utils.NewValidationError("Only active forms can be published")
	}
	if s.publisher == nil {
		return form, nil
	}
	if err := s.publisher.FormPublished(ctx, form); err != nil {
		return nil, utils.NewInternalError("Failed to publish form notifications")
	}
	return form, nil
}

// CloseExpired ปิดฟอร์มเมื่อเลย deadline; ฟอร์มที่ถูกลบหรือเลื่อน deadline จะถูกข้าม
func (s *Service) CloseExpired(ctx context.Context, id primitive.ObjectID) error {
	form, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, DB.ErrNotFound) {
			log.Println("⚠️ Form not found. Possibly deleted. Skipping close:", id.Hex())
			return nil
		}
		return err
	}
	if !form.IsActive {
		return nil
	}
	if form.Deadline == nil || s.now().Before(*form.Deadline) {
		log.Println("⚠️ Form deadline moved. Skipping close:", id.Hex())
		return nil
	}
	if err := s.store.SetActive(ctx, id, false); err != nil {
		return err
	}
	log.Println("✅ Form auto-closed after deadline:", id.Hex())
	return nil
}

func mapStoreError(err error) error {
	if errors.Is(err, DB.ErrNotFound) {
		return utils.NewNotFoundError("Form")
	}
	return err
}

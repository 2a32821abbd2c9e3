package responses

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	DB "Backend-Feedback-Portal/src/database"
	"Backend-Feedback-Portal/src/models"
	"Backend-Feedback-Portal/src/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CSVHeader is the first line of every export.
var CSVHeader = []string{"Form Title", "Student Name", "Student Email", "Question", "Rating", "Comment"}

// Forms resolves the form a response belongs to.
type Forms interface {
	Find(ctx context.Context, id primitive.ObjectID) (*models.Form, error)
	AuthorizeStudent(ctx context.Context, studentID primitive.ObjectID, form *models.Form) error
}

type Service struct {
	store Store
	forms Forms
	now   func() time.Time
}

func NewService(store Store, forms Forms) *Service {
	return &Service{store: store, forms: forms, now: time.Now}
}

type SubmitInput struct {
	FormID  string          `json:"formId" validate:"required"`
	Ratings []models.Rating `json:"ratings" validate:"required,min=1"`
	Comment string          `json:"comment"`
}

// Submit บันทึกคำตอบ; ส่งซ้ำได้ 409 จาก unique index (formId, studentId)
func (s *Service) Submit(ctx context.Context, studentID primitive.ObjectID, in SubmitInput) (*models.FormResponse, error) {
	if studentID.IsZero() {
		return nil, utils.NewValidationError("studentId is required")
	}
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	formID, err := primitive.ObjectIDFromHex(in.FormID)
	if err != nil {
		return nil, utils.NewValidationError("Invalid formId")
	}

	form, err := s.forms.Find(ctx, formID)
	if err != nil {
		return nil, err
	}
	if !form.IsFillable(s.now()) {
		return nil, utils.NewValidationError("This form is no longer accepting responses")
	}
	if err := s.forms.AuthorizeStudent(ctx, studentID, form); err != nil {
		return nil, err
	}

	ratings, err := checkRatings(form, in.Ratings)
	if err != nil {
		return nil, err
	}

	resp := &models.FormResponse{
		ID:        primitive.NewObjectID(),
		FormID:    formID,
		StudentID: studentID,
		Ratings:   ratings,
		Comment:   strings.TrimSpace(in.Comment),
		CreatedAt: s.now(),
	}
	if err := s.store.Insert(ctx, resp); err != nil {
		if errors.Is(err, DB.ErrDuplicateKey) {
			return nil, utils.NewConflictError("You have already submitted a response for this form")
		}
		return nil, err
	}
	log.Printf("✅ Response saved form=%s student=%s", formID.Hex(), studentID.Hex())
	return resp, nil
}

// checkRatings: ทุกข้อต้องเป็นคำถามของฟอร์ม ไม่ซ้ำ และอยู่ในช่วง 1..scale
func checkRatings(form *models.Form, in []models.Rating) ([]models.Rating, error) {
	seen := make(map[string]bool, len(in))
	out := make([]models.Rating, 0, len(in))
	for _, r := range in {
		text := strings.TrimSpace(r.QuestionText)
		q, ok := form.Question(text)
		if !ok {
			return nil, utils.NewValidationError("Unknown question %q", r.QuestionText)
		}
		if seen[text] {
			return nil, utils.NewValidationError("Question %q is rated more than once", text)
		}
		seen[text] = true
		if r.Rating < 1 || r.Rating > q.Scale {
			return nil, utils.NewValidationError("Rating for %q must be between 1 and %d", text, q.Scale)
		}
		out = append(out, models.Rating{QuestionText: text, Rating: r.Rating})
	}
	return out, nil
}

func (s *Service) Aggregate(ctx context.Context, formID primitive.ObjectID) ([]models.QuestionStat, error) {
	if _, err := s.forms.Find(ctx, formID); err != nil {
		return nil, err
	}
	return s.store.AggregateByQuestion(ctx, formID)
}

func (s *Service) ListByForm(ctx context.Context, formID primitive.ObjectID) ([]models.FormResponse, error) {
	if _, err := s.forms.Find(ctx, formID); err != nil {
		return nil, err
	}
	return s.store.ListByForm(ctx, formID)
}

func (s *Service) Mine(ctx context.Context, studentID primitive.ObjectID) ([]models.FormResponse, error) {
	return s.store.ListByStudent(ctx, studentID)
}

// PrepareExport checks formID before any CSV byte is written, so a missing
// form can still be answered with 404.
func (s *Service) PrepareExport(ctx context.Context, formID *primitive.ObjectID) error {
	if formID == nil {
		return nil
	}
	_, err := s.forms.Find(ctx, *formID)
	return err
}

// ExportCSV writes the header and one line per (response × question).
// A nil formID exports every form.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, formID *primitive.ObjectID) (int, error) {
	if err := s.PrepareExport(ctx, formID); err != nil {
		return 0, err
	}
	return s.WriteCSV(ctx, w, formID)
}

// WriteCSV streams rows from the store cursor into w without buffering the export.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer, formID *primitive.ObjectID) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return 0, err
	}

	rows := 0
	err := s.store.ExportRows(ctx, formID, func(r models.ExportRow) error {
		rows++
		return cw.Write([]string{
			r.FormTitle,
			r.StudentName,
			r.StudentEmail,
			r.Question,
			strconv.Itoa(r.Rating),
			r.Comment,
		})
	})
	if err != nil {
		return rows, err
	}

	cw.Flush()
	return rows, cw.Error()
}

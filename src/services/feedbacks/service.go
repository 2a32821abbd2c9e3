package feedbacks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	DB "Backend-Feedback-Portal/src/database"
	"Backend-Feedback-Portal/src/models"
	"Backend-Feedback-Portal/src/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultCategory = "general"

// Notifier is the notification side effect of feedback changes.
type Notifier interface {
	NotifyUser(ctx context.Context, recipient primitive.ObjectID, kind, message string, relatedID primitive.ObjectID, relatedModel string) error
	NotifyRole(ctx context.Context, role, kind, message string, relatedID primitive.ObjectID, relatedModel string) error
}

type Users interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type Service struct {
	store    Store
	users    Users
	notifier Notifier
	now      func() time.Time
}

func NewService(store Store, users Users, notifier Notifier) *Service {
	return &Service{store: store, users: users, notifier: notifier, now: time.Now}
}

type SubmitInput struct {
	Message     string `json:"message" validate:"required"`
	TeacherID   string `json:"teacherId"`
	TeacherName string `json:"teacherName"`
	Subject     string `json:"subject"`
	Category    string `json:"category"`
}

type ReplyInput struct {
	Reply string `json:"reply" validate:"required"`
}

type StatusInput struct {
	Status string `json:"status" validate:"required,oneof=pending reviewed resolved"`
}

// Submit บันทึก feedback แล้วแจ้งอาจารย์ที่ระบุ (หรือ admin ทุกคนถ้าไม่ระบุ)
func (s *Service) Submit(ctx context.Context, authorID primitive.ObjectID, in SubmitInput) (*models.Feedback, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, utils.NewValidationError("Message is required")
	}

	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		return nil, mapUserError(err, "User")
	}

	now := s.now()
	fb := &models.Feedback{
		ID:          primitive.NewObjectID(),
		StudentID:   authorID,
		Message:     message,
		TeacherName: strings.TrimSpace(in.TeacherName),
		Subject:     strings.TrimSpace(in.Subject),
		Category:    strings.TrimSpace(in.Category),
		Status:      models.FeedbackPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if fb.Category == "" {
		fb.Category = DefaultCategory
	}
	if author.Academic != nil {
		fb.Course = author.Academic.Course
		fb.Semester = author.Academic.Semester
		fb.Section = author.Academic.Section
	}

	if in.TeacherID != "" {
		tid, err := primitive.ObjectIDFromHex(in.TeacherID)
		if err != nil {
			return nil, utils.NewValidationError("Invalid teacherId")
		}
		teacher, err := s.users.FindByID(ctx, tid)
		if err != nil {
			return nil, mapUserError(err, "Teacher")
		}
		if teacher.Role != models.RoleTeacher {
			return nil, utils.NewValidationError("teacherId must refer to a teacher")
		}
		fb.TeacherID = &tid
		if fb.TeacherName == "" {
			fb.TeacherName = teacher.FullName
		}
	}

	if err := s.store.Insert(ctx, fb); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("New feedback from %s", author.FullName)
	if fb.TeacherID != nil {
		err = s.notifier.NotifyUser(ctx, *fb.TeacherID, models.NotificationFeedbackSubmitted, msg, fb.ID, models.RelatedFeedback)
	} else {
		err = s.notifier.NotifyRole(ctx, models.RoleAdmin, models.NotificationFeedbackSubmitted, msg, fb.ID, models.RelatedFeedback)
	}
	if err != nil {
		log.Printf("⚠️ feedbackSubmitted notification for %s failed: %v", fb.ID.Hex(), err)
	}
	return fb, nil
}

// MarkRead ตั้ง isRead; pending → reviewed แล้วแจ้งนิสิต (ครั้งแรกเท่านั้น)
func (s *Service) MarkRead(ctx context.Context, id primitive.ObjectID) (*models.Feedback, error) {
	fb, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if fb.IsRead {
		return fb, nil
	}

	fb.IsRead = true
	if fb.Status == models.FeedbackPending {
		fb.Status = models.FeedbackReviewed
	}
	fb.UpdatedAt = s.now()
	if err := s.store.Update(ctx, fb); err != nil {
		return nil, mapStoreError(err)
	}

	s.notifyStudent(ctx, fb, "Your feedback has been reviewed")
	return fb, nil
}

// Reply replaces the single reply field and marks the feedback read.
func (s *Service) Reply(ctx context.Context, replier primitive.ObjectID, id primitive.ObjectID, in ReplyInput) (*models.Feedback, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return nil, utils.NewValidationError("Reply is required")
	}

	fb, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	fb.Reply = reply
	fb.RepliedBy = &replier
	fb.RepliedAt = &now
	fb.IsRead = true
	if fb.Status == models.FeedbackPending {
		fb.Status = models.FeedbackReviewed
	}
	fb.UpdatedAt = now
	if err := s.store.Update(ctx, fb); err != nil {
		return nil, mapStoreError(err)
	}

	s.notifyStudent(ctx, fb, "Your feedback received a reply")
	return fb, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id primitive.ObjectID, in StatusInput) (*models.Feedback, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	fb, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	fb.Status = in.Status
	fb.UpdatedAt = s.now()
	if err := s.store.Update(ctx, fb); err != nil {
		return nil, mapStoreError(err)
	}
	return fb, nil
}

func (s *Service) Filtered(ctx context.Context, ff models.FeedbackFilter) ([]models.FeedbackView, error) {
	if ff.Status != "" && !models.IsValidFeedbackStatus(ff.Status) {
		return nil, utils.NewValidationError("Unknown status %q", ff.Status)
	}
	if ff.From != nil && ff.To != nil && ff.To.Before(*ff.From) {
		return nil, utils.NewValidationError("'to' must not be before 'from'")
	}
	return s.store.Filter(ctx, ff)
}

func (s *Service) Mine(ctx context.Context, authorID primitive.ObjectID) ([]models.Feedback, error) {
	return s.store.ListByStudent(ctx, authorID)
}

func (s *Service) find(ctx context.Context, id primitive.ObjectID) (*models.Feedback, error) {
	fb, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return fb, nil
}

func (s *Service) notifyStudent(ctx context.Context, fb *models.Feedback, message string) {
	err := s.notifier.NotifyUser(ctx, fb.StudentID, models.NotificationFeedbackChecked, message, fb.ID, models.RelatedFeedback)
	if err != nil {
		log.Printf("⚠️ feedbackChecked notification for %s failed: %v", fb.ID.Hex(), err)
	}
}

func mapStoreError(err error) error {
	if errors.Is(err, DB.ErrNotFound) {
		return utils.NewNotFoundError("Feedback")
	}
	return err
}

func mapUserError(err error, resource string) error {
	if errors.Is(err, DB.ErrNotFound) {
		return utils.NewNotFoundError(resource)
	}
	return err
}

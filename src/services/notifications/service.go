package notifications

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	DB "Backend-Feedback-Portal/src/database"
	"Backend-Feedback-Portal/src/models"
	"Backend-Feedback-Portal/src/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FailurePolicy decides what a fan-out does when single inserts fail.
type FailurePolicy int

const (
	// LogAndContinue inserts unordered; failures are logged and counted, never rolled back.
	LogAndContinue FailurePolicy = iota
	// StopOnFirstError inserts ordered and stops at the first failing document.
	StopOnFirstError
)

func (p FailurePolicy) String() string {
	switch p {
	case LogAndContinue:
		return "log-and-continue"
	case StopOnFirstError:
		return "stop-on-first-error"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// Directory resolves recipients for fan-out.
type Directory interface {
	FindStudentsInCohort(ctx context.Context, c models.Cohort) ([]models.User, error)
	FindByRole(ctx context.Context, role string) ([]models.User, error)
}

// Mailer is the optional e-mail channel used alongside formPublished notices.
type Mailer interface {
	SendFormPublished(to models.User, form *models.Form) error
}

type Service struct {
	store     Store
	directory Directory
	mailer    Mailer
}

func NewService(store Store, directory Directory) *Service {
	return &Service{store: store, directory: directory}
}

// WithMailer enables e-mail on form publish; nil keeps it off.
func (s *Service) WithMailer(m Mailer) *Service {
	s.mailer = m
	return s
}

type SendInput struct {
	Recipient    string `json:"recipient" validate:"required"`
	Type         string `json:"type" validate:"required"`
	Message      string `json:"message" validate:"required"`
	RelatedID    string `json:"relatedId"`
	RelatedModel string `json:"relatedModel"`
}

// Send creates one notification directly.
func (s *Service) Send(ctx context.Context, in SendInput) (*models.Notification, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	recipient, err := primitive.ObjectIDFromHex(in.Recipient)
	if err != nil {
		return nil, utils.NewValidationError("invalid recipient")
	}
	if !models.IsValidNotificationType(in.Type) {
		return nil, utils.NewValidationError("unknown notification type %q", in.Type)
	}

	var related *primitive.ObjectID
	if in.RelatedID != "" {
		oid, err := primitive.ObjectIDFromHex(in.RelatedID)
		if err != nil {
			return nil, utils.NewValidationError("invalid relatedId")
		}
		related = &oid
	}

	n := newNotification(recipient, in.Type, strings.TrimSpace(in.Message), related, in.RelatedModel)
	if err := s.store.Insert(ctx, &n); err != nil {
		return nil, mapStoreError(err)
	}
	return &n, nil
}

// FanOut batch-inserts notifications under the given policy.
func (s *Service) FanOut(ctx context.Context, list []models.Notification, policy FailurePolicy) (models.BatchInsertResult, error) {
	if len(list) == 0 {
		return models.BatchInsertResult{}, nil
	}

	res, err := s.store.InsertMany(ctx, list, policy == StopOnFirstError)
	if err != nil {
		log.Printf("❌ fan-out (%s) failed: %v", policy, err)
		return res, err
	}
	if res.Failed > 0 || res.Skipped() > 0 {
		log.Printf("⚠️ fan-out (%s) partial: attempted=%d inserted=%d duplicates=%d failed=%d skipped=%d",
			policy, res.Attempted, res.Inserted, res.Duplicates, res.Failed, res.Skipped())
	}
	return res, nil
}

// NotifyFormPublished sends one formPublished notice to every student in the form's cohort.
// Duplicates (job retries) are absorbed by the partial unique index.
func (s *Service) NotifyFormPublished(ctx context.Context, form *models.Form) (models.BatchInsertResult, error) {
	students, err := s.directory.FindStudentsInCohort(ctx, form.Cohort)
	if err != nil {
		return models.BatchInsertResult{}, err
	}
	if len(students) == 0 {
		log.Printf("notify-form: no students matched form=%s cohort=%+v", form.ID.Hex(), form.Cohort)
		return models.BatchInsertResult{}, nil
	}

	formID := form.ID
	message := fmt.Sprintf("New feedback form published: %s", form.Title)
	list := make([]models.Notification, 0, len(students))
	for _, st := range students {
		list = append(list, newNotification(st.ID, models.NotificationFormPublished, message, &formID, models.RelatedForm))
	}

	res, err := s.FanOut(ctx, list, LogAndContinue)
	if err != nil {
		return res, err
	}

	// เมลเฉพาะคนที่เพิ่งได้ notice; คนที่เคยได้แล้วถูก index ตัดทิ้ง
	if s.mailer != nil && len(res.InsertedRecipients) > 0 {
		fresh := make(map[primitive.ObjectID]bool, len(res.InsertedRecipients))
		for _, id := range res.InsertedRecipients {
			fresh[id] = true
		}
		for i := range students {
			if !fresh[students[i].ID] {
				continue
			}
			if err := s.mailer.SendFormPublished(students[i], form); err != nil {
				log.Printf("send mail failed to %s: %v", students[i].Email, err)
			}
		}
	}

	log.Printf("notify-form done form=%s recipients=%d inserted=%d", form.ID.Hex(), len(students), res.Inserted)
	return res, nil
}

// NotifyUser is a best-effort single notice used by other services.
func (s *Service) NotifyUser(ctx context.Context, recipient primitive.ObjectID, kind, message string, relatedID primitive.ObjectID, relatedModel string) error {
	n := newNotification(recipient, kind, message, &relatedID, relatedModel)
	if err := s.store.Insert(ctx, &n); err != nil {
		return mapStoreError(err)
	}
	return nil
}

// NotifyRole fans one notice out to every user holding role.
func (s *Service) NotifyRole(ctx context.Context, role, kind, message string, relatedID primitive.ObjectID, relatedModel string) error {
	users, err := s.directory.FindByRole(ctx, role)
	if err != nil {
		return err
	}
	list := make([]models.Notification, 0, len(users))
	for _, u := range users {
		list = append(list, newNotification(u.ID, kind, message, &relatedID, relatedModel))
	}
	_, err = s.FanOut(ctx, list, LogAndContinue)
	return err
}

// ListForUser: ดูได้เฉพาะของตัวเอง (admin ดูได้ทุกคน)
func (s *Service) ListForUser(ctx context.Context, caller Caller, userID primitive.ObjectID) ([]models.Notification, error) {
	if err := caller.canRead(userID); err != nil {
		return nil, err
	}
	list, err := s.store.ListByRecipient(ctx, userID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return list, nil
}

func (s *Service) UnreadCount(ctx context.Context, caller Caller, userID primitive.ObjectID) (int64, error) {
	if err := caller.canRead(userID); err != nil {
		return 0, err
	}
	n, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, mapStoreError(err)
	}
	return n, nil
}

func (s *Service) MarkAllRead(ctx context.Context, caller Caller, userID primitive.ObjectID) (int64, error) {
	if caller.UserID != userID {
		return 0, utils.NewForbiddenError("You can only update your own notifications")
	}
	n, err := s.store.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, mapStoreError(err)
	}
	return n, nil
}

// MarkRead is idempotent; only the recipient may call it.
func (s *Service) MarkRead(ctx context.Context, caller Caller, id primitive.ObjectID) (*models.Notification, error) {
	n, err := s.ownedBy(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !n.IsRead {
		if err := s.store.MarkRead(ctx, id); err != nil {
			return nil, mapStoreError(err)
		}
		n.IsRead = true
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, caller Caller, id primitive.ObjectID) error {
	if _, err := s.ownedBy(ctx, caller, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}
	return nil
}

func (s *Service) ownedBy(ctx context.Context, caller Caller, id primitive.ObjectID) (*models.Notification, error) {
	n, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if n.Recipient != caller.UserID {
		return nil, utils.NewForbiddenError("You are not the recipient of this notification")
	}
	return n, nil
}

// Caller is the authenticated user performing a notification operation.
type Caller struct {
	UserID primitive.ObjectID
	Role   string
}

func (c Caller) canRead(userID primitive.ObjectID) error {
	if c.UserID == userID || c.Role == models.RoleAdmin {
		return nil
	}
	return utils.NewForbiddenError("You can only view your own notifications")
}

func mapStoreError(err error) error {
	if errors.Is(err, DB.ErrNotFound) {
		return utils.NewNotFoundError("Notification")
	}
	return err
}

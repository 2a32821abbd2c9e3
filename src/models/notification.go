package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotificationFormPublished     = "formPublished"
	NotificationFeedbackSubmitted = "feedbackSubmitted"
	NotificationFeedbackChecked   = "feedbackChecked"
)

const (
	RelatedForm     = "Form"
	RelatedFeedback = "Feedback"
)

func IsValidNotificationType(t string) bool {
	switch t {
	case NotificationFormPublished, NotificationFeedbackSubmitted, NotificationFeedbackChecked:
		return true
	}
	return false
}

// Notification แจ้งเตือนในระบบ; RelatedID + RelatedModel เป็นแค่ weak reference
type Notification struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Recipient    primitive.ObjectID  `bson:"recipient" json:"recipient"`
	Type         string              `bson:"type" json:"type"`
	Message      string              `bson:"message" json:"message"`
	IsRead       bool                `bson:"isRead" json:"isRead"`
	RelatedID    *primitive.ObjectID `bson:"relatedId,omitempty" json:"relatedId,omitempty"`
	RelatedModel string              `bson:"relatedModel,omitempty" json:"relatedModel,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
}

// BatchInsertResult counts the outcome of a fan-out insert.
type BatchInsertResult struct {
	Attempted  int `json:"attempted"`
	Inserted   int `json:"inserted"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`

	// InsertedRecipients lists the recipients whose document was written, in input order.
	InsertedRecipients []primitive.ObjectID `json:"-"`
}

// Skipped are documents never attempted because an ordered insert stopped early.
func (r BatchInsertResult) Skipped() int {
	n := r.Attempted - r.Inserted - r.Duplicates - r.Failed
	if n < 0 {
		return 0
	}
	return n
}

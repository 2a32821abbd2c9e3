package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	FeedbackPending  = "pending"
	FeedbackReviewed = "reviewed"
	FeedbackResolved = "resolved"
)

func IsValidFeedbackStatus(s string) bool {
	switch s {
	case FeedbackPending, FeedbackReviewed, FeedbackResolved:
		return true
	}
	return false
}

// Feedback ข้อเสนอแนะอิสระจากนิสิต
type Feedback struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StudentID   primitive.ObjectID  `bson:"studentId" json:"studentId"`
	Message     string              `bson:"message" json:"message"`
	TeacherID   *primitive.ObjectID `bson:"teacherId,omitempty" json:"teacherId,omitempty"`
	TeacherName string              `bson:"teacherName,omitempty" json:"teacherName,omitempty"`
	Subject     string              `bson:"subject,omitempty" json:"subject,omitempty"`
	Category    string              `bson:"category" json:"category"`
	Course      string              `bson:"course,omitempty" json:"course,omitempty"`
	Semester    int                 `bson:"semester,omitempty" json:"semester,omitempty"`
	Section     string              `bson:"section,omitempty" json:"section,omitempty"`
	Status      string              `bson:"status" json:"status"`
	IsRead      bool                `bson:"isRead" json:"isRead"`
	Reply       string              `bson:"reply,omitempty" json:"reply,omitempty"`
	RepliedBy   *primitive.ObjectID `bson:"repliedBy,omitempty" json:"repliedBy,omitempty"`
	RepliedAt   *time.Time          `bson:"repliedAt,omitempty" json:"repliedAt,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

type StudentIdentity struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	FullName string             `bson:"fullName" json:"fullName"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
}

// FeedbackView is a feedback joined with the minimal identity of its author.
type FeedbackView struct {
	Feedback `bson:",inline"`
	Student  *StudentIdentity `bson:"student,omitempty" json:"student,omitempty"`
}

// FeedbackFilter ตัวกรองสำหรับหน้า admin; ค่าว่างคือไม่กรอง
type FeedbackFilter struct {
	TeacherName string     `query:"teacherName"`
	Course      string     `query:"course"`
	Semester    int        `query:"semester"`
	Section     string     `query:"section"`
	Status      string     `query:"status"`
	Category    string     `query:"category"`
	From        *time.Time `query:"-"`
	To          *time.Time `query:"-"`
}

// Matches applies the filter to one feedback; teacher name matches case-insensitively as a substring.
func (ff FeedbackFilter) Matches(f *Feedback) bool {
	if ff.TeacherName != "" && !strings.Contains(strings.ToLower(f.TeacherName), strings.ToLower(ff.TeacherName)) {
		return false
	}
	if ff.Course != "" && f.Course != ff.Course {
		return false
	}
	if ff.Semester != 0 && f.Semester != ff.Semester {
		return false
	}
	if ff.Section != "" && f.Section != ff.Section {
		return false
	}
	if ff.Status != "" && f.Status != ff.Status {
		return false
	}
	if ff.Category != "" && f.Category != ff.Category {
		return false
	}
	if ff.From != nil && f.CreatedAt.Before(*ff.From) {
		return false
	}
	if ff.To != nil && f.CreatedAt.After(*ff.To) {
		return false
	}
	return true
}

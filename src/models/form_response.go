package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Rating struct {
	QuestionText string `bson:"questionText" json:"questionText"`
	Rating       int    `bson:"rating" json:"rating"`
}

// FormResponse คำตอบของนิสิตหนึ่งคนต่อฟอร์มหนึ่งฟอร์ม (unique formId+studentId)
type FormResponse struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FormID    primitive.ObjectID `bson:"formId" json:"formId"`
	StudentID primitive.ObjectID `bson:"studentId" json:"studentId"`
	Ratings   []Rating           `bson:"ratings" json:"ratings"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// QuestionStat is one row of the per-question analytics report.
type QuestionStat struct {
	QuestionText string  `bson:"_id" json:"questionText"`
	AvgRating    float64 `bson:"avgRating" json:"avgRating"`
	Count        int64   `bson:"count" json:"count"`
}

// ExportRow is one (response × question) line of the CSV export.
type ExportRow struct {
	FormTitle    string `bson:"formTitle"`
	StudentName  string `bson:"studentName"`
	StudentEmail string `bson:"studentEmail"`
	Question     string `bson:"question"`
	Rating       int    `bson:"rating"`
	Comment      string `bson:"comment"`
}

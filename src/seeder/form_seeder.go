package seeder

import (
	"context"
	"log"

	"Backend-Feedback-Portal/src/models"
	"Backend-Feedback-Portal/src/services/forms"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FormCreator คือส่วนของ forms.Service ที่ใช้ seed ฟอร์มตัวอย่าง
type FormCreator interface {
	List(ctx context.Context, caller forms.Caller, p models.PaginationParams) (*models.PaginatedResponse, error)
	Create(ctx context.Context, creator primitive.ObjectID, in forms.CreateFormInput) (*models.Form, error)
}

// SeedSampleForm สร้างฟอร์มตัวอย่าง (ปิดไว้ก่อน) เมื่อยังไม่มีฟอร์มในระบบ
// ฟอร์มเป็น inactive จึงยังไม่มีการแจ้งเตือนนิสิต จนกว่า admin จะเปิดใช้
func SeedSampleForm(ctx context.Context, svc FormCreator, adminID primitive.ObjectID) (*models.Form, error) {
	page, err := svc.List(ctx, forms.Caller{UserID: adminID, Role: models.RoleAdmin}, models.PaginationParams{Page: 1, Limit: 1})
	if err != nil {
		return nil, err
	}
	if page.Total > 0 {
		log.Println("ℹ️ Forms already exist, skipping sample form")
		return nil, nil
	}

	inactive := false
	form, err := svc.Create(ctx, adminID, forms.CreateFormInput{
		Title:       "Course Feedback (sample)",
		Description: "Rate this semester's course. Edit the cohort and activate before use.",
		Questions: []forms.QuestionInput{
			{Text: "The course objectives were clear"},
			{Text: "The pace of the lectures was appropriate"},
			{Text: "Assignments helped me learn"},
			{Text: "Overall satisfaction", Scale: 10},
		},
		Cohort:   models.Cohort{Course: "Computer Science", Year: 1, Semester: 1},
		IsActive: &inactive,
	})
	if err != nil {
		log.Printf("Error creating sample form: %v", err)
		return nil, err
	}
	log.Printf("✅ Created form: %s (ID: %s)", form.Title, form.ID.Hex())
	return form, nil
}

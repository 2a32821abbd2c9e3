package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultQuestionScale = 5

// Cohort (course, specialization, year, semester) ใช้กำหนดกลุ่มนิสิตของฟอร์ม
type Cohort struct {
	Course         string `bson:"course" json:"course" validate:"required"`
	Specialization string `bson:"specialization,omitempty" json:"specialization,omitempty"`
	Year           int    `bson:"year" json:"year" validate:"required,min=1"`
	Semester       int    `bson:"semester" json:"semester" validate:"required,min=1"`
}

// IncludesStudent reports whether a student belongs to the cohort a form targets.
// An unset form specialization matches any student specialization.
func (c Cohort) IncludesStudent(u *User) bool {
	sc, ok := u.Cohort()
	if !ok {
		return false
	}
	if c.Course != sc.Course || c.Year != sc.Year || c.Semester != sc.Semester {
		return false
	}
	return c.Specialization == "" || c.Specialization == sc.Specialization
}

type Question struct {
	Text  string `bson:"text" json:"text"`
	Scale int    `bson:"scale" json:"scale"`
}

type Form struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Questions   []Question         `bson:"questions" json:"questions"`
	Cohort      `bson:",inline"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	Deadline    *time.Time         `bson:"deadline,omitempty" json:"deadline,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsFillable: active และยังไม่เลย deadline
func (f *Form) IsFillable(now time.Time) bool {
	if !f.IsActive {
		return false
	}
	return f.Deadline == nil || now.Before(*f.Deadline)
}

// FillURL is the frontend page where students fill this form.
func (f *Form) FillURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/forms/" + f.ID.Hex()
}

// Question returns the question with the given text.
func (f *Form) Question(text string) (Question, bool) {
	for _, q := range f.Questions {
		if q.Text == text {
			return q, true
		}
	}
	return Question{}, false
}

// FormFilter scopes form listing; a nil Cohort means every form.
type FormFilter struct {
	OnlyActive bool
	Cohort     *Cohort
}

// Matches applies the filter to one form. Cohort is the student's cohort here,
// so an unset form specialization is visible to everyone in the cohort.
func (ff FormFilter) Matches(f *Form) bool {
	if ff.OnlyActive && !f.IsActive {
		return false
	}
	if ff.Cohort == nil {
		return true
	}
	c := ff.Cohort
	if f.Course != c.Course || f.Year != c.Year || f.Semester != c.Semester {
		return false
	}
	return f.Specialization == "" || f.Specialization == c.Specialization
}

// StudentFormFilter is what a student may list: active forms of their own cohort.
func StudentFormFilter(u *User) (FormFilter, bool) {
	c, ok := u.Cohort()
	if !ok {
		return FormFilter{}, false
	}
	return FormFilter{OnlyActive: true, Cohort: &c}, true
}

package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// AcademicProfile ข้อมูลการศึกษา มีได้เฉพาะ role = student
type AcademicProfile struct {
	Course         string `bson:"course" json:"course" validate:"required"`
	Year           int    `bson:"year" json:"year" validate:"required,min=1"`
	Semester       int    `bson:"semester" json:"semester" validate:"required,min=1"`
	Section        string `bson:"section" json:"section" validate:"required"`
	Specialization string `bson:"specialization,omitempty" json:"specialization,omitempty"`
}

// User is either a Student (Academic set) or Staff (teacher/admin, Academic nil).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"fullName" json:"fullName"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	Password     string             `bson:"password,omitempty" json:"-"`
	Role         string             `bson:"role" json:"role"`
	Academic     *AcademicProfile   `bson:"academic,omitempty" json:"academic,omitempty"`
	IDCardPath   string             `bson:"idCardPath,omitempty" json:"-"`
	RefreshToken string             `bson:"refreshToken,omitempty" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

var (
	ErrUnknownRole         = errors.New("role must be one of student, teacher, admin")
	ErrMissingAcademic     = errors.New("course, year, semester and section are required for students")
	ErrStaffWithAcademic   = errors.New("academic details are only allowed for students")
	ErrMissingUserIdentity = errors.New("full name, username, email and password are required")
)

func IsValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// NewStudent builds the Student variant of User.
func NewStudent(fullName, username, email, passwordHash string, academic AcademicProfile) (*User, error) {
	u := newUser(fullName, username, email, passwordHash, RoleStudent)
	a := academic.normalized()
	u.Academic = &a
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// NewStaff builds the Staff variant of User (teacher or admin).
func NewStaff(fullName, username, email, passwordHash, role string) (*User, error) {
	if role == RoleStudent {
		return nil, ErrMissingAcademic
	}
	u := newUser(fullName, username, email, passwordHash, role)
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func newUser(fullName, username, email, passwordHash, role string) *User {
	now := time.Now()
	return &User{
		FullName:  strings.TrimSpace(fullName),
		Username:  strings.TrimSpace(username),
		Email:     NormalizeEmail(email),
		Password:  passwordHash,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the role discriminant against the academic payload.
func (u *User) Validate() error {
	if u.FullName == "" || u.Username == "" || u.Email == "" || u.Password == "" {
		return ErrMissingUserIdentity
	}
	if !IsValidRole(u.Role) {
		return ErrUnknownRole
	}
	if u.Role == RoleStudent {
		if u.Academic == nil || !u.Academic.complete() {
			return ErrMissingAcademic
		}
		return nil
	}
	if u.Academic != nil {
		return ErrStaffWithAcademic
	}
	return nil
}

func (u *User) IsStudent() bool { return u.Role == RoleStudent }

func (u *User) IsStaff() bool { return u.Role == RoleTeacher || u.Role == RoleAdmin }

// ChangeRole switches the variant; moving to student requires an academic profile.
func (u *User) ChangeRole(role string, academic *AcademicProfile) error {
	if !IsValidRole(role) {
		return ErrUnknownRole
	}
	next := *u
	next.Role = role
	next.Academic = nil
	if role == RoleStudent {
		if academic == nil {
			return ErrMissingAcademic
		}
		a := academic.normalized()
		next.Academic = &a
	}
	if err := next.Validate(); err != nil {
		return err
	}
	next.UpdatedAt = time.Now()
	*u = next
	return nil
}

// Cohort returns the student's cohort; ok is false for staff.
func (u *User) Cohort() (Cohort, bool) {
	if u.Academic == nil {
		return Cohort{}, false
	}
	return Cohort{
		Course:         u.Academic.Course,
		Specialization: u.Academic.Specialization,
		Year:           u.Academic.Year,
		Semester:       u.Academic.Semester,
	}, true
}

func (a AcademicProfile) normalized() AcademicProfile {
	a.Course = strings.TrimSpace(a.Course)
	a.Section = strings.TrimSpace(a.Section)
	a.Specialization = strings.TrimSpace(a.Specialization)
	return a
}

func (a AcademicProfile) complete() bool {
	return a.Course != "" && a.Section != "" && a.Year >= 1 && a.Semester >= 1
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package test

import (
	"fmt"
	"sync/atomic"

	"Backend-Feedback-Portal/src/models"
)

var seq int64

func next() int64 { return atomic.AddInt64(&seq, 1) }

// Student builds a valid student user in the given cohort.
func Student(course string, year, semester int, specialization string) *models.User {
	n := next()
	u, err := models.NewStudent(
		fmt.Sprintf("Student %d", n),
		fmt.Sprintf("student%d", n),
		fmt.Sprintf("student%d@uni.test", n),
		"$2a$10$hash",
		models.AcademicProfile{Course: course, Year: year, Semester: semester, Section: "A", Specialization: specialization},
	)
	if err != nil {
		panic(err)
	}
	return u
}

// Staff builds a valid teacher or admin user.
func Staff(role string) *models.User {
	n := next()
	u, err := models.NewStaff(
		fmt.Sprintf("Staff %d", n),
		fmt.Sprintf("staff%d", n),
		fmt.Sprintf("staff%d@uni.test", n),
		"$2a$10$hash",
		role,
	)
	if err != nil {
		panic(err)
	}
	return u
}

package models

import (
	"testing"
	"time"

	"Backend-Feedback-Portal/src/models"
	"Backend-Feedback-Portal/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserVariants(t *testing.T) {
	suite := test.NewSuiteResult("User Variant Tests")
	defer suite.Summary(t)

	academic := models.AcademicProfile{Course: " CS ", Year: 2, Semester: 1, Section: "A"}

	t.Run("TestStudentNeedsAcademic", func(t *testing.T) {
		defer suite.Track(t, "Student Needs Academic", 50*time.Millisecond)()

		u, err := models.NewStudent("Somchai", "somchai", " Somchai@Uni.Test ", "hash", academic)
		require.NoError(t, err)
		assert.Equal(t, "somchai@uni.test", u.Email)
		assert.Equal(t, "CS", u.Academic.Course)

		_, err = models.NewStudent("Somchai", "somchai", "s@uni.test", "hash", models.AcademicProfile{Course: "CS"})
		assert.ErrorIs(t, err, models.ErrMissingAcademic)
	})

	t.Run("TestStaffHasNoAcademic", func(t *testing.T) {
		defer suite.Track(t, "Staff Has No Academic", 50*time.Millisecond)()

		u, err := models.NewStaff("Ajarn", "ajarn", "a@uni.test", "hash", models.RoleTeacher)
		require.NoError(t, err)
		assert.Nil(t, u.Academic)
		assert.True(t, u.IsStaff())

		_, ok := u.Cohort()
		assert.False(t, ok)

		_, err = models.NewStaff("x", "x", "x@uni.test", "hash", models.RoleStudent)
		assert.ErrorIs(t, err, models.ErrMissingAcademic)

		_, err = models.NewStaff("x", "x", "x@uni.test", "hash", "dean")
		assert.ErrorIs(t, err, models.ErrUnknownRole)

		u.Academic = &academic
		assert.ErrorIs(t, u.Validate(), models.ErrStaffWithAcademic)
	})

	t.Run("TestChangeRole", func(t *testing.T) {
		defer suite.Track(t, "Change Role", 50*time.Millisecond)()

		u := test.Student("CS", 2, 1, "")
		require.NoError(t, u.ChangeRole(models.RoleTeacher, nil))
		assert.Nil(t, u.Academic)
		assert.Equal(t, models.RoleTeacher, u.Role)

		// ต้องมี academic เมื่อกลับเป็น student; ค่าเดิมต้องไม่เปลี่ยน
		err := u.ChangeRole(models.RoleStudent, nil)
		assert.ErrorIs(t, err, models.ErrMissingAcademic)
		assert.Equal(t, models.RoleTeacher, u.Role)

		require.NoError(t, u.ChangeRole(models.RoleStudent, &academic))
		c, ok := u.Cohort()
		require.True(t, ok)
		assert.Equal(t, models.Cohort{Course: "CS", Year: 2, Semester: 1}, c)
	})
}

func TestCohortAndFormFilter(t *testing.T) {
	suite := test.NewSuiteResult("Cohort Tests")
	defer suite.Summary(t)

	ai := test.Student("CS", 3, 1, "AI")
	plain := test.Student("CS", 3, 1, "")
	other := test.Student("CS", 2, 1, "AI")

	t.Run("TestIncludesStudent", func(t *testing.T) {
		defer suite.Track(t, "Includes Student", 50*time.Millisecond)()

		cohort := models.Cohort{Course: "CS", Year: 3, Semester: 1}
		assert.True(t, cohort.IncludesStudent(ai))
		assert.True(t, cohort.IncludesStudent(plain))
		assert.False(t, cohort.IncludesStudent(other))

		onlyAI := models.Cohort{Course: "CS", Year: 3, Semester: 1, Specialization: "AI"}
		assert.True(t, onlyAI.IncludesStudent(ai))
		assert.False(t, onlyAI.IncludesStudent(plain))
		assert.False(t, onlyAI.IncludesStudent(test.Staff(models.RoleTeacher)))
	})

	t.Run("TestStudentFormFilter", func(t *testing.T) {
		defer suite.Track(t, "Student Form Filter", 50*time.Millisecond)()

		ff, ok := models.StudentFormFilter(ai)
		require.True(t, ok)
		assert.True(t, ff.OnlyActive)

		open := &models.Form{IsActive: true, Cohort: models.Cohort{Course: "CS", Year: 3, Semester: 1}}
		spec := &models.Form{IsActive: true, Cohort: models.Cohort{Course: "CS", Year: 3, Semester: 1, Specialization: "AI"}}
		net := &models.Form{IsActive: true, Cohort: models.Cohort{Course: "CS", Year: 3, Semester: 1, Specialization: "Network"}}
		closed := &models.Form{IsActive: false, Cohort: models.Cohort{Course: "CS", Year: 3, Semester: 1}}

		assert.True(t, ff.Matches(open))
		assert.True(t, ff.Matches(spec))
		assert.False(t, ff.Matches(net))
		assert.False(t, ff.Matches(closed))
		assert.True(t, models.FormFilter{}.Matches(closed))

		_, ok = models.StudentFormFilter(test.Staff(models.RoleAdmin))
		assert.False(t, ok)
	})
}

func TestFormHelpers(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	f := &models.Form{
		ID:        primitive.NewObjectID(),
		IsActive:  true,
		Questions: []models.Question{{Text: "Clarity", Scale: 5}},
	}
	assert.True(t, f.IsFillable(now))

	f.Deadline = &future
	assert.True(t, f.IsFillable(now))

	f.Deadline = &past
	assert.False(t, f.IsFillable(now))

	f.Deadline = nil
	f.IsActive = false
	assert.False(t, f.IsFillable(now))

	q, ok := f.Question("Clarity")
	assert.True(t, ok)
	assert.Equal(t, 5, q.Scale)
	_, ok = f.Question("clarity")
	assert.False(t, ok)

	assert.Equal(t, "https://portal.test/forms/"+f.ID.Hex(), f.FillURL("https://portal.test/"))
}

func TestFeedbackFilterMatches(t *testing.T) {
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	fb := &models.Feedback{
		TeacherName: "Dr. Somsak Jaidee",
		Course:      "CS",
		Semester:    1,
		Section:     "A",
		Status:      models.FeedbackPending,
		Category:    "teaching",
		CreatedAt:   created,
	}

	from := created.Add(-24 * time.Hour)
	to := created.Add(24 * time.Hour)
	before := created.Add(-time.Minute)

	cases := []struct {
		name   string
		filter models.FeedbackFilter
		want   bool
	}{
		{"empty", models.FeedbackFilter{}, true},
		{"teacher substring any case", models.FeedbackFilter{TeacherName: "somsak"}, true},
		{"teacher mismatch", models.FeedbackFilter{TeacherName: "Anan"}, false},
		{"course and section", models.FeedbackFilter{Course: "CS", Section: "A"}, true},
		{"semester mismatch", models.FeedbackFilter{Semester: 2}, false},
		{"status", models.FeedbackFilter{Status: models.FeedbackResolved}, false},
		{"category", models.FeedbackFilter{Category: "teaching"}, true},
		{"inside range", models.FeedbackFilter{From: &from, To: &to}, true},
		{"after range", models.FeedbackFilter{To: &before}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Matches(fb))
		})
	}
}

func TestPagination(t *testing.T) {
	p := models.PaginationParams{Page: 0, Limit: 500}.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, models.MaxPageLimit, p.Limit)

	p = models.PaginationParams{Page: 3, Limit: 0}.Normalize()
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, int64(20), p.GetSkip())

	res := models.NewPaginatedResponse([]int{}, 25, p)
	assert.Equal(t, 3, res.TotalPages)
	assert.False(t, res.HasNext)
	assert.True(t, res.HasPrevious)
}

func TestBatchInsertResultSkipped(t *testing.T) {
	r := models.BatchInsertResult{Attempted: 10, Inserted: 3, Duplicates: 1, Failed: 1}
	assert.Equal(t, 5, r.Skipped())
	assert.Equal(t, 0, models.BatchInsertResult{Attempted: 2, Inserted: 2}.Skipped())
}

package feedbacks

import (
	"testing"
	"time"

	"Backend-Feedback-Portal/src/models"
	"Backend-Feedback-Portal/src/services/notifications"
	"Backend-Feedback-Portal/src/utils"
	"Backend-Feedback-Portal/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	svc     *Service
	users   *test.MemoryUserStore
	notices *test.MemoryNotificationStore
	student *models.User
	teacher *models.User
	admin   *models.User
}

func newFixture() *fixture {
	users := test.NewMemoryUserStore()
	notices := test.NewMemoryNotificationStore()
	return &fixture{
		svc:     NewService(test.NewMemoryFeedbackStore(users), users, notifications.NewService(notices, users)),
		users:   users,
		notices: notices,
		student: users.Add(test.Student("CS", 2, 1, "")),
		teacher: users.Add(test.Staff(models.RoleTeacher)),
		admin:   users.Add(test.Staff(models.RoleAdmin)),
	}
}

func (f *fixture) noticesFor(id primitive.ObjectID, kind string) []models.Notification {
	out := []models.Notification{}
	for _, n := range f.notices.All() {
		if n.Recipient == id && n.Type == kind {
			out = append(out, n)
		}
	}
	return out
}

func TestSubmitToTeacher(t *testing.T) {
	f := newFixture()
	ctx := test.Ctx(t)

	fb, err := f.svc.Submit(ctx, f.student.ID, SubmitInput{
		Message:   " Slides are hard to read ",
		TeacherID: f.teacher.ID.Hex(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Slides are hard to read", fb.Message)
	assert.Equal(t, f.teacher.FullName, fb.TeacherName)
	assert.Equal(t, DefaultCategory, fb.Category)
	assert.Equal(t, models.FeedbackPending, fb.Status)
	assert.Equal(t, "CS", fb.Course)
	assert.Equal(t, "A", fb.Section)
	assert.False(t, fb.IsRead)

	got := f.noticesFor(f.teacher.ID, models.NotificationFeedbackSubmitted)
	require.Len(t, got, 1)
	assert.Equal(t, fb.ID, *got[0].RelatedID)
	assert.Equal(t, models.RelatedFeedback, got[0].RelatedModel)
	assert.Empty(t, f.noticesFor(f.admin.ID, models.NotificationFeedbackSubmitted))
}

func TestSubmitWithoutTeacherNotifiesAdmins(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Submit(test.Ctx(t), f.student.ID, SubmitInput{Message: "More lab time", Category: "facility"})
	require.NoError(t, err)

	assert.Len(t, f.noticesFor(f.admin.ID, models.NotificationFeedbackSubmitted), 1)
	assert.Empty(t, f.noticesFor(f.teacher.ID, models.NotificationFeedbackSubmitted))
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture()
	ctx := test.Ctx(t)

	_, err := f.svc.Submit(ctx, f.student.ID, SubmitInput{Message: "   "})
	assert.Equal(t, 400, utils.StatusOf(err))

	_, err = f.svc.Submit(ctx, f.student.ID, SubmitInput{Message: "x", TeacherID: "bad"})
	assert.Equal(t, 400, utils.StatusOf(err))

	_, err = f.svc.Submit(ctx, f.student.ID, SubmitInput{Message: "x", TeacherID: primitive.NewObjectID().Hex()})
	assert.Equal(t, 404, utils.StatusOf(err))

	_, err = f.svc.Submit(ctx, f.student.ID, SubmitInput{Message: "x", TeacherID: f.admin.ID.Hex()})
	assert.Equal(t, 400, utils.StatusOf(err))

	_, err = f.svc.Submit(ctx, primitive.NewObjectID(), SubmitInput{Message: "x"})
	assert.Equal(t, 404, utils.StatusOf(err))
}

func TestMarkReadAndReply(t *testing.T) {
	f := newFixture()
	ctx := test.Ctx(t)

	fb, err := f.svc.Submit(ctx, f.student.ID, SubmitInput{Message: "Please upload recordings", TeacherID: f.teacher.ID.Hex()})
	require.NoError(t, err)

	read, err := f.svc.MarkRead(ctx, fb.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	assert.Equal(t, models.FeedbackReviewed, read.Status)

	// ซ้ำแล้วไม่แจ้งเตือนอีก
	_, err = f.svc.MarkRead(ctx, fb.ID)
	require.NoError(t, err)
	assert.Len(t, f.noticesFor(f.student.ID, models.NotificationFeedbackChecked), 1)

	replied, err := f.svc.Reply(ctx, f.teacher.ID, fb.ID, ReplyInput{Reply: "Done, see the course page"})
	require.NoError(t, err)
	assert.Equal(t, "Done, see the course page", replied.Reply)
	require.NotNil(t, replied.RepliedBy)
	assert.Equal(t, f.teacher.ID, *replied.RepliedBy)
	assert.NotNil(t, replied.RepliedAt)
	assert.Len(t, f.noticesFor(f.student.ID, models.NotificationFeedbackChecked), 2)

	replied, err = f.svc.Reply(ctx, f.admin.ID, fb.ID, ReplyInput{Reply: "Updated answer"})
	require.NoError(t, err)
	assert.Equal(t, "Updated answer", replied.Reply)

	_, err = f.svc.Reply(ctx, f.teacher.ID, fb.ID, ReplyInput{Reply: ""})
	assert.Equal(t, 400, utils.StatusOf(err))

	_, err = f.svc.MarkRead(ctx, primitive.NewObjectID())
	assert.Equal(t, 404, utils.StatusOf(err))
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture()
	ctx := test.Ctx(t)

	fb, err := f.svc.Submit(ctx, f.student.ID, SubmitInput{Message: "Room too cold"})
	require.NoError(t, err)

	got, err := f.svc.UpdateStatus(ctx, fb.ID, StatusInput{Status: models.FeedbackResolved})
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackResolved, got.Status)

	_, err = f.svc.UpdateStatus(ctx, fb.ID, StatusInput{Status: "archived"})
	assert.Equal(t, 400, utils.StatusOf(err))
}

func TestFilteredAndMine(t *testing.T) {
	f := newFixture()
	ctx := test.Ctx(t)

	_, err := f.svc.Submit(ctx, f.student.ID, SubmitInput{Message: "a", TeacherName: "Dr. Somsak"})
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, f.student.ID, SubmitInput{Message: "b", TeacherName: "Dr. Anan"})
	require.NoError(t, err)
	other := f.users.Add(test.Student("EE", 1, 2, ""))
	_, err = f.svc.Submit(ctx, other.ID, SubmitInput{Message: "c", TeacherName: "Dr. Somsak"})
	require.NoError(t, err)

	list, err := f.svc.Filtered(ctx, models.FeedbackFilter{TeacherName: "SOMSAK"})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	for _, v := range list {
		require.NotNil(t, v.Student)
		assert.NotEmpty(t, v.Student.Email)
	}

	list, err = f.svc.Filtered(ctx, models.FeedbackFilter{TeacherName: "somsak", Course: "CS"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.student.ID, list[0].Student.ID)

	_, err = f.svc.Filtered(ctx, models.FeedbackFilter{Status: "archived"})
	assert.Equal(t, 400, utils.StatusOf(err))

	from := time.Now()
	to := from.Add(-time.Hour)
	_, err = f.svc.Filtered(ctx, models.FeedbackFilter{From: &from, To: &to})
	assert.Equal(t, 400, utils.StatusOf(err))

	mine, err := f.svc.Mine(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestBuildFilter(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	filter := buildFilter(models.FeedbackFilter{TeacherName: "Dr. (A)", Semester: 2, From: &from})

	assert.Equal(t, primitive.Regex{Pattern: `Dr\. \(A\)`, Options: "i"}, filter["teacherName"])
	assert.Equal(t, 2, filter["semester"])
	assert.Equal(t, bson.M{"$gte": from}, filter["createdAt"])
	assert.NotContains(t, filter, "course")

	assert.Empty(t, buildFilter(models.FeedbackFilter{}))
}

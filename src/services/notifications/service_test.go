package notifications_test

import (
	"testing"

	"Backend-Feedback-Portal/src/models"
	"Backend-Feedback-Portal/src/services/notifications"
	"Backend-Feedback-Portal/src/utils"
	"Backend-Feedback-Portal/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendFormPublished(to models.User, form *models.Form) error {
	return m.Called(to.Email, form.ID).Error(0)
}

func newForm(course string, year, semester int, specialization string) *models.Form {
	return &models.Form{
		ID:       primitive.NewObjectID(),
		Title:    "Midterm feedback",
		IsActive: true,
		Cohort:   models.Cohort{Course: course, Year: year, Semester: semester, Specialization: specialization},
	}
}

func countFor(list []models.Notification, recipient primitive.ObjectID) int {
	n := 0
	for _, item := range list {
		if item.Recipient == recipient {
			n++
		}
	}
	return n
}

func TestNotifyFormPublishedExactlyOnce(t *testing.T) {
	users := test.NewMemoryUserStore()
	store := test.NewMemoryNotificationStore()
	svc := notifications.NewService(store, users)
	ctx := test.Ctx(t)

	inA := users.Add(test.Student("CS", 3, 1, "AI"))
	inB := users.Add(test.Student("CS", 3, 1, ""))
	otherSpec := users.Add(test.Student("CS", 3, 1, "Network"))
	otherYear := users.Add(test.Student("CS", 2, 1, "AI"))
	users.Add(test.Staff(models.RoleTeacher))

	form := newForm("CS", 3, 1, "")

	res, err := svc.NotifyFormPublished(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempted)
	assert.Equal(t, 3, res.Inserted)

	// retry ของ job ต้องไม่สร้างซ้ำ
	res, err = svc.NotifyFormPublished(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 3, res.Duplicates)

	all := store.All()
	assert.Len(t, all, 3)
	assert.Equal(t, 1, countFor(all, inA.ID))
	assert.Equal(t, 1, countFor(all, inB.ID))
	assert.Equal(t, 1, countFor(all, otherSpec.ID))
	assert.Equal(t, 0, countFor(all, otherYear.ID))

	for _, n := range all {
		assert.Equal(t, models.NotificationFormPublished, n.Type)
		assert.Equal(t, models.RelatedForm, n.RelatedModel)
		require.NotNil(t, n.RelatedID)
		assert.Equal(t, form.ID, *n.RelatedID)
		assert.False(t, n.IsRead)
	}
}

func TestNotifyFormPublishedSpecialization(t *testing.T) {
	users := test.NewMemoryUserStore()
	store := test.NewMemoryNotificationStore()
	svc := notifications.NewService(store, users)

	ai := users.Add(test.Student("CS", 3, 1, "AI"))
	users.Add(test.Student("CS", 3, 1, ""))

	res, err := svc.NotifyFormPublished(test.Ctx(t), newForm("CS", 3, 1, "AI"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, countFor(store.All(), ai.ID))
}

func TestNotifyFormPublishedNoStudents(t *testing.T) {
	svc := notifications.NewService(test.NewMemoryNotificationStore(), test.NewMemoryUserStore())

	res, err := svc.NotifyFormPublished(test.Ctx(t), newForm("EE", 1, 1, ""))
	require.NoError(t, err)
	assert.Equal(t, models.BatchInsertResult{}, res)
}

func TestFanOutPolicies(t *testing.T) {
	recipients := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}
	build := func() []models.Notification {
		list := make([]models.Notification, 0, len(recipients))
		for _, r := range recipients {
			list = append(list, models.Notification{Recipient: r, Type: models.NotificationFeedbackChecked, Message: "m"})
		}
		return list
	}

	t.Run("log and continue", func(t *testing.T) {
		store := test.NewMemoryNotificationStore()
		store.FailRecipient[recipients[1]] = true
		svc := notifications.NewService(store, test.NewMemoryUserStore())

		res, err := svc.FanOut(test.Ctx(t), build(), notifications.LogAndContinue)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Inserted)
		assert.Equal(t, 1, res.Failed)
		assert.Equal(t, 0, res.Skipped())
		assert.Len(t, store.All(), 3)
	})

	t.Run("stop on first error", func(t *testing.T) {
		store := test.NewMemoryNotificationStore()
		store.FailRecipient[recipients[1]] = true
		svc := notifications.NewService(store, test.NewMemoryUserStore())

		res, err := svc.FanOut(test.Ctx(t), build(), notifications.StopOnFirstError)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Inserted)
		assert.Equal(t, 1, res.Failed)
		assert.Equal(t, 2, res.Skipped())
		assert.Len(t, store.All(), 1)
	})

	assert.Equal(t, "log-and-continue", notifications.LogAndContinue.String())
}

func TestMailerIsBestEffort(t *testing.T) {
	users := test.NewMemoryUserStore()
	store := test.NewMemoryNotificationStore()
	mailer := new(mockMailer)
	svc := notifications.NewService(store, users).WithMailer(mailer)

	a := users.Add(test.Student("CS", 1, 1, ""))
	b := users.Add(test.Student("CS", 1, 1, ""))
	form := newForm("CS", 1, 1, "")

	mailer.On("SendFormPublished", a.Email, form.ID).Return(nil)
	mailer.On("SendFormPublished", b.Email, form.ID).Return(assert.AnError)

	ctx := test.Ctx(t)
	res, err := svc.NotifyFormPublished(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	mailer.AssertNumberOfCalls(t, "SendFormPublished", 2)

	// publish ซ้ำ: ไม่มี notice ใหม่ จึงไม่มีเมลซ้ำ
	res, err = svc.NotifyFormPublished(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 2, res.Duplicates)
	mailer.AssertNumberOfCalls(t, "SendFormPublished", 2)

	// นิสิตที่เพิ่งเข้ากลุ่มได้เมลคนเดียว
	c := users.Add(test.Student("CS", 1, 1, ""))
	mailer.On("SendFormPublished", c.Email, form.ID).Return(nil)
	res, err = svc.NotifyFormPublished(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{c.ID}, res.InsertedRecipients)
	mailer.AssertNumberOfCalls(t, "SendFormPublished", 3)
	mailer.AssertCalled(t, "SendFormPublished", c.Email, form.ID)
}

func TestSend(t *testing.T) {
	store := test.NewMemoryNotificationStore()
	svc := notifications.NewService(store, test.NewMemoryUserStore())
	ctx := test.Ctx(t)
	recipient := primitive.NewObjectID()

	n, err := svc.Send(ctx, notifications.SendInput{
		Recipient: recipient.Hex(),
		Type:      models.NotificationFeedbackChecked,
		Message:   "  checked  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "checked", n.Message)
	assert.Nil(t, n.RelatedID)

	_, err = svc.Send(ctx, notifications.SendInput{Recipient: recipient.Hex(), Type: "party", Message: "x"})
	assert.Equal(t, 400, utils.StatusOf(err))

	_, err = svc.Send(ctx, notifications.SendInput{Recipient: "nope", Type: models.NotificationFeedbackChecked, Message: "x"})
	assert.Equal(t, 400, utils.StatusOf(err))

	_, err = svc.Send(ctx, notifications.SendInput{Recipient: recipient.Hex(), Type: models.NotificationFeedbackChecked})
	assert.Equal(t, 400, utils.StatusOf(err))
}

func TestRecipientOnlyOperations(t *testing.T) {
	store := test.NewMemoryNotificationStore()
	svc := notifications.NewService(store, test.NewMemoryUserStore())
	ctx := test.Ctx(t)

	owner := notifications.Caller{UserID: primitive.NewObjectID(), Role: models.RoleStudent}
	stranger := notifications.Caller{UserID: primitive.NewObjectID(), Role: models.RoleStudent}
	admin := notifications.Caller{UserID: primitive.NewObjectID(), Role: models.RoleAdmin}

	first, err := svc.Send(ctx, notifications.SendInput{Recipient: owner.UserID.Hex(), Type: models.NotificationFeedbackChecked, Message: "a"})
	require.NoError(t, err)
	_, err = svc.Send(ctx, notifications.SendInput{Recipient: owner.UserID.Hex(), Type: models.NotificationFeedbackChecked, Message: "b"})
	require.NoError(t, err)

	t.Run("list", func(t *testing.T) {
		_, err := svc.ListForUser(ctx, stranger, owner.UserID)
		assert.Equal(t, 403, utils.StatusOf(err))

		list, err := svc.ListForUser(ctx, admin, owner.UserID)
		require.NoError(t, err)
		assert.Len(t, list, 2)

		count, err := svc.UnreadCount(ctx, owner, owner.UserID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("mark read", func(t *testing.T) {
		_, err := svc.MarkRead(ctx, stranger, first.ID)
		assert.Equal(t, 403, utils.StatusOf(err))

		n, err := svc.MarkRead(ctx, owner, first.ID)
		require.NoError(t, err)
		assert.True(t, n.IsRead)

		n, err = svc.MarkRead(ctx, owner, first.ID)
		require.NoError(t, err)
		assert.True(t, n.IsRead)

		_, err = svc.MarkRead(ctx, owner, primitive.NewObjectID())
		assert.Equal(t, 404, utils.StatusOf(err))
	})

	t.Run("mark all read", func(t *testing.T) {
		_, err := svc.MarkAllRead(ctx, admin, owner.UserID)
		assert.Equal(t, 403, utils.StatusOf(err))

		n, err := svc.MarkAllRead(ctx, owner, owner.UserID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		count, err := svc.UnreadCount(ctx, owner, owner.UserID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, 403, utils.StatusOf(svc.Delete(ctx, stranger, first.ID)))
		require.NoError(t, svc.Delete(ctx, owner, first.ID))
		assert.Equal(t, 404, utils.StatusOf(svc.Delete(ctx, owner, first.ID)))
	})
}

func TestNotifyRole(t *testing.T) {
	users := test.NewMemoryUserStore()
	store := test.NewMemoryNotificationStore()
	svc := notifications.NewService(store, users)

	a1 := users.Add(test.Staff(models.RoleAdmin))
	a2 := users.Add(test.Staff(models.RoleAdmin))
	users.Add(test.Staff(models.RoleTeacher))

	feedbackID := primitive.NewObjectID()
	require.NoError(t, svc.NotifyRole(test.Ctx(t), models.RoleAdmin, models.NotificationFeedbackSubmitted, "new feedback", feedbackID, models.RelatedFeedback))

	all := store.All()
	assert.Len(t, all, 2)
	assert.Equal(t, 1, countFor(all, a1.ID))
	assert.Equal(t, 1, countFor(all, a2.ID))
}

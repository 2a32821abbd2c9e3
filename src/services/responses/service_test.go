package responses

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"Backend-Feedback-Portal/src/models"
	"Backend-Feedback-Portal/src/services/forms"
	"Backend-Feedback-Portal/src/utils"
	"Backend-Feedback-Portal/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	svc   *Service
	users *test.MemoryUserStore
	forms *test.MemoryFormStore
	form  *models.Form
}

func newFixture(t *testing.T) *fixture {
	users := test.NewMemoryUserStore()
	formStore := test.NewMemoryFormStore()
	store := test.NewMemoryResponseStore(users, formStore)

	form := &models.Form{
		Title:    "Algorithms feedback",
		IsActive: true,
		Cohort:   models.Cohort{Course: "CS", Year: 2, Semester: 1},
		Questions: []models.Question{
			{Text: "Clarity", Scale: 5},
			{Text: "Pace", Scale: 3},
		},
		CreatedAt: time.Now(),
	}
	require.NoError(t, formStore.Insert(test.Ctx(t), form))

	return &fixture{
		svc:   NewService(store, forms.NewService(formStore, users, nil)),
		users: users,
		forms: formStore,
		form:  form,
	}
}

func (f *fixture) student() *models.User {
	return f.users.Add(test.Student("CS", 2, 1, ""))
}

func (f *fixture) input(clarity, pace int) SubmitInput {
	return SubmitInput{
		FormID: f.form.ID.Hex(),
		Ratings: []models.Rating{
			{QuestionText: "Clarity", Rating: clarity},
			{QuestionText: "Pace", Rating: pace},
		},
		Comment: " ok ",
	}
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)
	ctx := test.Ctx(t)
	st := f.student()

	resp, err := f.svc.Submit(ctx, st.ID, f.input(5, 3))
	require.NoError(t, err)
	assert.Equal(t, f.form.ID, resp.FormID)
	assert.Equal(t, "ok", resp.Comment)

	_, err = f.svc.Submit(ctx, st.ID, f.input(4, 2))
	assert.Equal(t, 409, utils.StatusOf(err))

	mine, err := f.svc.Mine(ctx, st.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestSubmitConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	st := f.student()

	ctx := test.Ctx(t)

	timer := test.NewTestTimer("Concurrent Submit")
	res := test.RunConcurrently(20, func(int) error {
		_, err := f.svc.Submit(ctx, st.ID, f.input(4, 2))
		return err
	})
	test.PerformanceAssertion(t, "Concurrent Submit", timer.Stop(t), time.Second)

	assert.Equal(t, 1, res.Succeeded)
	require.Len(t, res.Errors, 19)
	for _, err := range res.Errors {
		assert.Equal(t, 409, utils.StatusOf(err))
	}
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)
	ctx := test.Ctx(t)
	st := f.student()

	cases := map[string]SubmitInput{
		"bad form id":      {FormID: "nope", Ratings: []models.Rating{{QuestionText: "Clarity", Rating: 1}}},
		"no ratings":       {FormID: f.form.ID.Hex()},
		"unknown question": {FormID: f.form.ID.Hex(), Ratings: []models.Rating{{QuestionText: "Food", Rating: 1}}},
		"rating too high":  {FormID: f.form.ID.Hex(), Ratings: []models.Rating{{QuestionText: "Pace", Rating: 4}}},
		"rating zero":      {FormID: f.form.ID.Hex(), Ratings: []models.Rating{{QuestionText: "Clarity", Rating: 0}}},
		"rated twice": {FormID: f.form.ID.Hex(), Ratings: []models.Rating{
			{QuestionText: "Clarity", Rating: 1},
			{QuestionText: "Clarity", Rating: 2},
		}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Submit(ctx, st.ID, in)
			assert.Equal(t, 400, utils.StatusOf(err))
		})
	}

	_, err := f.svc.Submit(ctx, primitive.NilObjectID, f.input(1, 1))
	assert.Equal(t, 400, utils.StatusOf(err))

	missing := f.input(1, 1)
	missing.FormID = primitive.NewObjectID().Hex()
	_, err = f.svc.Submit(ctx, st.ID, missing)
	assert.Equal(t, 404, utils.StatusOf(err))
}

func TestSubmitOutsideCohort(t *testing.T) {
	f := newFixture(t)
	ctx := test.Ctx(t)

	outsider := f.users.Add(test.Student("EE", 4, 2, ""))
	_, err := f.svc.Submit(ctx, outsider.ID, f.input(5, 3))
	assert.Equal(t, 403, utils.StatusOf(err))

	_, err = f.svc.Submit(ctx, primitive.NewObjectID(), f.input(5, 3))
	assert.Equal(t, 401, utils.StatusOf(err))

	stats, err := f.svc.Aggregate(ctx, f.form.ID)
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestSubmitClosedForm(t *testing.T) {
	f := newFixture(t)
	ctx := test.Ctx(t)

	deadline := time.Now().Add(time.Hour)
	f.form.Deadline = &deadline
	require.NoError(t, f.forms.Update(ctx, f.form))

	f.svc.now = func() time.Time { return deadline.Add(time.Minute) }
	_, err := f.svc.Submit(ctx, f.student().ID, f.input(3, 3))
	assert.Equal(t, 400, utils.StatusOf(err))

	f.svc.now = time.Now
	require.NoError(t, f.forms.SetActive(ctx, f.form.ID, false))
	_, err = f.svc.Submit(ctx, f.student().ID, f.input(3, 3))
	assert.Equal(t, 400, utils.StatusOf(err))
}

func TestAggregateAndExport(t *testing.T) {
	f := newFixture(t)
	ctx := test.Ctx(t)

	_, err := f.svc.Submit(ctx, f.student().ID, f.input(5, 1))
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, f.student().ID, f.input(4, 2))
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, f.student().ID, SubmitInput{
		FormID:  f.form.ID.Hex(),
		Ratings: []models.Rating{{QuestionText: "Clarity", Rating: 3}},
	})
	require.NoError(t, err)

	stats, err := f.svc.Aggregate(ctx, f.form.ID)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "Clarity", stats[0].QuestionText)
	assert.InDelta(t, 4.0, stats[0].AvgRating, 0.0001)
	assert.Equal(t, int64(3), stats[0].Count)
	assert.Equal(t, "Pace", stats[1].QuestionText)
	assert.InDelta(t, 1.5, stats[1].AvgRating, 0.0001)
	assert.Equal(t, int64(2), stats[1].Count)

	var buf bytes.Buffer
	rows, err := f.svc.ExportCSV(ctx, &buf, &f.form.ID)
	require.NoError(t, err)

	var total int64
	for _, s := range stats {
		total += s.Count
	}
	assert.Equal(t, int(total), rows)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, rows+1)
	assert.Equal(t, CSVHeader, records[0])
	assert.Equal(t, "Algorithms feedback", records[1][0])
	assert.Equal(t, "ok", records[1][5])

	list, err := f.svc.ListByForm(ctx, f.form.ID)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	_, err = f.svc.Aggregate(ctx, primitive.NewObjectID())
	assert.Equal(t, 404, utils.StatusOf(err))

	missing := primitive.NewObjectID()
	_, err = f.svc.ExportCSV(ctx, &bytes.Buffer{}, &missing)
	assert.Equal(t, 404, utils.StatusOf(err))
	assert.Equal(t, 404, utils.StatusOf(f.svc.PrepareExport(ctx, &missing)))
	assert.NoError(t, f.svc.PrepareExport(ctx, nil))
	assert.NoError(t, f.svc.PrepareExport(ctx, &f.form.ID))
}

func TestExportEmpty(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	rows, err := f.svc.ExportCSV(test.Ctx(t), &buf, nil)
	require.NoError(t, err)
	assert.Zero(t, rows)
	assert.Equal(t, "Form Title,Student Name,Student Email,Question,Rating,Comment\n", buf.String())
}

func TestPipelines(t *testing.T) {
	id := primitive.NewObjectID()

	agg := aggregatePipeline(id)
	require.Len(t, agg, 4)
	assert.Equal(t, "$match", agg[0][0].Key)
	assert.Equal(t, bson.D{{Key: "formId", Value: id}}, agg[0][0].Value)
	assert.Equal(t, "$unwind", agg[1][0].Key)
	assert.Equal(t, "$group", agg[2][0].Key)
	assert.Equal(t, "$sort", agg[3][0].Key)

	all := exportPipeline(nil)
	one := exportPipeline(&id)
	assert.Len(t, one, len(all)+1)
	assert.Equal(t, "$sort", all[0][0].Key)
}

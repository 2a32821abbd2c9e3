package test

import (
	"context"
	"sort"
	"sync"

	DB "Backend-Feedback-Portal/src/database"
	"Backend-Feedback-Portal/src/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryResponseStore enforces (formId, studentId) uniqueness under a lock,
// like the unique compound index does. Export joins with Users and Forms.
type MemoryResponseStore struct {
	mu        sync.Mutex
	responses []models.FormResponse

	Users *MemoryUserStore
	Forms *MemoryFormStore
}

func NewMemoryResponseStore(users *MemoryUserStore, forms *MemoryFormStore) *MemoryResponseStore {
	return &MemoryResponseStore{Users: users, Forms: forms}
}

func (s *MemoryResponseStore) Insert(_ context.Context, r *models.FormResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.responses {
		if existing.FormID == r.FormID && existing.StudentID == r.StudentID {
			return errors.Wrap(DB.ErrDuplicateKey, "insert form response")
		}
	}
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	s.responses = append(s.responses, *r)
	return nil
}

func (s *MemoryResponseStore) where(keep func(models.FormResponse) bool) []models.FormResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.FormResponse{}
	for _, r := range s.responses {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *MemoryResponseStore) ListByForm(_ context.Context, formID primitive.ObjectID) ([]models.FormResponse, error) {
	return s.where(func(r models.FormResponse) bool { return r.FormID == formID }), nil
}

func (s *MemoryResponseStore) ListByStudent(_ context.Context, studentID primitive.ObjectID) ([]models.FormResponse, error) {
	return s.where(func(r models.FormResponse) bool { return r.StudentID == studentID }), nil
}

func (s *MemoryResponseStore) AggregateByQuestion(_ context.Context, formID primitive.ObjectID) ([]models.QuestionStat, error) {
	sums := map[string]int{}
	stats := map[string]*models.QuestionStat{}
	for _, r := range s.where(func(r models.FormResponse) bool { return r.FormID == formID }) {
		for _, rt := range r.Ratings {
			st, ok := stats[rt.QuestionText]
			if !ok {
				st = &models.QuestionStat{QuestionText: rt.QuestionText}
				stats[rt.QuestionText] = st
			}
			st.Count++
			sums[rt.QuestionText] += rt.Rating
		}
	}

	out := make([]models.QuestionStat, 0, len(stats))
	for q, st := range stats {
		st.AvgRating = float64(sums[q]) / float64(st.Count)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgRating != out[j].AvgRating {
			return out[i].AvgRating > out[j].AvgRating
		}
		return out[i].QuestionText < out[j].QuestionText
	})
	return out, nil
}

func (s *MemoryResponseStore) ExportRows(ctx context.Context, formID *primitive.ObjectID, fn func(models.ExportRow) error) error {
	list := s.where(func(r models.FormResponse) bool { return formID == nil || r.FormID == *formID })
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].FormID != list[j].FormID {
			return list[i].FormID.Hex() < list[j].FormID.Hex()
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})

	for _, r := range list {
		var title, name, email string
		if f, err := s.Forms.FindByID(ctx, r.FormID); err == nil {
			title = f.Title
		}
		if u, err := s.Users.FindByID(ctx, r.StudentID); err == nil {
			name, email = u.FullName, u.Email
		}
		for _, rt := range r.Ratings {
			row := models.ExportRow{
				FormTitle:    title,
				StudentName:  name,
				StudentEmail: email,
				Question:     rt.QuestionText,
				Rating:       rt.Rating,
				Comment:      r.Comment,
			}
			if err := fn(row); err != nil {
				return err
			}
		}
	}
	return nil
}

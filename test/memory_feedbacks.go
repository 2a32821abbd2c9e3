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

type MemoryFeedbackStore struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.Feedback

	Users *MemoryUserStore
}

func NewMemoryFeedbackStore(users *MemoryUserStore) *MemoryFeedbackStore {
	return &MemoryFeedbackStore{items: map[primitive.ObjectID]models.Feedback{}, Users: users}
}

func (s *MemoryFeedbackStore) Insert(_ context.Context, f *models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	s.items[f.ID] = *f
	return nil
}

func (s *MemoryFeedbackStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.items[id]
	if !ok {
		return nil, errors.Wrap(DB.ErrNotFound, "find feedback")
	}
	return &f, nil
}

func (s *MemoryFeedbackStore) Update(_ context.Context, f *models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[f.ID]; !ok {
		return errors.Wrap(DB.ErrNotFound, "update feedback")
	}
	s.items[f.ID] = *f
	return nil
}

func (s *MemoryFeedbackStore) sorted(keep func(*models.Feedback) bool) []models.Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Feedback{}
	for _, f := range s.items {
		f := f
		if keep(&f) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *MemoryFeedbackStore) Filter(ctx context.Context, ff models.FeedbackFilter) ([]models.FeedbackView, error) {
	list := s.sorted(ff.Matches)

	out := make([]models.FeedbackView, 0, len(list))
	for _, f := range list {
		view := models.FeedbackView{Feedback: f}
		if u, err := s.Users.FindByID(ctx, f.StudentID); err == nil {
			view.Student = &models.StudentIdentity{ID: u.ID, FullName: u.FullName, Username: u.Username, Email: u.Email}
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *MemoryFeedbackStore) ListByStudent(_ context.Context, studentID primitive.ObjectID) ([]models.Feedback, error) {
	return s.sorted(func(f *models.Feedback) bool { return f.StudentID == studentID }), nil
}

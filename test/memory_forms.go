package test

import (
	"context"
	"sort"
	"sync"
	"time"

	DB "Backend-Feedback-Portal/src/database"
	"Backend-Feedback-Portal/src/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MemoryFormStore struct {
	mu    sync.Mutex
	forms map[primitive.ObjectID]models.Form
}

func NewMemoryFormStore() *MemoryFormStore {
	return &MemoryFormStore{forms: map[primitive.ObjectID]models.Form{}}
}

func (s *MemoryFormStore) Insert(_ context.Context, f *models.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	s.forms[f.ID] = *f
	return nil
}

func (s *MemoryFormStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.forms[id]
	if !ok {
		return nil, errors.Wrap(DB.ErrNotFound, "find form")
	}
	return &f, nil
}

func (s *MemoryFormStore) List(_ context.Context, ff models.FormFilter, p models.PaginationParams) ([]models.Form, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := []models.Form{}
	for _, f := range s.forms {
		f := f
		if ff.Matches(&f) {
			all = append(all, f)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, p), int64(len(all)), nil
}

func (s *MemoryFormStore) Update(_ context.Context, f *models.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.forms[f.ID]; !ok {
		return errors.Wrap(DB.ErrNotFound, "update form")
	}
	s.forms[f.ID] = *f
	return nil
}

func (s *MemoryFormStore) SetActive(_ context.Context, id primitive.ObjectID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.forms[id]
	if !ok {
		return errors.Wrap(DB.ErrNotFound, "set form active")
	}
	f.IsActive = active
	f.UpdatedAt = time.Now()
	s.forms[id] = f
	return nil
}

func (s *MemoryFormStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.forms[id]; !ok {
		return errors.Wrap(DB.ErrNotFound, "delete form")
	}
	delete(s.forms, id)
	return nil
}

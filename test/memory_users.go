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

// MemoryUserStore is an in-memory users.Store with the same unique email/username rules.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: map[primitive.ObjectID]models.User{}}
}

func (s *MemoryUserStore) Insert(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return errors.Wrap(DB.ErrDuplicateKey, "insert user")
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users[u.ID] = *u
	return nil
}

// Add seeds a user and returns it with an ID.
func (s *MemoryUserStore) Add(u *models.User) *models.User {
	if err := s.Insert(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (s *MemoryUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, errors.Wrap(DB.ErrNotFound, "find user")
	}
	return &u, nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = models.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, errors.Wrap(DB.ErrNotFound, "find user by email")
}

func (s *MemoryUserStore) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = models.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryUserStore) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return errors.Wrap(DB.ErrNotFound, "update user")
	}
	existing.FullName = u.FullName
	existing.Password = u.Password
	existing.Role = u.Role
	existing.Academic = u.Academic
	existing.UpdatedAt = u.UpdatedAt
	s.users[u.ID] = existing
	return nil
}

func (s *MemoryUserStore) SetRefreshToken(_ context.Context, id primitive.ObjectID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return errors.Wrap(DB.ErrNotFound, "set refresh token")
	}
	u.RefreshToken = token
	s.users[id] = u
	return nil
}

func (s *MemoryUserStore) FindStudentsInCohort(_ context.Context, c models.Cohort) ([]models.User, error) {
	return s.filter(func(u *models.User) bool { return c.IncludesStudent(u) }), nil
}

func (s *MemoryUserStore) FindByRole(_ context.Context, role string) ([]models.User, error) {
	return s.filter(func(u *models.User) bool { return u.Role == role }), nil
}

func (s *MemoryUserStore) List(_ context.Context, role string, p models.PaginationParams) ([]models.User, int64, error) {
	all := s.filter(func(u *models.User) bool { return role == "" || u.Role == role })
	return page(all, p), int64(len(all)), nil
}

func (s *MemoryUserStore) filter(keep func(*models.User) bool) []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.User{}
	for _, u := range s.users {
		u := u
		if keep(&u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out
}

func page[T any](all []T, p models.PaginationParams) []T {
	start := int(p.GetSkip())
	if start >= len(all) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

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

// MemoryNotificationStore mirrors the partial unique index on formPublished
// (recipient, relatedId) and can be told to fail inserts for chosen recipients.
type MemoryNotificationStore struct {
	mu            sync.Mutex
	items         map[primitive.ObjectID]models.Notification
	FailRecipient map[primitive.ObjectID]bool
}

func NewMemoryNotificationStore() *MemoryNotificationStore {
	return &MemoryNotificationStore{
		items:         map[primitive.ObjectID]models.Notification{},
		FailRecipient: map[primitive.ObjectID]bool{},
	}
}

var errInjected = errors.New("injected write failure")

func (s *MemoryNotificationStore) insertLocked(n *models.Notification) error {
	if s.FailRecipient[n.Recipient] {
		return errInjected
	}
	if n.Type == models.NotificationFormPublished && n.RelatedID != nil {
		for _, existing := range s.items {
			if existing.Type == models.NotificationFormPublished &&
				existing.Recipient == n.Recipient &&
				existing.RelatedID != nil && *existing.RelatedID == *n.RelatedID {
				return errors.Wrap(DB.ErrDuplicateKey, "insert notification")
			}
		}
	}
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	s.items[n.ID] = *n
	return nil
}

func (s *MemoryNotificationStore) Insert(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(n)
}

func (s *MemoryNotificationStore) InsertMany(_ context.Context, list []models.Notification, ordered bool) (models.BatchInsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := models.BatchInsertResult{Attempted: len(list)}
loop:
	for i := range list {
		err := s.insertLocked(&list[i])
		switch {
		case err == nil:
			out.Inserted++
			out.InsertedRecipients = append(out.InsertedRecipients, list[i].Recipient)
			continue
		case errors.Is(err, DB.ErrDuplicateKey):
			out.Duplicates++
		default:
			out.Failed++
		}
		if ordered {
			break loop
		}
	}
	return out, nil
}

func (s *MemoryNotificationStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[id]
	if !ok {
		return nil, errors.Wrap(DB.ErrNotFound, "find notification")
	}
	return &n, nil
}

func (s *MemoryNotificationStore) ListByRecipient(_ context.Context, recipient primitive.ObjectID) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Notification{}
	for _, n := range s.items {
		if n.Recipient == recipient {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryNotificationStore) MarkRead(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.items[id]
	if !ok {
		return errors.Wrap(DB.ErrNotFound, "mark notification read")
	}
	n.IsRead = true
	s.items[id] = n
	return nil
}

func (s *MemoryNotificationStore) MarkAllRead(_ context.Context, recipient primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, item := range s.items {
		if item.Recipient == recipient && !item.IsRead {
			item.IsRead = true
			s.items[id] = item
			n++
		}
	}
	return n, nil
}

func (s *MemoryNotificationStore) CountUnread(_ context.Context, recipient primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, item := range s.items {
		if item.Recipient == recipient && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *MemoryNotificationStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return errors.Wrap(DB.ErrNotFound, "delete notification")
	}
	delete(s.items, id)
	return nil
}

// All returns every stored notification.
func (s *MemoryNotificationStore) All() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Notification, 0, len(s.items))
	for _, n := range s.items {
		out = append(out, n)
	}
	return out
}

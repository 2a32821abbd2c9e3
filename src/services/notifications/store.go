package notifications

import (
	"context"
	"errors"
	"time"

	DB "Backend-Feedback-Portal/src/database"
	"Backend-Feedback-Portal/src/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store interface {
	Insert(ctx context.Context, n *models.Notification) error
	InsertMany(ctx context.Context, list []models.Notification, ordered bool) (models.BatchInsertResult, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	ListByRecipient(ctx context.Context, recipient primitive.ObjectID) ([]models.Notification, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) error
	MarkAllRead(ctx context.Context, recipient primitive.ObjectID) (int64, error)
	CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore() *MongoStore {
	return &MongoStore{coll: DB.NotificationCollection}
}

func (s *MongoStore) Insert(ctx context.Context, n *models.Notification) error {
	res, err := s.coll.InsertOne(ctx, n)
	if err != nil {
		return DB.MapError(err, "insert notification")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		n.ID = oid
	}
	return nil
}

// InsertMany inserts a batch and folds per-document write errors into the result.
// Only a failure of the whole batch is returned as an error.
func (s *MongoStore) InsertMany(ctx context.Context, list []models.Notification, ordered bool) (models.BatchInsertResult, error) {
	out := models.BatchInsertResult{Attempted: len(list)}
	if len(list) == 0 {
		return out, nil
	}

	docs := make([]interface{}, len(list))
	for i := range list {
		if list[i].ID.IsZero() {
			list[i].ID = primitive.NewObjectID()
		}
		docs[i] = list[i]
	}

	_, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(ordered))
	if err == nil {
		out.Inserted = len(list)
		for i := range list {
			out.InsertedRecipients = append(out.InsertedRecipients, list[i].Recipient)
		}
		return out, nil
	}

	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || len(bwe.WriteErrors) == 0 {
		return out, DB.MapError(err, "insert notifications")
	}

	rejected := make(map[int]bool, len(bwe.WriteErrors))
	for _, we := range bwe.WriteErrors {
		rejected[we.Index] = true
		if we.Code == 11000 {
			out.Duplicates++
		} else {
			out.Failed++
		}
	}
	limit := len(list)
	if ordered {
		// ordered insert หยุดที่ error แรก; เอกสารก่อนหน้านั้นถูก insert แล้ว
		limit = bwe.WriteErrors[0].Index
	}
	for i := 0; i < limit; i++ {
		if !rejected[i] {
			out.InsertedRecipients = append(out.InsertedRecipients, list[i].Recipient)
		}
	}
	out.Inserted = len(out.InsertedRecipients)
	return out, nil
}

func (s *MongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var n models.Notification
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		return nil, DB.MapError(err, "find notification")
	}
	return &n, nil
}

func (s *MongoStore) ListByRecipient(ctx context.Context, recipient primitive.ObjectID) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"recipient": recipient}, opts)
	if err != nil {
		return nil, DB.MapError(err, "list notifications")
	}
	defer cursor.Close(ctx)

	out := []models.Notification{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, DB.MapError(err, "decode notifications")
	}
	return out, nil
}

func (s *MongoStore) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return DB.MapError(err, "mark notification read")
	}
	if res.MatchedCount == 0 {
		return DB.MapError(mongo.ErrNoDocuments, "mark notification read")
	}
	return nil
}

func (s *MongoStore) MarkAllRead(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	res, err := s.coll.UpdateMany(ctx,
		bson.M{"recipient": recipient, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return 0, DB.MapError(err, "mark all notifications read")
	}
	return res.ModifiedCount, nil
}

func (s *MongoStore) CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"recipient": recipient, "isRead": false})
	if err != nil {
		return 0, DB.MapError(err, "count unread notifications")
	}
	return n, nil
}

func (s *MongoStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return DB.MapError(err, "delete notification")
	}
	if res.DeletedCount == 0 {
		return DB.MapError(mongo.ErrNoDocuments, "delete notification")
	}
	return nil
}

func newNotification(recipient primitive.ObjectID, kind, message string, relatedID *primitive.ObjectID, relatedModel string) models.Notification {
	return models.Notification{
		ID:           primitive.NewObjectID(),
		Recipient:    recipient,
		Type:         kind,
		Message:      message,
		RelatedID:    relatedID,
		RelatedModel: relatedModel,
		CreatedAt:    time.Now(),
	}
}

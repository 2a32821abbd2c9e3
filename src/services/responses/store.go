package responses

import (
	"context"

	DB "Backend-Feedback-Portal/src/database"
	"Backend-Feedback-Portal/src/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store interface {
	// Insert fails with database.ErrDuplicateKey when (formId, studentId) already exists.
	Insert(ctx context.Context, r *models.FormResponse) error
	ListByForm(ctx context.Context, formID primitive.ObjectID) ([]models.FormResponse, error)
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.FormResponse, error)
	AggregateByQuestion(ctx context.Context, formID primitive.ObjectID) ([]models.QuestionStat, error)
	// ExportRows streams joined rows to fn in form then submission order.
	ExportRows(ctx context.Context, formID *primitive.ObjectID, fn func(models.ExportRow) error) error
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore() *MongoStore {
	return &MongoStore{coll: DB.FormResponseCollection}
}

func (s *MongoStore) Insert(ctx context.Context, r *models.FormResponse) error {
	res, err := s.coll.InsertOne(ctx, r)
	if err != nil {
		return DB.MapError(err, "insert form response")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		r.ID = oid
	}
	return nil
}

func (s *MongoStore) find(ctx context.Context, filter bson.M, op string) ([]models.FormResponse, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, DB.MapError(err, op)
	}
	defer cursor.Close(ctx)

	out := []models.FormResponse{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, DB.MapError(err, op)
	}
	return out, nil
}

func (s *MongoStore) ListByForm(ctx context.Context, formID primitive.ObjectID) ([]models.FormResponse, error) {
	return s.find(ctx, bson.M{"formId": formID}, "list responses by form")
}

func (s *MongoStore) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.FormResponse, error) {
	return s.find(ctx, bson.M{"studentId": studentID}, "list responses by student")
}

func (s *MongoStore) AggregateByQuestion(ctx context.Context, formID primitive.ObjectID) ([]models.QuestionStat, error) {
	cursor, err := s.coll.Aggregate(ctx, aggregatePipeline(formID))
	if err != nil {
		return nil, DB.MapError(err, "aggregate responses")
	}
	defer cursor.Close(ctx)

	out := []models.QuestionStat{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, DB.MapError(err, "decode response stats")
	}
	return out, nil
}

func (s *MongoStore) ExportRows(ctx context.Context, formID *primitive.ObjectID, fn func(models.ExportRow) error) error {
	cursor, err := s.coll.Aggregate(ctx, exportPipeline(formID), options.Aggregate().SetAllowDiskUse(true))
	if err != nil {
		return DB.MapError(err, "export responses")
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var row models.ExportRow
		if err := cursor.Decode(&row); err != nil {
			return DB.MapError(err, "decode export row")
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return cursor.Err()
}

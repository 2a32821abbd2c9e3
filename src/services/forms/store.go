package forms

import (
	"context"
	"time"

	DB "Backend-Feedback-Portal/src/database"
	"Backend-Feedback-Portal/src/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store interface {
	Insert(ctx context.Context, f *models.Form) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Form, error)
	List(ctx context.Context, filter models.FormFilter, p models.PaginationParams) ([]models.Form, int64, error)
	Update(ctx context.Context, f *models.Form) error
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore() *MongoStore {
	return &MongoStore{coll: DB.FormCollection}
}

// listFilter แปลง FormFilter เป็น query; specialization ว่างหรือไม่มี field = ทุกสาขา
func listFilter(ff models.FormFilter) bson.M {
	filter := bson.M{}
	if ff.OnlyActive {
		filter["isActive"] = true
	}
	if ff.Cohort != nil {
		filter["course"] = ff.Cohort.Course
		filter["year"] = ff.Cohort.Year
		filter["semester"] = ff.Cohort.Semester
		filter["$or"] = bson.A{
			bson.M{"specialization": bson.M{"$in": bson.A{"", ff.Cohort.Specialization}}},
			bson.M{"specialization": bson.M{"$exists": false}},
		}
	}
	return filter
}

func (s *MongoStore) Insert(ctx context.Context, f *models.Form) error {
	res, err := s.coll.InsertOne(ctx, f)
	if err != nil {
		return DB.MapError(err, "insert form")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		f.ID = oid
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Form, error) {
	var f models.Form
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		return nil, DB.MapError(err, "find form")
	}
	return &f, nil
}

func (s *MongoStore) List(ctx context.Context, ff models.FormFilter, p models.PaginationParams) ([]models.Form, int64, error) {
	filter := listFilter(ff)

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, DB.MapError(err, "count forms")
	}

	opts := options.Find().
		SetSkip(p.GetSkip()).
		SetLimit(int64(p.Limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, DB.MapError(err, "list forms")
	}
	defer cursor.Close(ctx)

	out := []models.Form{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, DB.MapError(err, "decode forms")
	}
	return out, total, nil
}

func (s *MongoStore) Update(ctx context.Context, f *models.Form) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": f.ID}, f)
	if err != nil {
		return DB.MapError(err, "update form")
	}
	if res.MatchedCount == 0 {
		return DB.MapError(mongo.ErrNoDocuments, "update form")
	}
	return nil
}

func (s *MongoStore) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now()}},
	)
	if err != nil {
		return DB.MapError(err, "set form active")
	}
	if res.MatchedCount == 0 {
		return DB.MapError(mongo.ErrNoDocuments, "set form active")
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return DB.MapError(err, "delete form")
	}
	if res.DeletedCount == 0 {
		return DB.MapError(mongo.ErrNoDocuments, "delete form")
	}
	return nil
}

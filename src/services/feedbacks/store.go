package feedbacks

import (
	"context"
	"regexp"

	DB "Backend-Feedback-Portal/src/database"
	"Backend-Feedback-Portal/src/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store interface {
	Insert(ctx context.Context, f *models.Feedback) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Feedback, error)
	Update(ctx context.Context, f *models.Feedback) error
	Filter(ctx context.Context, ff models.FeedbackFilter) ([]models.FeedbackView, error)
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Feedback, error)
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore() *MongoStore {
	return &MongoStore{coll: DB.FeedbackCollection}
}

// buildFilter: ค่าว่างคือไม่กรอง, teacherName ค้นแบบไม่สนตัวพิมพ์
func buildFilter(ff models.FeedbackFilter) bson.M {
	filter := bson.M{}
	if ff.TeacherName != "" {
		filter["teacherName"] = primitive.Regex{Pattern: regexp.QuoteMeta(ff.TeacherName), Options: "i"}
	}
	if ff.Course != "" {
		filter["course"] = ff.Course
	}
	if ff.Semester != 0 {
		filter["semester"] = ff.Semester
	}
	if ff.Section != "" {
		filter["section"] = ff.Section
	}
	if ff.Status != "" {
		filter["status"] = ff.Status
	}
	if ff.Category != "" {
		filter["category"] = ff.Category
	}
	if ff.From != nil || ff.To != nil {
		created := bson.M{}
		if ff.From != nil {
			created["$gte"] = *ff.From
		}
		if ff.To != nil {
			created["$lte"] = *ff.To
		}
		filter["createdAt"] = created
	}
	return filter
}

// filterPipeline joins only the student's public identity, never the whole user document.
func filterPipeline(ff models.FeedbackFilter) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: buildFilter(ff)}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "studentId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$project", Value: bson.D{
					{Key: "fullName", Value: 1},
					{Key: "username", Value: 1},
					{Key: "email", Value: 1},
				}}},
			}},
			{Key: "as", Value: "student"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$student"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

func (s *MongoStore) Insert(ctx context.Context, f *models.Feedback) error {
	res, err := s.coll.InsertOne(ctx, f)
	if err != nil {
		return DB.MapError(err, "insert feedback")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		f.ID = oid
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Feedback, error) {
	var f models.Feedback
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		return nil, DB.MapError(err, "find feedback")
	}
	return &f, nil
}

func (s *MongoStore) Update(ctx context.Context, f *models.Feedback) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": f.ID}, f)
	if err != nil {
		return DB.MapError(err, "update feedback")
	}
	if res.MatchedCount == 0 {
		return DB.MapError(mongo.ErrNoDocuments, "update feedback")
	}
	return nil
}

func (s *MongoStore) Filter(ctx context.Context, ff models.FeedbackFilter) ([]models.FeedbackView, error) {
	cursor, err := s.coll.Aggregate(ctx, filterPipeline(ff))
	if err != nil {
		return nil, DB.MapError(err, "filter feedbacks")
	}
	defer cursor.Close(ctx)

	out := []models.FeedbackView{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, DB.MapError(err, "decode feedbacks")
	}
	return out, nil
}

func (s *MongoStore) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"studentId": studentID}, opts)
	if err != nil {
		return nil, DB.MapError(err, "list feedbacks")
	}
	defer cursor.Close(ctx)

	out := []models.Feedback{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, DB.MapError(err, "decode feedbacks")
	}
	return out, nil
}

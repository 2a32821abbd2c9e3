package users

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

// Store is the user persistence used by auth, profile and notification fan-out.
type Store interface {
	Insert(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	Update(ctx context.Context, u *models.User) error
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	FindStudentsInCohort(ctx context.Context, c models.Cohort) ([]models.User, error)
	FindByRole(ctx context.Context, role string) ([]models.User, error)
	List(ctx context.Context, role string, p models.PaginationParams) ([]models.User, int64, error)
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore() *MongoStore {
	return &MongoStore{coll: DB.UserCollection}
}

// CohortStudentFilter: นิสิตที่ course/year/semester ตรงกัน และ specialization ตรงกันถ้าฟอร์มกำหนด
func CohortStudentFilter(c models.Cohort) bson.M {
	filter := bson.M{
		"role":              models.RoleStudent,
		"academic.course":   c.Course,
		"academic.year":     c.Year,
		"academic.semester": c.Semester,
	}
	if c.Specialization != "" {
		filter["academic.specialization"] = c.Specialization
	}
	return filter
}

func (s *MongoStore) Insert(ctx context.Context, u *models.User) error {
	res, err := s.coll.InsertOne(ctx, u)
	if err != nil {
		return DB.MapError(err, "insert user")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, DB.MapError(err, "find user")
	}
	return &u, nil
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"email": models.NormalizeEmail(email)}).Decode(&u)
	if err != nil {
		return nil, DB.MapError(err, "find user by email")
	}
	return &u, nil
}

func (s *MongoStore) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"email": models.NormalizeEmail(email)},
		bson.M{"username": username},
	}}, options.Count().SetLimit(1))
	if err != nil {
		return false, DB.MapError(err, "count users")
	}
	return n > 0, nil
}

func (s *MongoStore) Update(ctx context.Context, u *models.User) error {
	set := bson.M{
		"fullName":  u.FullName,
		"password":  u.Password,
		"role":      u.Role,
		"updatedAt": u.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if u.Academic != nil {
		set["academic"] = u.Academic
	} else {
		update["$unset"] = bson.M{"academic": ""}
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": u.ID}, update)
	if err != nil {
		return DB.MapError(err, "update user")
	}
	if res.MatchedCount == 0 {
		return DB.MapError(mongo.ErrNoDocuments, "update user")
	}
	return nil
}

// SetRefreshToken stores the current refresh token; an empty token clears it (logout).
func (s *MongoStore) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	update := bson.M{"$set": bson.M{"refreshToken": token, "updatedAt": time.Now()}}
	if token == "" {
		update = bson.M{"$unset": bson.M{"refreshToken": ""}, "$set": bson.M{"updatedAt": time.Now()}}
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return DB.MapError(err, "set refresh token")
	}
	if res.MatchedCount == 0 {
		return DB.MapError(mongo.ErrNoDocuments, "set refresh token")
	}
	return nil
}

func (s *MongoStore) FindStudentsInCohort(ctx context.Context, c models.Cohort) ([]models.User, error) {
	opts := options.Find().
		SetProjection(bson.M{"fullName": 1, "email": 1, "role": 1, "academic": 1}).
		SetBatchSize(500)
	return s.find(ctx, CohortStudentFilter(c), opts, "find cohort students")
}

func (s *MongoStore) FindByRole(ctx context.Context, role string) ([]models.User, error) {
	opts := options.Find().SetProjection(bson.M{"fullName": 1, "email": 1, "role": 1})
	return s.find(ctx, bson.M{"role": role}, opts, "find users by role")
}

func (s *MongoStore) List(ctx context.Context, role string, p models.PaginationParams) ([]models.User, int64, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, DB.MapError(err, "count users")
	}

	opts := options.Find().
		SetSkip(p.GetSkip()).
		SetLimit(int64(p.Limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
	list, err := s.find(ctx, filter, opts, "list users")
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *MongoStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions, op string) ([]models.User, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, DB.MapError(err, op)
	}
	defer cursor.Close(ctx)

	out := []models.User{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, DB.MapError(err, op)
	}
	return out, nil
}

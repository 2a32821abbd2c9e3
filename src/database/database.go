package database

import (
	"Backend-Feedback-Portal/src/models"
	"context"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	client     *mongo.Client
	once       sync.Once // ✅ ป้องกันการรัน ConnectMongoDB() ซ้ำ
	connectErr error

	UserCollection         *mongo.Collection
	FormCollection         *mongo.Collection
	FormResponseCollection *mongo.Collection
	FeedbackCollection     *mongo.Collection
	NotificationCollection *mongo.Collection
)

// ConnectMongoDB เชื่อมต่อกับ MongoDB แค่ครั้งเดียว แล้วเตรียม collections + indexes
func ConnectMongoDB(uri, dbName string) error {
	once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, connectErr = mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if connectErr != nil {
			log.Println("❌ Failed to connect to MongoDB:", connectErr)
			return
		}

		// ตรวจสอบการเชื่อมต่อ
		if connectErr = client.Ping(ctx, readpref.Primary()); connectErr != nil {
			log.Println("❌ MongoDB ping failed:", connectErr)
			return
		}
		log.Println("✅ MongoDB connected successfully")

		db := client.Database(dbName)
		UserCollection = db.Collection(usersColl)
		FormCollection = db.Collection(formsColl)
		FormResponseCollection = db.Collection(formResponsesColl)
		FeedbackCollection = db.Collection(feedbacksColl)
		NotificationCollection = db.Collection(notificationsColl)

		connectErr = EnsureIndexes(ctx, db)
	})

	return connectErr
}

const (
	usersColl         = "users"
	formsColl         = "forms"
	formResponsesColl = "formresponses"
	feedbacksColl     = "feedbacks"
	notificationsColl = "notifications"
)

// IndexSpecs lists the indexes of every collection, keyed by collection name.
func IndexSpecs() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		usersColl: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_username")},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "academic.course", Value: 1}, {Key: "academic.year", Value: 1}, {Key: "academic.semester", Value: 1}}},
		},
		formsColl: {
			{Keys: bson.D{{Key: "course", Value: 1}, {Key: "year", Value: 1}, {Key: "semester", Value: 1}, {Key: "isActive", Value: 1}}},
		},
		formResponsesColl: FormResponseIndexes(),
		feedbacksColl: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "studentId", Value: 1}}},
		},
		notificationsColl: NotificationIndexes(),
	}
}

// EnsureIndexes creates the unique constraints the services rely on.
// ConnectMongoDB calls it once after connecting.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, idx := range IndexSpecs() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			log.Printf("❌ create indexes on %s: %v", name, err)
			return err
		}
	}
	log.Println("✅ MongoDB indexes ensured")
	return nil
}

// FormResponseIndexes: หนึ่งคำตอบต่อ (formId, studentId)
func FormResponseIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "formId", Value: 1}, {Key: "studentId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_form_student"),
		},
	}
}

// NotificationIndexes keeps formPublished fan-out idempotent per recipient.
func NotificationIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "createdAt", Value: -1}}},
		{
			Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "relatedId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_form_published_recipient").
				SetPartialFilterExpression(bson.M{"type": models.NotificationFormPublished}),
		},
	}
}

// Disconnect ปิดการเชื่อมต่อตอน shutdown
func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

package responses

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// aggregatePipeline: unwind ratings → group ตามคำถาม → เรียง avgRating มากไปน้อย
func aggregatePipeline(formID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "formId", Value: formID}}}},
		{{Key: "$unwind", Value: "$ratings"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$ratings.questionText"},
			{Key: "avgRating", Value: bson.D{{Key: "$avg", Value: "$ratings.rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "avgRating", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}

// exportPipeline joins each response with its student and form, one document per rating.
// A nil formID exports every form.
func exportPipeline(formID *primitive.ObjectID) mongo.Pipeline {
	pipeline := mongo.Pipeline{}
	if formID != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{{Key: "formId", Value: *formID}}}})
	}

	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "formId", Value: 1}, {Key: "createdAt", Value: 1}}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "studentId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "student"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$student"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "forms"},
			{Key: "localField", Value: "formId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "form"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$form"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		bson.D{{Key: "$unwind", Value: "$ratings"}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "formTitle", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$form.title", ""}}}},
			{Key: "studentName", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$student.fullName", ""}}}},
			{Key: "studentEmail", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$student.email", ""}}}},
			{Key: "question", Value: "$ratings.questionText"},
			{Key: "rating", Value: "$ratings.rating"},
			{Key: "comment", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$comment", ""}}}},
		}}},
	)
	return pipeline
}

package repository

import (
	"complykit/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ResultRepo handles MongoDB operations for questionnaire results.
// Results are append-only.
type ResultRepo interface {
	// Create stores result and returns its id. A result whose SubmissionID
	// the user already stored is not inserted again; the stored id is
	// returned instead.
	Create(ctx context.Context, result *model.QuestionnaireResult) (string, error)
	GetByID(ctx context.Context, id string) (*model.QuestionnaireResult, error)
	ListByUser(ctx context.Context, userID string) ([]*model.QuestionnaireResult, error)
	LatestByUser(ctx context.Context, userID string) (*model.QuestionnaireResult, error)
	EnsureIndexes(ctx context.Context) error
}

type resultRepo struct {
	collection *mongo.Collection
}

// NewResultRepo creates a new result repository
func NewResultRepo(db *mongo.Database) ResultRepo {
	return &resultRepo{
		collection: db.Collection("questionnaire_results"),
	}
}

func (r *resultRepo) Create(ctx context.Context, result *model.QuestionnaireResult) (string, error) {
	doc := *result
	doc.ID = ""
	if doc.SubmissionID != "" {
		return r.createOnce(ctx, &doc)
	}

	res, err := r.collection.InsertOne(ctx, &doc)
	if err != nil {
		return "", err
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	return oid.Hex(), nil
}

func (r *resultRepo) createOnce(ctx context.Context, doc *model.QuestionnaireResult) (string, error) {
	filter := bson.M{"userId": doc.UserID, "submissionId": doc.SubmissionID}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored model.QuestionnaireResult
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$setOnInsert": doc}, opts).Decode(&stored)
	if mongo.IsDuplicateKeyError(err) {
		// A concurrent upsert for the same submission won
		err = r.collection.FindOne(ctx, filter).Decode(&stored)
	}
	if err != nil {
		return "", err
	}
	return stored.ID, nil
}

func (r *resultRepo) GetByID(ctx context.Context, id string) (*model.QuestionnaireResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var result model.QuestionnaireResult
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	result.ID = id
	return &result, nil
}

func (r *resultRepo) ListByUser(ctx context.Context, userID string) ([]*model.QuestionnaireResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []*model.QuestionnaireResult{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *resultRepo) LatestByUser(ctx context.Context, userID string) (*model.QuestionnaireResult, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	var result model.QuestionnaireResult
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}, opts).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *resultRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "submissionId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"submissionId": bson.M{"$exists": true}}),
		},
	})
	return err
}

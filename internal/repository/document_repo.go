package repository

import (
	"complykit/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DocumentRepo stores the latest generated document per user and kind
type DocumentRepo interface {
	Save(ctx context.Context, doc *model.GeneratedDocument) error
	Get(ctx context.Context, userID string, kind model.DocumentKind) (*model.GeneratedDocument, error)
	ListByUser(ctx context.Context, userID string) ([]*model.GeneratedDocument, error)
}

type documentRepo struct {
	collection *mongo.Collection
}

// NewDocumentRepo creates a new document repository
func NewDocumentRepo(db *mongo.Database) DocumentRepo {
	return &documentRepo{
		collection: db.Collection("generated_documents"),
	}
}

func (r *documentRepo) Save(ctx context.Context, doc *model.GeneratedDocument) error {
	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"userId": doc.UserID, "kind": doc.Kind}
	_, err := r.collection.ReplaceOne(ctx, filter, doc, opts)
	return err
}

func (r *documentRepo) Get(ctx context.Context, userID string, kind model.DocumentKind) (*model.GeneratedDocument, error) {
	var doc model.GeneratedDocument
	err := r.collection.FindOne(ctx, bson.M{"userId": userID, "kind": kind}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) ListByUser(ctx context.Context, userID string) ([]*model.GeneratedDocument, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []*model.GeneratedDocument{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

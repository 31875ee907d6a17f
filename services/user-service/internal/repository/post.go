package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/model"
)

// PostRepository reads posts referenced from user documents.
type PostRepository interface {
	GetPostsByIDs(ctx context.Context, ids []bson.ObjectID) ([]*model.Post, error)
}

const postCollection = "posts"

type postMongoRepository struct {
	db *mongo.Database
}

func NewPostMongoRepository(db *mongo.Database) PostRepository {
	return &postMongoRepository{db: db}
}

func (r *postMongoRepository) GetPostsByIDs(ctx context.Context, ids []bson.ObjectID) ([]*model.Post, error) {
	return findByIDs[model.Post](ctx, r.db.Collection(postCollection), ids)
}

// findByIDs loads the documents whose _id is in ids. Order is unspecified and
// missing ids are skipped.
func findByIDs[T any](ctx context.Context, collection *mongo.Collection, ids []bson.ObjectID) ([]*T, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*T
	for cursor.Next(ctx) {
		doc := new(T)
		if err := cursor.Decode(doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

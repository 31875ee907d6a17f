package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/model"
)

// CommentRepository reads comments referenced from posts.
type CommentRepository interface {
	GetCommentsByIDs(ctx context.Context, ids []bson.ObjectID) ([]*model.Comment, error)
}

const commentCollection = "comments"

type commentMongoRepository struct {
	db *mongo.Database
}

func NewCommentMongoRepository(db *mongo.Database) CommentRepository {
	return &commentMongoRepository{db: db}
}

func (r *commentMongoRepository) GetCommentsByIDs(ctx context.Context, ids []bson.ObjectID) ([]*model.Comment, error) {
	return findByIDs[model.Comment](ctx, r.db.Collection(commentCollection), ids)
}

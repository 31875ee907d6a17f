package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/model"
)

// NotificationRepository reads notifications referenced from user documents.
type NotificationRepository interface {
	GetNotificationsByIDs(ctx context.Context, ids []bson.ObjectID) ([]*model.Notification, error)
}

const notificationCollection = "notifications"

type notificationMongoRepository struct {
	db *mongo.Database
}

func NewNotificationMongoRepository(db *mongo.Database) NotificationRepository {
	return &notificationMongoRepository{db: db}
}

func (r *notificationMongoRepository) GetNotificationsByIDs(
	ctx context.Context,
	ids []bson.ObjectID,
) ([]*model.Notification, error) {
	return findByIDs[model.Notification](ctx, r.db.Collection(notificationCollection), ids)
}

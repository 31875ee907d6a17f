package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Notification tells UserID that FromUserID interacted with PostID.
type Notification struct {
	ID         bson.ObjectID `bson:"_id,omitempty"`
	UserID     bson.ObjectID `bson:"user_id"`
	FromUserID bson.ObjectID `bson:"from_user_id"`
	PostID     bson.ObjectID `bson:"post_id"`
	Message    string        `bson:"message"`
	CreatedAt  time.Time     `bson:"created_at"`
	UpdatedAt  time.Time     `bson:"updated_at"`
}

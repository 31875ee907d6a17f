package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Post is authored by a user and holds its comments in order.
type Post struct {
	ID        bson.ObjectID   `bson:"_id,omitempty"`
	UserID    bson.ObjectID   `bson:"user_id"`
	Body      string          `bson:"body"`
	ImageURL  string          `bson:"image_url"`
	Likes     []bson.ObjectID `bson:"likes"`
	Comments  []bson.ObjectID `bson:"comments"`
	CreatedAt time.Time       `bson:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at"`
}

// Comment is a reply to a post.
type Comment struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"user_id"`
	PostID    bson.ObjectID `bson:"post_id"`
	Body      string        `bson:"body"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

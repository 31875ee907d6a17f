package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is both an identity and a node of the social graph.
// Followers, Likes and Notifications are sets; Posts keeps authoring order.
type User struct {
	ID            bson.ObjectID   `bson:"_id,omitempty"`
	Email         string          `bson:"email"`
	Username      string          `bson:"username"`
	PasswordHash  string          `bson:"password_hash" json:"-"`
	ImageURL      string          `bson:"image_url"`
	Followers     []bson.ObjectID `bson:"followers"`
	Likes         []bson.ObjectID `bson:"likes"`
	Posts         []bson.ObjectID `bson:"posts"`
	Notifications []bson.ObjectID `bson:"notifications"`
	CreatedAt     time.Time       `bson:"created_at"`
	UpdatedAt     time.Time       `bson:"updated_at"`
}

// Relation names a set-valued relationship field of a User.
type Relation string

const (
	RelationFollowers     Relation = "followers"
	RelationLikes         Relation = "likes"
	RelationNotifications Relation = "notifications"
)

// Valid reports whether r is one of the mutable relationship sets.
func (r Relation) Valid() bool {
	switch r {
	case RelationFollowers, RelationLikes, RelationNotifications:
		return true
	}
	return false
}

// Members returns a pointer to the slice backing relation r.
func (u *User) Members(r Relation) *[]bson.ObjectID {
	switch r {
	case RelationFollowers:
		return &u.Followers
	case RelationLikes:
		return &u.Likes
	case RelationNotifications:
		return &u.Notifications
	}
	return nil
}

// EnsureRelations replaces nil relationship slices with empty ones so they are
// stored as arrays rather than null.
func (u *User) EnsureRelations() {
	for _, s := range []*[]bson.ObjectID{&u.Followers, &u.Likes, &u.Posts, &u.Notifications} {
		if *s == nil {
			*s = []bson.ObjectID{}
		}
	}
}

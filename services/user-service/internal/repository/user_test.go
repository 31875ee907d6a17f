package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/model"
)

func strPtr(s string) *string { return &s }

func TestUserUpdateDocument(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	update, err := userUpdateDocument(UpdateUserParams{
		Username: strPtr("ada"),
		ImageURL: strPtr("https://img/ada.png"),
	}, now)
	require.NoError(t, err)

	assert.Equal(t, bson.M{"$set": bson.M{
		"username":   "ada",
		"image_url":  "https://img/ada.png",
		"updated_at": now,
	}}, update)
}

func TestUserUpdateDocument_Empty(t *testing.T) {
	_, err := userUpdateDocument(UpdateUserParams{}, time.Now())
	assert.ErrorIs(t, err, ErrEmptyUpdate)
}

func TestMembershipUpdateDocument(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	member := bson.NewObjectID()

	update, err := membershipUpdateDocument("$addToSet", model.RelationFollowers, member, now)
	require.NoError(t, err)
	assert.Equal(t, bson.M{
		"$addToSet": bson.M{"followers": member},
		"$set":      bson.M{"updated_at": now},
	}, update)

	update, err = membershipUpdateDocument("$pull", model.RelationNotifications, member, now)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"notifications": member}, update["$pull"])

	_, err = membershipUpdateDocument("$pull", model.Relation("password_hash"), member, now)
	assert.Error(t, err)
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(mongo.ErrNoDocuments), ErrNotFound)
	assert.ErrorIs(t, translateError(fmt.Errorf("wrapped: %w", mongo.ErrNoDocuments)), ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, translateError(dup), ErrDuplicateKey)

	boom := errors.New("boom")
	assert.Equal(t, boom, translateError(boom))
}

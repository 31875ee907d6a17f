package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/model"
)

// UserRepository defines the interface for user-related database operations.
// Every method touches a single user document, except RemoveMemberFromAll.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id bson.ObjectID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUsersByIDs(ctx context.Context, ids []bson.ObjectID) ([]*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, id bson.ObjectID, params UpdateUserParams) (*model.User, error)

	// AddMember inserts member into the relation set of user id and returns
	// the updated document. Adding a present member leaves the set unchanged.
	AddMember(ctx context.Context, id bson.ObjectID, relation model.Relation, member bson.ObjectID) (*model.User, error)

	// RemoveMember removes member from the relation set of user id and returns
	// the updated document. Removing an absent member leaves the set unchanged.
	RemoveMember(ctx context.Context, id bson.ObjectID, relation model.Relation, member bson.ObjectID) (*model.User, error)

	// DeleteUser removes the user document. It reports whether a document existed.
	DeleteUser(ctx context.Context, id bson.ObjectID) (bool, error)

	// RemoveMemberFromAll removes member from relation on every user and
	// returns the number of modified documents.
	RemoveMemberFromAll(ctx context.Context, relation model.Relation, member bson.ObjectID) (int64, error)
}

// UpdateUserParams defines the optional parameters for updating a user.
// Only the fields that are not nil will be updated. Password hash and
// relationship sets are deliberately absent.
type UpdateUserParams struct {
	Username *string
	Email    *string
	ImageURL *string
}

// IsEmpty reports whether no field is set.
func (p UpdateUserParams) IsEmpty() bool {
	return p.Username == nil && p.Email == nil && p.ImageURL == nil
}

const userCollection = "users"

type userMongoRepository struct {
	db *mongo.Database
}

func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "followers", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.EnsureRelations()

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, translateError(err)
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id bson.ObjectID) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userMongoRepository) GetUsersByIDs(ctx context.Context, ids []bson.ObjectID) ([]*model.User, error) {
	return findByIDs[model.User](ctx, r.db.Collection(userCollection), ids)
}

func (r *userMongoRepository) ListUsers(ctx context.Context) ([]*model.User, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{}, findOptions)
}

func (r *userMongoRepository) UpdateUser(
	ctx context.Context,
	id bson.ObjectID,
	params UpdateUserParams,
) (*model.User, error) {
	update, err := userUpdateDocument(params, time.Now())
	if err != nil {
		return nil, err
	}

	return r.findOneAndUpdate(ctx, id, update)
}

func (r *userMongoRepository) AddMember(
	ctx context.Context,
	id bson.ObjectID,
	relation model.Relation,
	member bson.ObjectID,
) (*model.User, error) {
	update, err := membershipUpdateDocument("$addToSet", relation, member, time.Now())
	if err != nil {
		return nil, err
	}

	return r.findOneAndUpdate(ctx, id, update)
}

func (r *userMongoRepository) RemoveMember(
	ctx context.Context,
	id bson.ObjectID,
	relation model.Relation,
	member bson.ObjectID,
) (*model.User, error) {
	update, err := membershipUpdateDocument("$pull", relation, member, time.Now())
	if err != nil {
		return nil, err
	}

	return r.findOneAndUpdate(ctx, id, update)
}

func (r *userMongoRepository) DeleteUser(ctx context.Context, id bson.ObjectID) (bool, error) {
	result, err := r.db.Collection(userCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}

	return result.DeletedCount > 0, nil
}

func (r *userMongoRepository) RemoveMemberFromAll(
	ctx context.Context,
	relation model.Relation,
	member bson.ObjectID,
) (int64, error) {
	update, err := membershipUpdateDocument("$pull", relation, member, time.Now())
	if err != nil {
		return 0, err
	}

	result, err := r.db.Collection(userCollection).UpdateMany(ctx, bson.M{string(relation): member}, update)
	if err != nil {
		return 0, err
	}

	return result.ModifiedCount, nil
}

func (r *userMongoRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, translateError(result.Err())
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) find(
	ctx context.Context,
	filter bson.M,
	findOptions *options.FindOptionsBuilder,
) ([]*model.User, error) {
	cursor, err := r.db.Collection(userCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*model.User
	for cursor.Next(ctx) {
		var user model.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// findOneAndUpdate applies update atomically and returns the post-update document.
func (r *userMongoRepository) findOneAndUpdate(ctx context.Context, id bson.ObjectID, update bson.M) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, translateError(result.Err())
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func userUpdateDocument(params UpdateUserParams, now time.Time) (bson.M, error) {
	set := bson.M{}
	if params.Username != nil {
		set["username"] = *params.Username
	}
	if params.Email != nil {
		set["email"] = *params.Email
	}
	if params.ImageURL != nil {
		set["image_url"] = *params.ImageURL
	}

	if len(set) == 0 {
		return nil, ErrEmptyUpdate
	}

	set["updated_at"] = now

	return bson.M{"$set": set}, nil
}

// membershipUpdateDocument builds a single-document set operation
// ($addToSet or $pull) that also bumps updated_at.
func membershipUpdateDocument(operator string, relation model.Relation, member bson.ObjectID, now time.Time) (bson.M, error) {
	if !relation.Valid() {
		return nil, errors.New("unknown relation " + string(relation))
	}

	return bson.M{
		operator: bson.M{string(relation): member},
		"$set":   bson.M{"updated_at": now},
	}, nil
}

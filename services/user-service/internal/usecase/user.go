package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/model"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/repository"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/pkg/types"
	"github.com/vitor-afonso/iron-connections-server/shared/validation"
)

// UserUsecase defines the authenticated mutations of the user graph. Every
// mutation returns the document as it is after the change.
type UserUsecase interface {
	CreateUser(ctx context.Context, params RegisterParams) (*types.User, error)
	UpdateUser(ctx context.Context, userID string, params UpdateUserParams) (*types.User, error)
	DeleteUser(ctx context.Context, userID string) error
	PruneReferences(ctx context.Context, userID string) (int64, error)

	AddFollower(ctx context.Context, userID, followerID string) (*types.User, error)
	RemoveFollower(ctx context.Context, userID, followerID string) (*types.User, error)
	AddLike(ctx context.Context, userID, postID string) (*types.User, error)
	RemoveLike(ctx context.Context, userID, postID string) (*types.User, error)
	RemoveNotification(ctx context.Context, userID, notificationID string) (*types.User, error)
}

// UpdateUserParams is the profile patch. Nil fields are left untouched.
type UpdateUserParams struct {
	Username *string `validate:"omitnil,required"`
	Email    *string `validate:"omitnil,required,emailaddr"`
	ImageURL *string
}

type userUsecase struct {
	accounts  *accountCreator
	userRepo  repository.UserRepository
	validator *validation.Validator
	logger    *zerolog.Logger
}

func NewUserUsecase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	validator *validation.Validator,
	logger *zerolog.Logger,
) UserUsecase {
	return &userUsecase{
		accounts:  &accountCreator{userRepo: userRepo, hasher: hasher, validator: validator},
		userRepo:  userRepo,
		validator: validator,
		logger:    logger,
	}
}

func (u *userUsecase) CreateUser(ctx context.Context, params RegisterParams) (view *types.User, err error) {
	defer func() { graphMutationsTotal.WithLabelValues("create_user", resultLabel(err)).Inc() }()

	user, err := u.accounts.create(ctx, params)
	if err != nil {
		return nil, err
	}

	return toUser(user), nil
}

func (u *userUsecase) UpdateUser(ctx context.Context, userID string, params UpdateUserParams) (view *types.User, err error) {
	defer func() { graphMutationsTotal.WithLabelValues("update_user", resultLabel(err)).Inc() }()

	id, err := parseID("userId", userID)
	if err != nil {
		return nil, err
	}
	if err := validate(u.validator, params); err != nil {
		return nil, err
	}

	patch := repository.UpdateUserParams{
		Username: params.Username,
		Email:    params.Email,
		ImageURL: params.ImageURL,
	}

	var user *model.User
	if patch.IsEmpty() {
		user, err = u.userRepo.GetUser(ctx, id)
	} else {
		user, err = u.userRepo.UpdateUser(ctx, id, patch)
	}
	if err != nil {
		return nil, translateStoreError(err)
	}

	return toUser(user), nil
}

func (u *userUsecase) DeleteUser(ctx context.Context, userID string) (err error) {
	defer func() { graphMutationsTotal.WithLabelValues("delete_user", resultLabel(err)).Inc() }()

	id, err := parseID("userId", userID)
	if err != nil {
		return err
	}

	existed, err := u.userRepo.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if !existed {
		u.logger.Debug().Str("user_id", userID).Msg("delete of absent user")
	}

	return nil
}

// PruneReferences removes a deleted user's id from every follower set and
// returns the number of users changed. It refuses while the user exists.
func (u *userUsecase) PruneReferences(ctx context.Context, userID string) (modified int64, err error) {
	defer func() { graphMutationsTotal.WithLabelValues("prune_references", resultLabel(err)).Inc() }()

	id, err := parseID("userId", userID)
	if err != nil {
		return 0, err
	}

	if _, err := u.userRepo.GetUser(ctx, id); err == nil {
		return 0, ErrUserExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return 0, err
	}

	modified, err = u.userRepo.RemoveMemberFromAll(ctx, model.RelationFollowers, id)
	if err != nil {
		return 0, err
	}

	u.logger.Info().Str("user_id", userID).Int64("modified", modified).Msg("pruned follower references")

	return modified, nil
}

func (u *userUsecase) AddFollower(ctx context.Context, userID, followerID string) (*types.User, error) {
	return u.mutate(ctx, "add_follower", userID, "followerId", followerID, model.RelationFollowers, true)
}

func (u *userUsecase) RemoveFollower(ctx context.Context, userID, followerID string) (*types.User, error) {
	return u.mutate(ctx, "remove_follower", userID, "followerId", followerID, model.RelationFollowers, false)
}

func (u *userUsecase) AddLike(ctx context.Context, userID, postID string) (*types.User, error) {
	return u.mutate(ctx, "add_like", userID, "postId", postID, model.RelationLikes, true)
}

func (u *userUsecase) RemoveLike(ctx context.Context, userID, postID string) (*types.User, error) {
	return u.mutate(ctx, "remove_like", userID, "postId", postID, model.RelationLikes, false)
}

func (u *userUsecase) RemoveNotification(ctx context.Context, userID, notificationID string) (*types.User, error) {
	return u.mutate(ctx, "remove_notification", userID, "notificationId", notificationID, model.RelationNotifications, false)
}

// mutate parses both ids before touching the store, then applies a single
// set-union or set-difference on relation.
func (u *userUsecase) mutate(
	ctx context.Context,
	operation string,
	userID string,
	memberName string,
	memberID string,
	relation model.Relation,
	add bool,
) (view *types.User, err error) {
	defer func() { graphMutationsTotal.WithLabelValues(operation, resultLabel(err)).Inc() }()

	id, err := parseID("userId", userID)
	if err != nil {
		return nil, err
	}
	member, err := parseID(memberName, memberID)
	if err != nil {
		return nil, err
	}

	var user *model.User
	if add {
		user, err = u.userRepo.AddMember(ctx, id, relation, member)
	} else {
		user, err = u.userRepo.RemoveMember(ctx, id, relation, member)
	}
	if err != nil {
		return nil, translateStoreError(err)
	}

	return toUser(user), nil
}

func translateStoreError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrDuplicateKey):
		return ErrDuplicateEmail
	default:
		return err
	}
}

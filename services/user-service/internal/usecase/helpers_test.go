package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/model"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/repository"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/session"
	"github.com/vitor-afonso/iron-connections-server/shared/auth"
	"github.com/vitor-afonso/iron-connections-server/shared/security"
	"github.com/vitor-afonso/iron-connections-server/shared/validation"
)

const strongPassword = "Secret123"

// countingUserRepo counts every call that reaches the store.
type countingUserRepo struct {
	repository.UserRepository
	calls atomic.Int64
}

func (r *countingUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	r.calls.Add(1)
	return r.UserRepository.CreateUser(ctx, user)
}

func (r *countingUserRepo) GetUser(ctx context.Context, id bson.ObjectID) (*model.User, error) {
	r.calls.Add(1)
	return r.UserRepository.GetUser(ctx, id)
}

func (r *countingUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	r.calls.Add(1)
	return r.UserRepository.GetUserByEmail(ctx, email)
}

func (r *countingUserRepo) GetUsersByIDs(ctx context.Context, ids []bson.ObjectID) ([]*model.User, error) {
	r.calls.Add(1)
	return r.UserRepository.GetUsersByIDs(ctx, ids)
}

func (r *countingUserRepo) ListUsers(ctx context.Context) ([]*model.User, error) {
	r.calls.Add(1)
	return r.UserRepository.ListUsers(ctx)
}

func (r *countingUserRepo) UpdateUser(
	ctx context.Context,
	id bson.ObjectID,
	params repository.UpdateUserParams,
) (*model.User, error) {
	r.calls.Add(1)
	return r.UserRepository.UpdateUser(ctx, id, params)
}

func (r *countingUserRepo) AddMember(
	ctx context.Context,
	id bson.ObjectID,
	relation model.Relation,
	member bson.ObjectID,
) (*model.User, error) {
	r.calls.Add(1)
	return r.UserRepository.AddMember(ctx, id, relation, member)
}

func (r *countingUserRepo) RemoveMember(
	ctx context.Context,
	id bson.ObjectID,
	relation model.Relation,
	member bson.ObjectID,
) (*model.User, error) {
	r.calls.Add(1)
	return r.UserRepository.RemoveMember(ctx, id, relation, member)
}

func (r *countingUserRepo) DeleteUser(ctx context.Context, id bson.ObjectID) (bool, error) {
	r.calls.Add(1)
	return r.UserRepository.DeleteUser(ctx, id)
}

func (r *countingUserRepo) RemoveMemberFromAll(
	ctx context.Context,
	relation model.Relation,
	member bson.ObjectID,
) (int64, error) {
	r.calls.Add(1)
	return r.UserRepository.RemoveMemberFromAll(ctx, relation, member)
}

// countingHasher wraps a real hasher and counts verifications.
type countingHasher struct {
	PasswordHasher
	verifies atomic.Int64
}

func (h *countingHasher) VerifyPassword(password, digest string) (bool, error) {
	h.verifies.Add(1)
	return h.PasswordHasher.VerifyPassword(password, digest)
}

type recordingWelcome struct {
	mu    sync.Mutex
	users []string
	err   error
}

func (w *recordingWelcome) NotifySignup(_ context.Context, user *model.User) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.users = append(w.users, user.Email)
	return w.err
}

type fixture struct {
	store   *repository.MemoryStore
	repo    *countingUserRepo
	hasher  *countingHasher
	tokens  *session.TokenService
	welcome *recordingWelcome
	auth    AuthUsecase
	users   UserUsecase
	graph   GraphReader
}

type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := repository.NewMemoryStore()
	store.SetClock((&steppingClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}).Now)

	validator, err := validation.New()
	require.NoError(t, err)

	logger := zerolog.Nop()
	repo := &countingUserRepo{UserRepository: store}
	hasher := &countingHasher{PasswordHasher: security.NewPasswordHasher(security.PasswordParams{
		TimeCost:    1,
		MemoryCost:  1024,
		Parallelism: 1,
	})}
	tokens := session.NewTokenService(auth.NewJWTAuthenticator("iron-connections", "iron-connections", "test-secret"), 0)
	welcome := &recordingWelcome{}

	return &fixture{
		store:   store,
		repo:    repo,
		hasher:  hasher,
		tokens:  tokens,
		welcome: welcome,
		auth:    NewAuthUsecase(repo, hasher, tokens, validator, welcome, &logger),
		users:   NewUserUsecase(repo, hasher, validator, &logger),
		graph:   NewGraphReader(repo, store, store, store),
	}
}

func (f *fixture) signup(t *testing.T, email, username string) string {
	t.Helper()
	result, err := f.auth.Signup(context.Background(), RegisterParams{
		Email:    email,
		Password: strongPassword,
		Username: username,
	})
	require.NoError(t, err)
	return result.ID
}

func strPtr(s string) *string { return &s }

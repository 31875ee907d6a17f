package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/model"
)

type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestStore() *MemoryStore {
	s := NewMemoryStore()
	clock := &tickingClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s.SetClock(clock.Now)
	return s
}

func mustCreate(t *testing.T, s *MemoryStore, email string) *model.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), &model.User{Email: email, Username: email, PasswordHash: "digest"})
	require.NoError(t, err)
	return u
}

func TestMemoryStore_CreateUser(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	u := mustCreate(t, s, "ada@example.com")
	assert.False(t, u.ID.IsZero())
	assert.NotNil(t, u.Followers)
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)

	_, err := s.CreateUser(ctx, &model.User{Email: "ada@example.com", Username: "other"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	byEmail, err := s.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "ada@example.com", byEmail.Username)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	u := mustCreate(t, s, "ada@example.com")

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	got.Followers = append(got.Followers, bson.NewObjectID())
	got.Username = "mutated"

	again, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Followers)
	assert.Equal(t, "ada@example.com", again.Username)
}

func TestMemoryStore_MembershipIsIdempotent(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	u := mustCreate(t, s, "ada@example.com")
	follower := bson.NewObjectID()

	once, err := s.AddMember(ctx, u.ID, model.RelationFollowers, follower)
	require.NoError(t, err)
	twice, err := s.AddMember(ctx, u.ID, model.RelationFollowers, follower)
	require.NoError(t, err)

	assert.Equal(t, []bson.ObjectID{follower}, once.Followers)
	assert.Equal(t, once.Followers, twice.Followers)
	assert.True(t, twice.UpdatedAt.After(once.UpdatedAt))
	assert.Equal(t, u.CreatedAt, twice.CreatedAt)

	removed, err := s.RemoveMember(ctx, u.ID, model.RelationFollowers, bson.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, []bson.ObjectID{follower}, removed.Followers)

	removed, err = s.RemoveMember(ctx, u.ID, model.RelationFollowers, follower)
	require.NoError(t, err)
	assert.Empty(t, removed.Followers)
}

func TestMemoryStore_MembershipMissingUser(t *testing.T) {
	s := newTestStore()

	_, err := s.AddMember(context.Background(), bson.NewObjectID(), model.RelationLikes, bson.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ConcurrentAddsAreAllKept(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	u := mustCreate(t, s, "ada@example.com")

	followers := make([]bson.ObjectID, 50)
	for i := range followers {
		followers[i] = bson.NewObjectID()
	}

	var wg sync.WaitGroup
	for _, f := range followers {
		for range 2 {
			wg.Add(1)
			go func(f bson.ObjectID) {
				defer wg.Done()
				_, err := s.AddMember(ctx, u.ID, model.RelationFollowers, f)
				assert.NoError(t, err)
			}(f)
		}
	}
	wg.Wait()

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, followers, got.Followers)
}

func TestMemoryStore_UpdateUser(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	ada := mustCreate(t, s, "ada@example.com")
	mustCreate(t, s, "bob@example.com")

	updated, err := s.UpdateUser(ctx, ada.ID, UpdateUserParams{Email: strPtr("ada@iron.dev"), Username: strPtr("Ada")})
	require.NoError(t, err)
	assert.Equal(t, "ada@iron.dev", updated.Email)
	assert.Equal(t, "Ada", updated.Username)
	assert.True(t, updated.UpdatedAt.After(ada.UpdatedAt))

	_, err = s.GetUserByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UpdateUser(ctx, ada.ID, UpdateUserParams{Email: strPtr("bob@example.com")})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = s.UpdateUser(ctx, ada.ID, UpdateUserParams{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)

	_, err = s.UpdateUser(ctx, bson.NewObjectID(), UpdateUserParams{Username: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_DeleteAndPrune(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	ada := mustCreate(t, s, "ada@example.com")
	bob := mustCreate(t, s, "bob@example.com")
	eve := mustCreate(t, s, "eve@example.com")

	_, err := s.AddMember(ctx, bob.ID, model.RelationFollowers, ada.ID)
	require.NoError(t, err)
	_, err = s.AddMember(ctx, eve.ID, model.RelationFollowers, ada.ID)
	require.NoError(t, err)

	deleted, err := s.DeleteUser(ctx, ada.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteUser(ctx, ada.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	stillFollowing, err := s.GetUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []bson.ObjectID{ada.ID}, stillFollowing.Followers)

	modified, err := s.RemoveMemberFromAll(ctx, model.RelationFollowers, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), modified)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, bob.ID, users[0].ID)
	for _, u := range users {
		assert.Empty(t, u.Followers)
	}

	// email is free again after delete
	mustCreate(t, s, "ada@example.com")
}

func TestMemoryStore_LookupsByIDs(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	ada := mustCreate(t, s, "ada@example.com")

	post := s.PutPost(&model.Post{UserID: ada.ID, Body: "hello"})
	comment := s.PutComment(&model.Comment{UserID: ada.ID, PostID: post.ID, Body: "first"})
	note := s.PutNotification(&model.Notification{UserID: ada.ID, PostID: post.ID})
	require.NoError(t, s.AppendPost(ada.ID, post.ID))

	users, err := s.GetUsersByIDs(ctx, []bson.ObjectID{ada.ID, bson.NewObjectID(), ada.ID})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, []bson.ObjectID{post.ID}, users[0].Posts)

	posts, err := s.GetPostsByIDs(ctx, []bson.ObjectID{post.ID})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "hello", posts[0].Body)

	comments, err := s.GetCommentsByIDs(ctx, []bson.ObjectID{comment.ID})
	require.NoError(t, err)
	require.Len(t, comments, 1)

	notes, err := s.GetNotificationsByIDs(ctx, []bson.ObjectID{note.ID, bson.NewObjectID()})
	require.NoError(t, err)
	require.Len(t, notes, 1)

	none, err := s.GetPostsByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

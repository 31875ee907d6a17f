package repository

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/model"
)

// MemoryStore is an in-process implementation of every repository interface.
// A single mutex serializes writes, which gives each operation the same
// per-document atomicity the Mongo implementation gets from the server.
type MemoryStore struct {
	mu            sync.RWMutex
	now           func() time.Time
	users         map[bson.ObjectID]*model.User
	emails        map[string]bson.ObjectID
	posts         map[bson.ObjectID]*model.Post
	comments      map[bson.ObjectID]*model.Comment
	notifications map[bson.ObjectID]*model.Notification
}

var (
	_ UserRepository         = (*MemoryStore)(nil)
	_ PostRepository         = (*MemoryStore)(nil)
	_ CommentRepository      = (*MemoryStore)(nil)
	_ NotificationRepository = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:           time.Now,
		users:         make(map[bson.ObjectID]*model.User),
		emails:        make(map[string]bson.ObjectID),
		posts:         make(map[bson.ObjectID]*model.Post),
		comments:      make(map[bson.ObjectID]*model.Comment),
		notifications: make(map[bson.ObjectID]*model.Notification),
	}
}

// SetClock replaces the time source used for created_at/updated_at.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[user.Email]; taken {
		return nil, ErrDuplicateKey
	}

	now := s.now()
	user.ID = bson.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.EnsureRelations()

	stored := cloneUser(user)
	s.users[stored.ID] = stored
	s.emails[stored.Email] = stored.ID

	return cloneUser(stored), nil
}

func (s *MemoryStore) GetUser(_ context.Context, id bson.ObjectID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	return cloneUser(user), nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, ErrNotFound
	}

	return cloneUser(s.users[id]), nil
}

func (s *MemoryStore) GetUsersByIDs(_ context.Context, ids []bson.ObjectID) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []*model.User
	for _, id := range uniqueIDs(ids) {
		if user, ok := s.users[id]; ok {
			users = append(users, cloneUser(user))
		}
	}

	return users, nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*model.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, cloneUser(user))
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID.Hex() < users[j].ID.Hex()
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return users, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, id bson.ObjectID, params UpdateUserParams) (*model.User, error) {
	if params.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	if params.Email != nil && *params.Email != user.Email {
		if _, taken := s.emails[*params.Email]; taken {
			return nil, ErrDuplicateKey
		}
		delete(s.emails, user.Email)
		user.Email = *params.Email
		s.emails[user.Email] = user.ID
	}
	if params.Username != nil {
		user.Username = *params.Username
	}
	if params.ImageURL != nil {
		user.ImageURL = *params.ImageURL
	}
	user.UpdatedAt = s.now()

	return cloneUser(user), nil
}

func (s *MemoryStore) AddMember(
	_ context.Context,
	id bson.ObjectID,
	relation model.Relation,
	member bson.ObjectID,
) (*model.User, error) {
	return s.mutateMembers(id, relation, func(members []bson.ObjectID) []bson.ObjectID {
		if slices.Contains(members, member) {
			return members
		}
		return append(members, member)
	})
}

func (s *MemoryStore) RemoveMember(
	_ context.Context,
	id bson.ObjectID,
	relation model.Relation,
	member bson.ObjectID,
) (*model.User, error) {
	return s.mutateMembers(id, relation, func(members []bson.ObjectID) []bson.ObjectID {
		return slices.DeleteFunc(members, func(m bson.ObjectID) bool { return m == member })
	})
}

func (s *MemoryStore) DeleteUser(_ context.Context, id bson.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return false, nil
	}

	delete(s.emails, user.Email)
	delete(s.users, id)

	return true, nil
}

func (s *MemoryStore) RemoveMemberFromAll(_ context.Context, relation model.Relation, member bson.ObjectID) (int64, error) {
	if !relation.Valid() {
		return 0, errors.New("unknown relation " + string(relation))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var modified int64
	now := s.now()
	for _, user := range s.users {
		members := user.Members(relation)
		if !slices.Contains(*members, member) {
			continue
		}
		*members = slices.DeleteFunc(*members, func(m bson.ObjectID) bool { return m == member })
		user.UpdatedAt = now
		modified++
	}

	return modified, nil
}

// PutPost stores p, assigning an id if it has none.
func (s *MemoryStore) PutPost(p *model.Post) *model.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
		p.UpdatedAt = p.CreatedAt
	}
	cp := *p
	cp.Comments = slices.Clone(p.Comments)
	cp.Likes = slices.Clone(p.Likes)
	s.posts[cp.ID] = &cp

	return p
}

// PutComment stores c, assigning an id if it has none.
func (s *MemoryStore) PutComment(c *model.Comment) *model.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID.IsZero() {
		c.ID = bson.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
		c.UpdatedAt = c.CreatedAt
	}
	cp := *c
	s.comments[cp.ID] = &cp

	return c
}

// PutNotification stores n, assigning an id if it has none.
func (s *MemoryStore) PutNotification(n *model.Notification) *model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID.IsZero() {
		n.ID = bson.NewObjectID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
		n.UpdatedAt = n.CreatedAt
	}
	cp := *n
	s.notifications[cp.ID] = &cp

	return n
}

// AppendPost records postID as authored by user id, the way post creation
// does in the full application.
func (s *MemoryStore) AppendPost(id, postID bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Posts = append(user.Posts, postID)

	return nil
}

func (s *MemoryStore) GetPostsByIDs(_ context.Context, ids []bson.ObjectID) ([]*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var posts []*model.Post
	for _, id := range uniqueIDs(ids) {
		if p, ok := s.posts[id]; ok {
			cp := *p
			cp.Comments = slices.Clone(p.Comments)
			cp.Likes = slices.Clone(p.Likes)
			posts = append(posts, &cp)
		}
	}

	return posts, nil
}

func (s *MemoryStore) GetCommentsByIDs(_ context.Context, ids []bson.ObjectID) ([]*model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var comments []*model.Comment
	for _, id := range uniqueIDs(ids) {
		if c, ok := s.comments[id]; ok {
			cp := *c
			comments = append(comments, &cp)
		}
	}

	return comments, nil
}

func (s *MemoryStore) GetNotificationsByIDs(_ context.Context, ids []bson.ObjectID) ([]*model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var notifications []*model.Notification
	for _, id := range uniqueIDs(ids) {
		if n, ok := s.notifications[id]; ok {
			cp := *n
			notifications = append(notifications, &cp)
		}
	}

	return notifications, nil
}

func (s *MemoryStore) mutateMembers(
	id bson.ObjectID,
	relation model.Relation,
	apply func([]bson.ObjectID) []bson.ObjectID,
) (*model.User, error) {
	if !relation.Valid() {
		return nil, errors.New("unknown relation " + string(relation))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	members := user.Members(relation)
	*members = apply(*members)
	user.UpdatedAt = s.now()

	return cloneUser(user), nil
}

func cloneUser(u *model.User) *model.User {
	cp := *u
	cp.Followers = slices.Clone(u.Followers)
	cp.Likes = slices.Clone(u.Likes)
	cp.Posts = slices.Clone(u.Posts)
	cp.Notifications = slices.Clone(u.Notifications)
	return &cp
}

// uniqueIDs mirrors $in semantics, where repeated ids match a document once.
func uniqueIDs(ids []bson.ObjectID) []bson.ObjectID {
	seen := make(map[bson.ObjectID]struct{}, len(ids))
	out := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

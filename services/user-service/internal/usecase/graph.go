package usecase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/model"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/repository"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/pkg/types"
)

var tracer = otel.Tracer("iron-connections.usecase.graph")

// GraphReader composes expanded views of the user graph. Expansion depth is
// fixed per operation and every level is a single batched lookup.
type GraphReader interface {
	// ListUsers returns every user with posts expanded. Each post carries its
	// author and its comments, each with its author.
	ListUsers(ctx context.Context) ([]types.UserListing, error)

	// GetUser returns one user with followers, posts (comments with authors)
	// and notifications (with their post) expanded. It returns nil, nil when
	// no user has the id, and ErrInvalidIdentifier when userID is not a
	// 24-character hex ObjectID.
	GetUser(ctx context.Context, userID string) (*types.UserDetail, error)
}

type graphReader struct {
	userRepo         repository.UserRepository
	postRepo         repository.PostRepository
	commentRepo      repository.CommentRepository
	notificationRepo repository.NotificationRepository
}

func NewGraphReader(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	notificationRepo repository.NotificationRepository,
) GraphReader {
	return &graphReader{
		userRepo:         userRepo,
		postRepo:         postRepo,
		commentRepo:      commentRepo,
		notificationRepo: notificationRepo,
	}
}

func (g *graphReader) ListUsers(ctx context.Context) (listings []types.UserListing, err error) {
	ctx, span := tracer.Start(ctx, "graph.ListUsers")
	defer endSpan(span, "list_users", time.Now(), &err)

	users, err := g.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	var postIDs []bson.ObjectID
	for _, user := range users {
		postIDs = append(postIDs, user.Posts...)
	}
	posts, err := g.postRepo.GetPostsByIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	comments, err := g.commentRepo.GetCommentsByIDs(ctx, commentRefs(posts))
	if err != nil {
		return nil, err
	}

	// every existing post and comment author is already in the listing
	authors := make(map[bson.ObjectID]*types.User, len(users))
	for _, user := range users {
		authors[user.ID] = toUser(user)
	}

	postIndex := indexByID(posts, func(p *model.Post) bson.ObjectID { return p.ID })
	commentIndex := indexByID(comments, func(c *model.Comment) bson.ObjectID { return c.ID })

	listings = make([]types.UserListing, 0, len(users))
	for _, user := range users {
		listings = append(listings, types.UserListing{
			ID:            user.ID.Hex(),
			Email:         user.Email,
			Username:      user.Username,
			ImageURL:      user.ImageURL,
			Followers:     hexIDs(user.Followers),
			Likes:         hexIDs(user.Likes),
			Posts:         expandPosts(user.Posts, postIndex, commentIndex, authors),
			Notifications: hexIDs(user.Notifications),
			CreatedAt:     user.CreatedAt,
			UpdatedAt:     user.UpdatedAt,
		})
	}

	span.SetAttributes(attribute.Int("graph.users", len(users)), attribute.Int("graph.posts", len(posts)))

	return listings, nil
}

func (g *graphReader) GetUser(ctx context.Context, userID string) (detail *types.UserDetail, err error) {
	ctx, span := tracer.Start(ctx, "graph.GetUser", trace.WithAttributes(attribute.String("user.id", userID)))
	defer endSpan(span, "get_user", time.Now(), &err)

	id, err := parseID("userId", userID)
	if err != nil {
		return nil, err
	}

	user, err := g.userRepo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var (
		followers     []*model.User
		posts         []*model.Post
		notifications []*model.Notification
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		followers, err = g.userRepo.GetUsersByIDs(egCtx, user.Followers)
		return err
	})
	eg.Go(func() (err error) {
		posts, err = g.postRepo.GetPostsByIDs(egCtx, user.Posts)
		return err
	})
	eg.Go(func() (err error) {
		notifications, err = g.notificationRepo.GetNotificationsByIDs(egCtx, user.Notifications)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var (
		comments      []*model.Comment
		notifiedPosts []*model.Post
	)
	eg, egCtx = errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		comments, err = g.commentRepo.GetCommentsByIDs(egCtx, commentRefs(posts))
		return err
	})
	eg.Go(func() (err error) {
		postIDs := make([]bson.ObjectID, len(notifications))
		for i, n := range notifications {
			postIDs[i] = n.PostID
		}
		notifiedPosts, err = g.postRepo.GetPostsByIDs(egCtx, postIDs)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	authorIDs := make([]bson.ObjectID, 0, len(posts)+len(comments))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.UserID)
	}
	for _, c := range comments {
		authorIDs = append(authorIDs, c.UserID)
	}
	authorDocs, err := g.userRepo.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	authors := make(map[bson.ObjectID]*types.User, len(authorDocs))
	for _, a := range authorDocs {
		authors[a.ID] = toUser(a)
	}

	postIndex := indexByID(posts, func(p *model.Post) bson.ObjectID { return p.ID })
	commentIndex := indexByID(comments, func(c *model.Comment) bson.ObjectID { return c.ID })
	followerIndex := indexByID(followers, func(u *model.User) bson.ObjectID { return u.ID })
	notificationIndex := indexByID(notifications, func(n *model.Notification) bson.ObjectID { return n.ID })
	notifiedPostIndex := indexByID(notifiedPosts, func(p *model.Post) bson.ObjectID { return p.ID })

	detail = &types.UserDetail{
		ID:            user.ID.Hex(),
		Email:         user.Email,
		Username:      user.Username,
		ImageURL:      user.ImageURL,
		Followers:     make([]types.User, 0, len(user.Followers)),
		Likes:         hexIDs(user.Likes),
		Posts:         expandPosts(user.Posts, postIndex, commentIndex, authors),
		Notifications: make([]types.Notification, 0, len(user.Notifications)),
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}

	for _, ref := range user.Followers {
		if f, ok := followerIndex[ref]; ok {
			detail.Followers = append(detail.Followers, *toUser(f))
		}
	}

	for _, ref := range user.Notifications {
		n, ok := notificationIndex[ref]
		if !ok {
			continue
		}
		view := types.Notification{
			ID:         n.ID.Hex(),
			UserID:     n.UserID.Hex(),
			FromUserID: n.FromUserID.Hex(),
			PostID:     n.PostID.Hex(),
			Message:    n.Message,
			CreatedAt:  n.CreatedAt,
			UpdatedAt:  n.UpdatedAt,
		}
		if p, ok := notifiedPostIndex[n.PostID]; ok {
			view.Post = toPostSummary(p)
		}
		detail.Notifications = append(detail.Notifications, view)
	}

	span.SetAttributes(
		attribute.Int("graph.followers", len(detail.Followers)),
		attribute.Int("graph.posts", len(detail.Posts)),
		attribute.Int("graph.notifications", len(detail.Notifications)),
	)

	return detail, nil
}

// expandPosts resolves refs in order, dropping posts and comments that no
// longer exist. Authors missing from authors are left nil.
func expandPosts(
	refs []bson.ObjectID,
	posts map[bson.ObjectID]*model.Post,
	comments map[bson.ObjectID]*model.Comment,
	authors map[bson.ObjectID]*types.User,
) []types.Post {
	out := make([]types.Post, 0, len(refs))
	for _, ref := range refs {
		p, ok := posts[ref]
		if !ok {
			continue
		}

		view := types.Post{
			ID:        p.ID.Hex(),
			UserID:    p.UserID.Hex(),
			Author:    authors[p.UserID],
			Body:      p.Body,
			ImageURL:  p.ImageURL,
			Likes:     hexIDs(p.Likes),
			Comments:  make([]types.Comment, 0, len(p.Comments)),
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		}
		for _, cref := range p.Comments {
			c, ok := comments[cref]
			if !ok {
				continue
			}
			view.Comments = append(view.Comments, toComment(c, authors[c.UserID]))
		}
		out = append(out, view)
	}
	return out
}

func commentRefs(posts []*model.Post) []bson.ObjectID {
	var ids []bson.ObjectID
	for _, p := range posts {
		ids = append(ids, p.Comments...)
	}
	return ids
}

func indexByID[T any](docs []*T, id func(*T) bson.ObjectID) map[bson.ObjectID]*T {
	index := make(map[bson.ObjectID]*T, len(docs))
	for _, d := range docs {
		index[id(d)] = d
	}
	return index
}

func endSpan(span trace.Span, operation string, start time.Time, err *error) {
	graphReadDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if *err != nil {
		span.RecordError(*err)
		span.SetStatus(codes.Error, (*err).Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

package usecase

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/model"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/pkg/types"
)

func toUser(u *model.User) *types.User {
	return &types.User{
		ID:            u.ID.Hex(),
		Email:         u.Email,
		Username:      u.Username,
		ImageURL:      u.ImageURL,
		Followers:     hexIDs(u.Followers),
		Likes:         hexIDs(u.Likes),
		Posts:         hexIDs(u.Posts),
		Notifications: hexIDs(u.Notifications),
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func toPostSummary(p *model.Post) *types.PostSummary {
	return &types.PostSummary{
		ID:        p.ID.Hex(),
		UserID:    p.UserID.Hex(),
		Body:      p.Body,
		ImageURL:  p.ImageURL,
		Likes:     hexIDs(p.Likes),
		Comments:  hexIDs(p.Comments),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toComment(c *model.Comment, author *types.User) types.Comment {
	return types.Comment{
		ID:        c.ID.Hex(),
		UserID:    c.UserID.Hex(),
		PostID:    c.PostID.Hex(),
		Author:    author,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func hexIDs(ids []bson.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}

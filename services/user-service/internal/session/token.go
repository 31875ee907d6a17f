// Package session issues and verifies the bearer tokens that carry a user's
// identity between requests.
package session

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/model"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/pkg/types"
	"github.com/vitor-afonso/iron-connections-server/shared/auth"
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 6 * time.Hour

// ErrInvalidToken is returned for forged, malformed or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// TokenService signs session claims and verifies presented tokens.
type TokenService struct {
	jwtAuth *auth.JWTAuthenticator
	ttl     time.Duration
}

// NewTokenService creates a TokenService. A non-positive ttl means DefaultTTL.
func NewTokenService(jwtAuth *auth.JWTAuthenticator, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenService{jwtAuth: jwtAuth, ttl: ttl}
}

// ClaimsFor projects the fields of user that are embedded in its token.
func ClaimsFor(user *model.User) types.SessionClaims {
	return types.SessionClaims{
		UserID:        user.ID.Hex(),
		Email:         user.Email,
		Username:      user.Username,
		ImageURL:      user.ImageURL,
		Notifications: hexIDs(user.Notifications),
		Followers:     hexIDs(user.Followers),
		Posts:         hexIDs(user.Posts),
	}
}

// Issue signs claims, filling in the registered claims for a token valid for
// the configured ttl from now.
func (s *TokenService) Issue(claims types.SessionClaims) (string, error) {
	claims.RegisteredClaims = s.jwtAuth.RegisteredClaims(claims.UserID, s.ttl)

	token, err := s.jwtAuth.GenerateToken(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return token, nil
}

// Verify returns the claims embedded in token, or ErrInvalidToken.
func (s *TokenService) Verify(token string) (*types.SessionClaims, error) {
	var claims types.SessionClaims
	if err := s.jwtAuth.ValidateTokenWithClaims(token, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if _, err := bson.ObjectIDFromHex(claims.UserID); err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}

	return &claims, nil
}

func hexIDs(ids []bson.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}

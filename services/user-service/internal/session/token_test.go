package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/model"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/pkg/types"
	"github.com/vitor-afonso/iron-connections-server/shared/auth"
)

func testUser() *model.User {
	return &model.User{
		ID:            bson.NewObjectID(),
		Email:         "ada@example.com",
		Username:      "ada",
		PasswordHash:  "digest",
		ImageURL:      "https://img/ada.png",
		Followers:     []bson.ObjectID{bson.NewObjectID(), bson.NewObjectID()},
		Posts:         []bson.ObjectID{bson.NewObjectID()},
		Notifications: []bson.ObjectID{},
	}
}

func TestClaimsFor(t *testing.T) {
	u := testUser()

	claims := ClaimsFor(u)

	assert.Equal(t, u.ID.Hex(), claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "https://img/ada.png", claims.ImageURL)
	assert.Equal(t, []string{u.Followers[0].Hex(), u.Followers[1].Hex()}, claims.Followers)
	assert.Equal(t, []string{}, claims.Notifications)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	jwtAuth := auth.NewJWTAuthenticator("iron", "iron", "secret").WithClock(func() time.Time { return issuedAt })
	svc := NewTokenService(jwtAuth, 0)

	issued := ClaimsFor(testUser())
	token, err := svc.Issue(issued)
	require.NoError(t, err)

	got, err := svc.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, issued.UserID, got.UserID)
	assert.Equal(t, issued.Email, got.Email)
	assert.Equal(t, issued.Username, got.Username)
	assert.Equal(t, issued.ImageURL, got.ImageURL)
	assert.Equal(t, issued.Followers, got.Followers)
	assert.Equal(t, issued.Posts, got.Posts)
	assert.Equal(t, issued.Notifications, got.Notifications)
	assert.Equal(t, issued.UserID, got.Subject)
	assert.True(t, got.ExpiresAt.Time.Equal(issuedAt.Add(DefaultTTL)))
}

func TestVerify_ExpiresAfterWindow(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	jwtAuth := auth.NewJWTAuthenticator("iron", "iron", "secret")

	token, err := NewTokenService(jwtAuth.WithClock(func() time.Time { return issuedAt }), 0).Issue(ClaimsFor(testUser()))
	require.NoError(t, err)

	stillValid := NewTokenService(jwtAuth.WithClock(func() time.Time { return issuedAt.Add(5 * time.Hour) }), 0)
	_, err = stillValid.Verify(token)
	assert.NoError(t, err)

	expired := NewTokenService(jwtAuth.WithClock(func() time.Time { return issuedAt.Add(6*time.Hour + time.Minute) }), 0)
	_, err = expired.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_AudienceIsNotIssuer(t *testing.T) {
	svc := NewTokenService(auth.NewJWTAuthenticator("iron-web", "iron", "secret"), time.Hour)
	token, err := svc.Issue(ClaimsFor(testUser()))
	require.NoError(t, err)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "iron", got.Issuer)
	assert.Equal(t, []string{"iron-web"}, []string(got.Audience))

	issuerAsAudience := NewTokenService(auth.NewJWTAuthenticator("iron", "iron", "secret"), time.Hour)
	_, err = issuerAsAudience.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Forged(t *testing.T) {
	token, err := NewTokenService(auth.NewJWTAuthenticator("iron", "iron", "secret"), time.Hour).Issue(ClaimsFor(testUser()))
	require.NoError(t, err)

	other := NewTokenService(auth.NewJWTAuthenticator("iron", "iron", "other-secret"), time.Hour)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = other.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsNonUserSubject(t *testing.T) {
	svc := NewTokenService(auth.NewJWTAuthenticator("iron", "iron", "secret"), time.Hour)

	token, err := svc.Issue(types.SessionClaims{UserID: "not-an-id", Email: "x@y.zz"})
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

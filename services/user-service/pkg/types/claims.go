package types

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the identity snapshot embedded in a session token.
// It may go stale relative to the store; it is not refreshed after issuance.
type SessionClaims struct {
	UserID        string   `json:"_id"`
	Email         string   `json:"email"`
	Username      string   `json:"username"`
	ImageURL      string   `json:"imageUrl"`
	Notifications []string `json:"notifications"`
	Followers     []string `json:"followers"`
	Posts         []string `json:"posts"`
	jwt.RegisteredClaims
}

// AuthToken is returned by a successful login.
type AuthToken struct {
	AuthToken string `json:"authToken"`
}

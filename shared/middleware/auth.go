package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrMissingAuthorization   = errors.New("missing authorization header")
	ErrMalformedAuthorization = errors.New("invalid authorization header format")
)

type claimsKey struct{}

// VerifyFunc turns a bearer token into the caller's claims.
type VerifyFunc[C any] func(ctx context.Context, token string) (C, error)

// ErrorFunc writes the response for a request that failed authentication.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

// Authenticate requires an "Authorization: Bearer <token>" header, verifies
// the token and stores the resulting claims in the request context.
func Authenticate[C any](verify VerifyFunc[C], onError ErrorFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				onError(w, r, err)
				return
			}

			claims, err := verify(r.Context(), token)
			if err != nil {
				onError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Claims returns the claims stored by Authenticate.
func Claims[C any](ctx context.Context) (C, bool) {
	claims, ok := ctx.Value(claimsKey{}).(C)
	return claims, ok
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingAuthorization
	}

	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", ErrMalformedAuthorization
	}

	return token, nil
}

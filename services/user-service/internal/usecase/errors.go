package usecase

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/session"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("email is already registered")
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = session.ErrInvalidToken
	ErrInvalidIdentifier  = errors.New("invalid identifier")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user still exists")
)

// ValidationError lists every field that failed validation with its message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = e.Fields[name]
	}

	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// parseID decodes a 24-character hex ObjectID, failing with ErrInvalidIdentifier.
func parseID(name, value string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(value)
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("%w: %s %q", ErrInvalidIdentifier, name, value)
	}
	return id, nil
}

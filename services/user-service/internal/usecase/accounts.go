package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/model"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/repository"
	"github.com/vitor-afonso/iron-connections-server/shared/validation"
)

// PasswordHasher produces and checks password digests.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, digest string) (bool, error)
}

// RegisterParams defines the parameters for creating an account, either by
// signup or by an authenticated caller.
type RegisterParams struct {
	Email    string `validate:"required,emailaddr"`
	Password string `validate:"required,password"`
	Username string `validate:"required"`
}

// accountCreator holds the validate, check, hash and insert sequence shared by
// signup and authenticated user creation.
type accountCreator struct {
	userRepo  repository.UserRepository
	hasher    PasswordHasher
	validator *validation.Validator
}

func (a *accountCreator) create(ctx context.Context, params RegisterParams) (*model.User, error) {
	if err := validate(a.validator, params); err != nil {
		return nil, err
	}

	if _, err := a.userRepo.GetUserByEmail(ctx, params.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := a.hasher.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := a.userRepo.CreateUser(ctx, &model.User{
		Email:        params.Email,
		Username:     params.Username,
		PasswordHash: passwordHash,
	})
	if err != nil {
		// lost a race with a concurrent signup for the same email
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateEmail
		}

		return nil, err
	}

	return user, nil
}

func validate(v *validation.Validator, params any) error {
	fields, err := v.Struct(params)
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/repository"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/session"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/pkg/types"
	"github.com/vitor-afonso/iron-connections-server/shared/validation"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	Signup(ctx context.Context, params RegisterParams) (*types.SignupResult, error)
	Login(ctx context.Context, params LoginParams) (*types.AuthToken, error)
	VerifySession(ctx context.Context, token string) (*types.SessionClaims, error)
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

// dummyPassword is hashed once and verified against when the email is
// unknown, so a login for a missing account does the same work as a wrong
// password.
const dummyPassword = "iron-connections-dummy-Passw0rd"

type authUsecase struct {
	accounts *accountCreator
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   *session.TokenService
	welcome  WelcomeNotifier
	logger   *zerolog.Logger

	dummyOnce   sync.Once
	dummyDigest string
	dummyErr    error
}

// NewAuthUsecase creates an AuthUsecase. welcome may be nil.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	tokens *session.TokenService,
	validator *validation.Validator,
	welcome WelcomeNotifier,
	logger *zerolog.Logger,
) AuthUsecase {
	return &authUsecase{
		accounts: &accountCreator{userRepo: userRepo, hasher: hasher, validator: validator},
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		welcome:  welcome,
		logger:   logger,
	}
}

func (u *authUsecase) Signup(ctx context.Context, params RegisterParams) (result *types.SignupResult, err error) {
	defer func() { authAttemptsTotal.WithLabelValues("signup", resultLabel(err)).Inc() }()

	user, err := u.accounts.create(ctx, params)
	if err != nil {
		return nil, err
	}

	if u.welcome != nil {
		if err := u.welcome.NotifySignup(ctx, user); err != nil {
			u.logger.Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to send welcome email")
		}
	}

	return &types.SignupResult{
		Email:    user.Email,
		Username: user.Username,
		ID:       user.ID.Hex(),
	}, nil
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (token *types.AuthToken, err error) {
	defer func() { authAttemptsTotal.WithLabelValues("login", resultLabel(err)).Inc() }()

	if params.Email == "" || params.Password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			u.burnVerification(params.Password)
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if ok, err := u.hasher.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	signed, err := u.tokens.Issue(session.ClaimsFor(user))
	if err != nil {
		return nil, err
	}

	return &types.AuthToken{AuthToken: signed}, nil
}

func (u *authUsecase) VerifySession(_ context.Context, token string) (*types.SessionClaims, error) {
	return u.tokens.Verify(token)
}

// burnVerification runs a verification whose result is discarded.
func (u *authUsecase) burnVerification(password string) {
	u.dummyOnce.Do(func() {
		u.dummyDigest, u.dummyErr = u.hasher.HashPassword(dummyPassword)
	})
	if u.dummyErr != nil {
		u.logger.Error().Err(u.dummyErr).Msg("failed to prepare dummy digest")
		return
	}

	_, _ = u.hasher.VerifyPassword(password, u.dummyDigest)
}

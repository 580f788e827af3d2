// Package service contains the business logic layer.
//
//	Handler (HTTP)  → parses requests, writes responses
//	Service         → validates input, enforces rules, owns transactions
//	Repository      → reads/writes the database
//
// Services accept plain values and return domain errors from
// internal/apperror; they never see an *http.Request or a status code.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/holocron/internal/apperror"
	"github.com/sakif/holocron/internal/auth"
	"github.com/sakif/holocron/internal/model"
	"github.com/sakif/holocron/internal/repository"
)

const (
	MaxUsernameLength = 64
	MinPasswordLength = 6
)

// badCredentials is deliberately the same for unknown user and wrong password.
const badCredentials = "bad username or password"

var _ auth.TokenValidator = (*AuthService)(nil)

// AuthService handles registration, login and token checks.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued token.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a user with a bcrypt-hashed password.
// Used by the seeding commands; there is no public sign-up route.
func (s *AuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := model.NewUser(username, hash)
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: registering %q: %w", username, err)
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Login checks username and password and issues an access token.
//
// Unknown user and wrong password both return the same Unauthorized error,
// and both pay for one bcrypt comparison, so neither the message nor the
// response time tells an attacker which one was wrong.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	if username == "" || password == "" {
		return nil, apperror.Unauthorized(badCredentials)
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			_ = s.passwords.VerifyDummy(password)
			s.logger.Info("login failed", slog.String("reason", "unknown user"))
			return nil, apperror.Unauthorized(badCredentials)
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			// A malformed stored hash is our fault, not the caller's.
			s.logger.Error("stored password hash unusable",
				slog.Int64("userID", user.ID),
				slog.String("error", err.Error()),
			)
		}
		s.logger.Info("login failed",
			slog.String("reason", "wrong password"),
			slog.Int64("userID", user.ID),
		)
		return nil, apperror.Unauthorized(badCredentials)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.Int64("userID", user.ID))
	return &AuthResult{User: user, Token: token}, nil
}

// ValidateToken returns the user id a token was issued for. It makes
// AuthService an auth.TokenValidator for the bearer middleware.
func (s *AuthService) ValidateToken(tokenStr string) (int64, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return 0, fmt.Errorf("service/auth: %w", err)
	}
	return userID, nil
}

// TokenTTL is how long issued tokens stay valid.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/holocron/internal/model"
	"github.com/sakif/holocron/internal/repository"
)

// UserService exposes the public user listing.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// List returns every user. model.User never serializes its password hash.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/holocron/internal/apperror"
	"github.com/sakif/holocron/internal/model"
	"github.com/sakif/holocron/internal/repository"
)

// FavoriteService manages the user→planet and user→character favorites.
//
// Every operation runs in one transaction opened here and passed down to the
// repositories; nothing outlives the call.
type FavoriteService struct {
	store  repository.Transactor
	logger *slog.Logger
}

func NewFavoriteService(store repository.Transactor, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{store: store, logger: logger}
}

// Add marks target as a favorite of userID.
//
// Errors: ErrNotFound when the user or the target does not exist (including
// non-positive ids),
// ErrConflict when it is already a favorite.
func (s *FavoriteService) Add(ctx context.Context, userID int64, target model.Target) (*model.Favorite, error) {
	if !target.Valid() {
		// A typed target with id <= 0 names a row that cannot exist.
		if kind := target.Kind(); kind == model.TargetPlanet || kind == model.TargetCharacter {
			return nil, apperror.NotFound(string(kind), target.ID())
		}
		return nil, apperror.ValidationFailed(targetField(target), "a valid planet or character id is required")
	}

	fav := model.NewFavorite(userID, target)

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.GetUserByID(ctx, userID); err != nil {
			return err
		}

		switch target.Kind() {
		case model.TargetPlanet:
			p, err := tx.GetPlanetByID(ctx, target.ID())
			if err != nil {
				return err
			}
			fav.Planet = p
		case model.TargetCharacter:
			c, err := tx.GetCharacterByID(ctx, target.ID())
			if err != nil {
				return err
			}
			fav.Character = c
		}

		// The UNIQUE index decides duplicates; no SELECT-then-INSERT race.
		return tx.AddFavorite(ctx, fav)
	})
	if err != nil {
		if !isClientError(err) {
			s.logger.Error("failed to add favorite",
				slog.Int64("userID", userID),
				slog.String("kind", string(target.Kind())),
				slog.Int64("targetID", target.ID()),
				slog.String("error", err.Error()),
			)
		}
		return nil, fmt.Errorf("adding favorite: %w", err)
	}

	s.logger.Info("favorite added",
		slog.Int64("userID", userID),
		slog.String("kind", string(target.Kind())),
		slog.Int64("targetID", target.ID()),
	)
	return fav, nil
}

// Remove deletes the favorite. Removing something that is not a favorite is
// a validation error, not a not-found: the target may well exist.
func (s *FavoriteService) Remove(ctx context.Context, userID int64, target model.Target) error {
	if !target.Valid() {
		return apperror.ValidationFailed(targetField(target), "a valid planet or character id is required")
	}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		return tx.RemoveFavorite(ctx, userID, target)
	})
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ValidationFailed(targetField(target),
				fmt.Sprintf("%s %d is not a favorite", target.Kind(), target.ID()))
		}
		s.logger.Error("failed to remove favorite",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("removing favorite: %w", err)
	}

	s.logger.Info("favorite removed",
		slog.Int64("userID", userID),
		slog.String("kind", string(target.Kind())),
		slog.Int64("targetID", target.ID()),
	)
	return nil
}

// List returns the user's favorites with target details embedded.
// ErrNotFound if the user no longer exists.
func (s *FavoriteService) List(ctx context.Context, userID int64) ([]model.Favorite, error) {
	var favorites []model.Favorite

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.GetUserByID(ctx, userID); err != nil {
			return err
		}
		var err error
		favorites, err = tx.ListFavorites(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	return favorites, nil
}

func targetField(t model.Target) string {
	if t.Kind() == model.TargetCharacter {
		return "character_id"
	}
	return "planet_id"
}

// isClientError reports whether err is an expected, caller-caused failure
// that doesn't deserve an error-level log line.
func isClientError(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr)
}

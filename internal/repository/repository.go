// Package repository declares the storage contracts the service layer
// depends on. internal/repository/sqlite provides the implementation.
package repository

import (
	"context"

	"github.com/sakif/holocron/internal/model"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

type PlanetRepository interface {
	CreatePlanet(ctx context.Context, planet *model.Planet) error
	GetPlanetByID(ctx context.Context, id int64) (*model.Planet, error)
	ListPlanets(ctx context.Context) ([]model.Planet, error)
}

type CharacterRepository interface {
	CreateCharacter(ctx context.Context, character *model.Character) error
	GetCharacterByID(ctx context.Context, id int64) (*model.Character, error)
	ListCharacters(ctx context.Context) ([]model.Character, error)
}

// FavoriteRepository stores user→target links.
//
// AddFavorite returns an apperror.ErrConflict error when the (user, target)
// pair already exists; the check is a UNIQUE index, not a prior SELECT.
// RemoveFavorite returns apperror.ErrNotFound when there is nothing to delete.
type FavoriteRepository interface {
	AddFavorite(ctx context.Context, fav *model.Favorite) error
	RemoveFavorite(ctx context.Context, userID int64, target model.Target) error
	ListFavorites(ctx context.Context, userID int64) ([]model.Favorite, error)
}

// Store is every repository bound to one connection or one transaction.
type Store interface {
	UserRepository
	PlanetRepository
	CharacterRepository
	FavoriteRepository
}

// Transactor runs fn inside a single database transaction.
//
// The Store handed to fn is scoped to that transaction and must not be used
// after fn returns. If fn returns an error (or panics) the transaction is
// rolled back, otherwise it is committed.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"time"

	"github.com/sakif/holocron/internal/apperror"
	"github.com/sakif/holocron/internal/model"
	"github.com/sakif/holocron/internal/repository"
)

// fakeStore is an in-memory repository.Store + repository.Transactor.
//
// WithinTx snapshots favorites and catalog rows and restores them when fn
// fails.
type fakeStore struct {
	users      map[int64]*model.User
	planets    map[int64]*model.Planet
	characters map[int64]*model.Character
	favorites  []model.Favorite
	nextID     int64

	// non-nil simulates a storage failure
	err     error
	txCalls int
}

var (
	_ repository.Store      = (*fakeStore)(nil)
	_ repository.Transactor = (*fakeStore)(nil)
)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[int64]*model.User),
		planets:    make(map[int64]*model.Planet),
		characters: make(map[int64]*model.Character),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	f.txCalls++
	favs := append([]model.Favorite(nil), f.favorites...)
	planets := maps.Clone(f.planets)
	characters := maps.Clone(f.characters)

	if err := fn(f); err != nil {
		f.favorites = favs
		f.planets = planets
		f.characters = characters
		return err
	}
	return nil
}

func (f *fakeStore) CreateUser(_ context.Context, u *model.User) error {
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return apperror.Conflict(fmt.Sprintf("username %q is already taken", u.Username))
		}
	}
	u.ID = f.id()
	u.CreatedAt = time.Now()
	stored := *u
	f.users[u.ID] = &stored
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "user not found"}
}

func (f *fakeStore) ListUsers(_ context.Context) ([]model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []model.User{}
	for i := int64(1); i <= f.nextID; i++ {
		if u, ok := f.users[i]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeStore) CreatePlanet(_ context.Context, p *model.Planet) error {
	if f.err != nil {
		return f.err
	}
	p.ID = f.id()
	cp := *p
	f.planets[p.ID] = &cp
	return nil
}

func (f *fakeStore) GetPlanetByID(_ context.Context, id int64) (*model.Planet, error) {
	p, ok := f.planets[id]
	if !ok {
		return nil, apperror.NotFound("planet", id)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ListPlanets(_ context.Context) ([]model.Planet, error) {
	out := []model.Planet{}
	for i := int64(1); i <= f.nextID; i++ {
		if p, ok := f.planets[i]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateCharacter(_ context.Context, c *model.Character) error {
	if f.err != nil {
		return f.err
	}
	c.ID = f.id()
	cp := *c
	f.characters[c.ID] = &cp
	return nil
}

func (f *fakeStore) GetCharacterByID(_ context.Context, id int64) (*model.Character, error) {
	c, ok := f.characters[id]
	if !ok {
		return nil, apperror.NotFound("character", id)
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) ListCharacters(_ context.Context) ([]model.Character, error) {
	out := []model.Character{}
	for i := int64(1); i <= f.nextID; i++ {
		if c, ok := f.characters[i]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) AddFavorite(_ context.Context, fav *model.Favorite) error {
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.favorites {
		if existing.UserID == fav.UserID && existing.Target == fav.Target {
			return apperror.Conflict("already a favorite")
		}
	}
	fav.ID = f.id()
	f.favorites = append(f.favorites, *fav)
	return nil
}

func (f *fakeStore) RemoveFavorite(_ context.Context, userID int64, target model.Target) error {
	if f.err != nil {
		return f.err
	}
	for i, existing := range f.favorites {
		if existing.UserID == userID && existing.Target == target {
			f.favorites = append(f.favorites[:i], f.favorites[i+1:]...)
			return nil
		}
	}
	return &apperror.AppError{Err: apperror.ErrNotFound, Message: "not a favorite"}
}

func (f *fakeStore) ListFavorites(_ context.Context, userID int64) ([]model.Favorite, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Favorite{}
	for _, fav := range f.favorites {
		if fav.UserID == userID {
			out = append(out, fav)
		}
	}
	return out, nil
}

var errDatabaseDown = errors.New("database is on fire")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

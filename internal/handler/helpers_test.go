package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/holocron/internal/auth"
	"github.com/sakif/holocron/internal/handler"
	"github.com/sakif/holocron/internal/model"
	"github.com/sakif/holocron/internal/repository/sqlite"
	"github.com/sakif/holocron/internal/service"
)

// testEnv is the API router over an in-memory database.
type testEnv struct {
	router  http.Handler
	db      *sqlite.DB
	auth    *service.AuthService
	catalog *service.CatalogService
	tokens  *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens, err := auth.NewTokenService("handler-test-secret-0123456789", time.Minute)
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)

	authSvc := service.NewAuthService(db, tokens, passwords, logger)
	catalogSvc := service.NewCatalogService(db, logger)

	authH := handler.NewAuthHandler(authSvc, logger)
	userH := handler.NewUserHandler(service.NewUserService(db, logger), logger)
	catalogH := handler.NewCatalogHandler(catalogSvc, logger)
	favH := handler.NewFavoriteHandler(service.NewFavoriteService(db, logger), logger)

	r := chi.NewRouter()
	r.Post("/login", authH.HandleLogin)
	r.Get("/users", userH.HandleList)
	r.Get("/planets", catalogH.HandleListPlanets)
	r.Get("/planets/{id:[0-9]+}", catalogH.HandleGetPlanet)
	r.Get("/characters", catalogH.HandleListCharacters)
	r.Get("/characters/{id:[0-9]+}", catalogH.HandleGetCharacter)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(authSvc))
		r.Get("/users/favorites", favH.HandleList)
		r.Post("/users/{id:[0-9]+}/favorites/planets", favH.HandleAddPlanet)
		r.Post("/users/{id:[0-9]+}/favorites/characters/{cid:[0-9]+}", favH.HandleAddCharacter)
		r.Delete("/users/{id:[0-9]+}/favorites/planets/{pid:[0-9]+}", favH.HandleRemovePlanet)
		r.Delete("/users/{id:[0-9]+}/favorites/characters/{cid:[0-9]+}", favH.HandleRemoveCharacter)
	})

	return &testEnv{router: r, db: db, auth: authSvc, catalog: catalogSvc, tokens: tokens}
}

// seedCatalog inserts Tatooine and Luke Skywalker.
func (e *testEnv) seedCatalog(t *testing.T) (*model.Planet, *model.Character) {
	t.Helper()
	planet := model.NewPlanet("Tatooine", "arid", "desert", 200000)
	character := model.NewCharacter("Luke Skywalker", 172, "blond", "blue", "male")
	require.NoError(t, e.catalog.Import(context.Background(),
		[]*model.Planet{planet}, []*model.Character{character}))
	return planet, character
}

// register creates a user and returns it with a valid token.
func (e *testEnv) register(t *testing.T, username string) (*model.User, string) {
	t.Helper()
	user, err := e.auth.Register(context.Background(), username, "123456")
	require.NoError(t, err)
	token, err := e.tokens.Generate(user.ID)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

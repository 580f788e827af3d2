package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/holocron/internal/handler"
)

func TestFavoriteHandler_PlanetLifecycle(t *testing.T) {
	env := newTestEnv(t)
	planet, _ := env.seedCatalog(t)
	user, token := env.register(t, "test_user1")

	base := fmt.Sprintf("/users/%d/favorites/planets", user.ID)

	rr := env.do(t, http.MethodPost, base, token, map[string]int64{"planet_id": planet.ID})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[map[string]any](t, rr)
	assert.Equal(t, "Planet added to favorites", created["message"])

	rr = env.do(t, http.MethodGet, "/users/favorites", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	favs := decode[[]map[string]any](t, rr)
	require.Len(t, favs, 1)
	assert.Equal(t, map[string]any{"type": "planet", "id": float64(planet.ID)}, favs[0]["target"])
	require.Contains(t, favs[0], "planet")
	assert.Equal(t, "Tatooine", favs[0]["planet"].(map[string]any)["name"])
	assert.NotContains(t, favs[0], "character")

	rr = env.do(t, http.MethodPost, base, token, map[string]int64{"planet_id": planet.ID})
	assert.Equal(t, http.StatusBadRequest, rr.Code, "duplicate")
	assert.Equal(t, "conflict", decode[handler.ErrorResponse](t, rr).Error)

	rr = env.do(t, http.MethodGet, "/users/favorites", token, nil)
	assert.Len(t, decode[[]map[string]any](t, rr), 1, "duplicate must not be stored")

	rr = env.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", base, planet.ID), token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Planet removed from favorites", decode[handler.MessageResponse](t, rr).Message)

	rr = env.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", base, planet.ID), token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "second delete")

	rr = env.do(t, http.MethodGet, "/users/favorites", token, nil)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestFavoriteHandler_CharacterLifecycle(t *testing.T) {
	env := newTestEnv(t)
	_, character := env.seedCatalog(t)
	user, token := env.register(t, "test_user1")

	path := fmt.Sprintf("/users/%d/favorites/characters/%d", user.ID, character.ID)

	rr := env.do(t, http.MethodPost, path, token, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"name":"Luke Skywalker"`)

	rr = env.do(t, http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFavoriteHandler_Errors(t *testing.T) {
	env := newTestEnv(t)
	planet, character := env.seedCatalog(t)
	user, token := env.register(t, "test_user1")
	other, _ := env.register(t, "test_user2")

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       any
		wantStatus int
		wantError  string
	}{
		{
			name:       "list without token",
			method:     http.MethodGet,
			path:       "/users/favorites",
			wantStatus: http.StatusUnauthorized,
			wantError:  "unauthorized",
		},
		{
			name:       "list with garbage token",
			method:     http.MethodGet,
			path:       "/users/favorites",
			token:      "garbage",
			wantStatus: http.StatusUnauthorized,
			wantError:  "unauthorized",
		},
		{
			name:       "add without token",
			method:     http.MethodPost,
			path:       fmt.Sprintf("/users/%d/favorites/planets", user.ID),
			body:       map[string]int64{"planet_id": planet.ID},
			wantStatus: http.StatusUnauthorized,
			wantError:  "unauthorized",
		},
		{
			name:       "missing planet_id",
			method:     http.MethodPost,
			path:       fmt.Sprintf("/users/%d/favorites/planets", user.ID),
			token:      token,
			body:       map[string]string{},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:       "malformed body",
			method:     http.MethodPost,
			path:       fmt.Sprintf("/users/%d/favorites/planets", user.ID),
			token:      token,
			body:       "{planet_id: 1",
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:       "unknown planet",
			method:     http.MethodPost,
			path:       fmt.Sprintf("/users/%d/favorites/planets", user.ID),
			token:      token,
			body:       map[string]int64{"planet_id": 999},
			wantStatus: http.StatusNotFound,
			wantError:  "not_found",
		},
		{
			name:       "negative planet_id",
			method:     http.MethodPost,
			path:       fmt.Sprintf("/users/%d/favorites/planets", user.ID),
			token:      token,
			body:       map[string]int64{"planet_id": -4},
			wantStatus: http.StatusNotFound,
			wantError:  "not_found",
		},
		{
			name:       "character id zero",
			method:     http.MethodPost,
			path:       fmt.Sprintf("/users/%d/favorites/characters/0", user.ID),
			token:      token,
			wantStatus: http.StatusNotFound,
			wantError:  "not_found",
		},
		{
			name:       "unknown character",
			method:     http.MethodPost,
			path:       fmt.Sprintf("/users/%d/favorites/characters/999", user.ID),
			token:      token,
			wantStatus: http.StatusNotFound,
			wantError:  "not_found",
		},
		{
			name:       "add for another user",
			method:     http.MethodPost,
			path:       fmt.Sprintf("/users/%d/favorites/planets", other.ID),
			token:      token,
			body:       map[string]int64{"planet_id": planet.ID},
			wantStatus: http.StatusForbidden,
			wantError:  "forbidden",
		},
		{
			name:       "remove for another user",
			method:     http.MethodDelete,
			path:       fmt.Sprintf("/users/%d/favorites/characters/%d", other.ID, character.ID),
			token:      token,
			wantStatus: http.StatusForbidden,
			wantError:  "forbidden",
		},
		{
			name:       "remove never added",
			method:     http.MethodDelete,
			path:       fmt.Sprintf("/users/%d/favorites/planets/%d", user.ID, planet.ID),
			token:      token,
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			assert.Equal(t, tt.wantError, decode[handler.ErrorResponse](t, rr).Error)
		})
	}
}

func TestFavoriteHandler_OwnFavoritesOnly(t *testing.T) {
	env := newTestEnv(t)
	planet, _ := env.seedCatalog(t)
	luke, lukeToken := env.register(t, "test_user1")
	_, leiaToken := env.register(t, "test_user2")

	rr := env.do(t, http.MethodPost, fmt.Sprintf("/users/%d/favorites/planets", luke.ID), lukeToken,
		map[string]int64{"planet_id": planet.ID})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.do(t, http.MethodGet, "/users/favorites", leiaToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestFavoriteHandler_DeletedUser(t *testing.T) {
	env := newTestEnv(t)

	// A well-signed token for a user that was never created.
	token, err := env.tokens.Generate(4242)
	require.NoError(t, err)

	rr := env.do(t, http.MethodGet, "/users/favorites", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	_, err = env.db.GetUserByID(context.Background(), 4242)
	assert.Error(t, err)
}

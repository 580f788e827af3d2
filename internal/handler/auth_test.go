package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/holocron/internal/handler"
)

func TestAuthHandler_HandleLogin(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.register(t, "test_user1")

	t.Run("valid credentials", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/login", "",
			map[string]string{"username": "test_user1", "password": "123456"})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		resp := decode[handler.LoginResponse](t, rr)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, int64(60), resp.ExpiresIn)

		// The token authorizes the protected listing.
		userID, err := env.tokens.Validate(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, userID)

		rr = env.do(t, http.MethodGet, "/users/favorites", resp.AccessToken, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	unauthorized := []struct {
		name string
		body map[string]string
	}{
		{"wrong password", map[string]string{"username": "test_user1", "password": "wrong"}},
		{"unknown user", map[string]string{"username": "ghost", "password": "123456"}},
		{"missing password", map[string]string{"username": "test_user1"}},
		{"empty object", map[string]string{}},
	}
	for _, tt := range unauthorized {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/login", "", tt.body)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.NotContains(t, rr.Body.String(), "access_token")

			resp := decode[handler.ErrorResponse](t, rr)
			assert.Equal(t, "unauthorized", resp.Error)
			assert.Equal(t, "bad username or password", resp.Message)
		})
	}

	malformed := []struct {
		name string
		body string
	}{
		{"not json", "username=test_user1"},
		{"truncated", `{"username": "test_user1"`},
		{"two objects", `{"username":"a"} {"username":"b"}`},
		{"wrong types", `{"username": 7, "password": true}`},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/login", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "validation_error", decode[handler.ErrorResponse](t, rr).Error)
		})
	}

	t.Run("empty body", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/login", "", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUserHandler_HandleList(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/users", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	env.register(t, "test_user1")
	env.register(t, "test_user2")

	rr = env.do(t, http.MethodGet, "/users", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	users := decode[[]map[string]any](t, rr)
	require.Len(t, users, 2)
	assert.Equal(t, "test_user1", users[0]["username"])
	for _, u := range users {
		assert.NotContains(t, u, "password")
		assert.NotContains(t, u, "password_hash")
		assert.NotContains(t, u, "PasswordHash")
	}
	assert.NotContains(t, rr.Body.String(), "$2a$")
}

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// contextKey is an unexported type so no other package can read or shadow
// the values we store in the request context.
type contextKey string

const userIDKey contextKey = "userID"

var errNoBearer = errors.New("auth: missing bearer token")

// TokenValidator resolves a bearer token to the user id it was issued for.
// service.AuthService implements it.
type TokenValidator interface {
	ValidateToken(token string) (int64, error)
}

// ValidatorFunc adapts a function to TokenValidator.
type ValidatorFunc func(token string) (int64, error)

func (f ValidatorFunc) ValidateToken(token string) (int64, error) { return f(token) }

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads "Authorization: Bearer <jwt>", validates the token and stores the
// user id in the request context. A missing, expired or invalid token stops
// the chain with 401 and the standard JSON error body.
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a copy of ctx carrying userID. Exported for tests of
// handlers that sit behind RequireAuth.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the authenticated user's id from the request
// context. Returns (0, false) for anonymous requests.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok && id > 0
}

// extractUserID reads the bearer credential and validates it.
// The scheme is matched case-insensitively per RFC 7235.
func extractUserID(r *http.Request, tokens TokenValidator) (int64, error) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return 0, errNoBearer
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, errNoBearer
	}

	return tokens.ValidateToken(token)
}

// writeUnauthorized mirrors the handler package's error envelope. It lives
// here because auth must not import handler.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="holocron"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": "valid authentication required",
	})
}

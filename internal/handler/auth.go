package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/holocron/internal/service"
)

// AuthHandler exchanges username and password for a bearer token.
//
// There is no logout: tokens are stateless and simply expire.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
}

// HandleLogin issues an access token.
//
// HTTP: POST /api/login
// REQUEST BODY: {"username": "test_user1", "password": "123456"}
//
// A body that is not JSON is a 400. Anything wrong with the credentials
// themselves, including missing fields, is the same generic 401.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken: result.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.auth.TokenTTL().Seconds()),
	})
}

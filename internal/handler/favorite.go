package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/holocron/internal/apperror"
	"github.com/sakif/holocron/internal/auth"
	"github.com/sakif/holocron/internal/model"
	"github.com/sakif/holocron/internal/service"
)

// FavoriteHandler serves the favorites of the authenticated user.
//
// All routes sit behind auth.RequireAuth. The routes that carry a user id in
// the path only act when that id is the caller's own; a token cannot be used
// to edit somebody else's favorites.
type FavoriteHandler struct {
	favorites *service.FavoriteService
	logger    *slog.Logger
}

func NewFavoriteHandler(favorites *service.FavoriteService, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, logger: logger}
}

// FavoriteCreatedResponse is the body of a successful add.
type FavoriteCreatedResponse struct {
	Message  string          `json:"message"`
	Favorite *model.Favorite `json:"favorite"`
}

type addPlanetRequest struct {
	PlanetID int64 `json:"planet_id"`
}

// HandleList returns the caller's favorites with target details embedded.
//
// HTTP: GET /api/users/favorites
func (h *FavoriteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, apperror.Unauthorized("valid authentication required"))
		return
	}

	favorites, err := h.favorites.List(r.Context(), userID)
	if err != nil {
		// ErrNotFound here means the token outlived its user.
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, favorites)
}

// HandleAddPlanet marks a planet as a favorite.
//
// HTTP: POST /api/users/{id}/favorites/planets
// REQUEST BODY: {"planet_id": 1}
func (h *FavoriteHandler) HandleAddPlanet(w http.ResponseWriter, r *http.Request) {
	userID, err := h.pathUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req addPlanetRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.PlanetID == 0 {
		writeError(w, r, apperror.ValidationFailed("planet_id", "Missing planet_id in request body"))
		return
	}

	h.add(w, r, userID, model.PlanetTarget(req.PlanetID))
}

// HandleAddCharacter marks a character as a favorite.
//
// HTTP: POST /api/users/{id}/favorites/characters/{cid}
func (h *FavoriteHandler) HandleAddCharacter(w http.ResponseWriter, r *http.Request) {
	userID, err := h.pathUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	characterID, err := pathID(r, "cid")
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.add(w, r, userID, model.CharacterTarget(characterID))
}

// HTTP: DELETE /api/users/{id}/favorites/planets/{pid}
func (h *FavoriteHandler) HandleRemovePlanet(w http.ResponseWriter, r *http.Request) {
	userID, err := h.pathUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	planetID, err := pathID(r, "pid")
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.remove(w, r, userID, model.PlanetTarget(planetID))
}

// HTTP: DELETE /api/users/{id}/favorites/characters/{cid}
func (h *FavoriteHandler) HandleRemoveCharacter(w http.ResponseWriter, r *http.Request) {
	userID, err := h.pathUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	characterID, err := pathID(r, "cid")
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.remove(w, r, userID, model.CharacterTarget(characterID))
}

func (h *FavoriteHandler) add(w http.ResponseWriter, r *http.Request, userID int64, target model.Target) {
	fav, err := h.favorites.Add(r.Context(), userID, target)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, FavoriteCreatedResponse{
		Message:  fmt.Sprintf("%s added to favorites", kindLabel(target)),
		Favorite: fav,
	})
}

func (h *FavoriteHandler) remove(w http.ResponseWriter, r *http.Request, userID int64, target model.Target) {
	if err := h.favorites.Remove(r.Context(), userID, target); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("%s removed from favorites", kindLabel(target)),
	})
}

// pathUser returns the {id} path segment once it is known to be the caller.
func (h *FavoriteHandler) pathUser(r *http.Request) (int64, error) {
	callerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return 0, apperror.Unauthorized("valid authentication required")
	}

	pathUserID, err := pathID(r, "id")
	if err != nil {
		return 0, err
	}
	if pathUserID != callerID {
		h.logger.Warn("favorites request for another user",
			slog.Int64("userID", callerID),
			slog.Int64("pathUserID", pathUserID),
		)
		return 0, apperror.Forbidden("you can only change your own favorites")
	}
	return callerID, nil
}

func kindLabel(t model.Target) string {
	if t.Kind() == model.TargetCharacter {
		return "Character"
	}
	return "Planet"
}

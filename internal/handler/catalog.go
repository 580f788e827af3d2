package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/holocron/internal/apperror"
	"github.com/sakif/holocron/internal/service"
)

// CatalogHandler serves the read-only planet and character endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// HTTP: GET /api/planets
func (h *CatalogHandler) HandleListPlanets(w http.ResponseWriter, r *http.Request) {
	planets, err := h.catalog.ListPlanets(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, planets)
}

// HTTP: GET /api/planets/{id}
func (h *CatalogHandler) HandleGetPlanet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	planet, err := h.catalog.GetPlanet(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, planet)
}

// HTTP: GET /api/characters
func (h *CatalogHandler) HandleListCharacters(w http.ResponseWriter, r *http.Request) {
	characters, err := h.catalog.ListCharacters(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, characters)
}

// HTTP: GET /api/characters/{id}
func (h *CatalogHandler) HandleGetCharacter(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	character, err := h.catalog.GetCharacter(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, character)
}

// pathID parses an integer URL parameter. Range checks belong to the
// service; the router only matches digits, so a failure here means the
// number overflowed int64.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, apperror.ValidationFailed(name, name+" must be an integer")
	}
	return id, nil
}

package handler

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Route is one entry of the development sitemap.
type Route struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// SitemapHandler lists the registered API routes. It is only mounted when
// the server runs in development mode.
type SitemapHandler struct {
	routes []Route
}

// NewSitemapHandler walks router once and keeps the routes under prefix.
func NewSitemapHandler(router chi.Routes, prefix string) (*SitemapHandler, error) {
	var routes []Route
	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if strings.HasPrefix(route, prefix) && !strings.HasSuffix(route, "/*") {
			routes = append(routes, Route{Method: method, Path: route})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
	return &SitemapHandler{routes: routes}, nil
}

// HTTP: GET /
func (h *SitemapHandler) HandleSitemap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"routes": h.routes})
}

// Package handler contains the HTTP handlers.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the request (path params, JSON body, the caller from the context)
//  2. Call one service method
//  3. Write the response with writeJSON or writeError
//
// Handlers hold no business rules; those live in internal/service.
package handler

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"time"
)

// StaticHandler serves the single-page frontend bundle.
//
// Paths that name a file in the bundle get that file. Every other path gets
// index.html so the client-side router can take over.
type StaticHandler struct {
	files  fs.FS
	server http.Handler
	logger *slog.Logger
}

// NewStaticHandler serves the bundle rooted at dir.
func NewStaticHandler(dir string, logger *slog.Logger) *StaticHandler {
	return NewStaticHandlerFS(os.DirFS(dir), logger)
}

// NewStaticHandlerFS serves the bundle from any fs.FS; tests use fstest.MapFS.
func NewStaticHandlerFS(files fs.FS, logger *slog.Logger) *StaticHandler {
	return &StaticHandler{
		files:  files,
		server: http.FileServerFS(files),
		logger: logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// The bundle is rebuilt in place on deploy; browsers must revalidate.
	w.Header().Set("Cache-Control", "max-age=0")

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" || name == "index.html" {
		h.serveIndex(w, r)
		return
	}

	info, err := fs.Stat(h.files, name)
	if err == nil && !info.IsDir() {
		h.server.ServeHTTP(w, r)
		return
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		h.logger.Error("static file lookup failed",
			slog.String("path", name),
			slog.String("error", err.Error()),
		)
	}

	h.serveIndex(w, r)
}

func (h *StaticHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	index, err := fs.ReadFile(h.files, "index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var modTime time.Time
	if info, err := fs.Stat(h.files, "index.html"); err == nil {
		modTime = info.ModTime()
	}
	http.ServeContent(w, r, "index.html", modTime, bytes.NewReader(index))
}

// Package server is the composition root: it opens the database, builds
// services and handlers, mounts routes and runs the HTTP server.
//
// DEPENDENCY CHAIN:
//
//	sqlite.DB → implements repository.Store and repository.Transactor
//	services receive the repository interfaces
//	handlers receive the services
//
// The handler never touches the database and the service never touches HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/holocron/internal/auth"
	"github.com/sakif/holocron/internal/handler"
	"github.com/sakif/holocron/internal/middleware"
	sqliteRepo "github.com/sakif/holocron/internal/repository/sqlite"
	"github.com/sakif/holocron/internal/service"
)

// Config holds server configuration. internal/config fills it from the
// outside world; tests build it by hand.
type Config struct {
	Port            int
	DBPath          string
	JWTSecret       string
	TokenTTL        time.Duration
	StaticDir       string
	Development     bool // mounts the route sitemap at GET /
	ShutdownTimeout time.Duration
}

// Server owns the router and the database connection. The connection is
// closed when Start or Serve returns, or by Close if the server never ran.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes mounts every route.
//
// ROUTE STRUCTURE:
//
//	POST   /api/login
//	GET    /api/users
//	GET    /api/users/favorites                            (bearer)
//	POST   /api/users/{id}/favorites/planets               (bearer)
//	POST   /api/users/{id}/favorites/characters/{cid}      (bearer)
//	DELETE /api/users/{id}/favorites/planets/{pid}         (bearer)
//	DELETE /api/users/{id}/favorites/characters/{cid}      (bearer)
//	GET    /api/planets, /api/planets/{id}
//	GET    /api/characters, /api/characters/{id}
//	GET    /metrics                                        (Prometheus exposition)
//	GET    /                                               (sitemap, development only)
//	GET    /*                                              (frontend bundle)
//
// Id segments only match digits, so /api/planets/abc is a JSON 404.
func (s *Server) setupRoutes() error {
	// Each server gets its own registry so tests can build many servers.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	// Logger sits outside Recoverer so a recovered panic is logged as a 500.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(metrics.Handler)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.StripSlashes)

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	userService := service.NewUserService(s.db, s.logger)
	catalogService := service.NewCatalogService(s.db, s.logger)
	favoriteService := service.NewFavoriteService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	catalogHandler := handler.NewCatalogHandler(catalogService, s.logger)
	favoriteHandler := handler.NewFavoriteHandler(favoriteService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.NotFound(handler.NotFound)
		r.MethodNotAllowed(handler.MethodNotAllowed)

		r.Post("/login", authHandler.HandleLogin)
		r.Get("/users", userHandler.HandleList)

		r.Get("/planets", catalogHandler.HandleListPlanets)
		r.Get("/planets/{id:[0-9]+}", catalogHandler.HandleGetPlanet)
		r.Get("/characters", catalogHandler.HandleListCharacters)
		r.Get("/characters/{id:[0-9]+}", catalogHandler.HandleGetCharacter)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(authService))
			r.Use(middleware.TagUser)

			r.Get("/users/favorites", favoriteHandler.HandleList)
			r.Post("/users/{id:[0-9]+}/favorites/planets", favoriteHandler.HandleAddPlanet)
			r.Post("/users/{id:[0-9]+}/favorites/characters/{cid:[0-9]+}", favoriteHandler.HandleAddCharacter)
			r.Delete("/users/{id:[0-9]+}/favorites/planets/{pid:[0-9]+}", favoriteHandler.HandleRemovePlanet)
			r.Delete("/users/{id:[0-9]+}/favorites/characters/{cid:[0-9]+}", favoriteHandler.HandleRemoveCharacter)
		})
	})

	s.router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorLog: slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}))

	if s.config.Development {
		sitemap, err := handler.NewSitemapHandler(s.router, "/api")
		if err != nil {
			return fmt.Errorf("building sitemap: %w", err)
		}
		s.router.Get("/", sitemap.HandleSitemap)
	}

	static := handler.NewStaticHandler(s.config.StaticDir, s.logger)
	s.router.Get("/*", static.ServeHTTP)
	s.router.Head("/*", static.ServeHTTP)

	return nil
}

// Start listens on the configured port and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		s.db.Close()
		return fmt.Errorf("listening on port %d: %w", s.config.Port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully: no new connections, in-flight requests get ShutdownTimeout to
// finish, and the database is closed last.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.db.Close()

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", ln.Addr().String()),
			slog.String("database", s.config.DBPath),
			slog.Bool("development", s.config.Development),
		)
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		timeout := s.config.ShutdownTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	}
}

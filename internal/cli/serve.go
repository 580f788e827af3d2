package cli

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/holocron/internal/config"
	"github.com/sakif/holocron/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve runs the REST API under /api and the frontend bundle from the
static directory. Ctrl+C (or SIGTERM) stops it gracefully.

JWT_SECRET must be set, for example with:
  JWT_SECRET=$(openssl rand -hex 32)`,
		Example: `  holocron serve
  holocron serve --port 8080 --env development`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd)
		},
	}

	flags := cmd.Flags()
	flags.Int("port", 3001, "port to listen on")
	flags.String("static-dir", "public", "directory holding the frontend bundle")
	flags.String("env", config.EnvProduction, "production or development (development adds a route sitemap at /)")
	flags.Duration("token-ttl", 15*time.Minute, "lifetime of issued access tokens")
	flags.Duration("shutdown-timeout", 30*time.Second, "how long in-flight requests get on shutdown")

	mustBind(a.v, flags, map[string]string{
		config.KeyPort:            "port",
		config.KeyStaticDir:       "static-dir",
		config.KeyEnv:             "env",
		config.KeyTokenTTL:        "token-ttl",
		config.KeyShutdownTimeout: "shutdown-timeout",
	})
	return cmd
}

func (a *app) runServe(cmd *cobra.Command) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:            a.cfg.Port,
		DBPath:          a.cfg.DBPath,
		JWTSecret:       a.cfg.JWTSecret,
		TokenTTL:        a.cfg.TokenTTL,
		StaticDir:       a.cfg.StaticDir,
		Development:     a.cfg.IsDevelopment(),
		ShutdownTimeout: a.cfg.ShutdownTimeout,
	}, a.logger)
	if err != nil {
		return err
	}

	a.logger.Info("configuration loaded",
		slog.Int("port", a.cfg.Port),
		slog.String("env", a.cfg.Env),
		slog.Duration("tokenTTL", a.cfg.TokenTTL),
	)
	return srv.Start(cmd.Context())
}

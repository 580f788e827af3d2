// Package cli defines the holocron command tree.
//
//	holocron serve                 run the HTTP API
//	holocron seed users <count>    create test_user1..N
//	holocron seed data [--file f]  insert planets and characters
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sakif/holocron/internal/config"
	"github.com/sakif/holocron/internal/logging"
)

// app is the state shared by every command of one invocation.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
}

// NewRootCommand builds the command tree. Each call gets its own viper
// instance, so tests can build and run as many trees as they like.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "holocron",
		Short: "Star Wars planets, characters and favorites API",
		Long: `Holocron serves Star Wars reference data (planets and characters)
and lets authenticated users keep a list of favorites.

Configuration is read from holocron.yaml, .env files, environment
variables (PORT, DB_PATH, JWT_SECRET, ...) and flags, in increasing
order of precedence.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is ./holocron.yaml or $HOME/holocron.yaml)")
	flags.String("db-path", "data/holocron.db", "SQLite database file")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", logging.FormatText, "log format: text or json")

	mustBind(a.v, flags, map[string]string{
		config.KeyDBPath:    "db-path",
		config.KeyLogLevel:  "log-level",
		config.KeyLogFormat: "log-format",
	})

	root.AddCommand(newServeCommand(a), newSeedCommand(a))
	return root
}

// Execute runs the command tree with a context that is cancelled on
// SIGINT or SIGTERM, and exits non-zero on failure.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}

// setup loads configuration and installs the logger before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}

	logger, err := logging.Setup(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// mustBind binds flag names to viper keys. A missing flag is a programming
// error, hence the panic.
func mustBind(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag --%s: %v", name, err))
		}
	}
}

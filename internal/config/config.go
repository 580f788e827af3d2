// Package config loads the server configuration.
//
// Sources, lowest precedence first:
//
//  1. built-in defaults
//  2. holocron.yaml in the working directory or $HOME (or --config)
//  3. .env and .env.local, loaded into the environment by godotenv
//  4. environment variables (PORT, DB_PATH, JWT_SECRET, ...)
//  5. command-line flags bound by internal/cli
//
// godotenv never overrides a variable that is already set, so a real
// environment variable beats the same key in .env.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sakif/holocron/internal/logging"
)

// Keys, as used in the YAML file. The environment variable is the upper-case
// form (db_path → DB_PATH).
const (
	KeyPort            = "port"
	KeyDBPath          = "db_path"
	KeyJWTSecret       = "jwt_secret"
	KeyTokenTTL        = "token_ttl"
	KeyStaticDir       = "static_dir"
	KeyEnv             = "env"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
	KeyShutdownTimeout = "shutdown_timeout"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	// MinJWTSecretLength matches what auth.NewTokenService accepts.
	MinJWTSecretLength = 16
)

// EnvFiles are loaded in order; earlier files win because godotenv does not
// overwrite variables that are already set.
var EnvFiles = []string{".env.local", ".env"}

type Config struct {
	Port            int
	DBPath          string
	JWTSecret       string
	TokenTTL        time.Duration
	StaticDir       string
	Env             string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// IsDevelopment reports whether development-only routes should be mounted.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, 3001)
	v.SetDefault(KeyDBPath, "data/holocron.db")
	v.SetDefault(KeyJWTSecret, "")
	v.SetDefault(KeyTokenTTL, 15*time.Minute)
	v.SetDefault(KeyStaticDir, "public")
	v.SetDefault(KeyEnv, EnvProduction)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, logging.FormatText)
	v.SetDefault(KeyShutdownTimeout, 30*time.Second)
}

// Load reads every source into v and returns the result. configFile may be
// empty, in which case holocron.yaml is looked up and its absence is fine.
// Load does not validate; call Validate before using the result.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if err := loadEnvFiles(EnvFiles); err != nil {
		return nil, err
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("holocron")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: reading holocron.yaml: %w", err)
			}
		}
	}

	return &Config{
		Port:            v.GetInt(KeyPort),
		DBPath:          v.GetString(KeyDBPath),
		JWTSecret:       v.GetString(KeyJWTSecret),
		TokenTTL:        v.GetDuration(KeyTokenTTL),
		StaticDir:       v.GetString(KeyStaticDir),
		Env:             strings.ToLower(v.GetString(KeyEnv)),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFormat:       strings.ToLower(v.GetString(KeyLogFormat)),
		ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
	}, nil
}

func loadEnvFiles(files []string) error {
	for _, name := range files {
		err := godotenv.Load(name)
		if err == nil || errors.Is(err, os.ErrNotExist) {
			continue
		}
		return fmt.Errorf("config: loading %s: %w", name, err)
	}
	return nil
}

// Validate reports every invalid value at once. It checks everything the
// HTTP server needs.
func (c *Config) Validate() error {
	errs := c.commonErrors()

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("%s must be between 1 and 65535, got %d", KeyPort, c.Port))
	}
	switch {
	case c.JWTSecret == "":
		errs = append(errs, fmt.Errorf("%s is required (try: openssl rand -hex 32)", KeyJWTSecret))
	case len(c.JWTSecret) < MinJWTSecretLength:
		errs = append(errs, fmt.Errorf("%s must be at least %d characters", KeyJWTSecret, MinJWTSecretLength))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", KeyTokenTTL, c.TokenTTL))
	}
	if c.Env != EnvProduction && c.Env != EnvDevelopment {
		errs = append(errs, fmt.Errorf("%s must be %s or %s, got %q", KeyEnv, EnvProduction, EnvDevelopment, c.Env))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", KeyShutdownTimeout, c.ShutdownTimeout))
	}

	return joinInvalid(errs)
}

// ValidateStorage checks only what the offline commands (seeding) need:
// the database path and logging. No secret is required to seed.
func (c *Config) ValidateStorage() error {
	return joinInvalid(c.commonErrors())
}

func (c *Config) commonErrors() []error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, fmt.Errorf("%s is required", KeyDBPath))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", KeyLogLevel, err))
	}
	if c.LogFormat != logging.FormatText && c.LogFormat != logging.FormatJSON {
		errs = append(errs, fmt.Errorf("%s must be %s or %s, got %q", KeyLogFormat, logging.FormatText, logging.FormatJSON, c.LogFormat))
	}
	return errs
}

func joinInvalid(errs []error) error {
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid configuration:\n%w", err)
	}
	return nil
}

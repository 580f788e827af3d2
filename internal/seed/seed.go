// Package seed fills a fresh database with test users and reference data.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/sakif/holocron/internal/model"
	"github.com/sakif/holocron/internal/service"
)

// TestPassword is the password of every user created by Users.
const TestPassword = "123456"

//go:embed fixtures.yaml
var defaultFixtures []byte

// Fixtures is the reference data file format.
type Fixtures struct {
	Planets    []*model.Planet    `yaml:"planets"`
	Characters []*model.Character `yaml:"characters"`
}

// DefaultFixtures returns the built-in planets and characters.
func DefaultFixtures() (*Fixtures, error) {
	return LoadFixtures(bytes.NewReader(defaultFixtures))
}

// LoadFixtures decodes a fixtures document. Unknown keys are rejected so a
// typo like "hair_colour" does not silently become an empty field.
func LoadFixtures(r io.Reader) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.NewDecoder(r, yaml.DisallowUnknownField()).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("seed: decoding fixtures: %w", err)
	}
	return &f, nil
}

// LoadFixturesFile reads a fixtures document from disk.
func LoadFixturesFile(path string) (*Fixtures, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	defer file.Close()
	return LoadFixtures(file)
}

// Seeder writes through the services, so seeded rows pass the same
// validation and password hashing as everything else.
type Seeder struct {
	auth    *service.AuthService
	catalog *service.CatalogService
	logger  *slog.Logger
}

func New(auth *service.AuthService, catalog *service.CatalogService, logger *slog.Logger) *Seeder {
	return &Seeder{auth: auth, catalog: catalog, logger: logger}
}

// Users creates test_user1 … test_user<count>, all with TestPassword.
//
// A user that cannot be created (typically because it already exists) is
// logged and skipped; the rest are still attempted. Users returns how many
// were created. Only a cancelled context stops it early.
func (s *Seeder) Users(ctx context.Context, count int) (int, error) {
	if count < 1 {
		return 0, fmt.Errorf("seed: user count must be at least 1, got %d", count)
	}

	created := 0
	for i := 1; i <= count; i++ {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		username := fmt.Sprintf("test_user%d", i)
		user, err := s.auth.Register(ctx, username, TestPassword)
		if err != nil {
			s.logger.Warn("skipping test user",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
			continue
		}

		s.logger.Info("test user created",
			slog.Int64("userID", user.ID),
			slog.String("username", user.Username),
		)
		created++
	}
	return created, nil
}

// Data inserts every planet and character in f in a single transaction.
func (s *Seeder) Data(ctx context.Context, f *Fixtures) error {
	if len(f.Planets) == 0 && len(f.Characters) == 0 {
		return errors.New("seed: fixtures contain no planets and no characters")
	}
	return s.catalog.Import(ctx, f.Planets, f.Characters)
}

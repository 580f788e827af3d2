package cli

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sakif/holocron/internal/auth"
	sqliteRepo "github.com/sakif/holocron/internal/repository/sqlite"
	"github.com/sakif/holocron/internal/seed"
	"github.com/sakif/holocron/internal/service"
)

func newSeedCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with test data",
	}
	cmd.AddCommand(newSeedUsersCommand(a), newSeedDataCommand(a))
	return cmd
}

func newSeedUsersCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "users <count>",
		Short: "Create test_user1..N with password " + seed.TestPassword,
		Long: `Create <count> users named test_user1, test_user2, ... all with the
password "` + seed.TestPassword + `". Users that already exist are skipped.`,
		Example: "  holocron seed users 5",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[0])
			if err != nil || count < 1 {
				return fmt.Errorf("count must be a positive integer, got %q", args[0])
			}

			return a.withSeeder(func(s *seed.Seeder) error {
				created, err := s.Users(cmd.Context(), count)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %d of %d test users.\n", created, count)
				return nil
			})
		},
	}
}

func newSeedDataCommand(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "data",
		Short: "Insert planets and characters",
		Long: `Insert reference planets and characters in a single transaction.
Without --file the built-in set is used (Tatooine, Alderaan, Yavin IV;
Luke Skywalker, Darth Vader, Leia Organa).`,
		Example: `  holocron seed data
  holocron seed data --file more-planets.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fixtures, err := loadFixtures(file)
			if err != nil {
				return err
			}

			return a.withSeeder(func(s *seed.Seeder) error {
				if err := s.Data(cmd.Context(), fixtures); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d planets and %d characters.\n",
					len(fixtures.Planets), len(fixtures.Characters))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML fixtures file (default: built-in data)")
	return cmd
}

func loadFixtures(file string) (*seed.Fixtures, error) {
	if file == "" {
		return seed.DefaultFixtures()
	}
	return seed.LoadFixturesFile(file)
}

// withSeeder opens the database, runs fn and closes the database again.
func (a *app) withSeeder(fn func(s *seed.Seeder) error) error {
	if err := a.cfg.ValidateStorage(); err != nil {
		return err
	}

	db, err := sqliteRepo.New(a.cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	// Seeding never issues tokens, so the auth service gets no TokenService.
	authService := service.NewAuthService(db, nil, auth.NewPasswordService(), a.logger)
	catalogService := service.NewCatalogService(db, a.logger)

	a.logger.Debug("seeding", slog.String("database", a.cfg.DBPath))
	return fn(seed.New(authService, catalogService, a.logger))
}

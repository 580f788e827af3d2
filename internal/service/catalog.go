package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/holocron/internal/apperror"
	"github.com/sakif/holocron/internal/model"
	"github.com/sakif/holocron/internal/repository"
)

// CatalogStore is what CatalogService needs from storage.
type CatalogStore interface {
	repository.PlanetRepository
	repository.CharacterRepository
	repository.Transactor
}

// CatalogService serves the planet and character reference data.
//
// Reads are open to everyone. Writes only happen through the seeding
// commands; no HTTP route creates or changes reference data.
type CatalogService struct {
	store  CatalogStore
	logger *slog.Logger
}

func NewCatalogService(store CatalogStore, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: store, logger: logger}
}

func (s *CatalogService) ListPlanets(ctx context.Context) ([]model.Planet, error) {
	planets, err := s.store.ListPlanets(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing planets: %w", err)
	}
	return planets, nil
}

// GetPlanet returns apperror.ErrNotFound for an unknown id.
func (s *CatalogService) GetPlanet(ctx context.Context, id int64) (*model.Planet, error) {
	if id <= 0 {
		return nil, apperror.NotFound("planet", id)
	}
	return s.store.GetPlanetByID(ctx, id)
}

func (s *CatalogService) ListCharacters(ctx context.Context) ([]model.Character, error) {
	characters, err := s.store.ListCharacters(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	return characters, nil
}

// GetCharacter returns apperror.ErrNotFound for an unknown id.
func (s *CatalogService) GetCharacter(ctx context.Context, id int64) (*model.Character, error) {
	if id <= 0 {
		return nil, apperror.NotFound("character", id)
	}
	return s.store.GetCharacterByID(ctx, id)
}

// Import inserts planets and characters in one transaction: either all of
// them land or none do.
func (s *CatalogService) Import(ctx context.Context, planets []*model.Planet, characters []*model.Character) error {
	for i, p := range planets {
		if err := validatePlanet(p); err != nil {
			return fmt.Errorf("planet #%d: %w", i+1, err)
		}
	}
	for i, c := range characters {
		if err := validateCharacter(c); err != nil {
			return fmt.Errorf("character #%d: %w", i+1, err)
		}
	}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		for _, p := range planets {
			if err := tx.CreatePlanet(ctx, p); err != nil {
				return err
			}
		}
		for _, c := range characters {
			if err := tx.CreateCharacter(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("catalog import failed", slog.String("error", err.Error()))
		return fmt.Errorf("importing catalog: %w", err)
	}

	s.logger.Info("catalog imported",
		slog.Int("planets", len(planets)),
		slog.Int("characters", len(characters)),
	)
	return nil
}

func validatePlanet(p *model.Planet) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return apperror.ValidationFailed("name", "planet name is required")
	}
	if p.Population < 0 {
		return apperror.ValidationFailed("population", "population cannot be negative")
	}
	return nil
}

func validateCharacter(c *model.Character) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperror.ValidationFailed("name", "character name is required")
	}
	if c.Height < 0 {
		return apperror.ValidationFailed("height", "height cannot be negative")
	}
	return nil
}

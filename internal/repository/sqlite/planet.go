package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/holocron/internal/apperror"
	"github.com/sakif/holocron/internal/model"
)

const planetColumns = `id, name, climate, terrain, population`

// CreatePlanet inserts planet and fills in its ID.
func (db *DB) CreatePlanet(ctx context.Context, planet *model.Planet) error {
	res, err := db.q.ExecContext(ctx,
		`INSERT INTO planets (name, climate, terrain, population) VALUES (?, ?, ?, ?)`,
		planet.Name,
		planet.Climate,
		planet.Terrain,
		planet.Population,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting planet %q: %w", planet.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading planet id: %w", err)
	}
	planet.ID = id
	return nil
}

// GetPlanetByID returns apperror.ErrNotFound if no planet has that id.
func (db *DB) GetPlanetByID(ctx context.Context, id int64) (*model.Planet, error) {
	var p model.Planet
	err := db.q.QueryRowContext(ctx,
		`SELECT `+planetColumns+` FROM planets WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Climate, &p.Terrain, &p.Population)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("planet", id)
		}
		return nil, fmt.Errorf("sqlite: getting planet %d: %w", id, err)
	}
	return &p, nil
}

// ListPlanets returns every planet ordered by id.
func (db *DB) ListPlanets(ctx context.Context) ([]model.Planet, error) {
	rows, err := db.q.QueryContext(ctx,
		`SELECT `+planetColumns+` FROM planets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing planets: %w", err)
	}
	defer rows.Close()

	planets := []model.Planet{}
	for rows.Next() {
		var p model.Planet
		if err := rows.Scan(&p.ID, &p.Name, &p.Climate, &p.Terrain, &p.Population); err != nil {
			return nil, fmt.Errorf("sqlite: scanning planet row: %w", err)
		}
		planets = append(planets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating planets: %w", err)
	}
	return planets, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/holocron/internal/apperror"
	"github.com/sakif/holocron/internal/model"
)

// targetColumns splits a Target into the (planet_id, character_id) pair
// stored in the favorites table. Exactly one of the two is non-NULL.
func targetColumns(t model.Target) (planetID, characterID sql.NullInt64) {
	switch t.Kind() {
	case model.TargetPlanet:
		planetID = sql.NullInt64{Int64: t.ID(), Valid: true}
	case model.TargetCharacter:
		characterID = sql.NullInt64{Int64: t.ID(), Valid: true}
	}
	return planetID, characterID
}

// AddFavorite inserts fav and fills in its ID and CreatedAt.
//
// Duplicates are rejected by the partial UNIQUE indexes created in migrate;
// the resulting constraint error is translated to apperror.ErrConflict.
func (db *DB) AddFavorite(ctx context.Context, fav *model.Favorite) error {
	if !fav.Target.Valid() {
		return apperror.ValidationFailed("target", "favorite must reference a planet or a character")
	}

	planetID, characterID := targetColumns(fav.Target)
	fav.CreatedAt = time.Now().UTC()

	res, err := db.q.ExecContext(ctx,
		`INSERT INTO favorites (user_id, planet_id, character_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		fav.UserID,
		planetID,
		characterID,
		fav.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("%s %d is already a favorite",
				fav.Target.Kind(), fav.Target.ID()))
		}
		return fmt.Errorf("sqlite: inserting favorite (user=%d %s=%d): %w",
			fav.UserID, fav.Target.Kind(), fav.Target.ID(), err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading favorite id: %w", err)
	}
	fav.ID = id
	return nil
}

// RemoveFavorite deletes the (userID, target) favorite. It returns
// apperror.ErrNotFound if there was no such row.
func (db *DB) RemoveFavorite(ctx context.Context, userID int64, target model.Target) error {
	if !target.Valid() {
		return apperror.ValidationFailed("target", "favorite must reference a planet or a character")
	}

	column := "planet_id"
	if target.Kind() == model.TargetCharacter {
		column = "character_id"
	}

	// column comes from the switch above, never from input.
	res, err := db.q.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND `+column+` = ?`,
		userID, target.ID(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting favorite (user=%d %s=%d): %w",
			userID, target.Kind(), target.ID(), err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return &apperror.AppError{
			Err:     apperror.ErrNotFound,
			Message: fmt.Sprintf("%s %d is not a favorite", target.Kind(), target.ID()),
		}
	}
	return nil
}

// ListFavorites returns userID's favorites ordered by id, each with the
// target's descriptive fields filled in.
func (db *DB) ListFavorites(ctx context.Context, userID int64) ([]model.Favorite, error) {
	rows, err := db.q.QueryContext(ctx,
		`SELECT f.id, f.user_id, f.planet_id, f.character_id, f.created_at,
		        p.name, p.climate, p.terrain, p.population,
		        c.name, c.height, c.hair_color, c.eye_color, c.gender
		 FROM favorites f
		 LEFT JOIN planets p    ON p.id = f.planet_id
		 LEFT JOIN characters c ON c.id = f.character_id
		 WHERE f.user_id = ?
		 ORDER BY f.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing favorites for user %d: %w", userID, err)
	}
	defer rows.Close()

	favorites := []model.Favorite{}
	for rows.Next() {
		var (
			f                     model.Favorite
			planetID, characterID sql.NullInt64
			pName, pClimate       sql.NullString
			pTerrain              sql.NullString
			pPopulation           sql.NullInt64
			cName, cHair, cEye    sql.NullString
			cGender               sql.NullString
			cHeight               sql.NullInt64
		)
		if err := rows.Scan(
			&f.ID, &f.UserID, &planetID, &characterID, &f.CreatedAt,
			&pName, &pClimate, &pTerrain, &pPopulation,
			&cName, &cHeight, &cHair, &cEye, &cGender,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning favorite row: %w", err)
		}

		switch {
		case planetID.Valid:
			f.Target = model.PlanetTarget(planetID.Int64)
			f.Planet = &model.Planet{
				ID:         planetID.Int64,
				Name:       pName.String,
				Climate:    pClimate.String,
				Terrain:    pTerrain.String,
				Population: pPopulation.Int64,
			}
		case characterID.Valid:
			f.Target = model.CharacterTarget(characterID.Int64)
			f.Character = &model.Character{
				ID:        characterID.Int64,
				Name:      cName.String,
				Height:    int(cHeight.Int64),
				HairColor: cHair.String,
				EyeColor:  cEye.String,
				Gender:    cGender.String,
			}
		default:
			// The CHECK constraint makes this unreachable.
			return nil, fmt.Errorf("sqlite: favorite %d has no target", f.ID)
		}

		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating favorites: %w", err)
	}
	return favorites, nil
}

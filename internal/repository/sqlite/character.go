package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/holocron/internal/apperror"
	"github.com/sakif/holocron/internal/model"
)

const characterColumns = `id, name, height, hair_color, eye_color, gender`

// CreateCharacter inserts character and fills in its ID.
func (db *DB) CreateCharacter(ctx context.Context, character *model.Character) error {
	res, err := db.q.ExecContext(ctx,
		`INSERT INTO characters (name, height, hair_color, eye_color, gender) VALUES (?, ?, ?, ?, ?)`,
		character.Name,
		character.Height,
		character.HairColor,
		character.EyeColor,
		character.Gender,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting character %q: %w", character.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading character id: %w", err)
	}
	character.ID = id
	return nil
}

// GetCharacterByID returns apperror.ErrNotFound if no character has that id.
func (db *DB) GetCharacterByID(ctx context.Context, id int64) (*model.Character, error) {
	c, err := scanCharacter(db.q.QueryRowContext(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("character", id)
		}
		return nil, fmt.Errorf("sqlite: getting character %d: %w", id, err)
	}
	return c, nil
}

// ListCharacters returns every character ordered by id.
func (db *DB) ListCharacters(ctx context.Context) ([]model.Character, error) {
	rows, err := db.q.QueryContext(ctx,
		`SELECT `+characterColumns+` FROM characters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing characters: %w", err)
	}
	defer rows.Close()

	characters := []model.Character{}
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning character row: %w", err)
		}
		characters = append(characters, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating characters: %w", err)
	}
	return characters, nil
}

func scanCharacter(s rowScanner) (*model.Character, error) {
	var c model.Character
	if err := s.Scan(&c.ID, &c.Name, &c.Height, &c.HairColor, &c.EyeColor, &c.Gender); err != nil {
		return nil, err
	}
	return &c, nil
}

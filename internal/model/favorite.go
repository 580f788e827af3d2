package model

import (
	"encoding/json"
	"time"
)

// TargetKind names the kind of entity a favorite points at.
type TargetKind string

const (
	TargetPlanet    TargetKind = "planet"
	TargetCharacter TargetKind = "character"
)

// Target is what a favorite points at: exactly one planet or exactly one
// character.
//
// The fields are unexported so the only way to build a Target outside this
// package is PlanetTarget or CharacterTarget. A zero Target is invalid and
// every layer that accepts one checks Valid first.
type Target struct {
	kind TargetKind
	id   int64
}

// PlanetTarget returns a Target referencing the planet with the given id.
func PlanetTarget(id int64) Target {
	return Target{kind: TargetPlanet, id: id}
}

// CharacterTarget returns a Target referencing the character with the given id.
func CharacterTarget(id int64) Target {
	return Target{kind: TargetCharacter, id: id}
}

func (t Target) Kind() TargetKind { return t.kind }
func (t Target) ID() int64        { return t.id }

// Valid reports whether t was built by one of the constructors with a
// positive id.
func (t Target) Valid() bool {
	return (t.kind == TargetPlanet || t.kind == TargetCharacter) && t.id > 0
}

// MarshalJSON renders a Target as {"type":"planet","id":1}.
func (t Target) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type TargetKind `json:"type"`
		ID   int64      `json:"id"`
	}{t.kind, t.id})
}

// Favorite links a user to one planet or one character.
//
// When loaded through a listing, exactly one of Planet or Character is set to
// the target's descriptive fields so callers don't need follow-up lookups.
type Favorite struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Target    Target     `json:"target"`
	Planet    *Planet    `json:"planet,omitempty"`
	Character *Character `json:"character,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewFavorite builds a Favorite ready for insertion.
func NewFavorite(userID int64, target Target) *Favorite {
	return &Favorite{
		UserID: userID,
		Target: target,
	}
}

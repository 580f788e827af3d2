package model

// Character is read-only reference data loaded by the seeding commands.
// Height is in centimetres.
type Character struct {
	ID        int64  `json:"id"         yaml:"-"`
	Name      string `json:"name"       yaml:"name"`
	Height    int    `json:"height"     yaml:"height"`
	HairColor string `json:"hair_color" yaml:"hair_color"`
	EyeColor  string `json:"eye_color"  yaml:"eye_color"`
	Gender    string `json:"gender"     yaml:"gender"`
}

// NewCharacter builds a Character ready for insertion.
func NewCharacter(name string, height int, hairColor, eyeColor, gender string) *Character {
	return &Character{
		Name:      name,
		Height:    height,
		HairColor: hairColor,
		EyeColor:  eyeColor,
		Gender:    gender,
	}
}

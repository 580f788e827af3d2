package model

// Planet is read-only reference data loaded by the seeding commands.
type Planet struct {
	ID         int64  `json:"id"          yaml:"-"`
	Name       string `json:"name"        yaml:"name"`
	Climate    string `json:"climate"     yaml:"climate"`
	Terrain    string `json:"terrain"     yaml:"terrain"`
	Population int64  `json:"population"  yaml:"population"`
}

// NewPlanet builds a Planet ready for insertion.
func NewPlanet(name, climate, terrain string, population int64) *Planet {
	return &Planet{
		Name:       name,
		Climate:    climate,
		Terrain:    terrain,
		Population: population,
	}
}

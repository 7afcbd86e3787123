package models

// Subject is offered at a single curriculum level.
type Subject struct {
	ID       string  `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	LevelID  string  `db:"level_id" json:"level_id"`
	Color    *string `db:"color" json:"color,omitempty"`
	Position int     `db:"position" json:"position"`
}

package models

import "github.com/lib/pq"

// Level is a curriculum level (e.g. Lower Primary) grouping grades and subjects.
type Level struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	CurriculumID string `db:"curriculum_id" json:"curriculum_id"`
	Position     int    `db:"position" json:"position"`
}

// Grade is a class year inside a level. StreamIDs keeps the configured stream order.
type Grade struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	LevelID   string         `db:"level_id" json:"level_id"`
	StreamIDs pq.StringArray `db:"stream_ids" json:"stream_ids"`
}

// Stream is a parallel section of a grade (e.g. "7 East").
type Stream struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	GradeID  string `db:"grade_id" json:"grade_id"`
	Position int    `db:"position" json:"position"`
}

// GradeSummary is the picker-facing projection of a grade.
type GradeSummary struct {
	Grade
	Abbreviation string `json:"abbreviation"`
	Rank         int    `json:"rank"`
}

package dto

import "time"

// CreateTermRequest registers an academic term.
type CreateTermRequest struct {
	Name         string    `json:"name" validate:"required,max=120"`
	AcademicYear string    `json:"academic_year" validate:"required,max=20"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	IsActive     bool      `json:"is_active"`
}

// ConfigureLevelsRequest replaces the curriculum levels offered by the school.
type ConfigureLevelsRequest struct {
	CurriculumID string        `json:"curriculum_id" validate:"required,entity_id"`
	Levels       []LevelConfig `json:"levels" validate:"required,min=1,dive"`
}

// LevelConfig describes one curriculum level with its grades and subjects.
type LevelConfig struct {
	Name     string          `json:"name" validate:"required,max=120"`
	Grades   []GradeConfig   `json:"grades" validate:"required,min=1,dive"`
	Subjects []SubjectConfig `json:"subjects" validate:"dive"`
}

// GradeConfig names a grade and its streams.
type GradeConfig struct {
	Name    string   `json:"name" validate:"required,max=60"`
	Streams []string `json:"streams" validate:"dive,required,max=60"`
}

// SubjectConfig names a subject offered at a level.
type SubjectConfig struct {
	Name  string  `json:"name" validate:"required,max=120"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}

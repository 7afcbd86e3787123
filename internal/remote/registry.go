package remote

import (
	"context"

	"github.com/lib/pq"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const (
	levelsQuery   = `query Levels { levels { id name curriculumId position } }`
	gradesQuery   = `query Grades { grades { id name levelId streamIds } }`
	streamsQuery  = `query Streams { streams { id name gradeId position } }`
	subjectsQuery = `query Subjects { subjects { id name levelId color position } }`
	teachersQuery = `query Teachers { teachers { id name gradeLevels gradeIds } }`
)

type levelNode struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CurriculumID string `json:"curriculumId"`
	Position     int    `json:"position"`
}

type gradeNode struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	LevelID   string   `json:"levelId"`
	StreamIDs []string `json:"streamIds"`
}

type streamNode struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	GradeID  string `json:"gradeId"`
	Position int    `json:"position"`
}

type subjectNode struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	LevelID  string  `json:"levelId"`
	Color    *string `json:"color"`
	Position int     `json:"position"`
}

type teacherNode struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	GradeLevels []string `json:"gradeLevels"`
	GradeIDs    []string `json:"gradeIds"`
}

// ListLevels loads curriculum levels.
func (c *Client) ListLevels(ctx context.Context) ([]models.Level, error) {
	var data struct {
		Levels []levelNode `json:"levels"`
	}
	if err := c.graphql(ctx, "levels", levelsQuery, nil, &data); err != nil {
		return nil, err
	}
	levels := make([]models.Level, 0, len(data.Levels))
	for _, n := range data.Levels {
		levels = append(levels, models.Level{ID: n.ID, Name: n.Name, CurriculumID: n.CurriculumID, Position: n.Position})
	}
	return levels, nil
}

// ListGrades loads grades with their ordered stream ids.
func (c *Client) ListGrades(ctx context.Context) ([]models.Grade, error) {
	var data struct {
		Grades []gradeNode `json:"grades"`
	}
	if err := c.graphql(ctx, "grades", gradesQuery, nil, &data); err != nil {
		return nil, err
	}
	grades := make([]models.Grade, 0, len(data.Grades))
	for _, n := range data.Grades {
		grades = append(grades, models.Grade{ID: n.ID, Name: n.Name, LevelID: n.LevelID, StreamIDs: pq.StringArray(n.StreamIDs)})
	}
	return grades, nil
}

// ListStreams loads every stream.
func (c *Client) ListStreams(ctx context.Context) ([]models.Stream, error) {
	var data struct {
		Streams []streamNode `json:"streams"`
	}
	if err := c.graphql(ctx, "streams", streamsQuery, nil, &data); err != nil {
		return nil, err
	}
	streams := make([]models.Stream, 0, len(data.Streams))
	for _, n := range data.Streams {
		streams = append(streams, models.Stream{ID: n.ID, Name: n.Name, GradeID: n.GradeID, Position: n.Position})
	}
	return streams, nil
}

// ListSubjects loads subjects.
func (c *Client) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	var data struct {
		Subjects []subjectNode `json:"subjects"`
	}
	if err := c.graphql(ctx, "subjects", subjectsQuery, nil, &data); err != nil {
		return nil, err
	}
	subjects := make([]models.Subject, 0, len(data.Subjects))
	for _, n := range data.Subjects {
		subjects = append(subjects, models.Subject{ID: n.ID, Name: n.Name, LevelID: n.LevelID, Color: n.Color, Position: n.Position})
	}
	return subjects, nil
}

// ListTeachers loads teachers with legacy grade names and grade ids.
func (c *Client) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	var data struct {
		Teachers []teacherNode `json:"teachers"`
	}
	if err := c.graphql(ctx, "teachers", teachersQuery, nil, &data); err != nil {
		return nil, err
	}
	teachers := make([]models.Teacher, 0, len(data.Teachers))
	for _, n := range data.Teachers {
		teachers = append(teachers, models.Teacher{
			ID:          n.ID,
			Name:        n.Name,
			GradeLevels: pq.StringArray(n.GradeLevels),
			GradeIDs:    pq.StringArray(n.GradeIDs),
		})
	}
	return teachers, nil
}

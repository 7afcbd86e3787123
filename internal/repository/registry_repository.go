package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// RegistryRepository reads the school configuration used to validate lessons.
type RegistryRepository struct {
	db *sqlx.DB
}

// NewRegistryRepository creates a registry repository.
func NewRegistryRepository(db *sqlx.DB) *RegistryRepository {
	return &RegistryRepository{db: db}
}

// ListLevels returns curriculum levels in configured order.
func (r *RegistryRepository) ListLevels(ctx context.Context) ([]models.Level, error) {
	const query = `SELECT id, name, curriculum_id, position FROM levels ORDER BY position ASC, name ASC`
	var levels []models.Level
	if err := r.db.SelectContext(ctx, &levels, query); err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	return levels, nil
}

// ListGrades returns grades with their stream ids in stream order.
func (r *RegistryRepository) ListGrades(ctx context.Context) ([]models.Grade, error) {
	const query = `SELECT g.id, g.name, g.level_id,
COALESCE(array_agg(s.id ORDER BY s.position) FILTER (WHERE s.id IS NOT NULL), '{}') AS stream_ids
FROM grades g LEFT JOIN streams s ON s.grade_id = g.id
GROUP BY g.id, g.name, g.level_id, g.position
ORDER BY g.position ASC, g.name ASC`
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// ListStreams returns every stream.
func (r *RegistryRepository) ListStreams(ctx context.Context) ([]models.Stream, error) {
	const query = `SELECT id, name, grade_id, position FROM streams ORDER BY grade_id ASC, position ASC`
	var streams []models.Stream
	if err := r.db.SelectContext(ctx, &streams, query); err != nil {
		return nil, fmt.Errorf("list streams: %w", err)
	}
	return streams, nil
}

// ListSubjects returns subjects with their level.
func (r *RegistryRepository) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	const query = `SELECT id, name, level_id, color, position FROM subjects ORDER BY level_id ASC, position ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// ListTeachers returns teachers with both the legacy grade names and the grade ids they teach.
func (r *RegistryRepository) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	const query = `SELECT t.id, t.name, t.grade_levels,
COALESCE(array_agg(tg.grade_id) FILTER (WHERE tg.grade_id IS NOT NULL), '{}') AS grade_ids
FROM teachers t LEFT JOIN teacher_grades tg ON tg.teacher_id = t.id
GROUP BY t.id, t.name, t.grade_levels
ORDER BY t.name ASC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// SchoolRepository persists onboarding data: terms and the curriculum layout.
type SchoolRepository struct {
	db *sqlx.DB
}

// NewSchoolRepository creates a school repository.
func NewSchoolRepository(db *sqlx.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

// CreateTerm inserts a new academic term.
func (r *SchoolRepository) CreateTerm(ctx context.Context, req dto.CreateTermRequest) (*models.Term, error) {
	term := models.Term{
		ID:           uuid.NewString(),
		Name:         req.Name,
		AcademicYear: req.AcademicYear,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		IsActive:     req.IsActive,
		CreatedAt:    time.Now().UTC(),
	}
	const query = `INSERT INTO terms (id, name, academic_year, start_date, end_date, is_active, created_at) VALUES (:id, :name, :academic_year, :start_date, :end_date, :is_active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, term); err != nil {
		return nil, translate(err, "create term")
	}
	return &term, nil
}

// ConfigureLevels upserts levels, grades, streams and subjects of a curriculum in one transaction.
// Records are matched by name within their parent so existing ids, and the lessons using them, survive.
func (r *SchoolRepository) ConfigureLevels(ctx context.Context, req dto.ConfigureLevelsRequest) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin configure levels tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for levelPos, level := range req.Levels {
		var levelID string
		if levelID, err = upsertReturningID(ctx, tx,
			`INSERT INTO levels (id, name, curriculum_id, position) VALUES ($1, $2, $3, $4)
ON CONFLICT (curriculum_id, name) DO UPDATE SET position = EXCLUDED.position RETURNING id`,
			strings.TrimSpace(level.Name), req.CurriculumID, levelPos+1); err != nil {
			return translate(err, "upsert level")
		}

		for gradePos, grade := range level.Grades {
			var gradeID string
			if gradeID, err = upsertReturningID(ctx, tx,
				`INSERT INTO grades (id, name, level_id, position) VALUES ($1, $2, $3, $4)
ON CONFLICT (level_id, name) DO UPDATE SET position = EXCLUDED.position RETURNING id`,
				strings.TrimSpace(grade.Name), levelID, gradePos+1); err != nil {
				return translate(err, "upsert grade")
			}
			for streamPos, stream := range grade.Streams {
				if _, err = upsertReturningID(ctx, tx,
					`INSERT INTO streams (id, name, grade_id, position) VALUES ($1, $2, $3, $4)
ON CONFLICT (grade_id, name) DO UPDATE SET position = EXCLUDED.position RETURNING id`,
					strings.TrimSpace(stream), gradeID, streamPos+1); err != nil {
					return translate(err, "upsert stream")
				}
			}
		}

		for subjectPos, subject := range level.Subjects {
			if _, err = upsertReturningID(ctx, tx,
				`INSERT INTO subjects (id, name, level_id, position, color) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (level_id, name) DO UPDATE SET position = EXCLUDED.position, color = EXCLUDED.color RETURNING id`,
				strings.TrimSpace(subject.Name), levelID, subjectPos+1, subject.Color); err != nil {
				return translate(err, "upsert subject")
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit configure levels: %w", err)
	}
	return nil
}

func upsertReturningID(ctx context.Context, tx *sqlx.Tx, query string, args ...interface{}) (string, error) {
	var id string
	params := append([]interface{}{uuid.NewString()}, args...)
	if err := tx.QueryRowxContext(ctx, query, params...).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

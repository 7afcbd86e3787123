package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// WeekTemplateRepository stores generated week layouts and their time slots.
type WeekTemplateRepository struct {
	db *sqlx.DB
}

// NewWeekTemplateRepository creates a week template repository.
func NewWeekTemplateRepository(db *sqlx.DB) *WeekTemplateRepository {
	return &WeekTemplateRepository{db: db}
}

// CreateWeekTemplate stores the template and upserts one time slot per period of the term.
// Every day of the template shares the same slot ids.
func (r *WeekTemplateRepository) CreateWeekTemplate(ctx context.Context, template models.WeekTemplate) (*models.WeekTemplate, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin week template tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	template.ID = uuid.NewString()
	template.CreatedAt = time.Now().UTC()

	const insertTemplate = `INSERT INTO week_templates (id, term_id, name, start_time, period_count, period_duration_minutes, days_per_week, created_at) VALUES (:id, :term_id, :name, :start_time, :period_count, :period_duration_minutes, :days_per_week, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertTemplate, template); err != nil {
		return nil, translate(err, "create week template")
	}

	for _, gradeID := range template.GradeIDs {
		if _, err = tx.ExecContext(ctx, `INSERT INTO week_template_grades (week_template_id, grade_id) VALUES ($1, $2)`, template.ID, gradeID); err != nil {
			return nil, translate(err, "link week template grade")
		}
	}

	ids := make(map[int]string)
	if len(template.DayTemplates) > 0 {
		const upsertSlot = `INSERT INTO time_slots (id, term_id, period, start_time, duration_minutes) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (term_id, period) DO UPDATE SET start_time = EXCLUDED.start_time, duration_minutes = EXCLUDED.duration_minutes
RETURNING id`
		for _, slot := range template.DayTemplates[0].TimeSlots {
			var id string
			if err = tx.QueryRowxContext(ctx, upsertSlot, uuid.NewString(), template.TermID, slot.Period, slot.StartTime, slot.DurationMinutes).Scan(&id); err != nil {
				return nil, translate(err, "upsert time slot")
			}
			ids[slot.Period] = id
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit week template: %w", err)
	}

	for i := range template.DayTemplates {
		for j := range template.DayTemplates[i].TimeSlots {
			slot := &template.DayTemplates[i].TimeSlots[j]
			slot.ID = ids[slot.Period]
			slot.TermID = template.TermID
		}
	}
	return &template, nil
}
